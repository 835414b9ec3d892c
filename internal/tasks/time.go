package tasks

import "time"

// timeNow is the store clock. Store.now truncates it to storage precision;
// tests swap it through SetTimeNow.
var timeNow = time.Now
