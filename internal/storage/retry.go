package storage

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DefaultBusyRetries gives roughly 1.5s of extra waiting on top of the
// driver's busy_timeout.
const DefaultBusyRetries = 5

// newBusyBackOff starts at 50ms and doubles up to 500ms, ±25%.
func newBusyBackOff() *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(50*time.Millisecond),
		backoff.WithMaxInterval(500*time.Millisecond),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.25),
		backoff.WithMaxElapsedTime(0),
	)
}

// RetryOnBusy runs f again, at most maxRetries times, while it fails with
// SQLite BUSY or LOCKED. Other errors are returned at once.
func RetryOnBusy(ctx context.Context, maxRetries int, f func() error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBusyBackOff(), uint64(maxRetries)), ctx)
	return backoff.Retry(func() error {
		err := f()
		if err != nil && !IsBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// IsBusy reports whether err is a SQLite BUSY or LOCKED error, extended
// codes included.
func IsBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
