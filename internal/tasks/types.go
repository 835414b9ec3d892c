// Package tasks implements the task-tracking store: a durable backlog of
// work items that agents create, filter, update and search for a user.
//
// Every public operation returns a result that carries an explicit success
// flag and a short message. Configuration gaps, unknown ids, invalid enum
// values and backend failures are all reported through that result; none of
// them escape as a Go error or a panic.
//
// Concurrent updates to the same task are last-write-wins. There is no
// version column and no read-modify-write protection.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Status enum ---

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}

// ValidateStatus returns a *ValidationError if s is not a known status.
func ValidateStatus(s Status) error {
	for _, v := range Statuses {
		if s == v {
			return nil
		}
	}
	return &ValidationError{Field: "status", Value: string(s), Allowed: enumStrings(Statuses)}
}

// ParseStatus trims and validates user input.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if err := ValidateStatus(st); err != nil {
		return "", err
	}
	return st, nil
}

// --- Priority enum ---

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every valid priority, most urgent first.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// DefaultPriority is applied when Add is called without one.
const DefaultPriority = PriorityMedium

// ValidatePriority returns a *ValidationError if p is not a known priority.
func ValidatePriority(p Priority) error {
	if p.Rank() < 0 {
		return &ValidationError{Field: "priority", Value: string(p), Allowed: enumStrings(Priorities)}
	}
	return nil
}

// ParsePriority trims and validates user input.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.TrimSpace(s))
	if err := ValidatePriority(p); err != nil {
		return "", err
	}
	return p, nil
}

// Rank orders priorities for sorting: urgent=0 … low=3, unknown=-1.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if p == v {
			return i
		}
	}
	return -1
}

// AllFilter is the sentinel that disables a List filter.
const AllFilter = "all"

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// --- Entity ---

// Task is the single persisted entity. Optional fields are nil when unset.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Category    *string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDate     *time.Time
	CompletedAt *time.Time
}

// Summary returns the compact form returned by Add.
func (t *Task) Summary() TaskSummary {
	return TaskSummary{ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority}
}

// TaskSummary identifies a task without its body.
type TaskSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
}

// SearchHit is a task as returned by Search.
type SearchHit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
}

// NewID returns a fresh task id. UUIDv7 makes ids unique and roughly
// creation-ordered.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "task_" + id.String()
}

// SearchField selects which fields Search matches against.
type SearchField string

const (
	SearchTitle       SearchField = "title"
	SearchDescription SearchField = "description"
	SearchTags        SearchField = "tags"
	SearchBoth        SearchField = "both"
)

// ParseSearchField maps user input to a SearchField. Empty means both.
func ParseSearchField(s string) (SearchField, error) {
	switch f := SearchField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SearchBoth, nil
	case SearchTitle, SearchDescription, SearchTags, SearchBoth:
		return f, nil
	default:
		return "", &ValidationError{Field: "searchIn", Value: s, Allowed: []string{"title", "description", "tags", "both"}}
	}
}

func (f SearchField) String() string { return string(f) }

// pluralTasks renders "1 task(s)" the way every list message does.
func pluralTasks(n int) string {
	return fmt.Sprintf("%d task(s)", n)
}
