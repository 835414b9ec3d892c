package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/taskstore/internal/storage"
)

// Sentinels for errors.Is on Outcome.Err.
var (
	// ErrNotConfigured means no backend endpoint was resolved.
	ErrNotConfigured = storage.ErrNotConfigured
	ErrNotFound      = errors.New("task not found")
	ErrValidation    = errors.New("invalid task field")
	ErrBackend       = errors.New("task backend error")
)

// notConfiguredMessage is returned by every operation while unconfigured.
const notConfiguredMessage = "Database not configured. Set DATABASE_URL environment variable."

// NotFoundError reports an id with no matching row.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return "Task not found: " + e.ID }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports a field value outside its allowed set. It is
// raised before any statement is issued.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: must be one of: %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// BackendError wraps a failure while talking to the database. Op is the
// operation label, e.g. "update task".
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }
