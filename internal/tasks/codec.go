package tasks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/taskstore/internal/storage"
)

// TimeLayout is the single textual form every timestamp takes on output.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// taskColumns is the column order scanTask expects and inserts write.
var taskColumns = strings.Join([]string{
	"id", "title", "description", "status", "priority", "category", "tags",
	"created_at", "updated_at", "due_date", "completed_at",
}, ", ")

// nullTime scans a timestamp that may arrive as time.Time (postgres) or as
// text (sqlite).
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (n *nullTime) parse(s string) error {
	t, err := storage.ParseTime(s)
	if err != nil {
		return fmt.Errorf("scan timestamp: %w", err)
	}
	n.Time, n.Valid = t, true
	return nil
}

func (n nullTime) ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// scanTask decodes one row selected with taskColumns.
func scanTask(scanFn func(dest ...any) error, d storage.Dialect, t *Task) error {
	var (
		category           sql.NullString
		created, updated   nullTime
		dueDate, completed nullTime
	)
	if err := scanFn(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&category,
		d.TagsScanner(&t.Tags),
		&created,
		&updated,
		&dueDate,
		&completed,
	); err != nil {
		return err
	}

	if category.Valid && category.String != "" {
		c := category.String
		t.Category = &c
	} else {
		t.Category = nil
	}
	if !created.Valid || !updated.Valid {
		return fmt.Errorf("task %s: missing created_at/updated_at", t.ID)
	}
	t.CreatedAt = created.Time
	t.UpdatedAt = updated.Time
	t.DueDate = dueDate.ptr()
	t.CompletedAt = completed.ptr()
	return nil
}

// nullableString maps "" to NULL.
func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// nullableTime maps nil to NULL and encodes the rest for the dialect.
func nullableTime(d storage.Dialect, t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.EncodeTime(*t)
}

// taskJSON is the wire shape of a Task.
type taskJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Category    *string  `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	DueDate     *string  `json:"dueDate,omitempty"`
	CompletedAt *string  `json:"completedAt,omitempty"`
}

// MarshalJSON renders the task with normalized ISO-8601 timestamps and
// unset optional fields omitted.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		Tags:        t.Tags,
		CreatedAt:   FormatTime(t.CreatedAt),
		UpdatedAt:   FormatTime(t.UpdatedAt),
		DueDate:     formatTimePtr(t.DueDate),
		CompletedAt: formatTimePtr(t.CompletedAt),
	})
}

// UnmarshalJSON accepts the shape MarshalJSON produces.
func (t *Task) UnmarshalJSON(b []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	created, err := storage.ParseTime(raw.CreatedAt)
	if err != nil {
		return err
	}
	updated, err := storage.ParseTime(raw.UpdatedAt)
	if err != nil {
		return err
	}
	*t = Task{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Status:      raw.Status,
		Priority:    raw.Priority,
		Category:    raw.Category,
		Tags:        raw.Tags,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if t.DueDate, err = parseTimePtr(raw.DueDate); err != nil {
		return err
	}
	if t.CompletedAt, err = parseTimePtr(raw.CompletedAt); err != nil {
		return err
	}
	return nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := storage.ParseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
