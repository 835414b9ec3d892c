package tasks

import "time"

// Outcome is embedded in every operation result.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Err is the typed cause of a failure, for errors.Is and errors.As.
	Err error `json:"-"`
}

// Optional marks an update field as provided. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

func (o Optional[T]) IsSet() bool { return o.set }

// --- Add ---

// AddRequest describes a new task. Priority defaults to medium.
type AddRequest struct {
	Title       string
	Description string
	Priority    Priority
	Category    string
	Tags        []string
	DueDate     *time.Time
}

type AddResult struct {
	Outcome
	TaskID string       `json:"taskId,omitempty"`
	Task   *TaskSummary `json:"task,omitempty"`
}

// --- Get ---

type GetResult struct {
	Outcome
	Task *Task `json:"task,omitempty"`
}

// --- List ---

// ListRequest filters and orders List. Empty or "all" disables a filter.
type ListRequest struct {
	Status   string
	Priority string
	Category string
	SortBy   string
}

type ListResult struct {
	Outcome
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// --- Search ---

type SearchRequest struct {
	Query    string
	SearchIn string
}

type SearchResult struct {
	Outcome
	Tasks []SearchHit `json:"tasks"`
	Total int         `json:"total"`
}

// --- Update ---

// UpdateRequest is a partial update. Unset fields are left unchanged; a set
// DueDate holding nil clears the due date. Notes is not stored; it is echoed
// in the result message.
type UpdateRequest struct {
	ID          string
	Status      Optional[Status]
	Priority    Optional[Priority]
	Description Optional[string]
	DueDate     Optional[*time.Time]
	Notes       string
}

type UpdateResult struct {
	Outcome
	Task *Task `json:"task,omitempty"`
}

// --- Delete ---

type DeleteResult struct {
	Outcome
	Title string `json:"title,omitempty"`
}
