package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/taskstore/internal/storage"
)

// Add inserts a new pending task.
func (s *Store) Add(ctx context.Context, req AddRequest) *AddResult {
	const op = "add task"

	if strings.TrimSpace(req.Title) == "" {
		return &AddResult{Outcome: s.failure(op, "", &ValidationError{Field: "title", Reason: "must not be empty"})}
	}
	priority := req.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	if err := ValidatePriority(priority); err != nil {
		return &AddResult{Outcome: s.failure(op, "", err)}
	}

	ctx, cancel, db, d, err := s.begin(ctx)
	defer cancel()
	if err != nil {
		return &AddResult{Outcome: s.failure(op, "", err)}
	}

	now := s.now()
	task := Task{
		ID:          NewID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusPending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c := strings.TrimSpace(req.Category); c != "" {
		task.Category = &c
	}
	if len(req.Tags) > 0 {
		task.Tags = append([]string(nil), req.Tags...)
	}
	if req.DueDate != nil {
		due := storage.NormalizeTime(*req.DueDate)
		task.DueDate = &due
	}

	tags, err := d.EncodeTags(task.Tags)
	if err != nil {
		return &AddResult{Outcome: s.failure(op, task.ID, err)}
	}
	values := []any{
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullableString(task.Category),
		tags,
		d.EncodeTime(task.CreatedAt),
		d.EncodeTime(task.UpdatedAt),
		nullableTime(d, task.DueDate),
		nil,
	}
	if _, err := s.execHook(ctx, db, insertStatement(d, values), values...); err != nil {
		return &AddResult{Outcome: s.failure(op, task.ID, err)}
	}

	s.logger.Debug("task added", "task_id", task.ID, "priority", task.Priority)
	return &AddResult{
		Outcome: Outcome{
			Success: true,
			Message: fmt.Sprintf("Task added: \"%s\" [%s]", task.Title, task.Priority),
		},
		TaskID: task.ID,
		Task:   ptr(task.Summary()),
	}
}

// Get returns the full record for id.
func (s *Store) Get(ctx context.Context, id string) *GetResult {
	const op = "get task"

	if err := requireID(id); err != nil {
		return &GetResult{Outcome: s.failure(op, id, err)}
	}

	ctx, cancel, db, d, err := s.begin(ctx)
	defer cancel()
	if err != nil {
		return &GetResult{Outcome: s.failure(op, id, err)}
	}

	task, err := s.fetch(ctx, db, d, id)
	if err != nil {
		return &GetResult{Outcome: s.failure(op, id, err)}
	}
	return &GetResult{
		Outcome: Outcome{Success: true, Message: "Task found: " + task.Title},
		Task:    task,
	}
}

// List returns tasks matching the optional filters, at most MaxResults.
func (s *Store) List(ctx context.Context, req ListRequest) *ListResult {
	const op = "list tasks"

	q := Query{Limit: s.maxResults}
	var described []string

	if st := strings.TrimSpace(req.Status); st != "" && st != AllFilter {
		status, err := ParseStatus(st)
		if err != nil {
			return &ListResult{Outcome: s.failure(op, "", err), Tasks: []Task{}}
		}
		q.Where = append(q.Where, Eq{Column: ColumnStatus, Value: string(status)})
		described = append(described, fmt.Sprintf("with status '%s'", status))
	}
	if p := strings.TrimSpace(req.Priority); p != "" && p != AllFilter {
		priority, err := ParsePriority(p)
		if err != nil {
			return &ListResult{Outcome: s.failure(op, "", err), Tasks: []Task{}}
		}
		q.Where = append(q.Where, Eq{Column: ColumnPriority, Value: string(priority)})
		described = append(described, fmt.Sprintf("with priority '%s'", priority))
	}
	if c := strings.TrimSpace(req.Category); c != "" {
		q.Where = append(q.Where, Eq{Column: ColumnCategory, Value: c})
		described = append(described, fmt.Sprintf("in category '%s'", c))
	}
	sort, err := ParseSortKey(req.SortBy)
	if err != nil {
		return &ListResult{Outcome: s.failure(op, "", err), Tasks: []Task{}}
	}
	q.Sort = sort

	ctx, cancel, db, d, err := s.begin(ctx)
	defer cancel()
	if err != nil {
		return &ListResult{Outcome: s.failure(op, "", err), Tasks: []Task{}}
	}

	found, err := s.queryTasks(ctx, db, d, q)
	if err != nil {
		return &ListResult{Outcome: s.failure(op, "", err), Tasks: []Task{}}
	}

	msg := "Found " + pluralTasks(len(found))
	if len(described) > 0 {
		msg += " " + strings.Join(described, " ")
	}
	if len(found) == s.maxResults {
		msg += fmt.Sprintf(" (showing first %d)", s.maxResults)
	}
	return &ListResult{
		Outcome: Outcome{Success: true, Message: msg},
		Tasks:   found,
		Total:   len(found),
	}
}

// Search matches query as a case-insensitive substring of the selected
// fields, newest first. An empty query matches every task.
func (s *Store) Search(ctx context.Context, req SearchRequest) *SearchResult {
	const op = "search tasks"

	field, err := ParseSearchField(req.SearchIn)
	if err != nil {
		return &SearchResult{Outcome: s.failure(op, "", err), Tasks: []SearchHit{}}
	}

	var match Predicate
	switch field {
	case SearchTitle:
		match = Contains{Column: ColumnTitle, Substr: req.Query}
	case SearchDescription:
		match = Contains{Column: ColumnDescription, Substr: req.Query}
	case SearchTags:
		match = TagContains{Substr: req.Query}
	default:
		match = AnyOf{
			Contains{Column: ColumnTitle, Substr: req.Query},
			Contains{Column: ColumnDescription, Substr: req.Query},
		}
	}

	ctx, cancel, db, d, err := s.begin(ctx)
	defer cancel()
	if err != nil {
		return &SearchResult{Outcome: s.failure(op, "", err), Tasks: []SearchHit{}}
	}

	found, err := s.queryTasks(ctx, db, d, Query{
		Where: []Predicate{match},
		Sort:  SortCreatedAt,
		Limit: s.maxResults,
	})
	if err != nil {
		return &SearchResult{Outcome: s.failure(op, "", err), Tasks: []SearchHit{}}
	}

	hits := make([]SearchHit, len(found))
	for i, t := range found {
		hits[i] = SearchHit{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
		}
	}
	return &SearchResult{
		Outcome: Outcome{
			Success: true,
			Message: fmt.Sprintf("Found %s matching \"%s\"", pluralTasks(len(hits)), req.Query),
		},
		Tasks: hits,
		Total: len(hits),
	}
}

// Update applies the fields set in req. updated_at always moves forward, and
// completed_at is stamped the first time the task becomes completed.
func (s *Store) Update(ctx context.Context, req UpdateRequest) *UpdateResult {
	const op = "update task"
	id := req.ID

	if err := requireID(id); err != nil {
		return &UpdateResult{Outcome: s.failure(op, id, err)}
	}
	status, statusSet := req.Status.Get()
	if statusSet {
		if err := ValidateStatus(status); err != nil {
			return &UpdateResult{Outcome: s.failure(op, id, err)}
		}
	}
	priority, prioritySet := req.Priority.Get()
	if prioritySet {
		if err := ValidatePriority(priority); err != nil {
			return &UpdateResult{Outcome: s.failure(op, id, err)}
		}
	}

	ctx, cancel, db, d, err := s.begin(ctx)
	defer cancel()
	if err != nil {
		return &UpdateResult{Outcome: s.failure(op, id, err)}
	}

	existing, err := s.fetch(ctx, db, d, id)
	if err != nil {
		return &UpdateResult{Outcome: s.failure(op, id, err)}
	}

	now := s.now()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(storage.Precision)
	}

	var (
		sets    []assignment
		changes []string
		stamp   any
	)
	if statusSet {
		sets = append(sets, assignment{column: "status", value: string(status)})
		changes = append(changes, "status → "+string(status))
		if status == StatusCompleted {
			stamp = d.EncodeTime(now)
		}
	}
	if prioritySet {
		sets = append(sets, assignment{column: "priority", value: string(priority)})
		changes = append(changes, "priority → "+string(priority))
	}
	if desc, ok := req.Description.Get(); ok {
		sets = append(sets, assignment{column: "description", value: desc})
		changes = append(changes, "description updated")
	}
	if due, ok := req.DueDate.Get(); ok {
		if due == nil {
			sets = append(sets, assignment{column: "due_date", value: nil})
			changes = append(changes, "due date cleared")
		} else {
			normalized := storage.NormalizeTime(*due)
			sets = append(sets, assignment{column: "due_date", value: d.EncodeTime(normalized)})
			changes = append(changes, "due date → "+FormatTime(normalized))
		}
	}
	if req.Notes != "" {
		changes = append(changes, "notes: "+req.Notes)
	}
	sets = append(sets, assignment{column: "updated_at", value: d.EncodeTime(now)})

	query, args := updateStatement(d, id, sets, stamp)
	res, err := s.execHook(ctx, db, query, args...)
	if err != nil {
		return &UpdateResult{Outcome: s.failure(op, id, err)}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Deleted between the read and the write.
		return &UpdateResult{Outcome: s.failure(op, id, &NotFoundError{ID: id})}
	}

	updated, err := s.fetch(ctx, db, d, id)
	if err != nil {
		return &UpdateResult{Outcome: s.failure(op, id, err)}
	}

	msg := "Task updated: " + updated.Title
	if len(changes) > 0 {
		msg += " (" + strings.Join(changes, ", ") + ")"
	}
	s.logger.Debug("task updated", "task_id", id, "changes", len(changes))
	return &UpdateResult{
		Outcome: Outcome{Success: true, Message: msg},
		Task:    updated,
	}
}

// Delete permanently removes id and reports its title.
func (s *Store) Delete(ctx context.Context, id string) *DeleteResult {
	const op = "delete task"

	if err := requireID(id); err != nil {
		return &DeleteResult{Outcome: s.failure(op, id, err)}
	}

	ctx, cancel, db, d, err := s.begin(ctx)
	defer cancel()
	if err != nil {
		return &DeleteResult{Outcome: s.failure(op, id, err)}
	}

	existing, err := s.fetch(ctx, db, d, id)
	if err != nil {
		return &DeleteResult{Outcome: s.failure(op, id, err)}
	}

	query, args := deleteStatement(d, id)
	res, err := s.execHook(ctx, db, query, args...)
	if err != nil {
		return &DeleteResult{Outcome: s.failure(op, id, err)}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &DeleteResult{Outcome: s.failure(op, id, &NotFoundError{ID: id})}
	}

	s.logger.Debug("task deleted", "task_id", id)
	return &DeleteResult{
		Outcome: Outcome{Success: true, Message: "Task deleted: " + existing.Title},
		Title:   existing.Title,
	}
}

func ptr[T any](v T) *T { return &v }
