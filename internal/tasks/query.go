package tasks

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/taskstore/internal/storage"
)

// tableName is the backing table.
const tableName = "tasks"

// --- Columns ---

// Column names a filterable column. Only the constants below compile.
type Column string

const (
	ColumnID          Column = "id"
	ColumnTitle       Column = "title"
	ColumnDescription Column = "description"
	ColumnStatus      Column = "status"
	ColumnPriority    Column = "priority"
	ColumnCategory    Column = "category"
)

var knownColumns = map[Column]bool{
	ColumnID:          true,
	ColumnTitle:       true,
	ColumnDescription: true,
	ColumnStatus:      true,
	ColumnPriority:    true,
	ColumnCategory:    true,
}

// --- Sort keys ---

// SortKey selects the ordering of List results.
type SortKey string

const (
	SortPriority  SortKey = "priority"
	SortCreatedAt SortKey = "created_at"
	SortUpdatedAt SortKey = "updated_at"
)

// ParseSortKey accepts snake_case and camelCase spellings. Empty means
// priority.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.TrimSpace(s) {
	case "", "priority":
		return SortPriority, nil
	case "created_at", "createdAt":
		return SortCreatedAt, nil
	case "updated_at", "updatedAt":
		return SortUpdatedAt, nil
	default:
		return "", &ValidationError{Field: "sortBy", Value: s, Allowed: []string{"priority", "created_at", "updated_at"}}
	}
}

// --- Predicates ---

// Predicate is one filter condition. Implementations bind every user value
// as a statement argument.
type Predicate interface {
	build(b *builder) (string, error)
}

// Eq matches rows whose column equals Value exactly.
type Eq struct {
	Column Column
	Value  string
}

func (p Eq) build(b *builder) (string, error) {
	if !knownColumns[p.Column] {
		return "", fmt.Errorf("unknown column %q", p.Column)
	}
	return fmt.Sprintf("%s = %s", p.Column, b.bind(p.Value)), nil
}

// Contains matches rows whose column contains Substr, ignoring case.
type Contains struct {
	Column Column
	Substr string
}

func (p Contains) build(b *builder) (string, error) {
	if !knownColumns[p.Column] {
		return "", fmt.Errorf("unknown column %q", p.Column)
	}
	return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, b.dialect.Lower(string(p.Column)), b.bind(likePattern(p.Substr))), nil
}

// TagContains matches rows with at least one tag containing Substr,
// ignoring case.
type TagContains struct {
	Substr string
}

func (p TagContains) build(b *builder) (string, error) {
	return b.dialect.TagMatch("tags", b.bind(likePattern(p.Substr))), nil
}

// AnyOf matches rows satisfying at least one of its predicates.
type AnyOf []Predicate

func (p AnyOf) build(b *builder) (string, error) {
	if len(p) == 0 {
		return "", fmt.Errorf("empty OR group")
	}
	parts := make([]string, 0, len(p))
	for _, sub := range p {
		sql, err := sub.build(b)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

// likePattern lowercases s, escapes LIKE wildcards and wraps it in %…%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// --- Query ---

// Query is a typed SELECT over the tasks table.
type Query struct {
	// Where predicates are combined with AND.
	Where []Predicate
	Sort  SortKey
	// Limit caps the result set; zero means no limit.
	Limit int
}

// priorityRankSQL orders urgent first. Built from the enum, never from input.
func priorityRankSQL() string {
	var b strings.Builder
	b.WriteString("CASE priority")
	for i, p := range Priorities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(Priorities))
	return b.String()
}

// orderBy always ends with id so ties have a stable order.
func orderBy(key SortKey) (string, error) {
	switch key {
	case SortPriority, "":
		return priorityRankSQL() + ", created_at DESC, id ASC", nil
	case SortCreatedAt:
		return "created_at DESC, id ASC", nil
	case SortUpdatedAt:
		return "updated_at DESC, id ASC", nil
	default:
		return "", fmt.Errorf("unknown sort key %q", key)
	}
}

// Compile renders q into SQL and arguments for dialect d.
func (q Query) Compile(d storage.Dialect) (string, []any, error) {
	b := newBuilder(d)
	b.sql.WriteString("SELECT " + taskColumns + " FROM " + tableName)

	if len(q.Where) > 0 {
		conds := make([]string, 0, len(q.Where))
		for _, p := range q.Where {
			cond, err := p.build(b)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, cond)
		}
		b.sql.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	order, err := orderBy(q.Sort)
	if err != nil {
		return "", nil, err
	}
	b.sql.WriteString(" ORDER BY " + order)

	if q.Limit > 0 {
		b.sql.WriteString(" LIMIT " + b.bind(q.Limit))
	}
	return b.sql.String(), b.args, nil
}

// builder accumulates SQL text and its positional arguments.
type builder struct {
	dialect storage.Dialect
	sql     strings.Builder
	args    []any
}

func newBuilder(d storage.Dialect) *builder {
	return &builder{dialect: d}
}

// bind appends v as an argument and returns its placeholder.
func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

// --- Statements used by the operations ---

func insertStatement(d storage.Dialect, values []any) string {
	b := newBuilder(d)
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = b.bind(v)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, taskColumns, strings.Join(marks, ", "))
}

// assignment is one "column = value" pair of an UPDATE.
type assignment struct {
	column string
	value  any
}

// updateStatement renders a partial UPDATE by id. When stampCompleted is
// set, completed_at is written only if it is still NULL, in the same
// statement.
func updateStatement(d storage.Dialect, id string, sets []assignment, stampCompleted any) (string, []any) {
	b := newBuilder(d)
	parts := make([]string, 0, len(sets)+1)
	for _, a := range sets {
		parts = append(parts, fmt.Sprintf("%s = %s", a.column, b.bind(a.value)))
	}
	if stampCompleted != nil {
		parts = append(parts, fmt.Sprintf(
			"completed_at = CASE WHEN completed_at IS NULL THEN %s ELSE completed_at END", b.bind(stampCompleted)))
	}
	where := b.bind(id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", tableName, strings.Join(parts, ", "), where), b.args
}

func deleteStatement(d storage.Dialect, id string) (string, []any) {
	b := newBuilder(d)
	where := b.bind(id)
	return fmt.Sprintf("DELETE FROM %s WHERE id = %s", tableName, where), b.args
}
