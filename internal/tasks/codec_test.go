package tasks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/taskstore/internal/storage"
)

// fakeRow feeds values to scanTask's destinations in column order.
func fakeRow(values ...any) func(dest ...any) error {
	return func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("got %d destinations, have %d values", len(dest), len(values))
		}
		for i, d := range dest {
			switch p := d.(type) {
			case sql.Scanner:
				if err := p.Scan(values[i]); err != nil {
					return err
				}
			case *string:
				*p = values[i].(string)
			case *Status:
				*p = Status(values[i].(string))
			case *Priority:
				*p = Priority(values[i].(string))
			default:
				return fmt.Errorf("unexpected destination %T", d)
			}
		}
		return nil
	}
}

func TestScanTask_NullsBecomeUnset(t *testing.T) {
	var task Task
	err := scanTask(fakeRow(
		"task_1", "Title", "", "pending", "medium",
		nil, nil,
		"2025-03-01T10:00:00.000000Z", "2025-03-01T10:00:00.000000Z",
		nil, nil,
	), storage.SQLite(), &task)
	if err != nil {
		t.Fatalf("scanTask: %v", err)
	}
	if task.Category != nil || task.Tags != nil || task.DueDate != nil || task.CompletedAt != nil {
		t.Errorf("optional fields should be unset: %+v", task)
	}
	if task.Description != "" {
		t.Errorf("description = %q", task.Description)
	}
}

func TestScanTask_AllFields(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)
	var task Task
	err := scanTask(fakeRow(
		"task_2", "Ship", "release", "completed", "urgent",
		"ops", `["release","q1"]`,
		created, []byte("2025-03-02T11:00:00.000001Z"),
		"2025-03-10T00:00:00.000000Z", created.Add(time.Hour),
	), storage.SQLite(), &task)
	if err != nil {
		t.Fatalf("scanTask: %v", err)
	}
	if task.Category == nil || *task.Category != "ops" {
		t.Errorf("category = %v", task.Category)
	}
	if strings.Join(task.Tags, ",") != "release,q1" {
		t.Errorf("tags = %v", task.Tags)
	}
	if !task.CreatedAt.Equal(created) {
		t.Errorf("createdAt = %v", task.CreatedAt)
	}
	if task.UpdatedAt.Nanosecond() != 1000 {
		t.Errorf("updatedAt lost precision: %v", task.UpdatedAt)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(created.Add(time.Hour)) {
		t.Errorf("completedAt = %v", task.CompletedAt)
	}
}

func TestScanTask_MissingCreatedAt(t *testing.T) {
	var task Task
	err := scanTask(fakeRow(
		"task_3", "T", "", "pending", "low", nil, nil, nil, "2025-03-01T10:00:00.000000Z", nil, nil,
	), storage.SQLite(), &task)
	if err == nil {
		t.Fatal("expected error for NULL created_at")
	}
}

func TestNullTime_Scan(t *testing.T) {
	var n nullTime
	if err := n.Scan(42); err == nil {
		t.Error("expected error for int source")
	}
	if err := n.Scan("yesterday"); err == nil {
		t.Error("expected error for unparseable text")
	}
	if err := n.Scan(nil); err != nil || n.Valid {
		t.Errorf("Scan(nil) = %v, valid=%v", err, n.Valid)
	}
}

func TestTaskJSON_OmitsUnsetFields(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 500000, time.UTC)
	task := Task{
		ID: "task_1", Title: "T", Status: StatusPending, Priority: PriorityLow,
		CreatedAt: ts, UpdatedAt: ts,
	}

	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(b)
	for _, absent := range []string{"category", "tags", "dueDate", "completedAt"} {
		if strings.Contains(out, `"`+absent+`"`) {
			t.Errorf("%s should be omitted: %s", absent, out)
		}
	}
	if !strings.Contains(out, `"createdAt":"2025-03-01T10:00:00.000500Z"`) {
		t.Errorf("createdAt not normalized: %s", out)
	}
	if !strings.Contains(out, `"description":""`) {
		t.Errorf("description must always be present: %s", out)
	}
}

func TestTaskJSON_RoundTrip(t *testing.T) {
	local := time.FixedZone("UTC-5", -5*3600)
	created := time.Date(2025, 3, 1, 5, 0, 0, 0, local)
	due := created.Add(48 * time.Hour)
	cat := "home"
	in := Task{
		ID: "task_1", Title: "T", Description: "d", Status: StatusBlocked, Priority: PriorityHigh,
		Category: &cat, Tags: []string{"a", "b c"},
		CreatedAt: created, UpdatedAt: created, DueDate: &due,
	}

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"createdAt":"2025-03-01T10:00:00.000000Z"`) {
		t.Errorf("timestamp not rendered in UTC: %s", b)
	}

	var out Task
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.DueDate == nil || !out.DueDate.Equal(due) {
		t.Errorf("times differ: %+v", out)
	}
	if *out.Category != "home" || len(out.Tags) != 2 || out.CompletedAt != nil {
		t.Errorf("fields differ: %+v", out)
	}
}
