package tasktools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/taskstore/internal/config"
	"github.com/HendryAvila/taskstore/internal/storage"
	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestStore creates a tasks.Store on a SQLite file in a temp directory.
func newTestStore(t *testing.T) *tasks.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "tasks.db")
	p := storage.NewProvider(cfg, logger)
	t.Cleanup(func() { _ = p.Close() })
	return tasks.New(p, tasks.Options{Logger: logger})
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// call runs a handler and fails the test on a Go error.
func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	res, err := h(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	return res
}

// addTask adds a task through the tool and returns its id.
func addTask(t *testing.T, store *tasks.Store, args map[string]interface{}) string {
	t.Helper()
	res := call(t, NewAddTool(store).Handle, args)
	if res.IsError {
		t.Fatalf("add_task failed: %s", resultText(res))
	}
	var out struct {
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &out); err != nil {
		t.Fatalf("decode add_task result: %v", err)
	}
	return out.TaskID
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestDefinitions(t *testing.T) {
	store := newTestStore(t)
	tests := []struct {
		def      mcp.Tool
		name     string
		required []string
		props    []string
	}{
		{NewAddTool(store).Definition(), "add_task", []string{"title"}, []string{"description", "priority", "category", "tags", "dueDate"}},
		{NewGetTool(store).Definition(), "get_task", []string{"taskId"}, nil},
		{NewListTool(store).Definition(), "list_tasks", nil, []string{"status", "priority", "category", "sortBy"}},
		{NewSearchTool(store).Definition(), "search_tasks", []string{"query"}, []string{"searchIn"}},
		{NewUpdateTool(store).Definition(), "update_task", []string{"taskId"}, []string{"status", "priority", "description", "dueDate", "notes"}},
		{NewDeleteTool(store).Definition(), "delete_task", []string{"taskId"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.def.Name != tt.name {
				t.Errorf("name = %q", tt.def.Name)
			}
			for _, p := range append(append([]string{}, tt.required...), tt.props...) {
				if _, ok := tt.def.InputSchema.Properties[p]; !ok {
					t.Errorf("missing %q parameter", p)
				}
			}
			if strings.Join(tt.def.InputSchema.Required, ",") != strings.Join(tt.required, ",") {
				t.Errorf("required = %v, want %v", tt.def.InputSchema.Required, tt.required)
			}
		})
	}
}

// ─── add_task ────────────────────────────────────────────────────────────────

func TestAddTool(t *testing.T) {
	store := newTestStore(t)

	res := call(t, NewAddTool(store).Handle, map[string]interface{}{
		"title":    "Book flights",
		"priority": "high",
		"tags":     []interface{}{"travel", " ", "q3"},
		"dueDate":  "2025-09-01",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	text := resultText(res)
	for _, want := range []string{`"success": true`, `Task added: \"Book flights\" [high]`, `"taskId": "task_`} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %s:\n%s", want, text)
		}
	}

	var out struct {
		TaskID string `json:"taskId"`
	}
	_ = json.Unmarshal([]byte(text), &out)
	got := store.Get(context.Background(), out.TaskID)
	if strings.Join(got.Task.Tags, ",") != "travel,q3" {
		t.Errorf("tags = %v", got.Task.Tags)
	}
	if got.Task.DueDate == nil || tasks.FormatTime(*got.Task.DueDate) != "2025-09-01T00:00:00.000000Z" {
		t.Errorf("dueDate = %v", got.Task.DueDate)
	}
}

func TestAddTool_Errors(t *testing.T) {
	store := newTestStore(t)
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing title", map[string]interface{}{}, "'title' is required"},
		{"bad date", map[string]interface{}{"title": "x", "dueDate": "next week"}, "'dueDate' must be"},
		{"bad priority", map[string]interface{}{"title": "x", "priority": "asap"}, "Failed to add task: invalid priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, NewAddTool(store).Handle, tt.args)
			if !res.IsError {
				t.Fatal("expected tool error")
			}
			if !strings.Contains(resultText(res), tt.want) {
				t.Errorf("text = %q, want it to contain %q", resultText(res), tt.want)
			}
		})
	}
}

// ─── get_task / list_tasks / search_tasks ───────────────────────────────────

func TestGetTool(t *testing.T) {
	store := newTestStore(t)
	id := addTask(t, store, map[string]interface{}{"title": "Renew passport", "category": "personal"})

	res := call(t, NewGetTool(store).Handle, map[string]interface{}{"taskId": id})
	text := resultText(res)
	if res.IsError || !strings.Contains(text, `"category": "personal"`) || !strings.Contains(text, `"createdAt"`) {
		t.Errorf("get_task = %s", text)
	}

	res = call(t, NewGetTool(store).Handle, map[string]interface{}{"taskId": "task_missing"})
	if !res.IsError || resultText(res) != "Task not found: task_missing" {
		t.Errorf("missing id = %s", resultText(res))
	}
}

func TestListTool(t *testing.T) {
	store := newTestStore(t)
	addTask(t, store, map[string]interface{}{"title": "a", "priority": "low"})
	addTask(t, store, map[string]interface{}{"title": "b", "priority": "urgent"})

	res := call(t, NewListTool(store).Handle, map[string]interface{}{})
	var out struct {
		Message string       `json:"message"`
		Total   int          `json:"total"`
		Tasks   []tasks.Task `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, resultText(res))
	}
	if out.Total != 2 || out.Tasks[0].Title != "b" || out.Message != "Found 2 task(s)" {
		t.Errorf("list = %+v", out)
	}

	res = call(t, NewListTool(store).Handle, map[string]interface{}{"status": "archived"})
	if !res.IsError {
		t.Errorf("invalid status should be a tool error: %s", resultText(res))
	}
}

func TestSearchTool(t *testing.T) {
	store := newTestStore(t)
	addTask(t, store, map[string]interface{}{"title": "Bug in export", "description": "CSV"})
	addTask(t, store, map[string]interface{}{"title": "Plan", "tags": "roadmap,bug-bash"})

	res := call(t, NewSearchTool(store).Handle, map[string]interface{}{"query": "BUG", "searchIn": "tags"})
	text := resultText(res)
	if res.IsError || !strings.Contains(text, `"total": 1`) || !strings.Contains(text, `"title": "Plan"`) {
		t.Errorf("search by tags = %s", text)
	}

	res = call(t, NewSearchTool(store).Handle, map[string]interface{}{})
	if !res.IsError {
		t.Error("missing query should be a tool error")
	}
}

// ─── update_task / delete_task ──────────────────────────────────────────────

func TestUpdateTool(t *testing.T) {
	store := newTestStore(t)
	id := addTask(t, store, map[string]interface{}{"title": "Ship v2", "description": "keep me"})

	res := call(t, NewUpdateTool(store).Handle, map[string]interface{}{
		"taskId": id,
		"status": "completed",
		"notes":  "released",
	})
	text := resultText(res)
	if res.IsError {
		t.Fatalf("update_task: %s", text)
	}
	if !strings.Contains(text, "Task updated: Ship v2 (status → completed, notes: released)") {
		t.Errorf("message missing:\n%s", text)
	}
	if !strings.Contains(text, `"completedAt"`) {
		t.Errorf("completedAt should be set:\n%s", text)
	}

	got := store.Get(context.Background(), id)
	if got.Task.Description != "keep me" {
		t.Errorf("omitted description was changed to %q", got.Task.Description)
	}

	res = call(t, NewUpdateTool(store).Handle, map[string]interface{}{"taskId": id, "dueDate": "2025-10-01"})
	if res.IsError || !strings.Contains(resultText(res), `"dueDate": "2025-10-01T00:00:00.000000Z"`) {
		t.Errorf("set dueDate = %s", resultText(res))
	}
	res = call(t, NewUpdateTool(store).Handle, map[string]interface{}{"taskId": id, "dueDate": ""})
	if res.IsError || strings.Contains(resultText(res), `"dueDate"`) {
		t.Errorf("clear dueDate = %s", resultText(res))
	}
	res = call(t, NewUpdateTool(store).Handle, map[string]interface{}{"taskId": id, "dueDate": "soon"})
	if !res.IsError || !strings.Contains(resultText(res), "'dueDate' must be") {
		t.Errorf("bad dueDate = %s", resultText(res))
	}

	res = call(t, NewUpdateTool(store).Handle, map[string]interface{}{"taskId": id, "status": "finished"})
	if !res.IsError || !strings.Contains(resultText(res), "invalid status") {
		t.Errorf("invalid status = %s", resultText(res))
	}
}

func TestDeleteTool(t *testing.T) {
	store := newTestStore(t)
	id := addTask(t, store, map[string]interface{}{"title": "Temporary"})

	res := call(t, NewDeleteTool(store).Handle, map[string]interface{}{"taskId": id})
	if res.IsError || !strings.Contains(resultText(res), `"title": "Temporary"`) {
		t.Errorf("delete_task = %s", resultText(res))
	}

	res = call(t, NewDeleteTool(store).Handle, map[string]interface{}{"taskId": id})
	if !res.IsError || resultText(res) != "Task not found: "+id {
		t.Errorf("second delete = %s", resultText(res))
	}
}

func TestTools_Unconfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := tasks.New(storage.NewProvider(config.Default(), logger), tasks.Options{Logger: logger})

	res := call(t, NewAddTool(store).Handle, map[string]interface{}{"title": "x"})
	if !res.IsError || !strings.Contains(resultText(res), "Database not configured") {
		t.Errorf("add_task unconfigured = %s", resultText(res))
	}
}
