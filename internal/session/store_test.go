package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neolite/zaica/internal/model"
)

func TestNewIDFormat(t *testing.T) {
	got := NewID(1706757296) // 2024-02-01 03:14:56 UTC
	want := "20240201-031456"
	if got != want {
		t.Fatalf("NewID() = %q, want %q", got, want)
	}
}

func TestNewIDEpoch(t *testing.T) {
	got := NewID(0)
	want := "19700101-000000"
	if got != want {
		t.Fatalf("NewID(0) = %q, want %q", got, want)
	}
}

func TestStoreCreateAndLoad(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	id, err := st.Create("gpt-4o", "openai")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := st.AppendText(id, model.NewText(model.RoleUser, "hello")); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	if err := st.AppendToolUse(id, model.NewToolUse([]model.ToolCall{{ID: "c1", Name: "read_file", Arguments: `{"path":"a.go"}`}})); err != nil {
		t.Fatalf("AppendToolUse: %v", err)
	}
	if err := st.AppendToolResult(id, model.NewToolResult("c1", "file contents")); err != nil {
		t.Fatalf("AppendToolResult: %v", err)
	}
	if err := st.AppendText(id, model.NewText(model.RoleAssistant, "done")); err != nil {
		t.Fatalf("AppendText: %v", err)
	}

	messages, meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Model != "gpt-4o" || meta.Provider != "openai" {
		t.Fatalf("meta = %+v", meta)
	}
	if len(messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(messages))
	}
	if messages[0].Content != "hello" || messages[0].Role != model.RoleUser {
		t.Fatalf("messages[0] = %+v", messages[0])
	}
	if messages[1].Kind != model.KindToolUse || messages[1].Calls[0].Name != "read_file" {
		t.Fatalf("messages[1] = %+v", messages[1])
	}
	if messages[2].Kind != model.KindToolResult || messages[2].CallID != "c1" {
		t.Fatalf("messages[2] = %+v", messages[2])
	}
	if messages[3].Content != "done" {
		t.Fatalf("messages[3] = %+v", messages[3])
	}
}

func TestStoreLoadSkipsSystemMessages(t *testing.T) {
	dir := t.TempDir()
	st, _ := New(dir, nil)
	id, _ := st.Create("gpt-4o", "openai")

	st.AppendText(id, model.NewText(model.RoleSystem, "old system prompt"))
	st.AppendText(id, model.NewText(model.RoleUser, "hi"))

	messages, _, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != model.RoleUser {
		t.Fatalf("messages = %+v, want only the user message", messages)
	}
}

func TestStoreLoadSkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	st, _ := New(dir, nil)
	id, _ := st.Create("gpt-4o", "openai")
	st.AppendText(id, model.NewText(model.RoleUser, "hi"))

	path := filepath.Join(dir, id+".jsonl")
	appendRawLine(t, path, "{not valid json")

	st.AppendText(id, model.NewText(model.RoleAssistant, "ok"))

	messages, _, err := st.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2 (corrupt line skipped)", len(messages))
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st, _ := New(dir, nil)

	id1, _ := st.Create("gpt-4o", "openai")
	st.AppendSummary(id1, "first session summary")

	entries, err := st.List(20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].ID != id1 || entries[0].Summary != "first session summary" {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
}

func TestTrimToBudgetAdvancesToUserBoundary(t *testing.T) {
	long := make([]byte, 4000)
	for i := range long {
		long[i] = 'x'
	}
	messages := []model.Message{
		model.NewText(model.RoleUser, string(long)),
		model.NewToolUse([]model.ToolCall{{ID: "c1", Name: "read_file"}}),
		model.NewToolResult("c1", string(long)),
		model.NewText(model.RoleUser, "second question"),
		model.NewText(model.RoleAssistant, "second answer"),
	}

	trimmed := TrimToBudget(messages, 1000)

	if len(trimmed) == 0 {
		t.Fatal("expected some messages retained")
	}
	if trimmed[0].Role != model.RoleUser || trimmed[0].Kind != model.KindText {
		t.Fatalf("trimmed does not start on a user boundary: %+v", trimmed[0])
	}
}

func TestTrimToBudgetNoopUnderLimit(t *testing.T) {
	messages := []model.Message{
		model.NewText(model.RoleUser, "short"),
		model.NewText(model.RoleAssistant, "short reply"),
	}
	trimmed := TrimToBudget(messages, 100000)
	if len(trimmed) != len(messages) {
		t.Fatalf("expected no trim, got %d messages", len(trimmed))
	}
}

func appendRawLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
}
