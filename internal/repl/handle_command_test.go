package repl

import (
	"strings"
	"testing"

	"github.com/neolite/zaica/internal/model"
)

func TestLinearizeSkipsSystemMessageAndRendersEachKind(t *testing.T) {
	messages := []model.Message{
		model.NewText(model.RoleSystem, "system prompt"),
		model.NewText(model.RoleUser, "read main.go"),
		model.NewToolUse([]model.ToolCall{{ID: "1", Name: "read_file", Arguments: `{"path":"main.go"}`}}),
		model.NewToolResult("1", "package main"),
		model.NewText(model.RoleAssistant, "done"),
	}

	out := linearize(messages)

	if strings.Contains(out, "system prompt") {
		t.Error("linearize should skip the leading system message")
	}
	if !strings.Contains(out, "read main.go") {
		t.Error("missing user text")
	}
	if !strings.Contains(out, "tool_call: read_file") {
		t.Error("missing tool_call line")
	}
	if !strings.Contains(out, "tool_result: package main") {
		t.Error("missing tool_result line")
	}
	if !strings.Contains(out, "done") {
		t.Error("missing assistant text")
	}
}

func TestLinearizeTruncatesLongToolResults(t *testing.T) {
	long := strings.Repeat("x", 1000)
	messages := []model.Message{
		model.NewText(model.RoleSystem, "sys"),
		model.NewToolResult("1", long),
	}

	out := linearize(messages)
	if strings.Contains(out, long) {
		t.Error("long tool results should be truncated")
	}
	if !strings.Contains(out, "...") {
		t.Error("truncated output should be marked with an ellipsis")
	}
}
