package repl

import (
	"fmt"
	"strings"

	"github.com/neolite/zaica/internal/agent"
	"github.com/neolite/zaica/internal/lineeditor"
	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/term"
	"github.com/neolite/zaica/internal/tools"
)

// hooks builds the Hooks record for one AgentLoop run, wiring permission
// prompting (trust-aware), tool-call/result rendering, session
// persistence, token accounting, and the compaction status line.
func (d *Driver) hooks() agent.Hooks {
	return agent.Hooks{
		OnToolCalls:       d.onToolCalls,
		OnToolResult:      d.onToolResult,
		OnChunk:           d.onChunk,
		OnLLMEnd:          func() { d.io.SetStatusLabel("Thinking...") },
		OnTokens:          d.onTokens,
		OnHTTPError:       d.onHTTPError,
		OnCompactionCheck: d.onCompactionCheck,
		PersistUserText: func(content string) {
			_ = d.store.AppendText(d.sessionID, model.NewText(model.RoleUser, content))
		},
		PersistToolUse: func(calls []agent.ToolCallView) {
			tc := make([]model.ToolCall, len(calls))
			for i, c := range calls {
				tc[i] = model.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments}
			}
			_ = d.store.AppendToolUse(d.sessionID, model.NewToolUse(tc))
		},
		PersistToolResult: func(callID, content string) {
			_ = d.store.AppendToolResult(d.sessionID, model.NewToolResult(callID, content))
		},
		PersistAssistant: func(content string) {
			_ = d.store.AppendText(d.sessionID, model.NewText(model.RoleAssistant, content))
		},
		CancelRequested: d.io.CancelRequested,
	}
}

// onToolCalls implements the permission gate of spec §4.F.3: yolo always
// grants all; otherwise the highest risk level among this batch decides
// whether a prompt is needed, and Trust suppresses re-prompting once a
// level has already been granted this run.
func (d *Driver) onToolCalls(calls []agent.ToolCallView) state.Permission {
	if d.cfg.Yolo {
		return state.PermissionAll
	}

	needed := state.PermissionSafeOnly
	for _, c := range calls {
		if def, ok := d.registry.Lookup(c.Name); ok && def.Risk != tools.RiskSafe {
			needed = state.PermissionAll
		}
	}
	if d.trust.Covers(needed) {
		return d.trust.granted
	}

	d.graph.EmitPhaseChanged(state.PhaseAwaitingPerm)
	d.spinner.Stop()
	level := d.promptPermission(calls)
	d.graph.EmitPermissionGranted(level)
	d.trust.Grant(level)
	d.spinner.Start()
	d.graph.EmitPhaseChanged(state.PhaseStreaming)
	return level
}

func (d *Driver) promptPermission(calls []agent.ToolCallView) state.Permission {
	var b strings.Builder
	b.WriteString("\nThe assistant wants to run:\n")
	for _, c := range calls {
		fmt.Fprintf(&b, "  %s(%s)\n", c.Name, previewArgs(c.Arguments))
	}
	b.WriteString("Allow? [y]es all / [s]afe only / [n]o: ")
	d.io.WriteText(b.String())

	result, err := lineeditor.ReadPermissionKey(d.reader)
	if err != nil || result.Cancel {
		d.io.RequestCancel()
		return state.PermissionNone
	}
	return result.Level
}

func previewArgs(argumentsJSON string) string {
	s := strings.TrimSpace(argumentsJSON)
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}

// onToolResult renders one completed call's name and a truncated preview
// of its output, coloring errors and permission denials red.
func (d *Driver) onToolResult(callID, name, result string) {
	_ = callID
	preview := result
	if len(preview) > 1024 {
		preview = preview[:1024] + "..."
	}
	color := term.Green
	if strings.HasPrefix(result, "Error") || strings.HasPrefix(result, "Permission denied") {
		color = term.Red
	}
	d.io.WriteText(fmt.Sprintf("✦ %s\n◇ %s%s%s\n", name, color, preview, term.Reset))
}

func (d *Driver) onChunk(text string) {
	d.io.WriteText(text)
}

func (d *Driver) onTokens(prompt, completion uint64) {
	d.graph.EmitTokensReceived(state.TokenUsage{Prompt: prompt, Completion: completion})
	total := d.graph.TotalTokens.Get()
	pct := ""
	if d.cfg.MaxContextTokens > 0 {
		pct = fmt.Sprintf(" (%d%%)", total*100/uint64(d.cfg.MaxContextTokens))
	}
	d.io.SetStatusStatic(fmt.Sprintf("%s | %d tokens%s", d.cfg.Model, total, pct))
}

func (d *Driver) onHTTPError(status int, message string) {
	d.io.WriteText(fmt.Sprintf("[http error %d: %s]\n", status, message))
}

func (d *Driver) onCompactionCheck(v *agent.HistoryView) string {
	status := agent.DefaultCompactionCheck(v, d.cfg.MaxContextTokens)
	if status != "" {
		d.io.WriteText(status + "\n")
	}
	return status
}

