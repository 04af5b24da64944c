package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/tools"
)

// execOutcome reports how a ToolUse batch resolved, short-circuiting the
// caller's loop detection and compaction steps on cancellation or a
// blanket permission denial.
type execOutcome struct {
	cancelled        bool
	permissionDenied bool
}

// toolOutcome is one call's raw (untruncated) result, paired with its
// name and id for display and for the ToolResult message.
type toolOutcome struct {
	callID string
	name   string
	output string
}

// execTools runs one batch of tool calls, implementing spec §4.F.3.
func (l *Loop) execTools(history *model.History, calls []model.ToolCall) execOutcome {
	views := toolCallViews(calls)
	perm := l.cfg.Permission
	if l.hooks.OnToolCalls != nil {
		perm = l.hooks.OnToolCalls(views)
	}

	if perm == state.PermissionNone {
		history.Append(model.NewToolUse(calls))
		if l.hooks.PersistToolUse != nil {
			l.hooks.PersistToolUse(views)
		}
		for _, c := range calls {
			l.appendToolResult(history, c.ID, "Permission denied by user.")
		}
		return execOutcome{permissionDenied: true}
	}

	if l.cancelled() {
		return execOutcome{cancelled: true}
	}

	history.Append(model.NewToolUse(calls))
	if l.hooks.PersistToolUse != nil {
		l.hooks.PersistToolUse(views)
	}

	var outcomes []toolOutcome
	if l.cfg.Silent {
		outcomes = l.execSilent(calls, perm)
	} else {
		outcomes = l.execVerbose(calls, perm)
	}

	for _, o := range outcomes {
		if l.hooks.OnToolResult != nil {
			l.hooks.OnToolResult(o.callID, o.name, o.output)
		}
	}
	for _, o := range outcomes {
		l.appendToolResult(history, o.callID, tools.Truncate(o.name, o.output))
	}

	return execOutcome{}
}

func (l *Loop) appendToolResult(history *model.History, callID, content string) {
	history.Append(model.NewToolResult(callID, content))
	if l.hooks.PersistToolResult != nil {
		l.hooks.PersistToolResult(callID, content)
	}
}

// execSilent runs every call sequentially on the caller's goroutine, per
// spec §4.F.3's silent-mode rule: no worker threads, so a sub-agent
// dispatched from here can't itself spawn workers.
func (l *Loop) execSilent(calls []model.ToolCall, perm state.Permission) []toolOutcome {
	out := make([]toolOutcome, 0, len(calls))
	for _, c := range calls {
		out = append(out, l.runOne(c, perm))
	}
	return out
}

// execVerbose spawns one worker goroutine per allowed call, polling every
// 50ms for completion or cancellation per spec §4.F.3. A cancel observed
// mid-poll is authoritative: unfinished slots are filled with
// "[Cancelled]" and their goroutines are abandoned rather than waited on.
func (l *Loop) execVerbose(calls []model.ToolCall, perm state.Permission) []toolOutcome {
	out := make([]toolOutcome, len(calls))
	done := make([]atomic.Bool, len(calls))
	var mu sync.Mutex

	for i, c := range calls {
		out[i] = toolOutcome{callID: c.ID, name: c.Name}
		if !tools.IsAllowed(c.Name, perm) {
			out[i].output = fmt.Sprintf("Permission denied: %s requires full tool access", c.Name)
			done[i].Store(true)
			continue
		}
		go func(i int, c model.ToolCall) {
			result := l.dispatch(c)
			mu.Lock()
			out[i].output = result
			mu.Unlock()
			done[i].Store(true)
		}(i, c)
	}

	const pollInterval = 50 * time.Millisecond
	for {
		allDone := true
		for i := range done {
			if !done[i].Load() {
				allDone = false
				break
			}
		}
		if allDone {
			break
		}
		if l.cancelled() {
			break
		}
		time.Sleep(pollInterval)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := range out {
		if !done[i].Load() {
			out[i].output = "[Cancelled]"
		}
	}
	return out
}

// runOne dispatches a single call, honoring per-call risk gating (a batch
// may mix tools the effective permission level does and doesn't cover)
// and routing dispatch_agent to the SubAgent runner instead of the
// registry.
func (l *Loop) runOne(c model.ToolCall, perm state.Permission) toolOutcome {
	if !tools.IsAllowed(c.Name, perm) {
		return toolOutcome{callID: c.ID, name: c.Name, output: fmt.Sprintf("Permission denied: %s requires full tool access", c.Name)}
	}
	return toolOutcome{callID: c.ID, name: c.Name, output: l.dispatch(c)}
}

func (l *Loop) dispatch(c model.ToolCall) string {
	if c.Name == tools.DispatchAgent {
		return l.dispatchToSubAgent(c.Arguments)
	}
	return l.registry.Dispatch(context.Background(), c.Name, c.Arguments)
}

func (l *Loop) dispatchToSubAgent(argumentsJSON string) string {
	if l.subAgent == nil {
		return "Error: no sub-agent runner configured"
	}
	var args struct {
		Task string `json:"task"`
	}
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	text, prompt, completion := l.subAgent.Run(args.Task)
	if l.hooks.OnTokens != nil {
		l.hooks.OnTokens(prompt, completion)
	}
	return text
}

func toolCallViews(calls []model.ToolCall) []ToolCallView {
	out := make([]ToolCallView, len(calls))
	for i, c := range calls {
		out[i] = ToolCallView{ID: c.ID, Name: c.Name, Arguments: c.Arguments}
	}
	return out
}
