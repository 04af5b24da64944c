// Package agent implements spec §4.F AgentLoop: the bounded
// LLM-call/tool-execution state machine, its retry policy, tool
// execution (silent sequential vs verbose parallel), loop detection,
// and the compaction hook. Grounded on the teacher's agent.go
// (AgentRun shape, timeouts, loop detector wiring) and hooks.go
// (lifecycle callback naming), with the generic pub-sub HookManager
// collapsed into a single Hooks struct of optional function fields —
// spec §9's own recommendation over a process-wide hook registry.
package agent

import "github.com/neolite/zaica/internal/state"

// Hooks is the side-effect injection point AgentLoop is driven with.
// Every field is optional; a nil field is a no-op. Passing hooks as a
// single argument (rather than a process-wide context pointer, as the
// teacher's HookManager does) keeps AgentLoop unit-testable without a
// global, per spec §9.
type Hooks struct {
	// OnToolCalls is invoked before executing a ToolUse batch. It may
	// prompt the user and returns the effective permission level to
	// gate dispatch with.
	OnToolCalls func(calls []ToolCallView) state.Permission

	// OnToolResult is invoked once per completed tool call, for display.
	OnToolResult func(callID, name, result string)

	// OnChunk is invoked per streamed text delta in verbose mode.
	OnChunk func(text string)

	// OnLLMEnd fires when an LLM call (successful or not) finishes,
	// signaling the UI to stop its spinner.
	OnLLMEnd func()

	// OnTokens fires after every successful LLM call of this loop, and
	// once per dispatch_agent call with the sub-agent's summed usage, so
	// the REPL's running token counters stay accurate (spec §4.F.3 step 5).
	OnTokens func(prompt, completion uint64)

	// OnHTTPError fires after retries exhaust.
	OnHTTPError func(status int, message string)

	// OnLoopDetected fires when the loop-detection ring flags a repeat.
	// Returns the steering message to enqueue; if nil, the default
	// warning from spec §4.F.4 is used.
	OnLoopDetected func() string

	// OnCompactionCheck runs after each iteration that executed a tool
	// batch and may compact history in place. It returns a status string,
	// or "" if no compaction occurred; the loop ignores the returned value.
	OnCompactionCheck func(h *HistoryView) string

	// Persist* hooks append one record per message to the session
	// store as the loop progresses.
	PersistUserText   func(content string)
	PersistToolUse    func(calls []ToolCallView)
	PersistToolResult func(callID, content string)
	PersistAssistant  func(content string)

	// CancelRequested polls the process-wide cancellation flag
	// (internal/term.IO.CancelRequested).
	CancelRequested func() bool
}

// ToolCallView is the read-only projection of a model.ToolCall exposed
// to hooks, so internal/agent doesn't need to import internal/model's
// mutable Message type into hook signatures.
type ToolCallView struct {
	ID        string
	Name      string
	Arguments string
}
