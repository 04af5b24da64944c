// Package subagent implements spec §4.G SubAgent: a thin wrapper that runs
// internal/agent.Loop in silent mode with a focused system prompt and the
// reduced five-tool set, so a dispatch_agent call can never spawn a nested
// sub-agent or reach load_skill.
package subagent

import (
	"time"

	"github.com/neolite/zaica/internal/agent"
	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/tools"
)

// systemPrompt is the fixed instruction every sub-agent run starts from:
// stay focused on the delegated task and never ask the user a clarifying
// question, since nothing is listening on the other end of a sub-agent.
const systemPrompt = `You are a focused sub-agent handling one delegated task. ` +
	`Work the task to completion using the tools available to you and reply ` +
	`with your final answer as plain text. You cannot ask the user a ` +
	`clarifying question — if the task is ambiguous, make the most ` +
	`reasonable assumption, state it, and proceed.`

// DefaultMaxIterations is the sub-agent iteration cap when unconfigured.
const DefaultMaxIterations = 50

// Runner builds and drives one AgentLoop per Run call, implementing
// agent.SubAgentRunner. A single Runner is shared by every dispatch_agent
// call in a process; each Run gets its own two-message history and its
// own Loop, so concurrent dispatch_agent calls from a verbose-mode parent
// don't share state.
type Runner struct {
	client          llmclient.Client
	permission      state.Permission
	maxIterations   int
	bashTimeoutSecs int
	cancelled       func() bool
}

// New builds a Runner. permission is fixed here and applies to every Run,
// whatever the parent run's permission is at the time; cancelled polls the same process-wide cancellation flag the parent
// loop does.
func New(client llmclient.Client, permission state.Permission, maxIterations, bashTimeoutSecs int, cancelled func() bool) *Runner {
	return &Runner{
		client:          client,
		permission:      permission,
		maxIterations:   maxIterations,
		bashTimeoutSecs: bashTimeoutSecs,
		cancelled:       cancelled,
	}
}

// Run builds a fresh history and registry, runs AgentLoop silently to
// completion, and converts its Result into a returned-text triple. Per
// spec §4.G this never returns a Go error: every failure mode becomes a
// synthesized text.
func (r *Runner) Run(task string) (text string, prompt, completion uint64) {
	history := model.NewHistory(systemPrompt)
	history.Append(model.NewText(model.RoleUser, task))

	registry := tools.NewSubAgent()
	if r.bashTimeoutSecs > 0 {
		registry.DefaultBashTimeout = time.Duration(r.bashTimeoutSecs) * time.Second
	}

	maxIter := r.maxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	loop := agent.New(r.client, registry, agent.Config{
		MaxIterations:   maxIter,
		Silent:          true,
		Permission:      r.permission,
		BashTimeoutSecs: r.bashTimeoutSecs,
	}, agent.Hooks{
		CancelRequested: r.cancelled,
	}, nil)

	result := loop.Run(history, nil)

	switch result.Status {
	case agent.StatusReturnedText:
		return result.Text, result.Prompt, result.Completion
	case agent.StatusCancelled:
		return "[Cancelled]", result.Prompt, result.Completion
	case agent.StatusHitLimit:
		return "Sub-agent reached iteration limit without producing a final response.", result.Prompt, result.Completion
	default:
		return "Sub-agent error: no response", result.Prompt, result.Completion
	}
}
