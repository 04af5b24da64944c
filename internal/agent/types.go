package agent

import (
	"time"

	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/tools"
)

// Status is AgentLoop's terminal state, per spec §4.F.
type Status string

const (
	StatusReturnedText Status = "returned_text"
	StatusHitLimit     Status = "hit_limit"
	StatusCancelled    Status = "cancelled"
	StatusHTTPError    Status = "http_error"
)

// Result is what AgentLoop.Run returns.
type Result struct {
	Status     Status
	Text       string
	Prompt     uint64
	Completion uint64
	HTTPStatus int
	HTTPMsg    string
}

// Config bounds one AgentLoop run. Grounded on the teacher's
// AgentConfig/AgentRun in agent.go (run/LLM timeouts, reflection
// interval become MaxIterations/MaxContextTokens here).
type Config struct {
	MaxIterations    int
	MaxContextTokens int
	Silent           bool
	Permission       state.Permission
	BashTimeoutSecs  int
}

// HistoryView wraps *model.History for the compaction hook so
// internal/repl's hook implementations can inspect/replace messages
// without depending on model.Message's internal shape beyond what they
// need (role, kind, estimated size).
type HistoryView struct {
	h *model.History
}

// NewHistoryView wraps h.
func NewHistoryView(h *model.History) *HistoryView { return &HistoryView{h: h} }

// Len returns the number of messages.
func (v *HistoryView) Len() int { return v.h.Len() }

// EstimatedTokens sums model.EstimateTokens over every message.
func (v *HistoryView) EstimatedTokens() int {
	total := 0
	for _, m := range v.h.Messages() {
		total += model.EstimateTokens(m)
	}
	return total
}

// CompactTo replaces history with [system, kept...] and returns how many
// messages were dropped and kept.
func (v *HistoryView) CompactTo(kept []model.Message) (dropped, keptCount int) {
	before := v.h.Len()
	v.h.ReplaceFrom(kept)
	return before - len(kept) - 1, len(kept)
}

// Messages exposes the raw slice for compaction's backward walk.
func (v *HistoryView) Messages() []model.Message { return v.h.Messages() }

// Loop drives one AgentLoop run.
type Loop struct {
	client   llmclient.Client
	registry *tools.Registry
	cfg      Config
	hooks    Hooks
	detector *loopDetector
	subAgent SubAgentRunner
}

// SubAgentRunner routes dispatch_agent calls; internal/subagent.Runner
// implements this. Declared here (rather than importing internal/subagent
// directly) to avoid an import cycle, since SubAgent itself embeds a Loop.
type SubAgentRunner interface {
	Run(task string) (text string, prompt, completion uint64)
}

// New builds a Loop. If cfg.BashTimeoutSecs is set, it overwrites
// registry's DefaultBashTimeout; the registry keeps that value after this
// Loop is done, so every later user of a shared registry sees it.
func New(client llmclient.Client, registry *tools.Registry, cfg Config, hooks Hooks, subAgent SubAgentRunner) *Loop {
	if cfg.BashTimeoutSecs > 0 {
		registry.DefaultBashTimeout = time.Duration(cfg.BashTimeoutSecs) * time.Second
	}
	return &Loop{
		client:   client,
		registry: registry,
		cfg:      cfg,
		hooks:    hooks,
		detector: newLoopDetector(),
		subAgent: subAgent,
	}
}
