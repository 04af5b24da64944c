package chain

import (
	"fmt"
	"strings"

	"github.com/neolite/zaica/internal/agent"
	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/tools"
)

// AbortColor hints how the REPL should render an abort message.
type AbortColor string

const (
	ColorRed    AbortColor = "red"
	ColorYellow AbortColor = "yellow"
)

// StepResult is one completed step's outcome.
type StepResult struct {
	Name   string
	Status agent.Status
	Text   string
}

// Outcome is the result of running (or dry-running) a whole chain.
type Outcome struct {
	Steps      []StepResult
	Aborted    bool
	AbortColor AbortColor
	AbortText  string
}

// ResolveToolFilter implements spec §4.H's tool resolution: nil means
// every tool in the registry; otherwise the registry's tool set is
// filtered down to the step's named tools, preserving registry order.
func ResolveToolFilter(step model.ChainStep, registry *tools.Registry) []string {
	if step.ToolFilter == nil {
		return nil
	}
	want := make(map[string]bool, len(step.ToolFilter))
	for _, n := range step.ToolFilter {
		want[n] = true
	}
	out := make([]string, 0, len(step.ToolFilter))
	for _, d := range registry.Definitions() {
		if want[d.Name] {
			out = append(out, d.Name)
		}
	}
	return out
}

// MaxRisk computes chainMaxRisk across every step's resolved tool set,
// for the one-time permission prompt of spec §4.H.
func MaxRisk(spec *model.ChainSpec, registry *tools.Registry) tools.Risk {
	highest := tools.RiskSafe
	for _, step := range spec.Steps {
		names := ResolveToolFilter(step, registry)
		if names == nil {
			for _, d := range registry.Definitions() {
				highest = higherRisk(highest, d.Risk)
			}
			continue
		}
		for _, n := range names {
			if d, ok := registry.Lookup(n); ok {
				highest = higherRisk(highest, d.Risk)
			}
		}
	}
	return highest
}

var riskRank = map[tools.Risk]int{tools.RiskSafe: 0, tools.RiskWrite: 1, tools.RiskDangerous: 2}

func higherRisk(a, b tools.Risk) tools.Risk {
	if riskRank[b] > riskRank[a] {
		return b
	}
	return a
}

// Run executes every step in order, per spec §4.H's execution rules.
// hooks are reused across steps (REPL-style spinner/display hooks);
// subAgent is wired into every step's Loop so a step's dispatch_agent
// calls still work. permission is the level granted by the one-time
// chainMaxRisk prompt the caller ran before calling Run; callers must
// not call Run at all if that prompt was denied.
func Run(spec *model.ChainSpec, task string, registry *tools.Registry, client llmclient.Client, hooks agent.Hooks, subAgent agent.SubAgentRunner, permission state.Permission) Outcome {
	previous := ""
	var results []StepResult

	for _, step := range spec.Steps {
		toolNames := ResolveToolFilter(step, registry)
		systemPrompt := step.Substitute(task, previous)

		history := model.NewHistory(systemPrompt)
		history.Append(model.NewText(model.RoleUser, task))

		loop := agent.New(client, registry, agent.Config{
			MaxIterations: step.MaxIterations,
			Permission:    permission,
		}, hooks, subAgent)

		result := loop.Run(history, toolNames)

		switch result.Status {
		case agent.StatusReturnedText:
			results = append(results, StepResult{Name: step.Name, Status: result.Status, Text: result.Text})
			previous = result.Text

		case agent.StatusHitLimit:
			text, ok := history.LastAssistantText()
			if !ok || text == "" {
				text = history.ConcatToolResults()
			}
			if text == "" {
				return Outcome{
					Steps: results, Aborted: true, AbortColor: ColorRed,
					AbortText: fmt.Sprintf("step %q hit its iteration limit with no recoverable output", step.Name),
				}
			}
			results = append(results, StepResult{Name: step.Name, Status: result.Status, Text: text})
			previous = text

		case agent.StatusCancelled:
			return Outcome{
				Steps: results, Aborted: true, AbortColor: ColorYellow,
				AbortText: fmt.Sprintf("chain cancelled during step %q", step.Name),
			}

		default: // agent.StatusHTTPError
			return Outcome{
				Steps: results, Aborted: true, AbortColor: ColorRed,
				AbortText: fmt.Sprintf("step %q errored: %s", step.Name, result.HTTPMsg),
			}
		}
	}

	return Outcome{Steps: results}
}

// DryRun renders one line per step describing its tool filter and
// iteration cap, per spec §4.H's dry-run mode.
func DryRun(spec *model.ChainSpec, registry *tools.Registry) []string {
	lines := make([]string, 0, len(spec.Steps))
	for _, step := range spec.Steps {
		names := ResolveToolFilter(step, registry)
		toolsDesc := "all"
		if names != nil {
			toolsDesc = strings.Join(names, ", ")
		}
		lines = append(lines, fmt.Sprintf("%s: tools=%s max_iterations=%d", step.Name, toolsDesc, step.MaxIterations))
	}
	return lines
}
