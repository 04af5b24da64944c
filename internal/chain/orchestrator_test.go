package chain

import (
	"testing"

	"github.com/neolite/zaica/internal/agent"
	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/tools"
)

func TestResolveToolFilterNilMeansAll(t *testing.T) {
	reg := tools.New(nil)
	step := model.ChainStep{Name: "s"}
	if got := ResolveToolFilter(step, reg); got != nil {
		t.Fatalf("ResolveToolFilter = %v, want nil", got)
	}
}

func TestResolveToolFilterPreservesRegistryOrder(t *testing.T) {
	reg := tools.New(nil)
	step := model.ChainStep{Name: "s", ToolFilter: []string{tools.WriteFile, tools.ReadFile}}
	got := ResolveToolFilter(step, reg)
	want := []string{tools.ReadFile, tools.WriteFile}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ResolveToolFilter = %v, want %v", got, want)
	}
}

func TestMaxRiskPicksHighestAcrossSteps(t *testing.T) {
	reg := tools.New(nil)
	spec := &model.ChainSpec{Steps: []model.ChainStep{
		{Name: "safe-step", ToolFilter: []string{tools.ReadFile}},
		{Name: "dangerous-step", ToolFilter: []string{tools.ExecuteBash}},
	}}
	if got := MaxRisk(spec, reg); got != tools.RiskDangerous {
		t.Fatalf("MaxRisk = %v, want dangerous", got)
	}
}

func TestRunTwoStepsPropagatesPrevious(t *testing.T) {
	reg := tools.New(nil)
	client := llmclient.NewFakeClient(
		llmclient.Result{Text: "step one done"},
		llmclient.Result{Text: "step two done"},
	)
	spec := &model.ChainSpec{Steps: []model.ChainStep{
		{Name: "one", PromptTemplate: "do {task}", MaxIterations: 5},
		{Name: "two", PromptTemplate: "given {previous}, finish", MaxIterations: 5},
	}}

	outcome := Run(spec, "the task", reg, client, agent.Hooks{}, nil, state.PermissionAll)

	if outcome.Aborted {
		t.Fatalf("unexpected abort: %s", outcome.AbortText)
	}
	if len(outcome.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(outcome.Steps))
	}
	if outcome.Steps[1].Text != "step two done" {
		t.Fatalf("step two text = %q", outcome.Steps[1].Text)
	}
	if len(client.Seen) != 2 {
		t.Fatalf("Stream called %d times, want 2", len(client.Seen))
	}
}

func TestRunAbortsOnCancelled(t *testing.T) {
	reg := tools.New(nil)
	client := llmclient.NewFakeClient() // no scripted results; never called, since cancel is already set
	spec := &model.ChainSpec{Steps: []model.ChainStep{
		{Name: "one", PromptTemplate: "do {task}", MaxIterations: 5},
	}}
	cancelled := true
	hooks := agent.Hooks{CancelRequested: func() bool { return cancelled }}

	outcome := Run(spec, "task", reg, client, hooks, nil, state.PermissionAll)

	if !outcome.Aborted || outcome.AbortColor != ColorYellow {
		t.Fatalf("outcome = %+v, want an aborted/yellow result", outcome)
	}
}

func TestDryRunListsSteps(t *testing.T) {
	reg := tools.New(nil)
	spec := &model.ChainSpec{Steps: []model.ChainStep{
		{Name: "one", ToolFilter: []string{tools.ReadFile}, MaxIterations: 3},
		{Name: "two", MaxIterations: 10},
	}}
	lines := DryRun(spec, reg)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
}
