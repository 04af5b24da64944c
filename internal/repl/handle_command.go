package repl

import (
	"fmt"
	"strings"

	"github.com/neolite/zaica/internal/model"
)

// handleCommand dispatches one slash command, first trying the stateless
// table in commands.go, then the commands that need driver state.
func (d *Driver) handleCommand(line string) CommandResult {
	if result, ok := dispatchCommand(line); ok {
		return result
	}

	word := strings.Fields(line)
	switch strings.ToLower(word[0]) {
	case "/tools":
		return CommandResult{Handled: true, Output: d.listTools()}
	case "/skills":
		return CommandResult{Handled: true, Output: d.listSkills()}
	case "/usage":
		return CommandResult{Handled: true, Output: d.usageReport()}
	case "/sessions":
		return CommandResult{Handled: true, Output: d.listSessions()}
	case "/compact":
		return CommandResult{Handled: true, Output: d.compact()}
	default:
		return CommandResult{Handled: true, Output: fmt.Sprintf("Unknown command: %s (try /help)", word[0])}
	}
}

func (d *Driver) listTools() string {
	var b strings.Builder
	b.WriteString("Tools:\n")
	for _, def := range d.registry.Definitions() {
		fmt.Fprintf(&b, "  %-16s [%s]  %s\n", def.Name, def.Risk, def.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Driver) listSkills() string {
	if d.catalog == nil {
		return "No skills configured."
	}
	var b strings.Builder
	b.WriteString("Always-on skills:\n")
	for _, s := range d.catalog.Always() {
		fmt.Fprintf(&b, "  %s: %s\n", s.Name, s.Description)
	}
	b.WriteString("On-demand skills:\n")
	for _, s := range d.catalog.OnDemand() {
		fmt.Fprintf(&b, "  %s: %s\n", s.Name, s.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Driver) usageReport() string {
	prompt := d.graph.PromptTokens.Get()
	completion := d.graph.CompletionTokens.Get()
	total := d.graph.TotalTokens.Get()
	line := fmt.Sprintf("prompt_tokens: %d\ncompletion_tokens: %d\ntotal_tokens: %d", prompt, completion, total)
	if d.cfg.MaxContextTokens > 0 {
		line += fmt.Sprintf("\ncontext_budget: %d%%", total*100/uint64(d.cfg.MaxContextTokens))
	}
	return line
}

func (d *Driver) listSessions() string {
	entries, err := d.store.List(20)
	if err != nil {
		return fmt.Sprintf("Error listing sessions: %v", err)
	}
	if len(entries) == 0 {
		return "No sessions."
	}
	var b strings.Builder
	for _, e := range entries {
		summary := e.Summary
		if summary == "" {
			summary = "(no summary)"
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", e.ID, e.Model, summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

// compactSummaryPrompt is the one-shot, non-streaming instruction used by
// /compact to produce a replacement for the dropped history.
const compactSummaryPrompt = "Summarize the conversation so far concisely, preserving any " +
	"decisions, file paths, and outstanding tasks the user will need to pick back up."

// compact implements spec §4.F.6's manual compaction path: one
// non-streaming LLM call over a linearized transcript (tool results
// capped at 500 chars each), then the live history collapses to
// [system, assistant-summary].
func (d *Driver) compact() string {
	if d.history.Len() <= 1 {
		return "Nothing to compact."
	}

	transcript := linearize(d.history.Messages())
	summaryHistory := model.NewHistory(compactSummaryPrompt)
	summaryHistory.Append(model.NewText(model.RoleUser, transcript))

	result, err := d.client.Stream(summaryHistory, nil, nil)
	if err != nil || result.Text == "" {
		return "Could not produce a summary; history left unchanged."
	}

	kept := []model.Message{model.NewText(model.RoleAssistant, "[Previous conversation summary] "+result.Text)}
	d.history.ReplaceFrom(kept)
	d.trust.Reset()
	if err := d.store.AppendSummary(d.sessionID, result.Text); err != nil {
		return fmt.Sprintf("Compacted, but failed to persist the summary: %v", err)
	}
	return "Conversation compacted."
}

func linearize(messages []model.Message) string {
	var b strings.Builder
	for _, m := range messages[1:] {
		switch m.Kind {
		case model.KindText:
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		case model.KindToolUse:
			for _, c := range m.Calls {
				fmt.Fprintf(&b, "tool_call: %s(%s)\n", c.Name, c.Arguments)
			}
		case model.KindToolResult:
			content := m.Content
			if len(content) > 500 {
				content = content[:500] + "..."
			}
			fmt.Fprintf(&b, "tool_result: %s\n", content)
		}
	}
	return b.String()
}
