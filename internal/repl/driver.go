// Package repl implements spec §4.I: the interactive loop tying terminal
// I/O, the line editor, the tool registry, and AgentLoop together, plus
// the session/chain/skills bookkeeping around it. Grounded on
// None9527-NGOClaw's app.go/commands.go (slash-command dispatch, spinner
// labels, runAgent loop shape) and the teacher's hooks.go (the hook
// record the host supplies to the loop).
package repl

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/neolite/zaica/internal/agent"
	"github.com/neolite/zaica/internal/config"
	"github.com/neolite/zaica/internal/lineeditor"
	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/model"
	"github.com/neolite/zaica/internal/session"
	"github.com/neolite/zaica/internal/skills"
	"github.com/neolite/zaica/internal/state"
	"github.com/neolite/zaica/internal/subagent"
	"github.com/neolite/zaica/internal/term"
	"github.com/neolite/zaica/internal/tools"
)

// basePrompt is prepended to every session's system message.
const basePrompt = `You are zaica, a terminal coding agent. Use the available tools to read, ` +
	`search, and modify files and to run shell commands on the user's behalf. Be concise.`

const autonomousSuffix = `

You are running in autonomous mode: every tool call is pre-approved. Work the task to ` +
	`completion without waiting for permission, but still stop and report back if you get stuck.`

// Driver owns every long-lived collaborator for one REPL run.
type Driver struct {
	cfg      config.Config
	io       *term.IO
	spinner  *term.Spinner
	editor   *lineeditor.Editor
	store    *session.Store
	registry *tools.Registry
	client   llmclient.Client
	catalog  *skills.Catalog
	subAgent *subagent.Runner
	graph    *state.Graph
	trust    *Trust

	sessionID string
	history   *model.History
	reader    *lineeditor.TTYReader
}

// New wires every collaborator from resolved config. catalog may be nil.
func New(cfg config.Config, client llmclient.Client, store *session.Store, catalog *skills.Catalog) *Driver {
	io := term.New()
	registry := tools.New(catalog)

	d := &Driver{
		cfg:      cfg,
		io:       io,
		spinner:  term.NewSpinner(io, time.Duration(cfg.SpinnerIntervalMs)*time.Millisecond),
		store:    store,
		registry: registry,
		client:   client,
		catalog:  catalog,
		graph:    state.New(),
		trust:    NewTrust(),
		reader:   lineeditor.NewTTYReader(os.Stdin),
	}
	d.editor = lineeditor.NewEditor(lineeditor.NewHistory(historyFilePath()), d.redrawInput, d.io.SetupLayout)
	d.subAgent = subagent.New(client, state.PermissionAll, cfg.SubAgentMaxIter, d.effectiveBashTimeout(), d.io.CancelRequested)
	if cfg.Yolo {
		d.trust.Grant(state.PermissionAll)
	}
	return d
}

func historyFilePath() string {
	p, err := config.HistoryFile()
	if err != nil {
		return ""
	}
	return p
}

func (d *Driver) redrawInput(line string, cursorCol int) {
	d.io.WriteRaw(d.io.InputRow(), "> "+line)
	_ = cursorCol
}

// systemPrompt builds the effective system prompt: base + autonomous
// suffix (yolo only) + the always-on skills block.
func (d *Driver) systemPrompt() string {
	prompt := basePrompt
	if d.cfg.Yolo {
		prompt += autonomousSuffix
	}
	if d.catalog != nil {
		prompt += d.catalog.PromptSuffix()
	}
	return prompt
}

// Start begins a brand new session.
func (d *Driver) Start() error {
	id, err := d.store.Create(d.cfg.Model, d.cfg.Provider)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	d.sessionID = id
	d.history = model.NewHistory(d.systemPrompt())
	return nil
}

// Resume continues an existing session, trimming to the configured
// context budget if necessary.
func (d *Driver) Resume(id string) error {
	messages, _, err := d.store.Load(id)
	if err != nil {
		return fmt.Errorf("load session %q: %w", id, err)
	}
	d.sessionID = id
	messages = session.TrimToBudget(messages, d.cfg.MaxContextTokens)
	d.history = model.NewHistory(d.systemPrompt())
	for _, m := range messages {
		d.history.Append(m)
	}
	return nil
}

// Run drives the interactive loop until /exit, ctrl_d, or a fatal error.
func (d *Driver) Run() error {
	if err := d.io.Raw(); err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer d.io.Cook()
	d.io.SetupLayout()
	defer d.io.WriteText("\n")

	for {
		line, err := d.editor.ReadLine(d.reader)
		if err != nil {
			return nil // ErrEOF (ctrl_d) ends the session cleanly
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if IsCommand(line) {
			result := d.handleCommand(line)
			if result.Output != "" {
				d.io.WriteText(result.Output + "\n")
			}
			if result.Exit {
				return nil
			}
			continue
		}

		if IsAbortPhrase(line) {
			d.io.RequestCancel()
			continue
		}

		d.io.ClearCancel()
		d.runTurn(line)
	}
}

// runTurn appends the user's message and drives AgentLoop to completion
// once, rendering spinner/tool-call output as it goes.
func (d *Driver) runTurn(userText string) {
	d.history.Append(model.NewText(model.RoleUser, userText))
	if err := d.store.AppendText(d.sessionID, model.NewText(model.RoleUser, userText)); err != nil {
		d.io.WriteText(fmt.Sprintf("[warning: failed to persist message: %v]\n", err))
	}

	d.graph.EmitPhaseChanged(state.PhaseStreaming)
	d.io.SetStatusLabel("Thinking...")
	d.spinner.Start()

	loop := agent.New(d.client, d.registry, agent.Config{
		MaxIterations:    d.effectiveMaxIterations(),
		MaxContextTokens: d.cfg.MaxContextTokens,
		Silent:           false,
		Permission:       d.effectivePermission(),
		BashTimeoutSecs:  d.effectiveBashTimeout(),
	}, d.hooks(), d.subAgent)

	result := loop.Run(d.history, nil)
	d.spinner.Stop()
	d.graph.EmitPhaseChanged(state.PhaseIdle)

	switch result.Status {
	case agent.StatusReturnedText:
		d.io.WriteText(result.Text + "\n")
	case agent.StatusHitLimit:
		d.io.WriteText("[reached the iteration limit without a final response]\n")
	case agent.StatusCancelled:
		d.io.WriteText("[cancelled]\n")
	case agent.StatusHTTPError:
		d.io.WriteText(fmt.Sprintf("[request failed: %d %s]\n", result.HTTPStatus, result.HTTPMsg))
	}
}

// RunOnce drives a single turn for the given prompt in single-shot mode
// (no raw terminal, no spinner, no line editor): the tool registry and
// session wiring are the interactive loop's, but permission is fixed at
// all with no prompt, output goes straight to stdout, and the process
// returns once the turn finishes.
func (d *Driver) RunOnce(userText string) error {
	d.history.Append(model.NewText(model.RoleUser, userText))
	if err := d.store.AppendText(d.sessionID, model.NewText(model.RoleUser, userText)); err != nil {
		fmt.Printf("[warning: failed to persist message: %v]\n", err)
	}

	loop := agent.New(d.client, d.registry, agent.Config{
		MaxIterations:    d.effectiveMaxIterations(),
		MaxContextTokens: d.cfg.MaxContextTokens,
		Silent:           true,
		Permission:       state.PermissionAll, // no stdin to prompt on in single-shot mode
		BashTimeoutSecs:  d.effectiveBashTimeout(),
	}, d.singleShotHooks(), d.subAgent)

	result := loop.Run(d.history, nil)

	switch result.Status {
	case agent.StatusReturnedText:
		fmt.Println(result.Text)
		return nil
	case agent.StatusHitLimit:
		return fmt.Errorf("reached the iteration limit without a final response")
	case agent.StatusCancelled:
		return fmt.Errorf("cancelled")
	default:
		return fmt.Errorf("request failed: %d %s", result.HTTPStatus, result.HTTPMsg)
	}
}

// singleShotHooks persists the turn's messages like the interactive
// hooks do, but renders nothing through term.IO and grants full tool
// access without prompting (a non-interactive invocation has no stdin to
// prompt on, matching --yolo's autonomous semantics).
func (d *Driver) singleShotHooks() agent.Hooks {
	return agent.Hooks{
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
	}
}

func (d *Driver) effectiveMaxIterations() int {
	if d.cfg.Infinity {
		return 0
	}
	return d.cfg.MaxIterations
}

// infinityBashTimeoutSecs stands in for "no timeout" in --infinity mode:
// RunShell treats <=0 as its own 30s default, so unbounded needs an
// actual large value instead of a sentinel zero.
const infinityBashTimeoutSecs = 24 * 60 * 60

func (d *Driver) effectiveBashTimeout() int {
	if d.cfg.Infinity {
		return infinityBashTimeoutSecs
	}
	return d.cfg.BashTimeoutSecs
}

func (d *Driver) effectivePermission() state.Permission {
	if d.cfg.Yolo {
		return state.PermissionAll
	}
	return state.PermissionNone
}
