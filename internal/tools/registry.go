package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// defaultBashTimeout is used when neither a call's timeout_seconds nor
// the registry's configured default override it.
const defaultBashTimeout = 30 * time.Second

func secondsToDuration(s int) time.Duration { return time.Duration(s) * time.Second }

// SkillProvider resolves a skill by name for the load_skill tool.
// internal/skills.Catalog implements this.
type SkillProvider interface {
	Load(name string) (body string, err error)
}

// Registry is the fixed tool table plus dispatch, per spec §4.C.
// dispatch_agent is listed (so its schema is advertised to the LLM) but
// never executed here — callers must detect it by name and route to
// internal/subagent, so the registry itself never creates a
// thread-of-threads.
type Registry struct {
	defs        map[string]Definition
	order       []string
	skills      SkillProvider
	destructive *DestructiveTracker

	// DefaultBashTimeout is used for execute_bash calls that omit
	// timeout_seconds. Zero means defaultBashTimeout (30s). AgentLoop
	// sets this from Config.BashTimeoutSecs.
	DefaultBashTimeout time.Duration
}

// New builds the full seven-tool registry (used by the top-level REPL
// AgentLoop). skills may be nil if no skill catalog is configured.
func New(skills SkillProvider) *Registry {
	r := &Registry{defs: make(map[string]Definition), skills: skills, destructive: NewDestructiveTracker(DefaultDestructiveConfig(), nil)}
	r.add(ExecuteBash, "Execute a shell command. Stdin is /dev/null; the command is killed if it runs past its timeout.", RiskDangerous, reflectSchema(&bashArgs{}))
	r.add(ReadFile, "Read the full contents of a file.", RiskSafe, reflectSchema(&readFileArgs{}))
	r.add(WriteFile, "Write content to a file, creating parent directories and overwriting any existing content.", RiskWrite, reflectSchema(&writeFileArgs{}))
	r.add(ListFiles, "List the entries of a directory.", RiskSafe, reflectSchema(&listFilesArgs{}))
	r.add(SearchFiles, "Search file contents for a regular expression.", RiskSafe, reflectSchema(&searchFilesArgs{}))
	r.add(DispatchAgent, "Delegate a self-contained task to a focused sub-agent and return its final answer.", RiskDangerous, reflectSchema(&dispatchAgentArgs{}))
	r.add(LoadSkill, "Load the full content of an on-demand skill by name.", RiskSafe, reflectSchema(&loadSkillArgs{}))
	return r
}

// NewSubAgent builds the reduced five-tool registry sub-agents see: no
// dispatch_agent, no load_skill, per spec §4.C.
func NewSubAgent() *Registry {
	r := &Registry{defs: make(map[string]Definition), destructive: NewDestructiveTracker(DefaultDestructiveConfig(), nil)}
	r.add(ExecuteBash, "Execute a shell command. Stdin is /dev/null; the command is killed if it runs past its timeout.", RiskDangerous, reflectSchema(&bashArgs{}))
	r.add(ReadFile, "Read the full contents of a file.", RiskSafe, reflectSchema(&readFileArgs{}))
	r.add(WriteFile, "Write content to a file, creating parent directories and overwriting any existing content.", RiskWrite, reflectSchema(&writeFileArgs{}))
	r.add(ListFiles, "List the entries of a directory.", RiskSafe, reflectSchema(&listFilesArgs{}))
	r.add(SearchFiles, "Search file contents for a regular expression.", RiskSafe, reflectSchema(&searchFilesArgs{}))
	return r
}

func (r *Registry) add(name, description string, risk Risk, schema map[string]any) {
	r.defs[name] = Definition{Name: name, Description: description, Risk: risk, Schema: schema}
	r.order = append(r.order, name)
}

// Definitions returns the tool table in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Lookup returns a tool's definition.
func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Has reports whether name is in this registry's tool set.
func (r *Registry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Dispatch runs one tool call and returns an owned result string.
// Failures are returned AS the text, prefixed with "Error", never as a
// Go error — the LLM is the consumer, per spec §4.C. ctx bounds
// execute_bash's process lifetime; callers without a surrounding
// deadline (tests, chain dry paths) may pass context.Background().
func (r *Registry) Dispatch(ctx context.Context, name, argumentsJSON string) string {
	def, ok := r.defs[name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", name)
	}
	if name == DispatchAgent {
		return "Error: dispatch_agent must be routed to the sub-agent runner, not dispatched by the registry"
	}
	if err := validateArguments(def, argumentsJSON); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	check := r.destructive.Check(name)
	if !check.Allowed {
		return fmt.Sprintf("Error: %s", check.Reason)
	}

	result := r.dispatchTool(ctx, name, argumentsJSON)
	r.destructive.RecordCall(name)
	if check.BatchWarning != "" {
		result = check.BatchWarning + "\n" + result
	}
	return result
}

// dispatchTool runs the tool named name, post destructive-tracker checks.
func (r *Registry) dispatchTool(ctx context.Context, name, argumentsJSON string) string {
	switch name {
	case ExecuteBash:
		var args bashArgs
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		timeout := defaultBashTimeout
		if r.DefaultBashTimeout > 0 {
			timeout = r.DefaultBashTimeout
		}
		if args.TimeoutSeconds > 0 {
			timeout = secondsToDuration(args.TimeoutSeconds)
		}
		return RunShell(ctx, args.Command, timeout)

	case ReadFile:
		var args readFileArgs
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return doReadFile(args.Path)

	case WriteFile:
		var args writeFileArgs
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return doWriteFile(args.Path, args.Content)

	case ListFiles:
		var args listFilesArgs
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return doListFiles(args.Path)

	case SearchFiles:
		var args searchFilesArgs
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return doSearchFiles(args.Pattern, args.Path)

	case LoadSkill:
		var args loadSkillArgs
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		if r.skills == nil {
			return "Error: no skill catalog configured"
		}
		body, err := r.skills.Load(args.Name)
		if err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return body

	default:
		return fmt.Sprintf("Error: unhandled tool %q", name)
	}
}
