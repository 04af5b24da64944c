// Package tools implements spec §4.C ToolRegistry: the fixed tool table,
// risk classification, permission gating, dispatch, and output
// truncation. Grounded on the teacher's system_tools.go (tool table
// shape, bash sandboxing) and destructive_tracker.go (rate limiting,
// adapted into destructive.go).
package tools

import "github.com/neolite/zaica/internal/state"

// Risk classifies a tool for permission gating.
type Risk string

const (
	RiskSafe      Risk = "safe"
	RiskWrite     Risk = "write"
	RiskDangerous Risk = "dangerous"
)

// Names of the fixed tool table, per spec §4.C.
const (
	ExecuteBash   = "execute_bash"
	ReadFile      = "read_file"
	WriteFile     = "write_file"
	ListFiles     = "list_files"
	SearchFiles   = "search_files"
	DispatchAgent = "dispatch_agent"
	LoadSkill     = "load_skill"
)

// SubAgentToolNames is the reduced tool set sub-agents see: the first
// five, excluding dispatch_agent and load_skill so a sub-agent cannot
// spawn a nested sub-agent or read the skill catalog.
var SubAgentToolNames = []string{ExecuteBash, ReadFile, WriteFile, ListFiles, SearchFiles}

func riskOf(name string) Risk {
	switch name {
	case ExecuteBash, DispatchAgent:
		return RiskDangerous
	case WriteFile:
		return RiskWrite
	default:
		return RiskSafe
	}
}

// IsAllowed implements the isAllowed(name, level) gate of spec §4.C.
func IsAllowed(name string, level state.Permission) bool {
	switch level {
	case state.PermissionAll:
		return true
	case state.PermissionSafeOnly:
		return riskOf(name) == RiskSafe
	default:
		return false
	}
}

// Definition is one entry of the tool table: name, description, and a
// JSON Schema for its parameters (generated by schema.go for the static
// struct-backed tools).
type Definition struct {
	Name        string
	Description string
	Risk        Risk
	Schema      map[string]any
}
