package repl

import "github.com/neolite/zaica/internal/state"

// Trust tracks permission grants already made in the current REPL run, so
// a user who once answers "yes to all" or "safe only" isn't re-prompted
// for every subsequent tool call of the same or lower risk. Grounded on
// the teacher's exec_approval.go ApprovalManager.sessionTrust, narrowed
// from a per-tool-per-session map down to a single highest-grant level,
// since one REPL process is always one session (spec §9 supplemented
// feature 2).
type Trust struct {
	granted state.Permission
}

// NewTrust starts with nothing trusted.
func NewTrust() *Trust {
	return &Trust{granted: state.PermissionNone}
}

// Covers reports whether a previously granted level already authorizes
// level (all covers everything; safe_only covers only safe_only itself,
// since it still requires a fresh prompt to escalate to all).
func (t *Trust) Covers(level state.Permission) bool {
	if t.granted == state.PermissionAll {
		return true
	}
	return t.granted == level
}

// Grant records a new permission level as trusted for the rest of the run.
func (t *Trust) Grant(level state.Permission) {
	if level == state.PermissionAll || t.granted != state.PermissionAll {
		t.granted = level
	}
}

// Reset clears all trust, used by /compact.
func (t *Trust) Reset() {
	t.granted = state.PermissionNone
}
