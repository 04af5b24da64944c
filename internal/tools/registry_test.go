package tools

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/neolite/zaica/internal/state"
)

func TestIsAllowed(t *testing.T) {
	cases := []struct {
		name  string
		level state.Permission
		want  bool
	}{
		{ExecuteBash, state.PermissionAll, true},
		{ExecuteBash, state.PermissionSafeOnly, false},
		{ExecuteBash, state.PermissionNone, false},
		{ReadFile, state.PermissionSafeOnly, true},
		{WriteFile, state.PermissionSafeOnly, false},
		{WriteFile, state.PermissionAll, true},
	}
	for _, c := range cases {
		if got := IsAllowed(c.name, c.level); got != c.want {
			t.Errorf("IsAllowed(%s, %s) = %v, want %v", c.name, c.level, got, c.want)
		}
	}
}

func TestRegistrySubAgentExcludesDispatchAndSkill(t *testing.T) {
	r := NewSubAgent()
	if r.Has(DispatchAgent) || r.Has(LoadSkill) {
		t.Fatal("sub-agent registry must not expose dispatch_agent or load_skill")
	}
	if !r.Has(ExecuteBash) || !r.Has(ReadFile) {
		t.Fatal("sub-agent registry missing base tools")
	}
}

func TestDispatchReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	r := New(nil)
	writeResult := r.Dispatch(context.Background(), WriteFile, `{"path":"`+path+`","content":"hello"}`)
	if !containsAll(writeResult, "Wrote") {
		t.Fatalf("write result = %q", writeResult)
	}

	readResult := r.Dispatch(context.Background(), ReadFile, `{"path":"`+path+`"}`)
	if readResult != "hello" {
		t.Fatalf("read result = %q, want %q", readResult, "hello")
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := New(nil)
	got := r.Dispatch(context.Background(), "nonexistent", "{}")
	if !containsAll(got, "Error") {
		t.Fatalf("got %q, want an Error-prefixed string", got)
	}
}

func TestDispatchInvalidArguments(t *testing.T) {
	r := New(nil)
	got := r.Dispatch(context.Background(), ReadFile, `{"path": 5}`)
	if !containsAll(got, "Error") {
		t.Fatalf("got %q, want an Error-prefixed string", got)
	}
}

func TestDispatchAgentNotExecutedByRegistry(t *testing.T) {
	r := New(nil)
	got := r.Dispatch(context.Background(), DispatchAgent, `{"task":"x"}`)
	if !containsAll(got, "Error") {
		t.Fatalf("got %q, want dispatch_agent refusal", got)
	}
}

func TestRunShellTimeout(t *testing.T) {
	out := RunShell(context.Background(), "sleep 5", 50*time.Millisecond)
	if !containsAll(out, "TIMEOUT") {
		t.Fatalf("RunShell() = %q, want a TIMEOUT marker", out)
	}
}

func TestRunShellNoOutput(t *testing.T) {
	out := RunShell(context.Background(), "true", 0)
	if out != "(no output)" {
		t.Fatalf("RunShell(true) = %q, want (no output)", out)
	}
}

func TestTruncateUnderBudget(t *testing.T) {
	if got := Truncate(ReadFile, "short"); got != "short" {
		t.Fatalf("Truncate() = %q, want unchanged", got)
	}
}

func TestTruncateOverCharBudget(t *testing.T) {
	big := make([]byte, 2000)
	for i := range big {
		big[i] = 'a'
	}
	truncationLimits[ReadFile] = limits{maxChars: 100, maxLines: 0}
	defer func() { truncationLimits[ReadFile] = limits{maxChars: 50_000, maxLines: 0} }()

	got := Truncate(ReadFile, string(big))
	if !containsAll(got, "WARNING: output truncated") {
		t.Fatalf("Truncate() missing warning marker: %q", got[:80])
	}
}

func TestDestructiveTrackerRateLimit(t *testing.T) {
	tr := NewDestructiveTracker(DestructiveConfig{Enabled: true, RateLimitPerMinute: 2, BatchThreshold: 100, CooldownSeconds: 0}, nil)

	for i := 0; i < 2; i++ {
		check := tr.Check(ExecuteBash)
		if !check.Allowed {
			t.Fatalf("call %d should be allowed: %+v", i, check)
		}
		tr.RecordCall(ExecuteBash)
	}

	check := tr.Check(ExecuteBash)
	if check.Allowed {
		t.Fatal("third call within the window should be rate limited")
	}
}

func TestDestructiveTrackerBatchWarning(t *testing.T) {
	tr := NewDestructiveTracker(DestructiveConfig{Enabled: true, RateLimitPerMinute: 100, BatchThreshold: 2, CooldownSeconds: 0}, nil)

	tr.Check(WriteFile)
	tr.RecordCall(WriteFile)
	check := tr.Check(WriteFile)
	if check.BatchWarning == "" {
		t.Fatal("expected a batch warning on the second consecutive call")
	}
}

func TestDestructiveTrackerIgnoresSafeTools(t *testing.T) {
	tr := NewDestructiveTracker(DefaultDestructiveConfig(), nil)
	if tr.Tracked(ReadFile) {
		t.Fatal("read_file must not be tracked as destructive")
	}
}

func containsAll(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
