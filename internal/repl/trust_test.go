package repl

import (
	"testing"

	"github.com/neolite/zaica/internal/state"
)

func TestTrustStartsWithNothingGranted(t *testing.T) {
	trust := NewTrust()
	if trust.Covers(state.PermissionSafeOnly) {
		t.Fatal("fresh Trust should not cover safe_only")
	}
	if trust.Covers(state.PermissionAll) {
		t.Fatal("fresh Trust should not cover all")
	}
}

func TestTrustGrantAllCoversEverything(t *testing.T) {
	trust := NewTrust()
	trust.Grant(state.PermissionAll)

	if !trust.Covers(state.PermissionSafeOnly) {
		t.Error("all should cover safe_only")
	}
	if !trust.Covers(state.PermissionAll) {
		t.Error("all should cover all")
	}
}

func TestTrustSafeOnlyDoesNotCoverAll(t *testing.T) {
	trust := NewTrust()
	trust.Grant(state.PermissionSafeOnly)

	if !trust.Covers(state.PermissionSafeOnly) {
		t.Error("safe_only should cover safe_only")
	}
	if trust.Covers(state.PermissionAll) {
		t.Error("safe_only should not cover all")
	}
}

func TestTrustGrantNeverDowngradesFromAll(t *testing.T) {
	trust := NewTrust()
	trust.Grant(state.PermissionAll)
	trust.Grant(state.PermissionSafeOnly)

	if !trust.Covers(state.PermissionAll) {
		t.Error("a later safe_only grant should not downgrade an existing all grant")
	}
}

func TestTrustReset(t *testing.T) {
	trust := NewTrust()
	trust.Grant(state.PermissionAll)
	trust.Reset()

	if trust.Covers(state.PermissionSafeOnly) {
		t.Error("Reset should clear all prior grants")
	}
}
