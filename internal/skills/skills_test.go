package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSkill(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSplitsAlwaysAndOnDemand(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "git.md", "---\nname: git\ndescription: git helpers\nalways: true\n---\nUse git status liberally.")
	writeSkill(t, dir, "deploy.md", "---\nname: deploy\ndescription: deployment runbook\n---\nRun the deploy script.")

	cat := Load(dir, "", nil)

	always := cat.Always()
	if len(always) != 1 || always[0].Name != "git" {
		t.Fatalf("Always() = %+v, want [git]", always)
	}
	onDemand := cat.OnDemand()
	if len(onDemand) != 1 || onDemand[0].Name != "deploy" {
		t.Fatalf("OnDemand() = %+v, want [deploy]", onDemand)
	}
}

func TestProjectOverridesUser(t *testing.T) {
	userDir := t.TempDir()
	projectDir := t.TempDir()
	writeSkill(t, userDir, "git.md", "---\nname: git\ndescription: user version\n---\nuser body")
	writeSkill(t, projectDir, "git.md", "---\nname: git\ndescription: project version\n---\nproject body")

	cat := Load(userDir, projectDir, nil)

	body, err := cat.Load("git")
	if err != nil {
		t.Fatal(err)
	}
	if body != "project body" {
		t.Fatalf("Load(git) = %q, want project body to win", body)
	}
}

func TestLoadUnknownSkillReturnsError(t *testing.T) {
	cat := Load(t.TempDir(), "", nil)
	if _, err := cat.Load("nope"); err == nil {
		t.Fatal("expected an error for an unknown skill")
	}
}

func TestMalformedSkillFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "broken.md", "no frontmatter here")
	writeSkill(t, dir, "ok.md", "---\nname: ok\ndescription: fine\n---\nbody")

	cat := Load(dir, "", nil)
	all := cat.All()
	if len(all) != 1 || all[0].Name != "ok" {
		t.Fatalf("All() = %+v, want only [ok]", all)
	}
}
