package chain

import (
	"errors"
	"testing"
)

func TestParseTwoSteps(t *testing.T) {
	doc := `---
name: review-pipeline
---
## scan
tools: read_file, search_files
max_iterations: 5

Scan the repo for {task}.
## fix
tools: read_file, write_file

Using {previous}, fix the issues found.
`
	spec, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Name != "review-pipeline" {
		t.Fatalf("Name = %q", spec.Name)
	}
	if len(spec.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(spec.Steps))
	}
	if spec.Steps[0].Name != "scan" || spec.Steps[0].MaxIterations != 5 {
		t.Fatalf("step 0 = %+v", spec.Steps[0])
	}
	if len(spec.Steps[0].ToolFilter) != 2 {
		t.Fatalf("step 0 tools = %v", spec.Steps[0].ToolFilter)
	}
	if spec.Steps[1].MaxIterations != 10 {
		t.Fatalf("step 1 should default to 10, got %d", spec.Steps[1].MaxIterations)
	}
	if spec.Steps[0].Substitute("fix the bug", "") != "Scan the repo for fix the bug." {
		t.Fatalf("substitution: %q", spec.Steps[0].Substitute("fix the bug", ""))
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	doc := "## only\n\nDo the thing.\n"
	spec, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Name != "" {
		t.Fatalf("Name = %q, want empty", spec.Name)
	}
	if len(spec.Steps) != 1 || spec.Steps[0].PromptTemplate != "Do the thing." {
		t.Fatalf("Steps = %+v", spec.Steps)
	}
}

func TestParseEmptyChain(t *testing.T) {
	_, err := Parse([]byte("just some text, no step headers"))
	if !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("err = %v, want ErrEmptyChain", err)
	}
}

func TestParseEmptyPrompt(t *testing.T) {
	doc := "## step-one\ntools: read_file\n\n"
	_, err := Parse([]byte(doc))
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("err = %v, want ErrEmptyPrompt", err)
	}
}

func TestParseStepWithoutConfigLines(t *testing.T) {
	doc := "## step-one\n\nJust a prompt, no config lines.\n"
	spec, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Steps[0].ToolFilter != nil {
		t.Fatalf("ToolFilter = %v, want nil", spec.Steps[0].ToolFilter)
	}
}
