package model

import "strings"

// ChainSpec is a parsed chain file (spec §4.H).
type ChainSpec struct {
	Name  string
	Steps []ChainStep
}

// ChainStep is one named stage of a chain.
type ChainStep struct {
	Name           string
	PromptTemplate string
	ToolFilter     []string // nil means "use all tools"
	MaxIterations  int
}

// DefaultMaxIterations is used for a step that doesn't set max_iterations.
const DefaultMaxIterations = 10

// Substitute replaces {task} and {previous} literals in the template.
// A template without either literal is returned unchanged (round-trip
// property from spec §8).
func (s ChainStep) Substitute(task, previous string) string {
	r := strings.NewReplacer("{task}", task, "{previous}", previous)
	return r.Replace(s.PromptTemplate)
}
