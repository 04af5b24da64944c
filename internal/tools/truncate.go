package tools

import "fmt"

// limits is the per-tool (max_chars, max_lines) truncation table of
// spec §4.C. max_lines of 0 means unbounded.
type limits struct {
	maxChars int
	maxLines int
}

var truncationLimits = map[string]limits{
	ReadFile:      {maxChars: 50_000, maxLines: 0},
	DispatchAgent: {maxChars: 50_000, maxLines: 0},
	LoadSkill:     {maxChars: 50_000, maxLines: 0},
	ExecuteBash:   {maxChars: 30_000, maxLines: 256},
	SearchFiles:   {maxChars: 20_000, maxLines: 200},
	ListFiles:     {maxChars: 20_000, maxLines: 500},
	WriteFile:     {maxChars: 1_000, maxLines: 0},
}

var defaultLimits = limits{maxChars: 30_000, maxLines: 0}

func limitsFor(name string) limits {
	if l, ok := truncationLimits[name]; ok {
		return l
	}
	return defaultLimits
}

// Truncate applies the head/tail truncation rule for a tool's output:
// first by character budget, then — if a line budget is also set and
// still exceeded — by line budget, each collapsing the middle with a
// bracketed notice.
func Truncate(toolName, output string) string {
	l := limitsFor(toolName)

	out := output
	if l.maxChars > 0 && len(out) > l.maxChars {
		out = truncateMiddleChars(out, l.maxChars)
	}
	if l.maxLines > 0 {
		if n := countLines(out); n > l.maxLines {
			out = truncateMiddleLines(out, l.maxLines)
		}
	}
	return out
}

func truncateMiddleChars(s string, budget int) string {
	removed := len(s) - budget
	half := budget / 2
	notice := fmt.Sprintf("\n\n[WARNING: output truncated — %d characters removed from middle]\n\n", removed)
	return s[:half] + notice + s[len(s)-half:]
}

func countLines(s string) int {
	n := 1
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}

func truncateMiddleLines(s string, budget int) string {
	lines := splitLines(s)
	removed := len(lines) - budget
	half := budget / 2
	notice := fmt.Sprintf("[WARNING: output truncated — %d lines removed from middle]", removed)

	head := lines[:half]
	tail := lines[len(lines)-half:]
	out := joinLines(head)
	out += "\n" + notice + "\n"
	out += joinLines(tail)
	return out
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
