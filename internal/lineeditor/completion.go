package lineeditor

import "strings"

// SlashCommands is the literal table of supported commands used for tab
// completion (spec §4.B). Kept here rather than in the REPL package so
// the editor has no dependency on the agent/repl packages.
var SlashCommands = []string{
	"/exit", "/quit", "/q",
	"/help", "/tools", "/skills", "/usage", "/sessions", "/compact",
}

// Complete finds every command sharing prefix, computes their longest
// common prefix, and returns it if strictly longer than prefix. The
// second return value reports whether an extension was found.
func Complete(prefix string) (string, bool) {
	if !strings.HasPrefix(prefix, "/") {
		return "", false
	}
	var matches []string
	for _, cmd := range SlashCommands {
		if strings.HasPrefix(cmd, prefix) {
			matches = append(matches, cmd)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	lcp := matches[0]
	for _, m := range matches[1:] {
		lcp = commonPrefix(lcp, m)
	}
	if len(lcp) > len(prefix) {
		return lcp, true
	}
	return "", false
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
