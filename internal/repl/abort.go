package repl

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// abortPhrases are standalone user messages treated as equivalent to
// pressing ESC, supplementing the ESC-driven cancel flag of spec §4.A/§5.
// Grounded on the teacher's abort.go trigger table, trimmed to the
// languages worth carrying for a terminal tool (English and Russian,
// matching the Cyrillic slash-command mappings already in
// internal/lineeditor).
var abortPhrases = map[string]bool{
	"stop": true, "abort": true, "wait": true, "halt": true, "interrupt": true,
	"please stop": true, "stop please": true,
	"стоп": true, "стой": true, "остановись": true, "останови": true, "прекрати": true,
}

var trailingPunctuation = regexp.MustCompile(`[.!?…,;:'"` + "`" + `)\]}]+$`)

// IsAbortPhrase reports whether text, once normalized, is a standalone
// abort request rather than ordinary conversation.
func IsAbortPhrase(text string) bool {
	normalized := normalizeAbortText(text)
	return normalized != "" && abortPhrases[normalized]
}

func normalizeAbortText(text string) string {
	normalized := norm.NFKC.String(text)
	normalized = strings.ToLower(normalized)
	normalized = trailingPunctuation.ReplaceAllString(normalized, "")
	normalized = strings.Join(strings.Fields(normalized), " ")
	return strings.TrimSpace(normalized)
}
