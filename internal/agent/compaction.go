package agent

import (
	"fmt"

	"github.com/neolite/zaica/internal/model"
)

// DefaultCompactionCheck implements spec §4.F.5's automatic mid-loop
// compaction: skip short histories or an unconfigured context limit; at
// 85% of max_context_tokens, walk backward from the tail accumulating a
// 70%-of-context budget, then advance to the next user-message boundary
// (spec §9 open question 1: both compactors use the same boundary rule
// as the resume-time trim in internal/session.TrimToBudget). Returns a
// status string for the UI, or "" if no compaction ran.
func DefaultCompactionCheck(v *HistoryView, maxContextTokens int) string {
	if maxContextTokens <= 0 || v.Len() <= 6 {
		return ""
	}

	total := v.EstimatedTokens()
	if total < maxContextTokens*85/100 {
		return ""
	}

	messages := v.Messages()
	budget := maxContextTokens * 70 / 100

	accum := 0
	safeStart := 1
	for i := len(messages) - 1; i >= 1; i-- {
		accum += model.EstimateTokens(messages[i])
		if accum >= budget {
			safeStart = i
			break
		}
	}
	for safeStart < len(messages) && !(messages[safeStart].Kind == model.KindText && messages[safeStart].Role == model.RoleUser) {
		safeStart++
	}
	if safeStart <= 1 || safeStart >= len(messages) {
		return ""
	}

	kept := append([]model.Message(nil), messages[safeStart:]...)
	dropped, keptCount := v.CompactTo(kept)
	keptTokens := 0
	for _, m := range kept {
		keptTokens += model.EstimateTokens(m)
	}
	return fmt.Sprintf("[context compacted: dropped %d messages, kept %d (~%dk tokens)]", dropped, keptCount, keptTokens/1000)
}
