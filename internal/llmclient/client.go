// Package llmclient implements spec §4.F.2's streaming client contract:
// stream(history, tools, model, on_chunk, silent) → {response, usage}.
// Grounded on the teacher's pack sibling haasonsaas-nexus
// (internal/agent/providers/openai.go): sashabaranov/go-openai for the
// wire format, stream-to-channel conversion, and retryable-error
// classification, adapted from a channel-based provider interface onto
// the spec's synchronous callback shape.
package llmclient

import (
	"github.com/neolite/zaica/internal/model"
)

// Usage mirrors spec §4.F.2's optional usage payload.
type Usage struct {
	Prompt     uint64
	Completion uint64
	Reasoning  uint64
	CacheRead  uint64
	CacheWrite uint64
}

// HTTPError is returned in Result.HTTPError when the provider responds
// with a non-2xx status, so AgentLoop's retry policy (§4.F.2) can branch
// on Status without inspecting error strings.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// Result is the classified outcome of one LLM call: exactly one of Text
// or ToolCalls is populated on success; HTTPError is populated on
// failure.
type Result struct {
	Text      string
	ToolCalls []model.ToolCall
	Usage     Usage
	HTTPError *HTTPError
}

// ToolSchema describes one callable tool for the wire request.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// OnChunk is invoked per streamed text delta. In silent mode (sub-agents)
// the caller passes a no-op so output isn't written to the terminal.
type OnChunk func(text string)

// Client is the external collaborator AgentLoop drives. Implementations
// must not retry internally — AgentLoop owns the retry policy of
// §4.F.2 so it can interleave cancel polling between attempts.
type Client interface {
	Stream(history *model.History, tools []ToolSchema, onChunk OnChunk) (Result, error)
}
