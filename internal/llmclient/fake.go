package llmclient

import "github.com/neolite/zaica/internal/model"

// FakeClient replays a scripted sequence of Results, one per Stream
// call, for AgentLoop tests — the mock-LLM harness described in spec §8.
type FakeClient struct {
	Results []Result
	calls   int
	Seen    []*model.History
}

// NewFakeClient builds a FakeClient that returns results in order.
func NewFakeClient(results ...Result) *FakeClient {
	return &FakeClient{Results: results}
}

// Stream implements Client.
func (f *FakeClient) Stream(history *model.History, tools []ToolSchema, onChunk OnChunk) (Result, error) {
	f.Seen = append(f.Seen, history)
	if f.calls >= len(f.Results) {
		return Result{Text: ""}, nil
	}
	r := f.Results[f.calls]
	f.calls++
	if onChunk != nil && r.Text != "" {
		onChunk(r.Text)
	}
	return r, nil
}

// Calls reports how many times Stream has been invoked.
func (f *FakeClient) Calls() int { return f.calls }
