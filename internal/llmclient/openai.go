package llmclient

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/neolite/zaica/internal/model"
)

// OpenAIClient is a Client backed by an OpenAI-compatible chat
// completions endpoint (OpenAI itself, or any provider that speaks the
// same wire format, selected via BaseURL).
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client. baseURL may be empty to use the
// default OpenAI endpoint.
func NewOpenAIClient(apiKey, baseURL, modelName string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: modelName}
}

// Stream implements Client.
func (c *OpenAIClient) Stream(history *model.History, tools []ToolSchema, onChunk OnChunk) (Result, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(history.Messages()),
		Stream:   true,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	stream, err := c.client.CreateChatCompletionStream(context.Background(), req)
	if err != nil {
		if httpErr := classifyError(err); httpErr != nil {
			return Result{HTTPError: httpErr}, nil
		}
		return Result{}, err
	}
	defer stream.Close()

	return consumeStream(stream, onChunk)
}

func consumeStream(stream *openai.ChatCompletionStream, onChunk OnChunk) (Result, error) {
	var text string
	calls := make(map[int]*model.ToolCall)
	var order []int
	var usage Usage

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if httpErr := classifyError(err); httpErr != nil {
				return Result{HTTPError: httpErr}, nil
			}
			return Result{}, err
		}

		if resp.Usage != nil {
			usage.Prompt = uint64(resp.Usage.PromptTokens)
			usage.Completion = uint64(resp.Usage.CompletionTokens)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			text += delta.Content
			if onChunk != nil {
				onChunk(delta.Content)
			}
		}

		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			if calls[idx] == nil {
				calls[idx] = &model.ToolCall{}
				order = append(order, idx)
			}
			if tc.ID != "" {
				calls[idx].ID = tc.ID
			}
			if tc.Function.Name != "" {
				calls[idx].Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				calls[idx].Arguments += tc.Function.Arguments
			}
		}
	}

	if len(calls) > 0 {
		result := make([]model.ToolCall, 0, len(order))
		for _, idx := range order {
			result = append(result, *calls[idx])
		}
		return Result{ToolCalls: result, Usage: usage}, nil
	}
	if text == "" {
		return Result{HTTPError: &HTTPError{Status: 0, Message: "malformed response: no text or tool calls"}}, nil
	}
	return Result{Text: text, Usage: usage}, nil
}

func toOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Kind {
		case model.KindText:
			out = append(out, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
		case model.KindToolUse:
			calls := make([]openai.ToolCall, 0, len(m.Calls))
			for _, c := range m.Calls {
				calls = append(calls, openai.ToolCall{
					ID:   c.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      c.Name,
						Arguments: c.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, ToolCalls: calls})
		case model.KindToolResult:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.CallID,
			})
		}
	}
	return out
}

func toOpenAITools(tools []ToolSchema) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func classifyError(err error) *HTTPError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = err.Error()
		}
		return &HTTPError{Status: apiErr.HTTPStatusCode, Message: msg}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &HTTPError{Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return nil
}
