// Package model defines the conversation data shapes shared by the agent
// loop, session store, and chain orchestrator.
package model

// Role identifies the speaker of a Text message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tags which variant a Message holds.
type Kind string

const (
	KindText       Kind = "text"
	KindToolUse    Kind = "tool_use"
	KindToolResult Kind = "tool_result"
)

// ToolCall is one function call the model asked to make. Arguments stays a
// raw JSON string — the tool registry owns parsing it per-tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a tagged variant: exactly one of the three shapes is valid for
// a given Kind. Index 0 of a History is always a Text message with
// Role == RoleSystem.
type Message struct {
	Kind Kind

	// Text fields.
	Role    Role
	Content string

	// ToolUse fields.
	Calls []ToolCall

	// ToolResult fields.
	CallID string

	// borrowed marks that Content is owned by a longer-lived value (the
	// configured system prompt) and must not be mutated in place. Only
	// ever set on index 0 of a History built by NewHistory.
	borrowed bool
}

// NewText builds a Text message.
func NewText(role Role, content string) Message {
	return Message{Kind: KindText, Role: role, Content: content}
}

// NewBorrowedSystem builds the index-0 system message, marking its content
// borrowed so History teardown knows not to treat it as an owned copy.
func NewBorrowedSystem(content string) Message {
	return Message{Kind: KindText, Role: RoleSystem, Content: content, borrowed: true}
}

// NewToolUse builds a ToolUse message from an ordered set of calls.
func NewToolUse(calls []ToolCall) Message {
	return Message{Kind: KindToolUse, Calls: calls}
}

// NewToolResult builds a ToolResult message correlated to a call id.
func NewToolResult(callID, content string) Message {
	return Message{Kind: KindToolResult, CallID: callID, Content: content}
}

// IsBorrowed reports whether this message's Content must not be freed by
// whoever tears down the History (see spec §3 Ownership summary).
func (m Message) IsBorrowed() bool { return m.borrowed }

// History is an ordered sequence of Message. Index 0 must always be a
// system Text message (enforced by NewHistory).
type History struct {
	messages []Message
}

// NewHistory builds a History whose first message is the given system
// prompt, borrowed (not duplicated) per the ownership model in spec §3.
func NewHistory(systemPrompt string) *History {
	return &History{messages: []Message{NewBorrowedSystem(systemPrompt)}}
}

// NewHistoryFrom wraps an already-built message slice (e.g. loaded from a
// session file). messages[0] must be a system Text message.
func NewHistoryFrom(messages []Message) *History {
	return &History{messages: messages}
}

// Append adds a message to the end of the history.
func (h *History) Append(m Message) { h.messages = append(h.messages, m) }

// Messages returns the live slice backing this history. Callers that need
// to mutate the sequence shape (compaction, trimming) should use
// ReplaceFrom instead of slicing this directly, to preserve index 0.
func (h *History) Messages() []Message { return h.messages }

// Len returns the number of messages.
func (h *History) Len() int { return len(h.messages) }

// Last returns the final message and true, or the zero Message and false
// if history is empty.
func (h *History) Last() (Message, bool) {
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// RemoveLast drops the final message (used to undo an appended user
// message when the first-iteration LLM call fails, per spec §4.F.2).
func (h *History) RemoveLast() {
	if len(h.messages) > 0 {
		h.messages = h.messages[:len(h.messages)-1]
	}
}

// ReplaceFrom rebuilds the history as [system, replacement...], preserving
// index 0's borrowed system message untouched. Used by both compaction
// paths (§4.F.5) and the resume-time budget trim (§4.D).
func (h *History) ReplaceFrom(replacement []Message) {
	if len(h.messages) == 0 {
		h.messages = replacement
		return
	}
	sys := h.messages[0]
	h.messages = append([]Message{sys}, replacement...)
}

// LastAssistantText returns the most recent assistant Text message's
// content, used by the chain orchestrator's hit_limit recovery path.
func (h *History) LastAssistantText() (string, bool) {
	for i := len(h.messages) - 1; i >= 0; i-- {
		m := h.messages[i]
		if m.Kind == KindText && m.Role == RoleAssistant {
			return m.Content, true
		}
	}
	return "", false
}

// ConcatToolResults joins every ToolResult's content with a blank-line
// separator, used as the chain hit_limit fallback when no assistant text
// exists.
func (h *History) ConcatToolResults() string {
	var out []string
	for _, m := range h.messages {
		if m.Kind == KindToolResult {
			out = append(out, m.Content)
		}
	}
	return joinNonEmpty(out, "\n\n")
}

// EstimateTokens approximates a message's token cost as chars/4, the same
// rough ratio the teacher uses in prompt_layers.go (no tokenizer dependency
// for a figure only used to decide when to trim, not billed).
func EstimateTokens(m Message) int {
	n := len(m.Content)
	for _, c := range m.Calls {
		n += len(c.Name) + len(c.Arguments)
	}
	return n/4 + 1
}

func joinNonEmpty(parts []string, sep string) string {
	result := ""
	for i, p := range parts {
		if i > 0 {
			result += sep
		}
		result += p
	}
	return result
}
