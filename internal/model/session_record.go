package model

// RecordType identifies a SessionRecord's line shape in a session JSONL
// file. See spec §4.D.
type RecordType string

const (
	RecordMeta       RecordType = "meta"
	RecordText       RecordType = "text"
	RecordToolUse    RecordType = "tool_use"
	RecordToolResult RecordType = "tool_result"
	RecordSummary    RecordType = "summary"
)

// MetaRecord is the first line of every session file.
type MetaRecord struct {
	Type      RecordType `json:"type"`
	ID        string     `json:"id"`
	Model     string     `json:"model"`
	Provider  string     `json:"provider"`
	CreatedAt int64      `json:"created_at"`
}

// TextRecord persists a Text message.
type TextRecord struct {
	Type    RecordType `json:"type"`
	Role    Role       `json:"role"`
	Content string     `json:"content"`
}

// ToolCallRecord is the on-disk shape of one ToolCall inside a ToolUse
// record (nested function object, matching common chat-completion wire
// shapes).
type ToolCallRecord struct {
	ID       string             `json:"id"`
	Function ToolCallRecordFunc `json:"function"`
}

type ToolCallRecordFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolUseRecord persists a ToolUse message.
type ToolUseRecord struct {
	Type      RecordType       `json:"type"`
	ToolCalls []ToolCallRecord `json:"tool_calls"`
}

// ToolResultRecord persists a ToolResult message.
type ToolResultRecord struct {
	Type       RecordType `json:"type"`
	ToolCallID string     `json:"tool_call_id"`
	Content    string     `json:"content"`
}

// SummaryRecord persists a /compact summary.
type SummaryRecord struct {
	Type RecordType `json:"type"`
	Text string     `json:"text"`
}
