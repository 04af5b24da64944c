// Package session implements spec §4.D SessionStore: append-only JSONL
// files per session, resumable with context-budget-aware trimming.
// Grounded on the teacher's session_persistence.go (per-session file
// mutex, append-only JSONL writes, corrupt-line skipping) retargeted
// from flat ConversationEntry pairs onto spec.md's five record types.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/neolite/zaica/internal/model"
)

// Store manages session files under dir (~/.config/zaica/sessions).
type Store struct {
	dir    string
	logger *slog.Logger

	mapMu  sync.Mutex
	fileMu map[string]*sync.Mutex
}

// New creates a Store rooted at dir, creating it if necessary.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create sessions dir %q: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger.With("component", "session_store"), fileMu: make(map[string]*sync.Mutex)}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".jsonl")
}

func (s *Store) muFor(id string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	if m, ok := s.fileMu[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.fileMu[id] = m
	return m
}

// Create allocates a new session id and writes its meta line.
func (s *Store) Create(model_, provider string) (string, error) {
	id := NewID(time.Now().Unix())
	meta := model.MetaRecord{Type: model.RecordMeta, ID: id, Model: model_, Provider: provider, CreatedAt: time.Now().Unix()}
	if err := s.appendLine(id, meta); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) appendLine(id string, v any) error {
	mu := s.muFor(id)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(s.path(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append session record: %w", err)
	}
	return nil
}

// AppendText appends a Text message record.
func (s *Store) AppendText(id string, m model.Message) error {
	return s.appendLine(id, model.TextRecord{Type: model.RecordText, Role: m.Role, Content: m.Content})
}

// AppendToolUse appends a ToolUse message record.
func (s *Store) AppendToolUse(id string, m model.Message) error {
	calls := make([]model.ToolCallRecord, 0, len(m.Calls))
	for _, c := range m.Calls {
		calls = append(calls, model.ToolCallRecord{ID: c.ID, Function: model.ToolCallRecordFunc{Name: c.Name, Arguments: c.Arguments}})
	}
	return s.appendLine(id, model.ToolUseRecord{Type: model.RecordToolUse, ToolCalls: calls})
}

// AppendToolResult appends a ToolResult message record.
func (s *Store) AppendToolResult(id string, m model.Message) error {
	return s.appendLine(id, model.ToolResultRecord{Type: model.RecordToolResult, ToolCallID: m.CallID, Content: m.Content})
}

// AppendSummary appends a /compact summary record.
func (s *Store) AppendSummary(id string, text string) error {
	return s.appendLine(id, model.SummaryRecord{Type: model.RecordSummary, Text: text})
}

// rawLine is the minimal shape used to sniff a line's "type" field before
// deciding which concrete struct to unmarshal into.
type rawLine struct {
	Type model.RecordType `json:"type"`
}

// Load reconstructs a session's live history. Stored system messages are
// skipped (the current system prompt wins, per spec §4.D); other
// messages are reconstructed in order. Corrupt lines are skipped without
// aborting the load.
func (s *Store) Load(id string) ([]model.Message, model.MetaRecord, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		return nil, model.MetaRecord{}, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	var meta model.MetaRecord
	var messages []model.Message

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw rawLine
		if err := json.Unmarshal(line, &raw); err != nil {
			s.logger.Warn("skipping corrupt session line", "session", id, "error", err)
			continue
		}

		switch raw.Type {
		case model.RecordMeta:
			var m model.MetaRecord
			if err := json.Unmarshal(line, &m); err == nil {
				meta = m
			}
		case model.RecordText:
			var t model.TextRecord
			if err := json.Unmarshal(line, &t); err != nil {
				s.logger.Warn("skipping corrupt text record", "session", id, "error", err)
				continue
			}
			if t.Role == model.RoleSystem {
				continue // current system prompt wins
			}
			messages = append(messages, model.NewText(t.Role, t.Content))
		case model.RecordToolUse:
			var tu model.ToolUseRecord
			if err := json.Unmarshal(line, &tu); err != nil {
				s.logger.Warn("skipping corrupt tool_use record", "session", id, "error", err)
				continue
			}
			calls := make([]model.ToolCall, 0, len(tu.ToolCalls))
			for _, c := range tu.ToolCalls {
				calls = append(calls, model.ToolCall{ID: c.ID, Name: c.Function.Name, Arguments: c.Function.Arguments})
			}
			messages = append(messages, model.NewToolUse(calls))
		case model.RecordToolResult:
			var tr model.ToolResultRecord
			if err := json.Unmarshal(line, &tr); err != nil {
				s.logger.Warn("skipping corrupt tool_result record", "session", id, "error", err)
				continue
			}
			messages = append(messages, model.NewToolResult(tr.ToolCallID, tr.Content))
		case model.RecordSummary:
			var sr model.SummaryRecord
			if err := json.Unmarshal(line, &sr); err == nil {
				messages = append(messages, model.NewText(model.RoleAssistant, "[Previous conversation summary] "+sr.Text))
			}
		default:
			s.logger.Warn("skipping unknown session record type", "session", id, "type", raw.Type)
		}
	}
	return messages, meta, nil
}

// ListEntry is one row returned by List.
type ListEntry struct {
	ID        string
	Model     string
	Summary   string
	CreatedAt int64
}

// List scans the sessions directory, sorts descending by id (ids are
// timestamp-sortable), and returns up to n entries with only their meta
// and summary lines parsed.
func (s *Store) List(n int) ([]ListEntry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var ids []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(f.Name(), ".jsonl"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if len(ids) > n {
		ids = ids[:n]
	}

	entries := make([]ListEntry, 0, len(ids))
	for _, id := range ids {
		entry := ListEntry{ID: id}
		f, err := os.Open(s.path(id))
		if err != nil {
			continue
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			var raw rawLine
			if err := json.Unmarshal(sc.Bytes(), &raw); err != nil {
				continue
			}
			switch raw.Type {
			case model.RecordMeta:
				var m model.MetaRecord
				if json.Unmarshal(sc.Bytes(), &m) == nil {
					entry.Model = m.Model
					entry.CreatedAt = m.CreatedAt
				}
			case model.RecordSummary:
				var sr model.SummaryRecord
				if json.Unmarshal(sc.Bytes(), &sr) == nil {
					entry.Summary = sr.Text
				}
			}
		}
		f.Close()
		entries = append(entries, entry)
	}
	return entries, nil
}

// TrimToBudget implements the resume-time compactor (spec §4.D): walk
// backward from the tail accumulating an estimated token count, stop once
// the running total exceeds 80% of maxContextTokens, then advance forward
// to the next user-message boundary so no tool_use/tool_result pair is
// left orphaned. Everything before that boundary is dropped. This is a
// pure truncation-by-recency pass, distinct from /compact's summarization
// (internal/repl owns that one).
func TrimToBudget(messages []model.Message, maxContextTokens int) []model.Message {
	if len(messages) == 0 {
		return messages
	}
	limit := maxContextTokens * 80 / 100

	total := 0
	cut := 0
	for i := len(messages) - 1; i >= 0; i-- {
		total += model.EstimateTokens(messages[i])
		if total > limit {
			cut = i
			break
		}
	}
	if cut == 0 {
		return messages
	}

	for cut < len(messages) && messages[cut].Role != model.RoleUser {
		cut++
	}
	if cut >= len(messages) {
		return messages
	}
	return messages[cut:]
}

// MostRecent returns the lexicographically greatest session id, or "" if
// none exist.
func (s *Store) MostRecent() (string, error) {
	entries, err := s.List(1)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	return entries[0].ID, nil
}
