package lineeditor

import (
	"bufio"
	"os"
)

// MaxHistoryEntries is the persisted history cap (spec §4.B).
const MaxHistoryEntries = 1000

// History is the in-memory command history with up/down browsing and
// persistence to disk, one line per entry.
type History struct {
	entries []string
	path    string
	cursor  int    // index into entries while browsing; len(entries) means "new line"
	pending string // the not-yet-committed line, saved when leaving the new-line slot
}

// NewHistory loads history from path (if it exists) and returns a ready
// History. A missing file is not an error — it is created the first time
// Add saves an entry.
func NewHistory(path string) *History {
	h := &History{path: path}
	if path == "" {
		h.cursor = 0
		return h
	}
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			h.entries = append(h.entries, sc.Text())
		}
	}
	h.cursor = len(h.entries)
	return h
}

// Add appends a non-empty, non-duplicate-of-last line and persists the
// trimmed (last 1000) history to disk.
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == line {
		h.cursor = len(h.entries)
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[len(h.entries)-MaxHistoryEntries:]
	}
	h.cursor = len(h.entries)
	h.save()
}

func (h *History) save() {
	if h.path == "" {
		return
	}
	f, err := os.Create(h.path)
	if err != nil {
		return
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, e := range h.entries {
		w.WriteString(e)
		w.WriteByte('\n')
	}
	w.Flush()
}

// Up browses to the previous entry. current is the not-yet-committed
// buffer content, saved the first time Up is called from the new-line
// slot so Down can restore it.
func (h *History) Up(current string) (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.pending = current
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Down browses to the next entry, or restores the pending line once past
// the last history entry.
func (h *History) Down() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return h.pending, true
	}
	return h.entries[h.cursor], true
}

// ResetCursor returns browsing to the new-line slot (called after a line
// is submitted).
func (h *History) ResetCursor() {
	h.cursor = len(h.entries)
	h.pending = ""
}
