// Package term implements spec §4.A TerminalIO: termios mode switching, the
// fixed three-zone layout (scroll region + input line + status bar), and
// the background spinner/ESC-poll thread. Grounded on None9527-NGOClaw's
// gateway/internal/interfaces/cli/app.go for the ANSI constants and
// braille spinner frames, layered on golang.org/x/term for raw-mode
// switching and size queries (the teacher's own direct dependency).
package term

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// ANSI helpers, matching None9527-NGOClaw's app.go constants.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Cyan    = "\033[96m"
	Green   = "\033[92m"
	Yellow  = "\033[93m"
	Red     = "\033[91m"
	ClearLn = "\033[2K\r"
)

// SpinnerFrames are the braille glyphs cycled by the spinner thread.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Mode names the three termios presets of spec §4.A.
type Mode int

const (
	ModeCooked Mode = iota
	ModeRaw
	ModeStream
)

// IO owns the terminal's mode and physical layout for one process run.
type IO struct {
	fd       int
	saved    *term.State
	out      io.Writer
	rows     atomic.Int32
	cols     atomic.Int32
	mode     Mode

	// statusStatic, statusLabel hold the fixed-buffer status payloads
	// written by the main thread and read by the spinner thread, per
	// spec's "Shared resources" section (released-acquire via atomic
	// pointers rather than locks).
	statusStatic atomic.Pointer[string]
	statusLabel  atomic.Pointer[string]

	// cancelRequested is the single process-wide cancellation atomic
	// described in spec §5 — set by the spinner on ESC, cleared at the
	// start of each new user turn.
	cancelRequested atomic.Bool
}

// New constructs an IO bound to stdout/stdin, querying the initial size
// with an 80x24 fallback per spec §6.
func New() *IO {
	t := &IO{fd: int(os.Stdout.Fd()), out: os.Stdout}
	t.refreshSize()
	empty := ""
	t.statusStatic.Store(&empty)
	t.statusLabel.Store(&empty)
	return t
}

func (t *IO) refreshSize() {
	cols, rows, err := term.GetSize(t.fd)
	if err != nil || cols <= 0 || rows <= 0 {
		cols, rows = 80, 24
	}
	t.rows.Store(int32(rows))
	t.cols.Store(int32(cols))
}

// Rows/Cols expose the current layout size.
func (t *IO) Rows() int { return int(t.rows.Load()) }
func (t *IO) Cols() int { return int(t.cols.Load()) }

// InputRow, StatusRow, SeparatorRows return the fixed rows reserved by
// the layout, per spec §4.A.
func (t *IO) InputRow() int        { return t.Rows() - 2 }
func (t *IO) StatusRow() int       { return t.Rows() }
func (t *IO) TopSeparatorRow() int { return t.Rows() - 3 }
func (t *IO) BotSeparatorRow() int { return t.Rows() - 1 }
func (t *IO) ScrollBottom() int    { return t.Rows() - 4 }

// SetupLayout installs the scroll region (rows 1..rows-4) and draws the
// two dim separators, per spec §4.A. Call again on SIGWINCH.
func (t *IO) SetupLayout() {
	t.refreshSize()
	fmt.Fprintf(t.out, "\033[1;%dr", t.ScrollBottom())
	t.WriteRaw(t.TopSeparatorRow(), separatorLine(t.Cols()))
	t.WriteRaw(t.BotSeparatorRow(), separatorLine(t.Cols()))
	fmt.Fprintf(t.out, "\033[%d;1H", t.ScrollBottom())
}

func separatorLine(cols int) string {
	line := make([]byte, cols)
	for i := range line {
		line[i] = '-'
	}
	return Dim + string(line) + Reset
}

// Cook restores the terminal state saved by the last Raw (cooked mode);
// callers defer it so the terminal is restored on exit.
func (t *IO) Cook() error {
	if t.saved != nil {
		err := term.Restore(t.fd, t.saved)
		t.saved = nil
		t.mode = ModeCooked
		return err
	}
	t.mode = ModeCooked
	return nil
}

// Raw switches to raw mode (echo/canonical/signals off, VMIN=1 VTIME=0),
// used to read a line or a single key.
func (t *IO) Raw() error {
	st, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = st
	t.mode = ModeRaw
	return nil
}

// Stream switches to the streaming preset used while LLM output streams:
// ECHO/ICANON off to suppress stray input (mouse-wheel arrow codes etc).
//
// golang.org/x/term doesn't expose per-flag termios control, so Stream
// reuses MakeRaw, which also clears OPOST. OPOST is not turned back on:
// the terminal does not translate "\n" in this mode, and output relies on
// WriteText's own "\n" -> "\r\n" translation.
func (t *IO) Stream() error {
	if t.mode == ModeRaw || t.mode == ModeStream {
		t.mode = ModeStream
		return nil
	}
	if err := t.Raw(); err != nil {
		return err
	}
	t.mode = ModeStream
	return nil
}

// WriteText writes text, translating "\n" to "\r\n" — required because
// OPOST may be off in raw/stream mode.
func (t *IO) WriteText(s string) {
	for _, r := range s {
		if r == '\n' {
			fmt.Fprint(t.out, "\r\n")
		} else {
			fmt.Fprint(t.out, string(r))
		}
	}
}

// WriteRaw passes an escape sequence (or already-CRLF-safe text) through
// unmodified at the given row.
func (t *IO) WriteRaw(row int, s string) {
	fmt.Fprintf(t.out, "\033[s\033[%d;1H\033[2K%s\033[u", row, s)
}

// SetStatusStatic updates the static status-bar payload (model/usage/
// permission/cancel/time), read by the spinner thread.
func (t *IO) SetStatusStatic(s string) {
	t.statusStatic.Store(&s)
}

// SetStatusLabel updates the spinner's label (e.g. "Thinking...").
func (t *IO) SetStatusLabel(s string) {
	t.statusLabel.Store(&s)
}

// RenderStatusFrame writes one spinner frame plus the label and static
// payload to the status row, via cursor save/move/write/restore so
// scroll-region output isn't disturbed (spec §4.A).
func (t *IO) RenderStatusFrame(frame string) {
	label := *t.statusLabel.Load()
	static := *t.statusStatic.Load()
	line := fmt.Sprintf("%s %s  %s", frame, label, static)
	t.WriteRaw(t.StatusRow(), line)
}

// RequestCancel sets the process-wide cancel flag. Called by the spinner
// thread on a bare ESC, or by the permission prompt on ESC.
func (t *IO) RequestCancel() { t.cancelRequested.Store(true) }

// CancelRequested reports the current cancel flag, readable from any
// goroutine.
func (t *IO) CancelRequested() bool { return t.cancelRequested.Load() }

// ClearCancel clears the cancel flag at the start of a new user message.
func (t *IO) ClearCancel() { t.cancelRequested.Store(false) }
