package lineeditor

import (
	"errors"
	"io"
)

// ErrEOF is returned by ReadLine when ctrl_d is pressed on an empty
// buffer, per spec §4.B.
var ErrEOF = errors.New("lineeditor: eof")

// Redraw is called by Editor after every buffer mutation so the caller
// can repaint the input row. It receives the full line text and the
// cursor's display-column offset.
type Redraw func(line string, cursorCol int)

// ClearScreen is invoked on ctrl_l; the caller re-installs the terminal
// layout (scroll region + separators) in response.
type ClearScreen func()

// Editor ties a Buffer to a History and drives one ReadLine call.
type Editor struct {
	buf     *Buffer
	hist    *History
	redraw  Redraw
	onClear ClearScreen
}

// NewEditor builds an Editor. redraw and onClear may be nil (tests
// commonly pass nil and only inspect the returned line).
func NewEditor(hist *History, redraw Redraw, onClear ClearScreen) *Editor {
	return &Editor{buf: NewBuffer(), hist: hist, redraw: redraw, onClear: onClear}
}

func (e *Editor) repaint() {
	if e.redraw != nil {
		e.redraw(e.buf.String(), e.buf.DisplayWidth())
	}
}

// ReadLine reads and edits one line from r until Enter, returning the
// committed text. Returns ErrEOF on ctrl_d with an empty buffer.
func (e *Editor) ReadLine(r ByteReader) (string, error) {
	e.buf.Reset()
	e.repaint()

	for {
		key, err := Read(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrEOF
			}
			return "", err
		}

		switch key.Kind {
		case KeyEnter:
			line := e.buf.String()
			e.hist.Add(line)
			e.hist.ResetCursor()
			return line, nil

		case KeyRune:
			e.buf.InsertRune(key.Rune)
			e.repaint()

		case KeyBackspace:
			e.buf.Backspace()
			e.repaint()

		case KeyDelete:
			e.buf.Delete()
			e.repaint()

		case KeyLeft:
			e.buf.MoveLeft()
			e.repaint()

		case KeyRight:
			e.buf.MoveRight()
			e.repaint()

		case KeyHome, KeyCtrlA:
			e.buf.Home()
			e.repaint()

		case KeyEnd, KeyCtrlE:
			e.buf.End()
			e.repaint()

		case KeyCtrlK:
			e.buf.TruncateToCursor()
			e.repaint()

		case KeyCtrlU:
			e.buf.DeleteToStart()
			e.repaint()

		case KeyCtrlW:
			e.buf.DeletePrevWord()
			e.repaint()

		case KeyCtrlL:
			if e.onClear != nil {
				e.onClear()
			}
			e.repaint()

		case KeyCtrlC:
			e.buf.Reset()
			e.repaint()

		case KeyCtrlD:
			if e.buf.Len() == 0 {
				return "", ErrEOF
			}
			e.buf.Delete()
			e.repaint()

		case KeyUp:
			if line, ok := e.hist.Up(e.buf.String()); ok {
				e.buf.SetString(line)
				e.repaint()
			}

		case KeyDown:
			if line, ok := e.hist.Down(); ok {
				e.buf.SetString(line)
				e.repaint()
			}

		case KeyTab:
			if ext, ok := Complete(e.buf.String()); ok {
				e.buf.SetString(ext)
				e.repaint()
			}

		default:
			// Unknown/escape-only events are ignored; ESC-as-cancel is
			// handled by the spinner/permission layers, not here.
		}
	}
}
