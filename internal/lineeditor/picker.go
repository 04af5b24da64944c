package lineeditor

// SessionEntry is one row of the session picker (mirrors
// internal/session.ListEntry without importing that package, to keep
// lineeditor dependency-free of session storage).
type SessionEntry struct {
	ID      string
	Model   string
	Summary string
}

// PickSession renders an in-place arrow-navigable list and returns the
// selected index, or false if the user cancels (ESC/Ctrl-C/'q').
// redraw is called after every selection change with the current index.
func PickSession(r ByteReader, entries []SessionEntry, redraw func(selected int)) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	selected := 0
	if redraw != nil {
		redraw(selected)
	}

	for {
		key, err := Read(r)
		if err != nil {
			return 0, false
		}
		switch key.Kind {
		case KeyUp:
			if selected > 0 {
				selected--
			}
			if redraw != nil {
				redraw(selected)
			}
		case KeyDown:
			if selected < len(entries)-1 {
				selected++
			}
			if redraw != nil {
				redraw(selected)
			}
		case KeyEnter:
			return selected, true
		case KeyEscape, KeyCtrlC:
			return 0, false
		case KeyRune:
			if key.Rune == 'q' {
				return 0, false
			}
		}
	}
}
