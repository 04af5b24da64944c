// Package lineeditor implements spec §4.B LineEditor: a raw-mode,
// UTF-8-aware line buffer with CSI/SS3/kitty escape parsing, history,
// slash-command completion, a single-key permission prompt, and a
// session picker. No off-the-shelf readline library exposes the
// byte-level control this requires (see DESIGN.md), so it is hand-built,
// leaning on github.com/mattn/go-runewidth for display-width-aware
// cursor math.
package lineeditor

import "github.com/mattn/go-runewidth"

// Buffer owns a byte slice and a cursor expressed as a byte offset that is
// always on a UTF-8 codepoint boundary.
type Buffer struct {
	bytes  []byte
	cursor int
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// String returns the full buffer contents.
func (b *Buffer) String() string { return string(b.bytes) }

// Len returns the byte length.
func (b *Buffer) Len() int { return len(b.bytes) }

// Cursor returns the current byte offset.
func (b *Buffer) Cursor() int { return b.cursor }

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.bytes = b.bytes[:0]
	b.cursor = 0
}

// SetString replaces the buffer contents, placing the cursor at the end.
func (b *Buffer) SetString(s string) {
	b.bytes = []byte(s)
	b.cursor = len(b.bytes)
}

// isContinuation reports whether c is a UTF-8 continuation byte
// (10xxxxxx).
func isContinuation(c byte) bool { return c&0xC0 == 0x80 }

// codepointStart walks backward from pos to the start of the codepoint it
// is inside (or sitting at).
func (b *Buffer) codepointStart(pos int) int {
	for pos > 0 && isContinuation(b.bytes[pos]) {
		pos--
	}
	return pos
}

// codepointLen returns the byte length of the codepoint starting at pos,
// determined by its leading-bit pattern.
func (b *Buffer) codepointLen(pos int) int {
	if pos >= len(b.bytes) {
		return 0
	}
	c := b.bytes[pos]
	switch {
	case c&0x80 == 0x00:
		return 1
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// MoveLeft moves the cursor back one whole codepoint.
func (b *Buffer) MoveLeft() {
	if b.cursor == 0 {
		return
	}
	pos := b.cursor - 1
	for pos > 0 && isContinuation(b.bytes[pos]) {
		pos--
	}
	b.cursor = pos
}

// MoveRight moves the cursor forward one whole codepoint.
func (b *Buffer) MoveRight() {
	if b.cursor >= len(b.bytes) {
		return
	}
	b.cursor += b.codepointLen(b.cursor)
}

// Home moves the cursor to the start of the buffer.
func (b *Buffer) Home() { b.cursor = 0 }

// End moves the cursor to the end of the buffer.
func (b *Buffer) End() { b.cursor = len(b.bytes) }

// InsertRune inserts a single rune at the cursor and advances past it.
func (b *Buffer) InsertRune(r rune) {
	b.InsertBytes([]byte(string(r)))
}

// InsertBytes inserts raw UTF-8 bytes (a decoded 1-4 byte sequence) at the
// cursor and advances past them.
func (b *Buffer) InsertBytes(seq []byte) {
	tail := append([]byte{}, b.bytes[b.cursor:]...)
	b.bytes = append(b.bytes[:b.cursor], seq...)
	b.bytes = append(b.bytes, tail...)
	b.cursor += len(seq)
}

// Backspace removes the whole codepoint before the cursor.
func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	start := b.codepointStart(b.cursor - 1)
	b.bytes = append(b.bytes[:start], b.bytes[b.cursor:]...)
	b.cursor = start
}

// Delete removes the whole codepoint at the cursor (forward delete).
func (b *Buffer) Delete() {
	if b.cursor >= len(b.bytes) {
		return
	}
	n := b.codepointLen(b.cursor)
	b.bytes = append(b.bytes[:b.cursor], b.bytes[b.cursor+n:]...)
}

// TruncateToCursor removes everything from the cursor to the end (ctrl_k).
func (b *Buffer) TruncateToCursor() {
	b.bytes = b.bytes[:b.cursor]
}

// DeleteToStart removes everything from the start to the cursor (ctrl_u).
func (b *Buffer) DeleteToStart() {
	b.bytes = b.bytes[b.cursor:]
	b.cursor = 0
}

// DeletePrevWord removes the previous word: skip trailing spaces, then
// non-spaces (ctrl_w).
func (b *Buffer) DeletePrevWord() {
	pos := b.cursor
	for pos > 0 && b.bytes[pos-1] == ' ' {
		pos--
	}
	for pos > 0 && b.bytes[pos-1] != ' ' {
		pos--
	}
	b.bytes = append(b.bytes[:pos], b.bytes[b.cursor:]...)
	b.cursor = pos
}

// DisplayWidth returns the terminal column width of the buffer's content
// up to the cursor, using go-runewidth so wide CJK glyphs and combining
// marks don't throw off cursor-column math on redraw.
func (b *Buffer) DisplayWidth() int {
	return runewidth.StringWidth(string(b.bytes[:b.cursor]))
}
