package lineeditor

import (
	"io"
	"time"
)

// TTYReader adapts an *os.File (or anything exposing SetReadDeadline) to
// the ByteReader interface Read needs.
type TTYReader struct {
	f interface {
		io.Reader
		SetReadDeadline(time.Time) error
	}
	timeout time.Duration
}

// NewTTYReader wraps f for use with Read.
func NewTTYReader(f interface {
	io.Reader
	SetReadDeadline(time.Time) error
}) *TTYReader {
	return &TTYReader{f: f}
}

// SetReadTimeout arms a deadline for the next ReadByte call only; Read
// resets it after the CSI/SS3 disambiguation byte is consumed by issuing
// a fresh call without a timeout on the following byte reads within
// readCSI/readSS3 (those are assumed already "inside" an escape sequence
// the user is actively typing, so they block normally).
func (t *TTYReader) SetReadTimeout(d time.Duration) { t.timeout = d }

// ReadByte reads exactly one byte, honoring a one-shot timeout set via
// SetReadTimeout.
func (t *TTYReader) ReadByte() (byte, error) {
	if t.timeout > 0 {
		_ = t.f.SetReadDeadline(time.Now().Add(t.timeout))
		t.timeout = 0
		defer t.f.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, 1)
	n, err := t.f.Read(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.ErrNoProgress
	}
	return buf[0], nil
}
