package repl

import "testing"

func TestPreviewArgsShort(t *testing.T) {
	got := previewArgs(`{"path":"main.go"}`)
	want := `{"path":"main.go"}`
	if got != want {
		t.Errorf("previewArgs(%q) = %q, want %q", want, got, want)
	}
}

func TestPreviewArgsTrimsWhitespace(t *testing.T) {
	got := previewArgs("  {\"a\":1}  \n")
	if got != `{"a":1}` {
		t.Errorf("previewArgs should trim surrounding whitespace, got %q", got)
	}
}

func TestPreviewArgsTruncatesLong(t *testing.T) {
	long := `{"command":"` + string(make([]byte, 200)) + `"}`
	got := previewArgs(long)
	if len(got) != 83 {
		t.Errorf("expected truncated preview of length 83 (80 + '...'), got %d", len(got))
	}
}
