package repl

import "testing"

func TestIsAbortPhrase(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"stop", true},
		{"Stop!", true},
		{"  ABORT  ", true},
		{"please stop", true},
		{"стоп", true},
		{"Останови.", true},
		{"stop the build and then run the tests", false},
		{"hello", false},
		{"", false},
	}

	for _, c := range cases {
		if got := IsAbortPhrase(c.text); got != c.want {
			t.Errorf("IsAbortPhrase(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
