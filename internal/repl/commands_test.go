package repl

import "testing"

func TestIsCommand(t *testing.T) {
	if !IsCommand("/help") {
		t.Error("/help should be a command")
	}
	if !IsCommand("  /exit  ") {
		t.Error("leading/trailing whitespace shouldn't matter")
	}
	if IsCommand("not a command") {
		t.Error("plain text should not be a command")
	}
	if IsCommand("") {
		t.Error("empty string should not be a command")
	}
}

func TestDispatchCommandExitWords(t *testing.T) {
	for _, word := range []string{"/exit", "/quit", "/q", "/выход", "/выйти"} {
		result, ok := dispatchCommand(word)
		if !ok {
			t.Errorf("%q should be recognized as a command", word)
			continue
		}
		if !result.Exit {
			t.Errorf("%q should set Exit", word)
		}
	}
}

func TestDispatchCommandHelp(t *testing.T) {
	result, ok := dispatchCommand("/help")
	if !ok || !result.Handled || result.Output == "" {
		t.Fatalf("/help should be handled with non-empty output, got %+v ok=%v", result, ok)
	}
	if result.Exit {
		t.Error("/help should not exit")
	}
}

func TestDispatchCommandUnknownFallsThrough(t *testing.T) {
	_, ok := dispatchCommand("/tools")
	if ok {
		t.Error("/tools is driver-bound and should not be handled by dispatchCommand")
	}
}

func TestDispatchCommandEmptyLine(t *testing.T) {
	result, ok := dispatchCommand("   ")
	if ok || result.Handled {
		t.Error("blank input should not be dispatched")
	}
}
