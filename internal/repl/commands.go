package repl

import "strings"

// exitWords are every spelling of "exit" the REPL recognizes as a slash
// command, per spec §4.I: the English trio, the Russian words, and their
// QWERTY→ЙЦУКЕН mistype equivalents (what a Cyrillic-keyboard user gets
// when they type the Latin word without switching layout).
var exitWords = map[string]bool{
	"/exit": true, "/quit": true, "/q": true,
	"/выход": true, "/выйти": true, "/в": true,
	"/учше": true, "/йгше": true, "/й": true,
}

// CommandResult is the outcome of dispatching one slash command.
type CommandResult struct {
	// Handled is true if input was recognized as a command (even an
	// unknown one — the caller should not forward it to the agent).
	Handled bool

	// Exit requests the REPL loop terminate.
	Exit bool

	// Output is printed to the terminal as plain text.
	Output string
}

// IsCommand reports whether line looks like a slash command.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "/")
}

// dispatchCommand resolves a slash command to its effect. Commands that
// need driver state (/tools, /skills, /usage, /sessions, /compact) are
// handled by Driver.handleCommand, which calls this first as a fast path
// for the stateless ones.
func dispatchCommand(line string) (CommandResult, bool) {
	word := strings.Fields(strings.TrimSpace(line))
	if len(word) == 0 {
		return CommandResult{}, false
	}
	cmd := strings.ToLower(word[0])

	if exitWords[cmd] {
		return CommandResult{Handled: true, Exit: true, Output: "Goodbye."}, true
	}
	if cmd == "/help" {
		return CommandResult{Handled: true, Output: helpText}, true
	}
	return CommandResult{}, false
}

const helpText = `Commands:
  /exit, /quit, /q       leave
  /help                  this message
  /tools                 list the tool registry with risk classification
  /skills                list always-on and on-demand skills
  /usage                 show token usage and context budget
  /sessions              list recent sessions
  /compact               summarize the conversation so far`
