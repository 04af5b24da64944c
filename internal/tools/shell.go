package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// RunShell implements the execute_bash tool of spec §4.C: stdin is
// /dev/null, a background process-group kill timer fires SIGKILL after
// timeout, stdout/stderr are combined. Grounded on the teacher's
// registerBashTool (process-group setup, cmd.Cancel hook) in
// system_tools.go, with the timeout/exit-code semantics rewritten to the
// spec's exact contract instead of the teacher's free-form message.
func RunShell(ctx context.Context, command string, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "bash", "-c", command)
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProcGroup(cmd) }

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return fmt.Sprintf("Error: open %s: %v", os.DevNull, err)
	}
	defer devNull.Close()
	cmd.Stdin = devNull

	out, err := cmd.CombinedOutput()
	output := string(out)
	timedOut := cmdCtx.Err() == context.DeadlineExceeded

	killed := timedOut || wasKilled(err)
	if killed {
		if strings.TrimSpace(output) != "" {
			output = strings.TrimRight(output, "\n") + fmt.Sprintf("\n--- TIMEOUT: command killed after %ds ---", int(timeout.Seconds()))
		} else {
			output = fmt.Sprintf("--- TIMEOUT: command killed after %ds ---", int(timeout.Seconds()))
		}
		return output
	}

	if strings.TrimSpace(output) == "" {
		return "(no output)"
	}
	return output
}

func wasKilled(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		if exitErr.ExitCode() == 137 {
			return true
		}
		return exitErr.ExitCode() == -1 // terminated by signal
	}
	return false
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}
