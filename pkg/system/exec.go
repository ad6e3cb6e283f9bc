package system

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/runner"
)

// CommandRunner defines an interface for running commands.
// Re-exported from pkg/runner so callers only need one import.
type CommandRunner = runner.CommandRunner

// LiveCommandRunner is an implementation of CommandRunner that spawns real processes.
type LiveCommandRunner struct {
	// Logger is optional.
	Logger log.Logger
}

var _ CommandRunner = (*LiveCommandRunner)(nil)

// Run echoes the command line to out, starts the process with stdout and
// stderr joined on one pipe, and forwards every line to out as it arrives.
// It returns once the process has exited and the pipe is drained. Cancelling
// ctx kills the process together with every helper it started.
func (r *LiveCommandRunner) Run(ctx context.Context, command model.Command, out io.Writer) (runner.Result, error) {
	res := runner.Result{Command: command.String(), ExitCode: -1}
	if command.IsEmpty() {
		return res, errors.New("command not specified")
	}

	if _, err := fmt.Fprintln(out, res.Command); err != nil {
		return res, fmt.Errorf("echo command: %w", err)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return res, fmt.Errorf("create output pipe: %w", err)
	}
	defer pr.Close()

	// #nosec G204 - the command is built from the recipe or given explicitly by the operator
	cmd := exec.CommandContext(ctx, command.Program, command.Args...)
	cmd.Dir = command.Dir
	cmd.Stdout = pw
	cmd.Stderr = pw
	killProcessGroupOnCancel(cmd)

	r.debug("Running command", "command", res.Command, "dir", command.Dir)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		pw.Close()
		return res, fmt.Errorf("start %s: %w", command.Program, err)
	}
	// the child keeps its own copy, ours must go so the reader sees EOF
	pw.Close()

	lines, copyErr := forwardLines(pr, out)
	if copyErr != nil {
		// keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}
	res.Lines = lines

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.ExitCode = cmd.ProcessState.ExitCode()

	if copyErr != nil {
		return res, fmt.Errorf("forward output of %s: %w", command.Program, copyErr)
	}

	if waitErr == nil {
		r.debug("Command finished", "command", res.Command, "exitcode", res.ExitCode, "lines", res.Lines)
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		// non-zero exits and signal deaths are results, not failures of the runner
		res.ExitCode = exitCode(exitErr.ProcessState)
		r.debug("Command exited with non-zero status", "command", res.Command, "exitcode", res.ExitCode)
		return res, nil
	}

	return res, fmt.Errorf("wait for %s: %w", command.Program, waitErr)
}

// exitCode maps a finished process to a shell-style status. A process killed
// by a signal reports 128 plus the signal number.
func exitCode(state *os.ProcessState) int {
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

// forwardLines copies r to out one line at a time, without altering bytes.
// A final line lacking a newline is forwarded as is.
func forwardLines(r io.Reader, out io.Writer) (int, error) {
	br := bufio.NewReader(r)
	lines := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines++
			if _, werr := io.WriteString(out, line); werr != nil {
				return lines, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}

func (r *LiveCommandRunner) debug(msg string, args ...any) {
	if r.Logger != nil {
		r.Logger.Debug(msg, args...)
	}
}
