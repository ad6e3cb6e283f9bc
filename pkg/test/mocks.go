package test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/runner"
)

// MockResponse is the canned behavior for one command line.
type MockResponse struct {
	Output   string
	ExitCode int
}

// MockCommandRunner is a shared mock implementation of runner.CommandRunner for testing.
// It tracks executed commands and allows setting up responses and errors.
// Commands are keyed by their rendered command line.
type MockCommandRunner struct {
	Commands  []string                // Track executed command lines
	Dirs      []string                // Working directory of each executed command
	Responses map[string]MockResponse // Response by command line
	Errors    map[string]error        // Spawn error by command line

	// OnRun, when set, is called before a response is produced.
	OnRun func(command model.Command)
}

var _ runner.CommandRunner = (*MockCommandRunner)(nil)

// NewMockCommandRunner creates a new MockCommandRunner with initialized maps.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Commands:  []string{},
		Dirs:      []string{},
		Responses: make(map[string]MockResponse),
		Errors:    make(map[string]error),
	}
}

// Run echoes the command line and replays the configured response or error.
func (r *MockCommandRunner) Run(ctx context.Context, command model.Command, out io.Writer) (runner.Result, error) {
	key := command.String()
	r.Commands = append(r.Commands, key)
	r.Dirs = append(r.Dirs, command.Dir)

	res := runner.Result{Command: key, ExitCode: -1}
	fmt.Fprintln(out, key)

	if r.OnRun != nil {
		r.OnRun(command)
	}

	if err, ok := r.Errors[key]; ok {
		return res, err
	}

	resp := r.Responses[key]
	io.WriteString(out, resp.Output)
	res.ExitCode = resp.ExitCode
	res.Lines = countLines(resp.Output)
	return res, nil
}

// SetResponse configures the output and exit code for a command line.
func (r *MockCommandRunner) SetResponse(command, output string, exitCode int) {
	r.Responses[command] = MockResponse{Output: output, ExitCode: exitCode}
}

// SetError configures a spawn error for a command line.
func (r *MockCommandRunner) SetError(command string, err error) {
	r.Errors[command] = err
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := bytes.Count([]byte(s), []byte("\n"))
	if s[len(s)-1] != '\n' {
		n++
	}
	return n
}

// MockLogger is a shared mock implementation of Logger for testing.
// It captures logged messages for verification.
type MockLogger struct {
	Messages []string
	Level    slog.Level

	root  *MockLogger
	attrs []any
}

// NewMockLogger creates a new MockLogger with the specified level.
func NewMockLogger(level slog.Level) *MockLogger {
	return &MockLogger{
		Messages: []string{},
		Level:    level,
	}
}

// Debug captures debug messages.
func (l *MockLogger) Debug(msg string, args ...any) {
	if l.Level <= slog.LevelDebug {
		l.captureMessage("DEBUG", msg, args...)
	}
}

// Info captures info messages.
func (l *MockLogger) Info(msg string, args ...any) {
	if l.Level <= slog.LevelInfo {
		l.captureMessage("INFO", msg, args...)
	}
}

// Warn captures warn messages.
func (l *MockLogger) Warn(msg string, args ...any) {
	if l.Level <= slog.LevelWarn {
		l.captureMessage("WARN", msg, args...)
	}
}

// Error captures error messages.
func (l *MockLogger) Error(msg string, args ...any) {
	if l.Level <= slog.LevelError {
		l.captureMessage("ERROR", msg, args...)
	}
}

// With returns a logger that records into l with args prepended to every message.
func (l *MockLogger) With(args ...any) log.Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	return &MockLogger{Level: l.Level, root: l.sink(), attrs: append(attrs, args...)}
}

func (l *MockLogger) sink() *MockLogger {
	if l.root != nil {
		return l.root
	}
	return l
}

func (l *MockLogger) captureMessage(level, msg string, args ...any) {
	buf := &bytes.Buffer{}
	buf.WriteString(level)
	buf.WriteString(": ")
	buf.WriteString(msg)
	args = append(append([]any{}, l.attrs...), args...)
	for i := 0; i+1 < len(args); i += 2 {
		buf.WriteString(" ")
		buf.WriteString(fmt.Sprintf("%v=%v", args[i], args[i+1]))
	}
	root := l.sink()
	root.Messages = append(root.Messages, buf.String())
}

// HasMessage checks if any captured message contains the given substring.
func (l *MockLogger) HasMessage(substring string) bool {
	for _, msg := range l.sink().Messages {
		if bytes.Contains([]byte(msg), []byte(substring)) {
			return true
		}
	}
	return false
}
