// Package runner defines interfaces for command execution.
// This package exists to break import cycles between testing and system packages.
package runner

import (
	"context"
	"io"
	"time"

	"dlbuild/pkg/model"
)

// Result describes one finished command.
type Result struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Lines    int           `json:"lines"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the command exited with status 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// CommandRunner runs a command to completion, echoing its command line to
// out and then streaming its combined output to out line by line.
// A non-zero exit status is reported in the Result, not as an error.
type CommandRunner interface {
	Run(ctx context.Context, command model.Command, out io.Writer) (Result, error)
}
