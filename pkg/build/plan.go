package build

import (
	"context"
	"fmt"
	"io"
	"time"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/runner"
	"dlbuild/pkg/system"

	"github.com/google/uuid"
)

// Plan returns the ordered steps for a recipe: compile, then link.
func Plan(recipe *model.Recipe) []Step {
	return []Step{
		&CompileStep{Recipe: recipe},
		&LinkStep{Recipe: recipe},
	}
}

// Options tune Execute.
type Options struct {
	// FailFast stops the plan at the first step that exits non-zero.
	// By default every step runs whatever the previous one returned.
	FailFast bool
}

// StepResult is the outcome of one executed step.
type StepResult struct {
	Step string `json:"step"`
	runner.Result
}

// Report records one execution of a plan.
type Report struct {
	ID       string        `json:"id"`
	Steps    []StepResult  `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Failed returns the steps that exited non-zero.
func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.Succeeded() {
			failed = append(failed, s)
		}
	}
	return failed
}

// StepFailedError is returned in fail-fast mode when a step exits non-zero.
type StepFailedError struct {
	Step     string
	ExitCode int
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("%s step failed with exit code %d", e.Step, e.ExitCode)
}

// Execute runs the plan strictly in sequence. Each step's process has exited
// and its output is drained before the next step starts.
//
// A step that cannot be spawned aborts the plan and its error is returned with
// the partial report. A step that exits non-zero is logged and, unless
// opts.FailFast is set, the next step still runs.
func Execute(ctx context.Context, plan []Step, r runner.CommandRunner, out io.Writer, logger log.Logger, opts Options) (*Report, error) {
	report := &Report{ID: uuid.New().String()}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	logger = logger.With("run", report.ID)

	for _, step := range plan {
		logger.Info(fmt.Sprintf("=> %s", step.Description()))

		res, err := step.Apply(ctx, r, out, logger)
		if err != nil {
			if system.IsCommandNotFound(err) {
				logger.Error("Toolchain program not found on PATH", "step", step.Name(), "program", step.Command().Program)
			}
			logger.Error("Step could not be run", "step", step.Name(), "error", err)
			return report, fmt.Errorf("%s step: %w", step.Name(), err)
		}
		report.Steps = append(report.Steps, StepResult{Step: step.Name(), Result: res})

		if !res.Succeeded() {
			logger.Warn("Step exited with non-zero status", "step", step.Name(), "exitcode", res.ExitCode)
			if opts.FailFast {
				return report, &StepFailedError{Step: step.Name(), ExitCode: res.ExitCode}
			}
			continue
		}

		logger.Debug("Step finished", "step", step.Name(), "lines", res.Lines, "duration", res.Duration)
	}

	logger.Info("Build complete.", "failed_steps", len(report.Failed()))
	return report, nil
}
