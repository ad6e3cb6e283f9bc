// Package build turns a recipe into compile and link steps and runs them in order.
package build

import (
	"context"
	"fmt"
	"io"

	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/runner"
	"dlbuild/pkg/system"
)

// Step is a single toolchain invocation in a build plan.
type Step interface {
	// Name is a short identifier such as "compile" or "link".
	Name() string
	// Description returns a human-readable string of what the step does.
	Description() string
	// Command returns the fully built command the step runs.
	Command() model.Command
	// Apply runs the command through r, streaming its output to out.
	Apply(ctx context.Context, r runner.CommandRunner, out io.Writer, logger log.Logger) (runner.Result, error)
	// ExecutionDetails returns a slice of strings describing the low-level operations.
	ExecutionDetails() []string
}

// CompileStep compiles the source file into an object file.
type CompileStep struct {
	Recipe *model.Recipe
}

func (s *CompileStep) Name() string { return "compile" }

func (s *CompileStep) Description() string {
	return fmt.Sprintf("Compile %s into %s", s.Recipe.Source, s.Recipe.Object)
}

// Command renders `<compiler> -I <include-dir> [flags...] -o <object> -c <source>`.
func (s *CompileStep) Command() model.Command {
	args := []string{"-I", s.Recipe.IncludeDir}
	args = append(args, s.Recipe.ExtraCompileFlags...)
	args = append(args, "-o", s.Recipe.Object, "-c", s.Recipe.Source)
	return model.NewCommand(s.Recipe.Compiler, args...).InDir(s.Recipe.WorkDir)
}

func (s *CompileStep) Apply(ctx context.Context, r runner.CommandRunner, out io.Writer, logger log.Logger) (runner.Result, error) {
	logger.Info("Compiling", "source", s.Recipe.Source, "object", s.Recipe.Object)
	res, err := r.Run(ctx, s.Command(), out)
	if err != nil {
		return res, err
	}

	// the link step runs regardless, so only flag what it will pick up
	objectPath := s.Recipe.ArtifactPath(s.Recipe.Object)
	if !system.FileExists(objectPath) {
		logger.Warn("Object file missing after compile, link will run on a stale or absent object", "object", objectPath, "exitcode", res.ExitCode)
	}
	return res, nil
}

func (s *CompileStep) ExecutionDetails() []string {
	details := []string{fmt.Sprintf("run: %s", s.Command())}
	if s.Recipe.WorkDir != "" {
		details = append(details, fmt.Sprintf("in directory: %s", s.Recipe.WorkDir))
	}
	return append(details, fmt.Sprintf("produces: %s", s.Recipe.Object))
}

// LinkStep links the object file against the dynamic-loading library.
type LinkStep struct {
	Recipe *model.Recipe
}

func (s *LinkStep) Name() string { return "link" }

func (s *LinkStep) Description() string {
	return fmt.Sprintf("Link %s into %s with -l%s", s.Recipe.Object, s.Recipe.Output, s.Recipe.Library)
}

// Command renders `<compiler> -o <output> -l<library> <object> [flags...]`.
func (s *LinkStep) Command() model.Command {
	args := []string{"-o", s.Recipe.Output, "-l" + s.Recipe.Library, s.Recipe.Object}
	args = append(args, s.Recipe.ExtraLinkFlags...)
	return model.NewCommand(s.Recipe.Compiler, args...).InDir(s.Recipe.WorkDir)
}

func (s *LinkStep) Apply(ctx context.Context, r runner.CommandRunner, out io.Writer, logger log.Logger) (runner.Result, error) {
	logger.Info("Linking", "object", s.Recipe.Object, "output", s.Recipe.Output, "library", s.Recipe.Library)
	return r.Run(ctx, s.Command(), out)
}

func (s *LinkStep) ExecutionDetails() []string {
	details := []string{fmt.Sprintf("run: %s", s.Command())}
	if s.Recipe.WorkDir != "" {
		details = append(details, fmt.Sprintf("in directory: %s", s.Recipe.WorkDir))
	}
	return append(details, fmt.Sprintf("produces: %s", s.Recipe.Output))
}
