package build

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"dlbuild/pkg/model"
	"dlbuild/pkg/system"
	"dlbuild/pkg/test"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultCompileLine = "g++ -I ../../include -o main.o -c main.cpp"
	defaultLinkLine    = "g++ -o sample -ldl main.o"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	orig := system.AppFs
	t.Cleanup(func() { system.AppFs = orig })

	system.AppFs = afero.NewMemMapFs()
	return system.AppFs
}

func TestPlan_DefaultRecipe(t *testing.T) {
	plan := Plan(model.DefaultRecipe())
	require.Len(t, plan, 2)

	assert.Equal(t, "compile", plan[0].Name())
	assert.Equal(t, defaultCompileLine, plan[0].Command().String())
	assert.Equal(t, "Compile main.cpp into main.o", plan[0].Description())

	assert.Equal(t, "link", plan[1].Name())
	assert.Equal(t, defaultLinkLine, plan[1].Command().String())
	assert.Equal(t, "Link main.o into sample with -ldl", plan[1].Description())
}

func TestPlan_CustomRecipe(t *testing.T) {
	recipe := test.SampleRecipe()
	recipe.WorkDir = "/src/demo"
	plan := Plan(recipe)

	compile := plan[0].Command()
	assert.Equal(t, "clang++ -I ../../include -Wall -O2 -o demo.o -c demo.cpp", compile.String())
	assert.Equal(t, "/src/demo", compile.Dir)

	link := plan[1].Command()
	assert.Equal(t, "clang++ -o demo -ldl demo.o -rdynamic", link.String())
	assert.Equal(t, "/src/demo", link.Dir)

	assert.Equal(t, []string{
		"run: clang++ -I ../../include -Wall -O2 -o demo.o -c demo.cpp",
		"in directory: /src/demo",
		"produces: demo.o",
	}, plan[0].ExecutionDetails())
	assert.Equal(t, []string{
		"run: clang++ -o demo -ldl demo.o -rdynamic",
		"in directory: /src/demo",
		"produces: demo",
	}, plan[1].ExecutionDetails())
}

func TestExecute_RunsStepsInOrder(t *testing.T) {
	fs := useMemFs(t)
	runner := test.NewMockCommandRunner()
	runner.SetResponse(defaultCompileLine, "compiling...\n", 0)
	runner.SetResponse(defaultLinkLine, "linking...\n", 0)
	runner.OnRun = func(cmd model.Command) {
		if cmd.String() == defaultCompileLine {
			require.NoError(t, afero.WriteFile(fs, "main.o", []byte("obj"), 0644))
		}
	}
	logger := test.NewMockLogger(slog.LevelDebug)

	var out bytes.Buffer
	report, err := Execute(context.Background(), Plan(model.DefaultRecipe()), runner, &out, logger, Options{})
	require.NoError(t, err)

	test.AssertCommandExecuted(t, runner, defaultCompileLine)
	test.AssertCommandExecuted(t, runner, defaultLinkLine)
	assert.Equal(t, []string{defaultCompileLine, defaultLinkLine}, runner.Commands)
	assert.Equal(t, defaultCompileLine+"\ncompiling...\n"+defaultLinkLine+"\nlinking...\n", out.String())

	require.Len(t, report.Steps, 2)
	assert.Equal(t, "compile", report.Steps[0].Step)
	assert.Equal(t, "link", report.Steps[1].Step)
	assert.Empty(t, report.Failed())
	assert.NotEmpty(t, report.ID)
	assert.False(t, logger.HasMessage("Object file missing"))
	test.AssertLogContains(t, logger, "Build complete. run="+report.ID)
	test.AssertLogContains(t, logger, "DEBUG: Step finished run="+report.ID+" step=link")
}

func TestExecute_CompileFailureStillLinks(t *testing.T) {
	useMemFs(t)
	runner := test.NewMockCommandRunner()
	runner.SetResponse(defaultCompileLine, "main.cpp:1:1: error: expected unqualified-id\n", 1)
	runner.SetResponse(defaultLinkLine, "g++: error: main.o: No such file or directory\n", 1)
	logger := test.NewMockLogger(slog.LevelInfo)

	var out bytes.Buffer
	report, err := Execute(context.Background(), Plan(model.DefaultRecipe()), runner, &out, logger, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{defaultCompileLine, defaultLinkLine}, runner.Commands)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, 1, report.Steps[0].ExitCode)
	assert.Equal(t, 1, report.Steps[1].ExitCode)
	assert.Len(t, report.Failed(), 2)

	compileAt := strings.Index(out.String(), "expected unqualified-id")
	linkAt := strings.Index(out.String(), defaultLinkLine)
	assert.True(t, compileAt >= 0 && compileAt < linkAt, "compile output must precede the link step")

	test.AssertLogContains(t, logger, "Step exited with non-zero status")
	test.AssertLogContains(t, logger, "Object file missing after compile")
}

func TestExecute_FailFastStopsAfterFailedStep(t *testing.T) {
	useMemFs(t)
	runner := test.NewMockCommandRunner()
	runner.SetResponse(defaultCompileLine, "error\n", 4)
	logger := test.NewMockLogger(slog.LevelInfo)

	report, err := Execute(context.Background(), Plan(model.DefaultRecipe()), runner, &bytes.Buffer{}, logger, Options{FailFast: true})
	require.Error(t, err)

	var stepErr *StepFailedError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "compile", stepErr.Step)
	assert.Equal(t, 4, stepErr.ExitCode)
	assert.Equal(t, "compile step failed with exit code 4", err.Error())

	test.AssertCommandNotExecuted(t, runner, defaultLinkLine)
	assert.Len(t, report.Steps, 1)
}

func TestExecute_SpawnErrorAborts(t *testing.T) {
	useMemFs(t)
	spawnErr := &exec.Error{Name: "g++", Err: exec.ErrNotFound}
	runner := test.NewMockCommandRunner()
	runner.SetError(defaultCompileLine, spawnErr)
	logger := test.NewMockLogger(slog.LevelInfo)

	var out bytes.Buffer
	report, err := Execute(context.Background(), Plan(model.DefaultRecipe()), runner, &out, logger, Options{})
	require.Error(t, err)

	assert.ErrorIs(t, err, spawnErr)
	assert.Contains(t, err.Error(), "compile step")
	test.AssertCommandNotExecuted(t, runner, defaultLinkLine)
	assert.Empty(t, report.Steps)
	assert.Equal(t, defaultCompileLine+"\n", out.String())
	test.AssertLogContains(t, logger, "Step could not be run")
	test.AssertLogContains(t, logger, "Toolchain program not found on PATH step=compile program=g++")
}

func TestExecute_SpawnErrorOtherThanNotFound(t *testing.T) {
	useMemFs(t)
	runner := test.NewMockCommandRunner()
	runner.SetError(defaultCompileLine, errors.New("fork/exec g++: permission denied"))
	logger := test.NewMockLogger(slog.LevelInfo)

	_, err := Execute(context.Background(), Plan(model.DefaultRecipe()), runner, &bytes.Buffer{}, logger, Options{})
	require.Error(t, err)

	test.AssertLogContains(t, logger, "Step could not be run")
	assert.False(t, logger.HasMessage("not found on PATH"))
}

func TestExecute_UsesWorkDir(t *testing.T) {
	fs := useMemFs(t)
	recipe := model.DefaultRecipe()
	recipe.WorkDir = "/src/sample"
	require.NoError(t, afero.WriteFile(fs, "/src/sample/main.o", []byte("obj"), 0644))

	runner := test.NewMockCommandRunner()
	logger := test.NewMockLogger(slog.LevelInfo)

	_, err := Execute(context.Background(), Plan(recipe), runner, &bytes.Buffer{}, logger, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"/src/sample", "/src/sample"}, runner.Dirs)
	assert.False(t, logger.HasMessage("Object file missing"))
}
