package cmd

import (
	"encoding/json"
	"fmt"

	"dlbuild/pkg/build"
	"dlbuild/pkg/system"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	dryRun     bool
	failFast   bool
	reportPath string
}

var buildFlags buildOptions

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compiles and links the sample executable",
	Long: `The build command runs the compile step and then the link step.

A step that exits with a non-zero status does not stop the build, the link
step still runs. Use --fail-fast (or fail-fast: true in the recipe) to stop
at the first failing step instead. A toolchain that cannot be started always
aborts the build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, buildFlags)
	},
}

func runBuild(cmd *cobra.Command, opts buildOptions) error {
	logger := loggerFrom(cmd)

	recipe, err := loadRecipe(cmd, logger)
	if err != nil {
		return err
	}

	plan := build.Plan(recipe)

	if opts.dryRun {
		return printPlan(cmd, plan, nil, "Dry run enabled. The following commands would be run:")
	}

	report, err := build.Execute(cmd.Context(), plan, cmdRunner, cmd.OutOrStdout(), logger, build.Options{
		FailFast: opts.failFast || recipe.StopOnFailure(),
	})

	if opts.reportPath != "" {
		if werr := writeReport(opts.reportPath, report); werr != nil {
			logger.Error("Could not write build report", "path", opts.reportPath, "error", werr)
		}
	}

	return err
}

func writeReport(path string, report *build.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	return afero.WriteFile(system.AppFs, path, data, 0644)
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildFlags.dryRun, "dry-run", false, "Show the commands that would be run without running them")
	buildCmd.Flags().BoolVar(&buildFlags.failFast, "fail-fast", false, "Stop at the first step that exits with a non-zero status")
	buildCmd.Flags().StringVar(&buildFlags.reportPath, "report", "", "Write a JSON report of the executed steps to this file")
	buildCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan in JSON format (only valid with --dry-run)")
}
