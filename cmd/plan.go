package cmd

import (
	"encoding/json"
	"fmt"

	"dlbuild/pkg/build"
	"dlbuild/pkg/diff"

	"github.com/spf13/cobra"
)

var (
	planDiff  bool
	planColor bool
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Shows the commands a build would run",
	Long: `The plan command loads the recipe and prints the compile and link commands
without running them. With --diff each command is compared against the command
the built-in default recipe would run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		recipe, err := loadRecipe(cmd, logger)
		if err != nil {
			return err
		}

		var diffs []diff.CommandDiff
		if planDiff {
			diffs = diff.CompareWithDefaults(recipe)
		}

		return printPlan(cmd, build.Plan(recipe), diffs, "The following commands will be run:")
	},
}

func printPlan(cmd *cobra.Command, plan []build.Step, diffs []diff.CommandDiff, header string) error {
	byStep := make(map[string]diff.CommandDiff, len(diffs))
	for _, d := range diffs {
		byStep[d.Step] = d
	}

	if jsonOutput {
		stepsForJSON := []stepForJSON{}
		for _, step := range plan {
			command := step.Command()
			s := stepForJSON{
				Type:        fmt.Sprintf("%T", step),
				Name:        step.Name(),
				Description: step.Description(),
				Command:     command.String(),
				Dir:         command.Dir,
				Details:     step.ExecutionDetails(),
			}
			if d, ok := byStep[step.Name()]; ok {
				s.Diff = &d
			}
			stepsForJSON = append(stepsForJSON, s)
		}
		jsonBytes, err := json.MarshalIndent(stepsForJSON, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan to JSON: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, header)
	for _, step := range plan {
		fmt.Fprintf(out, "=> %s\n", step.Description())
		for _, detail := range step.ExecutionDetails() {
			fmt.Fprintf(out, "   - %s\n", detail)
		}

		d, ok := byStep[step.Name()]
		if !ok {
			continue
		}
		if !d.Changed() {
			fmt.Fprintln(out, "   (same as default)")
			continue
		}
		fmt.Fprintf(out, "   default: %s\n", d.Stock)
		if planColor {
			fmt.Fprintf(out, "   diff:    %s\n", d.Pretty())
			continue
		}
		for _, line := range d.Summary() {
			fmt.Fprintf(out, "     %s\n", line)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().BoolVar(&planDiff, "diff", false, "Compare each command with the default recipe")
	planCmd.Flags().BoolVar(&planColor, "color", false, "Render --diff output as a colored inline diff")
	planCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan in JSON format")
}
