package cmd

import (
	"dlbuild/pkg/model"

	"github.com/spf13/cobra"
)

var runDir string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [--dir DIR] <command line> | run [--dir DIR] <program> [args...]",
	Short: "Runs a single command and streams its output",
	Long: `The run command starts one command, echoes its command line and forwards
its combined stdout and stderr line by line as it is produced.

A single argument is split like a shell command line ("echo hello").
Several arguments are used as the argument vector as given. The command's
exit status is logged but does not change dlbuild's own exit status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		command, err := commandFromArgs(args)
		if err != nil {
			return err
		}

		res, err := cmdRunner.Run(cmd.Context(), command.InDir(runDir), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		logger.Info("Command finished", "command", res.Command, "exitcode", res.ExitCode, "lines", res.Lines)
		return nil
	},
}

func commandFromArgs(args []string) (model.Command, error) {
	if len(args) == 1 {
		return model.ParseCommand(args[0])
	}
	return model.NewCommand(args[0], args[1:]...), nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runDir, "dir", "", "Working directory for the command")
	// everything after the program belongs to the program
	runCmd.Flags().SetInterspersed(false)
}
