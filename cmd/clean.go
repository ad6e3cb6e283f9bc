package cmd

import (
	"fmt"

	"dlbuild/pkg/build"

	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Removes the object file and the executable",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		recipe, err := loadRecipe(cmd, logger)
		if err != nil {
			return err
		}

		removed, err := build.Clean(recipe, logger)
		for _, path := range removed {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
