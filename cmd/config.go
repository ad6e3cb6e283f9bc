package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the effective recipe",
	Long: `The config command prints the recipe a build would use, after the defaults,
the user config ($XDG_CONFIG_HOME/dlbuild/config.yaml) and the project config
have been merged and all includes resolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		recipe, err := loadRecipe(cmd, logger)
		if err != nil {
			return err
		}

		if jsonOutput {
			jsonData, err := json.MarshalIndent(recipe, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling to JSON: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(jsonData))
			return nil
		}

		yamlData, err := yaml.Marshal(recipe)
		if err != nil {
			return fmt.Errorf("error marshaling to YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the recipe in JSON format")
}
