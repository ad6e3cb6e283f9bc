package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dlbuild/pkg/config"
	"dlbuild/pkg/log"
	"dlbuild/pkg/model"
	"dlbuild/pkg/system"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	jsonOutput bool
	logger     log.Logger
	cmdRunner  system.CommandRunner = &system.LiveCommandRunner{}
	rootCmd                         = &cobra.Command{
		Use:   "dlbuild",
		Short: "dlbuild compiles and links a sample program against the dynamic loader",
		Long: `dlbuild drives a C++ toolchain to build a sample executable that links
against the dynamic-loading library. It runs a compile step and then a link step,
echoing each command line and streaming the toolchain's output as it arrives.

Run without a subcommand it performs a build with the recipe from dlbuild.yaml,
or with the built-in defaults when that file does not exist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			l, err := log.NewLogger(level, logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = l
			if live, ok := cmdRunner.(*system.LiveCommandRunner); ok {
				live.Logger = logger
			}
			ctx := context.WithValue(cmd.Context(), "logger", logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, buildOptions{})
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel the running toolchain process group.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loggerFrom(cmd *cobra.Command) log.Logger {
	return cmd.Context().Value("logger").(log.Logger)
}

// loadRecipe reads the project recipe. The default file is optional, an
// explicitly passed --config is not.
func loadRecipe(cmd *cobra.Command, logger log.Logger) (*model.Recipe, error) {
	required := cmd.Flags().Changed("config")
	recipe, err := config.NewLoader(logger).Load(cfgFile, required)
	if err != nil {
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	return recipe, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "recipe file, YAML or TOML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", log.FormatText, "Log format (text, json)")
}
