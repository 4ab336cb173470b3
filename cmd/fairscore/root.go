package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	format     string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "fairscore",
		Short: "fairscore - measure unintended bias in classifier scores",
		Long: `fairscore measures unintended bias in binary classifier scores across
identity subgroups.

Given a scored dataset with a boolean label, one score column per model
instance and one boolean column per subgroup, it computes pinned AUCs,
Mann-Whitney rank statistics, squared equality gaps, thresholded negative
rates and summed equality differences for each model family.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: .fairscore.yaml found by walking up from the working directory)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "", "Output format: table, json, csv, markdown or html")
	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newAUCCommand(opts))
	cmd.AddCommand(newRatesCommand(opts))
	cmd.AddCommand(newEERCommand(opts))
	cmd.AddCommand(newDiffCommand(opts))
	cmd.AddCommand(newTagCommand(opts))

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
