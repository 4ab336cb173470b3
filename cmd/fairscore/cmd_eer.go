package main

import (
	"github.com/spboyer/fairscore/internal/analysis"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/projectconfig"
	"github.com/spboyer/fairscore/internal/reporting"
	"github.com/spf13/cobra"
)

func newEERCommand(root *rootOptions) *cobra.Command {
	var df dataFlags
	var ef eerFlags

	cmd := &cobra.Command{
		Use:   "eer",
		Short: "Equal-error-rate threshold per model instance",
		Long: `Search evenly spaced thresholds in [0, 1] for the one where each
instance's false negative and false positive counts are closest, and
print the threshold with its confusion counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, format, err := root.configure(cmd,
				func(cfg *projectconfig.ProjectConfig) error { return df.apply(cmd, cfg) },
				func(cfg *projectconfig.ProjectConfig) error { ef.apply(cmd, cfg); return nil },
			)
			if err != nil {
				return err
			}
			s, err := openSession(cfg, format, true)
			if err != nil {
				return err
			}
			return runEER(cmd, s)
		},
	}

	df.register(cmd)
	ef.register(cmd)
	return cmd
}

func runEER(cmd *cobra.Command, s *session) error {
	mode, err := s.cfg.EERMode()
	if err != nil {
		return err
	}
	results, err := analysis.PerModelEER(s.data, models.AllInstances(s.families), s.cfg.Analysis.EERThresholds, mode)
	if err != nil {
		return err
	}
	return reporting.Render(cmd.OutOrStdout(), s.format, reporting.Report{
		Data:   results,
		Tables: []reporting.Table{reporting.EERTable(results)},
	})
}
