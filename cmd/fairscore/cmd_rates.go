package main

import (
	"fmt"

	"github.com/spboyer/fairscore/internal/analysis"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/projectconfig"
	"github.com/spboyer/fairscore/internal/reporting"
	"github.com/spf13/cobra"
)

// ratesReport is the JSON shape of the rates command.
type ratesReport struct {
	Thresholds models.ThresholdMap         `json:"thresholds"`
	Overall    models.SubgroupRateRecord   `json:"overall"`
	Subgroups  []models.SubgroupRateRecord `json:"subgroups"`
}

func newRatesCommand(root *rootOptions) *cobra.Command {
	var df dataFlags
	var af analysisFlags
	var ef eerFlags
	var tf thresholdFlags

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Per-subgroup true and false negative rates",
		Long: `Compute true and false negative rates for every model instance on the
whole dataset and on each subgroup's rows, at a uniform --threshold, the
per-instance thresholds from the config file, or each instance's equal
error rate threshold (--eer).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, format, err := root.configure(cmd,
				func(cfg *projectconfig.ProjectConfig) error { return df.apply(cmd, cfg) },
				func(cfg *projectconfig.ProjectConfig) error { af.apply(cmd, cfg); return nil },
				func(cfg *projectconfig.ProjectConfig) error { ef.apply(cmd, cfg); return nil },
				func(cfg *projectconfig.ProjectConfig) error { tf.apply(cmd, cfg); return nil },
			)
			if err != nil {
				return err
			}
			if !tf.configured(cfg) {
				return fmt.Errorf("no threshold configured: use --threshold, --eer or analysis.threshold")
			}
			s, err := openSession(cfg, format, true)
			if err != nil {
				return err
			}
			return runRates(cmd, s, tf.useEER)
		},
	}

	df.register(cmd)
	af.register(cmd)
	ef.register(cmd)
	tf.register(cmd)
	return cmd
}

func runRates(cmd *cobra.Command, s *session, useEER bool) error {
	opts, err := s.cfg.AnalysisOptions()
	if err != nil {
		return err
	}
	thresholds, err := s.thresholds(useEER)
	if err != nil {
		return err
	}
	overall, err := analysis.OverallNegativeRates(s.data, s.families, thresholds, opts)
	if err != nil {
		return err
	}
	stop := trackProgress(cmd, &opts, len(s.subgroups))
	records, err := analysis.PerSubgroupNegativeRates(cmd.Context(), s.data, s.subgroups, s.families, thresholds, opts)
	stop()
	if err != nil {
		return err
	}

	rows := append([]models.SubgroupRateRecord{overall}, records...)
	return reporting.Render(cmd.OutOrStdout(), s.format, reporting.Report{
		Data:   ratesReport{Thresholds: thresholds, Overall: overall, Subgroups: records},
		Tables: []reporting.Table{reporting.RateTable(rows)},
	})
}
