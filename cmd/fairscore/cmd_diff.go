package main

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/spboyer/fairscore/internal/analysis"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/projectconfig"
	"github.com/spboyer/fairscore/internal/reporting"
	"github.com/spf13/cobra"
)

// diffFlags configure the diff command itself.
type diffFlags struct {
	squared    bool
	normalized bool
	failAbove  float64
	junitPath  string
}

func newDiffCommand(root *rootOptions) *cobra.Command {
	var df dataFlags
	var af analysisFlags
	var ef eerFlags
	var tf thresholdFlags
	var flags diffFlags

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Summed equality differences between subgroups and the whole dataset",
		Long: `Sum, per model family, the gap between each instance's whole-dataset
metric and its value on every subgroup:

  pinned_auc_equality_difference  AUC (or normalized pinned AUC with --normalized)
  fnr_equality_difference         false negative rate, when a threshold is set
  tnr_equality_difference         true negative rate, when a threshold is set

With --fail-above the command exits with status 1 when any defined
difference exceeds the limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, format, err := root.configure(cmd,
				func(cfg *projectconfig.ProjectConfig) error { return df.apply(cmd, cfg) },
				func(cfg *projectconfig.ProjectConfig) error { af.apply(cmd, cfg); return nil },
				func(cfg *projectconfig.ProjectConfig) error { ef.apply(cmd, cfg); return nil },
				func(cfg *projectconfig.ProjectConfig) error { tf.apply(cmd, cfg); return nil },
				func(cfg *projectconfig.ProjectConfig) error {
					if cmd.Flags().Changed("squared") {
						cfg.Analysis.SquaredError = &flags.squared
					}
					return nil
				},
			)
			if err != nil {
				return err
			}
			s, err := openSession(cfg, format, true)
			if err != nil {
				return err
			}
			limit := math.Inf(1)
			if cmd.Flags().Changed("fail-above") {
				limit = flags.failAbove
			}
			return runDiff(cmd, s, &flags, tf.useEER, tf.configured(cfg), limit)
		},
	}

	df.register(cmd)
	af.register(cmd)
	ef.register(cmd)
	tf.register(cmd)
	cmd.Flags().BoolVar(&flags.squared, "squared", false, "Sum squared instead of absolute differences")
	cmd.Flags().BoolVar(&flags.normalized, "normalized", false, "Diff the normalized pinned AUC instead of the balanced-subset AUC")
	cmd.Flags().Float64Var(&flags.failAbove, "fail-above", 0, "Exit with status 1 when a difference exceeds this value")
	cmd.Flags().StringVar(&flags.junitPath, "junit", "", "Also write a JUnit XML report of the --fail-above check to this path")
	return cmd
}

func runDiff(cmd *cobra.Command, s *session, flags *diffFlags, useEER, withRates bool, limit float64) error {
	opts, err := s.cfg.AnalysisOptions()
	if err != nil {
		return err
	}
	squared := s.cfg.Analysis.SquaredError != nil && *s.cfg.Analysis.SquaredError
	ctx := cmd.Context()

	sweeps := 1
	if withRates {
		sweeps = 3
	}
	stop := trackProgress(cmd, &opts, sweeps*len(s.subgroups))
	defer stop()

	aucDiff, err := analysis.PerSubgroupAUCDiffFromOverall(ctx, s.data, s.subgroups, s.families, squared, flags.normalized, opts)
	if err != nil {
		return err
	}
	tables := []models.DiffTable{aucDiff}

	if withRates {
		thresholds, err := s.thresholds(useEER)
		if err != nil {
			return err
		}
		fnr, err := analysis.PerSubgroupFNRDiffFromOverall(ctx, s.data, s.subgroups, s.families, thresholds, squared, opts)
		if err != nil {
			return err
		}
		tnr, err := analysis.PerSubgroupTNRDiffFromOverall(ctx, s.data, s.subgroups, s.families, thresholds, squared, opts)
		if err != nil {
			return err
		}
		tables = append(tables, fnr, tnr)
	} else {
		slog.Info("no threshold configured, skipping negative rate differences")
	}
	stop()

	err = reporting.Render(cmd.OutOrStdout(), s.format, reporting.Report{
		Data:   tables,
		Tables: []reporting.Table{reporting.DiffTables(tables...)},
		Notes:  reporting.FormatDiffSummary(tables, s.families, len(s.subgroups), squared),
	})
	if err != nil {
		return err
	}

	if flags.junitPath != "" {
		if err := reporting.WriteJUnitXML(tables, limit, flags.junitPath); err != nil {
			return fmt.Errorf("writing JUnit report: %w", err)
		}
	}

	var over []string
	for _, t := range tables {
		for _, d := range t.Diffs {
			if reporting.ExceedsLimit(d, limit) {
				over = append(over, fmt.Sprintf("%s %s=%s", d.Family, t.Name, d.Value))
			}
		}
	}
	if len(over) > 0 {
		return &BiasThresholdError{
			Message: fmt.Sprintf("equality difference above %g: %s", limit, strings.Join(over, ", ")),
		}
	}
	return nil
}
