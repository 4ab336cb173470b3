package main

import (
	"github.com/spboyer/fairscore/internal/analysis"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/projectconfig"
	"github.com/spboyer/fairscore/internal/reporting"
	"github.com/spf13/cobra"
)

// aucReport is the JSON shape of the auc command.
type aucReport struct {
	Overall   map[string]models.Summary  `json:"overall"`
	Subgroups []models.SubgroupAUCRecord `json:"subgroups"`
}

func newAUCCommand(root *rootOptions) *cobra.Command {
	var df dataFlags
	var af analysisFlags

	cmd := &cobra.Command{
		Use:   "auc",
		Short: "Per-subgroup pinned AUCs and rank statistics",
		Long: `Compute, for every subgroup and model family, the AUC on a balanced
subset (the subgroup plus an equal-size background sample), the five
Mann-Whitney rank statistics, the normalized pinned AUC and, with
--include-aseg, the positive and negative average squared equality gaps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, format, err := root.configure(cmd,
				func(cfg *projectconfig.ProjectConfig) error { return df.apply(cmd, cfg) },
				func(cfg *projectconfig.ProjectConfig) error { af.apply(cmd, cfg); return nil },
			)
			if err != nil {
				return err
			}
			s, err := openSession(cfg, format, true)
			if err != nil {
				return err
			}
			return runAUC(cmd, s)
		},
	}

	df.register(cmd)
	af.register(cmd)
	return cmd
}

func runAUC(cmd *cobra.Command, s *session) error {
	opts, err := s.cfg.AnalysisOptions()
	if err != nil {
		return err
	}
	stop := trackProgress(cmd, &opts, len(s.subgroups))
	records, err := analysis.PerSubgroupAUCs(cmd.Context(), s.data, s.subgroups, s.families, opts)
	stop()
	if err != nil {
		return err
	}

	overall := make(map[string]models.Summary, len(s.families))
	for _, f := range s.families {
		overall[f.Name] = analysis.ModelFamilyAUC(s.data, f, opts.Missing)
	}

	return reporting.Render(cmd.OutOrStdout(), s.format, reporting.Report{
		Data:   aucReport{Overall: overall, Subgroups: records},
		Tables: []reporting.Table{reporting.AUCTable(records)},
		Notes:  reporting.FormatAUCSummary(overall, s.families),
	})
}
