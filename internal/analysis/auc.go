package analysis

import (
	"context"
	"log/slog"

	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/metrics"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/statistics"
)

// ModelFamilyAUC summarizes the plain ROC AUC of each instance in family
// over the whole dataset.
func ModelFamilyAUC(d *dataset.Dataset, family models.ModelFamily, policy models.MissingPolicy) models.Summary {
	aucs := make([]models.Metric, len(family.Instances))
	for i, inst := range family.Instances {
		aucs[i] = instanceAUC(d, inst)
	}
	return statistics.Summarize(aucs, policy)
}

// OverallAUCs returns each family's per-instance plain AUC over the whole
// dataset, keyed by family name.
func OverallAUCs(d *dataset.Dataset, families []models.ModelFamily) map[string][]models.Metric {
	out := make(map[string][]models.Metric, len(families))
	for _, f := range families {
		out[f.Name] = ModelFamilyAUC(d, f, models.MissingPropagate).Values
	}
	return out
}

func instanceAUC(d *dataset.Dataset, instance string) models.Metric {
	scores, ok := d.Scores(instance)
	if !ok {
		slog.Debug("score column unavailable", "instance", instance)
		return models.Undefined
	}
	return metrics.ROCAUC(metrics.Sample{Scores: scores, Labels: d.Labels()})
}

// PerSubgroupAUCs computes one record per subgroup, in input order. Plain
// AUC is measured on a balanced subset of the subgroup and an equal-size
// background sample; the rank statistics and squared equality gaps use the
// whole dataset.
func PerSubgroupAUCs(ctx context.Context, d *dataset.Dataset, subgroups []string, families []models.ModelFamily, opts Options) ([]models.SubgroupAUCRecord, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkInputs(d, subgroups, families); err != nil {
		return nil, err
	}

	var thresholds []float64
	if opts.IncludeASEG {
		thresholds = metrics.ROCThresholds(opts.ROCThresholds)
	}

	records := make([]models.SubgroupAUCRecord, len(subgroups))
	err := forEach(ctx, len(subgroups), opts, func(i int) error {
		records[i] = subgroupAUCRecord(d, subgroups[i], families, thresholds, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func subgroupAUCRecord(d *dataset.Dataset, subgroup string, families []models.ModelFamily, thresholds []float64, opts Options) models.SubgroupAUCRecord {
	record := models.SubgroupAUCRecord{Subgroup: subgroup}

	balanced, err := dataset.BalancedSubset(d, subgroup, opts.Seed)
	if err != nil {
		slog.Warn("balanced subset unavailable, plain AUC undefined", "subgroup", subgroup, "error", err)
	} else {
		record.SubsetSize = balanced.Len()
	}
	members, membersOK := d.Subgroup(subgroup)

	for _, family := range families {
		n := len(family.Instances)
		var (
			aucs         = make([]models.Metric, n)
			withinNeg    = make([]models.Metric, n)
			withinPos    = make([]models.Metric, n)
			withinSub    = make([]models.Metric, n)
			crossNeg     = make([]models.Metric, n)
			crossPos     = make([]models.Metric, n)
			pinned       = make([]models.Metric, n)
			positiveASEG = make([]models.Metric, n)
			negativeASEG = make([]models.Metric, n)
		)

		for i, inst := range family.Instances {
			if balanced != nil {
				aucs[i] = instanceAUC(balanced, inst)
			}
			scores, scoresOK := d.Scores(inst)
			if !scoresOK || !membersOK {
				slog.Debug("rank statistics undefined", "subgroup", subgroup, "instance", inst,
					"scores", scoresOK, "subgroup_column", membersOK)
				continue
			}
			s := metrics.SubgroupSample{
				Sample:  metrics.Sample{Scores: scores, Labels: d.Labels()},
				Members: members,
			}
			mwu := metrics.ComputeSubgroupMWUs(s)
			withinNeg[i] = mwu.WithinNegativeLabel
			withinPos[i] = mwu.WithinPositiveLabel
			withinSub[i] = mwu.WithinSubgroup
			crossNeg[i] = mwu.CrossSubgroupNegative
			crossPos[i] = mwu.CrossSubgroupPositive
			pinned[i] = mwu.NormalizedPinnedAUC
			if !pinned[i].Valid {
				slog.Debug("normalized pinned AUC undefined", "subgroup", subgroup, "instance", inst)
			}
			if thresholds != nil {
				positiveASEG[i], negativeASEG[i] = metrics.AverageSquaredEqualityGap(s, thresholds)
			}
		}

		block := models.FamilyAUCMetrics{
			Family:                   family.Name,
			AUC:                      statistics.Summarize(aucs, opts.Missing),
			WithinNegativeLabelMWU:   statistics.Summarize(withinNeg, opts.Missing),
			WithinPositiveLabelMWU:   statistics.Summarize(withinPos, opts.Missing),
			WithinSubgroupMWU:        statistics.Summarize(withinSub, opts.Missing),
			CrossSubgroupNegativeMWU: statistics.Summarize(crossNeg, opts.Missing),
			CrossSubgroupPositiveMWU: statistics.Summarize(crossPos, opts.Missing),
			NormalizedPinnedAUC:      statistics.Summarize(pinned, opts.Missing),
		}
		if thresholds != nil {
			pos := statistics.Summarize(positiveASEG, opts.Missing)
			neg := statistics.Summarize(negativeASEG, opts.Missing)
			block.PositiveASEG = &pos
			block.NegativeASEG = &neg
		}
		record.Families = append(record.Families, block)
	}
	return record
}
