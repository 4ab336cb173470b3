package metrics

import (
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/statistics"
)

// ROCAUC is the area under the ROC curve of one score column: the
// probability a positive row outscores a negative one, ties counting half.
// Undefined when either label is absent.
func ROCAUC(s Sample) models.Metric {
	negatives, positives := s.ByLabel()
	return statistics.NormalizedMWU(negatives, positives).Map(oneMinus)
}

// WithinNegativeLabelMWU compares negative-label scores of the background
// against the subgroup: 0.5 - U(background negatives, subgroup negatives).
// Positive values mean subgroup negatives score higher.
func WithinNegativeLabelMWU(s SubgroupSample) models.Metric {
	return statistics.NormalizedMWU(s.scores(false, false), s.scores(true, false)).Map(halfMinus)
}

// WithinPositiveLabelMWU is 0.5 - U(background positives, subgroup positives).
func WithinPositiveLabelMWU(s SubgroupSample) models.Metric {
	return statistics.NormalizedMWU(s.scores(false, true), s.scores(true, true)).Map(halfMinus)
}

// WithinSubgroupMWU is the AUC restricted to the subgroup:
// 1 - U(subgroup negatives, subgroup positives).
func WithinSubgroupMWU(s SubgroupSample) models.Metric {
	return statistics.NormalizedMWU(s.scores(true, false), s.scores(true, true)).Map(oneMinus)
}

// CrossSubgroupNegativeMWU is 1 - U(subgroup negatives, background positives).
func CrossSubgroupNegativeMWU(s SubgroupSample) models.Metric {
	return statistics.NormalizedMWU(s.scores(true, false), s.scores(false, true)).Map(oneMinus)
}

// CrossSubgroupPositiveMWU is 1 - U(background negatives, subgroup positives).
func CrossSubgroupPositiveMWU(s SubgroupSample) models.Metric {
	return statistics.NormalizedMWU(s.scores(false, false), s.scores(true, true)).Map(oneMinus)
}

// NormalizedPinnedAUC averages the within-subgroup and both cross-subgroup
// statistics. Undefined if any of the three is.
func NormalizedPinnedAUC(s SubgroupSample) models.Metric {
	parts := []models.Metric{
		WithinSubgroupMWU(s),
		CrossSubgroupNegativeMWU(s),
		CrossSubgroupPositiveMWU(s),
	}
	return statistics.Mean(parts, models.MissingPropagate)
}

// SubgroupMWUs holds every rank statistic of one instance on one subgroup.
type SubgroupMWUs struct {
	WithinNegativeLabel   models.Metric
	WithinPositiveLabel   models.Metric
	WithinSubgroup        models.Metric
	CrossSubgroupNegative models.Metric
	CrossSubgroupPositive models.Metric
	NormalizedPinnedAUC   models.Metric
}

// ComputeSubgroupMWUs evaluates all five variants and the pinned AUC,
// sharing the partition work between them.
func ComputeSubgroupMWUs(s SubgroupSample) SubgroupMWUs {
	subNeg, subPos := s.scores(true, false), s.scores(true, true)
	bgNeg, bgPos := s.scores(false, false), s.scores(false, true)

	m := SubgroupMWUs{
		WithinNegativeLabel:   statistics.NormalizedMWU(bgNeg, subNeg).Map(halfMinus),
		WithinPositiveLabel:   statistics.NormalizedMWU(bgPos, subPos).Map(halfMinus),
		WithinSubgroup:        statistics.NormalizedMWU(subNeg, subPos).Map(oneMinus),
		CrossSubgroupNegative: statistics.NormalizedMWU(subNeg, bgPos).Map(oneMinus),
		CrossSubgroupPositive: statistics.NormalizedMWU(bgNeg, subPos).Map(oneMinus),
	}
	m.NormalizedPinnedAUC = statistics.Mean([]models.Metric{
		m.WithinSubgroup, m.CrossSubgroupNegative, m.CrossSubgroupPositive,
	}, models.MissingPropagate)
	return m
}

func oneMinus(u float64) float64  { return 1 - u }
func halfMinus(u float64) float64 { return 0.5 - u }
