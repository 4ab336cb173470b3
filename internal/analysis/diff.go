package analysis

import (
	"context"
	"fmt"

	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/models"
)

// Names of the diff tables produced by the drivers below.
const (
	PinnedAUCDiffName = "pinned_auc_equality_difference"
	FNRDiffName       = "fnr_equality_difference"
	TNRDiffName       = "tnr_equality_difference"
)

// DiffOptions controls DiffFromOverall.
type DiffOptions struct {
	// SquaredError uses (overall - subgroup)² instead of |overall - subgroup|.
	SquaredError bool
	// Missing decides whether an undefined value poisons the family sum
	// (MissingPropagate) or is left out (MissingSkip).
	Missing models.MissingPolicy
}

// DiffFromOverall sums, for each family, the error between every instance's
// overall value and its value on each subgroup row. overall and the row
// lists are paired by position, so both must list instances in the same
// order.
func DiffFromOverall[R models.MetricSource](overall map[string][]models.Metric, rows []R, families []models.ModelFamily, kind models.MetricKind, opts DiffOptions) ([]models.FamilyDiff, error) {
	errorFn := func(o, s float64) float64 {
		d := o - s
		if opts.SquaredError {
			return d * d
		}
		if d < 0 {
			return -d
		}
		return d
	}

	diffs := make([]models.FamilyDiff, 0, len(families))
	for _, family := range families {
		base, ok := overall[family.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no overall values for family %q", ErrMissingMetric, family.Name)
		}

		sum := 0.0
		defined := true
		for _, row := range rows {
			values, ok := row.MetricValues(family.Name, kind)
			if !ok {
				return nil, fmt.Errorf("%w: %s for family %q in subgroup %q", ErrMissingMetric, kind, family.Name, row.SubgroupName())
			}
			if len(values) != len(base) {
				return nil, fmt.Errorf("%w: family %q has %d overall values, subgroup %q has %d",
					ErrInstanceMismatch, family.Name, len(base), row.SubgroupName(), len(values))
			}
			for i, v := range values {
				if !base[i].Valid || !v.Valid {
					if opts.Missing != models.MissingSkip {
						defined = false
					}
					continue
				}
				sum += errorFn(base[i].Value, v.Value)
			}
		}

		value := models.Defined(sum)
		if !defined {
			value = models.Undefined
		}
		diffs = append(diffs, models.FamilyDiff{Family: family.Name, Value: value})
	}
	return diffs, nil
}

// PerSubgroupAUCDiffFromOverall compares each subgroup's AUC against the
// whole-dataset AUC. With normalized set the per-subgroup side uses the
// normalized pinned AUC instead of the balanced-subset AUC.
func PerSubgroupAUCDiffFromOverall(ctx context.Context, d *dataset.Dataset, subgroups []string, families []models.ModelFamily, squaredError, normalized bool, opts Options) (models.DiffTable, error) {
	records, err := PerSubgroupAUCs(ctx, d, subgroups, families, opts)
	if err != nil {
		return models.DiffTable{}, err
	}
	kind := models.MetricAUC
	if normalized {
		kind = models.MetricNormalizedPinnedAUC
	}
	diffs, err := DiffFromOverall(OverallAUCs(d, families), records, families, kind,
		DiffOptions{SquaredError: squaredError, Missing: opts.Missing})
	if err != nil {
		return models.DiffTable{}, err
	}
	return models.DiffTable{Name: PinnedAUCDiffName, Diffs: diffs}, nil
}

// PerSubgroupFNRDiffFromOverall compares each subgroup's false negative
// rate against the whole-dataset rate.
func PerSubgroupFNRDiffFromOverall(ctx context.Context, d *dataset.Dataset, subgroups []string, families []models.ModelFamily, thresholds models.ThresholdMap, squaredError bool, opts Options) (models.DiffTable, error) {
	return negativeRateDiff(ctx, d, subgroups, families, thresholds, models.MetricFNR, FNRDiffName, squaredError, opts)
}

// PerSubgroupTNRDiffFromOverall compares each subgroup's true negative
// rate against the whole-dataset rate.
func PerSubgroupTNRDiffFromOverall(ctx context.Context, d *dataset.Dataset, subgroups []string, families []models.ModelFamily, thresholds models.ThresholdMap, squaredError bool, opts Options) (models.DiffTable, error) {
	return negativeRateDiff(ctx, d, subgroups, families, thresholds, models.MetricTNR, TNRDiffName, squaredError, opts)
}

func negativeRateDiff(ctx context.Context, d *dataset.Dataset, subgroups []string, families []models.ModelFamily, thresholds models.ThresholdMap, kind models.MetricKind, name string, squaredError bool, opts Options) (models.DiffTable, error) {
	perSubgroup, err := PerSubgroupNegativeRates(ctx, d, subgroups, families, thresholds, opts)
	if err != nil {
		return models.DiffTable{}, err
	}
	all, err := OverallNegativeRates(d, families, thresholds, opts)
	if err != nil {
		return models.DiffTable{}, err
	}

	overall := make(map[string][]models.Metric, len(families))
	for _, family := range families {
		values, _ := all.MetricValues(family.Name, kind)
		overall[family.Name] = values
	}
	diffs, err := DiffFromOverall(overall, perSubgroup, families, kind,
		DiffOptions{SquaredError: squaredError, Missing: opts.Missing})
	if err != nil {
		return models.DiffTable{}, err
	}
	return models.DiffTable{Name: name, Diffs: diffs}, nil
}
