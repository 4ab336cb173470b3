package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/metrics"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/statistics"
)

// PerSubgroupNegativeRates computes, for each subgroup's rows, the true and
// false negative rates of every instance at its threshold.
func PerSubgroupNegativeRates(ctx context.Context, d *dataset.Dataset, subgroups []string, families []models.ModelFamily, thresholds models.ThresholdMap, opts Options) ([]models.SubgroupRateRecord, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkInputs(d, subgroups, families); err != nil {
		return nil, err
	}
	if err := checkThresholds(d, families, thresholds); err != nil {
		return nil, err
	}

	records := make([]models.SubgroupRateRecord, len(subgroups))
	err := forEach(ctx, len(subgroups), opts, func(i int) error {
		name := subgroups[i]
		members, ok := d.Subgroup(name)
		if !ok {
			records[i] = undefinedRateRecord(name, families)
			return nil
		}
		records[i] = rateRecord(name, d.Filter(members), families, thresholds, opts.Missing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// OverallNegativeRates computes the negative rates over the whole dataset.
func OverallNegativeRates(d *dataset.Dataset, families []models.ModelFamily, thresholds models.ThresholdMap, opts Options) (models.SubgroupRateRecord, error) {
	if err := models.ValidateFamilies(families); err != nil {
		return models.SubgroupRateRecord{}, err
	}
	if err := checkThresholds(d, families, thresholds); err != nil {
		return models.SubgroupRateRecord{}, err
	}
	return rateRecord(models.OverallSubgroup, d, families, thresholds, opts.Missing), nil
}

// checkThresholds requires a threshold for every instance with a usable
// score column. Unusable instances produce Undefined rates regardless.
func checkThresholds(d *dataset.Dataset, families []models.ModelFamily, thresholds models.ThresholdMap) error {
	for _, inst := range models.AllInstances(families) {
		if _, ok := d.Scores(inst); !ok {
			continue
		}
		if _, err := thresholds.Lookup(inst); err != nil {
			return err
		}
	}
	return nil
}

func rateRecord(name string, subset *dataset.Dataset, families []models.ModelFamily, thresholds models.ThresholdMap, policy models.MissingPolicy) models.SubgroupRateRecord {
	record := models.SubgroupRateRecord{Subgroup: name, SubsetSize: subset.Len()}
	for _, family := range families {
		tnrs := make([]models.Metric, len(family.Instances))
		fnrs := make([]models.Metric, len(family.Instances))
		for i, inst := range family.Instances {
			scores, ok := subset.Scores(inst)
			if !ok {
				slog.Debug("score column unavailable", "subgroup", name, "instance", inst)
				continue
			}
			threshold, ok := thresholds[inst]
			if !ok {
				continue
			}
			rates := metrics.ConfusionRates(metrics.Sample{Scores: scores, Labels: subset.Labels()}, threshold)
			tnrs[i], fnrs[i] = rates.TNR, rates.FNR
		}
		record.Families = append(record.Families, models.FamilyRateMetrics{
			Family: family.Name,
			TNR:    statistics.Summarize(tnrs, policy),
			FNR:    statistics.Summarize(fnrs, policy),
		})
	}
	return record
}

func undefinedRateRecord(name string, families []models.ModelFamily) models.SubgroupRateRecord {
	record := models.SubgroupRateRecord{Subgroup: name}
	for _, family := range families {
		undefined := make([]models.Metric, len(family.Instances))
		record.Families = append(record.Families, models.FamilyRateMetrics{
			Family: family.Name,
			TNR:    models.Summary{Values: undefined},
			FNR:    models.Summary{Values: undefined},
		})
	}
	return record
}

// PerModelEER runs the equal-error-rate search for each instance. An
// instance whose score column has missing values has no EER and is left out
// of the result; an absent column is an error.
func PerModelEER(d *dataset.Dataset, instances []string, numThresholds int, mode metrics.EERMode) (map[string]models.EERResult, error) {
	out := make(map[string]models.EERResult, len(instances))
	for _, inst := range instances {
		if !d.HasScores(inst) {
			return nil, fmt.Errorf("eer: no score column %q", inst)
		}
		scores, ok := d.Scores(inst)
		if !ok {
			slog.Debug("score column incomplete, skipping EER", "instance", inst)
			continue
		}
		res, err := metrics.EqualErrorRate(metrics.Sample{Scores: scores, Labels: d.Labels()}, numThresholds, mode)
		if err != nil {
			return nil, fmt.Errorf("eer for %q: %w", inst, err)
		}
		out[inst] = res
	}
	return out, nil
}

// EERThresholds turns EER results into a threshold map.
func EERThresholds(results map[string]models.EERResult) models.ThresholdMap {
	m := make(models.ThresholdMap, len(results))
	for inst, res := range results {
		m[inst] = res.Threshold
	}
	return m
}
