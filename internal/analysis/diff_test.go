package analysis

import (
	"context"
	"testing"

	"github.com/spboyer/fairscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateRow(subgroup string, fnr ...models.Metric) models.SubgroupRateRecord {
	return models.SubgroupRateRecord{
		Subgroup: subgroup,
		Families: []models.FamilyRateMetrics{{Family: "m", FNR: models.Summary{Values: fnr}}},
	}
}

func TestDiffFromOverall(t *testing.T) {
	families := []models.ModelFamily{{Name: "m", Instances: []string{"m_1", "m_2"}}}
	overall := map[string][]models.Metric{"m": {models.Defined(0.8), models.Defined(0.6)}}
	rows := []models.SubgroupRateRecord{
		rateRow("a", models.Defined(0.7), models.Defined(0.6)),
		rateRow("b", models.Defined(1.0), models.Defined(0.4)),
	}

	tests := []struct {
		name    string
		squared bool
		want    float64
	}{
		{"absolute", false, 0.1 + 0 + 0.2 + 0.2},
		{"squared", true, 0.01 + 0 + 0.04 + 0.04},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs, err := DiffFromOverall(overall, rows, families, models.MetricFNR, DiffOptions{SquaredError: tt.squared})
			require.NoError(t, err)
			require.Len(t, diffs, 1)
			assert.Equal(t, "m", diffs[0].Family)
			require.True(t, diffs[0].Value.Valid)
			assert.InDelta(t, tt.want, diffs[0].Value.Value, tol)
		})
	}
}

func TestDiffFromOverall_IdenticalIsZero(t *testing.T) {
	families := []models.ModelFamily{{Name: "m", Instances: []string{"m_1"}}}
	overall := map[string][]models.Metric{"m": {models.Defined(0.8)}}
	rows := []models.SubgroupRateRecord{rateRow("a", models.Defined(0.8))}

	diffs, err := DiffFromOverall(overall, rows, families, models.MetricFNR, DiffOptions{SquaredError: true})
	require.NoError(t, err)
	assert.Equal(t, models.Defined(0), diffs[0].Value)
}

func TestDiffFromOverall_MissingPolicy(t *testing.T) {
	families := []models.ModelFamily{{Name: "m", Instances: []string{"m_1", "m_2"}}}
	overall := map[string][]models.Metric{"m": {models.Defined(0.5), models.Defined(0.5)}}
	rows := []models.SubgroupRateRecord{rateRow("a", models.Undefined, models.Defined(0.25))}

	diffs, err := DiffFromOverall(overall, rows, families, models.MetricFNR, DiffOptions{Missing: models.MissingPropagate})
	require.NoError(t, err)
	assert.False(t, diffs[0].Value.Valid)

	diffs, err = DiffFromOverall(overall, rows, families, models.MetricFNR, DiffOptions{Missing: models.MissingSkip})
	require.NoError(t, err)
	require.True(t, diffs[0].Value.Valid)
	assert.InDelta(t, 0.25, diffs[0].Value.Value, tol)
}

func TestDiffFromOverall_Errors(t *testing.T) {
	families := []models.ModelFamily{{Name: "m", Instances: []string{"m_1", "m_2"}}}
	rows := []models.SubgroupRateRecord{rateRow("a", models.Defined(0.5))}

	_, err := DiffFromOverall(map[string][]models.Metric{"m": {models.Defined(0.5), models.Defined(0.5)}},
		rows, families, models.MetricFNR, DiffOptions{})
	assert.ErrorIs(t, err, ErrInstanceMismatch)

	_, err = DiffFromOverall(map[string][]models.Metric{}, rows, families, models.MetricFNR, DiffOptions{})
	assert.ErrorIs(t, err, ErrMissingMetric)

	_, err = DiffFromOverall(map[string][]models.Metric{"m": {models.Defined(0.5)}},
		rows, families, models.MetricAUC, DiffOptions{})
	assert.ErrorIs(t, err, ErrMissingMetric)
}

func TestPerSubgroupAUCDiffFromOverall(t *testing.T) {
	d := fixture(t)

	table, err := PerSubgroupAUCDiffFromOverall(context.Background(), d, []string{"g"}, family(t), false, true, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, PinnedAUCDiffName, table.Name)
	require.Len(t, table.Diffs, 1)
	require.True(t, table.Diffs[0].Value.Valid)
	assert.InDelta(t, 0, table.Diffs[0].Value.Value, tol)

	table, err = PerSubgroupAUCDiffFromOverall(context.Background(), d, []string{"g", "h"}, family(t), true, false, DefaultOptions())
	require.NoError(t, err)
	require.True(t, table.Diffs[0].Value.Valid)
	assert.GreaterOrEqual(t, table.Diffs[0].Value.Value, 0.0)
}

func TestPerSubgroupRateDiffFromOverall(t *testing.T) {
	d := fixture(t)
	thresholds := models.UniformThresholds([]string{"m_1", "m_2"}, 0.51)

	fnr, err := PerSubgroupFNRDiffFromOverall(context.Background(), d, []string{"g"}, family(t), thresholds, false, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, FNRDiffName, fnr.Name)
	assert.InDelta(t, 0, fnr.Diffs[0].Value.Value, tol)

	tnr, err := PerSubgroupTNRDiffFromOverall(context.Background(), d, []string{"g"}, family(t), thresholds, false, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TNRDiffName, tnr.Name)
	assert.InDelta(t, 0, tnr.Diffs[0].Value.Value, tol)

	// subgroup h only holds k=0 and k=5 rows
	tnr, err = PerSubgroupTNRDiffFromOverall(context.Background(), d, []string{"h"}, family(t), thresholds, false, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, tnr.Diffs[0].Value.Value, 0.0)

	_, err = PerSubgroupFNRDiffFromOverall(context.Background(), d, []string{"g"}, family(t), models.ThresholdMap{}, false, DefaultOptions())
	assert.ErrorIs(t, err, models.ErrMissingThreshold)
}
