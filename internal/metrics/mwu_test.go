package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/spboyer/fairscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subgroupSample(t *testing.T, scores []float64, labels, members []bool) SubgroupSample {
	t.Helper()
	s, err := NewSubgroupSample(scores, labels, members)
	require.NoError(t, err)
	return s
}

// fixture: subgroup rows score higher than background rows with the same label.
func biasedSample(t *testing.T) SubgroupSample {
	return subgroupSample(t,
		[]float64{
			0.1, 0.2, 0.6, 0.7, // background negatives, positives
			0.4, 0.5, 0.8, 0.9, // subgroup negatives, positives
		},
		[]bool{false, false, true, true, false, false, true, true},
		[]bool{false, false, false, false, true, true, true, true},
	)
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		labels []bool
		want   float64
	}{
		{"perfect", []float64{0.1, 0.2, 0.8, 0.9}, []bool{false, false, true, true}, 1},
		{"inverted", []float64{0.9, 0.8, 0.2, 0.1}, []bool{false, false, true, true}, 0},
		{"all tied", []float64{0.5, 0.5, 0.5, 0.5}, []bool{false, true, false, true}, 0.5},
		{"one swap", []float64{0.1, 0.6, 0.5, 0.9}, []bool{false, false, true, true}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ROCAUC(sample(t, tt.scores, tt.labels))
			require.True(t, got.Valid)
			assert.InDelta(t, tt.want, got.Value, tol)
		})
	}
}

func TestROCAUC_SingleClass(t *testing.T) {
	assert.False(t, ROCAUC(sample(t, []float64{0.1, 0.9}, []bool{true, true})).Valid)
}

func TestSubgroupMWUVariants(t *testing.T) {
	s := biasedSample(t)

	// subgroup negatives (0.4, 0.5) all above background negatives (0.1, 0.2)
	assert.InDelta(t, 0.5, WithinNegativeLabelMWU(s).Value, tol)
	// subgroup positives (0.8, 0.9) all above background positives (0.6, 0.7)
	assert.InDelta(t, 0.5, WithinPositiveLabelMWU(s).Value, tol)
	// within the subgroup positives always beat negatives
	assert.InDelta(t, 1.0, WithinSubgroupMWU(s).Value, tol)
	// subgroup negatives (0.4, 0.5) vs background positives (0.6, 0.7)
	assert.InDelta(t, 1.0, CrossSubgroupNegativeMWU(s).Value, tol)
	// background negatives (0.1, 0.2) vs subgroup positives (0.8, 0.9)
	assert.InDelta(t, 1.0, CrossSubgroupPositiveMWU(s).Value, tol)
	assert.InDelta(t, 1.0, NormalizedPinnedAUC(s).Value, tol)
}

func TestSubgroupMWUVariants_CrossOverlap(t *testing.T) {
	// subgroup negatives now overlap background positives
	s := subgroupSample(t,
		[]float64{0.1, 0.2, 0.6, 0.7, 0.65, 0.75, 0.8, 0.9},
		[]bool{false, false, true, true, false, false, true, true},
		[]bool{false, false, false, false, true, true, true, true},
	)
	// pairs (neg, pos): (0.65,0.6)>, (0.65,0.7)<, (0.75,0.6)>, (0.75,0.7)> → U = 3/4
	assert.InDelta(t, 0.25, CrossSubgroupNegativeMWU(s).Value, tol)
	assert.InDelta(t, (1.0+0.25+1.0)/3, NormalizedPinnedAUC(s).Value, tol)
}

func TestComputeSubgroupMWUs_MatchesIndividualVariants(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 80
	scores := make([]float64, n)
	labels := make([]bool, n)
	members := make([]bool, n)
	for i := 0; i < n; i++ {
		scores[i] = rng.Float64()
		labels[i] = rng.Intn(2) == 0
		members[i] = rng.Intn(4) == 0
	}
	s := subgroupSample(t, scores, labels, members)
	all := ComputeSubgroupMWUs(s)
	assert.Equal(t, WithinNegativeLabelMWU(s), all.WithinNegativeLabel)
	assert.Equal(t, WithinPositiveLabelMWU(s), all.WithinPositiveLabel)
	assert.Equal(t, WithinSubgroupMWU(s), all.WithinSubgroup)
	assert.Equal(t, CrossSubgroupNegativeMWU(s), all.CrossSubgroupNegative)
	assert.Equal(t, CrossSubgroupPositiveMWU(s), all.CrossSubgroupPositive)
	assert.Equal(t, NormalizedPinnedAUC(s), all.NormalizedPinnedAUC)
}

func TestSubgroupMWUVariants_MonotoneTransformInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := 60
	scores := make([]float64, n)
	transformed := make([]float64, n)
	labels := make([]bool, n)
	members := make([]bool, n)
	for i := 0; i < n; i++ {
		scores[i] = rng.Float64()
		transformed[i] = math.Exp(3*scores[i]) - 7
		labels[i] = rng.Intn(2) == 0
		members[i] = i%3 == 0
	}
	before := ComputeSubgroupMWUs(subgroupSample(t, scores, labels, members))
	after := ComputeSubgroupMWUs(subgroupSample(t, transformed, labels, members))
	assert.InDelta(t, before.WithinSubgroup.Value, after.WithinSubgroup.Value, tol)
	assert.InDelta(t, before.CrossSubgroupNegative.Value, after.CrossSubgroupNegative.Value, tol)
	assert.InDelta(t, before.CrossSubgroupPositive.Value, after.CrossSubgroupPositive.Value, tol)
	assert.InDelta(t, before.NormalizedPinnedAUC.Value, after.NormalizedPinnedAUC.Value, tol)
}

func TestSubgroupMWUVariants_EmptyPartitions(t *testing.T) {
	// subgroup has no positive rows
	s := subgroupSample(t,
		[]float64{0.1, 0.9, 0.3, 0.4},
		[]bool{false, true, false, false},
		[]bool{false, false, true, true},
	)
	all := ComputeSubgroupMWUs(s)
	assert.True(t, all.WithinNegativeLabel.Valid)
	assert.False(t, all.WithinPositiveLabel.Valid)
	assert.False(t, all.WithinSubgroup.Valid)
	assert.True(t, all.CrossSubgroupNegative.Valid)
	assert.False(t, all.CrossSubgroupPositive.Valid)
	assert.Equal(t, models.Undefined, all.NormalizedPinnedAUC)
}

func TestNormalizedPinnedAUC_UnbiasedNearHalf(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	n := 4000
	scores := make([]float64, n)
	labels := make([]bool, n)
	members := make([]bool, n)
	for i := 0; i < n; i++ {
		scores[i] = rng.Float64()
		labels[i] = rng.Intn(2) == 0
		members[i] = rng.Intn(5) == 0
	}
	got := NormalizedPinnedAUC(subgroupSample(t, scores, labels, members))
	require.True(t, got.Valid)
	assert.InDelta(t, 0.5, got.Value, 0.05)
}
