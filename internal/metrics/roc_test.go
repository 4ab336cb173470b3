package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROCThresholds(t *testing.T) {
	th := ROCThresholds(DefaultROCThresholds)
	require.Len(t, th, 1000)
	assert.Equal(t, 1.0, th[0])
	assert.Equal(t, 0.0, th[999])
}

func TestROCCurve(t *testing.T) {
	s := sample(t, []float64{0.1, 0.35, 0.4, 0.8}, []bool{false, true, false, true})
	fpr, tpr, ok := ROCCurve(s, []float64{1.0, 0.5, 0.38, 0.0})
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 0.5, 1}, fpr)
	assert.Equal(t, []float64{0, 0.5, 0.5, 1}, tpr)
}

func TestROCCurve_NonDecreasing(t *testing.T) {
	s := sample(t,
		[]float64{0.05, 0.2, 0.33, 0.5, 0.61, 0.74, 0.9, 0.99},
		[]bool{false, true, false, true, false, true, false, true},
	)
	fpr, tpr, ok := ROCCurve(s, ROCThresholds(100))
	require.True(t, ok)
	for i := 1; i < len(fpr); i++ {
		assert.GreaterOrEqual(t, fpr[i], fpr[i-1])
		assert.GreaterOrEqual(t, tpr[i], tpr[i-1])
	}
}

func TestROCCurve_SingleClassIsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		labels []bool
	}{
		{"only positives", []bool{true, true, true}},
		{"only negatives", []bool{false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fpr, tpr, ok := ROCCurve(sample(t, []float64{0.1, 0.5, 0.9}, tt.labels), ROCThresholds(10))
			assert.False(t, ok)
			assert.Nil(t, fpr)
			assert.Nil(t, tpr)
		})
	}
}

func TestROCCurve_EmptySample(t *testing.T) {
	_, _, ok := ROCCurve(Sample{}, ROCThresholds(10))
	assert.False(t, ok)
}
