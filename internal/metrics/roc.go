package metrics

import "github.com/spboyer/fairscore/internal/statistics"

// DefaultROCThresholds is the number of thresholds swept to build a ROC curve.
const DefaultROCThresholds = 1000

// ROCThresholds returns n thresholds evenly spaced from 1.0 down to 0.0.
func ROCThresholds(n int) []float64 {
	return statistics.Linspace(1, 0, n)
}

// ROCCurve returns the false and true positive rates at each threshold, in
// threshold order. ok is false, and no partial curve is returned, when any
// threshold has no actual positives or no actual negatives.
func ROCCurve(s Sample, thresholds []float64) (fpr, tpr []float64, ok bool) {
	fpr = make([]float64, 0, len(thresholds))
	tpr = make([]float64, 0, len(thresholds))
	for _, t := range thresholds {
		c := ConfusionMatrix(s, t)
		if c.Degenerate() {
			return nil, nil, false
		}
		tpr = append(tpr, float64(c.TP)/float64(c.ActualPositives()))
		fpr = append(fpr, float64(c.FP)/float64(c.ActualNegatives()))
	}
	return fpr, tpr, true
}
