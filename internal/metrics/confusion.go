package metrics

import "github.com/spboyer/fairscore/internal/models"

// ConfusionMatrix counts outcomes at threshold. A row is predicted positive
// when its score is at or above the threshold.
func ConfusionMatrix(s Sample, threshold float64) models.ConfusionCounts {
	var c models.ConfusionCounts
	for i, score := range s.Scores {
		predicted := score >= threshold
		switch {
		case predicted && s.Labels[i]:
			c.TP++
		case predicted && !s.Labels[i]:
			c.FP++
		case !predicted && !s.Labels[i]:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

// ConfusionRates derives TPR, TNR, FPR, FNR, precision and recall at
// threshold. Rates with a zero denominator are undefined.
func ConfusionRates(s Sample, threshold float64) models.ConfusionRates {
	return ConfusionMatrix(s, threshold).Rates()
}
