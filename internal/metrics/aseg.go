package metrics

import (
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/statistics"
)

// AverageSquaredEqualityGap compares the subgroup's ROC curve with the
// background's over the same thresholds. The positive gap integrates the
// squared TPR difference over the background TPR, the negative gap the
// squared FPR difference over the background FPR. Both are undefined when
// either side is empty or either curve cannot be built.
func AverageSquaredEqualityGap(s SubgroupSample, thresholds []float64) (positive, negative models.Metric) {
	subgroup, background := s.Split()
	if subgroup.Len() == 0 || background.Len() == 0 {
		return models.Undefined, models.Undefined
	}
	sFPR, sTPR, ok := ROCCurve(subgroup, thresholds)
	if !ok {
		return models.Undefined, models.Undefined
	}
	bFPR, bTPR, ok := ROCCurve(background, thresholds)
	if !ok {
		return models.Undefined, models.Undefined
	}
	return models.Defined(statistics.SquaredDiffIntegral(sTPR, bTPR)),
		models.Defined(statistics.SquaredDiffIntegral(sFPR, bFPR))
}
