package metrics

import (
	"fmt"

	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/statistics"
)

// DefaultEERThresholds is the number of thresholds scanned by EqualErrorRate.
const DefaultEERThresholds = 101

// EERMode selects how EqualErrorRate scans thresholds.
type EERMode string

const (
	// EERFullScan scans every threshold.
	EERFullScan EERMode = "full"
	// EERStopEarly stops at the first threshold whose |FN - FP| exceeds the
	// running minimum. Only correct when that difference is unimodal in the
	// threshold.
	EERStopEarly EERMode = "early-stop"
)

// ParseEERMode converts a config string to an EERMode. Empty selects EERFullScan.
func ParseEERMode(s string) (EERMode, error) {
	switch EERMode(s) {
	case "", EERFullScan:
		return EERFullScan, nil
	case EERStopEarly:
		return EERStopEarly, nil
	default:
		return "", fmt.Errorf("unknown eer mode %q: must be %s or %s", s, EERFullScan, EERStopEarly)
	}
}

// EqualErrorRate finds the threshold, among n evenly spaced values in [0, 1],
// where the false negative and false positive counts are closest. Ties go to
// the later (higher) threshold.
func EqualErrorRate(s Sample, n int, mode EERMode) (models.EERResult, error) {
	if n < 2 {
		return models.EERResult{}, fmt.Errorf("eer: need at least 2 thresholds, got %d", n)
	}

	var best models.EERResult
	minDiff := -1
	for _, t := range statistics.Linspace(0, 1, n) {
		c := ConfusionMatrix(s, t)
		diff := c.FN - c.FP
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff <= minDiff {
			minDiff = diff
			best = models.EERResult{Threshold: t, Confusion: c}
			continue
		}
		if mode == EERStopEarly {
			break
		}
	}
	return best, nil
}
