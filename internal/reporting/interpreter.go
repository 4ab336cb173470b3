package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/spboyer/fairscore/internal/models"
)

// InterpretAUC returns a plain-language label for an AUC.
func InterpretAUC(m models.Metric) string {
	v, ok := m.Get()
	if !ok {
		return "Undefined (only one label present)"
	}
	switch {
	case v >= 0.9:
		return "Excellent (>=0.90)"
	case v >= 0.8:
		return "Good (0.80-0.90)"
	case v >= 0.7:
		return "Fair (0.70-0.80)"
	default:
		return "Poor (<0.70)"
	}
}

// AverageGap converts a summed diff back into the typical per-subgroup,
// per-instance gap. pairs is subgroups × instances; squared undoes the
// squaring so the result is on the metric's own scale.
func AverageGap(d models.FamilyDiff, pairs int, squared bool) models.Metric {
	if pairs <= 0 {
		return models.Undefined
	}
	return d.Value.Map(func(v float64) float64 {
		avg := v / float64(pairs)
		if squared {
			return math.Sqrt(avg)
		}
		return avg
	})
}

// InterpretGap labels an average gap.
func InterpretGap(gap models.Metric) string {
	v, ok := gap.Get()
	if !ok {
		return "Undefined (some subgroup or instance had no value)"
	}
	switch {
	case v < 0.01:
		return fmt.Sprintf("Negligible bias (avg gap %.3f)", v)
	case v < 0.05:
		return fmt.Sprintf("Small bias (avg gap %.3f)", v)
	case v < 0.1:
		return fmt.Sprintf("Moderate bias (avg gap %.3f)", v)
	default:
		return fmt.Sprintf("Large bias (avg gap %.3f)", v)
	}
}

// FormatDiffSummary produces a plain-language reading of diff tables.
func FormatDiffSummary(tables []models.DiffTable, families []models.ModelFamily, subgroups int, squared bool) string {
	instances := make(map[string]int, len(families))
	for _, f := range families {
		instances[f.Name] = len(f.Instances)
	}

	var b strings.Builder
	b.WriteString("=== Interpretation ===\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "\n%s:\n", t.Name)
		for _, d := range t.Diffs {
			gap := AverageGap(d, subgroups*instances[d.Family], squared)
			fmt.Fprintf(&b, "  %s: %s — %s\n", d.Family, d.Value, InterpretGap(gap))
		}
	}
	return b.String()
}

// FormatAUCSummary lists each family's whole-dataset AUC with a label.
func FormatAUCSummary(overall map[string]models.Summary, families []models.ModelFamily) string {
	var b strings.Builder
	b.WriteString("=== Overall AUC ===\n\n")
	for _, f := range families {
		s, ok := overall[f.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s — %s\n", f.Name, s.Mean, InterpretAUC(s.Mean))
	}
	return b.String()
}
