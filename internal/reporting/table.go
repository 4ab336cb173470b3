// Package reporting flattens bias metric results into tables and renders
// them as text, JSON, CSV, Markdown, HTML or JUnit XML.
package reporting

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spboyer/fairscore/internal/models"
)

// Table is a flattened, format-independent report table.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// summarySource is a family block that exposes summaries by kind.
type summarySource interface {
	Summary(kind models.MetricKind) (models.Summary, bool)
}

// AUCTable flattens per-subgroup AUC records into one row per subgroup.
// Each family contributes <family>_mean, _median and _std of its plain AUC,
// then one <family>_<metric> column per per-instance list.
func AUCTable(records []models.SubgroupAUCRecord) Table {
	t := Table{Title: "Per-subgroup AUCs", Columns: []string{"subgroup", "subset_size"}}
	if len(records) == 0 {
		return t
	}

	type familyCols struct {
		name  string
		kinds []models.MetricKind
	}
	var layout []familyCols
	for _, f := range records[0].Families {
		fc := familyCols{name: f.Family}
		for _, k := range models.AUCMetricKinds {
			if _, ok := f.Summary(k); ok {
				fc.kinds = append(fc.kinds, k)
			}
		}
		layout = append(layout, fc)
		t.Columns = append(t.Columns, f.Family+"_mean", f.Family+"_median", f.Family+"_std")
		for _, k := range fc.kinds {
			t.Columns = append(t.Columns, f.Family+"_"+string(k))
		}
	}

	for _, r := range records {
		row := []string{r.Subgroup, strconv.Itoa(r.SubsetSize)}
		for _, fc := range layout {
			f, ok := r.Family(fc.name)
			if !ok {
				row = append(row, make([]string, 3+len(fc.kinds))...)
				continue
			}
			row = append(row, f.AUC.Mean.String(), f.AUC.Median.String(), f.AUC.Std.String())
			row = append(row, listCells(f, fc.kinds)...)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// RateTable flattens per-subgroup negative rates. Each family contributes
// mean, median, std and values columns for TNR and then FNR.
func RateTable(records []models.SubgroupRateRecord) Table {
	t := Table{Title: "Per-subgroup negative rates", Columns: []string{"subgroup", "subset_size"}}
	if len(records) == 0 {
		return t
	}

	var families []string
	for _, f := range records[0].Families {
		families = append(families, f.Family)
		for _, prefix := range []string{"_tnr", "_fnr"} {
			base := f.Family + prefix
			t.Columns = append(t.Columns, base+"_mean", base+"_median", base+"_std", base+"_values")
		}
	}

	for _, r := range records {
		row := []string{r.Subgroup, strconv.Itoa(r.SubsetSize)}
		for _, name := range families {
			f, ok := r.Family(name)
			if !ok {
				row = append(row, make([]string, 8)...)
				continue
			}
			row = append(row, summaryCells(f.TNR)...)
			row = append(row, summaryCells(f.FNR)...)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DiffTables joins diff tables on model family: one row per family, one
// column per table.
func DiffTables(tables ...models.DiffTable) Table {
	t := Table{Title: "Equality differences", Columns: []string{"model_family"}}
	if len(tables) == 0 {
		return t
	}
	for _, dt := range tables {
		t.Columns = append(t.Columns, dt.Name)
	}
	for _, d := range tables[0].Diffs {
		row := []string{d.Family}
		for _, dt := range tables {
			row = append(row, lookupDiff(dt, d.Family))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func lookupDiff(dt models.DiffTable, family string) string {
	for _, d := range dt.Diffs {
		if d.Family == family {
			return d.Value.String()
		}
	}
	return ""
}

// EERTable lists each instance's equal-error-rate threshold and the
// confusion counts at it, sorted by instance name.
func EERTable(results map[string]models.EERResult) Table {
	t := Table{
		Title:   "Equal error rate thresholds",
		Columns: []string{"instance", "threshold", "tp", "tn", "fp", "fn"},
	}
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := results[name]
		c := r.Confusion
		t.Rows = append(t.Rows, []string{
			name,
			strconv.FormatFloat(r.Threshold, 'f', 2, 64),
			strconv.Itoa(c.TP), strconv.Itoa(c.TN), strconv.Itoa(c.FP), strconv.Itoa(c.FN),
		})
	}
	return t
}

func summaryCells(s models.Summary) []string {
	return []string{s.Mean.String(), s.Median.String(), s.Std.String(), formatValues(s.Values)}
}

func listCells(src summarySource, kinds []models.MetricKind) []string {
	cells := make([]string, len(kinds))
	for i, k := range kinds {
		if s, ok := src.Summary(k); ok {
			cells[i] = formatValues(s.Values)
		}
	}
	return cells
}

// formatValues renders per-instance values as "[0.7200, n/a]".
func formatValues(ms []models.Metric) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
