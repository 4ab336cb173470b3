package models

// OverallSubgroup names the whole-population pseudo-subgroup.
const OverallSubgroup = "overall"

// Summary condenses per-instance values of one metric for a model family.
type Summary struct {
	Mean   Metric   `json:"mean"`
	Median Metric   `json:"median"`
	Std    Metric   `json:"std"`
	Values []Metric `json:"values"`
}

// MetricKind identifies a per-instance metric list in a subgroup record.
// The string values double as column suffixes in flattened output.
type MetricKind string

const (
	MetricAUC                   MetricKind = "aucs"
	MetricWithinNegativeLabel   MetricKind = "within_negative_label_mwus"
	MetricWithinPositiveLabel   MetricKind = "within_positive_label_mwus"
	MetricWithinSubgroup        MetricKind = "within_subgroup_mwus"
	MetricCrossSubgroupNegative MetricKind = "cross_subgroup_negative_mwus"
	MetricCrossSubgroupPositive MetricKind = "cross_subgroup_positive_mwus"
	MetricNormalizedPinnedAUC   MetricKind = "normalized_pinned_aucs"
	MetricPositiveASEG          MetricKind = "positive_asegs"
	MetricNegativeASEG          MetricKind = "negative_asegs"
	MetricTNR                   MetricKind = "tnr_values"
	MetricFNR                   MetricKind = "fnr_values"
)

// AUCMetricKinds lists the metrics of a FamilyAUCMetrics block in output order.
var AUCMetricKinds = []MetricKind{
	MetricAUC,
	MetricWithinNegativeLabel,
	MetricWithinPositiveLabel,
	MetricWithinSubgroup,
	MetricCrossSubgroupNegative,
	MetricCrossSubgroupPositive,
	MetricNormalizedPinnedAUC,
	MetricPositiveASEG,
	MetricNegativeASEG,
}

// RateMetricKinds lists the metrics of a FamilyRateMetrics block in output order.
var RateMetricKinds = []MetricKind{MetricTNR, MetricFNR}

// MetricSource is a per-subgroup row that exposes per-instance metric lists
// by family name.
type MetricSource interface {
	SubgroupName() string
	MetricValues(family string, kind MetricKind) ([]Metric, bool)
}

// FamilyAUCMetrics holds the rank-based metrics of one model family on one subgroup.
type FamilyAUCMetrics struct {
	Family                   string   `json:"family"`
	AUC                      Summary  `json:"auc"`
	WithinNegativeLabelMWU   Summary  `json:"within_negative_label_mwu"`
	WithinPositiveLabelMWU   Summary  `json:"within_positive_label_mwu"`
	WithinSubgroupMWU        Summary  `json:"within_subgroup_mwu"`
	CrossSubgroupNegativeMWU Summary  `json:"cross_subgroup_negative_mwu"`
	CrossSubgroupPositiveMWU Summary  `json:"cross_subgroup_positive_mwu"`
	NormalizedPinnedAUC      Summary  `json:"normalized_pinned_auc"`
	PositiveASEG             *Summary `json:"positive_aseg,omitempty"`
	NegativeASEG             *Summary `json:"negative_aseg,omitempty"`
}

// Summary returns the summary for kind, or false if this block does not carry it.
func (f *FamilyAUCMetrics) Summary(kind MetricKind) (Summary, bool) {
	switch kind {
	case MetricAUC:
		return f.AUC, true
	case MetricWithinNegativeLabel:
		return f.WithinNegativeLabelMWU, true
	case MetricWithinPositiveLabel:
		return f.WithinPositiveLabelMWU, true
	case MetricWithinSubgroup:
		return f.WithinSubgroupMWU, true
	case MetricCrossSubgroupNegative:
		return f.CrossSubgroupNegativeMWU, true
	case MetricCrossSubgroupPositive:
		return f.CrossSubgroupPositiveMWU, true
	case MetricNormalizedPinnedAUC:
		return f.NormalizedPinnedAUC, true
	case MetricPositiveASEG:
		if f.PositiveASEG != nil {
			return *f.PositiveASEG, true
		}
	case MetricNegativeASEG:
		if f.NegativeASEG != nil {
			return *f.NegativeASEG, true
		}
	}
	return Summary{}, false
}

// SubgroupAUCRecord is one row of the per-subgroup AUC table.
type SubgroupAUCRecord struct {
	Subgroup   string             `json:"subgroup"`
	SubsetSize int                `json:"subset_size"`
	Families   []FamilyAUCMetrics `json:"families"`
}

// Family returns the metrics block for the named family.
func (r *SubgroupAUCRecord) Family(name string) (*FamilyAUCMetrics, bool) {
	for i := range r.Families {
		if r.Families[i].Family == name {
			return &r.Families[i], true
		}
	}
	return nil, false
}

func (r SubgroupAUCRecord) SubgroupName() string { return r.Subgroup }

func (r SubgroupAUCRecord) MetricValues(family string, kind MetricKind) ([]Metric, bool) {
	f, ok := r.Family(family)
	if !ok {
		return nil, false
	}
	s, ok := f.Summary(kind)
	return s.Values, ok
}

// FamilyRateMetrics holds thresholded negative rates of one family on one subgroup.
type FamilyRateMetrics struct {
	Family string  `json:"family"`
	TNR    Summary `json:"tnr"`
	FNR    Summary `json:"fnr"`
}

// Summary returns the summary for kind, or false if this block does not carry it.
func (f *FamilyRateMetrics) Summary(kind MetricKind) (Summary, bool) {
	switch kind {
	case MetricTNR:
		return f.TNR, true
	case MetricFNR:
		return f.FNR, true
	}
	return Summary{}, false
}

// SubgroupRateRecord is one row of the per-subgroup negative rate table.
type SubgroupRateRecord struct {
	Subgroup   string              `json:"subgroup"`
	SubsetSize int                 `json:"subset_size"`
	Families   []FamilyRateMetrics `json:"families"`
}

// Family returns the rates block for the named family.
func (r *SubgroupRateRecord) Family(name string) (*FamilyRateMetrics, bool) {
	for i := range r.Families {
		if r.Families[i].Family == name {
			return &r.Families[i], true
		}
	}
	return nil, false
}

func (r SubgroupRateRecord) SubgroupName() string { return r.Subgroup }

func (r SubgroupRateRecord) MetricValues(family string, kind MetricKind) ([]Metric, bool) {
	f, ok := r.Family(family)
	if !ok {
		return nil, false
	}
	s, ok := f.Summary(kind)
	return s.Values, ok
}

// FamilyDiff is the summed deviation of a family's per-subgroup metric from
// its overall value.
type FamilyDiff struct {
	Family string `json:"model_family"`
	Value  Metric `json:"value"`
}

// DiffTable is a named set of family diffs, e.g. "fnr_equality_difference".
type DiffTable struct {
	Name  string       `json:"name"`
	Diffs []FamilyDiff `json:"diffs"`
}
