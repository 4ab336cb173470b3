package models

// ConfusionCounts holds the confusion matrix of one score column at one threshold.
type ConfusionCounts struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Total is the number of rows counted.
func (c ConfusionCounts) Total() int {
	return c.TP + c.TN + c.FP + c.FN
}

// ActualPositives is TP + FN.
func (c ConfusionCounts) ActualPositives() int {
	return c.TP + c.FN
}

// ActualNegatives is TN + FP.
func (c ConfusionCounts) ActualNegatives() int {
	return c.TN + c.FP
}

// Degenerate reports whether either actual class is empty, in which case
// the true and false positive rates are undefined.
func (c ConfusionCounts) Degenerate() bool {
	return c.ActualPositives() == 0 || c.ActualNegatives() == 0
}

// ConfusionRates are the rates derived from ConfusionCounts. A rate whose
// denominator is zero is Undefined, as is any rate derived from it.
type ConfusionRates struct {
	TPR       Metric `json:"tpr"`
	TNR       Metric `json:"tnr"`
	FPR       Metric `json:"fpr"`
	FNR       Metric `json:"fnr"`
	Precision Metric `json:"precision"`
	Recall    Metric `json:"recall"`
}

// Rates derives the confusion rates from c.
func (c ConfusionCounts) Rates() ConfusionRates {
	// True positive rate, sensitivity, recall.
	tpr := safeDivide(c.TP, c.ActualPositives())
	// True negative rate, specificity.
	tnr := safeDivide(c.TN, c.ActualNegatives())
	complement := func(v float64) float64 { return 1 - v }
	return ConfusionRates{
		TPR:       tpr,
		TNR:       tnr,
		FPR:       tnr.Map(complement),
		FNR:       tpr.Map(complement),
		Precision: safeDivide(c.TP, c.TP+c.FP),
		Recall:    tpr,
	}
}

// EERResult is the outcome of an equal-error-rate threshold search.
type EERResult struct {
	Threshold float64         `json:"threshold"`
	Confusion ConfusionCounts `json:"confusion_matrix"`
}

func safeDivide(num, den int) Metric {
	if den == 0 {
		return Undefined
	}
	return Defined(float64(num) / float64(den))
}
