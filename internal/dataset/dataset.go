// Package dataset holds the scored dataset the bias metrics run over, plus
// the loading, sampling and tagging helpers around it.
package dataset

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDuplicateColumn is returned when a column name is added twice.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Dataset is a column-oriented table of scored examples: one boolean label
// per row, one score column per model instance and one boolean membership
// column per subgroup. A column with a missing cell is kept but marked
// incomplete, and accessors report it as unusable.
type Dataset struct {
	text       []string
	labels     []bool
	scores     map[string][]float64
	subgroups  map[string][]bool
	scoreOrder []string
	groupOrder []string
	incomplete map[string]bool
}

// New returns a dataset with the given labels and no other columns.
func New(labels []bool) *Dataset {
	return &Dataset{
		labels:     labels,
		scores:     make(map[string][]float64),
		subgroups:  make(map[string][]bool),
		incomplete: make(map[string]bool),
	}
}

// Len is the number of rows.
func (d *Dataset) Len() int {
	return len(d.labels)
}

// Labels returns the ground-truth label column.
func (d *Dataset) Labels() []bool {
	return d.labels
}

// Text returns the text column, or nil when none was loaded.
func (d *Dataset) Text() []string {
	return d.text
}

// SetText attaches the text column.
func (d *Dataset) SetText(text []string) error {
	if len(text) != d.Len() {
		return fmt.Errorf("text column has %d rows, dataset has %d", len(text), d.Len())
	}
	d.text = text
	return nil
}

// AddScores adds a model instance's score column. NaN cells mark the
// column incomplete.
func (d *Dataset) AddScores(name string, scores []float64) error {
	if err := d.checkNew(name, len(scores)); err != nil {
		return err
	}
	d.scores[name] = scores
	d.scoreOrder = append(d.scoreOrder, name)
	if floats.HasNaN(scores) {
		d.incomplete[name] = true
	}
	return nil
}

// AddSubgroup adds a subgroup membership column.
func (d *Dataset) AddSubgroup(name string, members []bool) error {
	if err := d.checkNew(name, len(members)); err != nil {
		return err
	}
	d.subgroups[name] = members
	d.groupOrder = append(d.groupOrder, name)
	return nil
}

func (d *Dataset) checkNew(name string, n int) error {
	if name == "" {
		return errors.New("column name must not be empty")
	}
	if _, ok := d.scores[name]; ok {
		return fmt.Errorf("%w %q", ErrDuplicateColumn, name)
	}
	if _, ok := d.subgroups[name]; ok {
		return fmt.Errorf("%w %q", ErrDuplicateColumn, name)
	}
	if n != d.Len() {
		return fmt.Errorf("column %q has %d rows, dataset has %d", name, n, d.Len())
	}
	return nil
}

func (d *Dataset) markIncomplete(name string) {
	d.incomplete[name] = true
}

// Scores returns a model instance's score column. ok is false when the
// column is absent or incomplete.
func (d *Dataset) Scores(name string) ([]float64, bool) {
	s, ok := d.scores[name]
	if !ok || d.incomplete[name] {
		return nil, false
	}
	return s, true
}

// HasScores reports whether a score column exists, complete or not.
func (d *Dataset) HasScores(name string) bool {
	_, ok := d.scores[name]
	return ok
}

// Subgroup returns a subgroup's membership column. ok is false when the
// column is absent or incomplete.
func (d *Dataset) Subgroup(name string) ([]bool, bool) {
	m, ok := d.subgroups[name]
	if !ok || d.incomplete[name] {
		return nil, false
	}
	return m, true
}

// HasSubgroup reports whether a subgroup column exists, complete or not.
func (d *Dataset) HasSubgroup(name string) bool {
	_, ok := d.subgroups[name]
	return ok
}

// Complete reports whether the named column exists and has no missing cells.
func (d *Dataset) Complete(name string) bool {
	_, isScore := d.scores[name]
	_, isGroup := d.subgroups[name]
	return (isScore || isGroup) && !d.incomplete[name]
}

// ScoreNames lists score columns in the order they were added.
func (d *Dataset) ScoreNames() []string {
	return slices.Clone(d.scoreOrder)
}

// SubgroupNames lists subgroup columns in the order they were added.
func (d *Dataset) SubgroupNames() []string {
	return slices.Clone(d.groupOrder)
}

// Select returns a new dataset holding the given rows, in the given order.
func (d *Dataset) Select(rows []int) *Dataset {
	out := New(pick(d.labels, rows))
	if d.text != nil {
		out.text = pick(d.text, rows)
	}
	for _, name := range d.scoreOrder {
		out.scores[name] = pick(d.scores[name], rows)
		out.scoreOrder = append(out.scoreOrder, name)
	}
	for _, name := range d.groupOrder {
		out.subgroups[name] = pick(d.subgroups[name], rows)
		out.groupOrder = append(out.groupOrder, name)
	}
	for name := range d.incomplete {
		out.incomplete[name] = true
	}
	return out
}

// Filter returns the rows where mask is true.
func (d *Dataset) Filter(mask []bool) *Dataset {
	return d.Select(Indices(mask, true))
}

// Indices returns the positions where mask equals want.
func Indices(mask []bool, want bool) []int {
	var out []int
	for i, m := range mask {
		if m == want {
			out = append(out, i)
		}
	}
	return out
}

func pick[T any](col []T, rows []int) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = col[r]
	}
	return out
}
