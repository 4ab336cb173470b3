// Package metrics computes threshold and rank based bias metrics over one
// model instance's score column.
package metrics

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when aligned columns differ in length.
var ErrLengthMismatch = errors.New("column lengths differ")

// Sample is one score column aligned by position with the ground-truth labels.
type Sample struct {
	Scores []float64
	Labels []bool
}

// NewSample pairs scores with labels.
func NewSample(scores []float64, labels []bool) (Sample, error) {
	if len(scores) != len(labels) {
		return Sample{}, fmt.Errorf("%w: %d scores, %d labels", ErrLengthMismatch, len(scores), len(labels))
	}
	return Sample{Scores: scores, Labels: labels}, nil
}

// Len is the number of rows.
func (s Sample) Len() int {
	return len(s.Scores)
}

// ByLabel splits the scores into negative-label and positive-label rows.
func (s Sample) ByLabel() (negatives, positives []float64) {
	for i, score := range s.Scores {
		if s.Labels[i] {
			positives = append(positives, score)
		} else {
			negatives = append(negatives, score)
		}
	}
	return negatives, positives
}

// SubgroupSample is a Sample with a subgroup membership flag per row.
// Rows that are not members form the background.
type SubgroupSample struct {
	Sample
	Members []bool
}

// NewSubgroupSample pairs a score column with labels and membership flags.
func NewSubgroupSample(scores []float64, labels, members []bool) (SubgroupSample, error) {
	s, err := NewSample(scores, labels)
	if err != nil {
		return SubgroupSample{}, err
	}
	if len(members) != len(scores) {
		return SubgroupSample{}, fmt.Errorf("%w: %d scores, %d subgroup flags", ErrLengthMismatch, len(scores), len(members))
	}
	return SubgroupSample{Sample: s, Members: members}, nil
}

// scores returns the scores of rows with the given membership and label.
func (s SubgroupSample) scores(member, label bool) []float64 {
	var out []float64
	for i, score := range s.Scores {
		if s.Members[i] == member && s.Labels[i] == label {
			out = append(out, score)
		}
	}
	return out
}

// Split returns the subgroup rows and the background rows as separate samples.
func (s SubgroupSample) Split() (subgroup, background Sample) {
	for i, score := range s.Scores {
		if s.Members[i] {
			subgroup.Scores = append(subgroup.Scores, score)
			subgroup.Labels = append(subgroup.Labels, s.Labels[i])
		} else {
			background.Scores = append(background.Scores, score)
			background.Labels = append(background.Labels, s.Labels[i])
		}
	}
	return subgroup, background
}
