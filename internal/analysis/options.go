// Package analysis aggregates per-instance bias metrics into per-family,
// per-subgroup summaries and compares subgroups against the whole dataset.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/metrics"
	"github.com/spboyer/fairscore/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many subgroups are evaluated at once.
const DefaultWorkers = 4

var (
	// ErrInstanceMismatch is returned when overall and per-subgroup value
	// lists for a family do not line up instance by instance.
	ErrInstanceMismatch = errors.New("overall and per-subgroup instance lists differ")
	// ErrMissingMetric is returned when a row lacks the requested family or metric.
	ErrMissingMetric = errors.New("metric not present")
)

// Options controls an aggregation run.
type Options struct {
	// Seed drives the background sample of each balanced subset.
	Seed int64
	// ROCThresholds is the number of thresholds swept for ASEG curves.
	ROCThresholds int
	// IncludeASEG adds the positive and negative squared equality gaps.
	IncludeASEG bool
	// Missing is the policy for undefined values in summaries and diffs.
	Missing models.MissingPolicy
	// Workers bounds concurrent subgroup evaluation.
	Workers int
	// Progress, when set, is called once per finished subgroup. It may be
	// called from several goroutines at once.
	Progress func()
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Seed:          dataset.DefaultSeed,
		ROCThresholds: metrics.DefaultROCThresholds,
		Missing:       models.MissingPropagate,
		Workers:       DefaultWorkers,
	}
}

func (o Options) validate() error {
	if o.IncludeASEG && o.ROCThresholds < 2 {
		return fmt.Errorf("roc thresholds must be at least 2, got %d", o.ROCThresholds)
	}
	if _, err := models.ParseMissingPolicy(string(o.Missing)); err != nil {
		return err
	}
	return nil
}

func checkInputs(d *dataset.Dataset, subgroups []string, families []models.ModelFamily) error {
	if err := models.ValidateFamilies(families); err != nil {
		return err
	}
	for _, name := range subgroups {
		if !d.HasSubgroup(name) {
			return fmt.Errorf("%w %q", dataset.ErrUnknownSubgroup, name)
		}
	}
	return nil
}

// forEach runs fn for indexes 0..n-1 on at most opts.Workers goroutines.
// Each call must write only its own result slot.
func forEach(ctx context.Context, n int, opts Options, fn func(i int) error) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
			if opts.Progress != nil {
				opts.Progress()
			}
			return nil
		})
	}
	return g.Wait()
}
