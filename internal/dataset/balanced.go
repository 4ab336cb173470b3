package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

// DefaultSeed is the sampling seed used for balanced subsets.
const DefaultSeed int64 = 25

var (
	// ErrUnknownSubgroup is returned when a subgroup column does not exist.
	ErrUnknownSubgroup = errors.New("unknown subgroup")
	// ErrInsufficientBackground is returned when there are fewer background
	// rows than subgroup rows to sample.
	ErrInsufficientBackground = errors.New("not enough background rows to balance subgroup")
)

// BalancedSubset returns the subgroup's rows followed by an equal-size
// sample, without replacement, of the background rows. The sample depends
// only on the dataset and seed, so repeated calls return identical subsets.
func BalancedSubset(d *Dataset, subgroup string, seed int64) (*Dataset, error) {
	members, ok := d.Subgroup(subgroup)
	if !ok {
		if d.HasSubgroup(subgroup) {
			return nil, fmt.Errorf("subgroup %q has missing values", subgroup)
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownSubgroup, subgroup)
	}

	inside := Indices(members, true)
	outside := Indices(members, false)
	if len(outside) < len(inside) {
		return nil, fmt.Errorf("%w %q: %d subgroup rows, %d background rows",
			ErrInsufficientBackground, subgroup, len(inside), len(outside))
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(outside))

	rows := make([]int, 0, 2*len(inside))
	rows = append(rows, inside...)
	for _, p := range perm[:len(inside)] {
		rows = append(rows, outside[p])
	}
	return d.Select(rows), nil
}
