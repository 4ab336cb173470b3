package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyFamily is returned when a model family has no name or no instances.
	ErrEmptyFamily = errors.New("model family must have a name and at least one instance")
	// ErrNoCommonPrefix is returned when a family name cannot be derived from instance names.
	ErrNoCommonPrefix = errors.New("couldn't determine family name from model names")
	// ErrMissingThreshold is returned when a threshold map has no entry for a model instance.
	ErrMissingThreshold = errors.New("no threshold for model instance")
)

// familySeparators are trimmed from both ends of a derived family name.
const familySeparators = "_-. "

// ModelFamily is a named group of model instances, e.g. independently
// trained runs of the same architecture, summarized together.
type ModelFamily struct {
	Name      string   `json:"name" yaml:"name"`
	Instances []string `json:"instances" yaml:"instances"`
}

// NewModelFamily returns a family with an explicit name.
func NewModelFamily(name string, instances ...string) (ModelFamily, error) {
	f := ModelFamily{Name: name, Instances: instances}
	if err := f.Validate(); err != nil {
		return ModelFamily{}, err
	}
	return f, nil
}

// FamilyFromPrefix names a family after the longest common prefix of its
// instance names, trimmed of separator characters.
func FamilyFromPrefix(instances ...string) (ModelFamily, error) {
	if len(instances) == 0 {
		return ModelFamily{}, ErrEmptyFamily
	}
	prefix := instances[0]
	for _, name := range instances[1:] {
		prefix = prefix[:commonPrefixLen(prefix, name)]
	}
	name := strings.Trim(prefix, familySeparators)
	if name == "" {
		return ModelFamily{}, fmt.Errorf("%w: %v", ErrNoCommonPrefix, instances)
	}
	return ModelFamily{Name: name, Instances: instances}, nil
}

// commonPrefixLen is the byte length of the longest common prefix of a and b
// that ends on a rune boundary.
func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) {
		_, size := utf8.DecodeRuneInString(a[n:])
		_, sizeB := utf8.DecodeRuneInString(b[n:])
		if size != sizeB || a[n:n+size] != b[n:n+size] {
			break
		}
		n += size
	}
	return n
}

// Validate checks the family has a name, instances, and no duplicate instances.
func (f ModelFamily) Validate() error {
	if strings.TrimSpace(f.Name) == "" || len(f.Instances) == 0 {
		return fmt.Errorf("%w (name %q, %d instances)", ErrEmptyFamily, f.Name, len(f.Instances))
	}
	seen := make(map[string]bool, len(f.Instances))
	for _, inst := range f.Instances {
		if inst == "" {
			return fmt.Errorf("model family %q: empty instance name", f.Name)
		}
		if seen[inst] {
			return fmt.Errorf("model family %q: duplicate instance %q", f.Name, inst)
		}
		seen[inst] = true
	}
	return nil
}

// ValidateFamilies validates each family and rejects duplicate family names.
func ValidateFamilies(families []ModelFamily) error {
	seen := make(map[string]bool, len(families))
	for _, f := range families {
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate model family %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// AllInstances returns every instance of every family, in order.
func AllInstances(families []ModelFamily) []string {
	var out []string
	for _, f := range families {
		out = append(out, f.Instances...)
	}
	return out
}

// ThresholdMap maps a model instance to its classification threshold.
type ThresholdMap map[string]float64

// UniformThresholds assigns the same threshold to every instance.
func UniformThresholds(instances []string, threshold float64) ThresholdMap {
	m := make(ThresholdMap, len(instances))
	for _, inst := range instances {
		m[inst] = threshold
	}
	return m
}

// Lookup returns the threshold for instance or ErrMissingThreshold.
func (m ThresholdMap) Lookup(instance string) (float64, error) {
	t, ok := m[instance]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrMissingThreshold, instance)
	}
	return t, nil
}
