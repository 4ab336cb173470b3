// Package projectconfig provides the ProjectConfig struct and loader for
// .fairscore.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/fairscore/internal/analysis"
	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/metrics"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the project config file looked up by Load.
const FileName = ".fairscore.yaml"

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultTextColumn  = "text"
	DefaultLabelColumn = "label"

	DefaultEERMode = string(metrics.EERFullScan)
	DefaultMissing = string(models.MissingPropagate)

	DefaultFormat = "table"
)

// maxWalkUp bounds how many parent directories Load searches.
const maxWalkUp = 10

// ErrInvalidConfig is returned when a config file fails schema validation.
var ErrInvalidConfig = errors.New("invalid config")

// DatasetConfig names the input file and its columns.
type DatasetConfig struct {
	Path        string   `yaml:"path,omitempty"`
	TextColumn  string   `yaml:"text_column,omitempty"`
	LabelColumn string   `yaml:"label_column,omitempty"`
	Subgroups   []string `yaml:"subgroups,omitempty"`
	TermsFile   string   `yaml:"terms_file,omitempty"`
}

// AnalysisConfig holds metric computation settings.
type AnalysisConfig struct {
	Seed          *int64             `yaml:"seed,omitempty"`
	ROCThresholds int                `yaml:"roc_thresholds,omitempty"`
	EERThresholds int                `yaml:"eer_thresholds,omitempty"`
	EERMode       string             `yaml:"eer_mode,omitempty"`
	IncludeASEG   *bool              `yaml:"include_aseg,omitempty"`
	Missing       string             `yaml:"missing,omitempty"`
	SquaredError  *bool              `yaml:"squared_error,omitempty"`
	Workers       int                `yaml:"workers,omitempty"`
	Threshold     *float64           `yaml:"threshold,omitempty"`
	Thresholds    map[string]float64 `yaml:"thresholds,omitempty"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .fairscore.yaml.
type ProjectConfig struct {
	Dataset  DatasetConfig        `yaml:"dataset,omitempty"`
	Families []models.ModelFamily `yaml:"families,omitempty"`
	Analysis AnalysisConfig       `yaml:"analysis,omitempty"`
	Output   OutputConfig         `yaml:"output,omitempty"`

	// Dir is the directory of the loaded file, empty when running on
	// defaults. Relative dataset paths resolve against it.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Dataset: DatasetConfig{
			TextColumn:  DefaultTextColumn,
			LabelColumn: DefaultLabelColumn,
		},
		Analysis: AnalysisConfig{
			Seed:          int64Ptr(dataset.DefaultSeed),
			ROCThresholds: metrics.DefaultROCThresholds,
			EERThresholds: metrics.DefaultEERThresholds,
			EERMode:       DefaultEERMode,
			IncludeASEG:   boolPtr(false),
			Missing:       DefaultMissing,
			SquaredError:  boolPtr(false),
			Workers:       analysis.DefaultWorkers,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
	}
}

// Load finds .fairscore.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	path, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return LoadFile(path)
}

// LoadFile reads an explicit config file. Unlike Load, a missing file is
// an error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w %s:\n  %s", ErrInvalidConfig, path, strings.Join(errs, "\n  "))
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	if abs, err := filepath.Abs(path); err == nil {
		cfg.Dir = filepath.Dir(abs)
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .fairscore.yaml and returns
// its path, or os.ErrNotExist. Real I/O errors are propagated.
func findConfigFile(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxWalkUp; i++ {
		p := filepath.Join(dir, FileName)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Dataset
	if src.Dataset.Path != "" {
		dst.Dataset.Path = src.Dataset.Path
	}
	if src.Dataset.TextColumn != "" {
		dst.Dataset.TextColumn = src.Dataset.TextColumn
	}
	if src.Dataset.LabelColumn != "" {
		dst.Dataset.LabelColumn = src.Dataset.LabelColumn
	}
	if len(src.Dataset.Subgroups) > 0 {
		dst.Dataset.Subgroups = src.Dataset.Subgroups
	}
	if src.Dataset.TermsFile != "" {
		dst.Dataset.TermsFile = src.Dataset.TermsFile
	}

	if len(src.Families) > 0 {
		dst.Families = src.Families
	}

	// Analysis
	if src.Analysis.Seed != nil {
		dst.Analysis.Seed = src.Analysis.Seed
	}
	if src.Analysis.ROCThresholds != 0 {
		dst.Analysis.ROCThresholds = src.Analysis.ROCThresholds
	}
	if src.Analysis.EERThresholds != 0 {
		dst.Analysis.EERThresholds = src.Analysis.EERThresholds
	}
	if src.Analysis.EERMode != "" {
		dst.Analysis.EERMode = src.Analysis.EERMode
	}
	if src.Analysis.IncludeASEG != nil {
		dst.Analysis.IncludeASEG = src.Analysis.IncludeASEG
	}
	if src.Analysis.Missing != "" {
		dst.Analysis.Missing = src.Analysis.Missing
	}
	if src.Analysis.SquaredError != nil {
		dst.Analysis.SquaredError = src.Analysis.SquaredError
	}
	if src.Analysis.Workers != 0 {
		dst.Analysis.Workers = src.Analysis.Workers
	}
	if src.Analysis.Threshold != nil {
		dst.Analysis.Threshold = src.Analysis.Threshold
	}
	if src.Analysis.Thresholds != nil {
		dst.Analysis.Thresholds = src.Analysis.Thresholds
	}

	// Output
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
}

// ResolvePath resolves p against the config file's directory when p is
// relative and a file was loaded.
func (c *ProjectConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// ModelFamilies returns the configured families, naming unnamed ones after
// the common prefix of their instances.
func (c *ProjectConfig) ModelFamilies() ([]models.ModelFamily, error) {
	out := make([]models.ModelFamily, 0, len(c.Families))
	for i, f := range c.Families {
		if f.Name == "" {
			named, err := models.FamilyFromPrefix(f.Instances...)
			if err != nil {
				return nil, fmt.Errorf("families[%d]: %w", i, err)
			}
			f = named
		}
		out = append(out, f)
	}
	if err := models.ValidateFamilies(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DatasetSchema returns the columns to load for the given families.
func (c *ProjectConfig) DatasetSchema(families []models.ModelFamily) dataset.Schema {
	return dataset.Schema{
		TextColumn:      c.Dataset.TextColumn,
		LabelColumn:     c.Dataset.LabelColumn,
		ScoreColumns:    models.AllInstances(families),
		SubgroupColumns: c.Dataset.Subgroups,
	}
}

// AnalysisOptions converts the analysis section into aggregation options.
func (c *ProjectConfig) AnalysisOptions() (analysis.Options, error) {
	policy, err := models.ParseMissingPolicy(c.Analysis.Missing)
	if err != nil {
		return analysis.Options{}, err
	}
	opts := analysis.DefaultOptions()
	if c.Analysis.Seed != nil {
		opts.Seed = *c.Analysis.Seed
	}
	if c.Analysis.ROCThresholds != 0 {
		opts.ROCThresholds = c.Analysis.ROCThresholds
	}
	if c.Analysis.IncludeASEG != nil {
		opts.IncludeASEG = *c.Analysis.IncludeASEG
	}
	if c.Analysis.Workers != 0 {
		opts.Workers = c.Analysis.Workers
	}
	opts.Missing = policy
	return opts, nil
}

// EERMode parses the configured equal-error-rate search mode.
func (c *ProjectConfig) EERMode() (metrics.EERMode, error) {
	return metrics.ParseEERMode(c.Analysis.EERMode)
}

// ThresholdMap builds per-instance thresholds: explicit entries first, then
// the uniform threshold for everything else. Instances covered by neither
// are left out, so a later Lookup reports them.
func (c *ProjectConfig) ThresholdMap(instances []string) models.ThresholdMap {
	m := make(models.ThresholdMap, len(instances))
	for _, inst := range instances {
		if t, ok := c.Analysis.Thresholds[inst]; ok {
			m[inst] = t
		} else if c.Analysis.Threshold != nil {
			m[inst] = *c.Analysis.Threshold
		}
	}
	return m
}

func boolPtr(b bool) *bool {
	return &b
}

func int64Ptr(v int64) *int64 {
	return &v
}
