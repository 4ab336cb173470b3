package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spboyer/fairscore/internal/analysis"
	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/metrics"
	"github.com/spboyer/fairscore/internal/models"
	"github.com/spboyer/fairscore/internal/projectconfig"
	"github.com/spboyer/fairscore/internal/reporting"
	"github.com/spboyer/fairscore/internal/spinner"
	"github.com/spf13/cobra"
)

var (
	errNoFamilies = errors.New("no model families configured: use --family or families in .fairscore.yaml")
	errNoDataset  = errors.New("no dataset configured: use --data or dataset.path in .fairscore.yaml")
)

// dataFlags select the dataset, its columns and the model families.
type dataFlags struct {
	path        string
	labelColumn string
	textColumn  string
	subgroups   []string
	families    []string
	termsFile   string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.path, "data", "", "Scored CSV file (.csv, .csv.gz or .csv.zst)")
	fs.StringVar(&f.labelColumn, "label-column", "", "Boolean label column")
	fs.StringVar(&f.textColumn, "text-column", "", "Text column, needed for --terms")
	fs.StringSliceVarP(&f.subgroups, "subgroup", "s", nil, "Boolean subgroup column (repeatable)")
	fs.StringArrayVarP(&f.families, "family", "m", nil, "Model family as name=inst1,inst2 or inst1,inst2 (repeatable)")
	fs.StringVar(&f.termsFile, "terms", "", "File of identity terms to tag from the text column, one per line")
}

func (f *dataFlags) apply(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) error {
	fs := cmd.Flags()
	// flag paths are relative to the working directory, not the config file
	if fs.Changed("data") {
		cfg.Dataset.Path = absPath(f.path)
	}
	if fs.Changed("terms") {
		cfg.Dataset.TermsFile = absPath(f.termsFile)
	}
	if fs.Changed("label-column") {
		cfg.Dataset.LabelColumn = f.labelColumn
	}
	if fs.Changed("text-column") {
		cfg.Dataset.TextColumn = f.textColumn
	}
	if fs.Changed("subgroup") {
		cfg.Dataset.Subgroups = f.subgroups
	}
	if fs.Changed("family") {
		families := make([]models.ModelFamily, 0, len(f.families))
		for _, raw := range f.families {
			fam, err := parseFamily(raw)
			if err != nil {
				return err
			}
			families = append(families, fam)
		}
		cfg.Families = families
	}
	return nil
}

// parseFamily reads "name=a,b" or "a,b". An unnamed family is named later
// from its instances' common prefix.
func parseFamily(raw string) (models.ModelFamily, error) {
	name, list, named := strings.Cut(raw, "=")
	if !named {
		name, list = "", raw
	}
	var instances []string
	for _, inst := range strings.Split(list, ",") {
		if inst = strings.TrimSpace(inst); inst != "" {
			instances = append(instances, inst)
		}
	}
	if len(instances) == 0 {
		return models.ModelFamily{}, fmt.Errorf("--family %q: %w", raw, models.ErrEmptyFamily)
	}
	return models.ModelFamily{Name: strings.TrimSpace(name), Instances: instances}, nil
}

// analysisFlags override the analysis section of the config.
type analysisFlags struct {
	seed          int64
	workers       int
	missing       string
	includeASEG   bool
	rocThresholds int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64Var(&f.seed, "seed", dataset.DefaultSeed, "Seed for the balanced background sample")
	fs.IntVar(&f.workers, "workers", analysis.DefaultWorkers, "Subgroups evaluated concurrently")
	fs.StringVar(&f.missing, "missing", string(models.MissingPropagate), "Undefined values: propagate or skip")
	fs.BoolVar(&f.includeASEG, "include-aseg", false, "Also compute positive and negative average squared equality gaps")
	fs.IntVar(&f.rocThresholds, "roc-thresholds", metrics.DefaultROCThresholds, "Thresholds swept for the equality gap ROC curves")
}

func (f *analysisFlags) apply(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) {
	fs := cmd.Flags()
	if fs.Changed("seed") {
		cfg.Analysis.Seed = &f.seed
	}
	if fs.Changed("workers") {
		cfg.Analysis.Workers = f.workers
	}
	if fs.Changed("missing") {
		cfg.Analysis.Missing = f.missing
	}
	if fs.Changed("include-aseg") {
		cfg.Analysis.IncludeASEG = &f.includeASEG
	}
	if fs.Changed("roc-thresholds") {
		cfg.Analysis.ROCThresholds = f.rocThresholds
	}
}

// eerFlags configure the equal-error-rate search.
type eerFlags struct {
	thresholds int
	mode       string
}

func (f *eerFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.thresholds, "eer-thresholds", metrics.DefaultEERThresholds, "Evenly spaced thresholds searched for the equal error rate")
	fs.StringVar(&f.mode, "eer-mode", string(metrics.EERFullScan), "EER search: full or early-stop")
}

func (f *eerFlags) apply(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) {
	fs := cmd.Flags()
	if fs.Changed("eer-thresholds") {
		cfg.Analysis.EERThresholds = f.thresholds
	}
	if fs.Changed("eer-mode") {
		cfg.Analysis.EERMode = f.mode
	}
}

// thresholdFlags pick the classification threshold for negative rates.
type thresholdFlags struct {
	threshold float64
	useEER    bool
}

func (f *thresholdFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.threshold, "threshold", 0.5, "Classification threshold applied to every instance")
	fs.BoolVar(&f.useEER, "eer", false, "Use each instance's equal-error-rate threshold")
}

func (f *thresholdFlags) apply(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) {
	if cmd.Flags().Changed("threshold") {
		cfg.Analysis.Threshold = &f.threshold
		cfg.Analysis.Thresholds = nil
	}
}

// configured reports whether any threshold source is available.
func (f *thresholdFlags) configured(cfg *projectconfig.ProjectConfig) bool {
	return f.useEER || cfg.Analysis.Threshold != nil || len(cfg.Analysis.Thresholds) > 0
}

// session is the loaded state a subcommand runs against.
type session struct {
	cfg       *projectconfig.ProjectConfig
	families  []models.ModelFamily
	data      *dataset.Dataset
	schema    dataset.Schema
	subgroups []string
	format    reporting.Format
}

func (o *rootOptions) loadConfig() (*projectconfig.ProjectConfig, error) {
	if o.configPath != "" {
		return projectconfig.LoadFile(o.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

// configure loads the config file and applies command-line overrides.
// Each override hook runs in order.
func (o *rootOptions) configure(cmd *cobra.Command, overrides ...func(*projectconfig.ProjectConfig) error) (*projectconfig.ProjectConfig, reporting.Format, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, "", err
	}
	for _, apply := range overrides {
		if err := apply(cfg); err != nil {
			return nil, "", err
		}
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = o.format
	}
	format, err := reporting.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, "", err
	}
	return cfg, format, nil
}

// openSession resolves families and loads the dataset, tagging term
// subgroups from the text column when a terms file is configured.
func openSession(cfg *projectconfig.ProjectConfig, format reporting.Format, needFamilies bool) (*session, error) {
	families, err := cfg.ModelFamilies()
	if err != nil {
		return nil, err
	}
	if needFamilies && len(families) == 0 {
		return nil, errNoFamilies
	}
	path := cfg.ResolvePath(cfg.Dataset.Path)
	if path == "" {
		return nil, errNoDataset
	}

	var terms []string
	if cfg.Dataset.TermsFile != "" {
		terms, err = dataset.ReadTerms(cfg.ResolvePath(cfg.Dataset.TermsFile))
		if err != nil {
			return nil, err
		}
	}

	schema := cfg.DatasetSchema(families)
	schema.SubgroupColumns = slices.DeleteFunc(slices.Clone(schema.SubgroupColumns), func(s string) bool {
		return slices.Contains(terms, s)
	})
	slog.Debug("loading dataset", "path", path, "instances", len(schema.ScoreColumns), "subgroups", len(schema.SubgroupColumns))
	d, err := dataset.Load(path, schema)
	if err != nil {
		return nil, err
	}
	if len(terms) > 0 {
		if err := dataset.TagSubgroups(d, terms); err != nil {
			return nil, err
		}
		slog.Debug("tagged subgroups from terms", "terms", len(terms))
	}

	subgroups := slices.Clone(schema.SubgroupColumns)
	subgroups = append(subgroups, terms...)
	schema.SubgroupColumns = subgroups

	return &session{
		cfg:       cfg,
		families:  families,
		data:      d,
		schema:    schema,
		subgroups: subgroups,
		format:    format,
	}, nil
}

// thresholds resolves per-instance thresholds, running the EER search
// when useEER is set.
func (s *session) thresholds(useEER bool) (models.ThresholdMap, error) {
	instances := models.AllInstances(s.families)
	if !useEER {
		return s.cfg.ThresholdMap(instances), nil
	}
	mode, err := s.cfg.EERMode()
	if err != nil {
		return nil, err
	}
	results, err := analysis.PerModelEER(s.data, instances, s.cfg.Analysis.EERThresholds, mode)
	if err != nil {
		return nil, err
	}
	return analysis.EERThresholds(results), nil
}

func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// trackProgress shows a subgroup counter on an interactive stderr while
// opts drives sweeps totalling n subgroups. The returned func stops it.
func trackProgress(cmd *cobra.Command, opts *analysis.Options, n int) func() {
	f, _ := cmd.ErrOrStderr().(*os.File)
	sp := spinner.StartIfTerminal(f, "subgroups", n)
	if sp == nil {
		return func() {}
	}
	opts.Progress = sp.Advance
	return sp.Stop
}
