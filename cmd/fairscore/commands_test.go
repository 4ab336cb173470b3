package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spboyer/fairscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDataset writes 100 rows as 50 positive/negative pairs. Scores depend
// on the label and pair%10 only, so subgroup g (the first ten pairs) matches
// its background exactly while h (every fifth pair) does not.
func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("text,label,m_1,m_2,g,h\n")
	for i := 0; i < 100; i++ {
		p := i / 2
		k := float64(p % 10)
		label := i%2 == 0
		score := 0.2 + 0.05*k
		if label {
			score = 0.32 + 0.05*k
		}
		text := "just a comment"
		if p < 10 {
			text = "I am a Gay person"
		}
		b.WriteString(strings.Join([]string{
			text,
			strconv.FormatBool(label),
			strconv.FormatFloat(score, 'f', -1, 64),
			strconv.FormatFloat(score+0.02, 'f', -1, 64),
			strconv.FormatBool(p < 10),
			strconv.FormatBool(p%5 == 0),
		}, ",") + "\n")
	}
	path := filepath.Join(dir, "scored.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// emptyConfig keeps tests from picking up a .fairscore.yaml above the
// working directory.
func emptyConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func baseArgs(t *testing.T, command string) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		command,
		"--config", emptyConfig(t, dir),
		"--data", writeDataset(t, dir),
		"--family", "m=m_1,m_2",
	}
}

func TestAUCCommand_JSON(t *testing.T) {
	args := append(baseArgs(t, "auc"), "--subgroup", "g", "--format", "json", "--include-aseg", "--roc-thresholds", "101")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)

	var report aucReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Subgroups, 1)
	assert.InDelta(t, 0.72, report.Overall["m"].Mean.Value, 1e-9)

	r := report.Subgroups[0]
	assert.Equal(t, "g", r.Subgroup)
	assert.Equal(t, 40, r.SubsetSize)
	f, ok := r.Family("m")
	require.True(t, ok)
	assert.InDelta(t, 0.72, f.NormalizedPinnedAUC.Mean.Value, 1e-9)
	require.NotNil(t, f.PositiveASEG)
	assert.InDelta(t, 0, f.PositiveASEG.Mean.Value, 1e-9)
}

func TestAUCCommand_Table(t *testing.T) {
	args := append(baseArgs(t, "auc"), "--subgroup", "g,h")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Per-subgroup AUCs")
	assert.Contains(t, out, "m_normalized_pinned_aucs")
	assert.Contains(t, out, "=== Overall AUC ===")
	assert.Contains(t, out, "m: 0.7200 — Fair (0.70-0.80)")
}

func TestAUCCommand_UnknownSubgroup(t *testing.T) {
	args := append(baseArgs(t, "auc"), "--subgroup", "nope")
	_, _, err := runCLI(t, args...)
	assert.Error(t, err)
}

func TestRatesCommand_CSV(t *testing.T) {
	args := append(baseArgs(t, "rates"), "--subgroup", "g", "--threshold", "0.51", "--format", "csv")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	col := -1
	for i, name := range records[0] {
		if name == "m_tnr_mean" {
			col = i
		}
	}
	require.NotEqual(t, -1, col)
	assert.Equal(t, models.OverallSubgroup, records[1][0])
	assert.Equal(t, "0.6500", records[1][col])
	assert.Equal(t, "g", records[2][0])
	assert.Equal(t, "0.6500", records[2][col])
}

func TestRatesCommand_NeedsThreshold(t *testing.T) {
	args := append(baseArgs(t, "rates"), "--subgroup", "g")
	_, _, err := runCLI(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no threshold configured")
}

func TestRatesCommand_EER(t *testing.T) {
	args := append(baseArgs(t, "rates"), "--subgroup", "g", "--eer", "--format", "json")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)

	var report ratesReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Thresholds, 2)
	assert.Equal(t, models.OverallSubgroup, report.Overall.Subgroup)
}

func TestEERCommand(t *testing.T) {
	args := append(baseArgs(t, "eer"), "--format", "json", "--eer-mode", "early-stop")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)

	var results map[string]models.EERResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Contains(t, results, "m_1")
	require.Contains(t, results, "m_2")
	assert.Equal(t, 100, results["m_1"].Confusion.Total())
}

func TestEERCommand_BadMode(t *testing.T) {
	args := append(baseArgs(t, "eer"), "--eer-mode", "fastest")
	_, _, err := runCLI(t, args...)
	assert.Error(t, err)
}

func TestDiffCommand_AUCOnly(t *testing.T) {
	args := append(baseArgs(t, "diff"), "--subgroup", "g", "--normalized", "--format", "json")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)

	var tables []models.DiffTable
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, "pinned_auc_equality_difference", tables[0].Name)
	assert.InDelta(t, 0, tables[0].Diffs[0].Value.Value, 1e-9)
}

func TestDiffCommand_FailAbove(t *testing.T) {
	junit := filepath.Join(t.TempDir(), "bias.xml")
	args := append(baseArgs(t, "diff"),
		"--subgroup", "h", "--threshold", "0.51", "--fail-above", "0.05", "--junit", junit)
	out, _, err := runCLI(t, args...)

	var biasErr *BiasThresholdError
	require.True(t, errors.As(err, &biasErr), "expected BiasThresholdError, got %v", err)
	assert.Contains(t, biasErr.Error(), "tnr_equality_difference")

	assert.Contains(t, out, "Equality differences")
	assert.Contains(t, out, "fnr_equality_difference")
	assert.Contains(t, out, "=== Interpretation ===")

	data, err := os.ReadFile(junit)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BiasThresholdExceeded")
}

func TestDiffCommand_WithinLimit(t *testing.T) {
	args := append(baseArgs(t, "diff"), "--subgroup", "g", "--normalized", "--threshold", "0.51", "--fail-above", "0.5", "--format", "markdown")
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "| model_family | pinned_auc_equality_difference | fnr_equality_difference | tnr_equality_difference |")
}

func TestTagCommand(t *testing.T) {
	dir := t.TempDir()
	terms := filepath.Join(dir, "terms.txt")
	require.NoError(t, os.WriteFile(terms, []byte("gay\n\nmuslim\n"), 0o644))
	output := filepath.Join(dir, "tagged.csv")

	_, status, err := runCLI(t, "tag",
		"--config", emptyConfig(t, dir),
		"--data", writeDataset(t, dir),
		"--terms", terms,
		"--output", output)
	require.NoError(t, err)
	assert.Contains(t, status, "gay")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"text", "label", "gay", "muslim"}, records[0])
	require.Len(t, records, 101)
	tagged := 0
	for _, r := range records[1:] {
		if r[2] == "true" {
			tagged++
		}
		assert.Equal(t, "false", r[3])
	}
	assert.Equal(t, 20, tagged)
}

func TestTagCommand_NeedsTerms(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, "tag", "--config", emptyConfig(t, dir), "--data", writeDataset(t, dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no terms file")
}

func TestConfigFileDrivesRun(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	cfgPath := filepath.Join(dir, ".fairscore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
dataset:
  path: scored.csv
  subgroups: [g, h]
families:
  - instances: [m_1, m_2]
analysis:
  workers: 2
output:
  format: json
`), 0o644))

	out, _, err := runCLI(t, "auc", "--config", cfgPath)
	require.NoError(t, err)

	var report aucReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Subgroups, 2)
	assert.Equal(t, "h", report.Subgroups[1].Subgroup)
	// unnamed family takes the instances' common prefix
	assert.Contains(t, report.Overall, "m")

	// --format beats output.format
	out, _, err = runCLI(t, "auc", "--config", cfgPath, "--format", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "subgroup,subset_size,m_mean"))
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := emptyConfig(t, dir)
	data := writeDataset(t, dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no families", []string{"auc", "--config", cfg, "--data", data}, "no model families"},
		{"no dataset", []string{"auc", "--config", cfg, "--family", "m_1,m_2"}, "no dataset"},
		{"bad format", []string{"auc", "--config", cfg, "--data", data, "--family", "m_1,m_2", "--format", "pdf"}, "unknown output format"},
		{"bad family", []string{"auc", "--config", cfg, "--data", data, "--family", "m="}, "model family"},
		{"missing config", []string{"auc", "--config", filepath.Join(dir, "nope.yaml")}, "reading config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		raw  string
		want models.ModelFamily
	}{
		{"cnn=cnn_1,cnn_2", models.ModelFamily{Name: "cnn", Instances: []string{"cnn_1", "cnn_2"}}},
		{"cnn_1, cnn_2", models.ModelFamily{Instances: []string{"cnn_1", "cnn_2"}}},
		{" rnn = a ,b,", models.ModelFamily{Name: "rnn", Instances: []string{"a", "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseFamily(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseFamily("cnn=")
	assert.ErrorIs(t, err, models.ErrEmptyFamily)
}
