package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cast"
)

// Schema names the columns of a scored CSV file.
type Schema struct {
	TextColumn      string
	LabelColumn     string
	ScoreColumns    []string
	SubgroupColumns []string
}

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// Load reads a scored CSV file. Files ending in .gz or .zst are
// decompressed. Score and subgroup columns named in schema but missing from
// the header are skipped with no error; computations needing them report
// undefined results. Empty cells mark their column incomplete.
func Load(path string, schema Schema) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	r, closeFn, err := decompress(f, path)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}
	defer closeFn()

	headers, rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	return FromRows(headers, rows, schema)
}

func decompress(r io.Reader, path string) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { zr.Close() }, nil //nolint:errcheck
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return r, func() {}, nil
	}
}

// ReadCSV reads CSV records and returns the header row and the data rows as
// maps of column to value.
func ReadCSV(r io.Reader) ([]string, []Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty input (no header row)")
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, nil, fmt.Errorf("row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// FromRows builds a Dataset from parsed CSV rows.
func FromRows(headers []string, rows []Row, schema Schema) (*Dataset, error) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	if schema.LabelColumn == "" {
		return nil, fmt.Errorf("label column must be set")
	}
	if !present[schema.LabelColumn] {
		return nil, fmt.Errorf("%w: label column %q", ErrUnknownColumn, schema.LabelColumn)
	}

	labels := make([]bool, len(rows))
	for i, row := range rows {
		v, err := cast.ToBoolE(strings.TrimSpace(row[schema.LabelColumn]))
		if err != nil {
			return nil, fmt.Errorf("row %d: label %q: %w", i+2, row[schema.LabelColumn], err)
		}
		labels[i] = v
	}
	d := New(labels)

	if schema.TextColumn != "" && present[schema.TextColumn] {
		text := make([]string, len(rows))
		for i, row := range rows {
			text[i] = row[schema.TextColumn]
		}
		d.text = text
	}

	for _, name := range schema.ScoreColumns {
		if !present[name] {
			continue
		}
		scores := make([]float64, len(rows))
		for i, row := range rows {
			cell := strings.TrimSpace(row[name])
			if cell == "" {
				scores[i] = math.NaN()
				continue
			}
			v, err := cast.ToFloat64E(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: score %q: %w", i+2, name, err)
			}
			scores[i] = v
		}
		if err := d.AddScores(name, scores); err != nil {
			return nil, err
		}
	}

	for _, name := range schema.SubgroupColumns {
		if !present[name] {
			continue
		}
		members := make([]bool, len(rows))
		missing := false
		for i, row := range rows {
			cell := strings.TrimSpace(row[name])
			if cell == "" {
				missing = true
				continue
			}
			v, err := cast.ToBoolE(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: subgroup %q: %w", i+2, name, err)
			}
			members[i] = v
		}
		if err := d.AddSubgroup(name, members); err != nil {
			return nil, err
		}
		if missing {
			d.markIncomplete(name)
		}
	}
	return d, nil
}

// WriteCSV writes the dataset with its text, label, score and subgroup
// columns, in that order.
func WriteCSV(w io.Writer, d *Dataset, schema Schema) error {
	cw := csv.NewWriter(w)

	textCol := schema.TextColumn
	if d.text == nil {
		textCol = ""
	}
	labelCol := schema.LabelColumn
	if labelCol == "" {
		labelCol = "label"
	}

	var header []string
	if textCol != "" {
		header = append(header, textCol)
	}
	header = append(header, labelCol)
	header = append(header, d.scoreOrder...)
	header = append(header, d.groupOrder...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, 0, len(header))
	for i := 0; i < d.Len(); i++ {
		record = record[:0]
		if textCol != "" {
			record = append(record, d.text[i])
		}
		record = append(record, cast.ToString(d.labels[i]))
		for _, name := range d.scoreOrder {
			v := d.scores[name][i]
			if math.IsNaN(v) {
				record = append(record, "")
				continue
			}
			record = append(record, cast.ToString(v))
		}
		for _, name := range d.groupOrder {
			record = append(record, cast.ToString(d.subgroups[name][i]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
