package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/term"
)

// Format selects an output renderer.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}

// ParseFormat validates a format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, csv, markdown or html)", s)
}

const (
	defaultWidth = 100
	maxCellWidth = 40
)

// Report is what a command prints: Data is encoded as-is for JSON output,
// Tables and Notes drive every other format.
type Report struct {
	Data   any
	Tables []Table
	Notes  string
}

// Render writes r to w in the given format.
func Render(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Data)
	case FormatCSV:
		return renderCSV(w, r.Tables)
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(r))
		return err
	case FormatHTML:
		return renderHTML(w, r)
	case FormatTable, "":
		return renderText(w, r)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func renderText(w io.Writer, r Report) error {
	width := terminalWidth(w)
	var b strings.Builder
	for i, t := range r.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		writeTextTable(&b, t, width)
	}
	if r.Notes != "" {
		b.WriteString("\n")
		b.WriteString(r.Notes)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextTable(b *strings.Builder, t Table, width int) {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = min(runewidth.StringWidth(c), maxCellWidth)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
			}
		}
	}
	total := 0
	for _, cw := range widths {
		total += cw + 2
	}
	rule := min(max(total-2, len(t.Title)), width)

	b.WriteString(t.Title + "\n")
	b.WriteString(strings.Repeat("=", rule) + "\n")
	writeTextRow(b, t.Columns, widths)
	b.WriteString(strings.Repeat("-", rule) + "\n")
	for _, row := range t.Rows {
		writeTextRow(b, row, widths)
	}
}

func writeTextRow(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = truncateName(cells[i], widths[i])
		}
		parts[i] = padRight(cell, widths[i])
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " ") + "\n")
}

// terminalWidth returns the width of w when it is a terminal, otherwise a
// fixed default.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}

// truncateName shortens name to maxLen display cells, marking the cut.
func truncateName(name string, maxLen int) string {
	if runewidth.StringWidth(name) <= maxLen {
		return name
	}
	return runewidth.Truncate(name, maxLen, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func renderCSV(w io.Writer, tables []Table) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			// blank line between tables
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func markdown(r Report) string {
	var b strings.Builder
	for i, t := range r.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", t.Title)
		b.WriteString("| " + strings.Join(escapeCells(t.Columns), " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(t.Columns)) + "\n")
		for _, row := range t.Rows {
			b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
		}
	}
	if r.Notes != "" {
		b.WriteString("\n```\n" + strings.TrimRight(r.Notes, "\n") + "\n```\n")
	}
	return b.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

func renderHTML(w io.Writer, r Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown(r)), &body); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>fairscore report</title>\n</head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}
