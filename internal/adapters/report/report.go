package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat maps a name to a Format, defaulting to table.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	default:
		return FormatTable
	}
}

func (f Format) extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Table is a titled grid of cells. Data, when set, replaces the rows in
// JSON output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Data    any
}

func (t *Table) records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

type Writer struct {
	format  Format
	out     io.Writer
	colored bool
}

func NewWriter(format Format, out io.Writer, colored bool) *Writer {
	return &Writer{format: format, out: out, colored: colored}
}

// Write renders t in the writer's format.
func (w *Writer) Write(t *Table) error {
	switch w.format {
	case FormatCSV:
		return writeCSV(w.out, t)
	case FormatJSON:
		return writeJSON(w.out, t)
	default:
		return writeText(w.out, t, w.colored)
	}
}

// WriteFile renders t into dir/name with the extension of format and
// returns the path written.
func WriteFile(dir, name string, format Format, t *Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name+format.extension())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := NewWriter(format, f, false).Write(t); err != nil {
		return "", err
	}
	return path, f.Close()
}

func writeCSV(out io.Writer, t *Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeJSON(out io.Writer, t *Table) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if t.Data != nil {
		return enc.Encode(t.Data)
	}
	return enc.Encode(t.records())
}

func writeText(out io.Writer, t *Table, colored bool) error {
	if t.Title != "" {
		if colored {
			color.New(color.Bold).Fprintln(out, t.Title)
		} else {
			fmt.Fprintln(out, t.Title)
		}
		fmt.Fprintln(out, strings.Repeat("=", len(t.Title)))
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// FormatFloat renders NaN as "NaN" and other values with four decimals.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// JSONFloat maps NaN to nil since JSON has no representation for it.
func JSONFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
