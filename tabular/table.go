// Package tabular holds the spreadsheet-shaped data the CLI reads and
// writes: a header row plus string cells, moved in and out of CSV.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

type Table struct {
	Header []string
	Rows   [][]string
}

func New(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(row ...string) {
	if len(t.Header) > 0 {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		row = row[:len(t.Header)]
	}
	t.Rows = append(t.Rows, row)
}

func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Column returns the index of the named column, matched without regard to
// case or surrounding space, or -1 when the header doesn't have it.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table as CSV, to stdout when path is empty or "-".
func (t *Table) WriteFile(path string) error {
	if path == "" || path == "-" {
		return t.WriteCSV(os.Stdout)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("unable to open output file %s: %w", path, err)
	}
	defer f.Close()
	return t.WriteCSV(f)
}

// ReadCSV reads a table, treating the first record as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

func FromFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
