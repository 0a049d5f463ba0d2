// Package tabular reads CSV tables with named-column access and
// required-column enforcement. All pipeline inputs (GTFS tables, demand
// tables) come through here so schema failures are reported uniformly.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MissingColumnsError reports required columns absent from a table header.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("table %s: missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// EmptyTableError reports a table that has no data rows.
type EmptyTableError struct {
	Table string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("table %s: no data rows", e.Table)
}

// Table is an in-memory CSV table. Header names are lowercased and
// trimmed so lookups are insensitive to feed formatting quirks.
type Table struct {
	name    string
	headers map[string]int
	rows    [][]string
}

// Read parses a whole CSV table from r. The first record is the header;
// a reader with no header at all is treated as an empty table.
func Read(name string, r io.Reader) (*Table, error) {
	cr := bomAwareCSVReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &EmptyTableError{Table: name}
	}
	if err != nil {
		return nil, fmt.Errorf("table %s: read header: %w", name, err)
	}

	headers := make(map[string]int, len(header))
	for i, h := range header {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table %s: row %d: %w", name, len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	return &Table{name: name, headers: headers, rows: rows}, nil
}

// ReadFile opens and parses the CSV table at path. A missing file is
// returned as-is (wrapping fs.ErrNotExist) so callers can treat it as a
// missing-input failure with the path attached.
func ReadFile(name, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	defer f.Close()
	return Read(name, f)
}

// Name returns the logical table name given at read time.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the header contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.headers[name]
	return ok
}

// Require returns a MissingColumnsError listing every named column that
// is absent from the header, or nil when all are present.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: t.name, Columns: missing}
	}
	return nil
}

// Column is a handle for reading one column across rows without a map
// lookup per cell.
type Column struct {
	idx   int
	table *Table
}

// Column returns a handle for the named column. Reading a column that is
// not in the header yields empty strings; use Require first for columns
// the caller cannot proceed without.
func (t *Table) Column(name string) Column {
	idx, ok := t.headers[name]
	if !ok {
		idx = -1
	}
	return Column{idx: idx, table: t}
}

// Get returns the trimmed cell value at row i, or "" when the column is
// absent or the row is short.
func (c Column) Get(i int) string {
	if c.idx < 0 || i < 0 || i >= len(c.table.rows) {
		return ""
	}
	row := c.table.rows[i]
	if c.idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c.idx])
}

// bomAwareCSVReader strips a UTF byte order mark before CSV parsing.
// Agency exports regularly carry one on the first header cell.
func bomAwareCSVReader(r io.Reader) *csv.Reader {
	transformer := unicode.BOMOverride(encoding.Nop.NewDecoder())
	return csv.NewReader(transform.NewReader(r, transformer))
}
