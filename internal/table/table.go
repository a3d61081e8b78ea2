// Package table loads uploaded files into immutable, typed, in-memory tables.
//
// Parsing accepts comma-delimited text (with BOM skipping, UTF-8 sanitizing
// and delimiter sniffing) and .xlsx workbooks. Column types are inferred the
// way pandas' read_csv infers dtypes and the typed columns are held in a
// gota DataFrame. Anything that cannot be read as a table fails with a
// *ParseError.
package table

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Format identifies how an upload was parsed.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Options controls parsing.
type Options struct {
	// Delimiter for text uploads. Zero sniffs among ',', ';' and tab.
	Delimiter rune
	// Sheet read from xlsx uploads. Empty reads the first sheet.
	Sheet string
}

// Column describes one column of a loaded table.
type Column struct {
	Name    string      `json:"name"`
	Type    series.Type `json:"type"`
	Missing int         `json:"missing"`
}

// Dtype returns the pandas-style dtype label shown to users.
func (c Column) Dtype() string {
	switch c.Type {
	case series.Int:
		return "int64"
	case series.Float:
		return "float64"
	case series.Bool:
		return "bool"
	default:
		return "object"
	}
}

// Table is a parsed upload. It is never mutated after Load returns.
type Table struct {
	source  string
	format  Format
	df      dataframe.DataFrame
	columns []Column
	index   map[string]int
}

// Load parses an uploaded file into a Table.
// Malformed input fails with a *ParseError; no partial table is returned.
func Load(ctx context.Context, source string, data []byte, opts Options) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isBlank(data) {
		return nil, &ParseError{Source: source, Err: ErrEmptyFile}
	}

	format, err := detectFormat(source, data)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readXLSX(data, opts.Sheet)
	default:
		records, err = readDelimited(data, opts.Delimiter)
	}
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fromRecords(source, format, records)
}

// FromRecords builds a Table from a header row followed by data rows.
func FromRecords(source string, records [][]string) (*Table, error) {
	return fromRecords(source, FormatCSV, records)
}

func fromRecords(source string, format Format, records [][]string) (*Table, error) {
	rect, err := normalizeRecords(records)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = source
			return nil, pe
		}
		return nil, &ParseError{Source: source, Err: err}
	}

	header := rect[0]
	rows := rect[1:]

	types := make(map[string]series.Type, len(header))
	columns := make([]Column, len(header))
	for j, name := range header {
		values := make([]string, len(rows))
		for i, row := range rows {
			values[i] = row[j]
		}
		t, missing := inferType(values)
		types[name] = t
		columns[j] = Column{Name: name, Type: t, Missing: missing}
	}

	df := buildFrame(rect, columns, types)
	if df.Err != nil {
		return nil, &ParseError{Source: source, Err: df.Err}
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.Name] = i
	}

	return &Table{
		source:  source,
		format:  format,
		df:      df,
		columns: columns,
		index:   index,
	}, nil
}

// buildFrame loads the typed columns into a DataFrame. Non-text cells are
// trimmed so the parser sees bare numbers. A header with no rows becomes
// a frame of empty text series.
func buildFrame(rect [][]string, columns []Column, types map[string]series.Type) dataframe.DataFrame {
	if len(rect) == 1 {
		cols := make([]series.Series, len(columns))
		for i, c := range columns {
			cols[i] = series.New([]string{}, series.String, c.Name)
		}
		return dataframe.New(cols...)
	}

	for _, row := range rect[1:] {
		for j, c := range columns {
			if c.Type != series.String {
				row[j] = strings.TrimSpace(row[j])
			}
		}
	}
	return dataframe.LoadRecords(rect,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
		dataframe.WithTypes(types),
	)
}

// Source returns the uploaded file name.
func (t *Table) Source() string { return t.source }

// Format returns how the upload was parsed.
func (t *Table) Format() Format { return t.format }

// Nrow returns the number of data rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns.
func (t *Table) Ncol() int { return len(t.columns) }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Names returns the column names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Floats returns the values of a numeric column; missing values are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if col.Type != series.Int && col.Type != series.Float {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, col.Dtype())
	}
	return t.df.Col(name).Float(), nil
}

// Values returns the cell values of a column as strings together with a
// mask of which cells are missing.
func (t *Table) Values(name string) ([]string, []bool, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}

	s := t.df.Col(name)
	missing := s.IsNaN()
	values := make([]string, s.Len())
	for i := range values {
		if missing[i] {
			continue
		}
		values[i] = formatElem(col.Type, s.Elem(i))
	}
	return values, missing, nil
}

// Head returns up to n rows formatted for display. Missing cells read "NaN".
func (t *Table) Head(n int) [][]string {
	if n > t.Nrow() {
		n = t.Nrow()
	}
	if n <= 0 {
		return nil
	}

	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, len(t.columns))
	}
	for j, c := range t.columns {
		s := t.df.Col(c.Name)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				rows[i][j] = "NaN"
				continue
			}
			rows[i][j] = formatElem(c.Type, e)
		}
	}
	return rows
}

func formatElem(t series.Type, e series.Element) string {
	switch t {
	case series.Float:
		return FormatFloat(e.Float())
	default:
		return e.String()
	}
}

// FormatFloat renders a float the shortest way that round-trips.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isBlank(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
