package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// missingTokens are read as missing values, matching pandas' default na_values.
var missingTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"null": true, "NULL": true, "None": true,
	"#N/A": true, "#NA": true, "<NA>": true, "1.#QNAN": true,
}

// boolTokens are the spellings pandas parses into a bool column.
var boolTokens = map[string]bool{
	"true": true, "True": true, "TRUE": true,
	"false": true, "False": true, "FALSE": true,
}

// readDelimited parses text records. The delimiter is sniffed from the
// header line when not given.
func readDelimited(data []byte, delim rune) ([][]string, error) {
	if delim == 0 {
		delim = sniffDelimiter(data)
	}

	r := csv.NewReader(wrapForParsing(bytes.NewReader(data)))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// sniffDelimiter picks the candidate that occurs most often, outside
// quotes, on the first non-empty line. Comma wins ties and the no-signal case.
func sniffDelimiter(data []byte) rune {
	line := firstLine(data)

	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if _, ok := counts[r]; ok && !inQuotes {
			counts[r]++
		}
	}

	best := ','
	for _, cand := range []rune{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}

func firstLine(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM[:])
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		var line []byte
		if i < 0 {
			line, data = data, nil
		} else {
			line, data = data[:i], data[i+1:]
		}
		if s := strings.TrimSpace(string(line)); s != "" {
			return s
		}
	}
	return ""
}

// normalizeRecords turns raw records into a rectangular header + rows
// block: header names are made unique, short rows are padded and missing
// tokens blanked. A header with no rows is a valid, empty block. Rows
// wider than the header fail.
func normalizeRecords(records [][]string) ([][]string, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := uniqueHeader(records[0])
	width := len(header)

	out := make([][]string, 0, len(records))
	out = append(out, header)
	for i, rec := range records[1:] {
		if len(rec) > width {
			// Trailing empty cells are a common export artifact, not extra data.
			trimmed := rec
			for len(trimmed) > width && strings.TrimSpace(trimmed[len(trimmed)-1]) == "" {
				trimmed = trimmed[:len(trimmed)-1]
			}
			if len(trimmed) > width {
				return nil, &ParseError{
					Record: i + 2,
					Err:    fmt.Errorf("expected %d fields, saw %d", width, len(rec)),
				}
			}
			rec = trimmed
		}

		row := make([]string, width)
		for j := range row {
			if j < len(rec) {
				row[j] = cleanCell(rec[j])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// uniqueHeader names blank headers "Unnamed: i" and suffixes repeats
// with ".1", ".2", ... in declaration order.
func uniqueHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		taken[name] = true
		header[i] = name
	}

	for i, name := range header {
		n := seen[name]
		seen[name] = n + 1
		if n == 0 {
			continue
		}
		candidate := name + "." + strconv.Itoa(n)
		for taken[candidate] {
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[name] = n + 1
		taken[candidate] = true
		header[i] = candidate
	}
	return header
}

// cleanCell strips the ="..." wrapper spreadsheets use to force text and
// blanks missing-value tokens. Surrounding whitespace only matters for
// those checks; other text is kept as written, so " A" and "A" stay
// distinct categories.
func cleanCell(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, `="`) && strings.HasSuffix(t, `"`) && len(t) >= 3 {
		return t[2 : len(t)-1]
	}
	if missingTokens[t] {
		return ""
	}
	return s
}

// inferType picks the column type from its cleaned values and counts
// missing cells. Order of preference: int, float, bool, string. Numbers
// and bools may carry surrounding whitespace. A bool column with missing
// cells is text, an all-missing column is float and a column with no rows
// at all is text, as pandas does.
func inferType(values []string) (series.Type, int) {
	if len(values) == 0 {
		return series.String, 0
	}
	var missing, ints, floats, bools, present int
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			missing++
			continue
		}
		present++
		switch {
		case isInt(v):
			ints++
		case isFloat(v):
			floats++
		case boolTokens[v]:
			bools++
		}
	}

	switch {
	case present == 0:
		return series.Float, missing
	case ints == present:
		if missing > 0 {
			return series.Float, missing
		}
		return series.Int, missing
	case ints+floats == present:
		return series.Float, missing
	case bools == present && missing == 0:
		return series.Bool, missing
	default:
		return series.String, missing
	}
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	// ParseFloat accepts "infinity"; pandas only reads "inf" spellings.
	return strings.ToLower(strings.TrimLeft(s, "+-")) != "infinity"
}
