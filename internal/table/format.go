package table

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// detectFormat sniffs the upload content. The file name is only consulted
// to tell an xlsx workbook from a generic zip archive.
func detectFormat(source string, data []byte) (Format, error) {
	m := mimetype.Detect(data)

	if m.Is(xlsxMIME) {
		return FormatXLSX, nil
	}
	if m.Is("application/zip") && strings.EqualFold(filepath.Ext(source), ".xlsx") {
		return FormatXLSX, nil
	}

	for p := m; p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return FormatCSV, nil
		}
	}
	return "", fmt.Errorf("unsupported content type %s", m.String())
}

// readXLSX returns the rows of one worksheet. Rows are ragged the way
// excelize returns them; normalizeRecords pads them.
func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	// Drop trailing blank rows left by formatting.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}
