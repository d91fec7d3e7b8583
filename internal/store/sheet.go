package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/tbckr/domainintel/internal/appdir"
)

// maxCellChars is the most characters a worksheet cell holds.
const maxCellChars = excelize.TotalCellChars

// readSheet loads the first worksheet of the workbook at path and returns its
// data rows mapped onto columns by header name. Columns missing from the file
// read as empty strings; extra columns are dropped.
func readSheet(path string, columns []column) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	pos := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		pos[strings.TrimSpace(name)] = i
	}
	if !hasAnyColumn(pos, columns) {
		return nil, fmt.Errorf("header %v does not match any expected column", rows[0])
	}

	out := make([][]string, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		mapped := make([]string, len(columns))
		for i, col := range columns {
			if j, ok := pos[col.name]; ok && j < len(raw) {
				mapped[i] = raw[j]
			}
		}
		out = append(out, mapped)
	}
	return out, nil
}

// loadOrEmpty is readSheet with a missing or unreadable file treated as an
// empty dataset. The second return value is non-nil when an existing file
// could not be read.
func loadOrEmpty(path string, columns []column) ([][]string, error) {
	rows, err := readSheet(path, columns)
	if err == nil {
		return rows, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return nil, err
}

// writeSheet replaces the workbook at path with a single worksheet holding
// a header row and rows. The file is written to a temporary sibling and
// renamed into place so a failed write never truncates the previous file.
func writeSheet(path, sheet string, columns []column, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := typedValues(columns, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := appdir.EnsureParent(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".domainintel-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// typedValues converts string cells back to the column's cell type so
// numbers and booleans stay numeric and boolean in the spreadsheet.
// Values that do not parse are written as text.
func typedValues(columns []column, row []string) []any {
	values := make([]any, len(columns))
	for i, col := range columns {
		var s string
		if i < len(row) {
			s = row[i]
		}
		switch {
		case s == "":
			values[i] = nil
		case col.kind == kindInt:
			if n, err := strconv.Atoi(s); err == nil {
				values[i] = n
			} else {
				values[i] = s
			}
		case col.kind == kindBool:
			if b, err := strconv.ParseBool(s); err == nil {
				values[i] = b
			} else {
				values[i] = s
			}
		default:
			values[i] = s
		}
	}
	return values
}

// clampCells cuts values longer than a spreadsheet cell can hold to that
// limit, in place, and returns how many were cut.
func clampCells(rows [][]string) int {
	n := 0
	for _, row := range rows {
		for i, v := range row {
			if utf8.RuneCountInString(v) > maxCellChars {
				row[i] = string([]rune(v)[:maxCellChars])
				n++
			}
		}
	}
	return n
}

func hasAnyColumn(pos map[string]int, columns []column) bool {
	for _, col := range columns {
		if _, ok := pos[col.name]; ok {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
