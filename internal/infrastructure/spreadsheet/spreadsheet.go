// Package spreadsheet reads and writes whole tables stored as .xlsx
// workbooks. The first row of the sheet is the header; every later row is a
// record keyed by header cell.
package spreadsheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/xuri/excelize/v2"
)

const DefaultSheet = "Sheet1"

type Row map[string]string

type Table struct {
	Header []string
	Rows   []Row
}

// Read loads the table at path. A file that does not exist is an empty
// table, not an error.
func Read(path string) (*Table, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &Table{}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &Table{}, nil
		}
		sheet = sheets[0]
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", path, err)
	}
	if len(raw) == 0 {
		return &Table{}, nil
	}

	table := &Table{Header: raw[0], Rows: make([]Row, 0, len(raw)-1)}
	for _, cells := range raw[1:] {
		if isBlank(cells) {
			continue
		}
		row := make(Row, len(table.Header))
		for i, key := range table.Header {
			if key == "" {
				continue
			}
			if i < len(cells) {
				row[key] = cells[i]
			} else {
				row[key] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Write replaces the file at path with t. The workbook is written to a
// sibling temp file and renamed into place.
func Write(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(t.Header) > 0 {
		if err := setRow(f, 1, toCells(t.Header)); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		cells := make([]any, len(t.Header))
		for j, key := range t.Header {
			cells[j] = row[key]
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}

	return writeAtomic(path, buf.Bytes())
}

// Append adds row to the end of the table at path, creating the file with
// header when it does not exist yet. Columns unknown to an existing file are
// added to its header.
func Append(path string, header []string, row Row) error {
	t, err := Read(path)
	if err != nil {
		return err
	}

	if len(t.Header) == 0 {
		t.Header = slices.Clone(header)
	}
	for _, key := range header {
		if !slices.Contains(t.Header, key) {
			t.Header = append(t.Header, key)
		}
	}

	t.Rows = append(t.Rows, row)
	return Write(path, t)
}

func setRow(f *excelize.File, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(DefaultSheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
