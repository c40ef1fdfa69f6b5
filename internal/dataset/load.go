package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadOptions controls how the source table is read.
type LoadOptions struct {
	// Delimiter for delimited text. If 0, chosen from the file extension.
	Delimiter rune
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Load reads a delimited text or XLSX file fully into memory, keeping row
// order and every column.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrParse, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrParse, path)
	}
	var records [][]string
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		records, err = readXLSX(path, opt)
	} else {
		records, err = readDelimited(path, opt)
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(filepath.Base(path), records, opt.MaxRows)
}

// Read builds a dataset from delimited text already in memory.
func Read(name string, r io.Reader, opt LoadOptions) (*Dataset, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	records, err := readRecords(r, delim)
	if err != nil {
		return nil, err
	}
	return fromRecords(name, records, opt.MaxRows)
}

func readDelimited(path string, opt LoadOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrParse, path, err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return readRecords(f, delim)
}

func readRecords(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim
	var out [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read row %d: %v", ErrParse, len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func readXLSX(path string, opt LoadOptions) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", ErrParse, err)
	}
	defer f.Close()
	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheets", ErrParse, filepath.Base(path))
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrParse, sheet, err)
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func fromRecords(name string, records [][]string, maxRows int) (*Dataset, error) {
	if len(records) == 0 || isBlank(records[0]) {
		return nil, fmt.Errorf("%w: %s has no columns to parse", ErrParse, name)
	}
	header := records[0]
	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[i] = strings.TrimSpace(h)
	}
	d := &Dataset{Name: name, Columns: cols}
	ncol := len(cols)
	for i, rec := range records[1:] {
		if maxRows > 0 && len(d.Rows) >= maxRows {
			break
		}
		if len(rec) > ncol {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrParse, i+2, len(rec), ncol)
		}
		row := make([]Cell, ncol)
		for j := 0; j < ncol; j++ {
			if j < len(rec) {
				row[j] = NewCell(rec[j])
			} else {
				row[j] = Cell{Null: true}
			}
		}
		d.Rows = append(d.Rows, row)
	}
	return d, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
