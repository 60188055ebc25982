package source

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// LoadFile loads rows from a .csv, .tsv or .xlsx file. sheet selects the
// worksheet of an .xlsx file; empty means the first sheet.
func LoadFile(path, sheet string) ([]stages.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path, sheet)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV loads rows from a CSV file, or a TSV file when the name ends in .tsv.
func LoadCSV(path string) ([]stages.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	delim := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		delim = '\t'
	}
	rows, err := readCSV(f, delim)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", filepath.Base(path))
	}
	return rows, nil
}

// ReadCSV decodes comma-separated stage results with a header row.
func ReadCSV(r io.Reader) ([]stages.Row, error) {
	return readCSV(r, ',')
}

func readCSV(r io.Reader, delim rune) ([]stages.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &stages.InvalidInputError{Reason: "no header row"}
		}
		return nil, errors.Wrap(err, "read header")
	}
	return decodeRecords(header, cr.Read)
}

// LoadXLSX loads rows from a worksheet of an Excel workbook.
func LoadXLSX(path, sheet string) ([]stages.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &stages.InvalidInputError{Reason: "workbook has no sheets"}
	}
	if sheet == "" {
		sheet = sheets[0]
	} else {
		found := false
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				sheet, found = s, true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("sheet %q not found in %s; available sheets: %s",
				sheet, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheet)
	}
	if len(records) == 0 {
		return nil, &stages.InvalidInputError{Reason: "no header row"}
	}
	i := 1
	next := func() ([]string, error) {
		if i >= len(records) {
			return nil, io.EOF
		}
		i++
		return records[i-1], nil
	}
	return decodeRecords(records[0], next)
}
