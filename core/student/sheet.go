package student

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var ErrEmptySheet = errors.New("spreadsheet has no sheet")

// recordFromRow maps the columns fullName, className, motherName, motherPhone, fatherName,
// fatherPhone; missing trailing cells are empty.
func recordFromRow(row []string) BulkRecord {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return BulkRecord{
		FullName:    cell(0),
		ClassName:   cell(1),
		MotherName:  cell(2),
		MotherPhone: cell(3),
		FatherName:  cell(4),
		FatherPhone: cell(5),
	}
}

func recordsFromRows(rows [][]string) []BulkRecord {
	records := make([]BulkRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if r := recordFromRow(row); r != (BulkRecord{}) {
			records = append(records, r)
		}
	}
	return records
}

// ReadXLSX reads the import records of the first sheet of an Excel workbook. The first row is a header.
func ReadXLSX(r io.Reader) ([]BulkRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheets[0])
	}
	return recordsFromRows(rows), nil
}

// ReadCSV reads the import records of a CSV file. The first row is a header.
func ReadCSV(r io.Reader) ([]BulkRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	return recordsFromRows(rows), nil
}
