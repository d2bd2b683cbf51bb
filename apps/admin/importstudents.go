package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/student"
)

var errUnsupportedFile = errors.New("only .csv and .xlsx files can be imported")

func readRecords(path string) ([]student.BulkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return student.ReadCSV(f)
	case ".xlsx":
		return student.ReadXLSX(f)
	default:
		return nil, errUnsupportedFile
	}
}

// importStudents imports the rows of a spreadsheet and prints a summary.
func (cli *commandLine) importStudents(path, institutionID string) error {
	records, err := readRecords(path)
	if err != nil {
		return err
	}

	res, err := cli.studentSvc.Import(context.Background(), records, student.ImportOptions{InstitutionID: institutionID})
	if err != nil && errors.Cause(err) != student.ErrNothingImported {
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Rows", "Imported", "Skipped", "Parents", "New parents"})
	table.Append([]string{
		strconv.Itoa(len(records)),
		strconv.Itoa(res.Count()),
		strconv.Itoa(len(records) - res.Count()),
		strconv.Itoa(res.GuardiansResolved),
		strconv.Itoa(res.GuardiansCreated),
	})
	table.Render()

	for _, msg := range res.Messages() {
		color.New(color.FgYellow).Fprintln(cli.out, msg)
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(cli.out, "Import failed!")
		return err
	}
	color.New(color.FgGreen).Fprintln(cli.out, "Import completed successfully!")
	return nil
}
