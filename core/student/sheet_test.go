package student_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aykutjm/ogrencim/core/student"
)

func TestReadCSV(t *testing.T) {
	data := "fullName,className,motherName,motherPhone,fatherName,fatherPhone\n" +
		"Ayşe Kaya,5A,Fatma Kaya,5551112222\n" +
		",,,,,\n" +
		"Cem Ak, 6B ,,,Ali Ak,5553334444\n"

	records, err := student.ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []student.BulkRecord{
		{FullName: "Ayşe Kaya", ClassName: "5A", MotherName: "Fatma Kaya", MotherPhone: "5551112222"},
		{FullName: "Cem Ak", ClassName: "6B", FatherName: "Ali Ak", FatherPhone: "5553334444"},
	}, records)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"fullName", "className", "motherName", "motherPhone", "fatherName", "fatherPhone"},
		{"Ayşe Kaya", "5A", "Fatma Kaya", "5551112222"},
		{"Cem Ak", "6B", "", "", "Ali Ak", "5553334444"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := student.ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, []student.BulkRecord{
		{FullName: "Ayşe Kaya", ClassName: "5A", MotherName: "Fatma Kaya", MotherPhone: "5551112222"},
		{FullName: "Cem Ak", ClassName: "6B", FatherName: "Ali Ak", FatherPhone: "5553334444"},
	}, records)

	t.Run("not a workbook", func(t *testing.T) {
		_, err := student.ReadXLSX(strings.NewReader("fullName,className"))
		assert.Error(t, err)
	})
}
