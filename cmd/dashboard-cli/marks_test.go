package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func TestReadMarksCSV(t *testing.T) {
	input := "studentId,status,note\n" +
		"s1,Present,\n" +
		"s2,absent,sick\n" +
		",late,blank id rows are ignored\n" +
		"s3,late\n"

	rows, err := readMarksCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []markRow{
		{StudentID: "s1", Status: models.AttendanceStatusPresent},
		{StudentID: "s2", Status: models.AttendanceStatusAbsent, Note: "sick"},
		{StudentID: "s3", Status: models.AttendanceStatusLate},
	}, rows)
}

func TestReadMarksCSVColumnOrder(t *testing.T) {
	rows, err := readMarksCSV(strings.NewReader("Status, StudentID\nabsent,s9\n"))
	require.NoError(t, err)
	assert.Equal(t, []markRow{{StudentID: "s9", Status: models.AttendanceStatusAbsent}}, rows)
}

func TestReadMarksCSVErrors(t *testing.T) {
	_, err := readMarksCSV(strings.NewReader("id,status\ns1,present\n"))
	assert.ErrorIs(t, err, errMissingColumn)

	_, err = readMarksCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, errMissingColumn)

	_, err = readMarksCSV(strings.NewReader("studentId,status\ns1,present\ns2,excused\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadMarksWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"studentId", "status", "note"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"s1", "late", "bus"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"s2", "present"}))

	path := filepath.Join(t.TempDir(), "marks.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := readMarksFile(path)
	require.NoError(t, err)
	assert.Equal(t, []markRow{
		{StudentID: "s1", Status: models.AttendanceStatusLate, Note: "bus"},
		{StudentID: "s2", Status: models.AttendanceStatusPresent},
	}, rows)
}

func TestReadMarksFileRejectsUnknownExtension(t *testing.T) {
	_, err := readMarksFile("marks.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
