package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// markRow is one line of a roll-call sheet.
type markRow struct {
	StudentID string
	Status    models.AttendanceStatus
	Note      string
}

var errMissingColumn = errors.New("marks file needs studentId and status columns")

// readMarksFile loads marks from a .csv or .xlsx file. The first row is a header;
// the columns studentId and status are required and note is optional.
func readMarksFile(path string) ([]markRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open marks file: %w", err)
		}
		defer f.Close()
		return readMarksCSV(f)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open marks workbook: %w", err)
		}
		defer f.Close()
		return readMarksWorkbook(f)
	default:
		return nil, fmt.Errorf("unsupported marks file %q: use .csv or .xlsx", filepath.Base(path))
	}
}

func readMarksCSV(r io.Reader) ([]markRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read marks csv: %w", err)
	}
	return parseMarkRecords(records)
}

// readMarksWorkbook reads the first sheet of the workbook.
func readMarksWorkbook(f *excelize.File) ([]markRow, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("marks workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return parseMarkRecords(rows)
}

func parseMarkRecords(records [][]string) ([]markRow, error) {
	if len(records) == 0 {
		return nil, errMissingColumn
	}
	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, okID := cols["studentid"]
	statusCol, okStatus := cols["status"]
	if !okID || !okStatus {
		return nil, errMissingColumn
	}
	noteCol, hasNote := cols["note"]

	rows := make([]markRow, 0, len(records)-1)
	for i, record := range records[1:] {
		id := cell(record, idCol)
		if id == "" {
			continue
		}
		status := models.AttendanceStatus(strings.ToLower(cell(record, statusCol)))
		if !status.Valid() {
			return nil, fmt.Errorf("line %d: invalid status %q", i+2, cell(record, statusCol))
		}
		row := markRow{StudentID: id, Status: status}
		if hasNote {
			row.Note = cell(record, noteCol)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
