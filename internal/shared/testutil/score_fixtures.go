package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ScoreHeader is the header row of a well-formed score sheet
var ScoreHeader = []any{"Student ID", "Name", "Subject", "Score"}

// SampleScores returns the rows of the two-student example sheet:
// S1 Alice (Math 90, Sci 80) and S2 Bob (Math 70).
func SampleScores() [][]any {
	return [][]any{
		ScoreHeader,
		{"S1", "Alice", "Math", 90},
		{"S1", "Alice", "Sci", 80},
		{"S2", "Bob", "Math", 70},
	}
}

// WriteWorkbook saves rows to an .xlsx file in a fresh temp directory and
// returns its path. The first row is written as the header.
func WriteWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Scores"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("failed to name sheet: %v", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("bad coordinates: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("failed to write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "student_scores.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save temp workbook: %v", err)
	}
	return path
}

// WriteCSV saves rows to a .csv file in a fresh temp directory.
func WriteCSV(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "student_scores.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}
