package dataprocessing

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "reportcards/internal/errors"
	"reportcards/pkg/contracts/domain"
)

// Table is a loaded sheet: its header and one RawRecord per data row.
type Table struct {
	Sheet   string
	Columns []string
	Records []domain.RawRecord
}

// Loader reads score spreadsheets
type Loader struct {
	sheet  string
	logger *slog.Logger
}

// NewLoader creates a loader. An empty sheet selects the first worksheet.
func NewLoader(sheet string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		sheet:  sheet,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads the file at path. It fails with FILE_NOT_FOUND when the path is
// not a readable file and with SCHEMA when a required column is absent.
func (l *Loader) Load(path string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewFileNotFoundError(path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewFileNotFoundError(path, fmt.Errorf("%s is a directory", path))
	}

	var (
		rows  [][]string
		sheet string
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	default:
		rows, sheet, err = l.readWorkbook(path)
	}
	if err != nil {
		if stderrors.Is(err, fs.ErrPermission) || stderrors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(path, err)
		}
		return nil, err
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, err
	}
	table.Sheet = sheet

	l.logger.Info("Loaded input sheet",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Records)))

	return table, nil
}

func (l *Loader) readWorkbook(path string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrPermission) {
			return nil, "", err
		}
		return nil, "", apperrors.NewUnexpectedError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", apperrors.NewUnexpectedError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	}

	// Raw values keep numeric cells unformatted ("90" rather than "90.00")
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", apperrors.NewUnexpectedError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}

	l.logger.Debug("Read workbook",
		slog.String("sheet", sheet),
		slog.Any("sheets", f.GetSheetList()),
		slog.Int("total_rows", len(rows)))

	return rows, sheet, nil
}

// readCSV checks the header against the required columns before any data
// row is parsed, so a schema problem is reported ahead of a malformed row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewUnexpectedError("failed to parse CSV header", err).WithContext("path", path)
	}
	// Excel writes a UTF-8 BOM in front of the first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if _, err := mapHeader(header); err != nil {
		return nil, err
	}

	rows := [][]string{header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewUnexpectedError("failed to parse CSV", err).WithContext("path", path)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// mapHeader trims the header cells and indexes them by name. It fails with
// SCHEMA when a required column is absent.
func mapHeader(row []string) (map[string]int, error) {
	header := make([]string, len(row))
	for i, h := range row {
		header[i] = strings.TrimSpace(h)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		// first occurrence wins on duplicate headers
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(missing).WithContext("columns", header)
	}
	return index, nil
}

// buildTable maps the header row and converts data rows to raw records.
// The schema check happens before any data row is read.
func buildTable(rows [][]string) (*Table, error) {
	var first []string
	if len(rows) > 0 {
		first = rows[0]
	}
	columnIndex, err := mapHeader(first)
	if err != nil {
		return nil, err
	}

	cell := func(row []string, col string) string {
		idx := columnIndex[col]
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}

	header := make([]string, len(first))
	for i, h := range first {
		header[i] = strings.TrimSpace(h)
	}

	table := &Table{Columns: header}
	for i, row := range rows[1:] {
		table.Records = append(table.Records, domain.RawRecord{
			// header is sheet row 1
			Row:       i + 2,
			StudentID: cell(row, domain.ColumnStudentID),
			Name:      cell(row, domain.ColumnName),
			Subject:   cell(row, domain.ColumnSubject),
			Score:     cell(row, domain.ColumnScore),
		})
	}
	return table, nil
}
