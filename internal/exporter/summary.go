package exporter

import (
	"strconv"

	"reportcards/internal/render"
	"reportcards/pkg/contracts/domain"
)

// SummaryHeaders are the columns of the per-student summary CSV
var SummaryHeaders = []string{"student_id", "name", "subjects", "total", "average", "file", "status", "error"}

// SummaryExporter writes one CSV row per student of a run
type SummaryExporter struct {
	writer *CSVWriter
}

// NewSummaryExporter creates a summary exporter
func NewSummaryExporter(writer *CSVWriter) *SummaryExporter {
	return &SummaryExporter{writer: writer}
}

// Export writes the summary of report to filePath. Students that were never
// rendered, because an earlier failure stopped the run, have an empty status.
func (e *SummaryExporter) Export(filePath string, report *domain.RunReport) error {
	return e.writer.WriteCSV(filePath, WriteOptions{
		Headers:   SummaryHeaders,
		Records:   SummaryRecords(report),
		BOMPrefix: true,
	})
}

// SummaryRecords builds the CSV rows in group order
func SummaryRecords(report *domain.RunReport) [][]string {
	outcomes := make(map[string]domain.RenderOutcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		outcomes[o.StudentID] = o
	}

	records := make([][]string, 0, len(report.Groups))
	for _, g := range report.Groups {
		row := []string{
			g.StudentID,
			g.Name,
			strconv.Itoa(len(g.Subjects)),
			render.FormatScore(g.Total),
			render.FormatAverage(g.Average),
			"",
			"",
			"",
		}
		if o, ok := outcomes[g.StudentID]; ok {
			row[5] = o.Path
			row[6] = string(o.Status)
			if o.Err != nil {
				row[7] = o.Err.Error()
			}
		}
		records = append(records, row)
	}
	return records
}
