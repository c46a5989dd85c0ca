// Package presenter prints run results to the console.
package presenter

import (
	"io"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	apperrors "reportcards/internal/errors"
	"reportcards/internal/render"
	"reportcards/pkg/contracts/domain"
)

// Presenter writes confirmation and error lines to the console
type Presenter struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
	heading *color.Color
}

// New creates a presenter writing to out
func New(out io.Writer) *Presenter {
	return &Presenter{
		out:     out,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		heading: color.New(color.FgYellow),
	}
}

// Generated prints the confirmation line for a written report card
func (p *Presenter) Generated(o domain.RenderOutcome) {
	p.success.Fprintf(p.out, "Generated: %s\n", filepath.Base(o.Path))
}

// Error prints the console message for err
func (p *Presenter) Error(err error) {
	if err == nil {
		return
	}
	p.failure.Fprintln(p.out, apperrors.UserMessage(err))
}

// Summary prints one table row per student with the outcome of its card.
func (p *Presenter) Summary(report *domain.RunReport) {
	if report == nil || len(report.Groups) == 0 {
		return
	}

	status := make(map[string]domain.OutcomeStatus, len(report.Outcomes))
	for _, o := range report.Outcomes {
		status[o.StudentID] = o.Status
	}

	p.heading.Fprintln(p.out, "\nReport Card Summary")
	table := tablewriter.NewWriter(p.out)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Student ID", "Name", "Subjects", "Total", "Average", "Status"})
	for _, g := range report.Groups {
		s := string(status[g.StudentID])
		if s == "" {
			s = "skipped"
		}
		table.Append([]string{
			g.StudentID,
			g.Name,
			strconv.Itoa(len(g.Subjects)),
			render.FormatScore(g.Total),
			render.FormatAverage(g.Average),
			s,
		})
	}
	table.Render()

	if n := len(report.Clean.Dropped); n > 0 {
		p.heading.Fprintf(p.out, "%d row(s) dropped during validation\n", n)
	}
}
