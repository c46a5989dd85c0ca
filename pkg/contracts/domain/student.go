// Package domain defines the records that flow through a report card run,
// from raw spreadsheet rows to per-student render outcomes.
package domain

import (
	"time"
)

// Required spreadsheet columns
const (
	ColumnStudentID = "Student ID"
	ColumnName      = "Name"
	ColumnSubject   = "Subject"
	ColumnScore     = "Score"
)

// RequiredColumns lists the columns every input sheet must expose, in the
// order they are reported when missing.
var RequiredColumns = []string{ColumnStudentID, ColumnName, ColumnSubject, ColumnScore}

// RawRecord is one input row as loaded, before validation.
// The column tag names the source column; validation errors report it.
type RawRecord struct {
	Row       int    `json:"row"`
	StudentID string `json:"student_id" column:"Student ID" validate:"required"`
	Name      string `json:"name" column:"Name" validate:"required"`
	Subject   string `json:"subject" column:"Subject" validate:"required"`
	Score     string `json:"score" column:"Score" validate:"required"`
}

// Field returns the raw value for one of the required column names.
func (r RawRecord) Field(column string) string {
	switch column {
	case ColumnStudentID:
		return r.StudentID
	case ColumnName:
		return r.Name
	case ColumnSubject:
		return r.Subject
	case ColumnScore:
		return r.Score
	}
	return ""
}

// CleanRecord is a RawRecord that passed validation and numeric coercion.
// Identity fields are non-empty and Score is finite.
type CleanRecord struct {
	Row       int     `json:"row"`
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Subject   string  `json:"subject"`
	Score     float64 `json:"score"`
}

// DropReason explains why a row was excluded during cleaning
type DropReason string

const (
	DropReasonMissingField DropReason = "missing_field"
	DropReasonInvalidScore DropReason = "invalid_score"
)

// DroppedRow records a row excluded during cleaning.
type DroppedRow struct {
	Row       int        `json:"row"`
	StudentID string     `json:"student_id,omitempty"`
	Reason    DropReason `json:"reason"`
	Field     string     `json:"field"`
	Value     string     `json:"value,omitempty"`
}

// CleanResult is the output of the cleaning step: the surviving records plus
// a summary of everything that was excluded.
type CleanResult struct {
	Records []CleanRecord `json:"records"`
	Dropped []DroppedRow  `json:"dropped"`
}

// DroppedBy counts dropped rows with the given reason
func (c CleanResult) DroppedBy(reason DropReason) int {
	n := 0
	for _, d := range c.Dropped {
		if d.Reason == reason {
			n++
		}
	}
	return n
}

// SubjectScore is one subject line on a report card.
type SubjectScore struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// StudentGroup aggregates all clean records that share a student id.
type StudentGroup struct {
	StudentID string `json:"student_id"`
	// Name is the name on the first record seen for this student.
	Name string `json:"name"`
	// Names lists every distinct name observed, in input order.
	Names    []string       `json:"names"`
	Subjects []SubjectScore `json:"subjects"`
	Total    float64        `json:"total"`
	Average  float64        `json:"average"`
}

// NameConsistent reports whether every row of the group carried the same name.
func (g StudentGroup) NameConsistent() bool {
	return len(g.Names) <= 1
}

// OutcomeStatus is the result of rendering one report card
type OutcomeStatus string

const (
	OutcomeGenerated OutcomeStatus = "generated"
	OutcomeFailed    OutcomeStatus = "failed"
)

// RenderOutcome records what happened to one student's report card.
type RenderOutcome struct {
	StudentID string        `json:"student_id"`
	Name      string        `json:"name"`
	Path      string        `json:"path"`
	Status    OutcomeStatus `json:"status"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// RunReport is the structured result of one pipeline run.
type RunReport struct {
	RunID      string          `json:"run_id"`
	InputPath  string          `json:"input_path"`
	RowsLoaded int             `json:"rows_loaded"`
	Clean      CleanResult     `json:"clean"`
	Groups     []StudentGroup  `json:"groups"`
	Outcomes   []RenderOutcome `json:"outcomes"`
}

// Generated returns the outcomes that produced a document.
func (r *RunReport) Generated() []RenderOutcome {
	return r.filter(OutcomeGenerated)
}

// Failed returns the outcomes whose rendering failed.
func (r *RunReport) Failed() []RenderOutcome {
	return r.filter(OutcomeFailed)
}

func (r *RunReport) filter(status OutcomeStatus) []RenderOutcome {
	var out []RenderOutcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
