package operations

import (
	"reportcards/internal/dataprocessing"
	"reportcards/pkg/contracts/domain"
)

// RunState carries data from one step to the next. Each step reads what
// earlier steps stored and adds its own result.
type RunState struct {
	RunID     string
	InputPath string

	Table    *dataprocessing.Table
	Clean    domain.CleanResult
	Groups   []domain.StudentGroup
	Outcomes []domain.RenderOutcome

	Steps []*StepState
}

// NewRunState creates the state for a run over inputPath
func NewRunState(runID, inputPath string) *RunState {
	return &RunState{
		RunID:     runID,
		InputPath: inputPath,
	}
}

// RowsLoaded is the number of data rows read from the input
func (s *RunState) RowsLoaded() int {
	if s.Table == nil {
		return 0
	}
	return len(s.Table.Records)
}

// Report summarizes the state as a RunReport
func (s *RunState) Report() *domain.RunReport {
	return &domain.RunReport{
		RunID:      s.RunID,
		InputPath:  s.InputPath,
		RowsLoaded: s.RowsLoaded(),
		Clean:      s.Clean,
		Groups:     s.Groups,
		Outcomes:   s.Outcomes,
	}
}
