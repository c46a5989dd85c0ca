package operations

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	"reportcards/pkg/contracts/domain"
)

// Run statuses recorded in the manifest
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunManifest is the JSON record of one run: its steps, what cleaning
// dropped, and every document written.
type RunManifest struct {
	RunID     string    `json:"run_id"`
	Input     string    `json:"input"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`

	RowsLoaded int                       `json:"rows_loaded"`
	RowsKept   int                       `json:"rows_kept"`
	Dropped    map[domain.DropReason]int `json:"dropped"`
	Students   int                       `json:"students"`

	Steps     []StageExecution `json:"steps"`
	Documents []DocumentRecord `json:"documents"`
}

// StageExecution tracks the execution of a single step
type StageExecution struct {
	StageID   string         `json:"stage_id"`
	StageName string         `json:"stage_name"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Duration  string         `json:"duration"`
	Status    StepStatus     `json:"status"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DocumentRecord describes one rendered report card
type DocumentRecord struct {
	StudentID string               `json:"student_id"`
	Name      string               `json:"name"`
	Path      string               `json:"path"`
	Status    domain.OutcomeStatus `json:"status"`
	Size      int64                `json:"size,omitempty"`
	// Digest is the hex BLAKE2b-256 of the file contents
	Digest string `json:"blake2b_256,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewRunManifest starts a manifest for a run
func NewRunManifest(runID, input string) *RunManifest {
	return &RunManifest{
		RunID:     runID,
		Input:     input,
		StartTime: time.Now(),
		Status:    "running",
		Dropped:   make(map[domain.DropReason]int),
		Steps:     []StageExecution{},
		Documents: []DocumentRecord{},
	}
}

// Finish fills the manifest from the final run state. Generated documents
// are hashed from disk.
func (m *RunManifest) Finish(state *RunState, runErr error) error {
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime).String()
	m.Status = RunStatusCompleted
	if runErr != nil {
		m.Status = RunStatusFailed
		m.Error = runErr.Error()
	}

	m.RowsLoaded = state.RowsLoaded()
	m.RowsKept = len(state.Clean.Records)
	for _, d := range state.Clean.Dropped {
		m.Dropped[d.Reason]++
	}
	m.Students = len(state.Groups)

	m.Steps = m.Steps[:0]
	for _, st := range state.Steps {
		m.Steps = append(m.Steps, stageExecution(st))
	}

	m.Documents = m.Documents[:0]
	for _, o := range state.Outcomes {
		doc := DocumentRecord{
			StudentID: o.StudentID,
			Name:      o.Name,
			Path:      o.Path,
			Status:    o.Status,
		}
		if o.Err != nil {
			doc.Error = o.Err.Error()
		}
		if o.Status == domain.OutcomeGenerated {
			size, digest, err := fileDigest(o.Path)
			if err != nil {
				return fmt.Errorf("failed to hash %s: %w", o.Path, err)
			}
			doc.Size = size
			doc.Digest = digest
		}
		m.Documents = append(m.Documents, doc)
	}
	return nil
}

func stageExecution(st *StepState) StageExecution {
	st.mu.RLock()
	defer st.mu.RUnlock()

	exec := StageExecution{
		StageID:   st.ID,
		StageName: st.Name,
		StartTime: st.StartTime,
		EndTime:   st.EndTime,
		Status:    st.Status,
		Message:   st.Message,
	}
	if st.StartTime != nil && st.EndTime != nil {
		exec.Duration = st.EndTime.Sub(*st.StartTime).String()
	}
	if st.Error != nil {
		exec.Error = st.Error.Error()
	}
	if len(st.Metadata) > 0 {
		exec.Metadata = make(map[string]any, len(st.Metadata))
		for k, v := range st.Metadata {
			exec.Metadata[k] = v
		}
	}
	return exec
}

// fileDigest returns the size and hex BLAKE2b-256 digest of a file
func fileDigest(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return 0, "", err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}
