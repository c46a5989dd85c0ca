package operations

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"reportcards/pkg/contracts/domain"
)

func TestFileDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.pdf")
	content := []byte("%PDF-1.3 test")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	size, digest, err := fileDigest(path)
	require.NoError(t, err)

	sum := blake2b.Sum256(content)
	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)

	_, _, err = fileDigest(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestRunManifestFinish(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "report_card_S1.pdf")
	require.NoError(t, os.WriteFile(generated, []byte("card"), 0o644))

	load := NewStepState(StepIDLoad, "Load Spreadsheet")
	load.Start()
	load.SetMetadata("rows", 3)
	load.Complete()

	state := NewRunState("run-1", "scores.xlsx")
	state.Steps = []*StepState{load}
	state.Clean = domain.CleanResult{
		Records: []domain.CleanRecord{{StudentID: "S1"}, {StudentID: "S2"}},
		Dropped: []domain.DroppedRow{{Row: 4, Reason: domain.DropReasonInvalidScore}},
	}
	state.Groups = []domain.StudentGroup{{StudentID: "S1"}, {StudentID: "S2"}}
	state.Outcomes = []domain.RenderOutcome{
		{StudentID: "S1", Path: generated, Status: domain.OutcomeGenerated},
		{StudentID: "S2", Path: filepath.Join(dir, "report_card_S2.pdf"), Status: domain.OutcomeFailed, Err: errors.New("disk full")},
	}

	m := NewRunManifest("run-1", "scores.xlsx")
	require.NoError(t, m.Finish(state, nil))

	assert.Equal(t, RunStatusCompleted, m.Status)
	assert.Equal(t, 2, m.RowsKept)
	assert.Equal(t, 1, m.Dropped[domain.DropReasonInvalidScore])
	assert.Equal(t, 2, m.Students)
	require.Len(t, m.Steps, 1)
	assert.Equal(t, 3, m.Steps[0].Metadata["rows"])
	assert.NotEmpty(t, m.Steps[0].Duration)

	require.Len(t, m.Documents, 2)
	assert.Equal(t, int64(4), m.Documents[0].Size)
	assert.Len(t, m.Documents[0].Digest, 64)
	assert.Equal(t, "disk full", m.Documents[1].Error)

	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, m.SaveToFile(path))
	loaded, err := LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Documents, loaded.Documents)
}

func TestRunManifestFinishMissingDocument(t *testing.T) {
	state := NewRunState("run-2", "scores.xlsx")
	state.Outcomes = []domain.RenderOutcome{
		{StudentID: "S1", Path: filepath.Join(t.TempDir(), "gone.pdf"), Status: domain.OutcomeGenerated},
	}

	err := NewRunManifest("run-2", "scores.xlsx").Finish(state, errors.New("render failed"))
	assert.Error(t, err)
}
