package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcards/pkg/contracts/domain"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"90", 90, true},
		{" 85.5 ", 85.5, true},
		{"-3", -3, true},
		{"1e2", 100, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"0x1A", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-infinity", 0, false},
		{"1e400", 0, false},
		{"1,000", 0, false},
		{"90%", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseScore(tt.in)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
				assert.False(t, math.IsNaN(got))
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.RawRecord
		kept    []domain.CleanRecord
		dropped []domain.DroppedRow
	}{
		{
			name: "all valid",
			records: []domain.RawRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: "90"},
				{Row: 3, StudentID: "S1", Name: "Alice", Subject: "Sci", Score: "80"},
			},
			kept: []domain.CleanRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: 90},
				{Row: 3, StudentID: "S1", Name: "Alice", Subject: "Sci", Score: 80},
			},
		},
		{
			name: "missing name is dropped",
			records: []domain.RawRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: "90"},
				{Row: 3, StudentID: "S2", Name: "", Subject: "Math", Score: "70"},
			},
			kept: []domain.CleanRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: 90},
			},
			dropped: []domain.DroppedRow{
				{Row: 3, StudentID: "S2", Reason: domain.DropReasonMissingField, Field: "Name"},
			},
		},
		{
			name: "whitespace only counts as missing",
			records: []domain.RawRecord{
				{Row: 2, StudentID: "  ", Name: "Alice", Subject: "Math", Score: "90"},
			},
			dropped: []domain.DroppedRow{
				{Row: 2, Reason: domain.DropReasonMissingField, Field: "Student ID", Value: "  "},
			},
		},
		{
			name: "first missing column is reported",
			records: []domain.RawRecord{
				{Row: 2, StudentID: "S1", Name: "", Subject: "", Score: ""},
			},
			dropped: []domain.DroppedRow{
				{Row: 2, StudentID: "S1", Reason: domain.DropReasonMissingField, Field: "Name"},
			},
		},
		{
			name: "non numeric score",
			records: []domain.RawRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: "90"},
				{Row: 3, StudentID: "S1", Name: "Alice", Subject: "Art", Score: "abc"},
			},
			kept: []domain.CleanRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: 90},
			},
			dropped: []domain.DroppedRow{
				{Row: 3, StudentID: "S1", Reason: domain.DropReasonInvalidScore, Field: "Score", Value: "abc"},
			},
		},
		{
			name: "identity fields are trimmed",
			records: []domain.RawRecord{
				{Row: 2, StudentID: " S1 ", Name: "Alice ", Subject: " Math", Score: " 75 "},
			},
			kept: []domain.CleanRecord{
				{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: 75},
			},
		},
		{
			name: "empty input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clean(tt.records)

			if len(tt.kept) == 0 {
				assert.Empty(t, result.Records)
			} else {
				assert.Equal(t, tt.kept, result.Records)
			}
			assert.Equal(t, tt.dropped, result.Dropped)
			assert.Equal(t, len(tt.records), len(result.Records)+len(result.Dropped))
		})
	}
}

func TestCleanKeepsOnlyCompleteFiniteRecords(t *testing.T) {
	records := []domain.RawRecord{
		{Row: 2, StudentID: "S1", Name: "Alice", Subject: "Math", Score: "90"},
		{Row: 3, StudentID: "S1", Name: "Alice", Subject: "Sci", Score: "NaN"},
		{Row: 4, StudentID: "", Name: "Bob", Subject: "Math", Score: "70"},
		{Row: 5, StudentID: "S2", Name: "Bob", Subject: "", Score: "70"},
		{Row: 6, StudentID: "S2", Name: "Bob", Subject: "Art", Score: "1e400"},
		{Row: 7, StudentID: "S3", Name: "Cara", Subject: "Art", Score: "66.5"},
	}

	result := Clean(records)

	require.Len(t, result.Records, 2)
	for _, r := range result.Records {
		assert.NotEmpty(t, r.StudentID)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Subject)
		assert.False(t, math.IsNaN(r.Score) || math.IsInf(r.Score, 0))
	}
	assert.Equal(t, 2, result.DroppedBy(domain.DropReasonMissingField))
	assert.Equal(t, 2, result.DroppedBy(domain.DropReasonInvalidScore))
	assert.Equal(t, len(records), len(result.Records)+len(result.Dropped))
}
