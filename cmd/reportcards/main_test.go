package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcards/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunScenario(t *testing.T) {
	input := testutil.WriteWorkbook(t, "", [][]any{
		testutil.ScoreHeader,
		{1, "Alice", "Math", 90},
		{1, "Alice", "Science", 80},
		{2, "Bob", "Math", "N/A"},
	})
	out := t.TempDir()

	code, stdout, _ := runCLI(t, "-out", out, input)

	assert.Equal(t, 0, code)
	assert.Equal(t, "Generated: report_card_1.pdf\n", stdout)
	assert.FileExists(t, filepath.Join(out, "report_card_1.pdf"))
	assert.NoFileExists(t, filepath.Join(out, "report_card_2.pdf"))
}

func TestRunMissingInput(t *testing.T) {
	out := t.TempDir()
	code, stdout, _ := runCLI(t, "-out", out, "-input", filepath.Join(t.TempDir(), "student_scores.xlsx"))

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: The specified Excel file was not found.\n", stdout)
}

func TestRunMissingColumns(t *testing.T) {
	input := testutil.WriteWorkbook(t, "", [][]any{
		{"Student ID", "Name", "Score"},
		{"S1", "Alice", 90},
	})
	out := t.TempDir()

	code, stdout, _ := runCLI(t, "-out", out, input)

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Excel file does not contain the required columns. (missing: Subject)\n", stdout)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunCorruptWorkbook(t *testing.T) {
	input := filepath.Join(t.TempDir(), "student_scores.xlsx")
	require.NoError(t, os.WriteFile(input, []byte("garbage"), 0o644))

	code, stdout, _ := runCLI(t, "-out", t.TempDir(), input)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "An unexpected error occurred: "), stdout)
}

func TestRunPositionalOverridesInputFlag(t *testing.T) {
	input := testutil.WriteWorkbook(t, "", testutil.SampleScores())
	out := t.TempDir()

	code, stdout, _ := runCLI(t, "-out", out, "-input", "does-not-exist.xlsx", input)

	assert.Equal(t, 0, code)
	assert.Equal(t, "Generated: report_card_S1.pdf\nGenerated: report_card_S2.pdf\n", stdout)
}

func TestRunArtifacts(t *testing.T) {
	input := testutil.WriteWorkbook(t, "", testutil.SampleScores())
	dir := t.TempDir()
	out := filepath.Join(dir, "cards")
	manifest := filepath.Join(dir, "run", "manifest.json")
	summaryCSV := filepath.Join(dir, "run", "summary.csv")

	code, stdout, _ := runCLI(t,
		"-out", out,
		"-manifest", manifest,
		"-summary-csv", summaryCSV,
		"-summary",
		input)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Generated: report_card_S1.pdf")
	assert.Contains(t, stdout, "Report Card Summary")
	assert.FileExists(t, manifest)

	f, err := os.Open(summaryCSV)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "S1", records[1][0])
	assert.Equal(t, "170", records[1][3])
	assert.Equal(t, "85.00", records[1][4])
	assert.Equal(t, "generated", records[1][6])
}

func TestRunTelemetryFiles(t *testing.T) {
	input := testutil.WriteWorkbook(t, "", testutil.SampleScores())
	dir := t.TempDir()
	t.Setenv("REPORTCARD_TELEMETRY_TRACE_FILE", filepath.Join(dir, "trace.json"))
	t.Setenv("REPORTCARD_TELEMETRY_METRICS_FILE", filepath.Join(dir, "metrics.prom"))

	code, _, _ := runCLI(t, "-out", filepath.Join(dir, "out"), input)
	require.Equal(t, 0, code)

	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "reportcard_documents_generated_total 2")

	trace, err := os.ReadFile(filepath.Join(dir, "trace.json"))
	require.NoError(t, err)
	assert.Contains(t, string(trace), "reportcards.run")
}

func TestRunInvalidEngine(t *testing.T) {
	code, stdout, _ := runCLI(t, "-engine", "latex", "x.xlsx")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Error: invalid configuration")
}

func TestRunFlagOverridesInvalidEnv(t *testing.T) {
	t.Setenv("REPORTCARD_RENDER_ENGINE", "bogus")
	input := testutil.WriteWorkbook(t, "", [][]any{
		testutil.ScoreHeader,
		{"S1", "Alice", "Math", 90},
	})
	out := t.TempDir()

	code, stdout, _ := runCLI(t, "-engine", "pdf", "-out", out, input)

	assert.Equal(t, 0, code)
	assert.Equal(t, "Generated: report_card_S1.pdf\n", stdout)
	assert.FileExists(t, filepath.Join(out, "report_card_S1.pdf"))
}

func TestRunInvalidEnvWithoutFlag(t *testing.T) {
	t.Setenv("REPORTCARD_RENDER_ENGINE", "bogus")

	code, stdout, _ := runCLI(t, "-out", t.TempDir(), "x.xlsx")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Error: invalid configuration")
	assert.Contains(t, stdout, "bogus")
}

func TestRunBadFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "-nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: reportcards")
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "reportcards v"))
}
