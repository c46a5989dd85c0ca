package infrastructure

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_TracingDisabled(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)

	// the noop tracer still yields usable spans
	_, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()
}

func TestInitializeOTel_TracingToWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.TraceWriter = &buf

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	_, span := providers.Tracer.Start(context.Background(), "load")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"load"`)
	assert.Contains(t, buf.String(), "reportcards")
}

func TestPipelineMetrics(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRowsLoaded(ctx, 3)
	m.RecordRowsDropped(ctx, "invalid_score", 1)
	m.RecordRowsDropped(ctx, "missing_field", 0)
	m.RecordDocument(ctx, true)
	m.RecordDocument(ctx, false)
	m.RecordStep(ctx, "load", 25*time.Millisecond)

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}

	assert.Equal(t, 3.0, values["reportcard_rows_loaded_total"])
	assert.Equal(t, 1.0, values["reportcard_rows_dropped_total"])
	assert.Equal(t, 1.0, values["reportcard_documents_generated_total"])
	assert.Equal(t, 1.0, values["reportcard_documents_failed_total"])

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, strings.Join(names, " "), "reportcard_step_duration_seconds")
}

func TestPipelineMetrics_NilIsNoop(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordRowsLoaded(ctx, 1)
		m.RecordRowsDropped(ctx, "x", 1)
		m.RecordDocument(ctx, true)
		m.RecordStep(ctx, "load", time.Second)
	})
}

func TestWriteMetrics(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	m.RecordRowsLoaded(context.Background(), 7)

	path := filepath.Join(t.TempDir(), "reportcards.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "reportcard_rows_loaded_total 7")

	var nilProviders *OTelProviders
	assert.Error(t, nilProviders.WriteMetrics(path))
}
