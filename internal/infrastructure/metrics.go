package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded during a run.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	RowsLoaded         metric.Int64Counter
	RowsDropped        metric.Int64Counter
	DocumentsGenerated metric.Int64Counter
	DocumentsFailed    metric.Int64Counter
	StepDuration       metric.Float64Histogram
}

// NewPipelineMetrics creates the report card instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"reportcard_rows_loaded",
		metric.WithDescription("Rows read from the input spreadsheet"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"reportcard_rows_dropped",
		metric.WithDescription("Rows excluded during cleaning, by reason"),
	)
	if err != nil {
		return nil, err
	}

	generated, err := meter.Int64Counter(
		"reportcard_documents_generated",
		metric.WithDescription("Report cards written"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(
		"reportcard_documents_failed",
		metric.WithDescription("Report cards whose rendering failed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"reportcard_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:         rowsLoaded,
		RowsDropped:        rowsDropped,
		DocumentsGenerated: generated,
		DocumentsFailed:    failed,
		StepDuration:       stepDuration,
	}, nil
}

// RecordRowsLoaded adds n loaded rows
func (m *PipelineMetrics) RecordRowsLoaded(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(n))
}

// RecordRowsDropped adds n dropped rows for reason
func (m *PipelineMetrics) RecordRowsDropped(ctx context.Context, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordDocument counts one rendered (or failed) report card
func (m *PipelineMetrics) RecordDocument(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.DocumentsGenerated.Add(ctx, 1)
		return
	}
	m.DocumentsFailed.Add(ctx, 1)
}

// RecordStep records how long a pipeline step took
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("step", step)))
}
