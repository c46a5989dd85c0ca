package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"reportcards/internal/dataprocessing"
	apperrors "reportcards/internal/errors"
	"reportcards/internal/infrastructure"
	"reportcards/internal/render"
	"reportcards/internal/validation"
	"reportcards/pkg/contracts/domain"
)

const tracerName = "reportcards.pipeline"

// Options configures a Pipeline. Zero values are usable: output goes to the
// working directory, tracing and metrics are disabled.
type Options struct {
	OutputDir string
	// FailFast stops the run at the first student whose card fails.
	FailFast bool
	// ManifestPath, when set, receives the JSON run manifest.
	ManifestPath string
	// OnGenerated is called after each card is written, in group order.
	OnGenerated func(domain.RenderOutcome)

	Tracer  trace.Tracer
	Metrics *infrastructure.PipelineMetrics
	Logger  *slog.Logger
}

// Pipeline runs load, clean, aggregate and render in sequence
type Pipeline struct {
	steps     []Step
	opts      Options
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewPipeline wires the standard steps around loader and renderer
func NewPipeline(loader *dataprocessing.Loader, renderer render.Renderer, opts Options) *Pipeline {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	logger := opts.Logger.With(slog.String("component", "pipeline"))
	opts.Logger = logger

	return &Pipeline{
		steps: []Step{
			NewLoadStep(loader, opts.Metrics),
			NewCleanStep(logger, opts.Metrics),
			NewAggregateStep(logger),
			NewRenderStep(renderer, opts),
		},
		opts:      opts,
		logger:    logger,
		validator: validation.NewFileValidator(logger),
	}
}

// Steps returns the steps in execution order
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Run processes the spreadsheet at inputPath. The report is returned even
// when err is non-nil and describes everything done before the failure.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*domain.RunReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	ctx, span := p.opts.Tracer.Start(ctx, "reportcards.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.input", inputPath),
		))
	defer span.End()

	p.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", runID),
		slog.String("input", inputPath),
		slog.String("output_dir", p.opts.OutputDir))
	start := time.Now()

	state := NewRunState(runID, inputPath)
	manifest := NewRunManifest(runID, inputPath)

	var runErr error
	for _, step := range p.steps {
		st := NewStepState(step.ID(), step.Name())
		state.Steps = append(state.Steps, st)

		if runErr != nil {
			st.Skip("previous step failed")
			continue
		}
		runErr = p.executeStep(ctx, step, st, state)
	}

	if p.opts.ManifestPath != "" {
		if err := p.saveManifest(manifest, state, runErr); err != nil {
			p.logger.ErrorContext(ctx, "manifest_error",
				slog.String("path", p.opts.ManifestPath),
				slog.String("error", err.Error()))
			if runErr == nil {
				runErr = apperrors.NewUnexpectedError("failed to write run manifest", err)
			}
		}
	}

	report := state.Report()
	status := RunStatusCompleted
	if runErr != nil {
		status = RunStatusFailed
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}

	p.logger.InfoContext(ctx, "run_complete",
		slog.String("run_id", runID),
		slog.String("status", status),
		slog.Int("rows_loaded", report.RowsLoaded),
		slog.Int("rows_dropped", len(report.Clean.Dropped)),
		slog.Int("students", len(report.Groups)),
		slog.Int("generated", len(report.Generated())),
		slog.Int("failed", len(report.Failed())),
		slog.Duration("duration", time.Since(start)))

	return report, runErr
}

func (p *Pipeline) executeStep(ctx context.Context, step Step, st *StepState, state *RunState) error {
	ctx, span := p.opts.Tracer.Start(ctx, "step."+step.ID(),
		trace.WithAttributes(attribute.String("step.name", step.Name())))
	defer span.End()

	p.logger.DebugContext(ctx, "stage_start", slog.String("step", step.ID()))
	st.Start()

	err := step.Execute(ctx, state)
	p.opts.Metrics.RecordStep(ctx, step.ID(), st.Duration())

	switch step.ID() {
	case StepIDLoad:
		st.SetMetadata("rows", state.RowsLoaded())
	case StepIDClean:
		st.SetMetadata("kept", len(state.Clean.Records))
		st.SetMetadata("dropped", len(state.Clean.Dropped))
	case StepIDAggregate:
		st.SetMetadata("students", len(state.Groups))
	case StepIDRender:
		st.SetMetadata("documents", len(state.Outcomes))
	}

	if err != nil {
		st.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "stage_error",
			slog.String("step", step.ID()),
			slog.String("kind", string(apperrors.KindOf(err))),
			slog.String("error", err.Error()))
		return err
	}

	st.Complete()
	p.logger.DebugContext(ctx, "stage_complete",
		slog.String("step", step.ID()),
		slog.Duration("duration", st.Duration()))
	return nil
}

func (p *Pipeline) saveManifest(m *RunManifest, state *RunState, runErr error) error {
	if err := m.Finish(state, runErr); err != nil {
		return err
	}
	if err := p.validator.ValidateOutputFile(p.opts.ManifestPath); err != nil {
		return err
	}
	return m.SaveToFile(p.opts.ManifestPath)
}
