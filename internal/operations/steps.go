package operations

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reportcards/internal/dataprocessing"
	apperrors "reportcards/internal/errors"
	"reportcards/internal/infrastructure"
	"reportcards/internal/render"
	"reportcards/internal/validation"
	"reportcards/pkg/contracts/domain"
)

// Step IDs
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDAggregate = "aggregate"
	StepIDRender    = "render"
)

// LoadStep reads the input spreadsheet
type LoadStep struct {
	BaseStep
	loader  *dataprocessing.Loader
	metrics *infrastructure.PipelineMetrics
}

// NewLoadStep creates the load step
func NewLoadStep(loader *dataprocessing.Loader, metrics *infrastructure.PipelineMetrics) *LoadStep {
	return &LoadStep{
		BaseStep: NewBaseStep(StepIDLoad, "Load Spreadsheet"),
		loader:   loader,
		metrics:  metrics,
	}
}

// Execute implements Step
func (s *LoadStep) Execute(ctx context.Context, state *RunState) error {
	table, err := s.loader.Load(state.InputPath)
	if err != nil {
		return err
	}
	state.Table = table
	s.metrics.RecordRowsLoaded(ctx, len(table.Records))
	return nil
}

// CleanStep drops incomplete rows and rows with a non-numeric score
type CleanStep struct {
	BaseStep
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCleanStep creates the clean step
func NewCleanStep(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *CleanStep {
	return &CleanStep{
		BaseStep: NewBaseStep(StepIDClean, "Validate and Clean"),
		logger:   logger,
		metrics:  metrics,
	}
}

// Execute implements Step
func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	if state.Table == nil {
		return apperrors.NewUnexpectedError("clean step ran before load", nil)
	}

	result := dataprocessing.Clean(state.Table.Records)
	for _, d := range result.Dropped {
		s.logger.WarnContext(ctx, "Dropped row",
			slog.Int("row", d.Row),
			slog.String("student_id", d.StudentID),
			slog.String("reason", string(d.Reason)),
			slog.String("field", d.Field),
			slog.String("value", d.Value))
	}
	for _, reason := range []domain.DropReason{domain.DropReasonMissingField, domain.DropReasonInvalidScore} {
		s.metrics.RecordRowsDropped(ctx, string(reason), result.DroppedBy(reason))
	}

	state.Clean = result
	return nil
}

// AggregateStep groups clean records by student
type AggregateStep struct {
	BaseStep
	logger *slog.Logger
}

// NewAggregateStep creates the aggregate step
func NewAggregateStep(logger *slog.Logger) *AggregateStep {
	return &AggregateStep{
		BaseStep: NewBaseStep(StepIDAggregate, "Group by Student"),
		logger:   logger,
	}
}

// Execute implements Step
func (s *AggregateStep) Execute(ctx context.Context, state *RunState) error {
	state.Groups = dataprocessing.Aggregate(state.Clean.Records)

	for _, g := range state.Groups {
		if !g.NameConsistent() {
			s.logger.WarnContext(ctx, "Conflicting names for student",
				slog.String("student_id", g.StudentID),
				slog.Any("names", g.Names),
				slog.String("using", g.Name))
		}
	}
	return nil
}

// RenderStep writes one report card per student group, in group order
type RenderStep struct {
	BaseStep
	renderer    render.Renderer
	outputDir   string
	failFast    bool
	onGenerated func(domain.RenderOutcome)
	validator   *validation.FileValidator
	tracer      trace.Tracer
	metrics     *infrastructure.PipelineMetrics
	logger      *slog.Logger
}

// NewRenderStep creates the render step
func NewRenderStep(renderer render.Renderer, opts Options) *RenderStep {
	return &RenderStep{
		BaseStep:    NewBaseStep(StepIDRender, "Render Report Cards"),
		renderer:    renderer,
		outputDir:   opts.OutputDir,
		failFast:    opts.FailFast,
		onGenerated: opts.OnGenerated,
		validator:   validation.NewFileValidator(opts.Logger),
		tracer:      opts.Tracer,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}
}

// Execute implements Step. Unless failFast is set, a failed student does not
// stop the others; the failures are reported together at the end.
func (s *RenderStep) Execute(ctx context.Context, state *RunState) error {
	if len(state.Groups) == 0 {
		return nil
	}
	if err := s.validator.ValidateOutputDirectory(s.outputDir); err != nil {
		return apperrors.NewUnexpectedError("output directory is not usable", err).
			WithContext("directory", s.outputDir)
	}

	var failed []domain.RenderOutcome
	written := make(map[string]string, len(state.Groups))
	for _, g := range state.Groups {
		path := filepath.Join(s.outputDir, render.FileName(g.StudentID))

		var outcome domain.RenderOutcome
		if owner, taken := written[path]; taken {
			outcome = s.pathTaken(ctx, g, path, owner)
		} else {
			written[path] = g.StudentID
			outcome = s.renderOne(ctx, g, path)
		}
		state.Outcomes = append(state.Outcomes, outcome)

		if outcome.Status == domain.OutcomeFailed {
			if s.failFast {
				return apperrors.NewUnexpectedError(
					fmt.Sprintf("failed to generate report card for student %s", g.StudentID), outcome.Err).
					WithContext("student_id", g.StudentID)
			}
			failed = append(failed, outcome)
			continue
		}

		if s.onGenerated != nil {
			s.onGenerated(outcome)
		}
	}

	if len(failed) > 0 {
		return renderFailures(failed, len(state.Groups))
	}
	return nil
}

// pathTaken fails a student whose document would replace one already written
// in this run.
func (s *RenderStep) pathTaken(ctx context.Context, g domain.StudentGroup, path, owner string) domain.RenderOutcome {
	err := fmt.Errorf("%s was already written for student %s", filepath.Base(path), owner)
	s.metrics.RecordDocument(ctx, false)
	s.logger.ErrorContext(ctx, "Report card file name collision",
		slog.String("student_id", g.StudentID),
		slog.String("other_student_id", owner),
		slog.String("path", path))
	return domain.RenderOutcome{
		StudentID: g.StudentID,
		Name:      g.Name,
		Path:      path,
		Status:    domain.OutcomeFailed,
		Err:       err,
	}
}

func (s *RenderStep) renderOne(ctx context.Context, g domain.StudentGroup, path string) domain.RenderOutcome {
	ctx, span := s.tracer.Start(ctx, "render.student",
		trace.WithAttributes(
			attribute.String("student.id", g.StudentID),
			attribute.Int("student.subjects", len(g.Subjects)),
		))
	defer span.End()

	start := time.Now()
	err := s.renderer.Render(ctx, g, path)

	outcome := domain.RenderOutcome{
		StudentID: g.StudentID,
		Name:      g.Name,
		Path:      path,
		Status:    domain.OutcomeGenerated,
		Duration:  time.Since(start),
	}
	s.metrics.RecordDocument(ctx, err == nil)

	if err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "Report card failed",
			slog.String("student_id", g.StudentID),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return outcome
	}

	s.logger.InfoContext(ctx, "Report card generated",
		slog.String("student_id", g.StudentID),
		slog.String("path", path),
		slog.Duration("duration", outcome.Duration))
	return outcome
}

// renderFailures summarizes every failed student in one error
func renderFailures(failed []domain.RenderOutcome, total int) error {
	ids := make([]string, 0, len(failed))
	causes := make([]string, 0, len(failed))
	for _, o := range failed {
		ids = append(ids, o.StudentID)
		causes = append(causes, fmt.Sprintf("%s: %v", o.StudentID, o.Err))
	}
	return apperrors.NewUnexpectedError(
		fmt.Sprintf("failed to generate %d of %d report cards", len(failed), total),
		stderrors.New(strings.Join(causes, "; "))).
		WithContext("failed_students", ids)
}
