// Command reportcards reads a spreadsheet of student scores and writes one
// PDF report card per student.
//
// Usage:
//
//	reportcards [flags] [input]
//
// The input defaults to student_scores.xlsx in the working directory.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"reportcards/internal/config"
	"reportcards/internal/dataprocessing"
	apperrors "reportcards/internal/errors"
	"reportcards/internal/exporter"
	"reportcards/internal/infrastructure"
	"reportcards/internal/operations"
	"reportcards/internal/presenter"
	"reportcards/internal/render"
	"reportcards/internal/validation"
	"reportcards/pkg/contracts"
	"reportcards/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the command line flags
type options struct {
	configFile string
	input      string
	outDir     string
	engine     string
	failFast   bool
	summary    bool
	manifest   string
	summaryCSV string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.input, "input", "", "score spreadsheet (.xlsx or .csv), default "+config.DefaultInputFile)
	fs.StringVar(&opts.outDir, "out", "", "directory for the generated report cards")
	fs.StringVar(&opts.engine, "engine", "", "render engine: pdf | chrome")
	fs.BoolVar(&opts.failFast, "fail-fast", false, "stop at the first report card that cannot be written")
	fs.BoolVar(&opts.summary, "summary", false, "print a per-student outcome table")
	fs.StringVar(&opts.manifest, "manifest", "", "write a JSON run manifest to this path")
	fs.StringVar(&opts.summaryCSV, "summary-csv", "", "write a per-student summary CSV to this path")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] [input]\n", config.AppName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs, nil
}

// applyFlags overrides configuration with the flags given on the command
// line. The positional input argument wins over -input.
func applyFlags(cfg *config.Config, opts *options, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Path = opts.input
		case "out":
			cfg.Output.Dir = opts.outDir
		case "engine":
			cfg.Render.Engine = opts.engine
		case "fail-fast":
			cfg.Output.FailFast = opts.failFast
		case "manifest":
			cfg.Output.ManifestPath = opts.manifest
		case "summary-csv":
			cfg.Output.SummaryCSV = opts.summaryCSV
		}
	})
	if fs.NArg() > 0 {
		cfg.Input.Path = fs.Arg(0)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	console := presenter.New(stdout)

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		console.Error(err)
		return 1
	}
	applyFlags(cfg, opts, fs)
	if err := cfg.Validate(); err != nil {
		console.Error(err)
		return 1
	}

	logger, err := newLogger(cfg.Logging, stdout, stderr)
	if err != nil {
		console.Error(apperrors.NewConfigError("failed to initialize logger", err))
		return 1
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := startTelemetry(cfg.Telemetry, logger)
	if err != nil {
		console.Error(err)
		return 1
	}
	defer telemetry.stop(logger)

	renderer, err := render.New(ctx, cfg.Render, render.DefaultLayout(), logger)
	if err != nil {
		var appErr *apperrors.AppError
		if !stderrors.As(err, &appErr) {
			err = apperrors.NewUnexpectedError("failed to start renderer", err)
		}
		console.Error(err)
		return 1
	}
	defer renderer.Close()

	pipeline := operations.NewPipeline(
		dataprocessing.NewLoader(cfg.Input.Sheet, logger),
		renderer,
		operations.Options{
			OutputDir:    cfg.Output.Dir,
			FailFast:     cfg.Output.FailFast,
			ManifestPath: cfg.Output.ManifestPath,
			OnGenerated:  console.Generated,
			Tracer:       telemetry.providers.Tracer,
			Metrics:      telemetry.metrics,
			Logger:       logger,
		})

	report, runErr := pipeline.Run(ctx, cfg.Input.Path)

	if cfg.Output.SummaryCSV != "" && loaded(runErr) {
		if err := writeSummaryCSV(cfg.Output.SummaryCSV, report, logger); err != nil && runErr == nil {
			runErr = apperrors.NewUnexpectedError("failed to write summary CSV", err)
		}
	}
	if opts.summary {
		console.Summary(report)
	}
	if runErr != nil {
		console.Error(runErr)
		return 1
	}
	return 0
}

// loaded reports whether the run got past reading the input
func loaded(err error) bool {
	return !apperrors.IsFileNotFound(err) && !apperrors.IsSchema(err)
}

func writeSummaryCSV(path string, report *domain.RunReport, logger *slog.Logger) error {
	if err := validation.NewFileValidator(logger).ValidateOutputFile(path); err != nil {
		return err
	}
	return exporter.NewSummaryExporter(exporter.NewCSVWriter(logger)).Export(path, report)
}

// newLogger builds the run logger. Console outputs use the writers passed to
// run; file outputs go through the shared infrastructure logger.
func newLogger(cfg config.LoggingConfig, stdout, stderr io.Writer) (*slog.Logger, error) {
	switch cfg.Output {
	case "file", "both":
		return infrastructure.InitializeLogger(cfg)
	case "stdout":
		return infrastructure.NewLogger(stdout, cfg.Level), nil
	default:
		return infrastructure.NewLogger(stderr, cfg.Level), nil
	}
}

// telemetry owns the OpenTelemetry providers and their output files
type telemetry struct {
	providers   *infrastructure.OTelProviders
	metrics     *infrastructure.PipelineMetrics
	traceFile   *os.File
	metricsPath string
}

func startTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*telemetry, error) {
	t := &telemetry{metricsPath: cfg.MetricsFile}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.Environment = cfg.Environment
	if cfg.TraceFile != "" {
		if err := validation.NewFileValidator(logger).ValidateOutputFile(cfg.TraceFile); err != nil {
			return nil, apperrors.NewConfigError("trace file is not writable", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to create trace file", err)
		}
		t.traceFile = f
		otelCfg.TraceWriter = f
	}

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		t.closeTraceFile()
		return nil, apperrors.NewUnexpectedError("failed to initialize telemetry", err)
	}
	t.providers = providers

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		t.closeTraceFile()
		return nil, apperrors.NewUnexpectedError("failed to create metrics", err)
	}
	t.metrics = metrics
	return t, nil
}

// stop writes the metrics textfile and flushes spans. Metrics must be read
// before the meter provider shuts down.
func (t *telemetry) stop(logger *slog.Logger) {
	if t.metricsPath != "" {
		if err := validation.NewFileValidator(logger).ValidateOutputFile(t.metricsPath); err != nil {
			logger.Error("Metrics file is not writable", slog.String("error", err.Error()))
		} else if err := t.providers.WriteMetrics(t.metricsPath); err != nil {
			logger.Error("Failed to write metrics", slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.providers.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down telemetry", slog.String("error", err.Error()))
	}
	t.closeTraceFile()
}

func (t *telemetry) closeTraceFile() {
	if t.traceFile != nil {
		t.traceFile.Close()
		t.traceFile = nil
	}
}
