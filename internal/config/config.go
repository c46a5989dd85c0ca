package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "reportcards/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Render    RenderConfig    `yaml:"render" envconfig:"RENDER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig locates the score spreadsheet
type InputConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"required"`
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet string `yaml:"sheet" split_words:"true"`
}

// OutputConfig controls where report cards and run artifacts are written
type OutputConfig struct {
	Dir string `yaml:"dir" split_words:"true" validate:"required"`
	// FailFast aborts the run on the first render failure instead of
	// recording it and moving on to the next student.
	FailFast bool `yaml:"fail_fast" split_words:"true"`
	// ManifestPath, when set, receives a JSON manifest of the run.
	ManifestPath string `yaml:"manifest_path" split_words:"true"`
	// SummaryCSV, when set, receives one CSV row per student.
	SummaryCSV string `yaml:"summary_csv" split_words:"true"`
}

// RenderConfig selects the document engine
type RenderConfig struct {
	Engine        string        `yaml:"engine" split_words:"true" validate:"oneof=pdf chrome"`
	ChromeTimeout time.Duration `yaml:"chrome_timeout" split_words:"true" validate:"gt=0"`
	ChromePath    string        `yaml:"chrome_path" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=stderr stdout file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_if=Output file,required_if=Output both"`
}

// TelemetryConfig contains OpenTelemetry export settings. Empty paths disable
// the corresponding exporter.
type TelemetryConfig struct {
	TraceFile   string `yaml:"trace_file" split_words:"true"`
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
	Environment string `yaml:"environment" split_words:"true"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path: DefaultInputFile,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Render: RenderConfig{
			Engine:        EnginePDF,
			ChromeTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Output:   "stderr",
			FilePath: "logs/reportcards.log",
		},
		Telemetry: TelemetryConfig{
			Environment: "development",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and REPORTCARD_* environment variables, in that order of
// increasing precedence. An empty configFile falls back to the well-known
// locations. The result is not validated: callers apply their own overrides
// (command-line flags) first and then call Validate.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", configFile), err)
		}
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigError("failed to load .env", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.NewConfigError("config validation failed", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return apperrors.NewConfigError("config validation failed", stderrors.New(strings.Join(msgs, "; "))).
		WithContext("fields", len(fieldErrs))
}

func formatFieldError(fe validator.FieldError) string {
	// Namespace is "Config.Render.Engine"; drop the root type
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"reportcards.yaml",
		"configs/reportcards.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}
