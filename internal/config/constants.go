package config

// Application constants
const (
	AppName = "reportcards"

	// EnvPrefix namespaces every environment variable, e.g. REPORTCARD_INPUT_PATH
	EnvPrefix = "REPORTCARD"

	// DefaultInputFile is read when no input path is configured
	DefaultInputFile = "student_scores.xlsx"

	// Render engines
	EnginePDF    = "pdf"
	EngineChrome = "chrome"
)
