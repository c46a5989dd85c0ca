// Package config provides configuration loading and validation for the
// report card generator.
//
// # Configuration Sources
//
// Configuration is resolved from the following sources in order of
// increasing precedence:
//
//	1. Default values (Default())
//	2. YAML file (reportcards.yaml or configs/reportcards.yaml, or -config)
//	3. A .env file in the working directory
//	4. Environment variables
//	5. Command-line flags (applied by cmd/reportcards)
//
// # Environment Variables
//
// All environment variables follow the pattern REPORTCARD_* for namespacing:
//
//	REPORTCARD_INPUT_PATH=scores.xlsx
//	REPORTCARD_INPUT_SHEET=Term1
//	REPORTCARD_OUTPUT_DIR=out
//	REPORTCARD_OUTPUT_FAIL_FAST=true
//	REPORTCARD_RENDER_ENGINE=chrome
//	REPORTCARD_LOGGING_LEVEL=debug
//	REPORTCARD_TELEMETRY_METRICS_FILE=reportcards.prom
//
// # Validation
//
// Load does not validate, so a flag can still correct a bad file or
// environment value. Validate checks the final result with
// go-playground/validator struct tags and returns a CONFIG error listing
// every offending field.
package config
