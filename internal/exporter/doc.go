// Package exporter writes run results as CSV.
//
// CSVWriter is the general writer, with an optional UTF-8 BOM so Excel opens
// the file with the right encoding. SummaryExporter builds on it to write one
// row per student: id, name, subject count, total, average, the document
// path and whether it was generated.
//
// Example usage:
//
//	summary := exporter.NewSummaryExporter(exporter.NewCSVWriter(logger))
//	err := summary.Export("out/summary.csv", report)
package exporter
