// Package operations runs a report card batch as a fixed sequence of steps:
//
//   - load: read the spreadsheet and check its columns
//   - clean: drop incomplete rows and non-numeric scores
//   - aggregate: group rows by student id
//   - render: write one report card per student
//
// Each step records a StepState. A failing step stops the run and the
// remaining steps are marked skipped. Rendering isolates students: a card
// that cannot be written is recorded as a failed outcome and the next
// student is rendered, unless Options.FailFast is set.
//
// Pipeline.Run returns a domain.RunReport describing what was loaded,
// dropped, grouped and written, and optionally saves a RunManifest with a
// BLAKE2b-256 digest of every generated file.
package operations
