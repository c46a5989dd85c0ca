// Package dataprocessing turns a score spreadsheet into per-student groups.
// It covers the first three steps of a report card run.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Loader: reads an Excel workbook (or CSV export) into raw records
// 2. Clean: drops incomplete rows and rows whose score is not numeric
// 3. Aggregate: groups clean records by student and computes totals and averages
//
// # Usage
//
//	table, err := dataprocessing.NewLoader("", logger).Load("student_scores.xlsx")
//	if err != nil {
//	    return err
//	}
//	clean := dataprocessing.Clean(table.Records)
//	groups := dataprocessing.Aggregate(clean.Records)
//
// # Data Flow
//
//	Excel File → Loader → RawRecords → Clean → CleanRecords → Aggregate → StudentGroups
//
// # Error Handling
//
// Only the loader fails. A missing or unreadable file is a FILE_NOT_FOUND
// error, a sheet without the Student ID, Name, Subject and Score columns is a
// SCHEMA error, and anything else (corrupt workbook, unknown sheet) is
// UNEXPECTED. Cleaning never fails: excluded rows are reported in
// CleanResult.Dropped with a reason.
package dataprocessing
