// Package shared groups helpers used by more than one package. Its testutil
// subpackage builds score workbooks for tests and captures slog output.
package shared
