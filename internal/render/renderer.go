package render

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"reportcards/internal/config"
	apperrors "reportcards/internal/errors"
	"reportcards/pkg/contracts/domain"
)

// Renderer writes the report card of one student to path, replacing any
// existing file.
type Renderer interface {
	Render(ctx context.Context, group domain.StudentGroup, path string) error
	Close() error
}

// New creates the renderer selected by cfg.Engine
func New(ctx context.Context, cfg config.RenderConfig, layout Layout, logger *slog.Logger) (Renderer, error) {
	switch cfg.Engine {
	case "", config.EnginePDF:
		return NewPDFRenderer(layout, logger), nil
	case config.EngineChrome:
		return NewChromeRenderer(ctx, ChromeOptions{
			ExecPath: cfg.ChromePath,
			Timeout:  cfg.ChromeTimeout,
		}, layout, logger)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown render engine %q", cfg.Engine), nil)
	}
}

// FileName returns the document name for a student id. Characters outside
// [A-Za-z0-9._-] are replaced with '_' so the name never leaves its directory.
// When that replacement changes the id, the first 8 hex digits of its
// BLAKE2b-256 digest are appended, so "A/1", "A 1" and "A_1" get distinct files.
func FileName(studentID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		}
		return '_'
	}, studentID)
	if safe != studentID {
		sum := blake2b.Sum256([]byte(studentID))
		safe += "_" + hex.EncodeToString(sum[:4])
	}
	return "report_card_" + safe + ".pdf"
}

// FormatScore prints a score or total in its shortest exact form (170, 170.5)
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatAverage prints an average with exactly two decimals
func FormatAverage(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// card is the text content of a report card, independent of the engine
type card struct {
	Title     string
	StudentID string
	Total     string
	Average   string
	Header    [2]string
	Rows      [][2]string
}

func newCard(g domain.StudentGroup) card {
	c := card{
		Title:     "Report Card for " + g.Name,
		StudentID: "Student ID: " + g.StudentID,
		Total:     "Total Score: " + FormatScore(g.Total),
		Average:   "Average Score: " + FormatAverage(g.Average),
		Header:    [2]string{"Subject", "Score"},
		Rows:      make([][2]string, 0, len(g.Subjects)),
	}
	for _, s := range g.Subjects {
		c.Rows = append(c.Rows, [2]string{s.Subject, FormatScore(s.Score)})
	}
	return c
}
