package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"reportcards/internal/config"
	"reportcards/pkg/contracts/domain"
)

// PDFRenderer draws report cards with fpdf
type PDFRenderer struct {
	layout Layout
	logger *slog.Logger
}

// NewPDFRenderer creates a renderer for the given layout
func NewPDFRenderer(layout Layout, logger *slog.Logger) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFRenderer{
		layout: layout,
		logger: logger.With(slog.String("component", "pdf_renderer")),
	}
}

// Render implements Renderer
func (r *PDFRenderer) Render(ctx context.Context, group domain.StudentGroup, path string) error {
	c := newCard(group)
	l := r.layout

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetCompression(l.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(c.Title, true)
	pdf.SetCreator(config.AppName, true)
	pdf.AddPage()

	// Core fonts are cp1252; map UTF-8 input onto it. Runes outside cp1252
	// come out as '.', so the affected strings are kept for a warning.
	cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
	var lossy []string
	tr := func(s string) string {
		if !encodable(cp1252, s) {
			lossy = append(lossy, s)
		}
		return cp1252(s)
	}

	r.text(pdf, l.TitleFont, l.Title, tr(c.Title))
	r.text(pdf, l.InfoFont, l.StudentID, tr(c.StudentID))
	r.text(pdf, l.InfoFont, l.Total, tr(c.Total))
	r.text(pdf, l.InfoFont, l.Average, tr(c.Average))

	header := [2]string{tr(c.Header[0]), tr(c.Header[1])}
	rows := make([][2]string, len(c.Rows))
	for i, row := range c.Rows {
		rows[i] = [2]string{tr(row[0]), tr(row[1])}
	}
	r.table(pdf, header, rows)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if len(lossy) > 0 {
		r.logger.WarnContext(ctx, "Characters outside cp1252 printed as '.'",
			slog.String("student_id", group.StudentID),
			slog.Any("text", lossy))
	}

	r.logger.DebugContext(ctx, "Rendered report card",
		slog.String("student_id", group.StudentID),
		slog.String("path", path),
		slog.Int("pages", pdf.PageCount()))
	return nil
}

// Close implements Renderer
func (r *PDFRenderer) Close() error {
	return nil
}

// encodable reports whether every rune of s survives tr. ASCII always does.
func encodable(tr func(string) string, s string) bool {
	for _, c := range s {
		if c < utf8.RuneSelf || c == '.' {
			continue
		}
		if tr(string(c)) == "." {
			return false
		}
	}
	return true
}

// text draws s with its baseline at p
func (r *PDFRenderer) text(pdf *fpdf.Fpdf, font Font, p Point, s string) {
	pdf.SetFont(font.Family, font.Style, font.Size)
	pdf.SetTextColor(Black.R, Black.G, Black.B)
	pdf.Text(p.X, r.layout.PageHeight-p.Y, s)
}

func (r *PDFRenderer) table(pdf *fpdf.Fpdf, header [2]string, rows [][2]string) {
	l := r.layout
	widths := r.columnWidths(pdf, header, rows)

	pdf.SetLineWidth(l.GridWidth)
	pdf.SetDrawColor(l.GridColor.R, l.GridColor.G, l.GridColor.B)

	// y is the top edge of the next row, measured from the top of the page
	y := l.PageHeight - l.TableTop(len(rows))
	if y < l.TopMargin {
		y = l.TopMargin
	}
	limit := l.PageHeight - l.BottomMargin

	if y+l.HeaderRowHeight() > limit {
		pdf.AddPage()
		y = l.TopMargin
	}
	y = r.headerRow(pdf, widths, y, header)

	for _, row := range rows {
		if y+l.BodyRowHeight() > limit {
			pdf.AddPage()
			pdf.SetLineWidth(l.GridWidth)
			pdf.SetDrawColor(l.GridColor.R, l.GridColor.G, l.GridColor.B)
			y = r.headerRow(pdf, widths, l.TopMargin, header)
		}
		x := l.TableX
		for i, cell := range row {
			r.cell(pdf, x, y, widths[i], l.BodyRowHeight(), l.CellPaddingY, l.BodyFont, l.BodyFill, l.BodyText, cell)
			x += widths[i]
		}
		y += l.BodyRowHeight()
	}
}

func (r *PDFRenderer) headerRow(pdf *fpdf.Fpdf, widths [2]float64, y float64, header [2]string) float64 {
	l := r.layout
	x := l.TableX
	for i, cell := range header {
		r.cell(pdf, x, y, widths[i], l.HeaderRowHeight(), l.HeaderBottomPadding, l.HeaderFont, l.HeaderFill, l.HeaderText, cell)
		x += widths[i]
	}
	return y + l.HeaderRowHeight()
}

// cell fills and strokes one grid cell and centers s horizontally, with
// bottomPad points between the text baseline area and the lower edge.
func (r *PDFRenderer) cell(pdf *fpdf.Fpdf, x, y, w, h, bottomPad float64, font Font, fill, fg Color, s string) {
	pdf.SetFillColor(fill.R, fill.G, fill.B)
	pdf.Rect(x, y, w, h, "FD")

	pdf.SetFont(font.Family, font.Style, font.Size)
	pdf.SetTextColor(fg.R, fg.G, fg.B)
	// Helvetica descends about a fifth of the font size below the baseline
	baseline := y + h - bottomPad - 0.2*font.Size
	pdf.Text(x+(w-pdf.GetStringWidth(s))/2, baseline, s)
}

// columnWidths sizes each column to its widest cell plus horizontal padding
func (r *PDFRenderer) columnWidths(pdf *fpdf.Fpdf, header [2]string, rows [][2]string) [2]float64 {
	l := r.layout
	var widths [2]float64

	pdf.SetFont(l.HeaderFont.Family, l.HeaderFont.Style, l.HeaderFont.Size)
	for i, s := range header {
		widths[i] = pdf.GetStringWidth(s)
	}
	pdf.SetFont(l.BodyFont.Family, l.BodyFont.Style, l.BodyFont.Size)
	for _, row := range rows {
		for i, s := range row {
			widths[i] = math.Max(widths[i], pdf.GetStringWidth(s))
		}
	}
	for i := range widths {
		widths[i] += 2 * l.CellPaddingX
	}
	return widths
}
