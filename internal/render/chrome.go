package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"reportcards/pkg/contracts/domain"
)

const pointsPerInch = 72.0

// ChromeOptions configures the headless browser
type ChromeOptions struct {
	// ExecPath overrides the Chrome binary; empty lets chromedp search for one.
	ExecPath string
	// Timeout bounds the rendering of a single card.
	Timeout time.Duration
}

// ChromeRenderer prints an HTML rendition of the card with headless Chrome.
// One browser serves the whole run; each card gets its own tab.
type ChromeRenderer struct {
	layout  Layout
	timeout time.Duration
	logger  *slog.Logger

	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// NewChromeRenderer starts the browser. Call Close to shut it down.
func NewChromeRenderer(ctx context.Context, opts ChromeOptions, layout Layout, logger *slog.Logger) (*ChromeRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "chrome_renderer"))

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", true))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Running no actions launches the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("Chrome started", slog.String("exec_path", opts.ExecPath))

	return &ChromeRenderer{
		layout:        layout,
		timeout:       timeout,
		logger:        logger,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// Render implements Renderer
func (r *ChromeRenderer) Render(ctx context.Context, group domain.StudentGroup, path string) error {
	var html bytes.Buffer
	if err := cardTemplate.Execute(&html, newCardView(r.layout, newCard(group))); err != nil {
		return fmt.Errorf("build html: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html.String()).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(r.layout.PageWidth / pointsPerInch).
				WithPaperHeight(r.layout.PageHeight / pointsPerInch).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("print %s: %w", group.StudentID, err)
	}

	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	r.logger.DebugContext(ctx, "Rendered report card",
		slog.String("student_id", group.StudentID),
		slog.String("path", path),
		slog.Int("bytes", len(pdf)))
	return nil
}

// Close shuts the browser down
func (r *ChromeRenderer) Close() error {
	err := chromedp.Cancel(r.browserCtx)
	r.cancelBrowser()
	r.cancelAlloc()
	return err
}

// cardView positions card content for the HTML template. Tops are CSS
// offsets from the top of the page, in points.
type cardView struct {
	PageWidth, PageHeight float64
	Title                 positioned
	Info                  []positioned
	TableLeft, TableTop   float64
	Layout                Layout
	Header                [2]string
	Rows                  [][2]string
}

type positioned struct {
	Text      string
	Left, Top float64
}

func newCardView(l Layout, c card) cardView {
	// CSS positions the top of the line box; the layout positions baselines
	at := func(p Point, f Font, s string) positioned {
		return positioned{Text: s, Left: p.X, Top: l.PageHeight - p.Y - f.Size}
	}
	return cardView{
		PageWidth:  l.PageWidth,
		PageHeight: l.PageHeight,
		Title:      at(l.Title, l.TitleFont, c.Title),
		Info: []positioned{
			at(l.StudentID, l.InfoFont, c.StudentID),
			at(l.Total, l.InfoFont, c.Total),
			at(l.Average, l.InfoFont, c.Average),
		},
		TableLeft: l.TableX,
		TableTop:  l.PageHeight - l.TableTop(len(c.Rows)),
		Layout:    l,
		Header:    c.Header,
		Rows:      c.Rows,
	}
}

var cardTemplate = template.Must(template.New("card").Funcs(template.FuncMap{
	"rgb": func(c Color) template.CSS {
		return template.CSS(fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B))
	},
	"weight": func(f Font) template.CSS {
		if f.Style == "B" {
			return "bold"
		}
		return "normal"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title.Text}}</title>
<style>
@page { size: {{.PageWidth}}pt {{.PageHeight}}pt; margin: 0; }
body { margin: 0; font-family: Helvetica, Arial, sans-serif; }
.line { position: absolute; white-space: nowrap; line-height: 1; }
.title { font-size: {{.Layout.TitleFont.Size}}pt; font-weight: {{weight .Layout.TitleFont}}; }
.info { font-size: {{.Layout.InfoFont.Size}}pt; font-weight: {{weight .Layout.InfoFont}}; }
table { position: absolute; border-collapse: collapse; }
td, th {
  border: {{.Layout.GridWidth}}pt solid {{rgb .Layout.GridColor}};
  padding: {{.Layout.CellPaddingY}}pt {{.Layout.CellPaddingX}}pt;
  line-height: {{.Layout.TextLeading}}pt;
  text-align: center;
}
th {
  padding-bottom: {{.Layout.HeaderBottomPadding}}pt;
  background: {{rgb .Layout.HeaderFill}};
  color: {{rgb .Layout.HeaderText}};
  font-size: {{.Layout.HeaderFont.Size}}pt;
  font-weight: {{weight .Layout.HeaderFont}};
}
td {
  background: {{rgb .Layout.BodyFill}};
  color: {{rgb .Layout.BodyText}};
  font-size: {{.Layout.BodyFont.Size}}pt;
}
thead { display: table-header-group; }
tr { break-inside: avoid; }
</style>
</head>
<body>
<div class="line title" style="left: {{.Title.Left}}pt; top: {{.Title.Top}}pt">{{.Title.Text}}</div>
{{range .Info}}<div class="line info" style="left: {{.Left}}pt; top: {{.Top}}pt">{{.Text}}</div>
{{end}}<table style="left: {{.TableLeft}}pt; top: {{.TableTop}}pt">
<thead><tr><th>{{index .Header 0}}</th><th>{{index .Header 1}}</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{index . 0}}</td><td>{{index . 1}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))
