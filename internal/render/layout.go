package render

// Color is an RGB color with 0-255 components
type Color struct {
	R, G, B int
}

// Named colors used by the default layout
var (
	Black      = Color{0, 0, 0}
	Grey       = Color{128, 128, 128}
	WhiteSmoke = Color{245, 245, 245}
	Beige      = Color{245, 245, 220}
)

// Font names a standard PDF font. Style is "" or "B".
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Point is a position in points from the bottom-left corner of the page
type Point struct {
	X, Y float64
}

// Layout holds every position, size and color of a report card page.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	// Rows are never drawn above TopMargin or below BottomMargin; a table
	// that does not fit continues on a new page with its header repeated.
	TopMargin    float64
	BottomMargin float64

	TitleFont Font
	Title     Point

	InfoFont  Font
	StudentID Point
	Total     Point
	Average   Point

	// The table's left edge is TableX. Its bottom edge sits at
	// TableBaseY - rows*TableRowStep, where rows counts the header.
	TableX       float64
	TableBaseY   float64
	TableRowStep float64

	HeaderFont Font
	BodyFont   Font
	// TextLeading is the line height of table text; a body row is
	// TextLeading + 2*CellPaddingY high.
	TextLeading  float64
	CellPaddingX float64
	CellPaddingY float64
	// HeaderBottomPadding replaces CellPaddingY below header text.
	HeaderBottomPadding float64

	HeaderFill Color
	HeaderText Color
	BodyFill   Color
	BodyText   Color
	GridColor  Color
	GridWidth  float64

	// Compress deflates PDF content streams
	Compress bool
}

// DefaultLayout returns the standard US Letter report card layout
func DefaultLayout() Layout {
	return Layout{
		PageWidth:    612,
		PageHeight:   792,
		TopMargin:    72,
		BottomMargin: 36,

		TitleFont: Font{Family: "Helvetica", Style: "B", Size: 14},
		Title:     Point{X: 100, Y: 750},

		InfoFont:  Font{Family: "Helvetica", Size: 12},
		StudentID: Point{X: 100, Y: 720},
		Total:     Point{X: 100, Y: 700},
		Average:   Point{X: 100, Y: 680},

		TableX:       100,
		TableBaseY:   600,
		TableRowStep: 20,

		HeaderFont:          Font{Family: "Helvetica", Style: "B", Size: 10},
		BodyFont:            Font{Family: "Helvetica", Size: 10},
		TextLeading:         12,
		CellPaddingX:        6,
		CellPaddingY:        3,
		HeaderBottomPadding: 12,

		HeaderFill: Grey,
		HeaderText: WhiteSmoke,
		BodyFill:   Beige,
		BodyText:   Black,
		GridColor:  Black,
		GridWidth:  1,

		Compress: true,
	}
}

// BodyRowHeight is the height of one body row
func (l Layout) BodyRowHeight() float64 {
	return l.TextLeading + 2*l.CellPaddingY
}

// HeaderRowHeight is the height of the header row
func (l Layout) HeaderRowHeight() float64 {
	return l.TextLeading + l.CellPaddingY + l.HeaderBottomPadding
}

// TableHeight is the height of a table with the given number of body rows
func (l Layout) TableHeight(bodyRows int) float64 {
	return l.HeaderRowHeight() + float64(bodyRows)*l.BodyRowHeight()
}

// TableTop returns the y of the table's top edge, from the bottom of the page
func (l Layout) TableTop(bodyRows int) float64 {
	bottom := l.TableBaseY - float64(bodyRows+1)*l.TableRowStep
	return bottom + l.TableHeight(bodyRows)
}
