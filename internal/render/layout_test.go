package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	assert.Equal(t, 612.0, l.PageWidth)
	assert.Equal(t, 792.0, l.PageHeight)
	assert.Equal(t, Point{X: 100, Y: 750}, l.Title)
	assert.Equal(t, Font{Family: "Helvetica", Style: "B", Size: 14}, l.TitleFont)
	assert.Equal(t, []float64{720, 700, 680}, []float64{l.StudentID.Y, l.Total.Y, l.Average.Y})
	assert.Equal(t, Grey, l.HeaderFill)
	assert.Equal(t, WhiteSmoke, l.HeaderText)
	assert.Equal(t, Beige, l.BodyFill)
	assert.Equal(t, 1.0, l.GridWidth)
}

func TestLayoutTableGeometry(t *testing.T) {
	l := DefaultLayout()

	assert.Equal(t, 18.0, l.BodyRowHeight())
	assert.Equal(t, 27.0, l.HeaderRowHeight())
	assert.Equal(t, 63.0, l.TableHeight(2))

	// header + 2 subjects: bottom edge at 600 - 3*20 = 540
	assert.Equal(t, 540.0+63.0, l.TableTop(2))
	// the table never reaches the info lines for small cards
	assert.Less(t, l.TableTop(1), l.Average.Y)
}
