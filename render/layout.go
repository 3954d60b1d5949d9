package render

import "github.com/jung-kurt/gofpdf"

// Surface is the part of a PDF drawing API that LayoutRow needs.
type Surface interface {
	GetXY() (float64, float64)
	SetXY(x, y float64)
	MultiCell(w, h float64, txtStr, borderStr, alignStr string, fill bool)
	Line(x1, y1, x2, y2 float64)
	SetFillColor(r, g, b int)
}

var _ Surface = (*gofpdf.Fpdf)(nil)

// Fill level used for shaded rows.
const shade = 238

// LayoutRow draws cellCount wrapped-text cells of equal width side by side
// from the current cursor position, rules a grid around them at the height
// of the tallest cell, and leaves the cursor at the start of the next row.
//
// texts must hold at least cellCount entries and cellWidth, rowHeight must be
// positive; rowHeight is the line height used inside every cell.
func LayoutRow(s Surface, cellCount int, cellWidth, rowHeight float64, texts []string, shaded bool) {
	if shaded {
		s.SetFillColor(shade, shade, shade)
	}

	x, y := s.GetXY()
	maxHeight := 0.0

	for i := 0; i < cellCount; i++ {
		s.MultiCell(cellWidth, rowHeight, texts[i], "", "L", shaded)
		if _, after := s.GetXY(); after-y > maxHeight {
			maxHeight = after - y
		}
		s.SetXY(x+cellWidth*float64(i+1), y)
	}

	for i := 0; i <= cellCount; i++ {
		lx := x + cellWidth*float64(i)
		s.Line(lx, y, lx, y+maxHeight)
	}

	right := x + cellWidth*float64(cellCount)
	s.Line(x, y, right, y)
	s.Line(x, y+maxHeight, right, y+maxHeight)

	s.SetXY(x, y+maxHeight)
}
