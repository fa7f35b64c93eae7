package viz

import (
	"math"
	"strings"

	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/scene"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
const brailleBlank = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a terminal raster of braille cells. Dots are addressed in
// sub-cell coordinates, so the drawable area is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set turns on the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= dotBits[y%4][x%2]
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	if !ok {
		return false
	}
	return c.Grid[row][col]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Viewport maps image pixels onto canvas dots, preserving aspect ratio.
type Viewport struct {
	scale  float64
	dx, dy float64
}

// Fit returns the viewport that fits a w x h image onto the canvas.
func (c *Canvas) Fit(w, h int) Viewport {
	cw, ch := float64(c.Width*2), float64(c.Height*4)
	s := math.Min(cw/float64(w), ch/float64(h))
	return Viewport{
		scale: s,
		dx:    (cw - float64(w)*s) / 2,
		dy:    (ch - float64(h)*s) / 2,
	}
}

func (v Viewport) Map(p dynamo.Vec2) (int, int) {
	return int(math.Round(p.X*v.scale + v.dx)), int(math.Round(p.Y*v.scale + v.dy))
}

// DrawPath connects the points in order, closing the loop when closed is set.
func (c *Canvas) DrawPath(v Viewport, pts []dynamo.Vec2, closed bool) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.Map(pts[i-1])
		x1, y1 := v.Map(pts[i])
		c.DrawLine(x0, y0, x1, y1)
	}
	if closed && len(pts) > 2 {
		x0, y0 := v.Map(pts[len(pts)-1])
		x1, y1 := v.Map(pts[0])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Plot outlines scene primitives. Text has no braille form and is skipped.
func (c *Canvas) Plot(v Viewport, prims []scene.Primitive) {
	for _, p := range prims {
		switch p.Kind {
		case scene.Polygon:
			c.DrawPath(v, p.Points, true)
		case scene.Line:
			c.DrawPath(v, p.Points, false)
		case scene.Rect:
			if len(p.Points) < 2 {
				continue
			}
			a, b := p.Points[0], p.Points[1]
			c.DrawPath(v, []dynamo.Vec2{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}}, true)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
