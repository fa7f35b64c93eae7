package scene

import (
	"image/color"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

type Kind int

const (
	Polygon Kind = iota
	Rect
	Line
	Text
)

func (k Kind) String() string {
	switch k {
	case Polygon:
		return "polygon"
	case Rect:
		return "rect"
	case Line:
		return "line"
	case Text:
		return "text"
	}
	return "unknown"
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Primitive is one drawing instruction in image coordinates. A zero alpha
// Fill or a zero Width disables that part.
//
//   - Polygon: Points are the vertices
//   - Rect: Points[0] is the top-left and Points[1] the bottom-right corner
//   - Line: Points[0] to Points[1], Width wide
//   - Text: Points[0] is the top-left (AlignLeft) or center (AlignCenter)
type Primitive struct {
	Kind   Kind
	Points []dynamo.Vec2
	Fill   color.RGBA
	Stroke color.RGBA
	Width  float64
	Text   string
	Align  Align
}

func polygon(fill color.RGBA, pts ...dynamo.Vec2) Primitive {
	return Primitive{Kind: Polygon, Points: pts, Fill: fill}
}

func rect(x0, y0, x1, y1 float64, fill, stroke color.RGBA, width float64) Primitive {
	return Primitive{
		Kind:   Rect,
		Points: []dynamo.Vec2{{X: x0, Y: y0}, {X: x1, Y: y1}},
		Fill:   fill,
		Stroke: stroke,
		Width:  width,
	}
}

func line(a, b dynamo.Vec2, stroke color.RGBA, width float64) Primitive {
	return Primitive{Kind: Line, Points: []dynamo.Vec2{a, b}, Stroke: stroke, Width: width}
}

func text(at dynamo.Vec2, s string, fill color.RGBA, align Align) Primitive {
	return Primitive{Kind: Text, Points: []dynamo.Vec2{at}, Fill: fill, Text: s, Align: align}
}
