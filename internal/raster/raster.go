package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/scene"
)

var face font.Face = basicfont.Face7x13

// Canvas rasterizes scene primitives into an RGBA image.
type Canvas struct {
	Image *image.RGBA
	z     *vector.Rasterizer
}

func NewCanvas(w, h int, bg color.RGBA) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{Image: img, z: vector.NewRasterizer(w, h)}
}

// Draw renders prims back to front onto a fresh w x h image.
func Draw(prims []scene.Primitive, w, h int, bg color.RGBA) *image.RGBA {
	c := NewCanvas(w, h, bg)
	for _, p := range prims {
		c.Draw(p)
	}
	return c.Image
}

func (c *Canvas) Draw(p scene.Primitive) {
	switch p.Kind {
	case scene.Polygon:
		if p.Fill.A > 0 {
			c.fill(p.Fill, p.Points...)
		}
	case scene.Rect:
		if len(p.Points) < 2 {
			return
		}
		c.rect(p.Points[0], p.Points[1], p.Fill, p.Stroke, p.Width)
	case scene.Line:
		if len(p.Points) < 2 || p.Width <= 0 {
			return
		}
		c.line(p.Points[0], p.Points[1], p.Stroke, p.Width)
	case scene.Text:
		if len(p.Points) < 1 {
			return
		}
		c.text(p.Points[0], p.Text, p.Fill, p.Align)
	}
}

func (c *Canvas) fill(col color.RGBA, pts ...dynamo.Vec2) {
	if len(pts) < 3 {
		return
	}
	b := c.Image.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.DrawOp = draw.Over
	c.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		c.z.LineTo(float32(p.X), float32(p.Y))
	}
	c.z.ClosePath()
	c.z.Draw(c.Image, b, image.NewUniform(col), image.Point{})
}

func (c *Canvas) rect(min, max dynamo.Vec2, fill, stroke color.RGBA, width float64) {
	if fill.A > 0 {
		c.fill(fill, min, dynamo.Vec2{X: max.X, Y: min.Y}, max, dynamo.Vec2{X: min.X, Y: max.Y})
	}
	if width <= 0 || stroke.A == 0 {
		return
	}
	// stroke stays inside the box
	in := width / 2
	x0, y0, x1, y1 := min.X+in, min.Y+in, max.X-in, max.Y-in
	c.line(dynamo.Vec2{X: min.X, Y: y0}, dynamo.Vec2{X: max.X, Y: y0}, stroke, width)
	c.line(dynamo.Vec2{X: min.X, Y: y1}, dynamo.Vec2{X: max.X, Y: y1}, stroke, width)
	c.line(dynamo.Vec2{X: x0, Y: min.Y}, dynamo.Vec2{X: x0, Y: max.Y}, stroke, width)
	c.line(dynamo.Vec2{X: x1, Y: min.Y}, dynamo.Vec2{X: x1, Y: max.Y}, stroke, width)
}

// line draws a segment as a quad width wide.
func (c *Canvas) line(a, b dynamo.Vec2, col color.RGBA, width float64) {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return
	}
	nx, ny := -d.Y/l*width/2, d.X/l*width/2
	c.fill(col,
		dynamo.Vec2{X: a.X + nx, Y: a.Y + ny},
		dynamo.Vec2{X: b.X + nx, Y: b.Y + ny},
		dynamo.Vec2{X: b.X - nx, Y: b.Y - ny},
		dynamo.Vec2{X: a.X - nx, Y: a.Y - ny},
	)
}

func (c *Canvas) text(at dynamo.Vec2, s string, col color.RGBA, align scene.Align) {
	d := &font.Drawer{Dst: c.Image, Src: image.NewUniform(col), Face: face}
	m := face.Metrics()
	x, y := at.X, at.Y
	if align == scene.AlignCenter {
		x -= float64(d.MeasureString(s).Ceil()) / 2
		y -= float64(m.Height.Ceil()) / 2
	}
	d.Dot = fixed.Point26_6{
		X: fixed.I(int(math.Round(x))),
		Y: fixed.I(int(math.Round(y)) + m.Ascent.Ceil()),
	}
	d.DrawString(s)
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
