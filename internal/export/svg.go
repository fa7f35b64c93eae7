package export

import (
	"fmt"
	"html"
	"image/color"
	"strings"

	"github.com/san-kum/scaletilt/internal/scene"
)

// PrimitivesToSVG renders scene primitives as a standalone SVG document.
func PrimitivesToSVG(prims []scene.Primitive, width, height int, bg color.RGBA) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, hex(bg)))

	for _, p := range prims {
		switch p.Kind {
		case scene.Polygon:
			if len(p.Points) < 3 {
				continue
			}
			pts := make([]string, len(p.Points))
			for i, v := range p.Points {
				pts[i] = fmt.Sprintf("%.1f,%.1f", v.X, v.Y)
			}
			sb.WriteString(fmt.Sprintf(`<polygon points="%s" %s/>
`, strings.Join(pts, " "), paint(p)))
		case scene.Rect:
			if len(p.Points) < 2 {
				continue
			}
			a, b := p.Points[0], p.Points[1]
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>
`, a.X, a.Y, b.X-a.X, b.Y-a.Y, paint(p)))
		case scene.Line:
			if len(p.Points) < 2 {
				continue
			}
			a, b := p.Points[0], p.Points[1]
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>
`, a.X, a.Y, b.X, b.Y, hex(p.Stroke), p.Width))
		case scene.Text:
			if len(p.Points) < 1 {
				continue
			}
			at := p.Points[0]
			anchor := `dominant-baseline="hanging"`
			if p.Align == scene.AlignCenter {
				anchor = `text-anchor="middle" dominant-baseline="central"`
			}
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="DejaVu Sans, sans-serif" font-size="12" %s>%s</text>
`, at.X, at.Y, hex(p.Fill), anchor, html.EscapeString(p.Text)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func paint(p scene.Primitive) string {
	fill := "none"
	if p.Fill.A > 0 {
		fill = hex(p.Fill)
	}
	if p.Width <= 0 || p.Stroke.A == 0 {
		return fmt.Sprintf(`fill="%s"`, fill)
	}
	return fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%.1f"`, fill, hex(p.Stroke), p.Width)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
