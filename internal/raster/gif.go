package raster

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/scene"
)

// Palette puts the exact scene colors first and fills the rest from Plan9.
func Palette(colors ...color.Color) color.Palette {
	pal := make(color.Palette, 0, 256)
	seen := make(map[color.RGBA]bool)
	add := func(c color.Color) {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		if seen[rgba] || len(pal) == 256 {
			return
		}
		seen[rgba] = true
		pal = append(pal, rgba)
	}
	for _, c := range colors {
		add(c)
	}
	for _, c := range palette.Plan9 {
		add(c)
	}
	return pal
}

// RenderAll rasterizes every frame. Frames are independent so they are drawn
// in parallel; output order matches input order.
func RenderAll(sc *scene.Scene, frames []scene.Frame) []*image.RGBA {
	st := sc.Style
	bg := st.Colors.Background.Color()
	out := make([]*image.RGBA, len(frames))
	dynamo.ParallelFor(len(frames), 4, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = Draw(sc.Build(frames[i]), st.Width, st.Height, bg)
		}
	})
	return out
}

// EncodeGIF writes frames as a looping animation at fps.
func EncodeGIF(w io.Writer, frames []*image.RGBA, fps int, pal color.Palette) error {
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}

	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		b := frame.Bounds()
		p := image.NewPaletted(b, pal)
		draw.Draw(p, b, frame, b.Min, draw.Src)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}
