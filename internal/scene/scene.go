package scene

import (
	"fmt"
	"image/color"
	"math"

	"github.com/san-kum/scaletilt/internal/config"
	"github.com/san-kum/scaletilt/internal/dynamo"
)

const (
	stopLineAfter  = 0.7
	highlightAfter = 0.8
	stopDashes     = 12
	outlineWidth   = 2
	chainWidth     = 2
	stopLineWidth  = 3
	labelLift      = 50
	sumDrop        = 15
	weightBoxBase  = 25
	weightBoxStep  = 2
)

var black = color.RGBA{A: 0xff}
var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

type Style struct {
	Width, Height int
	BeamHeight    float64
	FulcrumWidth  float64
	PanWidth      float64
	PanHeight     float64
	Colors        config.ColorConfig
}

func StyleFrom(cfg *config.Config) Style {
	return Style{
		Width:        cfg.Image.Width,
		Height:       cfg.Image.Height,
		BeamHeight:   cfg.Scale.BeamHeight,
		FulcrumWidth: cfg.Scale.FulcrumWidth,
		PanWidth:     cfg.Scale.PanWidth,
		PanHeight:    cfg.Scale.PanHeight,
		Colors:       cfg.Colors,
	}
}

// Hints toggle the overlays that fade in near the end of the tilt.
type Hints struct {
	StopLine  bool
	Highlight bool
}

// HintsFor returns the overlays shown at a given tilt progress.
func HintsFor(progress float64) Hints {
	return Hints{StopLine: progress > stopLineAfter, Highlight: progress > highlightAfter}
}

var FinalHints = Hints{StopLine: true, Highlight: true}

// Frame is one picture of the video.
type Frame struct {
	State dynamo.TiltState
	Hints Hints
}

// Scene draws the states of one trajectory.
type Scene struct {
	Style      Style
	Trajectory *dynamo.Trajectory
	Weights    dynamo.WeightConfig
}

func New(style Style, traj *dynamo.Trajectory, weights dynamo.WeightConfig) *Scene {
	return &Scene{Style: style, Trajectory: traj, Weights: weights}
}

// First is the balanced opening frame without overlays.
func (sc *Scene) First() Frame { return Frame{State: sc.Trajectory.First()} }

// Final is the terminal frame with stop line and highlight.
func (sc *Scene) Final() Frame { return Frame{State: sc.Trajectory.Last(), Hints: FinalHints} }

// Timeline holds the first frame hold times, plays every state, then holds
// the final frame twice as long.
func (sc *Scene) Timeline(hold int) []Frame {
	states := sc.Trajectory.States
	frames := make([]Frame, 0, len(states)+3*hold)

	first := sc.First()
	for i := 0; i < hold; i++ {
		frames = append(frames, first)
	}
	for _, s := range states {
		frames = append(frames, Frame{State: s, Hints: HintsFor(s.Progress)})
	}
	final := sc.Final()
	for i := 0; i < 2*hold; i++ {
		frames = append(frames, final)
	}
	return frames
}

// Build returns the drawing primitives for f, back to front.
func (sc *Scene) Build(f Frame) []Primitive {
	st := sc.Style
	g := sc.Trajectory.Geometry
	c := st.Colors
	s := f.State
	cx := g.Fulcrum.X
	pivot := g.Fulcrum

	prims := make([]Primitive, 0, 32)

	baseHalf := st.FulcrumWidth * 4 / 3
	prims = append(prims, rect(cx-baseHalf, g.BaseY, cx+baseHalf, g.BaseY+st.BeamHeight*1.25, c.Fulcrum.Color(), color.RGBA{}, 0))
	prims = append(prims, polygon(c.Fulcrum.Color(),
		pivot,
		dynamo.Vec2{X: cx - st.FulcrumWidth/2, Y: g.BaseY},
		dynamo.Vec2{X: cx + st.FulcrumWidth/2, Y: g.BaseY},
	))

	if f.Hints.StopLine {
		prims = append(prims, stopLine(cx, g.BaseY, g.BeamLength*0.8, c.StopLine.Color())...)
	}

	prims = append(prims, polygon(c.Beam.Color(), beamCorners(g, s.Angle, st.BeamHeight)...))

	panColor := func(side dynamo.Side) color.RGBA {
		if f.Hints.Highlight && sc.Trajectory.Outcome.Winner == side {
			return c.Heavy.Color()
		}
		return c.Pan.Color()
	}

	pans := []struct {
		side    dynamo.Side
		end     dynamo.Vec2
		pan     dynamo.Vec2
		weights []int
		sum     int
		label   string
		labelDx float64
	}{
		{dynamo.Left, s.LeftEnd, s.LeftPan, sc.Weights.Left, sc.Trajectory.Outcome.LeftSum, "LEFT", -20},
		{dynamo.Right, s.RightEnd, s.RightPan, sc.Weights.Right, sc.Trajectory.Outcome.RightSum, "RIGHT", -25},
	}

	for _, p := range pans {
		for _, dx := range []float64{-st.PanWidth / 3, st.PanWidth / 3} {
			prims = append(prims, line(dynamo.Vec2{X: p.pan.X + dx, Y: p.pan.Y}, p.end, c.Chain.Color(), chainWidth))
		}
		prims = append(prims, rect(p.pan.X-st.PanWidth/2, p.pan.Y, p.pan.X+st.PanWidth/2, p.pan.Y+st.PanHeight,
			panColor(p.side), black, outlineWidth))
	}

	for _, p := range pans {
		prims = append(prims, sc.weightBoxes(p.pan, p.weights)...)
	}

	for _, p := range pans {
		prims = append(prims,
			text(dynamo.Vec2{X: p.pan.X + p.labelDx, Y: pivot.Y - labelLift}, p.label, c.Label.Color(), AlignLeft),
			text(dynamo.Vec2{X: p.pan.X - 25, Y: p.pan.Y + st.PanHeight + sumDrop}, fmt.Sprintf("Sum: %d", p.sum), c.Sum.Color(), AlignLeft),
		)
	}

	return prims
}

func (sc *Scene) weightBoxes(pan dynamo.Vec2, weights []int) []Primitive {
	st := sc.Style
	if len(weights) == 0 {
		return nil
	}
	scale := st.PanWidth / 100
	spacing := st.PanWidth / float64(len(weights)+1)

	prims := make([]Primitive, 0, 2*len(weights))
	for i, w := range weights {
		x := pan.X - st.PanWidth/2 + spacing*float64(i+1)
		size := float64(weightBoxBase+w*weightBoxStep) * scale
		prims = append(prims,
			rect(x-size/2, pan.Y-size, x+size/2, pan.Y, st.Colors.Weight.Color(), black, outlineWidth),
			text(dynamo.Vec2{X: x, Y: pan.Y - size/2}, fmt.Sprint(w), white, AlignCenter),
		)
	}
	return prims
}

// beamCorners rotates the beam rectangle about the pivot.
func beamCorners(g dynamo.Geometry, angle, thickness float64) []dynamo.Vec2 {
	h := g.HalfBeam()
	t := thickness / 2
	local := []dynamo.Vec2{{X: -h, Y: -t}, {X: h, Y: -t}, {X: h, Y: t}, {X: -h, Y: t}}

	sin, cos := math.Sincos(angle)
	out := make([]dynamo.Vec2, len(local))
	for i, p := range local {
		out[i] = dynamo.Vec2{
			X: cos*p.X - sin*p.Y + g.Fulcrum.X,
			Y: sin*p.X + cos*p.Y + g.Fulcrum.Y,
		}
	}
	return out
}

func stopLine(cx, y, span float64, c color.RGBA) []Primitive {
	step := span / stopDashes
	prims := make([]Primitive, 0, stopDashes)
	for i := 0; i < stopDashes; i++ {
		x := cx - span/2 + float64(i)*step
		prims = append(prims, line(dynamo.Vec2{X: x, Y: y}, dynamo.Vec2{X: x + step/2, Y: y}, c, stopLineWidth))
	}
	return prims
}
