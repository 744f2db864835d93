package visualizer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Background colors per color scheme.
var (
	DarkBackground  = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}
	LightBackground = color.RGBA{R: 0xed, G: 0xeb, B: 0xe9, A: 0xff}
)

// Bar geometry constants.
const (
	barWidthFactor  = 4.5
	barHeightFactor = 4
	barGap          = 1
)

// Bar is one bottom-anchored rectangle of the spectrum in surface coordinates.
type Bar struct {
	X, Y          float64
	Width, Height float64
	Color         color.RGBA
}

// BarColor returns the fill for a bin magnitude.
func BarColor(magnitude byte) color.RGBA {
	return color.RGBA{R: uint8(min(int(magnitude)+100, 255)), G: 107, B: 210, A: 0xff}
}

// Background returns the clear color for the given scheme.
func Background(dark bool) color.RGBA {
	if dark {
		return DarkBackground
	}
	return LightBackground
}

// Layout computes the bars for a snapshot on a width x height surface.
// Every bin gets a bar; bars past the right edge are returned but fall
// outside the surface.
func Layout(width, height int, snapshot []byte) []Bar {
	n := len(snapshot)
	if n == 0 {
		return nil
	}

	w := float64(width) / float64(n) * barWidthFactor
	bars := make([]Bar, n)
	x := 0.0
	for i, m := range snapshot {
		h := float64(m) * barHeightFactor
		bars[i] = Bar{
			X:      x,
			Y:      float64(height) - h,
			Width:  w,
			Height: h,
			Color:  BarColor(m),
		}
		x += w + barGap
	}
	return bars
}

// Painter draws spectrum frames. It reuses its rasterizer between frames
// and is not safe for concurrent use.
type Painter struct {
	rast vector.Rasterizer
	fill image.Uniform
	bg   image.Uniform
}

// NewPainter creates a painter.
func NewPainter() *Painter {
	return &Painter{}
}

// Paint clears dst and draws the snapshot's bars with anti-aliased edges.
func (p *Painter) Paint(dst draw.Image, snapshot []byte, dark bool) {
	b := dst.Bounds()
	p.bg.C = Background(dark)
	draw.Draw(dst, b, &p.bg, image.Point{}, draw.Src)

	width, height := float64(b.Dx()), float64(b.Dy())
	for _, bar := range Layout(b.Dx(), b.Dy(), snapshot) {
		if bar.X >= width {
			break
		}
		if bar.Height <= 0 {
			continue
		}

		x0, x1 := math.Max(bar.X, 0), math.Min(bar.X+bar.Width, width)
		y0, y1 := math.Max(bar.Y, 0), height
		if x0 >= x1 || y0 >= y1 {
			continue
		}

		px := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
		ox, oy := float32(px.Min.X), float32(px.Min.Y)

		p.rast.Reset(px.Dx(), px.Dy())
		p.rast.DrawOp = draw.Over
		p.rast.MoveTo(float32(x0)-ox, float32(y0)-oy)
		p.rast.LineTo(float32(x1)-ox, float32(y0)-oy)
		p.rast.LineTo(float32(x1)-ox, float32(y1)-oy)
		p.rast.LineTo(float32(x0)-ox, float32(y1)-oy)
		p.rast.ClosePath()

		p.fill.C = bar.Color
		p.rast.Draw(dst, px.Add(b.Min), &p.fill, image.Point{})
	}
}
