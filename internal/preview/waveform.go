package preview

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gensys/chromapoem/internal/audio"
	"github.com/gensys/chromapoem/internal/colour"
)

const strokeWidth = 5

// RenderWaveform draws one sine trace per palette voice on the background
// colour. The innermost circle is drawn first with the largest amplitude and
// each later trace is 20% smaller.
func RenderWaveform(p colour.Palette, width, height int) *image.RGBA {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 200
	}
	bounds := image.Rect(0, 0, width, height)
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(p.Background), image.Point{}, draw.Src)

	voices := audio.Analyse(p)
	centreY := float64(height) / 2
	amplitude := float64(height) / 8

	for index := range voices {
		v := voices[len(voices)-1-index]
		freq := v.Frequency / 1000
		damp := 1 - float64(index)*0.2

		points := make([][2]float64, width)
		for x := range points {
			y := centreY + math.Sin(float64(x)/float64(width)*math.Pi*8*freq)*amplitude*damp
			points[x] = [2]float64{float64(x), y}
		}
		strokePolyline(dst, points, strokeWidth, v.Colour)
	}
	return dst
}

// strokePolyline draws a thick line through points by rasterising one quad
// per segment.
func strokePolyline(dst *image.RGBA, points [][2]float64, width float64, c colour.RGB) {
	if len(points) < 2 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	half := width / 2

	for i := 1; i < len(points); i++ {
		x0, y0 := points[i-1][0], points[i-1][1]
		x1, y1 := points[i][0], points[i][1]
		dx, dy := x1-x0, y1-y0
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Extend each segment by half the width so joints overlap.
		ex, ey := dx/length*half, dy/length*half
		nx, ny := -dy/length*half, dx/length*half

		z.MoveTo(float32(x0-ex+nx), float32(y0-ey+ny))
		z.LineTo(float32(x1+ex+nx), float32(y1+ey+ny))
		z.LineTo(float32(x1+ex-nx), float32(y1+ey-ny))
		z.LineTo(float32(x0-ex-nx), float32(y0-ey-ny))
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}
