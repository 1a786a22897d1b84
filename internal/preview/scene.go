// Package preview renders the palette scene and chime waveform as images.
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gensys/chromapoem/internal/colour"
	"github.com/gensys/chromapoem/internal/geometry"
)

// kappa is the cubic Bezier control distance for a quarter circle.
const kappa = 0.5522847498

// Options controls scene rendering.
type Options struct {
	Width  int
	Height int
	// Gradient draws the palette gradient instead of a flat background when
	// the palette has one.
	Gradient bool
	// Scale multiplies every rendered size and offset. Zero means 1.
	Scale float64
}

// DefaultOptions returns a 1280x800 canvas.
func DefaultOptions() Options {
	return Options{Width: 1280, Height: 800, Scale: 1}
}

// RenderScene draws the background and the three nested circles. Circle
// offsets are taken from the canvas centre and circles two and three are
// blurred by their blur radius.
func RenderScene(p colour.Palette, l geometry.Layout, opts Options) *image.RGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	bounds := image.Rect(0, 0, opts.Width, opts.Height)
	dst := image.NewRGBA(bounds)
	if opts.Gradient && p.Gradient != nil {
		fillVerticalGradient(dst, p.Gradient.Stop1, p.Gradient.Stop2)
	} else {
		draw.Draw(dst, bounds, image.NewUniform(p.Background), image.Point{}, draw.Src)
	}

	cx := float64(opts.Width) / 2
	cy := float64(opts.Height) / 2
	fills := []colour.RGB{p.Circle1, p.Circle2, p.Circle3}

	for i, c := range l.Circles {
		x := cx + c.Offset.X*scale
		y := cy + c.Offset.Y*scale
		r := c.Size * scale / 2
		blur := c.Blur * scale

		if blur < 0.5 {
			fillCircle(dst, x, y, r, fills[i])
			continue
		}

		layer := image.NewRGBA(bounds)
		fillCircle(layer, x, y, r, fills[i])
		BoxBlur(layer, blur)
		draw.Draw(dst, bounds, layer, image.Point{}, draw.Over)
	}
	return dst
}

func fillVerticalGradient(dst *image.RGBA, top, bottom colour.RGB) {
	b := dst.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y-b.Min.Y) / float64(h-1)
		}
		c := colour.Lerp(top, bottom, t)
		row := image.Rect(b.Min.X, y, b.Max.X, y+1)
		draw.Draw(dst, row, image.NewUniform(c), image.Point{}, draw.Src)
	}
}

// fillCircle rasterises an anti-aliased filled circle onto dst.
func fillCircle(dst draw.Image, cx, cy, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	k := r * kappa
	pt := func(x, y float64) (float32, float32) {
		return float32(x - float64(b.Min.X)), float32(y - float64(b.Min.Y))
	}

	z.MoveTo(pt(cx+r, cy))
	cubeTo(z, pt, cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	cubeTo(z, pt, cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	cubeTo(z, pt, cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	cubeTo(z, pt, cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()

	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func cubeTo(z *vector.Rasterizer, pt func(x, y float64) (float32, float32), x1, y1, x2, y2, x3, y3 float64) {
	ax, ay := pt(x1, y1)
	bx, by := pt(x2, y2)
	cx, cy := pt(x3, y3)
	z.CubeTo(ax, ay, bx, by, cx, cy)
}

// BoxBlur approximates a gaussian blur with standard deviation sigma using
// three box blur passes in each direction.
func BoxBlur(img *image.RGBA, sigma float64) {
	if sigma <= 0 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	channels := make([][]float64, 4)
	for ch := range channels {
		channels[ch] = make([]float64, w*h)
	}
	for y := range h {
		for x := range w {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			for ch := range 4 {
				channels[ch][y*w+x] = float64(img.Pix[o+ch])
			}
		}
	}

	tmp := make([]float64, w*h)
	for _, r := range boxRadii(sigma, 3) {
		for ch := range channels {
			boxBlurH(channels[ch], tmp, w, h, r)
			boxBlurV(tmp, channels[ch], w, h, r)
		}
	}

	for y := range h {
		for x := range w {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			for ch := range 4 {
				img.Pix[o+ch] = uint8(math.Max(0, math.Min(255, math.Round(channels[ch][y*w+x]))))
			}
		}
	}
}

// boxRadii returns n box radii whose successive application approximates a
// gaussian of standard deviation sigma.
func boxRadii(sigma float64, n int) []int {
	ideal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(ideal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	m := int(math.Round((12*sigma*sigma - float64(n*wl*wl) - 4*float64(n*wl) - 3*float64(n)) / (-4*float64(wl) - 4)))

	radii := make([]int, n)
	for i := range radii {
		size := wu
		if i < m {
			size = wl
		}
		radii[i] = (size - 1) / 2
	}
	return radii
}

// boxBlurH averages each row over a window of 2r+1 pixels, clamping at the
// edges.
func boxBlurH(src, dst []float64, w, h, r int) {
	if r <= 0 {
		copy(dst, src)
		return
	}
	span := float64(2*r + 1)
	for y := range h {
		row := src[y*w : (y+1)*w]
		sum := 0.0
		for i := -r; i <= r; i++ {
			sum += row[clampIndex(i, w)]
		}
		for x := range w {
			dst[y*w+x] = sum / span
			sum += row[clampIndex(x+r+1, w)] - row[clampIndex(x-r, w)]
		}
	}
}

func boxBlurV(src, dst []float64, w, h, r int) {
	if r <= 0 {
		copy(dst, src)
		return
	}
	span := float64(2*r + 1)
	for x := range w {
		sum := 0.0
		for i := -r; i <= r; i++ {
			sum += src[clampIndex(i, h)*w+x]
		}
		for y := range h {
			dst[y*w+x] = sum / span
			sum += src[clampIndex(y+r+1, h)*w+x] - src[clampIndex(y-r, h)*w+x]
		}
	}
}

func clampIndex(i, n int) int {
	return max(0, min(n-1, i))
}
