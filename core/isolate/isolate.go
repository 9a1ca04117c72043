// Package isolate separates text from the background of a cropped label.
package isolate

import (
	"image"

	"github.com/pidgy/drafthud/core/rgba"
)

const (
	PadX = 8
	PadY = 4
)

// Options selects the colour rules and output colours of an isolation.
type Options struct {
	Positive   rgba.Rules
	Negative   rgba.Rules
	Foreground rgba.RGBA
	Background rgba.RGBA
}

// Text returns light text on a dark background.
func Text(positive, negative rgba.Rules) Options {
	return Options{
		Positive:   positive,
		Negative:   negative,
		Foreground: rgba.White,
		Background: rgba.Black,
	}
}

// Name isolates the text in img without modifying it. Matching pixels are
// blended towards the foreground by match strength, everything else becomes
// background. Columns holding a negative match never count towards the text
// box. The result is cropped to the text box padded by PadX and PadY. When no
// column qualifies the blanked image is returned with false.
func Name(img image.Image, o Options) (*image.NRGBA, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out, false
	}

	fg := o.Foreground
	bg := o.Background

	minX, maxX := w, -1
	minY, maxY := h, -1

	for x := 0; x < w; x++ {
		positive := false
		negative := false

		for y := 0; y < h; y++ {
			c := bg

			switch m := rgba.Score(rgba.At(img, b.Min.X+x, b.Min.Y+y), o.Positive, o.Negative); {
			case m > 0:
				c = rgba.Mix(fg, bg, float64(m)/255)
				positive = true
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			case m < 0:
				negative = true
			}

			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = 255
		}

		if positive && !negative {
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
		}
	}

	if maxX < minX {
		return out, false
	}

	r := image.Rect(minX-PadX, minY-PadY, maxX+1+PadX, maxY+1+PadY).Intersect(out.Bounds())

	return Copy(out.SubImage(r).(*image.NRGBA)), true
}

// Copy returns img with its origin moved to 0, 0 and its own pixel buffer.
func Copy(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	c := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(c.Pix[y*c.Stride:], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):img.PixOffset(b.Max.X, b.Min.Y+y)])
	}
	return c
}
