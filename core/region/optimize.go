//go:build !gocv

package region

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Optimize prepares isolated text for OCR: grayscale, contrast, normalize,
// blur and finally scale by f.
func Optimize(img image.Image, f float64) *image.NRGBA {
	if img.Bounds().Empty() {
		return &image.NRGBA{}
	}

	o := imaging.Grayscale(img)
	o = imaging.AdjustContrast(o, 40)
	o = normalize(o)
	o = imaging.Blur(o, 1)

	if f == 1 {
		return o
	}

	b := o.Bounds()
	return imaging.Resize(o, int(float64(b.Dx())*f+.5), 0, imaging.Linear)
}

// normalize stretches the gray levels of img to the full 0-255 range.
func normalize(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		v := img.Pix[i]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if hi <= lo {
		return img
	}

	span := float64(hi - lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		s := func(v uint8) uint8 {
			if v <= lo {
				return 0
			}
			return uint8(float64(v-lo)*255/span + .5)
		}
		return color.NRGBA{R: s(c.R), G: s(c.G), B: s(c.B), A: c.A}
	})
}
