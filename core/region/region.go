package region

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/team"
)

// Extractor crops the semantic regions of one screenshot. Every returned image
// is a copy with its origin at 0, 0.
type Extractor struct {
	img     image.Image
	offsets *layout.Offsets
}

func New(img image.Image, o *layout.Offsets) *Extractor {
	return &Extractor{img: img, offsets: o}
}

func (e *Extractor) Ban(c team.Color, i int) *image.NRGBA {
	t := e.offsets.Teams[c]
	if t == nil || i < 0 || i >= len(t.Bans) {
		return &image.NRGBA{}
	}
	return Crop(e.img, t.Bans[i])
}

func (e *Extractor) BanCheck(c team.Color) *image.NRGBA {
	t := e.offsets.Teams[c]
	if t == nil {
		return &image.NRGBA{}
	}
	return Crop(e.img, t.BanCheck)
}

func (e *Extractor) Map() *image.NRGBA {
	return Crop(e.img, e.offsets.Map)
}

// NameScale is the factor the name box is enlarged by before rotation.
const NameScale = 4

// Names returns the hero-name and player-name boxes of a player slot. The name
// box is clamped to the slot, enlarged by NameScale, rotated by the team angle,
// then cropped. Both boxes are returned at NameScale.
func (e *Extractor) Names(c team.Color, i int) (hero, player *image.NRGBA) {
	t := e.offsets.Teams[c]
	if t == nil || i < 0 || i >= len(t.Players) {
		return &image.NRGBA{}, &image.NRGBA{}
	}

	slot := t.Players[i]
	name := t.Name.Add(slot.Min).Intersect(slot)

	rotated := Rotate(Scale(Crop(e.img, name), NameScale), t.Angle)

	return Crop(rotated, mul(t.HeroName, NameScale)), Crop(rotated, mul(t.PlayerName, NameScale))
}

func (e *Extractor) Timer() *image.NRGBA {
	return Crop(e.img, e.offsets.Timer)
}

// Crop copies r, relative to the origin of img, clamped to its bounds.
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, r.Add(img.Bounds().Min))
}

func Encode(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := encoder.Encode(buf, img)
	if err != nil {
		return nil, errors.Wrap(err, "region: png")
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "region: decode")
	}
	return imaging.Clone(img), nil
}

func Invert(img image.Image) *image.NRGBA {
	return imaging.Invert(img)
}

// Rotate turns img counter-clockwise by deg degrees keeping its size.
func Rotate(img image.Image, deg float64) *image.NRGBA {
	if deg == 0 || img.Bounds().Empty() {
		return imaging.Clone(img)
	}

	b := img.Bounds()
	return imaging.CropCenter(imaging.Rotate(img, deg, color.Black), b.Dx(), b.Dy())
}

// Scale resizes img by factor f with bilinear interpolation.
func Scale(img image.Image, f float64) *image.NRGBA {
	b := img.Bounds()

	w := int(math.Round(float64(b.Dx()) * f))
	h := int(math.Round(float64(b.Dy()) * f))
	if w <= 0 || h <= 0 {
		return &image.NRGBA{}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

func mul(r image.Rectangle, f int) image.Rectangle {
	return image.Rectangle{Min: r.Min.Mul(f), Max: r.Max.Mul(f)}
}
