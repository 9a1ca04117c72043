package rgba

import (
	"image"
	"math"

	"github.com/rs/zerolog"
)

// Rule classifies a pixel as belonging to a semantic region when both its
// luminance and hue distance to Color are within tolerance.
type Rule struct {
	Color RGBA    `json:"color"`
	Lum   float64 `json:"lum"`
	Hue   float64 `json:"hue"`
}

type Rules []Rule

const (
	lumWeight = 63
	hueWeight = 191
	hueFold   = 90
)

// Hue returns the HSV hue angle of c in degrees, 0 for achromatic colours.
func Hue(c RGBA) float64 {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	if max == min {
		return 0
	}

	var h float64
	switch max {
	case r:
		h = (g - b) / (max - min)
	case g:
		h = 2 + (b-r)/(max-min)
	default:
		h = 4 + (r-g)/(max-min)
	}

	h *= 60
	if h < 0 {
		h += 360
	}

	return h
}

// HueDiff returns the angular distance between the hues of a and b, at most 180.
func HueDiff(a, b RGBA) float64 {
	d := math.Abs(Hue(a) - Hue(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// LumDiff returns the mean absolute channel difference between a and b.
func LumDiff(a, b RGBA) float64 {
	return (math.Abs(float64(a.R)-float64(b.R)) +
		math.Abs(float64(a.G)-float64(b.G)) +
		math.Abs(float64(a.B)-float64(b.B))) / 3
}

// Match grades how closely c matches ref, 0 when either distance is out of
// tolerance, otherwise 1 to 255 with closer colours scoring higher.
func Match(c, ref RGBA, lum, hue float64) int {
	dl := LumDiff(c, ref)
	dh := HueDiff(c, ref)
	if dl > lum || dh > hue {
		return 0
	}

	l := float64(lumWeight)
	if lum > 0 {
		l = (lum - dl) * lumWeight / lum
	}

	h := float64(hueWeight)
	if fold := math.Min(hue, hueFold); fold > 0 {
		h = (fold - math.Min(dh, fold)) * hueWeight / fold
	}

	s := int(math.Round(1 + l + h))
	if s > 255 {
		return 255
	}

	return s
}

func (r Rule) Match(c RGBA) int {
	return Match(c, r.Color, r.Lum, r.Hue)
}

func (r Rule) MarshalZerologObject(e *zerolog.Event) {
	e.Str("color", r.Color.Hex()).Float64("lum", r.Lum).Float64("hue", r.Hue)
}

// Best returns the strongest score of any rule against c.
func (rules Rules) Best(c RGBA) int {
	best := 0
	for _, r := range rules {
		s := r.Match(c)
		if s > best {
			best = s
		}
	}
	return best
}

// Any reports whether any rule matches c.
func (rules Rules) Any(c RGBA) bool {
	for _, r := range rules {
		if r.Match(c) > 0 {
			return true
		}
	}
	return false
}

// Score classifies c against positive and negative rules. A negative hit
// rejects the pixel with -1. With no positive rules every pixel scores 255.
func Score(c RGBA, positive, negative Rules) int {
	if negative.Any(c) {
		return -1
	}

	if len(positive) == 0 {
		return 255
	}

	return positive.Best(c)
}

// FindAny scans img and reports whether any pixel matches one of the rules.
func FindAny(img image.Image, rules Rules) bool {
	if len(rules) == 0 {
		return false
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rules.Any(At(img, x, y)) {
				return true
			}
		}
	}

	return false
}

// Count returns how many of the points inside img match the rules. Empty
// rules match nothing.
func Count(img image.Image, rules Rules, points []image.Point) int {
	if len(rules) == 0 {
		return 0
	}

	n := 0
	for _, p := range points {
		if !p.In(img.Bounds()) {
			continue
		}
		if Score(At(img, p.X, p.Y), rules, nil) > 0 {
			n++
		}
	}
	return n
}

// BackgroundMatch samples the centre and the horizontal and vertical thirds of
// img and requires all but tolerance samples to match.
func BackgroundMatch(img image.Image, rules Rules, tolerance int) bool {
	b := img.Bounds()
	if b.Empty() {
		return false
	}

	w, h := b.Dx(), b.Dy()
	points := []image.Point{
		b.Min.Add(image.Pt(w/2, h/2)),
		b.Min.Add(image.Pt(w/2, h/3)),
		b.Min.Add(image.Pt(w/2, h*2/3)),
		b.Min.Add(image.Pt(w/3, h/2)),
		b.Min.Add(image.Pt(w*2/3, h/2)),
	}

	return Count(img, rules, points) >= len(points)-tolerance
}

// LockedBackgroundMatch samples the four edge midpoints of img, inset by two
// pixels, and requires all but tolerance samples to match.
func LockedBackgroundMatch(img image.Image, rules Rules, tolerance int) bool {
	b := img.Bounds()
	if b.Empty() {
		return false
	}

	w, h := b.Dx(), b.Dy()
	points := []image.Point{
		b.Min.Add(image.Pt(w/4+2, h/2)),
		b.Min.Add(image.Pt(w*3/4-2, h/2)),
		b.Min.Add(image.Pt(w/2, h/4+2)),
		b.Min.Add(image.Pt(w/2, h*3/4-2)),
	}

	return Count(img, rules, points) >= len(points)-tolerance
}

// Mix blends fg over bg, ratio 1 yielding fg and 0 yielding bg.
func Mix(fg, bg RGBA, ratio float64) RGBA {
	ratio = math.Max(0, math.Min(1, ratio))

	m := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*ratio + float64(b)*(1-ratio)))
	}

	return RGBA{R: m(fg.R, bg.R), G: m(fg.G, bg.G), B: m(fg.B, bg.B), A: m(fg.A, bg.A)}
}
