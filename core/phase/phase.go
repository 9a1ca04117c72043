// Package phase determines which team is acting on the draft screen.
package phase

import (
	"image"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/team"
)

type Phase int

const (
	Undetermined Phase = iota
	BluePicking
	RedPicking
	BanningBlue
	BanningRed
)

var (
	ErrNoTimer   = errors.New("could not detect pick counter")
	ErrNoBanTeam = errors.New("could not detect banning team")
)

// Result is the detected phase with the ban indicator counts that decided it.
// Tied is set when both teams showed the same non-zero count and blue was
// assumed.
type Result struct {
	Phase
	Blue, Red int
	Tied      bool
}

func (p Phase) Banning() bool {
	return p == BanningBlue || p == BanningRed
}

func (p Phase) String() string {
	switch p {
	case BluePicking:
		return "blue-picking"
	case RedPicking:
		return "red-picking"
	case BanningBlue:
		return "banning-blue"
	case BanningRed:
		return "banning-red"
	}
	return "undetermined"
}

// Team returns the acting team, empty when undetermined.
func (p Phase) Team() team.Color {
	switch p {
	case BluePicking, BanningBlue:
		return team.Blue
	case RedPicking, BanningRed:
		return team.Red
	}
	return ""
}

func (r Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("phase", r.Phase.String()).Int("blue", r.Blue).Int("red", r.Red).Bool("tied", r.Tied)
}

// Detect reads the phase from the timer crop and, when banning, from the ban
// indicator crop of each team.
func Detect(timer image.Image, checks map[team.Color]image.Image, colors *layout.Colors) (Result, error) {
	switch {
	case rgba.FindAny(timer, colors.Timer.Blue):
		return Result{Phase: BluePicking}, nil
	case rgba.FindAny(timer, colors.Timer.Red):
		return Result{Phase: RedPicking}, nil
	case rgba.FindAny(timer, colors.Timer.Ban):
		return Banning(checks[team.Blue], checks[team.Red], colors.BanActive)
	}

	return Result{}, ErrNoTimer
}

// Banning counts the ban indicator samples of each team. The higher count
// wins, a non-zero tie resolves to blue and is flagged.
func Banning(blue, red image.Image, active rgba.Rules) (Result, error) {
	r := Result{
		Blue: count(blue, active),
		Red:  count(red, active),
	}

	switch {
	case r.Blue > r.Red:
		r.Phase = BanningBlue
	case r.Red > r.Blue:
		r.Phase = BanningRed
	case r.Blue > 0:
		r.Phase = BanningBlue
		r.Tied = true
	default:
		return r, ErrNoBanTeam
	}

	return r, nil
}

// Samples returns the seven indicator sample points of a ban check region.
func Samples(b image.Rectangle) []image.Point {
	w, h := b.Dx(), b.Dy()
	return []image.Point{
		b.Min.Add(image.Pt(w/2, h/2)),
		b.Min.Add(image.Pt(w/4, h/4)),
		b.Min.Add(image.Pt(w*3/4, h/4)),
		b.Min.Add(image.Pt(w/4, h*3/4)),
		b.Min.Add(image.Pt(w*3/4, h*3/4)),
		b.Min.Add(image.Pt(w/8, h/2)),
		b.Min.Add(image.Pt(w*7/8, h/2)),
	}
}

func count(img image.Image, rules rgba.Rules) int {
	if img == nil || img.Bounds().Empty() {
		return 0
	}
	return rgba.Count(img, rules, Samples(img.Bounds()))
}
