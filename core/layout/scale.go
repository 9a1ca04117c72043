package layout

import (
	"image"
	"math"
	"sync"

	"github.com/pidgy/drafthud/core/team"
)

// Offsets is the geometry of a Definition scaled to one screenshot resolution.
type Offsets struct {
	Size image.Point

	Map   image.Rectangle
	Timer image.Rectangle

	BanSize        image.Point
	BanCheckSize   image.Point
	PlayerSize     image.Point
	NameSize       image.Point
	HeroNameSize   image.Point
	PlayerNameSize image.Point

	Teams map[team.Color]*TeamOffsets
}

type TeamOffsets struct {
	Bans       []image.Rectangle
	BanCheck   image.Rectangle
	Players    []image.Rectangle
	Name       image.Rectangle
	HeroName   image.Rectangle
	PlayerName image.Rectangle
	Angle      float64
}

// Scaler caches Offsets by resolution.
type Scaler struct {
	def *Definition

	cache map[image.Point]*Offsets
	mutex sync.Mutex
}

func NewScaler(def *Definition) *Scaler {
	return &Scaler{
		def:   def,
		cache: make(map[image.Point]*Offsets),
	}
}

// Scale maps a base-resolution coordinate to the target resolution, rounding
// each axis independently.
func Scale(p, base, target image.Point) image.Point {
	return image.Pt(
		int(math.Round(float64(p.X)/float64(base.X)*float64(target.X))),
		int(math.Round(float64(p.Y)/float64(base.Y)*float64(target.Y))),
	)
}

// ScaleRect scales a rectangle's position and size.
func ScaleRect(pos, size, base, target image.Point) image.Rectangle {
	p := Scale(pos, base, target)
	return image.Rectangle{Min: p, Max: p.Add(Scale(size, base, target))}
}

func (d *Definition) Scale(size image.Point) *Offsets {
	s := func(p image.Point) image.Point { return Scale(p, d.Base, size) }
	r := func(pos, sz image.Point) image.Rectangle { return ScaleRect(pos, sz, d.Base, size) }

	o := &Offsets{
		Size: size,

		Map:   r(d.Map.Pos, d.Map.Size),
		Timer: r(d.Timer.Pos, d.Timer.Size),

		BanSize:        s(d.BanSize),
		BanCheckSize:   s(d.BanCheckSize),
		PlayerSize:     s(d.PlayerSize),
		NameSize:       s(d.NameSize),
		HeroNameSize:   s(d.HeroNameSize),
		PlayerNameSize: s(d.PlayerNameSize),

		Teams: make(map[team.Color]*TeamOffsets, len(d.Teams)),
	}

	for c, t := range d.Teams {
		to := &TeamOffsets{
			BanCheck:   r(t.BanCheck, d.BanCheckSize),
			Name:       r(t.Name, d.NameSize),
			HeroName:   r(t.HeroName, d.HeroNameSize),
			PlayerName: r(t.PlayerName, d.PlayerNameSize),
			Angle:      t.Angle,
		}

		for _, b := range t.Bans {
			to.Bans = append(to.Bans, r(b, d.BanSize))
		}

		for _, p := range t.Players {
			to.Players = append(to.Players, r(p, d.PlayerSize))
		}

		o.Teams[c] = to
	}

	return o
}

func (s *Scaler) Definition() *Definition {
	return s.def
}

// Offsets returns the geometry for a screenshot of the given size, computing
// it on the first request for that resolution.
func (s *Scaler) Offsets(size image.Point) *Offsets {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	o, ok := s.cache[size]
	if !ok {
		o = s.def.Scale(size)
		s.cache[size] = o
	}

	return o
}
