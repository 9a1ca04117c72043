package layout

import (
	"encoding/json"
	"image"
	"os"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/team"
)

// Supported is the range of layout file versions this build understands.
const Supported = ">= 1.0, < 2.0"

var ErrUnsupported = errors.New("unsupported layout version")

// Box is a rectangle given as position and size at the base resolution.
type Box struct {
	Pos  image.Point `json:"pos"`
	Size image.Point `json:"size"`
}

// Definition is the draft screen geometry and colour rules at one canonical
// resolution. Every coordinate must be scaled with Offsets before use.
type Definition struct {
	Version string      `json:"version"`
	Base    image.Point `json:"base"`

	Map   Box `json:"map"`
	Timer Box `json:"timer"`

	BanSize        image.Point `json:"banSize"`
	BanCompareSize image.Point `json:"banCompareSize"`
	BanCheckSize   image.Point `json:"banCheckSize"`
	PlayerSize     image.Point `json:"playerSize"`
	NameSize       image.Point `json:"nameSize"`
	HeroNameSize   image.Point `json:"heroNameSize"`
	PlayerNameSize image.Point `json:"playerNameSize"`

	Teams map[team.Color]*Team `json:"teams"`

	Colors Colors `json:"colors"`
}

// Team is the per-side geometry. Name is relative to a player slot, HeroName
// and PlayerName are relative to the name box after rotating it by Angle.
type Team struct {
	Bans       []image.Point `json:"bans"`
	BanCheck   image.Point   `json:"banCheck"`
	Players    []image.Point `json:"players"`
	Name       image.Point   `json:"name"`
	Angle      float64       `json:"angle"`
	HeroName   image.Point   `json:"heroName"`
	PlayerName image.Point   `json:"playerName"`
}

// Colors are the rule tables used to classify each region. Maps are keyed by
// Ident, e.g. "blue-active".
type Colors struct {
	MapName rgba.Rules `json:"mapName"`

	Timer struct {
		Blue rgba.Rules `json:"blue"`
		Red  rgba.Rules `json:"red"`
		Ban  rgba.Rules `json:"ban"`
	} `json:"timer"`

	BanActive     rgba.Rules `json:"banActive"`
	BanBackground rgba.Rules `json:"banBackground"`
	Boost         rgba.Rules `json:"boost"`

	HeroBackgroundLocked map[string]rgba.Rules `json:"heroBackgroundLocked"`
	HeroNameLocked       map[string]rgba.Rules `json:"heroNameLocked"`
	HeroNamePrepick      map[string]rgba.Rules `json:"heroNamePrepick"`
	PlayerName           map[string]rgba.Rules `json:"playerName"`
}

// Ident names the colour variant of a team depending on whether it is the
// team currently acting.
func Ident(c team.Color, active bool) string {
	if active {
		return c.String() + "-active"
	}
	return c.String() + "-inactive"
}

// Load reads a layout definition from a JSON file and validates it.
func Load(file string) (*Definition, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "layout")
	}

	d := &Definition{}
	err = json.Unmarshal(b, d)
	if err != nil {
		return nil, errors.Wrapf(err, "layout: %s", file)
	}

	return d, d.Validate()
}

func (b Box) Rect() image.Rectangle {
	return image.Rectangle{Min: b.Pos, Max: b.Pos.Add(b.Size)}
}

func (d *Definition) Save(file string) error {
	b, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return errors.Wrap(err, "layout")
	}
	return errors.Wrap(os.WriteFile(file, b, 0644), "layout")
}

// Validate checks the version range and that every geometry the detectors
// depend on is present.
func (d *Definition) Validate() error {
	v, err := version.NewVersion(d.Version)
	if err != nil {
		return errors.Wrapf(err, "layout: version %q", d.Version)
	}

	c, err := version.NewConstraint(Supported)
	if err != nil {
		return errors.Wrap(err, "layout")
	}

	if !c.Check(v) {
		return errors.Wrapf(ErrUnsupported, "layout: %s not in %s", v, Supported)
	}

	if d.Base.X <= 0 || d.Base.Y <= 0 {
		return errors.Errorf("layout: invalid base resolution %s", d.Base)
	}

	for _, c := range team.Colors {
		t, ok := d.Teams[c]
		if !ok || t == nil {
			return errors.Errorf("layout: missing %s team", c)
		}
		if len(t.Players) != team.Players {
			return errors.Errorf("layout: %s team has %d players, want %d", c, len(t.Players), team.Players)
		}
		if len(t.Bans) == 0 {
			return errors.Errorf("layout: %s team has no ban slots", c)
		}
	}

	return d.Colors.validate()
}

// Prepick names the rule variant for the blue hero box while a hero is hovered.
func Prepick(ident string) string {
	return ident + "-picking"
}

// validate requires every rule table the detectors read. An empty table would
// match every pixel. Boost is optional.
func (c *Colors) validate() error {
	for name, rules := range map[string]rgba.Rules{
		"mapName":       c.MapName,
		"timer.blue":    c.Timer.Blue,
		"timer.red":     c.Timer.Red,
		"timer.ban":     c.Timer.Ban,
		"banActive":     c.BanActive,
		"banBackground": c.BanBackground,
	} {
		if len(rules) == 0 {
			return errors.Errorf("layout: missing %s colours", name)
		}
	}

	idents := []string{}
	for _, t := range team.Colors {
		idents = append(idents, Ident(t, true), Ident(t, false))
	}

	blue := []string{Ident(team.Blue, true), Ident(team.Blue, false), Prepick(Ident(team.Blue, true))}

	for name, want := range map[string]struct {
		tables map[string]rgba.Rules
		keys   []string
	}{
		"heroBackgroundLocked": {c.HeroBackgroundLocked, idents},
		"heroNameLocked":       {c.HeroNameLocked, idents},
		"heroNamePrepick":      {c.HeroNamePrepick, blue},
		"playerName":           {c.PlayerName, idents},
	} {
		for _, k := range want.keys {
			if len(want.tables[k]) == 0 {
				return errors.Errorf("layout: missing %s colours for %s", name, k)
			}
		}
	}

	return nil
}
