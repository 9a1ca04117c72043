package layout

import (
	"image"

	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/team"
)

// Default returns the draft screen layout measured on a 3440x1440 display.
func Default() *Definition {
	d := &Definition{
		Version: "1.2.0",
		Base:    image.Pt(3440, 1440),

		Map:   Box{Pos: image.Pt(1520, 40), Size: image.Pt(400, 46)},
		Timer: Box{Pos: image.Pt(1680, 96), Size: image.Pt(80, 60)},

		BanSize:        image.Pt(54, 54),
		BanCompareSize: image.Pt(32, 32),
		BanCheckSize:   image.Pt(180, 24),
		PlayerSize:     image.Pt(420, 170),
		NameSize:       image.Pt(260, 90),
		HeroNameSize:   image.Pt(240, 32),
		PlayerNameSize: image.Pt(240, 30),

		Teams: map[team.Color]*Team{
			team.Blue: {
				Bans:       []image.Point{{1250, 36}, {1310, 36}, {1370, 36}},
				BanCheck:   image.Pt(1250, 98),
				Players:    players(60),
				Name:       image.Pt(150, 40),
				Angle:      4,
				HeroName:   image.Pt(10, 10),
				PlayerName: image.Pt(10, 52),
			},
			team.Red: {
				Bans:       []image.Point{{2016, 36}, {2076, 36}, {2136, 36}},
				BanCheck:   image.Pt(2010, 98),
				Players:    players(2960),
				Name:       image.Pt(10, 40),
				Angle:      -4,
				HeroName:   image.Pt(10, 10),
				PlayerName: image.Pt(10, 52),
			},
		},
	}

	white := rgba.Rules{{Color: rgba.White, Lum: 70, Hue: 360}}

	c := &d.Colors
	c.MapName = rgba.Rules{{Color: rgba.RGBA{R: 240, G: 240, B: 255, A: 255}, Lum: 60, Hue: 360}}
	c.Timer.Blue = rgba.Rules{{Color: rgba.TeamBlue, Lum: 40, Hue: 12}}
	c.Timer.Red = rgba.Rules{{Color: rgba.TeamRed, Lum: 40, Hue: 12}}
	c.Timer.Ban = rgba.Rules{{Color: rgba.RGBA{R: 160, G: 64, B: 255, A: 255}, Lum: 40, Hue: 14}}
	c.BanActive = rgba.Rules{{Color: rgba.BanHighlight, Lum: 50, Hue: 15}}
	c.BanBackground = rgba.Rules{{Color: rgba.RGBA{R: 20, G: 24, B: 44, A: 255}, Lum: 20, Hue: 40}}
	c.Boost = rgba.Rules{{Color: rgba.RGBA{R: 255, G: 210, B: 74, A: 255}, Lum: 40, Hue: 20}}

	c.HeroBackgroundLocked = map[string]rgba.Rules{
		"blue-active":   {{Color: rgba.RGBA{R: 30, G: 90, B: 160, A: 255}, Lum: 25, Hue: 15}},
		"blue-inactive": {{Color: rgba.RGBA{R: 26, G: 60, B: 106, A: 255}, Lum: 25, Hue: 15}},
		"red-active":    {{Color: rgba.RGBA{R: 160, G: 40, B: 48, A: 255}, Lum: 25, Hue: 15}},
		"red-inactive":  {{Color: rgba.RGBA{R: 106, G: 30, B: 36, A: 255}, Lum: 25, Hue: 15}},
	}
	c.HeroNameLocked = map[string]rgba.Rules{
		"blue-active":   white,
		"blue-inactive": white,
		"red-active":    white,
		"red-inactive":  white,
	}
	c.HeroNamePrepick = map[string]rgba.Rules{
		"blue-active-picking": {{Color: rgba.RGBA{R: 159, G: 208, B: 255, A: 255}, Lum: 50, Hue: 30}},
		"blue-active":         {{Color: rgba.RGBA{R: 200, G: 200, B: 210, A: 255}, Lum: 40, Hue: 360}},
		"blue-inactive":       {{Color: rgba.RGBA{R: 200, G: 200, B: 210, A: 255}, Lum: 40, Hue: 360}},
	}
	c.PlayerName = map[string]rgba.Rules{
		"blue-active":   {{Color: rgba.RGBA{R: 224, G: 232, B: 255, A: 255}, Lum: 50, Hue: 360}},
		"blue-inactive": {{Color: rgba.RGBA{R: 200, G: 210, B: 235, A: 255}, Lum: 50, Hue: 360}},
		"red-active":    {{Color: rgba.RGBA{R: 255, G: 224, B: 224, A: 255}, Lum: 50, Hue: 360}},
		"red-inactive":  {{Color: rgba.RGBA{R: 235, G: 205, B: 205, A: 255}, Lum: 50, Hue: 360}},
	}

	return d
}

func players(x int) []image.Point {
	p := []image.Point{}
	for i := 0; i < team.Players; i++ {
		p = append(p, image.Pt(x, 230+i*190))
	}
	return p
}
