package detect

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pidgy/drafthud/core/config"
	"github.com/pidgy/drafthud/core/gamedata"
	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/ocr"
	"github.com/pidgy/drafthud/core/phase"
	"github.com/pidgy/drafthud/core/portrait"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/state"
	"github.com/pidgy/drafthud/core/team"
)

var (
	gray     = rgba.RGBA{R: 60, G: 60, B: 60, A: 255}
	banEmpty = rgba.RGBA{R: 20, G: 24, B: 44, A: 255}
	mapText  = rgba.RGBA{R: 240, G: 240, B: 255, A: 255}
	purple   = rgba.RGBA{R: 160, G: 64, B: 255, A: 255}
	locked   = rgba.RGBA{R: 30, G: 90, B: 160, A: 255}
)

// recognizer answers by language set: hero and map labels use the base
// languages, player names the extended set.
type recognizer struct {
	hero, player string
	err          error

	calls []string
	mutex sync.Mutex
}

func (r *recognizer) Recognize(ctx context.Context, image []byte, languages string, params map[string]string) (ocr.Result, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.calls = append(r.calls, languages)

	if r.err != nil {
		return ocr.Result{}, r.err
	}

	if strings.Contains(languages, "+") {
		return ocr.Result{Text: r.player, Confidence: 90}, nil
	}
	return ocr.Result{Text: r.hero + "\n", Confidence: 90}, nil
}

func (r *recognizer) set(text string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.hero = text
}

func (r *recognizer) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.calls)
}

func testLayout() *layout.Definition {
	d := &layout.Definition{
		Version: "1.2.0",
		Base:    image.Pt(400, 300),

		Map:   layout.Box{Pos: image.Pt(100, 10), Size: image.Pt(200, 20)},
		Timer: layout.Box{Pos: image.Pt(180, 40), Size: image.Pt(40, 20)},

		BanSize:        image.Pt(20, 20),
		BanCompareSize: image.Pt(16, 16),
		BanCheckSize:   image.Pt(40, 10),
		PlayerSize:     image.Pt(100, 40),
		NameSize:       image.Pt(80, 30),
		HeroNameSize:   image.Pt(70, 12),
		PlayerNameSize: image.Pt(70, 12),

		Teams: map[team.Color]*layout.Team{
			team.Blue: {
				Bans:       []image.Point{{20, 40}, {45, 40}, {70, 40}},
				BanCheck:   image.Pt(20, 65),
				Players:    slots(10),
				Name:       image.Pt(10, 5),
				HeroName:   image.Pt(0, 0),
				PlayerName: image.Pt(0, 16),
			},
			team.Red: {
				Bans:       []image.Point{{300, 40}, {325, 40}, {350, 40}},
				BanCheck:   image.Pt(300, 65),
				Players:    slots(290),
				Name:       image.Pt(10, 5),
				HeroName:   image.Pt(0, 0),
				PlayerName: image.Pt(0, 16),
			},
		},
	}

	d.Colors = layout.Default().Colors

	return d
}

func slots(x int) []image.Point {
	p := []image.Point{}
	for i := 0; i < team.Players; i++ {
		p = append(p, image.Pt(x, 90+i*42))
	}
	return p
}

// screenshot paints a draft screen for testLayout at its base resolution.
type screenshot struct {
	*image.NRGBA
	def *layout.Definition
}

func newScreenshot(def *layout.Definition) *screenshot {
	s := &screenshot{NRGBA: image.NewNRGBA(image.Rect(0, 0, def.Base.X, def.Base.Y)), def: def}
	s.fill(s.Bounds(), gray)

	for _, c := range team.Colors {
		for i := range def.Teams[c].Bans {
			s.fill(s.ban(c, i), banEmpty)
		}
	}

	return s
}

func (s *screenshot) fill(r image.Rectangle, c rgba.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.Set(x, y, c.Color())
		}
	}
}

func (s *screenshot) ban(c team.Color, i int) image.Rectangle {
	return layout.Box{Pos: s.def.Teams[c].Bans[i], Size: s.def.BanSize}.Rect()
}

func (s *screenshot) heroName(c team.Color, i int) image.Rectangle {
	t := s.def.Teams[c]
	min := t.Players[i].Add(t.Name).Add(t.HeroName)
	return image.Rectangle{Min: min, Max: min.Add(s.def.HeroNameSize)}
}

func (s *screenshot) timer(c rgba.RGBA) {
	s.fill(s.def.Timer.Rect(), c)
}

func (s *screenshot) mapText() {
	r := s.def.Map.Rect()
	s.fill(image.Rect(r.Min.X+50, r.Min.Y+4, r.Max.X-50, r.Max.Y-4), mapText)
}

func (s *screenshot) banCheck(c team.Color) {
	min := s.def.Teams[c].BanCheck
	s.fill(image.Rectangle{Min: min, Max: min.Add(s.def.BanCheckSize)}, rgba.BanHighlight)
}

func (s *screenshot) portrait(c team.Color, i int, img image.Image) {
	r := s.ban(c, i)
	b := img.Bounds()
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			s.Set(r.Min.X+x, r.Min.Y+y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
}

func (s *screenshot) playerName(c team.Color, i int) image.Rectangle {
	t := s.def.Teams[c]
	min := t.Players[i].Add(t.Name).Add(t.PlayerName)
	return image.Rectangle{Min: min, Max: min.Add(s.def.PlayerNameSize)}
}

// label paints a short text stand-in kept clear of the background sample
// points of r.
func (s *screenshot) label(r image.Rectangle, c rgba.RGBA) {
	s.fill(image.Rect(r.Min.X+24, r.Min.Y+2, r.Min.X+32, r.Min.Y+10), c)
}

// lockedHero paints a locked hero box with a white label.
func (s *screenshot) lockedHero(c team.Color, i int, bg rgba.RGBA) {
	r := s.heroName(c, i)
	s.fill(r, bg)
	s.label(r, rgba.White)
}

// pattern draws a distinct ban portrait for each kind.
func pattern(kind int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(0)
			switch kind {
			case 0:
				if (y/4)%2 == 0 {
					v = 255
				}
			case 1:
				if x+y < 20 {
					v = 255
				}
			}
			img.Set(x, y, color.NRGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	return img
}

type fixture struct {
	screen *Screen
	ocr    *recognizer
	cfg    *config.Config
	def    *layout.Definition
	clock  time.Time
}

func newFixture(t *testing.T, portraits map[string]image.Image, configure func(c *config.Config)) *fixture {
	t.Helper()

	cfg := config.Default()
	if configure != nil {
		configure(&cfg)
	}

	lib := portrait.New(image.Pt(16, 16), t.TempDir())
	for hero, img := range portraits {
		require.NoError(t, lib.Add(hero, img))
	}

	f := &fixture{
		ocr:   &recognizer{},
		cfg:   &cfg,
		def:   testLayout(),
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	s, err := New(Options{
		Config:     f.cfg,
		Layout:     f.def,
		Portraits:  lib,
		OCR:        f.ocr,
		Dictionary: gamedata.Default(),
		PickText:   "PICKING",
	})
	require.NoError(t, err)

	s.now = func() time.Time { return f.clock }
	f.screen = s

	return f
}

// lockMap presets a known map so passes skip map OCR.
func (f *fixture) lockMap(name string) {
	f.screen.mutex.Lock()
	defer f.screen.mutex.Unlock()

	f.screen.mapName = name
	f.screen.mapLock = f.clock.Add(time.Hour)
}

func (f *fixture) detect(t *testing.T, img image.Image) (bool, error) {
	t.Helper()
	return f.screen.Detect(context.Background(), img)
}

func types(events []*state.Event) []state.EventType {
	t := []state.EventType{}
	for i := len(events) - 1; i >= 0; i-- {
		t = append(t, events[i].Type)
	}
	return t
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Layout: testLayout(), Dictionary: gamedata.Default()})
	require.Error(t, err)

	bad := testLayout()
	bad.Version = "2.1.0"
	_, err = New(Options{Layout: bad, OCR: &recognizer{}, Dictionary: gamedata.Default()})
	require.ErrorIs(t, err, layout.ErrUnsupported)

	// Missing colours fail up front instead of matching every pixel.
	bad = testLayout()
	bad.Colors.BanBackground = nil
	_, err = New(Options{Layout: bad, OCR: &recognizer{}, Dictionary: gamedata.Default()})
	require.ErrorContains(t, err, "banBackground")
}

func TestDetectNoMapText(t *testing.T) {
	f := newFixture(t, nil, nil)

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)

	ok, err := f.detect(t, img)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrNoMapText)

	require.Equal(t, phase.BluePicking, f.screen.Phase().Phase)
	require.Empty(t, f.screen.Map())
	require.Zero(t, f.ocr.count())

	want := []state.EventType{
		state.DetectStart,
		state.ScreenshotLoaded,
		state.BanImagesLoaded,
		state.TimerStart,
		state.Change,
		state.TimerSuccess,
		state.MapStart,
		state.DetectError,
		state.DetectDone,
	}
	if diff := cmp.Diff(want, types(f.screen.Events().Events())); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	require.ErrorIs(t, f.screen.Events().Events()[1].Err, ErrNoMapText)
}

func TestDetectNoTimer(t *testing.T) {
	f := newFixture(t, nil, nil)

	ok, err := f.detect(t, newScreenshot(f.def))
	require.False(t, ok)
	require.ErrorIs(t, err, phase.ErrNoTimer)
	require.Equal(t, phase.Undetermined, f.screen.Phase().Phase)
}

func TestDetectEmptyScreenshot(t *testing.T) {
	f := newFixture(t, nil, nil)

	ok, err := f.detect(t, image.NewNRGBA(image.Rectangle{}))
	require.False(t, ok)
	require.Error(t, err)
}

func TestDetectMap(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Players = true
	})
	f.ocr.set("Cursed Hollow")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()

	ok, err := f.detect(t, img)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "CURSED HOLLOW", f.screen.Map())
	require.Equal(t, 1, f.ocr.count())

	// Locked maps are not read again.
	f.clock = f.clock.Add(10 * time.Second)
	f.ocr.set("Dragon Shire")

	_, err = f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "CURSED HOLLOW", f.screen.Map())
	require.Equal(t, 1, f.ocr.count())

	blue := f.screen.Team(team.Blue)
	blue.UpdateBan(0, team.Ban{Hero: "Valeera"}, 1)
	blue.LockBans(1)

	// A new map after the lock expires clears the draft.
	f.clock = f.clock.Add(11 * time.Second)

	_, err = f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "DRAGON SHIRE", f.screen.Map())
	require.Equal(t, 2, f.ocr.count())
	require.Zero(t, blue.BansLocked())
	require.True(t, blue.Ban(0).Empty())
}

func TestDetectUnknownMap(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Players = true
	})
	f.ocr.set("Summoner's Rift")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamRed)
	img.mapText()

	ok, err := f.detect(t, img)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrUnknownMap)
	require.Empty(t, f.screen.Map())
}

func TestDetectGermanMap(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		require.NoError(t, c.SetLanguage(config.LanguageGerman))
		c.Detection.Disabled.Players = true
	})
	f.ocr.set("Das Drachenheim")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()

	_, err := f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "DRAGON SHIRE", f.screen.Map())
}

func TestDetectBans(t *testing.T) {
	valeera := pattern(0)

	f := newFixture(t, map[string]image.Image{"valeera": valeera}, func(c *config.Config) {
		c.Detection.Disabled.Players = true
	})
	f.lockMap("CURSED HOLLOW")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()
	img.portrait(team.Blue, 0, valeera)

	for i := 0; i < 3; i++ {
		ok, err := f.detect(t, img)
		require.NoError(t, err)
		require.True(t, ok)

		blue := f.screen.Team(team.Blue)
		require.Equal(t, "Valeera", blue.Ban(0).Hero)
		require.Equal(t, 1, blue.BansLocked())
		require.True(t, blue.Ban(1).Empty())
		require.Zero(t, f.screen.Team(team.Red).BansLocked())
	}

	require.Zero(t, f.ocr.count())
}

func TestDetectBansWhileBanning(t *testing.T) {
	valeera := pattern(0)

	f := newFixture(t, map[string]image.Image{"valeera": valeera}, func(c *config.Config) {
		c.Detection.Disabled.Players = true
	})
	f.lockMap("CURSED HOLLOW")

	img := newScreenshot(f.def)
	img.timer(purple)
	img.banCheck(team.Blue)
	img.mapText()
	img.portrait(team.Blue, 0, valeera)
	img.portrait(team.Red, 0, valeera)

	_, err := f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, phase.BanningBlue, f.screen.Phase().Phase)

	// The banning team may still change its hovered ban.
	blue := f.screen.Team(team.Blue)
	require.Equal(t, "Valeera", blue.Ban(0).Hero)
	require.Zero(t, blue.BansLocked())

	red := f.screen.Team(team.Red)
	require.Equal(t, "Valeera", red.Ban(0).Hero)
	require.Equal(t, 1, red.BansLocked())

	d := f.screen.Draft()
	require.True(t, d.Banning)
	require.Equal(t, team.Blue, d.Team)
}

func TestCorrectBan(t *testing.T) {
	f := newFixture(t, map[string]image.Image{"zeratul": pattern(1)}, func(c *config.Config) {
		c.Detection.Disabled.Players = true
		c.Detection.BanThreshold = 0
	})
	f.lockMap("CURSED HOLLOW")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamRed)
	img.mapText()
	img.portrait(team.Blue, 0, pattern(0))

	_, err := f.detect(t, img)
	require.NoError(t, err)

	blue := f.screen.Team(team.Blue)
	require.True(t, blue.Ban(0).Failed())
	require.NotEmpty(t, blue.Ban(0).Image)
	require.Zero(t, blue.BansLocked())

	require.Error(t, f.screen.CorrectBan(team.Blue, 1, "valeera"))
	require.Error(t, f.screen.CorrectBan(team.Blue, 0, "nobody"))

	// A pass in flight computed the unresolved slot before the correction.
	stale := &teamResult{
		color: team.Blue,
		pass:  f.screen.passes.Load(),
		bans:  []banResult{{index: 0, ban: blue.Ban(0)}},
	}

	require.NoError(t, f.screen.CorrectBan(team.Blue, 0, "valeera"))
	require.Equal(t, "Valeera", blue.Ban(0).Hero)
	require.True(t, f.screen.Portraits().Has("valeera"))
	require.Equal(t, state.Change, f.screen.Events().Last().Type)

	f.screen.applyBans(stale)
	require.Equal(t, "Valeera", blue.Ban(0).Hero)

	f.cfg.Detection.BanThreshold = 10

	_, err = f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "Valeera", blue.Ban(0).Hero)
	require.Equal(t, 1, blue.BansLocked())
}

func TestDetectLockedHero(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.set("valeera")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()
	img.lockedHero(team.Blue, 0, locked)

	ok, err := f.detect(t, img)
	require.NoError(t, err)
	require.True(t, ok)

	p := f.screen.Team(team.Blue).Player(0)
	require.Equal(t, "Valeera", p.Hero())
	require.True(t, p.Locked())
	require.False(t, p.Failed())
	require.Equal(t, 1, f.screen.Team(team.Blue).Locked())

	// Unlocked boxes of either team never reach OCR on a blank screen.
	require.Equal(t, 1, f.ocr.count())

	events := f.screen.Events().Events()
	require.Contains(t, types(events), state.TeamsNew)

	_, err = f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, state.Change, f.screen.Events().Last().Type)
	require.True(t, f.screen.Events().Occured(time.Minute, state.TeamsUpdate))
}

func TestDetectPickPlaceholder(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.set("Picking")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()
	img.lockedHero(team.Blue, 2, locked)

	_, err := f.detect(t, img)
	require.NoError(t, err)
	require.Empty(t, f.screen.Team(team.Blue).Player(2).Hero())
}

func TestDetectUnknownHero(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.set("Vaieera")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()
	img.lockedHero(team.Blue, 0, locked)

	_, err := f.detect(t, img)
	require.NoError(t, err)

	p := f.screen.Team(team.Blue).Player(0)
	require.Equal(t, "VAIEERA", p.Hero())
	require.True(t, p.Failed())

	require.NoError(t, f.screen.CorrectHero(team.Blue, 0, "valeera"))
	require.Equal(t, "Valeera", p.Hero())
	require.False(t, p.Failed())

	// The misread now resolves on its own.
	_, err = f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "Valeera", p.Hero())
	require.False(t, p.Failed())
}

func TestDetectPrepick(t *testing.T) {
	picking := rgba.RGBA{R: 159, G: 208, B: 255, A: 255}
	hover := rgba.RGBA{R: 220, G: 200, B: 190, A: 255}

	type test struct {
		name  string
		timer rgba.RGBA
		slots map[int]rgba.RGBA
	}

	for _, tc := range []test{
		{"acting picking", rgba.TeamBlue, map[int]rgba.RGBA{0: picking}},
		{"acting hovering", rgba.TeamBlue, map[int]rgba.RGBA{1: hover}},
		{"waiting", rgba.TeamRed, map[int]rgba.RGBA{2: hover}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil, func(c *config.Config) {
				c.Detection.Disabled.Bans = true
			})
			f.lockMap("CURSED HOLLOW")
			f.ocr.set("valeera")

			img := newScreenshot(f.def)
			img.timer(tc.timer)
			img.mapText()
			for i, c := range tc.slots {
				img.label(img.heroName(team.Blue, i), c)
				img.label(img.heroName(team.Red, i), c)
			}

			_, err := f.detect(t, img)
			require.NoError(t, err)

			blue, red := f.screen.Team(team.Blue), f.screen.Team(team.Red)
			for i := range tc.slots {
				p := blue.Player(i)
				require.Equal(t, "Valeera", p.Hero())
				require.False(t, p.Locked())
				require.False(t, p.Failed())

				// Red never shows a hovered hero.
				require.Empty(t, red.Player(i).Hero())
			}

			require.Equal(t, len(tc.slots), f.ocr.count())
			require.Zero(t, blue.Locked())
		})
	}
}

func TestDetectPrepickDisabled(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
		c.Detection.Disabled.Prepick = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.set("valeera")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()
	img.label(img.heroName(team.Blue, 0), rgba.RGBA{R: 159, G: 208, B: 255, A: 255})

	_, err := f.detect(t, img)
	require.NoError(t, err)
	require.Empty(t, f.screen.Team(team.Blue).Player(0).Hero())
	require.Zero(t, f.ocr.count())
}

// picker records the players it was asked about.
type picker struct {
	names []string
	mutex sync.Mutex
}

func (p *picker) UpdatePlayerRecentPicks(player *team.Player) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.names = append(p.names, player.Name())
	player.SetRecentPicks(map[string]int{"Valeera": 3})
}

func TestDetectPlayerName(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.player = "Somebody#1"

	picks := &picker{}
	f.screen.picks = picks

	// Blue is waiting, so its names are read on a clean background.
	img := newScreenshot(f.def)
	img.timer(rgba.TeamRed)
	img.mapText()
	img.label(img.playerName(team.Blue, 1), rgba.RGBA{R: 200, G: 210, B: 235, A: 255})

	_, err := f.detect(t, img)
	require.NoError(t, err)

	p := f.screen.Team(team.Blue).Player(1)
	require.Equal(t, "Somebody#1", p.Name())
	require.Equal(t, []string{"Somebody#1"}, picks.names)
	require.Equal(t, map[string]int{"Valeera": 3}, p.Data().RecentPicks)
	require.Empty(t, p.Hero())
	require.Equal(t, 1, f.ocr.count())

	// A final name is not replaced by a reading taken while the team acts.
	f.ocr.player = "Somebody#2"
	img.timer(rgba.TeamBlue)
	img.label(img.playerName(team.Blue, 1), rgba.RGBA{R: 224, G: 232, B: 255, A: 255})

	_, err = f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "Somebody#1", p.Name())
}

func TestDetectPlayerNameUnchanged(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.player = "Somebody"

	f.screen.Team(team.Red).Player(3).SetName("Nova#1234", true, nil)

	img := newScreenshot(f.def)
	img.timer(rgba.TeamBlue)
	img.mapText()

	_, err := f.detect(t, img)
	require.NoError(t, err)
	require.Equal(t, "Nova#1234", f.screen.Team(team.Red).Player(3).Name())
	require.Zero(t, f.ocr.count())
}

func TestDetectBusy(t *testing.T) {
	f := newFixture(t, nil, nil)

	f.screen.active.Store(true)

	ok, err := f.detect(t, newScreenshot(f.def))
	require.False(t, ok)
	require.ErrorIs(t, err, ErrBusy)
	require.Empty(t, f.screen.Events().Events())

	f.screen.active.Store(false)
	require.False(t, f.screen.Active())
}

func TestDetectCancelled(t *testing.T) {
	f := newFixture(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := f.screen.Detect(ctx, newScreenshot(f.def))
	require.False(t, ok)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, f.screen.Active())
}

func TestDraftComplete(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Detection.Disabled.Bans = true
	})
	f.lockMap("CURSED HOLLOW")
	f.ocr.set("valeera")

	img := newScreenshot(f.def)
	img.timer(rgba.TeamRed)
	img.mapText()
	for _, c := range team.Colors {
		for i := 0; i < team.Players; i++ {
			// Red is acting, blue shows its inactive colours.
			bg := rgba.RGBA{R: 26, G: 60, B: 106, A: 255}
			if c == team.Red {
				bg = rgba.RGBA{R: 160, G: 40, B: 48, A: 255}
			}
			img.lockedHero(c, i, bg)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan Draft, 2)
	f.screen.OnComplete(ctx, func(d Draft) { done <- d })

	pending := f.screen.Events().Subscribe(completeBuffer)
	defer f.screen.Events().Unsubscribe(pending)

	_, err := f.detect(t, img)
	require.NoError(t, err)

	// A single pass emits more events than a small buffer holds and the
	// completion comes last.
	emitted := drain(pending)
	require.Greater(t, len(emitted), 16)
	require.Equal(t, state.DetectComplete, emitted[len(emitted)-1])

	select {
	case d := <-done:
		require.True(t, d.Complete)
		require.Equal(t, "CURSED HOLLOW", d.Map)
	case <-time.After(5 * time.Second):
		t.Fatal("completed draft was not reported")
	}

	d := f.screen.Draft()
	require.True(t, d.Complete)
	require.Equal(t, "CURSED HOLLOW", d.Map)
	require.Len(t, d.Teams, 2)
	require.Len(t, d.Teams[0].Players, team.Players)

	require.True(t, f.screen.Events().Occured(time.Minute, state.DetectComplete))

	n := 0
	_, err = f.detect(t, img)
	require.NoError(t, err)
	for _, e := range f.screen.Events().Events() {
		if e.Type == state.DetectComplete {
			n++
		}
	}
	require.Equal(t, 1, n)
	require.Empty(t, done)
}

// drain returns the types of every buffered event without blocking.
func drain(c chan *state.Event) []state.EventType {
	t := []state.EventType{}
	for {
		select {
		case e := <-c:
			t = append(t, e.Type)
		default:
			return t
		}
	}
}
