// Package detect reconstructs the draft state from screenshots of the draft screen.
package detect

import (
	"context"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/config"
	"github.com/pidgy/drafthud/core/gamedata"
	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/ocr"
	"github.com/pidgy/drafthud/core/phase"
	"github.com/pidgy/drafthud/core/portrait"
	"github.com/pidgy/drafthud/core/region"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/state"
	"github.com/pidgy/drafthud/core/stats"
	"github.com/pidgy/drafthud/core/team"
	"github.com/pidgy/drafthud/system/ini"
	"github.com/pidgy/drafthud/system/lang"
)

var (
	// ErrBusy is returned by Detect while another pass is running.
	ErrBusy       = errors.New("detection already active")
	ErrNoMapText  = errors.New("no map text found at the expected location")
	ErrUnknownMap = errors.New("map name could not be detected")
)

// Recognizer is the OCR gateway used for every text label.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, languages string, params map[string]string) (ocr.Result, error)
}

// Trainer receives confidently detected labels and their source images.
type Trainer interface {
	Submit(kind, text string, image []byte)
}

// Options are the collaborators of a Screen. Layout, OCR and Dictionary are
// required.
type Options struct {
	Config     *config.Config
	Layout     *layout.Definition
	Portraits  *portrait.Library
	OCR        Recognizer
	Dictionary gamedata.Dictionary
	Picks      gamedata.RecentPicker
	Trainer    Trainer
	Events     *state.Log

	// PickText is the placeholder shown in an empty hero name box.
	PickText string
}

// Screen is the detection orchestrator. Only one pass runs at a time; the
// draft models may be read between and during passes.
type Screen struct {
	cfg       *config.Config
	scaler    *layout.Scaler
	portraits *portrait.Library
	ocr       Recognizer
	dict      gamedata.Dictionary
	picks     gamedata.RecentPicker
	trainer   Trainer
	events    *state.Log
	pickText  string

	active atomic.Bool
	passes atomic.Uint64

	teams map[team.Color]*team.Team

	mapName   string
	mapLock   time.Time
	phase     phase.Result
	populated bool
	complete  bool
	artifacts []Artifact

	now   func() time.Time
	mutex sync.RWMutex
}

// pass is the working state of one Detect call.
type pass struct {
	id    uuid.UUID
	seq   uint64
	img   image.Image
	ex    *region.Extractor
	stage Stage
	start time.Time

	phase   phase.Result
	mapName string
	teams   map[team.Color]*teamResult

	debug     bool
	artifacts []Artifact
	mutex     sync.Mutex
}

type step struct {
	Stage
	start, success state.EventType
	run            func(ctx context.Context, p *pass) error
}

func New(o Options) (*Screen, error) {
	switch {
	case o.Layout == nil:
		return nil, errors.New("detect: missing layout")
	case o.OCR == nil:
		return nil, errors.New("detect: missing ocr gateway")
	case o.Dictionary == nil:
		return nil, errors.New("detect: missing game data dictionary")
	}

	err := o.Layout.Validate()
	if err != nil {
		return nil, err
	}

	if o.Config == nil {
		c := config.Default()
		o.Config = &c
	}
	if o.Events == nil {
		o.Events = state.NewLog()
	}

	s := &Screen{
		cfg:       o.Config,
		scaler:    layout.NewScaler(o.Layout),
		portraits: o.Portraits,
		ocr:       o.OCR,
		dict:      o.Dictionary,
		picks:     o.Picks,
		trainer:   o.Trainer,
		events:    o.Events,
		pickText:  o.PickText,
		teams:     make(map[team.Color]*team.Team),
		now:       time.Now,
	}

	for _, c := range team.Colors {
		s.teams[c] = team.New(c, len(o.Layout.Teams[c].Bans))
	}

	return s, nil
}

// Detect runs one detection pass over img. It returns false with ErrBusy when
// a pass is already active, and false with the stage error when a stage fails.
// A failed pass keeps every model untouched past the failing stage.
func (s *Screen) Detect(ctx context.Context, img image.Image) (bool, error) {
	if !s.active.CompareAndSwap(false, true) {
		return false, ErrBusy
	}
	defer s.active.Store(false)

	p := &pass{
		id:    uuid.New(),
		seq:   s.passes.Add(1),
		img:   img,
		start: s.now(),
		teams: make(map[team.Color]*teamResult),
		debug: s.cfg.Debug,
	}

	s.emit(state.DetectStart, p, "")

	for _, st := range s.steps() {
		err := ctx.Err()
		if err == nil {
			s.emit(st.start, p, "")
			err = st.run(ctx, p)
		}
		if err != nil {
			p.stage = Failed
			s.fail(p, st.Stage, err)
			return false, err
		}

		p.stage = st.Stage
		s.emit(st.success, p, "")
	}

	p.stage = Done

	s.emit(state.DetectSuccess, p, "")
	s.done(p)
	s.emit(state.Change, p, "")

	if s.completed() {
		s.emit(state.DetectComplete, p, "")
		notify.Announce("[Detect] Draft complete on %s", lang.Title(s.cfg.Language, s.Map()))
	}

	return true, nil
}

// Active reports whether a pass is running.
func (s *Screen) Active() bool {
	return s.active.Load()
}

func (s *Screen) Events() *state.Log {
	return s.events
}

func (s *Screen) Map() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.mapName
}

func (s *Screen) Phase() phase.Result {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.phase
}

// Portraits returns the portrait library, nil until the first pass loads it.
func (s *Screen) Portraits() *portrait.Library {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.portraits
}

func (s *Screen) Team(c team.Color) *team.Team {
	return s.teams[c]
}

// LoadPortraits reads the portrait library from the configured directories
// unless one was provided.
func (s *Screen) LoadPortraits() (*portrait.Library, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.portraits != nil {
		return s.portraits, nil
	}

	l, err := portrait.Load(s.scaler.Definition().BanCompareSize, s.cfg.Assets.Bans, s.cfg.Assets.UserBans)
	if err != nil {
		return nil, err
	}
	s.portraits = l

	return l, nil
}

func (s *Screen) steps() []step {
	return []step{
		{Stage: ScreenshotLoaded, success: state.ScreenshotLoaded, run: s.screenshot},
		{Stage: PortraitsLoaded, success: state.BanImagesLoaded, run: s.bansLoaded},
		{Stage: PhaseDetected, start: state.TimerStart, success: state.TimerSuccess, run: s.timer},
		{Stage: MapDetected, start: state.MapStart, success: state.MapSuccess, run: s.mapStage},
		{Stage: TeamsDetected, start: state.TeamsStart, success: state.TeamsSuccess, run: s.teamsStage},
	}
}

func (s *Screen) screenshot(ctx context.Context, p *pass) error {
	if p.img == nil || p.img.Bounds().Empty() {
		return errors.New("detect: empty screenshot")
	}

	p.ex = region.New(p.img, s.scaler.Offsets(p.img.Bounds().Size()))

	return nil
}

func (s *Screen) bansLoaded(ctx context.Context, p *pass) error {
	_, err := s.LoadPortraits()
	return err
}

func (s *Screen) timer(ctx context.Context, p *pass) error {
	colors := &s.scaler.Definition().Colors

	checks := map[team.Color]image.Image{}
	for _, c := range team.Colors {
		checks[c] = p.ex.BanCheck(c)
	}

	r, err := phase.Detect(p.ex.Timer(), checks, colors)
	if err != nil {
		return err
	}

	if r.Tied {
		notify.Warn(ini.Format("[Detect] <ini:detect:tied> (%d)"), r.Blue)
	}

	p.phase = r

	s.mutex.Lock()
	changed := s.phase.Phase != r.Phase
	s.phase = r
	s.mutex.Unlock()

	if changed {
		notify.Debug("[Detect] Phase %s", r.Phase)
		s.emit(state.Change, p, "")
	}

	return nil
}

func (s *Screen) mapStage(ctx context.Context, p *pass) error {
	if s.cfg.Detection.Disabled.Map {
		p.mapName = s.Map()
		return nil
	}

	name, err := s.detectMap(ctx, p)
	if err != nil {
		return err
	}
	p.mapName = name

	s.mutex.Lock()
	changed := s.mapName != name
	if changed {
		s.mapName = name
		s.clear()
	}
	s.mutex.Unlock()

	if changed {
		notify.Feed(rgba.Announce, "[Detect] Map %s", lang.Title(s.cfg.Language, name))
		s.emit(state.Change, p, "")
	}

	return nil
}

func (s *Screen) teamsStage(ctx context.Context, p *pass) error {
	results, err := s.detectTeams(ctx, p)
	if err != nil {
		return err
	}

	for _, c := range team.Colors {
		r := results[c]
		p.teams[c] = r

		s.applyBans(r)
		s.emit(state.BansSuccess, p, c)

		s.applyPlayers(r)
		s.emit(state.TeamSuccess, p, c)
	}

	s.mutex.Lock()
	first := !s.populated
	s.populated = true
	s.mutex.Unlock()

	if first {
		s.emit(state.TeamsNew, p, "")
	} else {
		s.emit(state.TeamsUpdate, p, "")
	}

	return nil
}

// clear resets the draft for a new map. Expects s.mutex to be held.
func (s *Screen) clear() {
	for _, t := range s.teams {
		t.Clear()
	}
	s.populated = false
	s.complete = false
}

// completed reports the first pass in which all players are locked.
func (s *Screen) completed() bool {
	for _, t := range s.teams {
		if t.Locked() < team.Players {
			return false
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.complete {
		return false
	}
	s.complete = true

	return true
}

func (s *Screen) done(p *pass) {
	stats.Latency(s.now().Sub(p.start))

	s.mutex.Lock()
	s.artifacts = p.artifacts
	s.mutex.Unlock()

	if s.cfg.Debug {
		s.saveArtifacts(p.artifacts)
	}

	s.emit(state.DetectDone, p, "")
}

func (s *Screen) emit(t state.EventType, p *pass, c team.Color) {
	if t == state.Nothing {
		return
	}
	s.events.Emit(t, p.id, c)
}

func (s *Screen) fail(p *pass, st Stage, err error) {
	notify.Dedup(rgba.DarkRed, "[Detect] %s failed (%s)", st, reason(err))

	s.events.Add(&state.Event{Type: state.DetectError, Pass: p.id, Err: err})
	s.done(p)
}

// reason returns the localized description of a known stage error.
func reason(err error) string {
	switch {
	case errors.Is(err, phase.ErrNoTimer):
		return ini.Find("error", "no_timer")
	case errors.Is(err, ErrNoMapText):
		return ini.Find("error", "no_map")
	case errors.Is(err, ErrUnknownMap):
		return ini.Find("error", "unknown_map") + " " + strings.TrimSuffix(err.Error(), ": "+ErrUnknownMap.Error())
	}
	return err.Error()
}
