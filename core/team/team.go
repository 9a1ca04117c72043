package team

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pidgy/drafthud/core/rgba"
)

// Color identifies a team side on the draft screen.
type Color string

const (
	Blue Color = "blue"
	Red  Color = "red"

	// Unknown marks a ban slot whose portrait could not be resolved.
	Unknown = "???"

	Players = 5
)

var Colors = []Color{Blue, Red}

// Team holds the bans and players of one side for the current draft. A Team is
// created once and cleared between drafts.
type Team struct {
	color Color

	bans       []Ban
	bansLocked int
	corrected  []uint64
	players    [Players]*Player

	mutex sync.RWMutex
}

// Ban is one ban slot. An empty Hero means nothing is banned yet, Unknown means
// a portrait was found but could not be matched, in which case Image keeps the
// crop for manual correction.
type Ban struct {
	Hero  string `json:"hero"`
	Image []byte `json:"image,omitempty"`
}

type BanData struct {
	Index  int    `json:"index"`
	Team   Color  `json:"team"`
	Locked bool   `json:"locked"`
	Hero   string `json:"hero"`
	Image  []byte `json:"image,omitempty"`
}

type Data struct {
	Color      Color        `json:"color"`
	BansLocked int          `json:"bansLocked"`
	Bans       []BanData    `json:"bans"`
	Players    []PlayerData `json:"players"`
}

func New(c Color, bans int) *Team {
	return &Team{
		color: c,
		bans:      make([]Ban, bans),
		corrected: make([]uint64, bans),
	}
}

func (c Color) RGBA() rgba.RGBA {
	if c == Red {
		return rgba.TeamRed
	}
	return rgba.TeamBlue
}

func (c Color) String() string {
	return string(c)
}

func (c Color) Title() string {
	if c == "" {
		return "None"
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

func (b Ban) Empty() bool {
	return b.Hero == ""
}

func (b Ban) Failed() bool {
	return b.Hero == Unknown
}

func (t *Team) Ban(i int) Ban {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if i < 0 || i >= len(t.bans) {
		return Ban{}
	}
	return t.bans[i]
}

func (t *Team) Bans() []Ban {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return append([]Ban(nil), t.bans...)
}

func (t *Team) BansLocked() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.bansLocked
}

// Clear resets bans, the ban lock and every player for a new draft.
func (t *Team) Clear() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for i := range t.bans {
		t.bans[i] = Ban{}
		t.corrected[i] = 0
	}
	t.bansLocked = 0
	t.players = [Players]*Player{}
}

func (t *Team) Color() Color {
	return t.color
}

func (t *Team) Data() Data {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	d := Data{
		Color:      t.color,
		BansLocked: t.bansLocked,
		Bans:       []BanData{},
		Players:    []PlayerData{},
	}

	for i, b := range t.bans {
		d.Bans = append(d.Bans, BanData{
			Index:  i,
			Team:   t.color,
			Locked: t.bansLocked > i,
			Hero:   b.Hero,
			Image:  b.Image,
		})
	}

	for _, p := range t.players {
		if p != nil {
			d.Players = append(d.Players, p.Data())
		}
	}

	return d
}

// LockBans raises the number of leading ban slots considered final. The lock
// never decreases within a draft.
func (t *Team) LockBans(n int) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if n > len(t.bans) {
		n = len(t.bans)
	}
	if n <= t.bansLocked {
		return false
	}
	t.bansLocked = n

	return true
}

// Locked returns the number of players whose hero is locked in.
func (t *Team) Locked() int {
	n := 0
	for _, p := range t.Players() {
		if p.Locked() {
			n++
		}
	}
	return n
}

func (t *Team) MarshalZerologObject(e *zerolog.Event) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	e.Str("team", t.color.String()).Int("bans_locked", t.bansLocked)
}

// Player returns the player at index i, creating it on first use.
func (t *Team) Player(i int) *Player {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if i < 0 || i >= Players {
		return nil
	}

	if t.players[i] == nil {
		t.players[i] = &Player{index: i, team: t.color}
	}

	return t.players[i]
}

// Players returns the players detected so far, ordered by index.
func (t *Team) Players() []*Player {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	players := []*Player{}
	for _, p := range t.players {
		if p != nil {
			players = append(players, p)
		}
	}
	return players
}

// CorrectBan replaces slot i with a manual correction. Detection results of
// pass and earlier passes are ignored for the slot from now on.
func (t *Team) CorrectBan(i int, b Ban, pass uint64) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if i < 0 || i >= len(t.bans) {
		return false
	}

	t.corrected[i] = pass

	return t.set(i, b)
}

// UpdateBan replaces slot i with the result of detection pass and reports
// whether it changed. Locked slots are final, and the result is dropped when
// the slot was corrected during or after that pass.
func (t *Team) UpdateBan(i int, b Ban, pass uint64) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if i >= 0 && i < len(t.corrected) && pass <= t.corrected[i] {
		return false
	}

	return t.set(i, b)
}

// set expects t.mutex to be held.
func (t *Team) set(i int, b Ban) bool {
	if i < t.bansLocked || i >= len(t.bans) {
		return false
	}

	if t.bans[i].Hero == b.Hero && (b.Hero != Unknown || string(t.bans[i].Image) == string(b.Image)) {
		return false
	}
	t.bans[i] = b

	return true
}

func (t *Team) Slots() int {
	return len(t.bans)
}
