package team

import (
	"sync"

	"github.com/rs/zerolog"
)

type Player struct {
	index int
	team  Color

	hero      string
	failed    bool
	locked    bool
	heroImage []byte

	name      string
	nameFinal bool
	nameImage []byte

	recentPicks map[string]int

	mutex sync.RWMutex
}

type PlayerData struct {
	Index       int            `json:"index"`
	Team        Color          `json:"team"`
	Name        string         `json:"name"`
	Hero        string         `json:"hero"`
	Locked      bool           `json:"locked"`
	Failed      bool           `json:"failed"`
	RecentPicks map[string]int `json:"recentPicks,omitempty"`
	HeroImage   []byte         `json:"heroImage,omitempty"`
	NameImage   []byte         `json:"nameImage,omitempty"`
}

func (p *Player) Data() PlayerData {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	d := PlayerData{
		Index:     p.index,
		Team:      p.team,
		Name:      p.name,
		Hero:      p.hero,
		Locked:    p.locked,
		Failed:    p.failed,
		HeroImage: p.heroImage,
		NameImage: p.nameImage,
	}

	if len(p.recentPicks) > 0 {
		d.RecentPicks = make(map[string]int, len(p.recentPicks))
		for k, v := range p.recentPicks {
			d.RecentPicks[k] = v
		}
	}

	return d
}

// Failed reports whether the detected hero name is unknown to the game data.
func (p *Player) Failed() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.failed
}

func (p *Player) Hero() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.hero
}

func (p *Player) Index() int {
	return p.index
}

func (p *Player) Locked() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.locked
}

func (p *Player) MarshalZerologObject(e *zerolog.Event) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	e.Str("team", p.team.String()).
		Int("index", p.index).
		Str("name", p.name).
		Str("hero", p.hero).
		Bool("locked", p.locked).
		Bool("failed", p.failed)
}

func (p *Player) Name() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.name
}

func (p *Player) RecentPicks() map[string]int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.recentPicks
}

// SetHero records the detected hero name and its source image.
func (p *Player) SetHero(hero string, failed bool, image []byte) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	changed := p.hero != hero || p.failed != failed
	p.hero = hero
	p.failed = failed
	if image != nil {
		p.heroImage = image
	}

	return changed
}

func (p *Player) SetLocked(locked bool) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	changed := p.locked != locked
	p.locked = locked

	return changed
}

// SetName records the player's display name. A name read while the team was
// not picking is final and is not replaced by readings taken while it is.
func (p *Player) SetName(name string, final bool, image []byte) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if name == "" || (p.nameFinal && !final) {
		return false
	}

	changed := p.name != name
	p.name = name
	p.nameFinal = p.nameFinal || final
	if image != nil {
		p.nameImage = image
	}

	return changed
}

func (p *Player) SetRecentPicks(picks map[string]int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.recentPicks = picks
}

func (p *Player) Team() Color {
	return p.team
}
