// Package history records completed drafts and the heroes each player locked.
package history

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/team"
)

const maxDrafts = 500

type Draft struct {
	Time  time.Time `json:"time"`
	Map   string    `json:"map"`
	Picks []Pick    `json:"picks"`
}

type Pick struct {
	Team   team.Color `json:"team"`
	Player string     `json:"player"`
	Hero   string     `json:"hero"`
}

// History implements gamedata.RecentPicker from locally recorded drafts.
type History struct {
	file   string
	drafts []Draft
	mutex  sync.RWMutex
}

// Load reads file if it exists. An empty file name keeps history in memory.
func Load(file string) (*History, error) {
	h := &History{file: file}
	if file == "" {
		return h, nil
	}

	b, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, errors.Wrapf(err, "history: %s", file)
	}

	err = json.Unmarshal(b, &h.drafts)
	if err != nil {
		return nil, errors.Wrapf(err, "history: %s", file)
	}

	return h, nil
}

// Add records the locked, named players of a completed draft.
func (h *History) Add(mapName string, teams []team.Data) error {
	d := Draft{Time: time.Now(), Map: mapName}

	for _, t := range teams {
		for _, p := range t.Players {
			if !p.Locked || p.Name == "" || p.Hero == "" {
				continue
			}
			d.Picks = append(d.Picks, Pick{Team: t.Color, Player: p.Name, Hero: p.Hero})
		}
	}

	h.mutex.Lock()
	h.drafts = append(h.drafts, d)
	if len(h.drafts) > maxDrafts {
		h.drafts = h.drafts[len(h.drafts)-maxDrafts:]
	}
	h.mutex.Unlock()

	return h.save()
}

func (h *History) Drafts() []Draft {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return append([]Draft(nil), h.drafts...)
}

func (h *History) Dump() {
	drafts := h.Drafts()
	if len(drafts) == 0 {
		notify.Warn("[History] No recent drafts to display...")
		return
	}

	notify.System("[History] Recent Drafts")

	for _, d := range drafts {
		color := rgba.Gray
		if len(d.Picks) == team.Players*len(team.Colors) {
			color = rgba.ForestGreen
		}

		notify.Feed(color, "[History] (%s) %s, %d picks", d.Time.Format(time.Kitchen), d.Map, len(d.Picks))
	}
}

// RecentPicks counts the heroes locked by the named player, most recent drafts included.
func (h *History) RecentPicks(player string) map[string]int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	picks := map[string]int{}
	for _, d := range h.drafts {
		for _, p := range d.Picks {
			if p.Player == player {
				picks[p.Hero]++
			}
		}
	}

	return picks
}

// Top returns up to n heroes from picks ordered by count and then name.
func Top(picks map[string]int, n int) []string {
	heroes := make([]string, 0, len(picks))
	for h := range picks {
		heroes = append(heroes, h)
	}

	sort.Slice(heroes, func(i, j int) bool {
		if picks[heroes[i]] != picks[heroes[j]] {
			return picks[heroes[i]] > picks[heroes[j]]
		}
		return heroes[i] < heroes[j]
	})

	if len(heroes) > n {
		heroes = heroes[:n]
	}
	return heroes
}

func (h *History) UpdatePlayerRecentPicks(p *team.Player) {
	name := p.Name()
	if name == "" {
		return
	}

	picks := h.RecentPicks(name)
	if len(picks) == 0 {
		return
	}

	p.SetRecentPicks(picks)
	notify.Debug("[History] [%s] %s recently played %v", p.Team().Title(), name, Top(picks, 3))
}

func (h *History) save() error {
	if h.file == "" {
		return nil
	}

	h.mutex.RLock()
	b, err := json.Marshal(h.drafts)
	h.mutex.RUnlock()
	if err != nil {
		return errors.Wrap(err, "history")
	}

	return errors.Wrapf(os.WriteFile(h.file, b, 0644), "history: %s", h.file)
}
