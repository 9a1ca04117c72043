package detect

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/state"
	"github.com/pidgy/drafthud/core/team"
)

// Draft is a snapshot of the detected draft state.
type Draft struct {
	Map      string      `json:"map"`
	Team     team.Color  `json:"team"`
	Banning  bool        `json:"banning"`
	Phase    string      `json:"phase"`
	Complete bool        `json:"complete"`
	Teams    []team.Data `json:"teams"`
}

// HeroCorrector accepts a misread hero name and the hero it should resolve to.
type HeroCorrector interface {
	AddHeroCorrection(from, id string) error
}

func (s *Screen) Draft() Draft {
	s.mutex.RLock()
	d := Draft{
		Map:      s.mapName,
		Team:     s.phase.Phase.Team(),
		Banning:  s.phase.Phase.Banning(),
		Phase:    s.phase.Phase.String(),
		Complete: s.complete,
	}
	s.mutex.RUnlock()

	for _, c := range team.Colors {
		d.Teams = append(d.Teams, s.teams[c].Data())
	}

	return d
}

func (d Draft) MarshalZerologObject(e *zerolog.Event) {
	e.Str("map", d.Map).Str("team", d.Team.String()).Bool("banning", d.Banning).Bool("complete", d.Complete)
}

// CorrectBan resolves an unmatched ban slot to hero id. The slot's crop is
// saved as a user portrait so later passes match it. A pass running during
// the correction does not overwrite it.
func (s *Screen) CorrectBan(c team.Color, index int, id string) error {
	t, ok := s.teams[c]
	if !ok {
		return errors.Errorf("detect: unknown team %q", c)
	}

	if index < 0 || index >= t.Slots() {
		return errors.Errorf("detect: invalid ban slot %d", index)
	}

	name := s.dict.HeroName(id)
	if name == "" {
		return errors.Errorf("detect: unknown hero %q", id)
	}

	b := t.Ban(index)
	if !b.Failed() || len(b.Image) == 0 {
		return errors.Errorf("detect: %s ban %d has no unresolved image", c, index+1)
	}

	l, err := s.LoadPortraits()
	if err != nil {
		return err
	}

	err = l.Save(id, b.Image)
	if err != nil {
		return err
	}

	t.CorrectBan(index, team.Ban{Hero: name}, s.passes.Load())

	notify.Feed(c.RGBA(), "[Detect] [%s] Ban %d corrected to %s", c.Title(), index+1, name)

	s.events.Emit(state.Change, uuid.Nil, c)

	return nil
}

// CorrectHero resolves a player's unknown hero name to hero id and records the
// misread in the dictionary when it supports corrections.
func (s *Screen) CorrectHero(c team.Color, index int, id string) error {
	t, ok := s.teams[c]
	if !ok {
		return errors.Errorf("detect: unknown team %q", c)
	}

	if index < 0 || index >= team.Players {
		return errors.Errorf("detect: invalid player %d", index)
	}

	name := s.dict.HeroName(id)
	if name == "" {
		return errors.Errorf("detect: unknown hero %q", id)
	}

	p := t.Player(index)

	from := p.Hero()
	if from != "" && from != name {
		if hc, ok := s.dict.(HeroCorrector); ok {
			err := hc.AddHeroCorrection(from, id)
			if err != nil {
				return err
			}
		}
	}

	p.SetHero(name, false, nil)

	notify.Feed(c.RGBA(), "[Detect] [%s] Player %d corrected to %s", c.Title(), index+1, name)

	s.events.Emit(state.Change, uuid.Nil, c)

	return nil
}
