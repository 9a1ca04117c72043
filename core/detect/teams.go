package detect

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/pidgy/drafthud/core/isolate"
	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/region"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/stats"
	"github.com/pidgy/drafthud/core/team"
)

// teamResult is everything one pass learned about a team. Nothing is applied
// to the models until every detection of the pass has returned.
type teamResult struct {
	color   team.Color
	pass    uint64
	bans    []banResult
	locked  int
	players [team.Players]playerResult
}

type banResult struct {
	index int
	ban   team.Ban
}

// playerResult holds optional updates; a nil field means no update this pass.
type playerResult struct {
	index  int
	unlock bool
	hero   *heroUpdate
	name   *nameUpdate
}

type heroUpdate struct {
	hero   string
	failed bool
	locked bool
	image  []byte
}

type nameUpdate struct {
	name  string
	final bool
	image []byte
}

func (s *Screen) detectTeams(ctx context.Context, p *pass) (map[team.Color]*teamResult, error) {
	results := make(map[team.Color]*teamResult, len(team.Colors))
	for _, c := range team.Colors {
		results[c] = &teamResult{color: c, pass: p.seq, locked: s.teams[c].BansLocked()}
		for i := range results[c].players {
			results[c].players[i].index = i
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, c := range team.Colors {
		r := results[c]
		g.Go(func() error {
			return s.detectTeam(ctx, p, r)
		})
	}

	return results, g.Wait()
}

func (s *Screen) detectTeam(ctx context.Context, p *pass, r *teamResult) error {
	g, ctx := errgroup.WithContext(ctx)

	if !s.cfg.Detection.Disabled.Bans {
		g.Go(func() error {
			return s.detectBans(ctx, p, r)
		})
	}

	if !s.cfg.Detection.Disabled.Players {
		for i := 0; i < team.Players; i++ {
			i := i
			g.Go(func() error {
				pr, err := s.detectPlayer(ctx, p, r.color, i)
				r.players[i] = pr
				return err
			})
		}
	}

	return g.Wait()
}

// detectBans examines ban slots in ascending order starting at the first slot
// that is not locked yet.
func (s *Screen) detectBans(ctx context.Context, p *pass, r *teamResult) error {
	t := s.teams[r.color]
	def := s.scaler.Definition()
	banning := p.phase.Phase.Banning() && p.phase.Phase.Team() == r.color

	for i := t.BansLocked(); i < t.Slots(); i++ {
		err := ctx.Err()
		if err != nil {
			return err
		}

		crop := p.ex.Ban(r.color, i)
		if rgba.BackgroundMatch(crop, def.Colors.BanBackground, 2) {
			continue
		}

		m, err := s.portraits.Match(crop, s.cfg.Detection.BanThreshold)
		if err != nil {
			notify.Debug("[Detect] [%s] Ban %d match failed (%v)", r.color.Title(), i+1, err)
			continue
		}

		stats.Collect("portrait.distance", float64(m.Best))

		if !m.Confident(s.cfg.Detection.BanThreshold, s.cfg.Detection.BanGap) {
			b, err := region.Encode(crop)
			if err != nil {
				return err
			}

			notify.Debug("[Detect] [%s] Ban %d unresolved (best %d, second %d)", r.color.Title(), i+1, m.Best, m.Second)
			r.bans = append(r.bans, banResult{index: i, ban: team.Ban{Hero: team.Unknown, Image: b}})
			continue
		}

		name := s.dict.HeroName(m.Hero)
		if name == "" {
			name = m.Hero
		}

		r.bans = append(r.bans, banResult{index: i, ban: team.Ban{Hero: name}})

		if !banning && r.locked == i {
			r.locked++
		}

		if s.trainer != nil && s.cfg.Detection.Training {
			b, err := region.Encode(crop)
			if err == nil {
				s.trainer.Submit("ban", m.Hero, b)
			}
		}
	}

	return nil
}

func (s *Screen) detectPlayer(ctx context.Context, p *pass, c team.Color, i int) (playerResult, error) {
	r := playerResult{index: i}

	heroImg, nameImg := p.ex.Names(c, i)
	ident := layout.Ident(c, p.phase.Phase.Team() == c)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		unlock, hero, err := s.detectHeroName(ctx, p, heroImg, c, ident)
		r.unlock, r.hero = unlock, hero
		return err
	})

	if !s.cfg.Detection.Disabled.PlayerNames {
		g.Go(func() error {
			name, err := s.detectPlayerName(ctx, p, nameImg, c, ident)
			r.name = name
			return err
		})
	}

	return r, g.Wait()
}

// detectHeroName classifies the hero box as locked or not and reads the hero
// name. Only context errors are returned; a miss returns a nil update.
func (s *Screen) detectHeroName(ctx context.Context, p *pass, img image.Image, c team.Color, ident string) (bool, *heroUpdate, error) {
	colors := &s.scaler.Definition().Colors

	var (
		ocr    *image.NRGBA
		locked bool
		unlock bool
	)

	if rgba.LockedBackgroundMatch(img, colors.HeroBackgroundLocked[ident], 1) {
		iso, ok := isolate.Name(img, isolate.Options{
			Positive:   colors.HeroNameLocked[ident],
			Foreground: rgba.Black,
			Background: rgba.White,
		})
		if !ok {
			return false, nil, ctx.Err()
		}

		ocr = region.Optimize(iso, 1)
		locked = true

		p.artifact("heroNameLocked-"+ident, img, ocr)
	} else {
		unlock = true

		// Only the blue side shows the hovered hero before locking.
		if c != team.Blue || s.cfg.Detection.Disabled.Prepick {
			return unlock, nil, ctx.Err()
		}

		key := ident
		iso, ok := image.Image(nil), false
		if ident == layout.Ident(team.Blue, true) {
			key = layout.Prepick(ident)
			iso, ok = isolate.Name(img, isolate.Text(colors.HeroNamePrepick[key], nil))
		}
		if !ok {
			key = ident
			iso, ok = isolate.Name(img, isolate.Text(colors.HeroNamePrepick[key], nil))
		}
		if !ok {
			return unlock, nil, ctx.Err()
		}

		ocr = region.Optimize(region.Invert(iso), 1)

		p.artifact("heroNamePrepick-"+key, img, ocr)
	}

	text, b, err := s.recognize(ctx, "hero", ocr, s.cfg.OCRLanguages(false))
	if err != nil {
		return unlock, nil, ctx.Err()
	}

	fixed := s.dict.FixHeroName(text)
	if fixed == "" || fixed == s.dict.FixHeroName(s.pickText) {
		return unlock, nil, nil
	}

	name := s.dict.CorrectHeroName(fixed)

	id, ok := s.dict.HeroID(name)
	if ok {
		name = s.dict.HeroName(id)
	}
	failed := !ok

	if locked && !failed && s.trainer != nil && s.cfg.Detection.Training {
		s.trainer.Submit("hero", id, b)
	}

	return unlock, &heroUpdate{hero: name, failed: failed, locked: locked, image: b}, nil
}

// detectPlayerName reads the player name. Names read while the team is not
// acting are final since the background is clean.
func (s *Screen) detectPlayerName(ctx context.Context, p *pass, img image.Image, c team.Color, ident string) (*nameUpdate, error) {
	colors := &s.scaler.Definition().Colors

	iso, ok := isolate.Name(img, isolate.Text(colors.PlayerName[ident], colors.Boost))
	if !ok {
		return nil, ctx.Err()
	}

	ocr := region.Optimize(region.Invert(iso), 1)

	p.artifact("playerName-"+ident, img, ocr)

	text, b, err := s.recognize(ctx, "player", ocr, s.cfg.OCRLanguages(true))
	if err != nil || text == "" {
		return nil, ctx.Err()
	}

	return &nameUpdate{name: text, final: p.phase.Phase.Team() != c, image: b}, nil
}

func (s *Screen) applyBans(r *teamResult) {
	t := s.teams[r.color]

	for _, b := range r.bans {
		if t.UpdateBan(b.index, b.ban, r.pass) {
			notify.Feed(r.color.RGBA(), "[Detect] [%s] Ban %d %s", r.color.Title(), b.index+1, b.ban.Hero)
		}
	}

	t.LockBans(r.locked)
}

func (s *Screen) applyPlayers(r *teamResult) {
	t := s.teams[r.color]

	for _, pr := range r.players {
		if !pr.unlock && pr.hero == nil && pr.name == nil {
			continue
		}

		p := t.Player(pr.index)

		if pr.unlock {
			p.SetLocked(false)
		}

		if h := pr.hero; h != nil {
			if p.SetHero(h.hero, h.failed, h.image) {
				notify.Feed(r.color.RGBA(), "[Detect] [%s] Player %d %s", r.color.Title(), pr.index+1, h.hero)
			}
			if p.SetLocked(h.locked) && h.locked {
				notify.Feed(r.color.RGBA(), "[Detect] [%s] Player %d locked %s", r.color.Title(), pr.index+1, h.hero)
			}
		}

		if n := pr.name; n != nil {
			if p.SetName(n.name, n.final, n.image) {
				notify.Debug("[Detect] [%s] Player %d is %s", r.color.Title(), pr.index+1, n.name)
			}
			if s.picks != nil {
				s.picks.UpdatePlayerRecentPicks(p)
			}
		}
	}
}
