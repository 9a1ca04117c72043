package detect

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/config"
	"github.com/pidgy/drafthud/core/gamedata"
	"github.com/pidgy/drafthud/core/isolate"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/region"
)

// detectMap reads the map label. A known map is kept without OCR until the
// map lock expires.
func (s *Screen) detectMap(ctx context.Context, p *pass) (string, error) {
	colors := &s.scaler.Definition().Colors

	raw := p.ex.Map()

	iso, ok := isolate.Name(raw, isolate.Text(colors.MapName, nil))
	if !ok {
		return "", ErrNoMapText
	}

	s.mutex.RLock()
	current, lock := s.mapName, s.mapLock
	s.mutex.RUnlock()

	now := s.now()
	if current != "" && now.Before(lock) {
		return current, nil
	}

	img := region.Optimize(region.Invert(iso), 2)
	p.artifact("mapName", raw, img)

	text, _, err := s.recognize(ctx, "map", img, s.cfg.OCRLanguages(false))
	if err != nil {
		return "", errors.Wrap(err, "detect: map")
	}

	name := s.dict.FixMapName(text)
	if s.cfg.Language != config.LanguageEnglish {
		t, ok := s.dict.TranslateMapName(name, s.cfg.Language, gamedata.English)
		if ok {
			notify.Debug("[Detect] Translated map %s to %s", name, t)
			name = t
		}
	}
	name = s.dict.FixMapName(name)

	if name == "" || !s.dict.MapExists(name, gamedata.English) {
		return "", errors.Wrapf(ErrUnknownMap, "%q", text)
	}

	s.mutex.Lock()
	s.mapLock = now.Add(s.cfg.Detection.MapLock)
	s.mutex.Unlock()

	return name, nil
}
