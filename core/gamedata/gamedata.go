// Package gamedata resolves hero and map names read from the draft screen.
package gamedata

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/team"
	"github.com/pidgy/drafthud/system/lang"
)

const (
	English = "en-us"
	German  = "de"
)

// Dictionary is the name lookup used by screen detection.
type Dictionary interface {
	CorrectHeroName(name string) string
	FixHeroName(name string) string
	FixMapName(name string) string
	HeroID(name string) (string, bool)
	HeroName(id string) string
	MapExists(name, lang string) bool
	TranslateMapName(name, from, to string) (string, bool)
}

// RecentPicker fills in recent pick statistics for a player once their name is known.
type RecentPicker interface {
	UpdatePlayerRecentPicks(p *team.Player)
}

// Data is a JSON backed Dictionary. Names are keyed by language and then by id.
type Data struct {
	Language      string                       `json:"language"`
	Heroes        map[string]map[string]string `json:"heroes"`
	Maps          map[string]map[string]string `json:"maps"`
	Translations  map[string]map[string]string `json:"translations"`
	Corrections   map[string]map[string]string `json:"corrections"`
	Substitutions map[string]string            `json:"substitutions"`

	file  string
	mutex sync.RWMutex
}

var mapArtifacts = []string{"VIEW BEST HEROES"}

// Default returns the built in hero and map tables.
func Default() *Data {
	d := &Data{
		Language:      English,
		Heroes:        map[string]map[string]string{English: clone(heroes)},
		Maps:          map[string]map[string]string{English: clone(maps)},
		Translations:  map[string]map[string]string{},
		Corrections:   map[string]map[string]string{},
		Substitutions: clone(substitutions),
	}

	for lang, t := range translations {
		d.Translations[lang] = clone(t)

		local := map[string]string{}
		for from, to := range t {
			id, ok := d.mapID(English, to)
			if !ok {
				continue
			}
			// Keep the first spelling in sort order so output is stable.
			if prev, ok := local[id]; !ok || from < prev {
				local[id] = from
			}
		}
		d.Maps[lang] = local
	}

	return d
}

// Load reads file, falling back to Default when it does not exist. Tables
// missing from the file are taken from Default.
func Load(file, lang string) (*Data, error) {
	d := Default()
	d.file = file

	if lang != "" {
		d.Language = lang
	}

	b, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			notify.Warn("[Game Data] %s does not exist, using built in tables", file)
			return d, nil
		}
		return nil, errors.Wrapf(err, "gamedata: %s", file)
	}

	f := &Data{}
	err = json.Unmarshal(b, f)
	if err != nil {
		return nil, errors.Wrapf(err, "gamedata: %s", file)
	}

	merge(d.Heroes, f.Heroes)
	merge(d.Maps, f.Maps)
	merge(d.Translations, f.Translations)
	merge(d.Corrections, f.Corrections)
	for k, v := range f.Substitutions {
		d.Substitutions[k] = v
	}

	notify.System("[Game Data] Loaded %d heroes and %d maps from %s", len(d.Heroes[English]), len(d.Maps[English]), file)

	return d, nil
}

// AddHeroCorrection records that text read as from should resolve to the hero id.
func (d *Data) AddHeroCorrection(from, id string) error {
	name := d.HeroName(id)
	if name == "" {
		return errors.Errorf("gamedata: unknown hero id %q", id)
	}

	from = d.FixHeroName(from)
	if from == "" {
		return errors.New("gamedata: empty correction")
	}

	d.mutex.Lock()
	c, ok := d.Corrections[d.Language]
	if !ok {
		c = map[string]string{}
		d.Corrections[d.Language] = c
	}
	c[from] = name
	d.mutex.Unlock()

	notify.System("[Game Data] Correction added: %s → %s", from, name)

	if d.file == "" {
		return nil
	}
	return d.Save()
}

func (d *Data) CorrectHeroName(name string) string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	c, ok := d.Corrections[d.Language][name]
	if ok {
		return c
	}
	return name
}

// FixHeroName upper cases name with the casing rules of the draft language
// and applies known substitutions.
func (d *Data) FixHeroName(name string) string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	name = lang.Upper(d.Language, strings.TrimSpace(name))

	if s, ok := d.Substitutions[name]; ok {
		return s
	}
	return name
}

func (d *Data) FixMapName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))

	name, _, _ = strings.Cut(name, "\n")
	for _, a := range mapArtifacts {
		name = strings.ReplaceAll(name, a, "")
	}

	return strings.TrimSpace(name)
}

// HeroID returns the id of the hero whose name in the current language or
// English matches name.
func (d *Data) HeroID(name string) (string, bool) {
	name = d.FixHeroName(name)
	if name == "" {
		return "", false
	}

	for _, lang := range d.languages() {
		d.mutex.RLock()
		names := clone(d.Heroes[lang])
		d.mutex.RUnlock()

		for id, n := range names {
			if d.FixHeroName(n) == name {
				return id, true
			}
		}
	}

	return "", false
}

// HeroName returns the display name of the hero id in the current language,
// falling back to English, or an empty string.
func (d *Data) HeroName(id string) string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if n, ok := d.Heroes[d.Language][id]; ok {
		return n
	}
	return d.Heroes[English][id]
}

// HeroIDs returns every known hero id in sorted order.
func (d *Data) HeroIDs() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	ids := make([]string, 0, len(d.Heroes[English]))
	for id := range d.Heroes[English] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (d *Data) MapExists(name, lang string) bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	_, ok := d.mapID(lang, name)
	return ok
}

func (d *Data) Save() error {
	d.mutex.RLock()
	b, err := json.MarshalIndent(d, "", "    ")
	d.mutex.RUnlock()
	if err != nil {
		return errors.Wrap(err, "gamedata")
	}

	return errors.Wrapf(os.WriteFile(d.file, b, 0644), "gamedata: %s", d.file)
}

// TranslateMapName converts a map name between languages. Known misreads in
// the source language are resolved before the id lookup.
func (d *Data) TranslateMapName(name, from, to string) (string, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	id, ok := "", false

	if en, found := d.Translations[from][name]; found {
		id, ok = d.mapID(English, en)
	}
	if !ok {
		id, ok = d.mapID(from, name)
	}
	if !ok {
		return "", false
	}

	n, ok := d.Maps[to][id]
	return n, ok
}

func (d *Data) languages() []string {
	if d.Language == English {
		return []string{English}
	}
	return []string{d.Language, English}
}

// mapID expects d.mutex to be held.
func (d *Data) mapID(lang, name string) (string, bool) {
	for id, n := range d.Maps[lang] {
		if n == name {
			return id, true
		}
	}
	return "", false
}

func clone(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func merge(dst, src map[string]map[string]string) {
	for lang, m := range src {
		if dst[lang] == nil {
			dst[lang] = map[string]string{}
		}
		for k, v := range m {
			dst[lang][k] = v
		}
	}
}
