// Package portrait matches ban slot crops against known hero portraits.
package portrait

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/rgba"
)

// MaxDistance is the largest Hamming distance between two 64-bit hashes.
const MaxDistance = 64

type Portrait struct {
	Hero string
	File string

	hash   *goimagehash.ImageHash
	bitmap image.Image
}

// Library holds one portrait per hero. Portraits from the user directory are
// loaded last and replace shipped ones.
type Library struct {
	size image.Point
	user string

	portraits map[string]*Portrait
	mutex     sync.RWMutex
}

// Match is the nearest portrait to a candidate. Hero is empty when no portrait
// is within the threshold.
type Match struct {
	Hero   string
	Best   int
	Second int
}

func New(size image.Point, user string) *Library {
	return &Library{
		size:      size,
		user:      user,
		portraits: make(map[string]*Portrait),
	}
}

// Load reads every <hero>.png from base and then user. A missing or unreadable
// base directory is an error; the user directory is created when missing.
func Load(size image.Point, base, user string) (*Library, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("portrait: invalid compare size %s", size)
	}

	l := New(size, user)

	n, err := l.dir(base)
	if err != nil {
		return nil, err
	}
	notify.System("[Portrait] Loaded %d portraits from %s", n, base)

	if user == "" {
		return l, nil
	}

	err = os.MkdirAll(user, 0755)
	if err != nil {
		return nil, errors.Wrapf(err, "portrait: %s", user)
	}

	n, err = l.dir(user)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		notify.System("[Portrait] Loaded %d user corrections from %s", n, user)
	}

	return l, nil
}

// Add computes the hash of img and stores it for hero, replacing any existing
// portrait.
func (l *Library) Add(hero string, img image.Image) error {
	p, err := l.portrait(hero, img)
	if err != nil {
		return err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.portraits[hero] = p

	return nil
}

func (l *Library) Has(hero string) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	_, ok := l.portraits[hero]
	return ok
}

// Missing returns the ids without a portrait, in the order given.
func (l *Library) Missing(ids []string) []string {
	missing := []string{}
	for _, id := range ids {
		if !l.Has(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func (l *Library) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.portraits)
}

// Match finds the portrait nearest to img by perceptual hash distance. Equal
// distances are broken by pixel difference of the comparison bitmaps, then by
// hero name.
func (l *Library) Match(img image.Image, threshold int) (Match, error) {
	c, err := l.portrait("", img)
	if err != nil {
		return Match{}, err
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	heroes := make([]string, 0, len(l.portraits))
	for h := range l.portraits {
		heroes = append(heroes, h)
	}
	sort.Strings(heroes)

	m := Match{Best: MaxDistance + 1, Second: MaxDistance + 1}
	bestPix := 0.0

	for _, h := range heroes {
		p := l.portraits[h]

		d, err := c.hash.Distance(p.hash)
		if err != nil {
			return Match{}, errors.Wrapf(err, "portrait: %s", h)
		}

		switch {
		case d < m.Best:
			m.Second = m.Best
			m.Best = d
			m.Hero = h
			bestPix = -1
		case d == m.Best:
			if bestPix < 0 {
				bestPix = difference(c.bitmap, l.portraits[m.Hero].bitmap)
			}

			pix := difference(c.bitmap, p.bitmap)
			if pix < bestPix {
				m.Hero = h
				bestPix = pix
			}
			m.Second = d
		case d < m.Second:
			m.Second = d
		}
	}

	if m.Best > threshold {
		m.Hero = ""
	}

	return m, nil
}

// Save writes a user correction for hero and adds it to the library.
func (l *Library) Save(hero string, b []byte) error {
	if l.user == "" {
		return errors.New("portrait: no user directory")
	}

	if hero == "" || strings.ContainsAny(hero, `/\.`) {
		return errors.Errorf("portrait: invalid hero %q", hero)
	}

	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return errors.Wrapf(err, "portrait: %s", hero)
	}

	err = os.MkdirAll(l.user, 0755)
	if err != nil {
		return errors.Wrap(err, "portrait")
	}

	file := filepath.Join(l.user, hero+".png")

	err = os.WriteFile(file, b, 0644)
	if err != nil {
		return errors.Wrap(err, "portrait")
	}

	notify.System("[Portrait] Saved correction for %s (%s)", hero, file)

	return l.Add(hero, img)
}

func (l *Library) Size() image.Point {
	return l.size
}

// Confident reports a match within threshold that is separated from the next
// nearest portrait by at least gap.
func (m Match) Confident(threshold, gap int) bool {
	return m.Hero != "" && m.Best <= threshold && m.Gap() >= gap
}

func (m Match) Gap() int {
	return m.Second - m.Best
}

func (m Match) MarshalZerologObject(e *zerolog.Event) {
	e.Str("hero", m.Hero).Int("best", m.Best).Int("second", m.Second)
}

func (l *Library) dir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, errors.Wrapf(err, "portrait: %s", dir)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}

		file := filepath.Join(dir, e.Name())
		hero := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))

		img, err := open(file)
		if err != nil {
			notify.Warn("[Portrait] Skipping %s (%v)", file, err)
			continue
		}

		p, err := l.portrait(hero, img)
		if err != nil {
			notify.Warn("[Portrait] Skipping %s (%v)", file, err)
			continue
		}
		p.File = file

		l.mutex.Lock()
		l.portraits[hero] = p
		l.mutex.Unlock()

		n++
	}

	return n, nil
}

func (l *Library) portrait(hero string, img image.Image) (*Portrait, error) {
	if img.Bounds().Empty() {
		return nil, errors.New("portrait: empty image")
	}

	bitmap := resize.Resize(uint(l.size.X), uint(l.size.Y), img, resize.Bilinear)

	hash, err := goimagehash.PerceptionHash(bitmap)
	if err != nil {
		return nil, errors.Wrap(err, "portrait: hash")
	}

	return &Portrait{Hero: hero, hash: hash, bitmap: bitmap}, nil
}

// difference returns the mean luminance difference of two equally sized images.
func difference(a, b image.Image) float64 {
	ab, bb := a.Bounds(), b.Bounds()

	w, h := ab.Dx(), ab.Dy()
	if bb.Dx() < w {
		w = bb.Dx()
	}
	if bb.Dy() < h {
		h = bb.Dy()
	}
	if w == 0 || h == 0 {
		return 0
	}

	sum := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += rgba.LumDiff(rgba.At(a, ab.Min.X+x, ab.Min.Y+y), rgba.At(b, bb.Min.X+x, bb.Min.Y+y))
		}
	}

	return sum / float64(w*h)
}

func open(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "png")
	}

	return img, nil
}
