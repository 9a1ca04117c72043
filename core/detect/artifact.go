package detect

import (
	"context"
	"image"
	"strconv"

	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/region"
	"github.com/pidgy/drafthud/core/stats"
	"github.com/pidgy/drafthud/system/save"
)

// Artifact is the input and output of one text isolation, kept for tuning
// colour rules.
type Artifact struct {
	Ident  string
	Before image.Image
	After  image.Image
}

// Artifacts returns the isolation artifacts of the last pass. They are only
// collected in debug mode.
func (s *Screen) Artifacts() []Artifact {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]Artifact(nil), s.artifacts...)
}

func (p *pass) artifact(ident string, before, after image.Image) {
	if !p.debug {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.artifacts = append(p.artifacts, Artifact{Ident: ident, Before: before, After: after})
}

func (s *Screen) saveArtifacts(artifacts []Artifact) {
	for i, a := range artifacts {
		_, err := save.Artifact(strconv.Itoa(i)+"-"+a.Ident, a.Before, a.After)
		if err != nil {
			notify.Warn("[Detect] Failed to save %s (%v)", a.Ident, err)
			return
		}
	}
}

// recognize encodes img and runs OCR on it. The encoded image is returned
// even when recognition fails.
func (s *Screen) recognize(ctx context.Context, kind string, img image.Image, languages string) (string, []byte, error) {
	b, err := region.Encode(img)
	if err != nil {
		return "", nil, err
	}

	r, err := s.ocr.Recognize(ctx, b, languages, s.cfg.Tesseract.Params)
	if err != nil {
		notify.Debug("[Detect] [OCR] %s recognition failed (%v)", kind, err)
		return "", b, err
	}

	stats.Collect("ocr."+kind+".confidence", r.Confidence)

	return r.Trim(), b, nil
}
