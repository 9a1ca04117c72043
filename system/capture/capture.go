// Package capture provides screenshot sources for the detection loop.
package capture

import (
	"image"
	"os"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/config"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/region"
)

// Source matches detect.Source.
type Source interface {
	Capture() (image.Image, error)
}

// Display captures a full monitor.
type Display struct {
	Index int
}

// File reads a screenshot from disk on every capture so it can be replaced
// while running.
type File struct {
	Path string
}

// New returns the file source when one is configured, otherwise the display.
func New(c *config.Config) Source {
	if c.Capture.File != "" {
		notify.System("[Capture] Reading screenshots from %s", c.Capture.File)
		return &File{Path: c.Capture.File}
	}

	notify.System("[Capture] Capturing display #%d", c.Capture.Display)

	return &Display{Index: c.Capture.Display}
}

// Displays returns the bounds of every active display, ordered by index.
func Displays() []image.Rectangle {
	r := []image.Rectangle{}
	for i := 0; i < screenshot.NumActiveDisplays(); i++ {
		r = append(r, screenshot.GetDisplayBounds(i))
	}
	return r
}

func (d *Display) Capture() (image.Image, error) {
	if d.Index < 0 {
		return nil, errors.Errorf("capture: invalid display #%d", d.Index)
	}

	n := screenshot.NumActiveDisplays()
	if d.Index >= n {
		return nil, errors.Errorf("capture: display #%d not found (%d active)", d.Index, n)
	}

	img, err := screenshot.CaptureDisplay(d.Index)
	if err != nil {
		return nil, errors.Wrapf(err, "capture: display #%d", d.Index)
	}

	return img, nil
}

func (f *File) Capture() (image.Image, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.Wrap(err, "capture")
	}

	img, err := region.Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "capture: %s", f.Path)
	}

	return img, nil
}
