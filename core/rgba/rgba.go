package rgba

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type RGBA color.RGBA

var (
	Announce      = RGBA{202, 222, 212, 255}
	Background    = RGBA{9, 8, 12, 255}
	Black         = RGBA{0, 0, 0, 255}
	CoolBlue      = RGBA{R: 71, G: 163, B: 255, A: 255}
	DarkRed       = RGBA{166, 43, 53, 255}
	DarkGray      = RGBA{R: 25, G: 25, B: 25, A: 255}
	ForestGreen   = RGBA{R: 0xF, G: 0xFF, B: 0xF, A: 0x3F}
	Gray          = RGBA{R: 75, G: 75, B: 75, A: 255}
	PastelBlue    = RGBA{130, 130, 223, 255}
	PastelRed     = RGBA{245, 95, 95, 255}
	Pinkity       = RGBA{255, 112, 150, 255}
	SlateGray     = RGBA{R: 112, G: 128, B: 144, A: 255}
	System        = RGBA{R: 95, G: 95, B: 95, A: 255}
	Transparent   = RGBA{}
	White         = RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Yellow        = RGBA{R: 0xFF, G: 0xFF, A: 0xFF}
	TeamBlue      = RGBA{R: 46, G: 140, B: 255, A: 255}
	TeamRed       = RGBA{R: 230, G: 50, B: 60, A: 255}
	BanHighlight  = RGBA{R: 220, G: 40, B: 40, A: 255}
	LockedOutline = RGBA{R: 240, G: 200, B: 90, A: 255}
)

func Bool(b bool) RGBA {
	if b {
		return System
	}
	return System.Alpha(255 / 2)
}

// At returns the colour of the pixel at x, y with alpha ignored by the classifier.
func At(img image.Image, x, y int) RGBA {
	switch i := img.(type) {
	case *image.NRGBA:
		c := i.NRGBAAt(x, y)
		return RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	case *image.RGBA:
		return RGBA(i.RGBAAt(x, y))
	}
	return RGBA(color.RGBAModel.Convert(img.At(x, y)).(color.RGBA))
}

func Parse(s string) (RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return RGBA{}, errors.Errorf("rgba: invalid colour %q", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, errors.Wrapf(err, "rgba: %q", s)
	}

	if len(h) == 6 {
		v = v<<8 | 0xFF
	}

	return RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func (r RGBA) Alpha(a uint8) RGBA {
	r.A = a
	return r
}

func (r RGBA) Color() color.RGBA {
	return color.RGBA(r)
}

func (r RGBA) Hex() string {
	if r.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", r.R, r.G, r.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r.R, r.G, r.B, r.A)
}

func (r RGBA) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Hex())
}

func (r *RGBA) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return errors.Wrap(err, "rgba")
	}

	c, err := Parse(s)
	if err != nil {
		return err
	}
	*r = c

	return nil
}

func (r RGBA) String() string {
	return r.Hex()
}
