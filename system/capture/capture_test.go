package capture

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pidgy/drafthud/core/config"
	"github.com/pidgy/drafthud/core/region"
)

func TestFile(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	img.Set(3, 2, color.NRGBA{R: 200, A: 255})

	b, err := region.Encode(img)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "draft.png")
	require.NoError(t, os.WriteFile(file, b, 0644))

	c := config.Default()
	c.Capture.File = file

	src := New(&c)
	require.IsType(t, &File{}, src)

	got, err := src.Capture()
	require.NoError(t, err)
	require.Equal(t, image.Pt(8, 4), got.Bounds().Size())

	r, _, _, _ := got.At(3, 2).RGBA()
	require.Equal(t, uint32(200)<<8|200, r)
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := (&File{Path: filepath.Join(dir, "missing.png")}).Capture()
	require.Error(t, err)

	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a png"), 0644))

	_, err = (&File{Path: corrupt}).Capture()
	require.Error(t, err)
}

func TestDisplayInvalid(t *testing.T) {
	_, err := (&Display{Index: -1}).Capture()
	require.Error(t, err)

	c := config.Default()
	require.IsType(t, &Display{}, New(&c))
}
