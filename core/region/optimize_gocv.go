//go:build gocv

package region

import (
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/pidgy/drafthud/core/notify"
)

// Optimize prepares isolated text for OCR: grayscale, contrast, normalize,
// blur and finally scale by f.
func Optimize(img image.Image, f float64) *image.NRGBA {
	if img.Bounds().Empty() {
		return &image.NRGBA{}
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		notify.Error("[Region] Failed to convert image (%v)", err)
		return imaging.Clone(img)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	// Contrast +40%.
	const factor = 1.4 / 0.6
	contrast := gocv.NewMat()
	defer contrast.Close()
	gray.ConvertToWithParams(&contrast, gocv.MatTypeCV8U, factor, 127.5*(1-factor))

	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Normalize(contrast, &norm, 0, 255, gocv.NormMinMax)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(norm, &blur, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	out := blur
	if f != 1 {
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(blur, &scaled, image.Point{}, f, f, gocv.InterpolationArea)
		out = scaled
	}

	dst, err := out.ToImage()
	if err != nil {
		notify.Error("[Region] Failed to convert matrix (%v)", err)
		return imaging.Clone(img)
	}

	return imaging.Clone(dst)
}
