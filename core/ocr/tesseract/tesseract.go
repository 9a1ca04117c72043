// Package tesseract implements an ocr.Engine with libtesseract.
package tesseract

import (
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/ocr"
)

type Engine struct {
	client    *gosseract.Client
	languages string
	params    map[string]string
}

func New() (ocr.Engine, error) {
	return &Engine{
		client: gosseract.NewClient(),
		params: map[string]string{},
	}, nil
}

func (e *Engine) Close() error {
	return e.client.Close()
}

// Recognize returns the text of a PNG image and the mean word confidence.
func (e *Engine) Recognize(image []byte, languages string, params map[string]string) (ocr.Result, error) {
	if languages != e.languages {
		err := e.client.SetLanguage(strings.Split(languages, "+")...)
		if err != nil {
			return ocr.Result{}, errors.Wrapf(err, "tesseract: language %q", languages)
		}
		e.languages = languages
	}

	for k, v := range params {
		if e.params[k] == v {
			continue
		}

		err := e.client.SetVariable(gosseract.SettableVariable(k), v)
		if err != nil {
			return ocr.Result{}, errors.Wrapf(err, "tesseract: variable %s", k)
		}
		e.params[k] = v
	}

	err := e.client.SetImageFromBytes(image)
	if err != nil {
		return ocr.Result{}, errors.Wrap(err, "tesseract: image")
	}

	text, err := e.client.Text()
	if err != nil {
		return ocr.Result{}, errors.Wrap(err, "tesseract: text")
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Result{Text: text}, nil
	}

	confidence := 0.0
	for _, b := range boxes {
		confidence += b.Confidence
	}
	if len(boxes) > 0 {
		confidence /= float64(len(boxes))
	}

	return ocr.Result{Text: text, Confidence: confidence}, nil
}

// Main serves recognition requests on stdin and stdout. It is the entry point
// of an out-of-process OCR worker.
func Main() int {
	e, err := New()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}
	defer e.Close()

	err = ocr.Serve(os.Stdin, os.Stdout, e)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}

	return 0
}
