// Package ocr runs text recognition on a fixed pool of workers.
package ocr

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrCrashed reports a worker that died or stopped answering. The pool
	// replaces it on the next request.
	ErrCrashed = errors.New("ocr worker crashed")
	ErrClosed  = errors.New("ocr pool closed")
)

type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Request is one recognition job. Image holds an encoded PNG.
type Request struct {
	ID        uint64            `json:"id"`
	Image     []byte            `json:"image"`
	Languages string            `json:"languages"`
	Params    map[string]string `json:"params,omitempty"`
}

type Response struct {
	ID uint64 `json:"id"`
	Result
	Error string `json:"error,omitempty"`
}

// Engine is a single recognition engine instance. Engines are not safe for
// concurrent use.
type Engine interface {
	Recognize(image []byte, languages string, params map[string]string) (Result, error)
	Close() error
}

// Worker owns one engine, in or out of process.
type Worker interface {
	Recognize(ctx context.Context, r Request) (Result, error)
	Close() error
}

// Spawner starts worker i of a pool.
type Spawner func(i int) (Worker, error)

func (r Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("text", r.Text).Float64("confidence", r.Confidence)
}

// Trim returns the text with surrounding whitespace removed.
func (r Result) Trim() string {
	return strings.TrimSpace(r.Text)
}
