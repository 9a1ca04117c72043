package ocr

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Local runs an engine in process. A call abandoned by its context keeps the
// engine busy until it returns, so the worker reports itself crashed and the
// pool replaces it.
type Local struct {
	engine Engine
	busy   sync.WaitGroup
}

func NewLocal(e Engine) *Local {
	return &Local{engine: e}
}

// LocalSpawner creates in-process workers from an engine constructor.
func LocalSpawner(fn func() (Engine, error)) Spawner {
	return func(i int) (Worker, error) {
		e, err := fn()
		if err != nil {
			return nil, errors.Wrapf(err, "ocr: engine %d", i)
		}
		return NewLocal(e), nil
	}
}

// Close waits for an abandoned recognition to finish before closing the engine.
func (l *Local) Close() error {
	l.busy.Wait()
	return l.engine.Close()
}

func (l *Local) Recognize(ctx context.Context, r Request) (Result, error) {
	type reply struct {
		Result
		err error
	}

	done := make(chan reply, 1)

	l.busy.Add(1)
	go func() {
		defer l.busy.Done()
		defer func() {
			if p := recover(); p != nil {
				done <- reply{err: errors.Wrapf(ErrCrashed, "panic: %v", p)}
			}
		}()

		res, err := l.engine.Recognize(r.Image, r.Languages, r.Params)
		done <- reply{res, err}
	}()

	select {
	case rep := <-done:
		return rep.Result, rep.err
	case <-ctx.Done():
		return Result{}, errors.Wrap(ctx.Err(), "ocr: recognize")
	}
}
