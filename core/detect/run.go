package detect

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/state"
)

// completeBuffer holds the events of several passes so a slow handler does not
// miss the completion of a draft.
const completeBuffer = 256

// Source provides screenshots of the draft screen.
type Source interface {
	Capture() (image.Image, error)
}

// Run captures a screenshot from src every interval and runs a pass on it
// until ctx is cancelled. Failed passes are retried on the next screenshot.
func Run(ctx context.Context, src Source, s *Screen, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		img, err := src.Capture()
		if err != nil {
			notify.Dedup(rgba.DarkRed, "[Detect] Failed to capture screenshot (%v)", err)
			continue
		}

		_, err = s.Detect(ctx, img)
		switch {
		case err == nil, errors.Is(err, ErrBusy):
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			notify.Debug("[Detect] Pass failed (%v)", err)
		}
	}
}

// OnComplete calls fn with the draft every time one completes, until ctx is
// cancelled. The subscription is in place when OnComplete returns.
func (s *Screen) OnComplete(ctx context.Context, fn func(d Draft)) {
	events := s.events.Subscribe(completeBuffer)

	go func() {
		defer s.events.Unsubscribe(events)

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if e.Type == state.DetectComplete {
					fn(s.Draft())
				}
			}
		}
	}()
}
