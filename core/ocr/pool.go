package ocr

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/notify"
)

// Pool balances requests over a fixed number of workers. Each worker serves
// one request at a time; requests queue on the least busy worker.
type Pool struct {
	spawn   Spawner
	timeout time.Duration

	slots []*slot
	seq   atomic.Uint64

	closed atomic.Bool
}

type slot struct {
	index int

	worker  Worker
	pending atomic.Int32
	crashes int

	// Holds one token while the worker is in use.
	lock chan struct{}
}

type Option func(p *Pool)

// Timeout bounds every Recognize call, including time spent queued.
func Timeout(d time.Duration) Option {
	return func(p *Pool) {
		p.timeout = d
	}
}

// New creates a pool of n workers. Workers are started lazily and restarted
// after a crash.
func New(n int, spawn Spawner, opts ...Option) (*Pool, error) {
	if n <= 0 {
		return nil, errors.Errorf("ocr: invalid worker count %d", n)
	}
	if spawn == nil {
		return nil, errors.New("ocr: missing spawner")
	}

	p := &Pool{spawn: spawn}
	for _, o := range opts {
		o(p)
	}

	for i := 0; i < n; i++ {
		p.slots = append(p.slots, &slot{index: i, lock: make(chan struct{}, 1)})
	}

	return p, nil
}

// Start spawns every worker up front so start-up errors surface immediately.
func (p *Pool) Start() error {
	for _, s := range p.slots {
		s.lock <- struct{}{}
		err := s.start(p.spawn)
		<-s.lock
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for _, s := range p.slots {
		s.lock <- struct{}{}
		if s.worker != nil {
			err := s.worker.Close()
			if err != nil {
				errs = append(errs, err)
			}
			s.worker = nil
		}
		<-s.lock
	}

	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "ocr: %d workers failed to close", len(errs))
	}

	return nil
}

// Recognize queues image on the least busy worker. A worker that crashes or
// times out is discarded and replaced on its next use; the error is returned
// to the caller.
func (p *Pool) Recognize(ctx context.Context, image []byte, languages string, params map[string]string) (Result, error) {
	if p.closed.Load() {
		return Result{}, ErrClosed
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	s := p.pick()

	s.pending.Add(1)
	defer s.pending.Add(-1)

	select {
	case s.lock <- struct{}{}:
	case <-ctx.Done():
		return Result{}, errors.Wrap(ctx.Err(), "ocr: queued")
	}
	defer func() { <-s.lock }()

	if p.closed.Load() {
		return Result{}, ErrClosed
	}

	err := s.start(p.spawn)
	if err != nil {
		return Result{}, err
	}

	req := Request{
		ID:        p.seq.Add(1),
		Image:     image,
		Languages: languages,
		Params:    params,
	}

	res, err := s.worker.Recognize(ctx, req)
	if err != nil {
		if errors.Is(err, ErrCrashed) || ctx.Err() != nil {
			s.discard(err)
		}
		return Result{}, err
	}

	return res, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.slots)
}

// pick returns the slot with the fewest pending requests, rotating the start
// position so ties spread evenly.
func (p *Pool) pick() *slot {
	start := int(p.seq.Load() % uint64(len(p.slots)))

	best := p.slots[start]
	for i := 1; i < len(p.slots); i++ {
		s := p.slots[(start+i)%len(p.slots)]
		if s.pending.Load() < best.pending.Load() {
			best = s
		}
	}

	return best
}

// Caller holds the slot lock.
func (s *slot) discard(err error) {
	s.crashes++

	notify.Warn("[OCR] Worker %d restarting after failure #%d (%v)", s.index, s.crashes, err)

	w := s.worker
	s.worker = nil
	if w != nil {
		go w.Close()
	}
}

// Caller holds the slot lock.
func (s *slot) start(spawn Spawner) error {
	if s.worker != nil {
		return nil
	}

	w, err := spawn(s.index)
	if err != nil {
		return errors.Wrapf(err, "ocr: worker %d failed to start", s.index)
	}
	s.worker = w

	return nil
}
