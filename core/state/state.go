package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pidgy/drafthud/core/team"
)

type EventType int

const (
	Nothing EventType = iota
	DetectStart
	ScreenshotLoaded
	BanImagesLoaded
	TimerStart
	TimerSuccess
	MapStart
	MapSuccess
	TeamsStart
	TeamsSuccess
	TeamsNew
	TeamsUpdate
	TeamSuccess
	BansSuccess
	DetectSuccess
	DetectError
	DetectDone
	DetectComplete
	Change
)

const maxEvents = 512

// Event is one lifecycle notification of a detection pass. Team is set for
// per-team events and Err for DetectError.
type Event struct {
	Type EventType `json:"type"`
	Time time.Time `json:"time"`

	Pass    uuid.UUID  `json:"pass"`
	Team    team.Color `json:"team,omitempty"`
	Err     error      `json:"-"`
	Message string     `json:"message,omitempty"`
}

// Log keeps recent events, newest first, and fans them out to subscribers.
type Log struct {
	events []*Event
	subs   map[chan *Event]struct{}
	mutex  sync.RWMutex
}

func (e EventType) String() string {
	switch e {
	case Nothing:
		return "nothing"
	case DetectStart:
		return "detect.start"
	case ScreenshotLoaded:
		return "detect.screenshot.load.success"
	case BanImagesLoaded:
		return "detect.ban.images.load.success"
	case TimerStart:
		return "detect.timer.start"
	case TimerSuccess:
		return "detect.timer.success"
	case MapStart:
		return "detect.map.start"
	case MapSuccess:
		return "detect.map.success"
	case TeamsStart:
		return "detect.teams.start"
	case TeamsSuccess:
		return "detect.teams.success"
	case TeamsNew:
		return "detect.teams.new"
	case TeamsUpdate:
		return "detect.teams.update"
	case TeamSuccess:
		return "detect.team.success"
	case BansSuccess:
		return "detect.bans.success"
	case DetectSuccess:
		return "detect.success"
	case DetectError:
		return "detect.error"
	case DetectDone:
		return "detect.done"
	case DetectComplete:
		return "detect.complete"
	case Change:
		return "change"
	default:
		return fmt.Sprintf("unknown.%d", int(e))
	}
}

func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e EventType) Either(those ...EventType) bool {
	for _, that := range those {
		if e == that {
			return true
		}
	}
	return false
}

func NewLog() *Log {
	return &Log{subs: make(map[chan *Event]struct{})}
}

// Add records a new event and delivers it to every subscriber that is ready
// to receive it. Slow subscribers miss events instead of blocking detection.
func (l *Log) Add(e *Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.Err != nil && e.Message == "" {
		e.Message = e.Err.Error()
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.events = append([]*Event{e}, l.events...)
	if len(l.events) > maxEvents {
		l.events = l.events[:maxEvents]
	}

	for c := range l.subs {
		select {
		case c <- e:
		default:
		}
	}
}

func (l *Log) Dump() (string, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if len(l.events) == 0 {
		return "No event data is available to display...", false
	}

	str := "Event History"
	for i := len(l.events) - 1; i >= 0; i-- {
		str = fmt.Sprintf("%s\n%s", str, l.events[i])
	}

	return str, true
}

// Emit is shorthand for Add with a pass and optional team.
func (l *Log) Emit(t EventType, pass uuid.UUID, c team.Color) *Event {
	e := &Event{Type: t, Pass: pass, Team: c}
	l.Add(e)
	return e
}

// Events returns recorded events, newest first.
func (l *Log) Events() []*Event {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return append([]*Event(nil), l.events...)
}

func (l *Log) Last() *Event {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if len(l.events) == 0 {
		return &Event{Type: Nothing}
	}
	return l.events[0]
}

// Occured reports whether any of the event types was added within since.
func (l *Log) Occured(since time.Duration, types ...EventType) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	for _, e := range l.events {
		if time.Since(e.Time) > since {
			return false
		}
		if e.Type.Either(types...) {
			return true
		}
	}

	return false
}

// Pass returns the events of one detection pass in the order they were added.
func (l *Log) Pass(id uuid.UUID) []*Event {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	events := []*Event{}
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Pass == id {
			events = append(events, l.events[i])
		}
	}

	return events
}

// Subscribe returns a channel receiving every event added after the call.
func (l *Log) Subscribe(buffer int) chan *Event {
	c := make(chan *Event, buffer)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.subs[c] = struct{}{}

	return c
}

func (l *Log) Unsubscribe(c chan *Event) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, ok := l.subs[c]; ok {
		delete(l.subs, c)
		close(c)
	}
}

func (e *Event) MarshalZerologObject(z *zerolog.Event) {
	z.Stringer("type", e.Type).Str("pass", e.Pass.String())
	if e.Team != "" {
		z.Str("team", e.Team.String())
	}
	if e.Err != nil {
		z.AnErr("err", e.Err)
	}
}

func (e *Event) String() string {
	s := fmt.Sprintf("[%02d:%02d:%02d] [Event] %s", e.Time.Hour(), e.Time.Minute(), e.Time.Second(), e.Type)
	if e.Team != "" {
		s += fmt.Sprintf(" (%s)", e.Team)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}
