package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"nhooyr.io/websocket"

	"github.com/pidgy/drafthud/core/detect"
	"github.com/pidgy/drafthud/core/global"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/state"
	"github.com/pidgy/drafthud/core/team"
)

const Address = "127.0.0.1:17180"

const writeTimeout = 5 * time.Second

// message is the payload of GET /draft and of every websocket frame. Draft is
// only attached to events that change it.
type message struct {
	Event   *state.Event  `json:"event,omitempty"`
	Draft   *detect.Draft `json:"draft,omitempty"`
	Events  []string      `json:"events,omitempty"`
	Debug   bool          `json:"debug"`
	Active  bool          `json:"active"`
	Version string        `json:"version"`
}

// correction is the body of POST /ban and POST /hero.
type correction struct {
	Team  team.Color `json:"team"`
	Index int        `json:"index"`
	Hero  string     `json:"hero"`
}

type Server struct {
	screen *detect.Screen
	addr   string
	http   *http.Server

	tx       int
	requests int
	duration time.Duration

	clients map[string]time.Time

	mutex sync.Mutex
}

func New(addr string, screen *detect.Screen) *Server {
	if addr == "" {
		addr = Address
	}

	s := &Server{
		screen:  screen,
		addr:    addr,
		clients: map[string]time.Time{},
	}
	s.http = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: writeTimeout}

	return s
}

// Handler routes the draft endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/draft", s.draft)
	mux.HandleFunc("/ws", s.ws)
	mux.HandleFunc("/ban", s.correct(s.screen.CorrectBan))
	mux.HandleFunc("/hero", s.correct(s.screen.CorrectHero))
	return mux
}

// Open starts listening on the configured address and serves until Close.
func (s *Server) Open(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "server: %s", s.addr)
	}

	go func() {
		err := s.http.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			notify.Error("[Server] Stopped serving (%v)", err)
		}
	}()

	notify.System("[Server] Listening on %s", s.addr)

	go s.metrics(ctx)

	return nil
}

func (s *Server) Close(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Clients returns the number of clients seen within the last five seconds. A
// websocket client is seen on every frame sent to it.
func (s *Server) Clients() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for c, then := range s.clients {
		if time.Since(then) > time.Second*5 {
			notify.Feed(rgba.SlateGray, "[Server] Client disconnected (%s)", c)
			delete(s.clients, c)
		}
	}

	return len(s.clients)
}

func (s *Server) draft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := s.client(r)

	b, err := json.Marshal(s.message(nil))
	if err != nil {
		notify.Error("[Server] Failed to create HTTP response (%v)", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(b)
	if err != nil {
		notify.Error("[Server] Failed to send HTTP response (%v)", err)
		return
	}

	s.track(len(b), now)
}

// ws streams the current draft followed by every lifecycle event until the
// client disconnects.
func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	now := s.client(r)

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     []string{"127.0.0.1", "localhost", "0.0.0.0"},
		InsecureSkipVerify: true,
	})
	if err != nil {
		notify.Error("[Server] WebSocket connection failed (%v)", err)
		return
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	events := s.screen.Events().Subscribe(64)
	defer s.screen.Events().Unsubscribe(events)

	ctx := c.CloseRead(r.Context())

	err = s.write(ctx, c, s.message(nil), now)
	if err != nil {
		notify.Warn("[Server] Failed to send WebSocket response (%v)", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}

			err = s.write(ctx, c, s.message(e), s.client(r))
			if err != nil {
				notify.Debug("[Server] WebSocket closed (%v)", err)
				return
			}
		}
	}
}

// correct wraps a manual correction of the detected draft.
func (s *Server) correct(fn func(c team.Color, index int, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.client(r)

		req := correction{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid request (%v)", err), http.StatusBadRequest)
			return
		}

		err = fn(req.Team, req.Index, req.Hero)
		if err != nil {
			notify.Warn("[Server] %s correction rejected (%v)", r.URL.Path, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) message(e *state.Event) *message {
	m := &message{
		Event:   e,
		Events:  notify.LastNStrings(10),
		Debug:   global.DebugMode,
		Active:  s.screen.Active(),
		Version: global.Version,
	}

	if e == nil || e.Type.Either(state.Change, state.DetectComplete, state.TeamsNew) {
		d := s.screen.Draft()
		m.Draft = &d
	}

	return m
}

func (s *Server) write(ctx context.Context, c *websocket.Conn, m *message, now time.Time) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = c.Write(ctx, websocket.MessageText, b)
	if err != nil {
		return err
	}

	s.track(len(b), now)

	return nil
}

func (s *Server) metrics(ctx context.Context) {
	t := time.NewTicker(time.Minute * 30)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		s.mutex.Lock()
		requests, tx, duration := s.requests, s.tx, s.duration
		s.mutex.Unlock()

		clients := s.Clients()
		if requests < 2 {
			notify.System("[Server] Awaiting connection...")
			continue
		}

		notify.System(
			"[Server] %d clients averaging %s / %.1fkB latency",
			clients,
			duration/time.Duration(requests),
			float64(tx)/float64(requests)/1000,
		)
	}
}

func (s *Server) client(r *http.Request) time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := fmt.Sprintf("%s -> %s", strings.Split(r.RemoteAddr, ":")[0], r.URL.Path)

	if _, ok := s.clients[c]; !ok {
		notify.Debug("[Server] Client connected (%s)", c)
	}

	now := time.Now()
	s.clients[c] = now

	return now
}

func (s *Server) track(n int, since time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tx += n
	s.duration += time.Since(since)
	s.requests++
}
