package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/pidgy/drafthud/core/detect"
	"github.com/pidgy/drafthud/core/gamedata"
	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/ocr"
	"github.com/pidgy/drafthud/core/state"
	"github.com/pidgy/drafthud/core/team"
)

type blank struct{}

func (blank) Recognize(ctx context.Context, image []byte, languages string, params map[string]string) (ocr.Result, error) {
	return ocr.Result{}, nil
}

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	screen, err := detect.New(detect.Options{
		Layout:     layout.Default(),
		OCR:        blank{},
		Dictionary: gamedata.Default(),
	})
	require.NoError(t, err)

	s := New("", screen)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return s, ts
}

func TestDraft(t *testing.T) {
	s, ts := newServer(t)

	s.screen.Team(team.Red).Player(1).SetName("Nova#1234", true, nil)

	res, err := http.Get(ts.URL + "/draft")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))

	m := message{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	require.NotNil(t, m.Draft)
	require.Nil(t, m.Event)
	require.Len(t, m.Draft.Teams, 2)
	require.Equal(t, team.Red, m.Draft.Teams[1].Color)
	require.Equal(t, "Nova#1234", m.Draft.Teams[1].Players[0].Name)
	require.False(t, m.Draft.Complete)

	require.Equal(t, 1, s.Clients())

	res, err = http.Post(ts.URL+"/draft", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestCorrections(t *testing.T) {
	type test struct {
		name   string
		path   string
		body   string
		status int
	}

	_, ts := newServer(t)

	for _, tc := range []test{
		{"malformed", "/ban", "{", http.StatusBadRequest},
		{"unknown team", "/ban", `{"team":"green","index":0,"hero":"valeera"}`, http.StatusBadRequest},
		{"unresolved slot", "/ban", `{"team":"blue","index":0,"hero":"valeera"}`, http.StatusBadRequest},
		{"unknown hero", "/hero", `{"team":"blue","index":0,"hero":"nobody"}`, http.StatusBadRequest},
		{"hero", "/hero", `{"team":"blue","index":2,"hero":"valeera"}`, http.StatusNoContent},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := http.Post(ts.URL+tc.path, "application/json", bytes.NewBufferString(tc.body))
			require.NoError(t, err)
			res.Body.Close()

			require.Equal(t, tc.status, res.StatusCode)
		})
	}

	res, err := http.Get(ts.URL + "/draft")
	require.NoError(t, err)
	defer res.Body.Close()

	m := message{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	require.Equal(t, "Valeera", m.Draft.Teams[0].Players[0].Hero)
	require.Equal(t, 2, m.Draft.Teams[0].Players[0].Index)
}

func TestWebSocket(t *testing.T) {
	s, ts := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	read := func() map[string]json.RawMessage {
		_, b, err := c.Read(ctx)
		require.NoError(t, err)

		m := map[string]json.RawMessage{}
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	}

	first := read()
	require.Contains(t, first, "draft")
	require.NotContains(t, first, "event")

	// The subscription exists once the snapshot was sent.
	s.screen.Events().Emit(state.DetectStart, uuid.New(), "")
	s.screen.Events().Emit(state.Change, uuid.Nil, team.Blue)

	start := read()
	require.JSONEq(t, `"detect.start"`, string(mustField(t, start["event"], "type")))
	require.NotContains(t, start, "draft")

	change := read()
	require.JSONEq(t, `"change"`, string(mustField(t, change["event"], "type")))
	require.JSONEq(t, `"blue"`, string(mustField(t, change["event"], "team")))
	require.Contains(t, change, "draft")

	d := detect.Draft{}
	require.NoError(t, json.Unmarshal(change["draft"], &d))
	require.Len(t, d.Teams, 2)
}

func mustField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	t.Helper()

	m := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Contains(t, m, field)

	return m[field]
}
