package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/env"
	_ "github.com/vovakirdan/rogue-gym/internal/games/rogue"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(Config{
		Game:    config.MustParse(`{"width": 60, "height": 23, "hide_dungeon": false}`),
		Options: env.Options{MaxSteps: 50},
	})
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/env" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req string) Response {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(msg, &resp); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var body struct {
		Status  string   `json:"status"`
		Engines []string `json:"engines"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || len(body.Engines) == 0 {
		t.Errorf("healthz = %+v", body)
	}
}

func TestEnvSession(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "?seed=4")

	resp := roundTrip(t, conn, `{"op":"reset"}`)
	if resp.Error != "" {
		t.Fatalf("reset error: %s", resp.Error)
	}
	if len(resp.Dungeon) != 23 || resp.Status == nil || resp.Status.DungeonLevel != 1 {
		t.Fatalf("reset response = %+v", resp)
	}
	joined := strings.Join(resp.Dungeon, "\n")
	if !strings.Contains(joined, "@") {
		t.Error("dungeon lacks the player")
	}

	resp = roundTrip(t, conn, `{"op":"step","action":0}`)
	if resp.Error != "" || resp.Steps != 1 || resp.Done {
		t.Errorf("step response = %+v", resp)
	}
	resp = roundTrip(t, conn, `{"op":"step","keys":"..s"}`)
	if resp.Error != "" || resp.Steps != 4 {
		t.Errorf("macro step response = %+v", resp)
	}

	resp = roundTrip(t, conn, `{"op":"step","action":99}`)
	if resp.Error == "" {
		t.Error("out of range action should report an error")
	}
	resp = roundTrip(t, conn, `{"op":"step","keys":"xyz"}`)
	if resp.Error == "" {
		t.Error("invalid keys should report an error")
	}
	resp = roundTrip(t, conn, `not json`)
	if resp.Error == "" {
		t.Error("malformed request should report an error")
	}

	resp = roundTrip(t, conn, `{"op":"observe"}`)
	if resp.Error != "" || len(resp.Shape) != 3 || len(resp.Observation) != resp.Shape[0]*resp.Shape[1]*resp.Shape[2] {
		t.Errorf("observe shape = %v, len %d (%s)", resp.Shape, len(resp.Observation), resp.Error)
	}

	resp = roundTrip(t, conn, `{"op":"config"}`)
	if resp.Config["width"] != float64(60) {
		t.Errorf("config = %v", resp.Config)
	}
}

func TestSeedAppliesOnReset(t *testing.T) {
	ts := newTestServer(t)
	a := dial(t, ts, "?seed=11")
	b := dial(t, ts, "?seed=12")

	first := roundTrip(t, a, `{"op":"reset"}`)
	if resp := roundTrip(t, b, `{"op":"seed","seed":11}`); resp.Error != "" {
		t.Fatalf("seed error: %s", resp.Error)
	}
	second := roundTrip(t, b, `{"op":"reset"}`)
	if strings.Join(first.Dungeon, "\n") != strings.Join(second.Dungeon, "\n") {
		t.Error("same seed should produce the same dungeon")
	}

	if resp := roundTrip(t, b, `{"op":"seed"}`); resp.Error == "" {
		t.Error("seed without value should fail")
	}
	if resp := roundTrip(t, b, `{"op":"jump"}`); resp.Error == "" {
		t.Error("unknown op should fail")
	}
}

func TestBadSeedQuery(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Get(ts.URL + "/env?seed=abc")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", res.StatusCode)
	}
}
