// Package ws serves environments over websockets: every connection owns
// one environment and drives it with JSON requests.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/env"
	"github.com/vovakirdan/rogue-gym/internal/registry"
)

const (
	readTimeout  = 5 * time.Minute
	writeTimeout = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	Game    *config.Document // cloned per connection
	Options env.Options
	Logger  *log.Logger
}

// Server hands out one environment per websocket connection.
type Server struct {
	game     *config.Document
	opts     env.Options
	log      *log.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a server. A nil Game uses the default configuration.
func NewServer(cfg Config) *Server {
	if cfg.Game == nil {
		cfg.Game = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Server{
		game: cfg.Game,
		opts: cfg.Options,
		log:  cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the HTTP handler: GET /healthz and GET /env (websocket).
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.health)
	r.Get("/env", s.serveEnv)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "took", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	ids := make([]string, 0)
	for _, e := range registry.List() {
		ids = append(ids, e.ID)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "engines": ids})
}

// newEnv builds the environment of one connection. The optional seed
// query parameter overrides the configured seed.
func (s *Server) newEnv(r *http.Request) (*env.Env, error) {
	doc := s.game
	if q := r.URL.Query().Get("seed"); q != "" {
		seed, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: seed %q", core.ErrInvalidConfiguration, q)
		}
		doc = doc.WithSeed(seed)
	}
	opts := s.opts
	opts.Logger = s.log
	return env.New(doc, opts)
}

func (s *Server) serveEnv(w http.ResponseWriter, r *http.Request) {
	e, err := s.newEnv(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.log.Info("client connected", "remote", r.RemoteAddr, "engine", e.EngineID())
	defer s.log.Info("client disconnected", "remote", r.RemoteAddr, "steps", e.Steps())

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		resp := Response{}
		if err := json.Unmarshal(msg, &req); err != nil {
			resp.Error = "malformed request: " + err.Error()
		} else {
			resp = Handle(e, req)
		}
		data, err := json.Marshal(resp)
		if err != nil {
			s.log.Error("cannot encode response", "error", err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// Handle applies one request to e.
func Handle(e *env.Env, req Request) Response {
	resp := Response{Op: req.Op}
	fail := func(err error) Response {
		resp.Error = err.Error()
		return resp
	}

	switch req.Op {
	case OpReset:
		if _, err := e.Reset(); err != nil {
			return fail(err)
		}
	case OpStep:
		in, err := requestInput(req)
		if err != nil {
			return fail(err)
		}
		res, err := e.Step(in)
		if err != nil {
			return fail(err)
		}
		resp.Reward = res.Reward
	case OpSeed:
		if req.Seed == nil {
			return fail(fmt.Errorf("%w: seed op without seed", core.ErrInvalidConfiguration))
		}
		e.Seed(*req.Seed)
	case OpObserve:
		t, err := e.Observe()
		if err != nil {
			return fail(err)
		}
		shape := t.Shape()
		resp.Shape = shape[:]
		resp.Observation = t.Data
	case OpConfig:
		m, err := e.Config()
		if err != nil {
			return fail(err)
		}
		resp.Config = m
	default:
		return fail(fmt.Errorf("unknown op %q", req.Op))
	}

	st := e.State()
	status := st.Status
	resp.Dungeon = e.Dungeon()
	resp.Status = &status
	resp.Done = e.Done()
	resp.Steps = e.Steps()
	resp.EndReason = e.EndReason()
	return resp
}

func requestInput(req Request) (core.Input, error) {
	switch {
	case req.Action != nil && req.Keys != "":
		return nil, fmt.Errorf("%w: both action and keys given", core.ErrInvalidAction)
	case req.Action != nil:
		return core.Action(*req.Action), nil
	case req.Keys != "":
		return core.Macro(req.Keys), nil
	}
	return nil, fmt.Errorf("%w: step without action or keys", core.ErrInvalidAction)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting websocket server", "address", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
