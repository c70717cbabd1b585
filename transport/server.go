// Package transport accepts WebSocket connections (plain, TLS, or embedded
// in an HTTP static file server), authenticates them, registers clients with
// the broker, and pumps wire frames between the socket and the session.
package transport

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parterm-dev/parterm/broker"
	"github.com/parterm-dev/parterm/wire"
)

// Config holds the transport-level settings read from CLI flags/env.
type Config struct {
	Host string
	Port int

	TLSCertFile string
	TLSKeyFile  string
	TLSPEMFile  string

	EnableHTTP bool
	WebRoot    string

	Auth Auth

	EnableSystemStats     bool
	SystemStatsInterval   time.Duration

	InputRateLimitBytes int
}

// Server binds one listener and serves the terminal and stats endpoints.
type Server struct {
	cfg      Config
	registry *broker.Registry
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	stats    *statsBroadcaster
}

// New constructs a Server; call ListenAndServe to run it.
func New(cfg Config, registry *broker.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	if cfg.EnableSystemStats {
		s.stats = newStatsBroadcaster(cfg.SystemStatsInterval, logger)
	}
	return s
}

// ListenAndServe binds cfg.Host:cfg.Port and blocks serving connections.
// Returns a non-nil error on bind failure (exit code 2 per the CLI contract).
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.withAuth(s.handleRoot))
	mux.HandleFunc("/ws", s.withAuth(s.handleWS))
	if s.stats != nil {
		mux.HandleFunc("/stats", s.withAuth(s.handleStats))
		go s.stats.run(ctx)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if s.cfg.TLSPEMFile != "" {
		return srv.ListenAndServeTLS(s.cfg.TLSPEMFile, s.cfg.TLSPEMFile)
	}
	if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
		return srv.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	}
	return srv.ListenAndServe()
}

// handleRoot serves the terminal session endpoint when a WebSocket upgrade
// is requested, and falls back to static file serving when enabled.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.handleWS(w, r)
		return
	}
	if !s.cfg.EnableHTTP || s.cfg.WebRoot == "" {
		http.NotFound(w, r)
		return
	}
	http.FileServer(http.Dir(s.cfg.WebRoot)).ServeHTTP(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session")
	preset := q.Get("preset")
	_, readonly := q["readonly"]

	sess, err := s.registry.GetOrCreate(sessionID, preset)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session creation rejected")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	if tcp, ok := conn.UnderlyingConn().(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	newClientConn(sess, conn, readonly, s.cfg.InputRateLimitBytes, s.logger).run()
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.stats.subscribe()
	defer s.stats.unsubscribe(ch)

	for sample := range ch {
		frame, err := wire.EncodeFrame(wire.MsgSystemStats, sample)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}
