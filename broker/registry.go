// Package broker owns the session registry: creating sessions (gated by
// max-sessions), looking them up by id, and reaping idle or dead ones.
package broker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	parterm "github.com/parterm-dev/parterm"
	"github.com/parterm-dev/parterm/pty"
	"github.com/parterm-dev/parterm/session"
	"github.com/parterm-dev/parterm/trigger"
)

// ErrMaxSessions is returned when session creation would exceed max_sessions.
var ErrMaxSessions = fmt.Errorf("broker: max sessions reached")

// Preset is a named shell command selectable via ?preset= at connect time.
type Preset struct {
	Name    string
	Command string
	Args    []string
}

// Config carries the server-wide limits and defaults the registry enforces.
type Config struct {
	MaxSessions        int
	SessionIdleTimeout time.Duration
	MaxClientsPerSess  int
	DefaultCommand     string
	DefaultArgs        []string
	DefaultCols        int
	DefaultRows        int
	RestartShell       bool
	InputRateLimit     int // bytes/sec, 0 = unlimited
	InjectCommand      string
	Theme              string
	Presets            map[string]Preset
}

// Registry maps session-id to running Session, gated by Config.MaxSessions.
type Registry struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New constructs an empty registry. Call Reap in a goroutine to keep it
// running for the server's lifetime.
func New(cfg Config, logger zerolog.Logger) *Registry {
	return &Registry{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*session.Session),
	}
}

// Get returns an existing session by id.
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it (optionally from a
// named preset) if absent. Creation is gated by max_sessions.
func (r *Registry) GetOrCreate(id, preset string) (*session.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return s, nil
	}
	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		r.mu.Unlock()
		return nil, ErrMaxSessions
	}
	r.mu.Unlock()

	s, err := r.spawn(id, preset)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.Shutdown(context.Background(), "duplicate session race")
		return existing, nil
	}
	r.sessions[id] = s
	r.mu.Unlock()
	return s, nil
}

func (r *Registry) spawn(id, preset string) (*session.Session, error) {
	command := r.cfg.DefaultCommand
	args := r.cfg.DefaultArgs
	if preset != "" {
		p, ok := r.cfg.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("broker: unknown preset %q", preset)
		}
		command, args = p.Command, p.Args
	}

	logger := r.logger.With().Str("session_id", id).Logger()

	term := parterm.New(parterm.WithSize(r.cfg.DefaultRows, r.cfg.DefaultCols))
	sess := session.New(id, term, nil, logger, r.cfg.MaxClientsPerSess)
	sess.Theme = r.cfg.Theme
	sess.Triggers = trigger.NewRegistry()

	spec := pty.Spec{
		Command:       command,
		Args:          args,
		Env:           os.Environ(),
		Cols:          r.cfg.DefaultCols,
		Rows:          r.cfg.DefaultRows,
		RestartOnExit: r.cfg.RestartShell,
	}
	shell, err := pty.New(spec, logger, sess.HandleShellOutput, func(err error) {
		if err != nil {
			logger.Warn().Err(err).Msg("shell process exited")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("broker: spawn session %s: %w", id, err)
	}
	sess.Shell = shell

	if r.cfg.InjectCommand != "" {
		shell.InjectCommand(r.cfg.InjectCommand, injectCommandSettle)
	}
	return sess, nil
}

// injectCommandSettle is the delay before the --command text is typed into
// a freshly spawned shell, giving it time to print its prompt first.
const injectCommandSettle = time.Second

// Close performs the Shutdown-then-drop sequence for one session.
func (r *Registry) Close(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	s.Shutdown(ctx, "session closed")
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap runs until ctx is canceled, removing idle-with-no-clients sessions
// and sessions whose shell has exited with no clients, and logging a health
// warning for sessions whose broadcaster has gone quiet despite having
// clients attached.
func (r *Registry) Reap(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reapOnce(ctx)
		}
	}
}

func (r *Registry) reapOnce(ctx context.Context) {
	r.mu.RLock()
	candidates := make(map[string]*session.Session, len(r.sessions))
	for id, s := range r.sessions {
		candidates[id] = s
	}
	r.mu.RUnlock()

	for id, s := range candidates {
		clients := s.ClientCount()
		dead := !s.Shell.Alive()

		if clients == 0 && r.cfg.SessionIdleTimeout > 0 && s.IdleSince() > r.cfg.SessionIdleTimeout {
			r.logger.Info().Str("session_id", id).Msg("reaping idle session")
			r.Close(ctx, id)
			continue
		}
		if clients == 0 && dead {
			r.logger.Info().Str("session_id", id).Msg("reaping session with exited shell")
			r.Close(ctx, id)
			continue
		}
		if clients > 0 && !s.Healthy(30*time.Second) {
			r.logger.Warn().Str("session_id", id).Msg("session broadcaster silent for over 30s")
		}
	}
}
