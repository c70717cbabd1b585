// Package session owns one running terminal, its backing shell, and the set
// of clients currently attached to it: subscription filters, per-client rate
// limiting, broadcast fan-out, and the metrics the registry's reaper and
// the /stats endpoint read from.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	parterm "github.com/parterm-dev/parterm"
	"github.com/parterm-dev/parterm/pty"
	"github.com/parterm-dev/parterm/trigger"
	"github.com/parterm-dev/parterm/wire"
)

// broadcastCapacity bounds each client's outgoing channel; full channels
// drop the message and increment DroppedMessages rather than block.
const broadcastCapacity = 1000

// Errors returned by Session methods. The transport reports
// ErrClientLimitReached to the connecting client in a Shutdown message; the
// others are logged and the client stays connected.
var (
	ErrClientLimitReached = fmt.Errorf("session: max clients per session reached")
	ErrRateLimited        = fmt.Errorf("session: input rate limit exceeded")
	ErrInvalidResize      = fmt.Errorf("session: invalid resize dimensions")
)

// EventTyped pairs a MessageType with its EventType gate. EventType 0
// bypasses subscription filtering (handshake, heartbeat, shutdown).
type EventTyped struct {
	Type  wire.MessageType
	Msg   wire.Message
	Gate  wire.EventType
}

// Client is one attached WebSocket connection's server-side state.
type Client struct {
	ID       string
	Readonly bool
	Out      chan EventTyped

	mu      sync.Mutex
	subs    map[wire.EventType]bool
	all     bool
	limiter *rate.Limiter
}

func newClient(id string, readonly bool, bytesPerSec, burst int) *Client {
	c := &Client{
		ID:       id,
		Readonly: readonly,
		Out:      make(chan EventTyped, broadcastCapacity),
		subs:     make(map[wire.EventType]bool),
		all:      true,
	}
	if bytesPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
	}
	return c
}

// Subscribe applies a Subscribe wire message to this client's filter set.
func (c *Client) Subscribe(msg *wire.Subscribe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.Replace {
		c.all = false
		c.subs = make(map[wire.EventType]bool, len(msg.Set))
		for _, v := range msg.Set {
			c.subs[wire.EventType(v)] = true
		}
		return
	}
	for _, v := range msg.Add {
		c.subs[wire.EventType(v)] = true
	}
	for _, v := range msg.Remove {
		delete(c.subs, wire.EventType(v))
	}
}

func (c *Client) wants(gate wire.EventType) bool {
	if gate == 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.all {
		return true
	}
	return c.subs[gate]
}

// allowInput checks and consumes n bytes against the per-client token
// bucket; returns false when the write would exceed it.
func (c *Client) allowInput(n int) bool {
	if c.limiter == nil {
		return true
	}
	return c.limiter.AllowN(time.Now(), n)
}

// Metrics tracks broadcast counters read by the reaper's health check and
// the /stats endpoint.
type Metrics struct {
	MessagesSent    int64
	DroppedMessages int64
	Errors          int64
	LastBroadcast   atomic.Int64 // unix nanos
}

// Session is one running terminal plus its attached clients.
type Session struct {
	ID      string
	Term    *parterm.Terminal
	Shell   *pty.Shell
	Logger  zerolog.Logger
	Metrics Metrics
	Theme   string
	Triggers *trigger.Registry

	createdAt time.Time

	mu               sync.RWMutex
	clients          map[string]*Client
	maxClients       int
	lastActivity     time.Time
	outBatch         outputBatcher

	ctx    context.Context
	cancel context.CancelFunc

	lastCursorRow, lastCursorCol int
	lastCursorStyle              parterm.CursorStyle
	lastCursorVisible            bool
	cursorStyleInitialized       bool
}

// New constructs a session around an already-running terminal and shell.
// maxClients is 0 for unlimited.
func New(id string, term *parterm.Terminal, shell *pty.Shell, logger zerolog.Logger, maxClients int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:           id,
		Term:         term,
		Shell:        shell,
		Logger:       logger,
		createdAt:    time.Now(),
		lastActivity: time.Now(),
		clients:      make(map[string]*Client),
		maxClients:   maxClients,
		ctx:          ctx,
		cancel:       cancel,
		lastCursorRow: -1,
		lastCursorCol: -1,
	}
	go s.pollLoop()
	go s.outputFlushLoop()
	return s
}

// AddClient registers a new client, enforcing max-clients-per-session.
func (s *Session) AddClient(id string, readonly bool, bytesPerSec, burst int) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxClients > 0 && len(s.clients) >= s.maxClients {
		return nil, ErrClientLimitReached
	}
	c := newClient(id, readonly, bytesPerSec, burst)
	s.clients[id] = c
	s.lastActivity = time.Now()
	return c, nil
}

// RemoveClient is idempotent: removing an already-absent id is a no-op.
func (s *Session) RemoveClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
	s.lastActivity = time.Now()
}

// ClientCount returns the number of currently attached clients.
func (s *Session) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// IdleSince returns how long the session has had zero clients, or zero if
// it currently has clients.
func (s *Session) IdleSince() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) > 0 {
		return 0
	}
	return time.Since(s.lastActivity)
}

// Broadcast fans a message out to every client whose subscription set
// includes gate (or gate == 0, which always delivers). Channel-full sends
// are dropped and counted rather than blocking the caller.
func (s *Session) Broadcast(typ wire.MessageType, msg wire.Message, gate wire.EventType) {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	ev := EventTyped{Type: typ, Msg: msg, Gate: gate}
	for _, c := range clients {
		if !c.wants(gate) {
			continue
		}
		select {
		case c.Out <- ev:
			atomic.AddInt64(&s.Metrics.MessagesSent, 1)
		default:
			atomic.AddInt64(&s.Metrics.DroppedMessages, 1)
		}
	}
	s.Metrics.LastBroadcast.Store(time.Now().UnixNano())
}

// Input validates a client's input against its rate bucket and writes
// accepted bytes to the PTY. When a write exceeds the bucket, the prefix the
// bucket still covers is forwarded and the rest is rejected with
// ErrRateLimited; the client stays connected.
func (s *Session) Input(c *Client, data []byte) error {
	if c.Readonly {
		return fmt.Errorf("session: readonly client cannot write input")
	}
	accepted, limitErr := data, error(nil)
	if !c.allowInput(len(data)) {
		atomic.AddInt64(&s.Metrics.Errors, 1)
		now := time.Now()
		n := min(int(c.limiter.TokensAt(now)), len(data))
		if n <= 0 || !c.limiter.AllowN(now, n) {
			return ErrRateLimited
		}
		accepted, limitErr = data[:n], ErrRateLimited
	}
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
	if _, err := s.Shell.Write(accepted); err != nil {
		atomic.AddInt64(&s.Metrics.Errors, 1)
		return err
	}
	return limitErr
}

// Resize validates and applies a new size to both the terminal and the PTY.
func (s *Session) Resize(cols, rows int) error {
	if cols < 2 || cols > 1000 || rows < 1 || rows > 500 {
		return ErrInvalidResize
	}
	s.Term.Resize(rows, cols)
	return s.Shell.Resize(cols, rows)
}

// pollLoop drains terminal events at ~20Hz and converts them to broadcasts.
func (s *Session) pollLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Term.AdvanceAnimations(time.Now())
			for _, ev := range s.Term.PollEvents() {
				s.dispatchEvent(ev)
			}
			s.pollCursor()
			s.Term.ClearExpiredHighlights()
		}
	}
}

// pollCursor broadcasts CursorPosition only when it changed since the last
// tick; the terminal has no discrete cursor-moved event since the cursor
// moves on nearly every write, too frequent to queue individually.
func (s *Session) pollCursor() {
	row, col := s.Term.CursorPos()
	style := s.Term.CursorStyle()
	visible := s.Term.CursorVisible()
	unchanged := s.cursorStyleInitialized &&
		row == s.lastCursorRow && col == s.lastCursorCol &&
		style == s.lastCursorStyle && visible == s.lastCursorVisible
	if unchanged {
		return
	}
	s.lastCursorRow, s.lastCursorCol = row, col
	s.lastCursorStyle, s.lastCursorVisible = style, visible
	s.cursorStyleInitialized = true
	s.Broadcast(wire.MsgCursorPosition, &wire.CursorPosition{
		Col:     int32(col),
		Row:     int32(row),
		Style:   uint32(style),
		Visible: visible,
	}, wire.EventCursorPosition)
}

func (s *Session) dispatchEvent(ev parterm.Event) {
	switch p := ev.Payload.(type) {
	case parterm.ResizeEvent:
		s.Broadcast(wire.MsgResize, &wire.Resize{Cols: uint32(p.Cols), Rows: uint32(p.Rows)}, wire.EventResize)
	case nil:
		if ev.Kind == parterm.EventBell {
			s.Broadcast(wire.MsgBell, &wire.Bell{}, wire.EventBell)
		}
	case parterm.TitleChangedEvent:
		s.Broadcast(wire.MsgTitleChanged, &wire.TitleChanged{Title: p.Title}, wire.EventTitle)
	case parterm.CwdChangedEvent:
		s.Broadcast(wire.MsgCwdChanged, &wire.CwdChanged{
			OldCwd: p.OldCwd, NewCwd: p.NewCwd, Hostname: p.Hostname, Username: p.Username,
		}, wire.EventCwd)
	case parterm.ModeChangedEvent:
		s.Broadcast(wire.MsgModeChanged, &wire.ModeChanged{Mode: p.Mode, Enabled: p.Enabled}, wire.EventMode)
	case parterm.GraphicsAddedEvent:
		s.Broadcast(wire.MsgGraphicsAdded, &wire.GraphicsAdded{Row: int32(p.Row), Protocol: p.Protocol}, wire.EventGraphics)
	case parterm.HyperlinkAddedEvent:
		s.Broadcast(wire.MsgHyperlinkAdded, &wire.HyperlinkAdded{URL: p.URL, Row: int32(p.Row), Col: int32(p.Col), ID: p.ID}, wire.EventHyperlink)
	case parterm.UserVarChangedEvent:
		s.Broadcast(wire.MsgUserVarChanged, &wire.UserVarChanged{Name: p.Name, OldValue: p.OldValue, NewValue: p.NewValue}, wire.EventUserVar)
	case parterm.ProgressBarChangedEvent:
		s.Broadcast(wire.MsgProgressBarChanged, &wire.ProgressBarChanged{Action: p.Action, State: p.State, Percent: int32(p.Percent)}, wire.EventProgressBar)
	case parterm.BadgeChangedEvent:
		s.Broadcast(wire.MsgBadgeChanged, &wire.BadgeChanged{Badge: p.Badge}, wire.EventBadge)
	case parterm.ShellIntegrationEventPayload:
		s.Broadcast(wire.MsgShellIntegrationEvent, &wire.ShellIntegrationEvent{
			EventType: p.EventType, ExitCode: int32(p.ExitCode), HasExit: p.HasExit, CursorLine: int32(p.CursorLine),
		}, wire.EventShell)
	case parterm.ClipboardSyncEvent:
		s.Broadcast(wire.MsgClipboardSync, &wire.ClipboardSync{Target: p.Target, Content: p.Content}, wire.EventClipboard)
	case parterm.AnimationFrameEvent:
		s.Broadcast(wire.MsgAnimationFrame, &wire.AnimationFrame{PlacementIDs: p.PlacementIDs}, wire.EventAnimation)
	}
}

// Shutdown broadcasts a Shutdown message to all clients, waits briefly for
// delivery, then stops the poll loop and the underlying shell.
func (s *Session) Shutdown(ctx context.Context, reason string) {
	s.Broadcast(wire.MsgShutdown, &wire.Shutdown{Reason: reason}, 0)
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
	}
	s.cancel()
	_ = s.Shell.Close()
}

// Healthy reports whether the broadcaster has produced activity within the
// last d, used by the reaper's silent-broadcaster warning.
func (s *Session) Healthy(d time.Duration) bool {
	last := s.Metrics.LastBroadcast.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) <= d
}
