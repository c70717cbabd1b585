package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	parterm "github.com/parterm-dev/parterm"
	"github.com/parterm-dev/parterm/session"
	"github.com/parterm-dev/parterm/wire"
)

// pingPeriod/pongWait implement the server-Pong/client-Ping heartbeat that
// lets a stale-client detector close dead TCP connections.
const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type clientConn struct {
	sess      *session.Session
	conn      *websocket.Conn
	logger    zerolog.Logger
	readonly  bool
	rateLimit int

	client *session.Client
}

func newClientConn(sess *session.Session, conn *websocket.Conn, readonly bool, rateLimit int, logger zerolog.Logger) *clientConn {
	return &clientConn{
		sess:      sess,
		conn:      conn,
		readonly:  readonly,
		rateLimit: rateLimit,
		logger:    logger.With().Str("session_id", sess.ID).Logger(),
	}
}

func (c *clientConn) run() {
	defer c.conn.Close()

	id := uuid.NewString()
	client, err := c.sess.AddClient(id, c.readonly, c.rateLimit, c.rateLimit*2)
	if err != nil {
		c.writeError(err)
		return
	}
	c.client = client
	c.logger = c.logger.With().Str("client_id", id).Logger()
	defer c.sess.RemoveClient(id)

	if err := c.sendHandshake(); err != nil {
		return
	}

	done := make(chan struct{})
	go c.writePump(done)
	c.readPump()
	close(done)
}

func (c *clientConn) sendHandshake() error {
	rows, cols := c.sess.Term.Rows(), c.sess.Term.Cols()
	connected := &wire.Connected{
		Theme:    c.sess.Theme,
		Cols:     uint32(cols),
		Rows:     uint32(rows),
		ClientID: c.client.ID,
		Readonly: c.client.Readonly,
		Cwd:      c.sess.Term.WorkingDirectoryPath(),
	}
	if err := c.send(wire.MsgConnected, connected); err != nil {
		return err
	}

	for _, m := range c.sess.Term.NonDefaultModes() {
		_ = c.send(wire.MsgModeChanged, &wire.ModeChanged{Mode: m.Mode, Enabled: m.Enabled})
	}
	return nil
}

func (c *clientConn) send(typ wire.MessageType, msg wire.Message) error {
	frame, err := wire.EncodeFrame(typ, msg)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// clipboardByte maps a wire clipboard target name onto the OSC 52 clipboard
// selector byte ClipboardProvider expects ('c' clipboard, 'p' primary).
func clipboardByte(target string) byte {
	if target == "primary" || target == "select" {
		return 'p'
	}
	return 'c'
}

func (c *clientConn) writeError(err error) {
	frame, encErr := wire.EncodeFrame(wire.MsgShutdown, &wire.Shutdown{Reason: err.Error()})
	if encErr == nil {
		_ = c.conn.WriteMessage(websocket.BinaryMessage, frame)
	}
}

// writePump drains the client's outgoing channel (filled by session
// broadcasts) and relays it over the socket, plus the heartbeat ping.
func (c *clientConn) writePump(done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-c.client.Out:
			if !ok {
				return
			}
			frame, err := wire.EncodeFrame(ev.Type, ev.Msg)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.send(wire.MsgPong, &wire.Pong{}); err != nil {
				return
			}
		}
	}
}

// readPump decodes incoming client frames and dispatches them to the
// session. Transport-level decode errors disconnect the client; everything
// else (rate limiting, validation) is logged and the connection stays open.
func (c *clientConn) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		typ, msg, err := wire.DecodeFrame(data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("wire decode error, disconnecting client")
			return
		}
		c.dispatch(typ, msg)
	}
}

func (c *clientConn) dispatch(typ wire.MessageType, msg wire.Message) {
	switch typ {
	case wire.MsgInput:
		in := msg.(*wire.Input)
		if err := c.sess.Input(c.client, in.Data); err != nil {
			c.logger.Debug().Err(err).Msg("input rejected")
		}
	case wire.MsgPaste:
		p := msg.(*wire.Paste)
		text := p.Text
		if c.sess.Term.HasMode(parterm.ModeBracketedPaste) {
			text = "\x1b[200~" + text + "\x1b[201~"
		}
		if err := c.sess.Input(c.client, []byte(text)); err != nil {
			c.logger.Debug().Err(err).Msg("paste rejected")
		}
	case wire.MsgClientResize:
		r := msg.(*wire.ClientResize)
		if err := c.sess.Resize(int(r.Cols), int(r.Rows)); err != nil {
			c.logger.Debug().Err(err).Msg("resize rejected")
		}
	case wire.MsgPing:
		_ = c.send(wire.MsgPong, &wire.Pong{})
	case wire.MsgSubscribe:
		c.client.Subscribe(msg.(*wire.Subscribe))
	case wire.MsgFocusChange:
		if c.sess.Term.HasMode(parterm.ModeReportFocusInOut) {
			fc := msg.(*wire.FocusChange)
			seq := "\x1b[O"
			if fc.Focused {
				seq = "\x1b[I"
			}
			_, _ = c.sess.Shell.Write([]byte(seq))
		}
	case wire.MsgMouseInput:
		// MouseInput is not translated into PTY input; every such message
		// is discarded.
	case wire.MsgSelectionRequest:
		sr := msg.(*wire.SelectionRequest)
		start := parterm.Position{Row: int(sr.StartRow), Col: int(sr.StartCol)}
		end := parterm.Position{Row: int(sr.EndRow), Col: int(sr.EndCol)}
		c.sess.Term.SetSelection(start, end)
		text := c.sess.Term.GetSelectedText()
		c.sess.Broadcast(wire.MsgSelectionChanged, &wire.SelectionChanged{
			Mode: sr.Mode, StartRow: sr.StartRow, StartCol: sr.StartCol, EndRow: sr.EndRow, EndCol: sr.EndCol,
		}, wire.EventSelection)
		c.sess.Broadcast(wire.MsgClipboardSync, &wire.ClipboardSync{Target: "primary", Content: text}, wire.EventClipboard)
	case wire.MsgClipboardRequest:
		cr := msg.(*wire.ClipboardRequest)
		provider := c.sess.Term.ClipboardProvider()
		if provider == nil {
			break
		}
		target := clipboardByte(cr.Target)
		if cr.Query {
			content := provider.Read(target)
			c.sess.Broadcast(wire.MsgClipboardSync, &wire.ClipboardSync{Target: cr.Target, Content: content}, wire.EventClipboard)
			break
		}
		provider.Write(target, cr.Data)
		c.sess.Broadcast(wire.MsgClipboardSync, &wire.ClipboardSync{Target: cr.Target, Content: string(cr.Data)}, wire.EventClipboard)
	default:
		c.logger.Debug().Uint32("type", uint32(typ)).Msg("unhandled client message")
	}
}
