package wire

import "fmt"

// Message is implemented by every concrete message type in this package.
type Message interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

// Envelope pairs a message with the MessageType tag needed to decode it.
// Encode writes Type as a varint header followed by the message's own
// encoding; Decode reads the header and dispatches to the matching zero
// value via New.
type Envelope struct {
	Type MessageType
	Msg  Message
}

// Encode serializes the envelope: a single-byte-or-more varint MessageType
// followed by the message body.
func Encode(typ MessageType, msg Message) ([]byte, error) {
	body, err := msg.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var w builder
	w.b = appendVarint(w.b, uint64(typ))
	return append(w.b, body...), nil
}

// Decode reads the MessageType header and unmarshals the remaining bytes
// into a freshly allocated message of the matching concrete type.
func Decode(b []byte) (MessageType, Message, error) {
	typ, n := consumeRawVarint(b)
	if n < 0 {
		return 0, nil, fmt.Errorf("wire: invalid envelope header")
	}
	mt := MessageType(typ)
	msg, err := New(mt)
	if err != nil {
		return 0, nil, err
	}
	if err := msg.UnmarshalBinary(b[n:]); err != nil {
		return 0, nil, fmt.Errorf("wire: decoding message type %d: %w", mt, err)
	}
	return mt, msg, nil
}

// New allocates the zero value for a MessageType, ready for UnmarshalBinary.
func New(typ MessageType) (Message, error) {
	switch typ {
	case MsgConnected:
		return &Connected{}, nil
	case MsgOutput:
		return &Output{}, nil
	case MsgBell:
		return &Bell{}, nil
	case MsgResize:
		return &Resize{}, nil
	case MsgTitleChanged:
		return &TitleChanged{}, nil
	case MsgCwdChanged:
		return &CwdChanged{}, nil
	case MsgModeChanged:
		return &ModeChanged{}, nil
	case MsgGraphicsAdded:
		return &GraphicsAdded{}, nil
	case MsgHyperlinkAdded:
		return &HyperlinkAdded{}, nil
	case MsgUserVarChanged:
		return &UserVarChanged{}, nil
	case MsgProgressBarChanged:
		return &ProgressBarChanged{}, nil
	case MsgBadgeChanged:
		return &BadgeChanged{}, nil
	case MsgShellIntegrationEvent:
		return &ShellIntegrationEvent{}, nil
	case MsgTriggerMatched:
		return &TriggerMatched{}, nil
	case MsgCursorPosition:
		return &CursorPosition{}, nil
	case MsgSelectionChanged:
		return &SelectionChanged{}, nil
	case MsgClipboardSync:
		return &ClipboardSync{}, nil
	case MsgActionNotify:
		return &ActionNotify{}, nil
	case MsgActionMarkLine:
		return &ActionMarkLine{}, nil
	case MsgSystemStats:
		return &SystemStats{}, nil
	case MsgPong:
		return &Pong{}, nil
	case MsgShutdown:
		return &Shutdown{}, nil
	case MsgInput:
		return &Input{}, nil
	case MsgClientResize:
		return &ClientResize{}, nil
	case MsgPaste:
		return &Paste{}, nil
	case MsgMouseInput:
		return &MouseInput{}, nil
	case MsgFocusChange:
		return &FocusChange{}, nil
	case MsgPing:
		return &Ping{}, nil
	case MsgSubscribe:
		return &Subscribe{}, nil
	case MsgSelectionRequest:
		return &SelectionRequest{}, nil
	case MsgClipboardRequest:
		return &ClipboardRequest{}, nil
	case MsgAnimationFrame:
		return &AnimationFrame{}, nil
	default:
		return nil, fmt.Errorf("wire: unknown message type %d", typ)
	}
}

// EventTypeOf maps a server->client MessageType to the EventType a client
// subscribes to in order to receive it. Returns 0 for messages that are
// always delivered (handshake, heartbeat, shutdown) or are client->server.
func EventTypeOf(typ MessageType) EventType {
	switch typ {
	case MsgOutput:
		return EventOutput
	case MsgBell:
		return EventBell
	case MsgResize:
		return EventResize
	case MsgTitleChanged:
		return EventTitle
	case MsgCwdChanged:
		return EventCwd
	case MsgModeChanged:
		return EventMode
	case MsgGraphicsAdded:
		return EventGraphics
	case MsgHyperlinkAdded:
		return EventHyperlink
	case MsgUserVarChanged:
		return EventUserVar
	case MsgProgressBarChanged:
		return EventProgressBar
	case MsgBadgeChanged:
		return EventBadge
	case MsgShellIntegrationEvent:
		return EventShell
	case MsgTriggerMatched:
		return EventTrigger
	case MsgCursorPosition:
		return EventCursorPosition
	case MsgSelectionChanged:
		return EventSelection
	case MsgClipboardSync:
		return EventClipboard
	case MsgActionNotify, MsgActionMarkLine:
		return EventAction
	case MsgSystemStats:
		return EventSystemStats
	case MsgAnimationFrame:
		return EventAnimation
	default:
		return 0
	}
}

// appendVarint and consumeRawVarint avoid pulling in the full builder type
// for the one-field envelope header.
func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func consumeRawVarint(b []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		v |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return v, i + 1
		}
		shift += 7
		if shift >= 64 {
			return 0, -1
		}
	}
	return 0, -1
}
