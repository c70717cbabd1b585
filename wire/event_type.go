// Package wire implements the binary message protocol exchanged between a
// session and its connected clients: framing (optional zlib compression),
// the server->client and client->server message catalog, and the stable
// EventType enumeration used for subscription filtering.
package wire

// EventType tags a server->client message for per-client subscription
// filtering. Values are stable across protocol versions.
type EventType uint32

const (
	EventOutput         EventType = 1
	EventBell           EventType = 2
	EventResize         EventType = 3
	EventTitle          EventType = 4
	EventCwd            EventType = 5
	EventMode           EventType = 6
	EventGraphics       EventType = 7
	EventHyperlink      EventType = 8
	EventUserVar        EventType = 9
	EventProgressBar    EventType = 10
	EventBadge          EventType = 11
	EventShell          EventType = 12
	EventTrigger        EventType = 13
	EventSelection      EventType = 14
	EventClipboard      EventType = 15
	EventCursorPosition EventType = 16
	EventAction         EventType = 17
	EventSystemStats    EventType = 18
	EventAnimation      EventType = 19
)

// MessageType discriminates the concrete message carried by an Envelope.
// Server and client messages share one numbering space since a frame is
// always decoded with knowledge of which direction it travels.
type MessageType uint32

const (
	MsgConnected MessageType = iota + 1
	MsgOutput
	MsgBell
	MsgResize
	MsgTitleChanged
	MsgCwdChanged
	MsgModeChanged
	MsgGraphicsAdded
	MsgHyperlinkAdded
	MsgUserVarChanged
	MsgProgressBarChanged
	MsgBadgeChanged
	MsgShellIntegrationEvent
	MsgTriggerMatched
	MsgCursorPosition
	MsgSelectionChanged
	MsgClipboardSync
	MsgActionNotify
	MsgActionMarkLine
	MsgSystemStats
	MsgAnimationFrame
	MsgPong
	MsgShutdown

	MsgInput
	MsgClientResize
	MsgPaste
	MsgMouseInput
	MsgFocusChange
	MsgPing
	MsgSubscribe
	MsgSelectionRequest
	MsgClipboardRequest
)
