package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoundTripMessages(t *testing.T) {
	cases := []struct {
		name string
		typ  MessageType
		msg  Message
	}{
		{"Connected", MsgConnected, &Connected{Theme: "dark", Cols: 80, Rows: 24, ClientID: "c1", FaintTextAlpha: 0.5}},
		{"Output", MsgOutput, &Output{Data: []byte("hello\x1b[0m")}},
		{"Bell", MsgBell, &Bell{}},
		{"Resize", MsgResize, &Resize{Cols: 132, Rows: 43}},
		{"TitleChanged", MsgTitleChanged, &TitleChanged{Title: "zsh"}},
		{"CwdChanged", MsgCwdChanged, &CwdChanged{OldCwd: "/a", NewCwd: "/b", Hostname: "h", Username: "u", Timestamp: 123}},
		{"ModeChanged", MsgModeChanged, &ModeChanged{Mode: "bracketed-paste", Enabled: true}},
		{"GraphicsAdded", MsgGraphicsAdded, &GraphicsAdded{Row: 4, Protocol: "kitty"}},
		{"HyperlinkAdded", MsgHyperlinkAdded, &HyperlinkAdded{URL: "https://x", Row: 1, Col: 2, ID: "id1"}},
		{"UserVarChanged", MsgUserVarChanged, &UserVarChanged{Name: "foo", OldValue: "a", NewValue: "b"}},
		{"ProgressBarChanged", MsgProgressBarChanged, &ProgressBarChanged{Action: "set", State: "normal", Percent: 42}},
		{"BadgeChanged", MsgBadgeChanged, &BadgeChanged{Badge: "badge"}},
		{"ShellIntegrationEvent", MsgShellIntegrationEvent, &ShellIntegrationEvent{EventType: "command_finished", ExitCode: 1, HasExit: true, Timestamp: 99, CursorLine: 3}},
		{"TriggerMatched", MsgTriggerMatched, &TriggerMatched{TriggerID: "t1", Row: 2, Col: 3, EndCol: 9, Text: "error", Captures: []string{"a", "b"}, Timestamp: 5}},
		{"CursorPosition", MsgCursorPosition, &CursorPosition{Col: 10, Row: 5, Style: 3, Visible: true}},
		{"SelectionChanged", MsgSelectionChanged, &SelectionChanged{Mode: "block", StartRow: 1, StartCol: 2, EndRow: 3, EndCol: 4}},
		{"ClipboardSync", MsgClipboardSync, &ClipboardSync{Target: "clipboard", Content: "copied text"}},
		{"ActionNotify", MsgActionNotify, &ActionNotify{TriggerID: "t1", Message: "done"}},
		{"ActionMarkLine", MsgActionMarkLine, &ActionMarkLine{TriggerID: "t1", Row: 7, Label: "mark"}},
		{"SystemStats", MsgSystemStats, &SystemStats{Hostname: "h", CPUPercent: 12.5, MemUsed: 100, MemTotal: 200, LoadAvg1: 0.1}},
		{"Pong", MsgPong, &Pong{}},
		{"Shutdown", MsgShutdown, &Shutdown{Reason: "idle timeout"}},
		{"Input", MsgInput, &Input{Data: []byte("ls\n")}},
		{"ClientResize", MsgClientResize, &ClientResize{Cols: 80, Rows: 24}},
		{"Paste", MsgPaste, &Paste{Text: "pasted"}},
		{"MouseInput", MsgMouseInput, &MouseInput{Button: 1, Row: 2, Col: 3, Press: true, Shift: true}},
		{"FocusChange", MsgFocusChange, &FocusChange{Focused: true}},
		{"Ping", MsgPing, &Ping{Nonce: 42}},
		{"Subscribe", MsgSubscribe, &Subscribe{Replace: true, Set: []uint32{1, 2, 3}}},
		{"SelectionRequest", MsgSelectionRequest, &SelectionRequest{Mode: "line", StartRow: 1, EndRow: 2}},
		{"ClipboardRequest", MsgClipboardRequest, &ClipboardRequest{Target: "clipboard", Data: []byte("x")}},
		{"AnimationFrame", MsgAnimationFrame, &AnimationFrame{PlacementIDs: []uint32{1, 2, 3}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Encode(tc.typ, tc.msg)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			typ, decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if typ != tc.typ {
				t.Fatalf("got type %d, want %d", typ, tc.typ)
			}
			if got := mustMarshal(t, decoded); !bytes.Equal(got, mustMarshal(t, tc.msg)) {
				t.Fatalf("round trip mismatch: got %#v, want %#v", decoded, tc.msg)
			}
		})
	}
}

func mustMarshal(t *testing.T, m Message) []byte {
	t.Helper()
	b, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	return b
}

func TestFrameRoundTrip(t *testing.T) {
	small, err := EncodeFrame(MsgBell, &Bell{})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if small[0] != frameUncompressed {
		t.Fatalf("expected uncompressed header for small frame, got %#x", small[0])
	}

	big := &Output{Data: []byte(strings.Repeat("x", 1024))}
	frame, err := EncodeFrame(MsgOutput, big)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if frame[0] != frameZlib {
		t.Fatalf("expected zlib header for large frame, got %#x", frame[0])
	}

	typ, msg, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if typ != MsgOutput {
		t.Fatalf("got type %d, want MsgOutput", typ)
	}
	got := msg.(*Output)
	if string(got.Data) != string(big.Data) {
		t.Fatalf("decoded output mismatch")
	}
}

func TestEventTypeOf(t *testing.T) {
	if EventTypeOf(MsgOutput) != EventOutput {
		t.Fatalf("MsgOutput should map to EventOutput")
	}
	if EventTypeOf(MsgConnected) != 0 {
		t.Fatalf("MsgConnected should have no subscription gate")
	}
	if EventTypeOf(MsgActionMarkLine) != EventAction {
		t.Fatalf("MsgActionMarkLine should map to EventAction")
	}
}

func TestDecodeUnknownMessageType(t *testing.T) {
	envelope := appendVarint(nil, 9999)
	if _, _, err := Decode(envelope); err == nil {
		t.Fatalf("expected error decoding unknown message type")
	}
}

func TestUnframeRejectsUnknownHeader(t *testing.T) {
	if _, err := Unframe([]byte{0xff, 1, 2, 3}); err == nil {
		t.Fatalf("expected error for unknown frame header")
	}
}
