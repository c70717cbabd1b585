package wire

import "google.golang.org/protobuf/encoding/protowire"

// --- Client -> server messages ---

// Input carries raw keystroke bytes to be written to the PTY.
type Input struct {
	Data []byte
}

func (m *Input) MarshalBinary() ([]byte, error) {
	var w builder
	w.bytes(1, m.Data)
	return w.b, nil
}

func (m *Input) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeBytes(typ, b)
			m.Data = v
			return n, err
		}
		return skip(typ, b)
	})
}

// ClientResize requests a new session size. The session applies a valid
// request from any attached client; there is no owner check.
type ClientResize struct {
	Cols uint32
	Rows uint32
}

func (m *ClientResize) MarshalBinary() ([]byte, error) {
	var w builder
	w.varint(1, uint64(m.Cols))
	w.varint(2, uint64(m.Rows))
	return w.b, nil
}

func (m *ClientResize) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Cols = uint32(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Rows = uint32(v)
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// Paste carries bracketed-paste content to be written to the PTY, optionally
// wrapped in the bracketed-paste escape sequence by the session.
type Paste struct {
	Text string
}

func (m *Paste) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Text)
	return w.b, nil
}

func (m *Paste) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeString(typ, b)
			m.Text = v
			return n, err
		}
		return skip(typ, b)
	})
}

// MouseInput carries a client-side mouse event. The transport discards it;
// nothing is encoded or written to the PTY.
type MouseInput struct {
	Button int32
	Row    int32
	Col    int32
	Press  bool
	Motion bool
	Shift  bool
	Meta   bool
	Ctrl   bool
}

func (m *MouseInput) MarshalBinary() ([]byte, error) {
	var w builder
	w.signed(1, int64(m.Button))
	w.signed(2, int64(m.Row))
	w.signed(3, int64(m.Col))
	w.boolean(4, m.Press)
	w.boolean(5, m.Motion)
	w.boolean(6, m.Shift)
	w.boolean(7, m.Meta)
	w.boolean(8, m.Ctrl)
	return w.b, nil
}

func (m *MouseInput) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Button = int32(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Row = int32(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.Col = int32(v)
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.Press = v != 0
			return n, err
		case 5:
			v, n, err := consumeVarint(typ, b)
			m.Motion = v != 0
			return n, err
		case 6:
			v, n, err := consumeVarint(typ, b)
			m.Shift = v != 0
			return n, err
		case 7:
			v, n, err := consumeVarint(typ, b)
			m.Meta = v != 0
			return n, err
		case 8:
			v, n, err := consumeVarint(typ, b)
			m.Ctrl = v != 0
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// FocusChange forwards a browser focus/blur event for DECSET 1004 focus
// reporting.
type FocusChange struct {
	Focused bool
}

func (m *FocusChange) MarshalBinary() ([]byte, error) {
	var w builder
	w.boolean(1, m.Focused)
	return w.b, nil
}

func (m *FocusChange) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeVarint(typ, b)
			m.Focused = v != 0
			return n, err
		}
		return skip(typ, b)
	})
}

// Ping is a client heartbeat; the server replies with Pong.
type Ping struct {
	Nonce uint64
}

func (m *Ping) MarshalBinary() ([]byte, error) {
	var w builder
	w.varint(1, m.Nonce)
	return w.b, nil
}

func (m *Ping) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeVarint(typ, b)
			m.Nonce = v
			return n, err
		}
		return skip(typ, b)
	})
}

// Subscribe changes which EventTypes this client receives. Replace, when
// true, sets the subscription set; otherwise Add/Remove adjust it.
type Subscribe struct {
	Replace bool
	Set     []uint32
	Add     []uint32
	Remove  []uint32
}

func (m *Subscribe) MarshalBinary() ([]byte, error) {
	var w builder
	w.boolean(1, m.Replace)
	for _, v := range m.Set {
		w.varint(2, uint64(v))
	}
	for _, v := range m.Add {
		w.varint(3, uint64(v))
	}
	for _, v := range m.Remove {
		w.varint(4, uint64(v))
	}
	return w.b, nil
}

func (m *Subscribe) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Replace = v != 0
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Set = append(m.Set, uint32(v))
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.Add = append(m.Add, uint32(v))
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.Remove = append(m.Remove, uint32(v))
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// SelectionRequest asks the session to extract and return a text region.
type SelectionRequest struct {
	Mode     string
	StartRow int32
	StartCol int32
	EndRow   int32
	EndCol   int32
}

func (m *SelectionRequest) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Mode)
	w.signed(2, int64(m.StartRow))
	w.signed(3, int64(m.StartCol))
	w.signed(4, int64(m.EndRow))
	w.signed(5, int64(m.EndCol))
	return w.b, nil
}

func (m *SelectionRequest) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Mode = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.StartRow = int32(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.StartCol = int32(v)
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.EndRow = int32(v)
			return n, err
		case 5:
			v, n, err := consumeVarint(typ, b)
			m.EndCol = int32(v)
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// ClipboardRequest asks the session to write base64 data into an OSC 52
// clipboard target, or query one. Mirrors the terminal-facing clipboard
// provider so a client can drive the clipboard without going through the PTY.
type ClipboardRequest struct {
	Target string
	Query  bool
	Data   []byte
}

func (m *ClipboardRequest) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Target)
	w.boolean(2, m.Query)
	w.bytes(3, m.Data)
	return w.b, nil
}

func (m *ClipboardRequest) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Target = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Query = v != 0
			return n, err
		case 3:
			v, n, err := consumeBytes(typ, b)
			m.Data = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}
