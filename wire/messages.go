package wire

import "google.golang.org/protobuf/encoding/protowire"

// --- Server -> client messages ---

// Connected is the handshake sent immediately after a client registers.
type Connected struct {
	Theme           string
	Cols            uint32
	Rows            uint32
	ClientID        string
	Readonly        bool
	Badge           string
	Cwd             string
	FaintTextAlpha  float64
	ModifyOtherKeys uint32
	ServerVersion   string
}

func (m *Connected) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Theme)
	w.varint(2, uint64(m.Cols))
	w.varint(3, uint64(m.Rows))
	w.str(4, m.ClientID)
	w.boolean(5, m.Readonly)
	w.str(6, m.Badge)
	w.str(7, m.Cwd)
	w.float(8, m.FaintTextAlpha)
	w.varint(9, uint64(m.ModifyOtherKeys))
	w.str(10, m.ServerVersion)
	return w.b, nil
}

func (m *Connected) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Theme = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Cols = uint32(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.Rows = uint32(v)
			return n, err
		case 4:
			v, n, err := consumeString(typ, b)
			m.ClientID = v
			return n, err
		case 5:
			v, n, err := consumeVarint(typ, b)
			m.Readonly = v != 0
			return n, err
		case 6:
			v, n, err := consumeString(typ, b)
			m.Badge = v
			return n, err
		case 7:
			v, n, err := consumeString(typ, b)
			m.Cwd = v
			return n, err
		case 8:
			v, n, err := consumeFloat(typ, b)
			m.FaintTextAlpha = v
			return n, err
		case 9:
			v, n, err := consumeVarint(typ, b)
			m.ModifyOtherKeys = uint32(v)
			return n, err
		case 10:
			v, n, err := consumeString(typ, b)
			m.ServerVersion = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// Output carries raw PTY output bytes for the client's own terminal engine.
type Output struct {
	Data []byte
}

func (m *Output) MarshalBinary() ([]byte, error) {
	var w builder
	w.bytes(1, m.Data)
	return w.b, nil
}

func (m *Output) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeBytes(typ, b)
			m.Data = v
			return n, err
		}
		return skip(typ, b)
	})
}

// Bell signals a terminal bell.
type Bell struct{}

func (m *Bell) MarshalBinary() ([]byte, error) { return nil, nil }
func (m *Bell) UnmarshalBinary(b []byte) error { return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) { return skip(typ, b) }) }

// Resize reports the session's new dimensions.
type Resize struct {
	Cols uint32
	Rows uint32
}

func (m *Resize) MarshalBinary() ([]byte, error) {
	var w builder
	w.varint(1, uint64(m.Cols))
	w.varint(2, uint64(m.Rows))
	return w.b, nil
}

func (m *Resize) UnmarshalBinary(b []byte) error {
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

// TitleChanged reports a new window title.
type TitleChanged struct {
	Title string
}

func (m *TitleChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Title)
	return w.b, nil
}

func (m *TitleChanged) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeString(typ, b)
			m.Title = v
			return n, err
		}
		return skip(typ, b)
	})
}

// CwdChanged reports a working-directory change (OSC 7).
type CwdChanged struct {
	OldCwd    string
	NewCwd    string
	Hostname  string
	Username  string
	Timestamp int64
}

func (m *CwdChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.OldCwd)
	w.str(2, m.NewCwd)
	w.str(3, m.Hostname)
	w.str(4, m.Username)
	w.signed(5, m.Timestamp)
	return w.b, nil
}

func (m *CwdChanged) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.OldCwd = v
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.NewCwd = v
			return n, err
		case 3:
			v, n, err := consumeString(typ, b)
			m.Hostname = v
			return n, err
		case 4:
			v, n, err := consumeString(typ, b)
			m.Username = v
			return n, err
		case 5:
			v, n, err := consumeVarint(typ, b)
			m.Timestamp = int64(v)
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// ModeChanged reports a terminal mode toggle.
type ModeChanged struct {
	Mode    string
	Enabled bool
}

func (m *ModeChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Mode)
	w.boolean(2, m.Enabled)
	return w.b, nil
}

func (m *ModeChanged) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Mode = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Enabled = v != 0
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// GraphicsAdded reports a new graphics placement.
type GraphicsAdded struct {
	Row      int32
	Protocol string
}

func (m *GraphicsAdded) MarshalBinary() ([]byte, error) {
	var w builder
	w.signed(1, int64(m.Row))
	w.str(2, m.Protocol)
	return w.b, nil
}

func (m *GraphicsAdded) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Row = int32(v)
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.Protocol = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// HyperlinkAdded reports a new hyperlink span.
type HyperlinkAdded struct {
	URL string
	Row int32
	Col int32
	ID  string
}

func (m *HyperlinkAdded) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.URL)
	w.signed(2, int64(m.Row))
	w.signed(3, int64(m.Col))
	w.str(4, m.ID)
	return w.b, nil
}

func (m *HyperlinkAdded) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.URL = v
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
			v, n, err := consumeString(typ, b)
			m.ID = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// UserVarChanged reports an iTerm2 user-variable change.
type UserVarChanged struct {
	Name     string
	OldValue string
	NewValue string
}

func (m *UserVarChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Name)
	w.str(2, m.OldValue)
	w.str(3, m.NewValue)
	return w.b, nil
}

func (m *UserVarChanged) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Name = v
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.OldValue = v
			return n, err
		case 3:
			v, n, err := consumeString(typ, b)
			m.NewValue = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// ProgressBarChanged reports an OSC 9;4/934 progress-bar update.
type ProgressBarChanged struct {
	Action  string // "set", "remove", "remove_all"
	ID      string
	State   string
	Percent int32
	Label   string
}

func (m *ProgressBarChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Action)
	w.str(2, m.ID)
	w.str(3, m.State)
	w.signed(4, int64(m.Percent))
	w.str(5, m.Label)
	return w.b, nil
}

func (m *ProgressBarChanged) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Action = v
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.ID = v
			return n, err
		case 3:
			v, n, err := consumeString(typ, b)
			m.State = v
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.Percent = int32(v)
			return n, err
		case 5:
			v, n, err := consumeString(typ, b)
			m.Label = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// BadgeChanged reports an iTerm2 dock-badge change.
type BadgeChanged struct {
	Badge string
}

func (m *BadgeChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Badge)
	return w.b, nil
}

func (m *BadgeChanged) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeString(typ, b)
			m.Badge = v
			return n, err
		}
		return skip(typ, b)
	})
}

// ShellIntegrationEvent reports an OSC 133 FinalTerm marker.
type ShellIntegrationEvent struct {
	EventType  string // "prompt_start", "command_start", "command_executed", "command_finished"
	Command    string
	ExitCode   int32
	HasExit    bool
	Timestamp  int64
	CursorLine int32
}

func (m *ShellIntegrationEvent) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.EventType)
	w.str(2, m.Command)
	w.signed(3, int64(m.ExitCode))
	w.boolean(4, m.HasExit)
	w.signed(5, m.Timestamp)
	w.signed(6, int64(m.CursorLine))
	return w.b, nil
}

func (m *ShellIntegrationEvent) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.EventType = v
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.Command = v
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.ExitCode = int32(v)
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.HasExit = v != 0
			return n, err
		case 5:
			v, n, err := consumeVarint(typ, b)
			m.Timestamp = int64(v)
			return n, err
		case 6:
			v, n, err := consumeVarint(typ, b)
			m.CursorLine = int32(v)
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// TriggerMatched reports a trigger regex match.
type TriggerMatched struct {
	TriggerID string
	Row       int32
	Col       int32
	EndCol    int32
	Text      string
	Captures  []string
	Timestamp int64
}

func (m *TriggerMatched) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.TriggerID)
	w.signed(2, int64(m.Row))
	w.signed(3, int64(m.Col))
	w.signed(4, int64(m.EndCol))
	w.str(5, m.Text)
	w.strs(6, m.Captures)
	w.signed(7, m.Timestamp)
	return w.b, nil
}

func (m *TriggerMatched) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.TriggerID = v
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
			m.EndCol = int32(v)
			return n, err
		case 5:
			v, n, err := consumeString(typ, b)
			m.Text = v
			return n, err
		case 6:
			v, n, err := consumeString(typ, b)
			m.Captures = append(m.Captures, v)
			return n, err
		case 7:
			v, n, err := consumeVarint(typ, b)
			m.Timestamp = int64(v)
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// CursorPosition reports the cursor's current (col, row), rendering style,
// and visibility (DECTCEM / DECSCUSR state).
type CursorPosition struct {
	Col     int32
	Row     int32
	Style   uint32
	Visible bool
}

func (m *CursorPosition) MarshalBinary() ([]byte, error) {
	var w builder
	w.signed(1, int64(m.Col))
	w.signed(2, int64(m.Row))
	w.varint(3, uint64(m.Style))
	w.boolean(4, m.Visible)
	return w.b, nil
}

func (m *CursorPosition) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Col = int32(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Row = int32(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.Style = uint32(v)
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.Visible = v != 0
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// SelectionChanged reports a selection span.
type SelectionChanged struct {
	Mode      string // "character", "line", "block", "word"
	StartRow  int32
	StartCol  int32
	EndRow    int32
	EndCol    int32
}

func (m *SelectionChanged) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Mode)
	w.signed(2, int64(m.StartRow))
	w.signed(3, int64(m.StartCol))
	w.signed(4, int64(m.EndRow))
	w.signed(5, int64(m.EndCol))
	return w.b, nil
}

func (m *SelectionChanged) UnmarshalBinary(b []byte) error {
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

// ClipboardSync reports a clipboard write (OSC 52).
type ClipboardSync struct {
	Target  string // "clipboard", "primary", "select"
	Content string
}

func (m *ClipboardSync) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Target)
	w.str(2, m.Content)
	return w.b, nil
}

func (m *ClipboardSync) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Target = v
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.Content = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// ActionNotify reports a trigger's Notify action result.
type ActionNotify struct {
	TriggerID string
	Message   string
}

func (m *ActionNotify) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.TriggerID)
	w.str(2, m.Message)
	return w.b, nil
}

func (m *ActionNotify) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.TriggerID = v
			return n, err
		case 2:
			v, n, err := consumeString(typ, b)
			m.Message = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// ActionMarkLine reports a trigger's MarkLine action result.
type ActionMarkLine struct {
	TriggerID string
	Row       int32
	Label     string
}

func (m *ActionMarkLine) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.TriggerID)
	w.signed(2, int64(m.Row))
	w.str(3, m.Label)
	return w.b, nil
}

func (m *ActionMarkLine) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.TriggerID = v
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.Row = int32(v)
			return n, err
		case 3:
			v, n, err := consumeString(typ, b)
			m.Label = v
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// SystemStats reports a host resource sample.
type SystemStats struct {
	Hostname     string
	CPUPercent   float64
	MemUsed      uint64
	MemTotal     uint64
	DiskUsed     uint64
	DiskTotal    uint64
	NetRxBytes   uint64
	NetTxBytes   uint64
	LoadAvg1     float64
	LoadAvg5     float64
	LoadAvg15    float64
	SampledAt    int64
}

func (m *SystemStats) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Hostname)
	w.float(2, m.CPUPercent)
	w.varint(3, m.MemUsed)
	w.varint(4, m.MemTotal)
	w.varint(5, m.DiskUsed)
	w.varint(6, m.DiskTotal)
	w.varint(7, m.NetRxBytes)
	w.varint(8, m.NetTxBytes)
	w.float(9, m.LoadAvg1)
	w.float(10, m.LoadAvg5)
	w.float(11, m.LoadAvg15)
	w.signed(12, m.SampledAt)
	return w.b, nil
}

func (m *SystemStats) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(typ, b)
			m.Hostname = v
			return n, err
		case 2:
			v, n, err := consumeFloat(typ, b)
			m.CPUPercent = v
			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.MemUsed = v
			return n, err
		case 4:
			v, n, err := consumeVarint(typ, b)
			m.MemTotal = v
			return n, err
		case 5:
			v, n, err := consumeVarint(typ, b)
			m.DiskUsed = v
			return n, err
		case 6:
			v, n, err := consumeVarint(typ, b)
			m.DiskTotal = v
			return n, err
		case 7:
			v, n, err := consumeVarint(typ, b)
			m.NetRxBytes = v
			return n, err
		case 8:
			v, n, err := consumeVarint(typ, b)
			m.NetTxBytes = v
			return n, err
		case 9:
			v, n, err := consumeFloat(typ, b)
			m.LoadAvg1 = v
			return n, err
		case 10:
			v, n, err := consumeFloat(typ, b)
			m.LoadAvg5 = v
			return n, err
		case 11:
			v, n, err := consumeFloat(typ, b)
			m.LoadAvg15 = v
			return n, err
		case 12:
			v, n, err := consumeVarint(typ, b)
			m.SampledAt = int64(v)
			return n, err
		default:
			return skip(typ, b)
		}
	})
}

// Pong replies to a client Ping heartbeat.
type Pong struct{}

func (m *Pong) MarshalBinary() ([]byte, error) { return nil, nil }
func (m *Pong) UnmarshalBinary(b []byte) error { return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) { return skip(typ, b) }) }

// Shutdown announces the session is closing.
type Shutdown struct {
	Reason string
}

func (m *Shutdown) MarshalBinary() ([]byte, error) {
	var w builder
	w.str(1, m.Reason)
	return w.b, nil
}

func (m *Shutdown) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeString(typ, b)
			m.Reason = v
			return n, err
		}
		return skip(typ, b)
	})
}

// AnimationFrame reports that a Kitty animation advanced, so the listed
// placements now display a different stored image.
type AnimationFrame struct {
	PlacementIDs []uint32
}

func (m *AnimationFrame) MarshalBinary() ([]byte, error) {
	var w builder
	for _, id := range m.PlacementIDs {
		w.varint(1, uint64(id))
	}
	return w.b, nil
}

func (m *AnimationFrame) UnmarshalBinary(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeVarint(typ, b)
			m.PlacementIDs = append(m.PlacementIDs, uint32(v))
			return n, err
		}
		return skip(typ, b)
	})
}
