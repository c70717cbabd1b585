package parterm

import (
	"encoding/base64"
	"image/color"
	"strconv"
	"strings"

	"github.com/parterm-dev/parterm/vte"
)

// Operating System Command helpers: each function here parses the
// semicolon-split argument bytes already handed to OSCDispatch and calls
// into the existing handler.go entry points.

// oscSetPaletteColor handles OSC 4 ; index ; spec (repeated in pairs),
// used to set/query entries of the 256-color palette.
func (t *Terminal) oscSetPaletteColor(rest [][]byte) {
	for i := 0; i+1 < len(rest); i += 2 {
		idx, err := strconv.Atoi(string(rest[i]))
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		spec := string(rest[i+1])
		if spec == "?" {
			t.SetDynamicColor("4;"+strconv.Itoa(idx), idx, "\x07")
			continue
		}
		if c, ok := parseColorSpec(spec); ok {
			t.SetColor(idx, c)
		}
	}
}

// oscDynamicColor handles OSC 10/11/12 (foreground/background/cursor),
// either setting the color or, for a "?" query, reporting it back.
func (t *Terminal) oscDynamicColor(selector int, spec string) {
	idx := map[int]int{10: NamedColorForeground, 11: NamedColorBackground, 12: NamedColorCursor}[selector]
	if spec == "?" {
		t.SetDynamicColor(strconv.Itoa(selector), idx, "\x07")
		return
	}
	if c, ok := parseColorSpec(spec); ok {
		t.SetColor(idx, c)
	}
}

// oscResetColor handles OSC 104 [; index], resetting one or all palette
// entries to their startup default.
func (t *Terminal) oscResetColor(arg string) {
	if arg == "" {
		for i := 0; i < 256; i++ {
			t.ResetColor(i)
		}
		return
	}
	for _, s := range strings.Split(arg, ";") {
		if idx, err := strconv.Atoi(s); err == nil {
			t.ResetColor(idx)
		}
	}
}

// oscHyperlink handles OSC 8 ; params ; uri. params is a "key=value:..."
// list; only "id=" is recognized, matching the de-facto terminal convention.
func (t *Terminal) oscHyperlink(params, uri string) {
	if uri == "" {
		t.SetHyperlink(nil)
		return
	}
	id := ""
	for _, kv := range strings.Split(params, ":") {
		if strings.HasPrefix(kv, "id=") {
			id = strings.TrimPrefix(kv, "id=")
		}
	}
	t.SetHyperlink(&vte.Hyperlink{ID: id, URI: uri})
}

// oscClipboard handles OSC 52 ; clipboard ; base64-data. A "?" payload is a
// query and responds via ClipboardLoad; otherwise the decoded bytes are
// stored via ClipboardStore.
func (t *Terminal) oscClipboard(clipboard, data string) {
	c := byte('c')
	if len(clipboard) > 0 {
		c = clipboard[0]
	}
	if data == "?" {
		t.ClipboardLoad(c, "\x07")
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	t.ClipboardStore(c, decoded)
}

// oscShellIntegration handles OSC 133 ; A|B|C|D [; exit-code], the
// FinalTerm-derived shell-integration marker protocol.
func (t *Terminal) oscShellIntegration(kind string, rest [][]byte) {
	var mark vte.ShellIntegrationMark
	switch kind {
	case "A":
		mark = vte.PromptStart
	case "B":
		mark = vte.CommandStart
	case "C":
		mark = vte.CommandExecuted
	case "D":
		mark = vte.CommandFinished
	default:
		return
	}
	exitCode := -1
	if mark == vte.CommandFinished && len(rest) > 0 {
		if v, err := strconv.Atoi(string(rest[0])); err == nil {
			exitCode = v
		}
	}
	t.ShellIntegrationMark(mark, exitCode)
}

// oscNotify handles OSC 9 desktop notifications (and OSC 777's richer
// notify-send;title;body form), normalizing both into a NotificationPayload.
func (t *Terminal) oscNotify(message string) {
	t.notifySimple("", message)
}

// oscProgress handles OSC 9;4 ; state ; progress ConEmu/Kitty-style progress
// reporting, normalizing it into a NotificationPayload.
func (t *Terminal) oscProgress(state, progress string) {
	t.notifyProgress(state, progress)
}

// oscITerm2 handles OSC 1337 key=value[;key=value...] (badge, user vars,
// remote host, and base64 inline images).
func (t *Terminal) oscITerm2(payload string) {
	t.handleITerm2(payload)
}

// parseColorSpec parses the X11-style "rgb:RR/GG/BB" or "#RRGGBB" color
// specification used by OSC 4/10/11/12 set/response payloads.
func parseColorSpec(spec string) (color.Color, bool) {
	spec = strings.TrimPrefix(spec, "rgb:")
	spec = strings.TrimPrefix(spec, "#")
	parts := strings.Split(spec, "/")
	if len(parts) == 3 {
		r, err1 := strconv.ParseUint(clampHex(parts[0]), 16, 8)
		g, err2 := strconv.ParseUint(clampHex(parts[1]), 16, 8)
		b, err3 := strconv.ParseUint(clampHex(parts[2]), 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
		}
		return nil, false
	}
	if len(spec) == 6 {
		r, err1 := strconv.ParseUint(spec[0:2], 16, 8)
		g, err2 := strconv.ParseUint(spec[2:4], 16, 8)
		b, err3 := strconv.ParseUint(spec[4:6], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
		}
	}
	return nil, false
}

// clampHex truncates an X11 color component (which may carry 1, 2, 3, or 4
// hex digits of precision) down to its top 8 bits.
func clampHex(s string) string {
	if len(s) > 2 {
		return s[:2]
	}
	return s
}
