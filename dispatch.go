package parterm

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/parterm-dev/parterm/vte"
)

// This file implements vte.Dispatcher on *Terminal: it is the sequence
// handler layer, translating parsed CSI/OSC/ESC/DCS/APC/PM/SOS callbacks
// from the vte state machine into calls against the semantic methods in
// handler.go. No cell/cursor mutation happens here directly; everything
// goes through the same handler entry points middleware can intercept.

// Print is called once per grapheme cluster. Multi-rune clusters (combining
// marks, ZWJ sequences, flags) are fed rune-by-rune through Input, which
// already treats zero-width runes as combiners.
func (t *Terminal) Print(grapheme string) {
	for _, r := range grapheme {
		t.Input(r)
	}
}

// Execute handles a single C0/C1 control byte.
func (t *Terminal) Execute(b byte) {
	switch b {
	case 0x07: // BEL
		t.Bell()
	case 0x08: // BS
		t.Backspace()
	case 0x09: // HT
		t.Tab(1)
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		t.LineFeed()
	case 0x0d: // CR
		t.CarriageReturn()
	case 0x84: // IND (8-bit)
		t.LineFeed()
	case 0x85: // NEL (8-bit)
		t.CarriageReturn()
		t.LineFeed()
	case 0x88: // HTS (8-bit)
		t.HorizontalTabSet()
	case 0x8d: // RI (8-bit)
		t.ReverseIndex()
	}
}

// CSIDispatch routes a complete CSI sequence to the matching handler. ignore
// is not consulted; unknown finals are simply dropped.
func (t *Terminal) CSIDispatch(params *vte.Params, intermediates []byte, ignore bool, final byte) {
	priv := hasByte(intermediates, '?')
	gt := hasByte(intermediates, '>')
	eq := hasByte(intermediates, '=')

	n := func(i int) int { return int(params.ParamOr(i, 1)) }
	n0 := func(i int) int { return int(params.Param(i)) }

	switch {
	case gt && final == 'u':
		t.PushKeyboardMode(vte.KeyboardMode(n0(0)))
		return
	case eq && final == 'u':
		t.SetKeyboardMode(vte.KeyboardMode(n0(0)), keyboardBehaviorFor(intermediates))
		return
	case final == 'u' && hasByte(intermediates, '<'):
		t.PopKeyboardMode(n(0))
		return
	case final == 'u' && !priv && !gt && !eq:
		t.ReportKeyboardMode()
		return
	case gt && final == 'c':
		t.IdentifyTerminal('>')
		return
	case final == 'c':
		t.IdentifyTerminal(0)
		return
	}

	switch final {
	case 'A':
		t.MoveUp(n(0))
	case 'B':
		t.MoveDown(n(0))
	case 'C':
		t.MoveForward(n(0))
	case 'D':
		t.MoveBackward(n(0))
	case 'E':
		t.MoveDownCr(n(0))
	case 'F':
		t.MoveUpCr(n(0))
	case 'G', '`':
		t.GotoCol(n(0) - 1)
	case 'd':
		t.GotoLine(n(0) - 1)
	case 'H', 'f':
		t.Goto(n(0)-1, n(1)-1)
	case 'I':
		t.MoveForwardTabs(n(0))
	case 'Z':
		t.MoveBackwardTabs(n(0))
	case 'J':
		t.ClearScreen(vte.ClearMode(n0(0)))
	case 'K':
		t.ClearLine(vte.LineClearMode(n0(0)))
	case 'L':
		t.InsertBlankLines(n(0))
	case 'M':
		t.DeleteLines(n(0))
	case 'P':
		t.DeleteChars(n(0))
	case 'X':
		t.EraseChars(n(0))
	case '@':
		t.InsertBlank(n(0))
	case 'S':
		t.ScrollUp(n(0))
	case 'T':
		t.ScrollDown(n(0))
	case 'g':
		t.ClearTabs(vte.TabulationClearMode(n0(0)))
	case 'n':
		if !priv {
			t.DeviceStatus(n0(0))
		}
	case 'h':
		t.applySetMode(params, priv, true)
	case 'l':
		t.applySetMode(params, priv, false)
	case 'm':
		t.applySGR(params)
	case 'q':
		if hasByte(intermediates, ' ') {
			t.SetCursorStyle(vte.CursorStyle(n0(0)))
		}
	case 'r':
		if params.Len() >= 2 {
			t.SetScrollingRegion(n(0), n(1))
		} else {
			t.SetScrollingRegion(0, 0)
		}
	case 's':
		t.SaveCursorPosition()
	case 'u':
		t.RestoreCursorPosition()
	case 't':
		switch n0(0) {
		case 14:
			t.TextAreaSizePixels()
		case 16:
			t.CellSizePixels()
		case 18:
			t.TextAreaSizeChars()
		}
	}
}

// applySetMode dispatches a CSI h/l (DECSET/DECRST or SM/RM) sequence,
// translating each parameter into the corresponding vte.TerminalMode.
func (t *Terminal) applySetMode(params *vte.Params, priv, set bool) {
	for _, v := range params.All() {
		var mode vte.TerminalMode
		var ok bool
		if priv {
			mode, ok = privateModeFor(int(v))
		} else {
			mode, ok = ansiModeFor(int(v))
		}
		if !ok {
			continue
		}
		if set {
			t.SetMode(mode)
		} else {
			t.UnsetMode(mode)
		}
	}
}

func privateModeFor(n int) (vte.TerminalMode, bool) {
	switch n {
	case 1:
		return vte.TerminalModeCursorKeys, true
	case 3:
		return vte.TerminalModeColumnMode, true
	case 6:
		return vte.TerminalModeOrigin, true
	case 7:
		return vte.TerminalModeLineWrap, true
	case 12:
		return vte.TerminalModeBlinkingCursor, true
	case 25:
		return vte.TerminalModeShowCursor, true
	case 1000:
		return vte.TerminalModeReportMouseClicks, true
	case 1002:
		return vte.TerminalModeReportCellMouseMotion, true
	case 1003:
		return vte.TerminalModeReportAllMouseMotion, true
	case 1004:
		return vte.TerminalModeReportFocusInOut, true
	case 1005:
		return vte.TerminalModeUTF8Mouse, true
	case 1006:
		return vte.TerminalModeSGRMouse, true
	case 1007:
		return vte.TerminalModeAlternateScroll, true
	case 1042:
		return vte.TerminalModeUrgencyHints, true
	case 1049:
		return vte.TerminalModeSwapScreenAndSetRestoreCursor, true
	case 2004:
		return vte.TerminalModeBracketedPaste, true
	default:
		return 0, false
	}
}

func ansiModeFor(n int) (vte.TerminalMode, bool) {
	switch n {
	case 4:
		return vte.TerminalModeInsert, true
	case 20:
		return vte.TerminalModeLineFeedNewLine, true
	default:
		return 0, false
	}
}

func keyboardBehaviorFor(intermediates []byte) vte.KeyboardModeBehavior {
	// Kitty protocol CSI = flags ; behavior u. The behavior parameter is not
	// read anywhere: every such sequence is applied with the replace
	// behavior.
	return vte.KeyboardModeBehaviorReplace
}

func hasByte(b []byte, c byte) bool {
	for _, x := range b {
		if x == c {
			return true
		}
	}
	return false
}

// applySGR translates a CSI m (Select Graphic Rendition) sequence into one
// or more SetTerminalCharAttribute calls, consuming extended color
// subparameters (38/48/58 ; 2/5 ; ...).
func (t *Terminal) applySGR(params *vte.Params) {
	if params.Len() == 0 {
		t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrReset})
		return
	}

	all := params.All()
	for i := 0; i < len(all); i++ {
		p := all[i]
		switch p {
		case 0:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrReset})
		case 1:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrBold})
		case 2:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrDim})
		case 3:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrItalic})
		case 4:
			style := params.Sub(i)
			switch {
			case len(style) > 1 && style[1] == 2:
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrDoubleUnderline})
			case len(style) > 1 && style[1] == 3:
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCurlyUnderline})
			case len(style) > 1 && style[1] == 4:
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrDottedUnderline})
			case len(style) > 1 && style[1] == 5:
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrDashedUnderline})
			default:
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrUnderline})
			}
		case 5:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrBlinkSlow})
		case 6:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrBlinkFast})
		case 7:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrReverse})
		case 8:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrHidden})
		case 9:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrStrike})
		case 21:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrDoubleUnderline})
		case 22:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelBoldDim})
		case 23:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelItalic})
		case 24:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelUnderline})
		case 25:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelBlink})
		case 27:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelReverse})
		case 28:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelHidden})
		case 29:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrCancelStrike})
		case 38, 48, 58:
			attr, consumed := sgrExtendedColor(p, params.Sub(i), all[i+1:])
			t.SetTerminalCharAttribute(attr)
			i += consumed
		case 39:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrForeground})
		case 49:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrBackground})
		case 59:
			t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrUnderlineColor})
		default:
			if p >= 30 && p <= 37 {
				named := vte.NamedColorIndex(p - 30)
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrForeground, NamedColor: &named})
			} else if p >= 40 && p <= 47 {
				named := vte.NamedColorIndex(p - 40)
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrBackground, NamedColor: &named})
			} else if p >= 90 && p <= 97 {
				named := vte.NamedColorIndex(p - 90 + 8)
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrForeground, NamedColor: &named})
			} else if p >= 100 && p <= 107 {
				named := vte.NamedColorIndex(p - 100 + 8)
				t.SetTerminalCharAttribute(vte.CharAttribute{Attr: vte.AttrBackground, NamedColor: &named})
			}
		}
	}
}

// sgrExtendedColor handles the 38/48/58 ; 5 ; idx or 38/48/58 ; 2 ; r ; g ; b
// forms, supporting both colon sub-parameters (modern) and semicolon-joined
// legacy parameters (rest). It returns how many extra top-level params from
// rest were consumed in the legacy form.
func sgrExtendedColor(kind uint16, sub []uint16, rest []uint16) (vte.CharAttribute, int) {
	attrKind := vte.AttrForeground
	if kind == 48 {
		attrKind = vte.AttrBackground
	} else if kind == 58 {
		attrKind = vte.AttrUnderlineColor
	}

	// Colon form: sub = [38 5 idx] or [38 2 r g b].
	if len(sub) >= 3 && sub[1] == 5 {
		idx := vte.IndexedColor{Index: uint8(sub[2])}
		return vte.CharAttribute{Attr: attrKind, IndexedColor: &idx}, 0
	}
	if len(sub) >= 5 && sub[1] == 2 {
		c := vte.RGBColor{R: uint8(sub[2]), G: uint8(sub[3]), B: uint8(sub[4])}
		return vte.CharAttribute{Attr: attrKind, RGBColor: &c}, 0
	}

	// Legacy semicolon form: rest[0] selects 5 (indexed) or 2 (RGB).
	if len(rest) >= 2 && rest[0] == 5 {
		idx := vte.IndexedColor{Index: uint8(rest[1])}
		return vte.CharAttribute{Attr: attrKind, IndexedColor: &idx}, 2
	}
	if len(rest) >= 4 && rest[0] == 2 {
		c := vte.RGBColor{R: uint8(rest[1]), G: uint8(rest[2]), B: uint8(rest[3])}
		return vte.CharAttribute{Attr: attrKind, RGBColor: &c}, 4
	}
	return vte.CharAttribute{Attr: attrKind}, 0
}

// ESCDispatch handles two-byte-and-longer escape sequences outside CSI/OSC/DCS.
func (t *Terminal) ESCDispatch(intermediates []byte, ignore bool, final byte) {
	if len(intermediates) == 0 {
		switch final {
		case '7':
			t.SaveCursorPosition()
		case '8':
			t.RestoreCursorPosition()
		case 'c':
			t.ResetState()
		case 'D':
			t.LineFeed()
		case 'E':
			t.CarriageReturn()
			t.LineFeed()
		case 'H':
			t.HorizontalTabSet()
		case 'M':
			t.ReverseIndex()
		case '=':
			t.SetKeypadApplicationMode()
		case '>':
			t.UnsetKeypadApplicationMode()
		}
		return
	}

	switch intermediates[0] {
	case '#':
		if final == '8' {
			t.Decaln()
		}
	case '(':
		t.ConfigureCharset(vte.CharsetIndexG0, charsetFor(final))
	case ')':
		t.ConfigureCharset(vte.CharsetIndexG1, charsetFor(final))
	case '*':
		t.ConfigureCharset(vte.CharsetIndexG2, charsetFor(final))
	case '+':
		t.ConfigureCharset(vte.CharsetIndexG3, charsetFor(final))
	}
}

func charsetFor(final byte) vte.Charset {
	switch final {
	case '0':
		return vte.CharsetLineDrawing
	case 'A':
		return vte.CharsetUK
	default:
		return vte.CharsetASCII
	}
}

// DCSHook begins a DCS sequence. Only Sixel (q) is recognized today; all
// other DCS sequences (tmux passthrough, termcap queries) are absorbed and
// ignored so they do not leak into Ground as literal text.
func (t *Terminal) DCSHook(params *vte.Params, intermediates []byte, ignore bool, final byte) {
	if final == 'q' {
		t.dcsBuf = t.dcsBuf[:0]
		t.dcsSixel = true
		t.dcsSixelParams = params.All()
		return
	}
	t.dcsSixel = false
}

func (t *Terminal) DCSPut(b byte) {
	if t.dcsSixel {
		t.dcsBuf = append(t.dcsBuf, b)
	}
}

func (t *Terminal) DCSUnhook() {
	if t.dcsSixel {
		params := make([][]uint16, len(t.dcsSixelParams))
		for i, v := range t.dcsSixelParams {
			params[i] = []uint16{v}
		}
		t.SixelReceived(params, t.dcsBuf)
	}
	t.dcsSixel = false
	t.dcsBuf = nil
}

// APCDispatch routes Kitty graphics (APC G...) through ApplicationCommandReceived,
// which already demultiplexes on the leading byte.
func (t *Terminal) APCDispatch(data []byte) {
	t.ApplicationCommandReceived(data)
}

func (t *Terminal) PMDispatch(data []byte) {
	t.PrivacyMessageReceived(data)
}

func (t *Terminal) SOSDispatch(data []byte) {
	t.StartOfStringReceived(data)
}

// OSCDispatch parses an Operating System Command split on ';' by the state
// machine. params[0] is the numeric selector.
func (t *Terminal) OSCDispatch(params [][]byte) {
	if len(params) == 0 {
		return
	}
	selector, err := strconv.Atoi(string(params[0]))
	if err != nil {
		return
	}

	arg := func(i int) string {
		if i < len(params) {
			return string(params[i])
		}
		return ""
	}

	switch selector {
	case 0, 1, 2:
		t.SetTitle(arg(1))
	case 4:
		t.oscSetPaletteColor(params[1:])
	case 7:
		t.SetWorkingDirectory(arg(1))
	case 8:
		t.oscHyperlink(arg(1), arg(2))
	case 9:
		if arg(1) == "4" {
			t.oscProgress(arg(2), arg(3))
		} else {
			t.oscNotify(arg(1))
		}
	case 10, 11, 12:
		t.oscDynamicColor(selector, arg(1))
	case 52:
		t.oscClipboard(arg(1), arg(2))
	case 104:
		t.oscResetColor(arg(1))
	case 133:
		t.oscShellIntegration(arg(1), params[2:])
	case 777:
		t.oscNotify(strings.Join([]string{arg(2), arg(3)}, ": "))
	case 1337:
		t.oscITerm2(arg(1))
	}
}
