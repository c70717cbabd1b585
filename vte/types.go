// Package vte implements the Williams VT500-series state machine that
// drives escape-sequence dispatch for a VT100/VT220/VT320/VT420/VT520
// compatible terminal. It is deliberately free of any grid/cursor/cell
// semantics: those live one layer up, in the Dispatcher implementation.
package vte

// CharsetIndex selects one of the four character set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// Charset is a character set designated into one of the G0-G3 slots.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
	CharsetUK
)

// ClearMode selects the region cleared by ED (Erase in Display).
type ClearMode int

const (
	ClearModeBelow ClearMode = iota // 0: cursor to end of screen
	ClearModeAbove                  // 1: start of screen to cursor
	ClearModeAll                    // 2: entire screen
	ClearModeSaved                  // 3: scrollback
)

// LineClearMode selects the region cleared by EL (Erase in Line).
type LineClearMode int

const (
	LineClearModeRight LineClearMode = iota // 0
	LineClearModeLeft                       // 1
	LineClearModeAll                        // 2
)

// TabulationClearMode selects which tab stops TBC clears.
type TabulationClearMode int

const (
	TabulationClearModeCurrent TabulationClearMode = iota // 0
	TabulationClearModeAll    TabulationClearMode = 3     // 3
)

// CursorStyle is the DECSCUSR cursor shape/blink selector.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Hyperlink carries the OSC 8 URI and optional id.
type Hyperlink struct {
	ID  string
	URI string
}

// PrivateMode is a DECSET/DECRST private mode number (e.g. 1049, 2004).
type PrivateMode int

// TerminalMode is an ANSI (non-private) SM/RM mode number (e.g. 4 = IRM, 20 = LNM)
// together with the DEC private modes surfaced through CSI ? h/l. The parser
// hands these through as opaque identifiers; the Dispatcher decides what each
// one means.
type TerminalMode int

const (
	TerminalModeCursorKeys TerminalMode = iota
	TerminalModeColumnMode
	TerminalModeInsert
	TerminalModeOrigin
	TerminalModeLineWrap
	TerminalModeBlinkingCursor
	TerminalModeLineFeedNewLine
	TerminalModeShowCursor
	TerminalModeReportMouseClicks
	TerminalModeReportCellMouseMotion
	TerminalModeReportAllMouseMotion
	TerminalModeReportFocusInOut
	TerminalModeUTF8Mouse
	TerminalModeSGRMouse
	TerminalModeAlternateScroll
	TerminalModeUrgencyHints
	TerminalModeSwapScreenAndSetRestoreCursor
	TerminalModeBracketedPaste
)

// KeyboardMode is a bitmask of Kitty keyboard protocol flags.
type KeyboardMode uint8

const (
	KeyboardModeNoMode                     KeyboardMode = 0
	KeyboardModeDisambiguateEscapeCodes    KeyboardMode = 1
	KeyboardModeReportEventTypes           KeyboardMode = 2
	KeyboardModeReportAlternateKeys        KeyboardMode = 4
	KeyboardModeReportAllKeysAsEscapeCodes KeyboardMode = 8
	KeyboardModeReportAssociatedText       KeyboardMode = 16
)

// KeyboardModeBehavior controls how a CSI > u / CSI = u push/set merges flags.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys is the xterm modifyOtherKeys resource value (0, 1, or 2).
type ModifyOtherKeys int

// ShellIntegrationMark is an OSC 133 FinalTerm marker type.
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota // A
	CommandStart                            // B
	CommandExecuted                         // C
	CommandFinished                         // D
)

// RGBColor is a 24-bit color carried by an SGR "2" subparameter sequence.
type RGBColor struct{ R, G, B uint8 }

// IndexedColor is a 256-color palette index carried by an SGR "5" subparameter.
type IndexedColor struct{ Index uint8 }

// NamedColorIndex is one of the 16 standard ANSI color slots (SGR 30-37/90-97
// and their background equivalents), resolved by the caller's palette.
type NamedColorIndex int

// CharAttribute is one parsed SGR selector. For the three color kinds
// (Foreground/Background/UnderlineColor), exactly one of RGBColor,
// IndexedColor, NamedColor is set; all three nil means "reset to default".
type CharAttribute struct {
	Attr CharAttributeKind

	RGBColor     *RGBColor
	IndexedColor *IndexedColor
	NamedColor   *NamedColorIndex
}

type CharAttributeKind int

const (
	AttrReset CharAttributeKind = iota
	AttrBold
	AttrDim
	AttrItalic
	AttrUnderline
	AttrDoubleUnderline
	AttrCurlyUnderline
	AttrDottedUnderline
	AttrDashedUnderline
	AttrBlinkSlow
	AttrBlinkFast
	AttrReverse
	AttrHidden
	AttrStrike
	AttrCancelBold
	AttrCancelBoldDim
	AttrCancelItalic
	AttrCancelUnderline
	AttrCancelBlink
	AttrCancelReverse
	AttrCancelHidden
	AttrCancelStrike
	AttrForeground
	AttrBackground
	AttrUnderlineColor
)
