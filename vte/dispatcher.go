package vte

// Dispatcher receives the fully-parsed callbacks that the state machine
// produces, matching the four escape-sequence families (CSI/OSC/ESC/DCS)
// plus APC/PM/SOS. Implementations never see raw bytes except inside OSC
// parameter strings, DCS payloads, and APC/PM/SOS payloads.
//
// Malformed sequences never reach a Dispatcher: the parser discards them
// and returns to Ground before any dispatch would occur.
type Dispatcher interface {
	// Print is called once per grapheme cluster on Ground. The string may
	// carry more than one rune when combining marks, ZWJ sequences, or
	// regional-indicator pairs fused into a single cluster.
	Print(grapheme string)

	// Execute is called for a single C0/C1 control byte (BEL, BS, CR, LF, ...).
	Execute(b byte)

	// CSIDispatch is called once a complete CSI sequence has been
	// recognized. ignore is true if the sequence carried more
	// parameters than the parser retains (it is still
	// dispatched with final, per the "unknown finals are ignored, not
	// fatal" failure model -- callers typically no-op on ignore).
	CSIDispatch(params *Params, intermediates []byte, ignore bool, final byte)

	// OSCDispatch is called with an OSC sequence split on ';' into raw
	// byte strings (the first is conventionally the numeric selector).
	OSCDispatch(params [][]byte)

	// ESCDispatch is called for a two (or more) byte escape sequence that
	// is not CSI/OSC/DCS/APC/PM/SOS (e.g. ESC c, ESC =, ESC 7).
	ESCDispatch(intermediates []byte, ignore bool, final byte)

	// DCSHook begins a DCS sequence (e.g. Sixel "q", tmux passthrough
	// "p", XTVERSION ">q"). Subsequent payload bytes arrive via DCSPut
	// until DCSUnhook.
	DCSHook(params *Params, intermediates []byte, ignore bool, final byte)
	DCSPut(b byte)
	DCSUnhook()

	// APCDispatch, PMDispatch, SOSDispatch deliver the accumulated payload
	// of an Application Program Command / Privacy Message / Start-of-String
	// sequence once its terminator (ST or BEL) is seen.
	APCDispatch(data []byte)
	PMDispatch(data []byte)
	SOSDispatch(data []byte)
}
