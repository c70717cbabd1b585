package vte

import (
	"github.com/rivo/uniseg"
)

// state is one node of the Williams VT500-series parser state table.
type state int

const (
	stateGround state = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateDCSEntry
	stateDCSParam
	stateDCSIntermediate
	stateDCSPassthrough
	stateDCSIgnore
	stateOSCString
	stateOSCStringEscSeen
	stateSOSPMAPCString
	stateSOSPMAPCStringEscSeen
	stateDCSPassthroughEscSeen
)

// apcKind distinguishes APC/PM/SOS once inside stateSOSPMAPCString, since
// they share identical accumulation/termination behavior and differ only
// in which Dispatcher callback fires.
type apcKind int

const (
	apcKindAPC apcKind = iota
	apcKindPM
	apcKindSOS
)

// maxStringLen bounds OSC/DCS/APC/PM/SOS payload accumulation. Exceeding
// it abandons the sequence (parser returns to Ground, nothing dispatches).
const maxStringLen = 16 * 1024 * 1024

// maxPrintBuf bounds how much raw Ground-state text is buffered before an
// intermediate grapheme-segmentation flush, purely to keep memory bounded
// on pathological input with no control bytes at all.
const maxPrintBuf = 4096

// Parser is a byte-stream escape-sequence state machine. It holds no grid
// or cursor state; all semantics live in the Dispatcher it drives. A
// Parser is not safe for concurrent use.
type Parser struct {
	st state

	params       Params
	intermediate []byte
	paramIgnored bool

	strBuf  []byte
	apcKind apcKind

	printBuf []byte
	dcsLen   int
	// dcsIgnoring remembers whether the DCS string currently being
	// accumulated has already overflowed into stateDCSIgnore, so an ESC
	// byte encountered mid-string resumes back into the right state
	// rather than always resuming passthrough.
	dcsIgnoring bool

	// ignorePending tracks whether the in-progress CSI sequence has
	// already overflowed maxParams.
	ignorePending bool
}

// NewParser returns a Parser positioned in Ground state.
func NewParser() *Parser {
	return &Parser{}
}

// Process feeds a chunk of bytes through the state machine, dispatching
// to d as sequences complete. Process is CPU-synchronous: it does not
// return until the entire chunk has been consumed.
func (p *Parser) Process(d Dispatcher, data []byte) {
	for _, b := range data {
		p.advance(d, b)
	}
	if p.st == stateGround {
		p.flushPrint(d)
	}
}

func classify(b byte) (isC0 bool, isIntermediate bool, isParam bool, isFinal bool, isCSIFinal bool) {
	isC0 = b <= 0x17 || b == 0x19 || (b >= 0x1c && b <= 0x1f)
	isIntermediate = b >= 0x20 && b <= 0x2f
	isParam = b >= 0x30 && b <= 0x3f
	isFinal = b >= 0x30 && b <= 0x7e
	isCSIFinal = b >= 0x40 && b <= 0x7e
	return
}

func (p *Parser) advance(d Dispatcher, b byte) {
	// CAN/SUB abort any in-progress sequence unconditionally.
	if b == 0x18 || b == 0x1a {
		inPassthrough := p.st == stateDCSPassthrough || p.st == stateDCSPassthroughEscSeen
		if inPassthrough && !p.dcsIgnoring {
			d.DCSUnhook()
		}
		p.toGround(d)
		return
	}

	switch p.st {
	case stateGround:
		p.advanceGround(d, b)
	case stateEscape:
		p.advanceEscape(d, b)
	case stateEscapeIntermediate:
		p.advanceEscapeIntermediate(d, b)
	case stateCSIEntry:
		p.advanceCSIEntry(d, b)
	case stateCSIParam:
		p.advanceCSIParam(d, b)
	case stateCSIIntermediate:
		p.advanceCSIIntermediate(d, b)
	case stateCSIIgnore:
		p.advanceCSIIgnore(d, b)
	case stateDCSEntry:
		p.advanceDCSEntry(d, b)
	case stateDCSParam:
		p.advanceDCSParam(d, b)
	case stateDCSIntermediate:
		p.advanceDCSIntermediate(d, b)
	case stateDCSPassthrough:
		p.advanceDCSPassthrough(d, b)
	case stateDCSIgnore:
		p.advanceDCSIgnore(d, b)
	case stateOSCString:
		p.advanceOSCString(d, b)
	case stateOSCStringEscSeen:
		p.advanceOSCStringEscSeen(d, b)
	case stateSOSPMAPCString:
		p.advanceSOSPMAPCString(d, b)
	case stateSOSPMAPCStringEscSeen:
		p.advanceSOSPMAPCStringEscSeen(d, b)
	case stateDCSPassthroughEscSeen:
		p.advanceDCSPassthroughEscSeen(d, b)
	}
}

// --- Ground ---

func (p *Parser) advanceGround(d Dispatcher, b byte) {
	isC0, _, _, _, _ := classify(b)
	switch {
	case b == 0x1b:
		p.flushPrint(d)
		p.st = stateEscape
		p.resetSeq()
	case isC0:
		p.flushPrint(d)
		d.Execute(b)
	case b == 0x7f:
		// DEL: ignored in Ground.
	default:
		p.printBuf = append(p.printBuf, b)
		if len(p.printBuf) >= maxPrintBuf {
			p.flushPrint(d)
		}
	}
}

// flushPrint segments accumulated Ground-state bytes into grapheme
// clusters and dispatches one Print call per cluster. Invalid UTF-8 is
// fed through as-is; uniseg treats lone bytes as their own cluster.
func (p *Parser) flushPrint(d Dispatcher) {
	if len(p.printBuf) == 0 {
		return
	}
	s := string(p.printBuf)
	p.printBuf = p.printBuf[:0]

	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		d.Print(gr.Str())
	}
}

// toGround returns to Ground state. Callers are responsible for firing
// any terminating dispatch (DCSUnhook, OSCDispatch, ...) before calling
// this, since the right callback depends on which sequence was active.
func (p *Parser) toGround(d Dispatcher) {
	p.st = stateGround
	p.resetSeq()
}

func (p *Parser) resetSeq() {
	p.params.clear()
	p.intermediate = p.intermediate[:0]
	p.ignorePending = false
	p.strBuf = p.strBuf[:0]
}

// --- Escape ---

func (p *Parser) advanceEscape(d Dispatcher, b byte) {
	isC0, isIntermediate, _, _, _ := classify(b)
	switch {
	case isC0:
		d.Execute(b)
	case b == '[':
		p.st = stateCSIEntry
		p.resetSeq()
	case b == ']':
		p.st = stateOSCString
		p.resetSeq()
	case b == 'P':
		p.st = stateDCSEntry
		p.resetSeq()
	case b == '_':
		p.st = stateSOSPMAPCString
		p.apcKind = apcKindAPC
		p.resetSeq()
	case b == '^':
		p.st = stateSOSPMAPCString
		p.apcKind = apcKindPM
		p.resetSeq()
	case b == 'X':
		p.st = stateSOSPMAPCString
		p.apcKind = apcKindSOS
		p.resetSeq()
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
		p.st = stateEscapeIntermediate
	case b >= 0x30 && b <= 0x7e:
		d.ESCDispatch(p.intermediate, p.ignorePending, b)
		p.toGround(d)
	default:
		// 0x7f DEL or stray byte: ignore, stay in Escape.
	}
}

func (p *Parser) advanceEscapeIntermediate(d Dispatcher, b byte) {
	_, isIntermediate, _, _, _ := classify(b)
	switch {
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
	case b >= 0x30 && b <= 0x7e:
		d.ESCDispatch(p.intermediate, p.ignorePending, b)
		p.toGround(d)
	default:
	}
}

// --- CSI ---

func (p *Parser) advanceCSIEntry(d Dispatcher, b byte) {
	isC0, isIntermediate, isParam, _, isCSIFinal := classify(b)
	switch {
	case isC0:
		d.Execute(b)
	case b >= '0' && b <= '9':
		p.params.push(uint16(b - '0'))
		p.st = stateCSIParam
	case b == ':' || b == ';':
		p.params.push(0)
		p.st = stateCSIParam
	case b == '<' || b == '=' || b == '>' || b == '?':
		p.intermediate = append(p.intermediate, b)
		p.st = stateCSIParam
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
		p.st = stateCSIIntermediate
	case isCSIFinal:
		d.CSIDispatch(&p.params, p.intermediate, p.ignorePending, b)
		p.toGround(d)
	case isParam:
		p.st = stateCSIIgnore
	default:
	}
}

func (p *Parser) advanceCSIParam(d Dispatcher, b byte) {
	isC0, isIntermediate, isParam, _, isCSIFinal := classify(b)
	switch {
	case isC0:
		d.Execute(b)
	case b >= '0' && b <= '9':
		p.accumulateDigit(b)
	case b == ';':
		if p.params.Len() >= maxParams {
			p.ignorePending = true
		}
		p.params.push(0)
	case b == ':':
		p.params.extend(0)
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
		p.st = stateCSIIntermediate
	case isCSIFinal:
		d.CSIDispatch(&p.params, p.intermediate, p.ignorePending, b)
		p.toGround(d)
	case isParam:
		p.st = stateCSIIgnore
	default:
	}
}

func (p *Parser) accumulateDigit(b byte) {
	if p.params.Len() == 0 {
		p.params.push(0)
	}
	last := len(p.params.subparams) - 1
	sub := p.params.subparams[last]
	idx := len(sub) - 1
	v := sub[idx]
	v = v*10 + uint16(b-'0')
	if v > 0xffff {
		v = 0xffff
	}
	sub[idx] = v
}

func (p *Parser) advanceCSIIntermediate(d Dispatcher, b byte) {
	isC0, isIntermediate, _, _, isCSIFinal := classify(b)
	switch {
	case isC0:
		d.Execute(b)
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
	case isCSIFinal:
		d.CSIDispatch(&p.params, p.intermediate, p.ignorePending, b)
		p.toGround(d)
	default:
		p.st = stateCSIIgnore
	}
}

func (p *Parser) advanceCSIIgnore(d Dispatcher, b byte) {
	isC0, _, _, _, isCSIFinal := classify(b)
	switch {
	case isC0:
		d.Execute(b)
	case isCSIFinal:
		p.toGround(d)
	default:
	}
}

// --- DCS ---

func (p *Parser) advanceDCSEntry(d Dispatcher, b byte) {
	_, isIntermediate, _, _, isCSIFinal := classify(b)
	switch {
	case b >= '0' && b <= '9':
		p.params.push(uint16(b - '0'))
		p.st = stateDCSParam
	case b == ';':
		p.params.push(0)
		p.st = stateDCSParam
	case b == '<' || b == '=' || b == '>' || b == '?':
		p.intermediate = append(p.intermediate, b)
		p.st = stateDCSParam
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
		p.st = stateDCSIntermediate
	case isCSIFinal:
		p.beginDCS(d, b)
	default:
		p.st = stateDCSIgnore
	}
}

func (p *Parser) advanceDCSParam(d Dispatcher, b byte) {
	_, isIntermediate, _, _, isCSIFinal := classify(b)
	switch {
	case b >= '0' && b <= '9':
		p.accumulateDigit(b)
	case b == ';':
		p.params.push(0)
	case b == ':':
		p.params.extend(0)
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
		p.st = stateDCSIntermediate
	case isCSIFinal:
		p.beginDCS(d, b)
	default:
		p.st = stateDCSIgnore
	}
}

func (p *Parser) advanceDCSIntermediate(d Dispatcher, b byte) {
	_, isIntermediate, _, _, isCSIFinal := classify(b)
	switch {
	case isIntermediate:
		p.intermediate = append(p.intermediate, b)
	case isCSIFinal:
		p.beginDCS(d, b)
	default:
		p.st = stateDCSIgnore
	}
}

func (p *Parser) beginDCS(d Dispatcher, final byte) {
	d.DCSHook(&p.params, p.intermediate, p.ignorePending, final)
	p.st = stateDCSPassthrough
	p.dcsLen = 0
	p.dcsIgnoring = false
}

func (p *Parser) advanceDCSPassthrough(d Dispatcher, b byte) {
	switch b {
	case 0x1b:
		// Possible ST (ESC \); the following byte decides. Every VT500
		// table resolves the same way: only ESC '\\' terminates the
		// string, any other byte after ESC is a fresh escape sequence.
		p.st = stateDCSPassthroughEscSeen
	case 0x07:
		d.DCSUnhook()
		p.toGround(d)
	default:
		if p.dcsLen >= maxStringLen {
			// Payload cap exceeded: abandon the sequence silently.
			p.st = stateDCSIgnore
			p.dcsIgnoring = true
			return
		}
		p.dcsLen++
		d.DCSPut(b)
	}
}

func (p *Parser) advanceDCSPassthroughEscSeen(d Dispatcher, b byte) {
	if b == '\\' {
		if !p.dcsIgnoring {
			d.DCSUnhook()
		}
		p.toGround(d)
		return
	}
	// Not a string terminator: re-enter Escape processing for this byte,
	// resuming whichever state (passthrough or overflow-ignore) it left.
	if p.dcsIgnoring {
		p.st = stateDCSIgnore
	} else {
		p.st = stateDCSPassthrough
	}
	p.advanceEscape(d, b)
}

func (p *Parser) advanceDCSIgnore(d Dispatcher, b byte) {
	if b == 0x1b {
		p.st = stateDCSPassthroughEscSeen
	}
}

// --- OSC ---

func (p *Parser) advanceOSCString(d Dispatcher, b byte) {
	switch b {
	case 0x07:
		d.OSCDispatch(splitOSC(p.strBuf))
		p.toGround(d)
	case 0x1b:
		p.st = stateOSCStringEscSeen
	default:
		if len(p.strBuf) < maxStringLen {
			p.strBuf = append(p.strBuf, b)
		} else {
			p.toGround(d)
		}
	}
}

func (p *Parser) advanceOSCStringEscSeen(d Dispatcher, b byte) {
	if b == '\\' {
		d.OSCDispatch(splitOSC(p.strBuf))
		p.toGround(d)
		return
	}
	p.st = stateOSCString
	p.advanceEscape(d, b)
}

// --- SOS/PM/APC ---

func (p *Parser) advanceSOSPMAPCString(d Dispatcher, b byte) {
	switch b {
	case 0x07:
		p.dispatchAPCFamily(d)
		p.toGround(d)
	case 0x1b:
		p.st = stateSOSPMAPCStringEscSeen
	default:
		if len(p.strBuf) < maxStringLen {
			p.strBuf = append(p.strBuf, b)
		} else {
			p.toGround(d)
		}
	}
}

func (p *Parser) advanceSOSPMAPCStringEscSeen(d Dispatcher, b byte) {
	if b == '\\' {
		p.dispatchAPCFamily(d)
		p.toGround(d)
		return
	}
	p.st = stateSOSPMAPCString
	p.advanceEscape(d, b)
}

func (p *Parser) dispatchAPCFamily(d Dispatcher) {
	switch p.apcKind {
	case apcKindAPC:
		d.APCDispatch(p.strBuf)
	case apcKindPM:
		d.PMDispatch(p.strBuf)
	case apcKindSOS:
		d.SOSDispatch(p.strBuf)
	}
}

func splitOSC(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range data {
		if b == ';' {
			out = append(out, data[start:i])
			start = i + 1
		}
	}
	out = append(out, data[start:])
	return out
}
