package vte

// maxParams bounds the number of parameters a single CSI/DCS sequence may
// carry. Exceeding it abandons further parameter accumulation (the final
// byte still dispatches with whatever was collected) rather than growing
// without bound.
const maxParams = 32

// Params holds the parsed numeric parameters of a CSI or DCS sequence.
// Each top-level parameter may itself carry colon-separated sub-parameters
// (e.g. "38:2:255:0:0"), recorded as a single subparams slice.
type Params struct {
	subparams [][]uint16
	lens      []uint8 // number of real subparams per entry (rest is padding)
}

func (p *Params) push(v uint16) {
	if len(p.subparams) >= maxParams {
		return
	}
	p.subparams = append(p.subparams, []uint16{v})
	p.lens = append(p.lens, 1)
}

func (p *Params) extend(v uint16) {
	if len(p.subparams) == 0 {
		p.push(v)
		return
	}
	last := len(p.subparams) - 1
	p.subparams[last] = append(p.subparams[last], v)
	p.lens[last]++
}

func (p *Params) clear() {
	p.subparams = p.subparams[:0]
	p.lens = p.lens[:0]
}

// Len returns the number of top-level parameters.
func (p *Params) Len() int { return len(p.subparams) }

// Param returns the first value of parameter i (0 if absent/missing/zero),
// the conventional "effective" value used by most CSI finals.
func (p *Params) Param(i int) uint16 {
	if i < 0 || i >= len(p.subparams) || len(p.subparams[i]) == 0 {
		return 0
	}
	return p.subparams[i][0]
}

// ParamOr returns Param(i), substituting def when the parameter is absent
// or zero. Used for movement/count operations that default to 1.
func (p *Params) ParamOr(i int, def uint16) uint16 {
	v := p.Param(i)
	if v == 0 {
		return def
	}
	return v
}

// Sub returns all sub-parameters of top-level parameter i (e.g. the
// [2 255 0 0] of "38:2:255:0:0").
func (p *Params) Sub(i int) []uint16 {
	if i < 0 || i >= len(p.subparams) {
		return nil
	}
	return p.subparams[i]
}

// All returns every top-level parameter's first value, in order.
func (p *Params) All() []uint16 {
	out := make([]uint16, len(p.subparams))
	for i, s := range p.subparams {
		if len(s) > 0 {
			out[i] = s[0]
		}
	}
	return out
}
