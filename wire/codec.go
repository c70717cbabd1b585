package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// builder accumulates a protobuf-compatible byte stream field by field.
// Each message's MarshalBinary writes its fields in ascending tag order
// using these helpers; unknown fields are never round-tripped (discarded
// on decode), matching the "never corrupt state on garbage input" policy
// applied throughout this codec.
type builder struct {
	b []byte
}

func (w *builder) str(num protowire.Number, v string) {
	if v == "" {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendString(w.b, v)
}

func (w *builder) bytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendBytes(w.b, v)
}

func (w *builder) varint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, v)
}

func (w *builder) signed(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, uint64(v))
}

func (w *builder) boolean(num protowire.Number, v bool) {
	if !v {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, 1)
}

func (w *builder) float(num protowire.Number, v float64) {
	if v == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.Fixed64Type)
	w.b = protowire.AppendFixed64(w.b, math.Float64bits(v))
}

func (w *builder) strs(num protowire.Number, vs []string) {
	for _, v := range vs {
		w.str(num, v)
	}
}

func (w *builder) nested(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendBytes(w.b, v)
}

// fieldFn is invoked once per decoded field with its tag number, wire type
// and raw remaining buffer (positioned just past the tag); it must return
// the number of bytes consumed for the field's value.
type fieldFn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walk decodes every field in b, dispatching to fn. Malformed input stops
// decoding early and returns an error; it never panics.
func walk(b []byte, fn fieldFn) error {
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(tagLen))
		}
		b = b[tagLen:]
		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 || n > len(b) {
			return fmt.Errorf("wire: field %d consumed out of range", num)
		}
		b = b[n:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte) (string, int, error) {
	if typ != protowire.BytesType {
		return "", 0, fmt.Errorf("wire: expected bytes wire type, got %d", typ)
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, fmt.Errorf("wire: invalid string: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("wire: expected bytes wire type, got %d", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("wire: invalid bytes: %w", protowire.ParseError(n))
	}
	return append([]byte(nil), v...), n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("wire: expected varint wire type, got %d", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("wire: invalid varint: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeFloat(typ protowire.Type, b []byte) (float64, int, error) {
	if typ != protowire.Fixed64Type {
		return 0, 0, fmt.Errorf("wire: expected fixed64 wire type, got %d", typ)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("wire: invalid fixed64: %w", protowire.ParseError(n))
	}
	return math.Float64frombits(v), n, nil
}

// skip discards a field's value without interpreting it (unknown tags).
func skip(typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(0, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("wire: invalid field: %w", protowire.ParseError(n))
	}
	return n, nil
}
