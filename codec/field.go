// Package codec implements the schema-walking encoder and decoder, the
// three wire framing modes and the message registry. The codec is pure and
// synchronous: encode and decode calls never block, hold no shared state
// and are freely callable in parallel on distinct buffers.
package codec

import (
	"math"
	"unicode/utf8"

	"github.com/patel999jay/uwacomm/bitpack"
	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

// encodeField appends the wire representation of value to p according to
// the field descriptor. Values use the canonical codec types: bool, int64
// (any Go integer type is accepted), string, []byte and float64.
func encodeField(p *bitpack.Packer, f *schema.FieldDescriptor, value interface{}) error {
	switch f.Kind {
	case schema.Bool:
		b, ok := value.(bool)
		if !ok {
			return typeError(f, "bool", value)
		}
		return p.WriteBool(b)

	case schema.UInt, schema.SInt:
		v, ok := toInt64(value)
		if !ok {
			return typeError(f, "integer", value)
		}
		if v < f.Lo || v > f.Hi {
			return codecerr.New(codecerr.OutOfRange, "value %d out of bounds [%d, %d]", v, f.Lo, f.Hi).InField(f.Name)
		}
		// Modular subtraction yields the unsigned offset even when the
		// bounds straddle zero.
		return p.Write(uint64(v)-uint64(f.Lo), f.Width())

	case schema.Enum:
		s, ok := value.(string)
		if !ok {
			return typeError(f, "string", value)
		}
		for i, candidate := range f.Values {
			if candidate == s {
				return p.Write(uint64(i), f.Width())
			}
		}
		return codecerr.New(codecerr.OutOfRange, "value %q is not a declared enum value", s).InField(f.Name)

	case schema.FixedBytes:
		b, ok := value.([]byte)
		if !ok {
			return typeError(f, "[]byte", value)
		}
		if len(b) > f.Length {
			return codecerr.New(codecerr.OutOfRange, "value is %d bytes, field holds %d", len(b), f.Length).InField(f.Name)
		}
		if err := p.WriteBytes(b); err != nil {
			return err
		}
		return writePadding(p, f.Length-len(b))

	case schema.FixedString:
		s, ok := value.(string)
		if !ok {
			return typeError(f, "string", value)
		}
		if !utf8.ValidString(s) {
			return codecerr.New(codecerr.OutOfRange, "value is not valid UTF-8").InField(f.Name)
		}
		if len(s) > f.Length {
			return codecerr.New(codecerr.OutOfRange, "value encodes to %d bytes, field holds %d", len(s), f.Length).InField(f.Name)
		}
		if err := p.WriteBytes([]byte(s)); err != nil {
			return err
		}
		return writePadding(p, f.Length-len(s))

	case schema.BoundedFloat:
		v, ok := toFloat64(value)
		if !ok {
			return typeError(f, "float", value)
		}
		// Bounds are checked on the real value, before rounding.
		if v < f.Min || v > f.Max {
			return codecerr.New(codecerr.OutOfRange, "value %v out of bounds [%v, %v]", v, f.Min, f.Max).InField(f.Name)
		}
		scaled := uint64(math.RoundToEven((v - f.Min) * f.FloatScale()))
		return p.Write(scaled, f.Width())
	}

	return codecerr.New(codecerr.InvalidSchema, "unsupported field kind %d", f.Kind).InField(f.Name)
}

// decodeField reads one field from u and returns its canonical value.
// Degenerate zero-width fields consume nothing and return the unique legal
// value of their domain.
func decodeField(u *bitpack.Unpacker, f *schema.FieldDescriptor) (interface{}, error) {
	switch f.Kind {
	case schema.Bool:
		return u.ReadBool()

	case schema.UInt, schema.SInt:
		width := f.Width()
		if width == 0 {
			return f.Lo, nil
		}
		raw, err := u.Read(width)
		if err != nil {
			return nil, err
		}
		if raw > f.MaxOffset() {
			return nil, codecerr.New(codecerr.CorruptValue, "decoded offset %d exceeds range [%d, %d]", raw, f.Lo, f.Hi).InField(f.Name)
		}
		return int64(uint64(f.Lo) + raw), nil

	case schema.Enum:
		width := f.Width()
		if width == 0 {
			return f.Values[0], nil
		}
		raw, err := u.Read(width)
		if err != nil {
			return nil, err
		}
		if raw >= uint64(len(f.Values)) {
			return nil, codecerr.New(codecerr.CorruptValue, "enum index %d out of range (%d values)", raw, len(f.Values)).InField(f.Name)
		}
		return f.Values[raw], nil

	case schema.FixedBytes:
		return u.ReadBytes(f.Length)

	case schema.FixedString:
		raw, err := u.ReadBytes(f.Length)
		if err != nil {
			return nil, err
		}
		end := len(raw)
		for end > 0 && raw[end-1] == 0 {
			end--
		}
		if !utf8.Valid(raw[:end]) {
			return nil, codecerr.New(codecerr.CorruptValue, "decoded bytes are not valid UTF-8").InField(f.Name)
		}
		return string(raw[:end]), nil

	case schema.BoundedFloat:
		width := f.Width()
		if width == 0 {
			return f.Min, nil
		}
		raw, err := u.Read(width)
		if err != nil {
			return nil, err
		}
		if raw > f.MaxOffset() {
			return nil, codecerr.New(codecerr.CorruptValue, "decoded offset %d exceeds scaled range %d", raw, f.MaxOffset()).InField(f.Name)
		}
		return f.Min + float64(raw)/f.FloatScale(), nil
	}

	return nil, codecerr.New(codecerr.InvalidSchema, "unsupported field kind %d", f.Kind).InField(f.Name)
}

func writePadding(p *bitpack.Packer, count int) error {
	for i := 0; i < count; i++ {
		if err := p.Write(0, 8); err != nil {
			return err
		}
	}
	return nil
}

func typeError(f *schema.FieldDescriptor, want string, got interface{}) error {
	return codecerr.New(codecerr.OutOfRange, "expected %s value, got %T", want, got).InField(f.Name)
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
