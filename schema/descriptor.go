// Package schema defines the immutable message descriptors consumed by the
// uwacomm codec. A descriptor declares an ordered list of typed fields with
// concrete domain constraints; every field's bit width is a pure function of
// its declared bounds. Descriptors can be built directly, derived from
// struct tags (Describe) or loaded from a declarative document (Load).
package schema

import (
	"math"
	"math/bits"
	"reflect"

	"github.com/patel999jay/uwacomm/codecerr"
)

// Kind identifies the domain constraint of a field.
type Kind uint8

// The supported field kinds.
const (
	Bool Kind = iota + 1
	UInt
	SInt
	Enum
	FixedBytes
	FixedString
	BoundedFloat
)

// String implements fmt.Stringer for Kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case UInt:
		return "uint"
	case SInt:
		return "int"
	case Enum:
		return "enum"
	case FixedBytes:
		return "bytes"
	case FixedString:
		return "string"
	case BoundedFloat:
		return "float"
	}
	return "invalid"
}

const (
	// MaxMessageID is the largest message id representable by the 1- or
	// 2-byte continuation-bit id encoding.
	MaxMessageID = 32767

	// MaxPrecision is the largest number of decimal digits supported by
	// BoundedFloat fields.
	MaxPrecision = 6

	// NoID marks a message descriptor without a wire id. Such messages can
	// only travel in mode 1 (payload-only).
	NoID = -1
)

// FieldDescriptor declares a single field. Only the parameters relevant to
// the field's kind are consulted:
//
//	Bool         none
//	UInt         Lo, Hi (both non-negative)
//	SInt         Lo, Hi
//	Enum         Values (ordered, distinct, cardinality >= 1)
//	FixedBytes   Length (bytes)
//	FixedString  Length (UTF-8 bytes, NUL-padded on the wire)
//	BoundedFloat Min, Max, Precision (decimal digits)
//
// The field name is used for diagnostics only and never travels on the wire.
type FieldDescriptor struct {
	Name      string
	Kind      Kind
	Lo        int64
	Hi        int64
	Values    []string
	Length    int
	Min       float64
	Max       float64
	Precision int
}

// FloatScale returns the scaling factor 10^Precision for BoundedFloat
// fields.
func (f *FieldDescriptor) FloatScale() float64 {
	return pow10[f.Precision]
}

var pow10 = [MaxPrecision + 1]float64{1, 10, 100, 1000, 10000, 100000, 1000000}

// MaxOffset returns the largest legal encoded offset for the numeric kinds
// (UInt, SInt, Enum, BoundedFloat). It is zero for degenerate single-value
// domains.
func (f *FieldDescriptor) MaxOffset() uint64 {
	switch f.Kind {
	case Bool:
		return 1
	case UInt, SInt:
		// Modular arithmetic yields the correct span even when Lo is
		// negative and Hi positive.
		return uint64(f.Hi) - uint64(f.Lo)
	case Enum:
		return uint64(len(f.Values) - 1)
	case BoundedFloat:
		return uint64(math.RoundToEven((f.Max - f.Min) * f.FloatScale()))
	}
	return 0
}

// Width returns the field's wire width in bits. It is a pure function of the
// descriptor parameters; no value ever changes a field's width. Width
// assumes the descriptor has passed Validate.
func (f *FieldDescriptor) Width() int {
	switch f.Kind {
	case Bool:
		return 1
	case UInt, SInt, Enum, BoundedFloat:
		return bits.Len64(f.MaxOffset())
	case FixedBytes, FixedString:
		return 8 * f.Length
	}
	return 0
}

// Validate checks the descriptor parameters against the constraints of its
// kind. All violations are reported as InvalidSchema errors.
func (f *FieldDescriptor) Validate() error {
	switch f.Kind {
	case Bool:
		// No parameters.
	case UInt:
		if f.Lo < 0 {
			return codecerr.New(codecerr.InvalidSchema, "uint lower bound must be non-negative, got %d", f.Lo).InField(f.Name)
		}
		if f.Lo > f.Hi {
			return codecerr.New(codecerr.InvalidSchema, "invalid bounds: lo=%d > hi=%d", f.Lo, f.Hi).InField(f.Name)
		}
	case SInt:
		if f.Lo > f.Hi {
			return codecerr.New(codecerr.InvalidSchema, "invalid bounds: lo=%d > hi=%d", f.Lo, f.Hi).InField(f.Name)
		}
	case Enum:
		if len(f.Values) == 0 {
			return codecerr.New(codecerr.InvalidSchema, "enum requires at least one value").InField(f.Name)
		}
		seen := make(map[string]struct{}, len(f.Values))
		for _, v := range f.Values {
			if _, dup := seen[v]; dup {
				return codecerr.New(codecerr.InvalidSchema, "duplicate enum value %q", v).InField(f.Name)
			}
			seen[v] = struct{}{}
		}
	case FixedBytes, FixedString:
		if f.Length < 0 {
			return codecerr.New(codecerr.InvalidSchema, "negative length %d", f.Length).InField(f.Name)
		}
	case BoundedFloat:
		if math.IsNaN(f.Min) || math.IsNaN(f.Max) || math.IsInf(f.Min, 0) || math.IsInf(f.Max, 0) {
			return codecerr.New(codecerr.InvalidSchema, "float bounds must be finite").InField(f.Name)
		}
		if f.Min >= f.Max {
			return codecerr.New(codecerr.InvalidSchema, "invalid bounds: min=%v >= max=%v", f.Min, f.Max).InField(f.Name)
		}
		if f.Precision < 0 || f.Precision > MaxPrecision {
			return codecerr.New(codecerr.InvalidSchema, "precision must be 0-%d, got %d", MaxPrecision, f.Precision).InField(f.Name)
		}
		if (f.Max-f.Min)*f.FloatScale() >= 1<<62 {
			return codecerr.New(codecerr.InvalidSchema, "scaled float range too large for 62 bits").InField(f.Name)
		}
	default:
		return codecerr.New(codecerr.InvalidSchema, "unsupported field kind %d", f.Kind).InField(f.Name)
	}
	return nil
}

// MessageDescriptor declares an ordered list of fields together with an
// optional wire id and an optional advisory size limit. Field ordering is
// part of the wire contract. Descriptors are immutable after construction.
type MessageDescriptor struct {
	Name string

	// ID is the message id used by the id-prefixed wire modes, or NoID.
	ID int

	// MaxBytes is an advisory upper bound on the encoded body size in
	// bytes. Zero means unbounded. It is enforced before emission and
	// reported by the size analyzer.
	MaxBytes int

	Fields []FieldDescriptor
}

// Validate checks the descriptor and all of its fields.
func (m *MessageDescriptor) Validate() error {
	if m.ID != NoID && (m.ID < 0 || m.ID > MaxMessageID) {
		return codecerr.New(codecerr.InvalidSchema, "message id must be 0-%d, got %d", MaxMessageID, m.ID)
	}
	if m.MaxBytes < 0 {
		return codecerr.New(codecerr.InvalidSchema, "max_bytes must be non-negative, got %d", m.MaxBytes)
	}

	seen := make(map[string]struct{}, len(m.Fields))
	for i := range m.Fields {
		f := &m.Fields[i]
		if err := f.Validate(); err != nil {
			return err
		}
		if f.Name == "" {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			return codecerr.New(codecerr.InvalidSchema, "duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// BodyBits returns the sum of the field widths.
func (m *MessageDescriptor) BodyBits() int {
	total := 0
	for i := range m.Fields {
		total += m.Fields[i].Width()
	}
	return total
}

// BodyBytes returns the padded body size in bytes.
func (m *MessageDescriptor) BodyBytes() int {
	return (m.BodyBits() + 7) / 8
}

// Equal reports whether two descriptors declare the same wire format. It is
// used by the registry to decide whether a re-registration is idempotent.
func (m *MessageDescriptor) Equal(other *MessageDescriptor) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	return reflect.DeepEqual(*m, *other)
}
