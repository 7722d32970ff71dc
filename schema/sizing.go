package schema

import "fmt"

// FieldSize describes the wire cost of a single field.
type FieldSize struct {
	Name   string
	Kind   Kind
	Bits   int
	Detail string
}

// Analysis is the full size breakdown of a message descriptor. It is a pure
// function of the descriptor; no values are encoded to produce it.
type Analysis struct {
	Name string
	ID   int

	Fields []FieldSize

	// Body accounting.
	BodyBits    int
	BodyBytes   int
	PaddingBits int

	// Header bytes added by the framing modes. IDBytes is zero when the
	// descriptor has no id (such messages cannot travel in modes 2/3).
	IDBytes      int
	RoutingBytes int

	// Total wire bytes per mode, excluding any CRC framing.
	Mode1Bytes int
	Mode2Bytes int
	Mode3Bytes int

	// MaxBytes echoes the descriptor's advisory limit (0 = unbounded).
	MaxBytes int
}

// WithinBudget reports whether the mode-1 body fits the advisory limit.
// It is true when no limit was declared.
func (a *Analysis) WithinBudget() bool {
	return a.MaxBytes == 0 || a.BodyBytes <= a.MaxBytes
}

// Analyze computes the size breakdown for a descriptor.
func Analyze(m *MessageDescriptor) *Analysis {
	a := &Analysis{
		Name:         m.Name,
		ID:           m.ID,
		RoutingBytes: 3,
		MaxBytes:     m.MaxBytes,
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		a.Fields = append(a.Fields, FieldSize{
			Name:   f.Name,
			Kind:   f.Kind,
			Bits:   f.Width(),
			Detail: fieldDetail(f),
		})
		a.BodyBits += f.Width()
	}

	a.BodyBytes = (a.BodyBits + 7) / 8
	a.PaddingBits = a.BodyBytes*8 - a.BodyBits

	if m.ID != NoID {
		a.IDBytes = 1
		if m.ID > 127 {
			a.IDBytes = 2
		}
	}

	a.Mode1Bytes = a.BodyBytes
	a.Mode2Bytes = a.IDBytes + a.BodyBytes
	a.Mode3Bytes = a.RoutingBytes + a.IDBytes + a.BodyBytes
	return a
}

func fieldDetail(f *FieldDescriptor) string {
	switch f.Kind {
	case UInt, SInt:
		return fmt.Sprintf("[%d, %d]", f.Lo, f.Hi)
	case Enum:
		return fmt.Sprintf("(enum, %d values)", len(f.Values))
	case FixedBytes:
		return fmt.Sprintf("(%d bytes)", f.Length)
	case FixedString:
		return fmt.Sprintf("(%d chars)", f.Length)
	case BoundedFloat:
		return fmt.Sprintf("[%g, %g] precision %d", f.Min, f.Max, f.Precision)
	}
	return ""
}
