package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

func statusDesc() *schema.MessageDescriptor {
	return &schema.MessageDescriptor{
		Name: "StatusReport",
		ID:   schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "vehicle_id", Kind: schema.UInt, Lo: 0, Hi: 255},
			{Name: "depth_cm", Kind: schema.UInt, Lo: 0, Hi: 10000},
			{Name: "battery_pct", Kind: schema.UInt, Lo: 0, Hi: 100},
			{Name: "active", Kind: schema.Bool},
		},
	}
}

func TestEncodeBodyLayout(t *testing.T) {
	msg := &Message{
		Desc:   statusDesc(),
		Values: []interface{}{int64(42), int64(2500), int64(87), true},
	}

	wire, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}

	// 8 + 14 + 7 + 1 = 30 bits -> 4 bytes with 2 padding bits.
	expWire := []byte{0x2A, 0x27, 0x12, 0xBC}
	if !bytes.Equal(wire, expWire) {
		t.Fatalf("expected wire % X; got % X", expWire, wire)
	}

	decoded, err := Decode(msg.Desc, wire)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded.Values, msg.Values) {
		t.Fatalf("expected values %#v; got %#v", msg.Values, decoded.Values)
	}
}

func TestEncodeDeterminism(t *testing.T) {
	msg := &Message{
		Desc:   statusDesc(),
		Values: []interface{}{int64(199), int64(9999), int64(0), false},
	}

	first, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(msg)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("[spec %d] expected byte-identical output; got % X and % X", i, first, again)
		}
	}
}

func TestRoundTripAllKinds(t *testing.T) {
	desc := &schema.MessageDescriptor{
		Name: "Kitchen",
		ID:   schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "flag", Kind: schema.Bool},
			{Name: "count", Kind: schema.UInt, Lo: 10, Hi: 500},
			{Name: "offset", Kind: schema.SInt, Lo: -1000, Hi: 1000},
			{Name: "mode", Kind: schema.Enum, Values: []string{"idle", "transit", "survey"}},
			{Name: "blob", Kind: schema.FixedBytes, Length: 3},
			{Name: "tag", Kind: schema.FixedString, Length: 6},
			{Name: "temp", Kind: schema.BoundedFloat, Min: -5, Max: 100, Precision: 2},
			{Name: "constant", Kind: schema.UInt, Lo: 9, Hi: 9},
			{Name: "lone", Kind: schema.Enum, Values: []string{"only"}},
		},
	}
	if err := desc.Validate(); err != nil {
		t.Fatal(err)
	}

	specs := [][]interface{}{
		{true, int64(10), int64(-1000), "idle", []byte{1, 2, 3}, "ABC", -5.0, int64(9), "only"},
		{false, int64(500), int64(1000), "survey", []byte{0xFF, 0x00, 0x7F}, "NAUT-1", 100.0, int64(9), "only"},
		{true, int64(255), int64(0), "transit", []byte{}, "", 25.75, int64(9), "only"},
	}

	for specIndex, values := range specs {
		wire, err := Encode(&Message{Desc: desc, Values: values})
		if err != nil {
			t.Fatalf("[spec %d] encode failed: %v", specIndex, err)
		}
		if expLen := desc.BodyBytes(); len(wire) != expLen {
			t.Fatalf("[spec %d] expected %d wire bytes; got %d", specIndex, expLen, len(wire))
		}

		decoded, err := Decode(desc, wire)
		if err != nil {
			t.Fatalf("[spec %d] decode failed: %v", specIndex, err)
		}

		// Short byte values round-trip zero-padded to the declared length.
		expValues := make([]interface{}, len(values))
		copy(expValues, values)
		b := values[4].([]byte)
		padded := make([]byte, 3)
		copy(padded, b)
		expValues[4] = padded

		if !reflect.DeepEqual(decoded.Values, expValues) {
			t.Errorf("[spec %d] expected values %#v; got %#v", specIndex, expValues, decoded.Values)
		}
	}
}

func TestBoundedFloatScaling(t *testing.T) {
	desc := &schema.MessageDescriptor{
		ID: schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "temp", Kind: schema.BoundedFloat, Min: -5, Max: 100, Precision: 2},
		},
	}

	if w := desc.Fields[0].Width(); w != 14 {
		t.Fatalf("expected width 14; got %d", w)
	}

	wire, err := Encode(&Message{Desc: desc, Values: []interface{}{25.75}})
	if err != nil {
		t.Fatal(err)
	}

	// round((25.75 - -5) * 100) = 3075 in 14 bits, left-aligned.
	expWire := []byte{0x30, 0x0C}
	if !bytes.Equal(wire, expWire) {
		t.Fatalf("expected wire % X; got % X", expWire, wire)
	}

	decoded, err := Decode(desc, wire)
	if err != nil {
		t.Fatal(err)
	}
	if got := decoded.Values[0].(float64); got != 25.75 {
		t.Fatalf("expected exactly 25.75; got %v", got)
	}
}

func TestBoundedFloatHalfToEven(t *testing.T) {
	desc := &schema.MessageDescriptor{
		ID: schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "v", Kind: schema.BoundedFloat, Min: 0, Max: 10, Precision: 0},
		},
	}

	specs := []struct {
		value  float64
		expRaw uint64
	}{
		{0.5, 0},  // ties go to the even step
		{1.5, 2},
		{2.5, 2},
		{3.5, 4},
		{2.4, 2},
		{2.6, 3},
	}

	for specIndex, spec := range specs {
		wire, err := Encode(&Message{Desc: desc, Values: []interface{}{spec.value}})
		if err != nil {
			t.Fatalf("[spec %d] encode failed: %v", specIndex, err)
		}
		if got := uint64(wire[0] >> 4); got != spec.expRaw {
			t.Errorf("[spec %d] expected scaled value %d; got %d", specIndex, spec.expRaw, got)
		}
	}
}

func TestEncodeFailures(t *testing.T) {
	desc := &schema.MessageDescriptor{
		ID:       schema.NoID,
		MaxBytes: 2,
		Fields: []schema.FieldDescriptor{
			{Name: "n", Kind: schema.UInt, Lo: 10, Hi: 100},
			{Name: "tag", Kind: schema.FixedString, Length: 2},
		},
	}

	specs := []struct {
		values  []interface{}
		expKind codecerr.Kind
	}{
		{[]interface{}{int64(9), "ok"}, codecerr.OutOfRange},    // below lo
		{[]interface{}{int64(101), "ok"}, codecerr.OutOfRange},  // above hi
		{[]interface{}{"nan", "ok"}, codecerr.OutOfRange},       // wrong type
		{[]interface{}{int64(50), "long"}, codecerr.OutOfRange}, // string too long
		{[]interface{}{int64(50), "\xff\xfe"}, codecerr.OutOfRange},
		{[]interface{}{int64(50)}, codecerr.InvalidSchema}, // value count mismatch
	}

	for specIndex, spec := range specs {
		_, err := Encode(&Message{Desc: desc, Values: spec.values})
		if codecerr.KindOf(err) != spec.expKind {
			t.Errorf("[spec %d] expected %v error; got %v", specIndex, spec.expKind, err)
		}
	}
}

func TestEncodeOversizeMessage(t *testing.T) {
	desc := &schema.MessageDescriptor{
		ID:       schema.NoID,
		MaxBytes: 2,
		Fields: []schema.FieldDescriptor{
			{Name: "blob", Kind: schema.FixedBytes, Length: 3},
		},
	}

	_, err := Encode(&Message{Desc: desc, Values: []interface{}{[]byte{1, 2, 3}}})
	if codecerr.KindOf(err) != codecerr.OversizeMessage {
		t.Fatalf("expected OversizeMessage error; got %v", err)
	}
}

func TestDecodeFailures(t *testing.T) {
	enumDesc := &schema.MessageDescriptor{
		ID: schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "mode", Kind: schema.Enum, Values: []string{"a", "b", "c"}},
		},
	}
	intDesc := &schema.MessageDescriptor{
		ID: schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "n", Kind: schema.UInt, Lo: 0, Hi: 10000},
		},
	}

	specs := []struct {
		desc    *schema.MessageDescriptor
		data    []byte
		expKind codecerr.Kind
	}{
		// Enum index 3 with only 3 declared values.
		{enumDesc, []byte{0xC0}, codecerr.CorruptValue},
		// 14-bit offset 16383 exceeds the 0-10000 range.
		{intDesc, []byte{0xFF, 0xFC}, codecerr.CorruptValue},
		// Not enough bits for the 14-bit field.
		{intDesc, []byte{0xFF}, codecerr.Truncated},
		{intDesc, nil, codecerr.Truncated},
	}

	for specIndex, spec := range specs {
		_, err := Decode(spec.desc, spec.data)
		if codecerr.KindOf(err) != spec.expKind {
			t.Errorf("[spec %d] expected %v error; got %v", specIndex, spec.expKind, err)
		}
	}
}

func TestDecodeIgnoresPadding(t *testing.T) {
	desc := &schema.MessageDescriptor{
		ID: schema.NoID,
		Fields: []schema.FieldDescriptor{
			{Name: "n", Kind: schema.UInt, Lo: 0, Hi: 7},
		},
	}

	// 3-bit field; the 5 padding bits are non-zero but must be ignored.
	decoded, err := Decode(desc, []byte{0xBF})
	if err != nil {
		t.Fatal(err)
	}
	if got := decoded.Values[0].(int64); got != 5 {
		t.Fatalf("expected 5; got %d", got)
	}
}
