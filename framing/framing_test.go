package framing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/patel999jay/uwacomm/codecerr"
)

func TestChecksumReferenceVectors(t *testing.T) {
	specs := []struct {
		data     []byte
		expCRC16 uint16
		expCRC32 uint32
	}{
		{[]byte(""), 0xFFFF, 0x00000000},
		{[]byte("123456789"), 0x29B1, 0xCBF43926},
		{[]byte("A"), 0xB915, 0xD3D99E8B},
	}

	for specIndex, spec := range specs {
		if got := Checksum16(spec.data); got != spec.expCRC16 {
			t.Errorf("[spec %d] expected crc16 0x%04X; got 0x%04X", specIndex, spec.expCRC16, got)
		}
		if got := Checksum32(spec.data); got != spec.expCRC32 {
			t.Errorf("[spec %d] expected crc32 0x%08X; got 0x%08X", specIndex, spec.expCRC32, got)
		}
	}
}

func TestFrameLayout(t *testing.T) {
	payload := []byte{0x2A, 0x27, 0x12, 0xBC}

	framed, err := Frame(payload, CRC16)
	if err != nil {
		t.Fatal(err)
	}
	if expLen := 2 + len(payload) + 2; len(framed) != expLen {
		t.Fatalf("expected %d framed bytes; got %d", expLen, len(framed))
	}
	if framed[0] != 0x00 || framed[1] != 0x04 {
		t.Fatalf("expected length prefix 00 04; got % X", framed[:2])
	}
	if !bytes.Equal(framed[2:6], payload) {
		t.Fatalf("expected payload % X; got % X", payload, framed[2:6])
	}

	got, err := Unframe(framed, CRC16)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected payload % X; got % X", payload, got)
	}
}

func TestFrameEmptyPayloadCRC32(t *testing.T) {
	framed, err := Frame(nil, CRC32)
	if err != nil {
		t.Fatal(err)
	}

	// len=0x0000 and CRC32("") = 0x00000000.
	expFramed := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(framed, expFramed) {
		t.Fatalf("expected frame % X; got % X", expFramed, framed)
	}

	payload, err := Unframe(framed, CRC32)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 0 {
		t.Fatalf("expected an empty payload; got % X", payload)
	}
}

func TestUnframeDetectsSingleBitFlips(t *testing.T) {
	payload := []byte("bathy survey leg 3 complete, returning to waypoint alpha")

	for _, kind := range []CRCKind{CRC16, CRC32} {
		framed, err := Frame(payload, kind)
		if err != nil {
			t.Fatal(err)
		}

		// Flip every single bit outside the length prefix.
		for bit := 16; bit < len(framed)*8; bit++ {
			corrupted := make([]byte, len(framed))
			copy(corrupted, framed)
			corrupted[bit/8] ^= 1 << uint(7-bit%8)

			_, err := Unframe(corrupted, kind)
			if codecerr.KindOf(err) != codecerr.CorruptValue {
				t.Fatalf("[%s bit %d] expected CorruptValue error; got %v", kind, bit, err)
			}
			if !errors.Is(err, codecerr.ErrBadChecksum) {
				t.Fatalf("[%s bit %d] expected ErrBadChecksum cause; got %v", kind, bit, err)
			}
		}
	}
}

func TestUnframeErrors(t *testing.T) {
	framed, err := Frame([]byte("payload"), CRC16)
	if err != nil {
		t.Fatal(err)
	}

	specs := []struct {
		framed  []byte
		expKind codecerr.Kind
	}{
		// Too short for the length prefix.
		{[]byte{0x00}, codecerr.Truncated},
		// Length prefix promises more than available.
		{framed[:len(framed)-3], codecerr.Truncated},
		// Trailing bytes beyond what the length prefix promises.
		{append(append([]byte{}, framed...), 0xEE), codecerr.CorruptValue},
		{nil, codecerr.Truncated},
	}

	for specIndex, spec := range specs {
		_, err := Unframe(spec.framed, CRC16)
		if codecerr.KindOf(err) != spec.expKind {
			t.Errorf("[spec %d] expected %v error; got %v", specIndex, spec.expKind, err)
		}
	}
}

func TestFrameOversizePayload(t *testing.T) {
	_, err := Frame(make([]byte, MaxPayloadSize+1), CRC16)
	if codecerr.KindOf(err) != codecerr.OversizeMessage {
		t.Fatalf("expected OversizeMessage error; got %v", err)
	}
}

func TestFrameWithID(t *testing.T) {
	payload := []byte{0xDE, 0xAD}

	framed, err := FrameWithID(payload, 42, CRC32)
	if err != nil {
		t.Fatal(err)
	}

	// FrameWithID(p, id) is byte-identical to Frame(id||p).
	manual, err := Frame(append([]byte{42}, payload...), CRC32)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(framed, manual) {
		t.Fatalf("expected frame % X; got % X", manual, framed)
	}

	id, got, err := UnframeWithID(framed, CRC32)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Fatalf("expected id 42; got %d", id)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected payload % X; got % X", payload, got)
	}
}

func TestUnframeWithIDEmptyPayload(t *testing.T) {
	framed, err := Frame(nil, CRC16)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = UnframeWithID(framed, CRC16)
	if codecerr.KindOf(err) != codecerr.Truncated {
		t.Fatalf("expected Truncated error; got %v", err)
	}
}
