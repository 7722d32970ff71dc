package framing

import (
	"encoding/binary"

	"github.com/patel999jay/uwacomm/codecerr"
)

const (
	// lengthSize is the width of the big-endian length prefix.
	lengthSize = 2

	// MaxPayloadSize is the largest payload representable by the 16-bit
	// length prefix.
	MaxPayloadSize = 0xFFFF
)

// Frame wraps a payload as length-prefix | payload | crc. The length field
// counts the payload bytes only, exclusive of the prefix and the checksum.
func Frame(payload []byte, kind CRCKind) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, codecerr.New(codecerr.OversizeMessage, "payload is %d bytes, the length prefix holds at most %d", len(payload), MaxPayloadSize)
	}

	framed := make([]byte, 0, lengthSize+len(payload)+kind.Size())
	framed = binary.BigEndian.AppendUint16(framed, uint16(len(payload)))
	framed = append(framed, payload...)
	return kind.appendChecksum(framed, payload), nil
}

// Unframe validates the length prefix and the checksum of a framed message
// and returns the payload. Missing bytes are reported as Truncated; a bad
// checksum is a CorruptValue error carrying codecerr.ErrBadChecksum.
func Unframe(framed []byte, kind CRCKind) ([]byte, error) {
	if len(framed) < lengthSize {
		return nil, codecerr.New(codecerr.Truncated, "frame is %d bytes, need at least %d for the length prefix", len(framed), lengthSize)
	}

	payloadLen := int(binary.BigEndian.Uint16(framed))
	want := lengthSize + payloadLen + kind.Size()
	if len(framed) < want {
		return nil, codecerr.New(codecerr.Truncated, "frame is %d bytes, length prefix promises %d", len(framed), want)
	}
	if len(framed) > want {
		return nil, codecerr.New(codecerr.CorruptValue, "frame is %d bytes, length prefix promises %d", len(framed), want)
	}

	payload := framed[lengthSize : lengthSize+payloadLen]
	if err := kind.verify(payload, framed[lengthSize+payloadLen:]); err != nil {
		return nil, err
	}
	return payload, nil
}

// FrameWithID wraps a payload as length-prefix | id | payload | crc. The
// 8-bit numeric id is counted by the length field and covered by the
// checksum; the result is byte-identical to Frame(id||payload). This legacy
// variant is distinct from the mode-2 message id encoding.
func FrameWithID(payload []byte, id uint8, kind CRCKind) ([]byte, error) {
	if len(payload) > MaxPayloadSize-1 {
		return nil, codecerr.New(codecerr.OversizeMessage, "payload is %d bytes, the length prefix holds at most %d with an id", len(payload), MaxPayloadSize-1)
	}

	tagged := make([]byte, 0, 1+len(payload))
	tagged = append(tagged, id)
	tagged = append(tagged, payload...)
	return Frame(tagged, kind)
}

// UnframeWithID validates a frame produced by FrameWithID and returns the
// id and the payload.
func UnframeWithID(framed []byte, kind CRCKind) (uint8, []byte, error) {
	tagged, err := Unframe(framed, kind)
	if err != nil {
		return 0, nil, err
	}
	if len(tagged) < 1 {
		return 0, nil, codecerr.New(codecerr.Truncated, "frame payload is empty, need an id byte")
	}
	return tagged[0], tagged[1:], nil
}
