package codec

import (
	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

// Message ids travel as one or two bytes with a continuation flag in the
// high bit of the first byte:
//
//	0-127:     0xxxxxxx
//	128-32767: 1xxxxxxx xxxxxxxx  (15-bit value, big-endian)
//
// This is not a general varint; exactly one or two bytes are valid.

// MessageIDSize returns the number of bytes the id occupies on the wire.
func MessageIDSize(id int) int {
	if id > 127 {
		return 2
	}
	return 1
}

// AppendMessageID appends the wire form of id to dst.
func AppendMessageID(dst []byte, id int) ([]byte, error) {
	if id < 0 || id > schema.MaxMessageID {
		return dst, codecerr.New(codecerr.OutOfRange, "message id must be 0-%d, got %d", schema.MaxMessageID, id)
	}
	if id <= 127 {
		return append(dst, byte(id)), nil
	}
	return append(dst, 0x80|byte(id>>8), byte(id)), nil
}

// DecodeMessageID reads a message id from the head of data and returns the
// id together with the number of bytes it occupied.
func DecodeMessageID(data []byte) (id, size int, err error) {
	if len(data) == 0 {
		return 0, 0, codecerr.New(codecerr.Truncated, "no bytes available for the message id")
	}
	if data[0]&0x80 == 0 {
		return int(data[0]), 1, nil
	}
	if len(data) < 2 {
		return 0, 0, codecerr.New(codecerr.Truncated, "message id continuation byte missing")
	}
	return int(data[0]&0x7F)<<8 | int(data[1]), 2, nil
}
