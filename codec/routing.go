package codec

import "github.com/patel999jay/uwacomm/codecerr"

// Broadcast is the destination id that addresses every receiver.
const Broadcast uint8 = 255

// RoutingHeaderSize is the wire size of the mode-3 routing header in bytes.
const RoutingHeaderSize = 3

// RoutingHeader carries the multi-vehicle addressing information prepended
// to mode-3 messages. On the wire it occupies exactly three bytes:
//
//	byte 0: source_id
//	byte 1: dest_id (255 = broadcast)
//	byte 2: priority<<6 | ack<<5, low five bits reserved
//
// Reserved bits are written as zero and ignored on decode.
type RoutingHeader struct {
	SourceID uint8
	DestID   uint8

	// Priority ranges 0 (low) to 3 (high).
	Priority uint8

	// AckRequested is advisory; the transport provides no acknowledgement
	// protocol.
	AckRequested bool
}

// Validate checks the header fields against their wire ranges.
func (h RoutingHeader) Validate() error {
	if h.Priority > 3 {
		return codecerr.New(codecerr.OutOfRange, "priority must be 0-3, got %d", h.Priority)
	}
	return nil
}

// appendTo appends the three header bytes to dst.
func (h RoutingHeader) appendTo(dst []byte) []byte {
	flags := h.Priority << 6
	if h.AckRequested {
		flags |= 1 << 5
	}
	return append(dst, h.SourceID, h.DestID, flags)
}

// decodeRoutingHeader reads a routing header from the head of data.
func decodeRoutingHeader(data []byte) (RoutingHeader, error) {
	if len(data) < RoutingHeaderSize {
		return RoutingHeader{}, codecerr.New(codecerr.Truncated, "need %d routing header bytes, have %d", RoutingHeaderSize, len(data))
	}
	return RoutingHeader{
		SourceID:     data[0],
		DestID:       data[1],
		Priority:     data[2] >> 6,
		AckRequested: data[2]>>5&1 == 1,
	}, nil
}
