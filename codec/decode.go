package codec

import (
	"github.com/patel999jay/uwacomm/bitpack"
	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

// The wire does not carry the framing mode. Each decode entry point assumes
// one mode; sender and receiver must agree out of band, for example by
// dedicating a framed channel to a single mode.

// Decode reads a mode-1 body against an externally supplied descriptor.
func Decode(desc *schema.MessageDescriptor, data []byte) (*Message, error) {
	return decodeBody(desc, data)
}

// DecodeWithID reads a mode-2 wire message against an externally supplied
// descriptor. When the descriptor carries an id, the decoded id must match
// it.
func DecodeWithID(desc *schema.MessageDescriptor, data []byte) (*Message, error) {
	id, size, err := DecodeMessageID(data)
	if err != nil {
		return nil, err
	}
	if desc.ID != schema.NoID && id != desc.ID {
		return nil, codecerr.New(codecerr.CorruptValue, "decoded message id %d, descriptor %q declares %d", id, desc.Name, desc.ID)
	}
	return decodeBody(desc, data[size:])
}

// DecodeRouted reads a mode-3 wire message against an externally supplied
// descriptor and returns the routing header alongside the message.
func DecodeRouted(desc *schema.MessageDescriptor, data []byte) (RoutingHeader, *Message, error) {
	hdr, err := decodeRoutingHeader(data)
	if err != nil {
		return RoutingHeader{}, nil, err
	}
	msg, err := DecodeWithID(desc, data[RoutingHeaderSize:])
	if err != nil {
		return RoutingHeader{}, nil, err
	}
	return hdr, msg, nil
}

// decodeBody reads the same field widths, in the same order, that encoding
// wrote. Trailing padding bits are ignored.
func decodeBody(desc *schema.MessageDescriptor, data []byte) (*Message, error) {
	u := bitpack.NewUnpacker(data)
	msg := NewMessage(desc)
	for i := range desc.Fields {
		value, err := decodeField(u, &desc.Fields[i])
		if err != nil {
			return nil, err
		}
		msg.Values[i] = value
	}
	return msg, nil
}
