package codec

import (
	"github.com/patel999jay/uwacomm/bitpack"
	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

// Message pairs a descriptor with one value per field, in declaration
// order. Values use the canonical codec types: bool, int64, string, []byte
// and float64.
type Message struct {
	Desc   *schema.MessageDescriptor
	Values []interface{}
}

// NewMessage creates an empty message for the descriptor with one nil value
// slot per field.
func NewMessage(desc *schema.MessageDescriptor) *Message {
	return &Message{
		Desc:   desc,
		Values: make([]interface{}, len(desc.Fields)),
	}
}

// Encode produces the mode-1 wire bytes: the bit-packed body alone. The
// receiver must know the schema through other means.
func Encode(msg *Message) ([]byte, error) {
	return encodeBody(msg)
}

// EncodeWithID produces the mode-2 wire bytes: the message id followed by
// the body. The descriptor must carry an id.
func EncodeWithID(msg *Message) ([]byte, error) {
	if msg.Desc.ID == schema.NoID {
		return nil, codecerr.New(codecerr.InvalidSchema, "message %q has no id; id-prefixed encoding requires one", msg.Desc.Name)
	}

	body, err := encodeBody(msg)
	if err != nil {
		return nil, err
	}

	wire, err := AppendMessageID(make([]byte, 0, MessageIDSize(msg.Desc.ID)+len(body)), msg.Desc.ID)
	if err != nil {
		return nil, err
	}
	return append(wire, body...), nil
}

// EncodeRouted produces the mode-3 wire bytes: the routing header, the
// message id and the body.
func EncodeRouted(msg *Message, hdr RoutingHeader) ([]byte, error) {
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	if msg.Desc.ID == schema.NoID {
		return nil, codecerr.New(codecerr.InvalidSchema, "message %q has no id; routed encoding requires one", msg.Desc.Name)
	}

	body, err := encodeBody(msg)
	if err != nil {
		return nil, err
	}

	wire := hdr.appendTo(make([]byte, 0, RoutingHeaderSize+MessageIDSize(msg.Desc.ID)+len(body)))
	if wire, err = AppendMessageID(wire, msg.Desc.ID); err != nil {
		return nil, err
	}
	return append(wire, body...), nil
}

// encodeBody walks the descriptor's ordered field list, concatenating each
// field's bit string into one packer, and pads the result to a byte
// boundary. Nothing is emitted on failure.
func encodeBody(msg *Message) ([]byte, error) {
	desc := msg.Desc
	if len(msg.Values) != len(desc.Fields) {
		return nil, codecerr.New(codecerr.InvalidSchema, "message has %d values but descriptor %q declares %d fields",
			len(msg.Values), desc.Name, len(desc.Fields))
	}

	p := bitpack.NewPacker()
	for i := range desc.Fields {
		if err := encodeField(p, &desc.Fields[i], msg.Values[i]); err != nil {
			return nil, err
		}
	}

	body, _ := p.Finish()
	if desc.MaxBytes > 0 && len(body) > desc.MaxBytes {
		return nil, codecerr.New(codecerr.OversizeMessage, "encoded body is %d bytes, max_bytes is %d", len(body), desc.MaxBytes)
	}
	return body, nil
}
