// Package uwacomm implements a schema-driven compact binary codec for
// bandwidth-constrained links such as underwater acoustic modems. Given a
// message schema declared through struct tags, it deterministically
// produces the smallest bit string that can represent any legal value of
// the schema, and inverts that mapping losslessly.
//
// This package is the convenience surface over the subpackages: it derives
// descriptors from tagged structs (see package schema for the tag grammar)
// and drives the codec. Three wire modes are available:
//
//	Marshal/Unmarshal             mode 1: body only, schema known out of band
//	MarshalWithID/UnmarshalWithID mode 2: message id prefix, self-describing
//	MarshalRouted/UnmarshalRouted mode 3: routing header + message id prefix
//
// The mode is not carried on the wire; sender and receiver must agree per
// channel.
package uwacomm

import (
	"reflect"

	"github.com/patel999jay/uwacomm/codec"
	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

// RoutingHeader is the mode-3 addressing header.
type RoutingHeader = codec.RoutingHeader

// Broadcast is the destination id that addresses every receiver.
const Broadcast = codec.Broadcast

// Marshal encodes a tagged struct as a mode-1 body.
func Marshal(v interface{}) ([]byte, error) {
	msg, err := message(v)
	if err != nil {
		return nil, err
	}
	return codec.Encode(msg)
}

// MarshalWithID encodes a tagged struct as a mode-2 wire message. The type
// must declare an id via the schema.Identifier interface.
func MarshalWithID(v interface{}) ([]byte, error) {
	msg, err := message(v)
	if err != nil {
		return nil, err
	}
	return codec.EncodeWithID(msg)
}

// MarshalRouted encodes a tagged struct as a mode-3 wire message with the
// given routing header.
func MarshalRouted(v interface{}, hdr RoutingHeader) ([]byte, error) {
	msg, err := message(v)
	if err != nil {
		return nil, err
	}
	return codec.EncodeRouted(msg, hdr)
}

// Unmarshal decodes a mode-1 body into a tagged struct pointer.
func Unmarshal(data []byte, v interface{}) error {
	desc, err := schema.Describe(v)
	if err != nil {
		return err
	}
	msg, err := codec.Decode(desc, data)
	if err != nil {
		return err
	}
	return schema.Apply(v, msg.Values)
}

// UnmarshalWithID decodes a mode-2 wire message into a tagged struct
// pointer, verifying the wire id against the type's declared id.
func UnmarshalWithID(data []byte, v interface{}) error {
	desc, err := schema.Describe(v)
	if err != nil {
		return err
	}
	msg, err := codec.DecodeWithID(desc, data)
	if err != nil {
		return err
	}
	return schema.Apply(v, msg.Values)
}

// UnmarshalRouted decodes a mode-3 wire message into a tagged struct
// pointer and returns the routing header.
func UnmarshalRouted(data []byte, v interface{}) (RoutingHeader, error) {
	desc, err := schema.Describe(v)
	if err != nil {
		return RoutingHeader{}, err
	}
	hdr, msg, err := codec.DecodeRouted(desc, data)
	if err != nil {
		return RoutingHeader{}, err
	}
	return hdr, schema.Apply(v, msg.Values)
}

// Register adds a tagged struct type to the default registry so that
// DecodeByID can resolve its id. The type must declare an id via the
// schema.Identifier interface. Registration is idempotent.
func Register(v interface{}) error {
	desc, err := schema.Describe(v)
	if err != nil {
		return err
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	factory := func() interface{} {
		return reflect.New(t).Interface()
	}
	return codec.DefaultRegistry.RegisterFactory(desc, factory)
}

// DecodeByID decodes a mode-2 wire message by resolving its leading id in
// the default registry. Types added with Register come back as populated
// struct pointers; descriptor-only registrations come back as
// *codec.Message values.
func DecodeByID(data []byte) (interface{}, error) {
	id, size, err := codec.DecodeMessageID(data)
	if err != nil {
		return nil, err
	}

	desc, factory, found := codec.DefaultRegistry.Lookup(id)
	if !found {
		return nil, codecerr.New(codecerr.UnknownMessageID, "message id %d is not registered", id)
	}

	msg, err := codec.Decode(desc, data[size:])
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return msg, nil
	}

	v := factory()
	if err = schema.Apply(v, msg.Values); err != nil {
		return nil, err
	}
	return v, nil
}

func message(v interface{}) (*codec.Message, error) {
	desc, err := schema.Describe(v)
	if err != nil {
		return nil, err
	}
	values, err := schema.ValuesOf(v)
	if err != nil {
		return nil, err
	}
	return &codec.Message{Desc: desc, Values: values}, nil
}
