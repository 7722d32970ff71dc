package codec

import (
	"reflect"
	"sync"
	"testing"

	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

func TestRegistryDecodeByID(t *testing.T) {
	r := NewRegistry()
	desc := pingDesc(105)
	if err := r.Register(desc); err != nil {
		t.Fatal(err)
	}

	wire, err := EncodeWithID(&Message{Desc: desc, Values: []interface{}{int64(42)}})
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := r.DecodeByID(wire)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Desc != desc {
		t.Fatal("expected the registered descriptor instance")
	}
	if expValues := []interface{}{int64(42)}; !reflect.DeepEqual(decoded.Values, expValues) {
		t.Fatalf("expected values %#v; got %#v", expValues, decoded.Values)
	}
}

func TestRegistryDecodeEmptyMessage(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(emptyDesc(42)); err != nil {
		t.Fatal(err)
	}

	decoded, err := r.DecodeByID([]byte{0x2A})
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Values) != 0 {
		t.Fatalf("expected an empty message; got %+v", decoded.Values)
	}
}

func TestRegistryUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.DecodeByID([]byte{0x05})
	if codecerr.KindOf(err) != codecerr.UnknownMessageID {
		t.Fatalf("expected UnknownMessageID error; got %v", err)
	}
}

func TestRegistryIdempotentRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(pingDesc(7)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(pingDesc(7)); err != nil {
		t.Fatalf("expected idempotent re-registration to succeed; got %v", err)
	}

	conflicting := pingDesc(7)
	conflicting.Fields[0].Hi = 1023
	err := r.Register(conflicting)
	if codecerr.KindOf(err) != codecerr.InvalidSchema {
		t.Fatalf("expected InvalidSchema error; got %v", err)
	}
}

func TestRegistryRejectsMissingID(t *testing.T) {
	r := NewRegistry()
	err := r.Register(pingDesc(schema.NoID))
	if codecerr.KindOf(err) != codecerr.InvalidSchema {
		t.Fatalf("expected InvalidSchema error; got %v", err)
	}
}

func TestRegistryIDs(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int{300, 5, 42} {
		if err := r.Register(pingDesc(id)); err != nil {
			t.Fatal(err)
		}
	}
	if expIDs := []int{5, 42, 300}; !reflect.DeepEqual(r.IDs(), expIDs) {
		t.Fatalf("expected ids %v; got %v", expIDs, r.IDs())
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	r := NewRegistry()
	desc := pingDesc(9)
	if err := r.Register(desc); err != nil {
		t.Fatal(err)
	}
	wire, err := EncodeWithID(&Message{Desc: desc, Values: []interface{}{int64(1)}})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := r.DecodeByID(wire); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRegistryDecodeRoutedByID(t *testing.T) {
	r := NewRegistry()
	desc := pingDesc(10)
	if err := r.Register(desc); err != nil {
		t.Fatal(err)
	}

	hdr := RoutingHeader{SourceID: 3, DestID: Broadcast, Priority: 1}
	wire, err := EncodeRouted(&Message{Desc: desc, Values: []interface{}{int64(200)}}, hdr)
	if err != nil {
		t.Fatal(err)
	}

	gotHdr, msg, err := r.DecodeRoutedByID(wire)
	if err != nil {
		t.Fatal(err)
	}
	if gotHdr != hdr {
		t.Fatalf("expected header %+v; got %+v", hdr, gotHdr)
	}
	if got := msg.Values[0].(int64); got != 200 {
		t.Fatalf("expected seq 200; got %d", got)
	}
}
