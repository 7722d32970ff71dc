package codec

import (
	"sort"
	"sync"

	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/schema"
)

// Factory constructs an empty typed value for a registered message; the
// decoded field values are applied to it by the caller. A nil factory means
// the message is handled generically.
type Factory func() interface{}

type registryEntry struct {
	desc    *schema.MessageDescriptor
	factory Factory
}

// Registry maps message ids to descriptors for id-based auto-decode.
// Registrations normally happen at program start; reads are safe under any
// number of concurrent readers. Re-registering an identical descriptor
// succeeds and keeps the stored descriptor (a newly supplied factory replaces
// the stored one), while registering a different descriptor under a taken id
// fails.
type Registry struct {
	mutex   sync.RWMutex
	entries map[int]registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]registryEntry)}
}

// DefaultRegistry is the process-wide registry used by the package-level
// Register and DecodeByID helpers.
var DefaultRegistry = NewRegistry()

// Register validates the descriptor and adds it under its id.
func (r *Registry) Register(desc *schema.MessageDescriptor) error {
	return r.RegisterFactory(desc, nil)
}

// RegisterFactory registers a descriptor together with a factory for
// constructing typed values on decode.
func (r *Registry) RegisterFactory(desc *schema.MessageDescriptor, factory Factory) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	if desc.ID == schema.NoID {
		return codecerr.New(codecerr.InvalidSchema, "message %q has no id; registration requires one", desc.Name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, taken := r.entries[desc.ID]; taken {
		if !existing.desc.Equal(desc) {
			return codecerr.New(codecerr.InvalidSchema, "message id %d is already registered to %q with a different schema", desc.ID, existing.desc.Name)
		}
		// Idempotent re-registration; keep the first factory unless a new
		// one is supplied.
		if factory != nil {
			existing.factory = factory
			r.entries[desc.ID] = existing
		}
		return nil
	}

	r.entries[desc.ID] = registryEntry{desc: desc, factory: factory}
	return nil
}

// Lookup returns the descriptor and factory registered under id.
func (r *Registry) Lookup(id int) (*schema.MessageDescriptor, Factory, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, found := r.entries[id]
	return entry.desc, entry.factory, found
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// DecodeByID reads the leading message id of a mode-2 wire message, looks
// the schema up in the registry and decodes the remaining body.
func (r *Registry) DecodeByID(data []byte) (*Message, error) {
	id, size, err := DecodeMessageID(data)
	if err != nil {
		return nil, err
	}

	desc, _, found := r.Lookup(id)
	if !found {
		return nil, codecerr.New(codecerr.UnknownMessageID, "message id %d is not registered", id)
	}
	return decodeBody(desc, data[size:])
}

// DecodeRoutedByID reads a mode-3 wire message, resolving the schema from
// the registry, and returns the routing header alongside the message.
func (r *Registry) DecodeRoutedByID(data []byte) (RoutingHeader, *Message, error) {
	hdr, err := decodeRoutingHeader(data)
	if err != nil {
		return RoutingHeader{}, nil, err
	}
	msg, err := r.DecodeByID(data[RoutingHeaderSize:])
	if err != nil {
		return RoutingHeader{}, nil, err
	}
	return hdr, msg, nil
}

// Register adds a descriptor to the default registry.
func Register(desc *schema.MessageDescriptor) error {
	return DefaultRegistry.Register(desc)
}

// DecodeByID decodes a mode-2 wire message via the default registry.
func DecodeByID(data []byte) (*Message, error) {
	return DefaultRegistry.DecodeByID(data)
}
