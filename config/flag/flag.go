// Package flag provides typed thread-safe flags whose values can be
// dynamically updated through a watched configuration store. Components
// construct flags with a built-in default and a store path; operators
// override the default via the store (or the environment seeding layer)
// without restarting.
package flag

import (
	"sync"
	"sync/atomic"

	"github.com/patel999jay/uwacomm/config"
)

type flagImpl struct {
	// The wrapped value.
	val atomic.Value

	// A channel that receives a token whenever the flag value changes.
	changedChan chan struct{}

	// A function converting an incoming store value into the typed flag
	// value. Unparseable values are ignored, keeping the previous value.
	valueMapper func(string) (interface{}, error)

	// Guards cancelFn.
	mutex    sync.Mutex
	cancelFn config.UnsubscribeFunc
}

func (f *flagImpl) init(store *config.Store, path string, def interface{}, valueMapper func(string) (interface{}, error)) {
	f.valueMapper = valueMapper
	f.changedChan = make(chan struct{}, 1)
	f.val.Store(def)

	if store == nil || path == "" {
		return
	}

	values, unsubscribe := store.Watch(path)
	f.mutex.Lock()
	f.cancelFn = unsubscribe
	f.mutex.Unlock()

	go func() {
		for raw := range values {
			val, err := f.valueMapper(raw)
			if err != nil {
				continue
			}
			f.set(val)
		}
	}()
}

// get returns the stored value.
func (f *flagImpl) get() interface{} {
	return f.val.Load()
}

// set stores a value and emits a change event. At most one event is
// buffered; further events are dropped until the pending one is received.
func (f *flagImpl) set(val interface{}) {
	f.val.Store(val)

	select {
	case f.changedChan <- struct{}{}:
	default:
	}
}

// ChangeChan returns a channel where clients can listen for flag value
// change events.
func (f *flagImpl) ChangeChan() <-chan struct{} {
	return f.changedChan
}

// CancelDynamicUpdates disables dynamic flag updates from the
// configuration store. The flag keeps its current value and can still be
// updated manually via Set.
func (f *flagImpl) CancelDynamicUpdates() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.cancelFn == nil {
		return
	}
	f.cancelFn()
	f.cancelFn = nil
}
