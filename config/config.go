// Package config provides a process-wide watched configuration store used
// to tune uwacomm components at runtime. Values are flat string key/value
// pairs addressed by "/"-separated paths such as "modem/mock/delay".
//
// On startup the global store is seeded from environment variables with the
// UWACOMM_ prefix: UWACOMM_MODEM_MOCK_DELAY=0.5 populates the
// "modem/mock/delay" key.
package config

import (
	"os"
	"strings"
	"sync"
)

// UnsubscribeFunc cancels a watcher registered on a store. After the first
// call, subsequent calls have no effect.
type UnsubscribeFunc func()

type watcher struct {
	changeChan chan string

	// Closed when the watcher is destroyed, before changeChan is closed,
	// so pending notifications never write to a closed channel.
	doneChan chan struct{}
}

// Store is a thread-safe watched key/value store. The zero value is not
// usable; create stores with NewStore.
type Store struct {
	mutex    sync.Mutex
	values   map[string]string
	watchers map[string][]*watcher
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values:   make(map[string]string),
		watchers: make(map[string][]*watcher),
	}
}

// Default is the global store consulted by the flag helpers and seeded from
// the environment.
var Default = NewStore()

// Get returns the value stored under path.
func (s *Store) Get(path string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	value, exists := s.values[path]
	return value, exists
}

// Set stores a value and notifies any watchers of the path. Watchers that
// have not drained a previous notification only observe the latest value.
func (s *Store) Set(path, value string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.values[path] = value
	for _, w := range s.watchers[path] {
		w.notify(value)
	}
}

// SetDefault stores a value only if the path has no value yet. Components
// register their built-in defaults this way so that environment seeding and
// explicit Set calls win.
func (s *Store) SetDefault(path, value string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.values[path]; exists {
		return
	}
	s.values[path] = value
	for _, w := range s.watchers[path] {
		w.notify(value)
	}
}

// Watch registers a watcher for a path. If the path already has a value the
// watcher is immediately notified with it. The returned channel receives
// subsequent values until the unsubscribe function is invoked.
func (s *Store) Watch(path string) (<-chan string, UnsubscribeFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	w := &watcher{
		changeChan: make(chan string, 1),
		doneChan:   make(chan struct{}),
	}
	s.watchers[path] = append(s.watchers[path], w)

	if value, exists := s.values[path]; exists {
		w.notify(value)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mutex.Lock()
			defer s.mutex.Unlock()

			close(w.doneChan)
			list := s.watchers[path]
			for i, candidate := range list {
				if candidate == w {
					s.watchers[path] = append(list[:i], list[i+1:]...)
					break
				}
			}
			close(w.changeChan)
		})
	}
	return w.changeChan, unsubscribe
}

// Reset removes all values and detaches all watchers. It is intended for
// tests.
func (s *Store) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.values = make(map[string]string)
	for _, list := range s.watchers {
		for _, w := range list {
			close(w.doneChan)
			close(w.changeChan)
		}
	}
	s.watchers = make(map[string][]*watcher)
}

// notify delivers a value without blocking, keeping only the most recent
// value for slow consumers. Callers must hold the store mutex.
func (w *watcher) notify(value string) {
	select {
	case <-w.doneChan:
		return
	default:
	}

	select {
	case <-w.changeChan:
	default:
	}
	w.changeChan <- value
}

// envPrefix marks the environment variables imported into the store.
const envPrefix = "UWACOMM_"

func init() {
	seedFromEnv(Default, os.Environ())
}

// seedFromEnv imports prefixed environment variables, mapping
// UWACOMM_MODEM_MOCK_DELAY to "modem/mock/delay".
func seedFromEnv(s *Store, environ []string) {
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		path := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, envPrefix), "_", "/"))
		if path == "" {
			continue
		}
		s.Set(path, value)
	}
}
