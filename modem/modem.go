// Package modem defines a vendor-neutral driver interface for acoustic
// modems together with a simulated implementation for testing without
// hardware. Real hardware adapters (serial or TCP attached) implement the
// same Driver interface so that application code is portable between the
// simulation and the sea.
package modem

import (
	"errors"
	"io"
)

// Broadcast is the destination id that addresses every receiver in range.
const Broadcast uint8 = 255

// Handler receives a delivered frame together with the id of the vehicle
// that transmitted it. Handlers are invoked from the driver's delivery
// worker and must not block or call back into the driver synchronously.
type Handler func(data []byte, src uint8)

// Driver is implemented by acoustic modem backends.
//
// Drivers follow the dial/close lifecycle: Dial starts relaying frames,
// Close terminates any pending deliveries and detaches all registered
// handlers. A closed driver can be dialed again.
type Driver interface {
	// All drivers must implement io.Closer to clean up and shut down.
	io.Closer

	// Dial connects the driver and starts relaying frames.
	Dial() error

	// SendFrame transmits a frame to the vehicle with the given id.
	// Frames larger than the modem's MTU fail synchronously with an
	// OversizeMessage error; anything that happens to the frame after
	// acceptance (loss, corruption) is a channel outcome, not an error.
	SendFrame(data []byte, dest uint8) error

	// HandleFrame registers a handler for received frames. Multiple
	// handlers may be registered; each delivery is fanned out to all of
	// them.
	HandleFrame(h Handler)
}

// Driver lifecycle errors.
var (
	ErrClosed = errors.New("modem is closed")
)
