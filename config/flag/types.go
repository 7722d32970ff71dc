package flag

import (
	"strconv"

	"github.com/patel999jay/uwacomm/config"
)

// Float64Flag provides a thread-safe flag wrapping a float64 value. Its
// value can be dynamically updated via a watched configuration path or
// manually set using its Set method.
type Float64Flag struct {
	flagImpl
}

// NewFloat64 creates a float64 flag with the given default. If a non-empty
// store path is specified the flag watches it and automatically updates its
// value.
func NewFloat64(store *config.Store, path string, def float64) *Float64Flag {
	f := &Float64Flag{}
	f.init(store, path, def, f.mapCfgValue)
	return f
}

// Get the stored flag value.
func (f *Float64Flag) Get() float64 {
	return f.get().(float64)
}

// Set the stored flag value. Calling Set also emits a change event.
func (f *Float64Flag) Set(val float64) {
	f.set(val)
}

func (f *Float64Flag) mapCfgValue(raw string) (interface{}, error) {
	return strconv.ParseFloat(raw, 64)
}

// Uint32Flag provides a thread-safe flag wrapping a uint32 value. Its value
// can be dynamically updated via a watched configuration path or manually
// set using its Set method.
type Uint32Flag struct {
	flagImpl
}

// NewUint32 creates a uint32 flag with the given default. If a non-empty
// store path is specified the flag watches it and automatically updates its
// value.
func NewUint32(store *config.Store, path string, def uint32) *Uint32Flag {
	f := &Uint32Flag{}
	f.init(store, path, def, f.mapCfgValue)
	return f
}

// Get the stored flag value.
func (f *Uint32Flag) Get() uint32 {
	return f.get().(uint32)
}

// Set the stored flag value. Calling Set also emits a change event.
func (f *Uint32Flag) Set(val uint32) {
	f.set(val)
}

func (f *Uint32Flag) mapCfgValue(raw string) (interface{}, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	return uint32(v), nil
}

// BoolFlag provides a thread-safe flag wrapping a bool value. Its value can
// be dynamically updated via a watched configuration path or manually set
// using its Set method.
type BoolFlag struct {
	flagImpl
}

// NewBool creates a bool flag with the given default. If a non-empty store
// path is specified the flag watches it and automatically updates its
// value.
func NewBool(store *config.Store, path string, def bool) *BoolFlag {
	f := &BoolFlag{}
	f.init(store, path, def, f.mapCfgValue)
	return f
}

// Get the stored flag value.
func (f *BoolFlag) Get() bool {
	return f.get().(bool)
}

// Set the stored flag value. Calling Set also emits a change event.
func (f *BoolFlag) Set(val bool) {
	f.set(val)
}

func (f *BoolFlag) mapCfgValue(raw string) (interface{}, error) {
	return strconv.ParseBool(raw)
}

// StringFlag provides a thread-safe flag wrapping a string value. Its value
// can be dynamically updated via a watched configuration path or manually
// set using its Set method.
type StringFlag struct {
	flagImpl
}

// NewString creates a string flag with the given default. If a non-empty
// store path is specified the flag watches it and automatically updates its
// value.
func NewString(store *config.Store, path string, def string) *StringFlag {
	f := &StringFlag{}
	f.init(store, path, def, f.mapCfgValue)
	return f
}

// Get the stored flag value.
func (f *StringFlag) Get() string {
	return f.get().(string)
}

// Set the stored flag value. Calling Set also emits a change event.
func (f *StringFlag) Set(val string) {
	f.set(val)
}

func (f *StringFlag) mapCfgValue(raw string) (interface{}, error) {
	return raw, nil
}
