package bitpack

import "github.com/patel999jay/uwacomm/codecerr"

// Unpacker consumes a bit string produced by a Packer. Like Packers,
// unpackers are single-use and owned by one decode call.
type Unpacker struct {
	data []byte
	pos  int
}

// NewUnpacker creates an unpacker over data. The slice is not copied; the
// caller must not mutate it while the unpacker is in use.
func NewUnpacker(data []byte) *Unpacker {
	return &Unpacker{data: data}
}

// Read consumes width bits and returns them as an unsigned integer.
// Reading zero bits is a no-op that returns 0. It fails with a Truncated
// error if fewer than width bits remain.
func (u *Unpacker) Read(width int) (uint64, error) {
	if width < 0 || width > 64 {
		return 0, codecerr.New(codecerr.OutOfRange, "bit width must be 0-64, got %d", width)
	}
	if remaining := u.Remaining(); remaining < width {
		return 0, codecerr.New(codecerr.Truncated, "need %d bits, have %d", width, remaining)
	}

	var value uint64
	for i := 0; i < width; i++ {
		bit := u.data[u.pos>>3] >> uint(7-u.pos%8) & 1
		value = value<<1 | uint64(bit)
		u.pos++
	}
	return value, nil
}

// ReadBool consumes a single bit as a boolean.
func (u *Unpacker) ReadBool() (bool, error) {
	bit, err := u.Read(1)
	if err != nil {
		return false, err
	}
	return bit == 1, nil
}

// ReadBytes consumes count bytes. The read is not required to start on a
// byte boundary.
func (u *Unpacker) ReadBytes(count int) ([]byte, error) {
	if count < 0 {
		return nil, codecerr.New(codecerr.OutOfRange, "byte count must be non-negative, got %d", count)
	}
	out := make([]byte, count)
	for i := range out {
		b, err := u.Read(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(b)
	}
	return out, nil
}

// Remaining returns the number of unread bits.
func (u *Unpacker) Remaining() int {
	return len(u.data)*8 - u.pos
}

// Pos returns the current read position in bits.
func (u *Unpacker) Pos() int {
	return u.pos
}
