// Package framing provides CRC error-detection framing for codec payloads
// travelling over unreliable acoustic links. A frame is a 16-bit big-endian
// length prefix, the payload, and a trailing CRC over the payload.
package framing

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/patel999jay/uwacomm/codecerr"
)

// CRCKind selects the checksum appended by Frame.
type CRCKind uint8

const (
	// CRC16 is CRC-16/CCITT-FALSE: polynomial 0x1021, initial value
	// 0xFFFF, no reflection, no final XOR.
	CRC16 CRCKind = iota

	// CRC32 is CRC-32/IEEE (ISO-HDLC), the checksum used by Ethernet,
	// gzip and zlib.
	CRC32
)

// String implements fmt.Stringer for CRCKind.
func (k CRCKind) String() string {
	if k == CRC32 {
		return "crc32"
	}
	return "crc16"
}

// Size returns the checksum width in bytes.
func (k CRCKind) Size() int {
	if k == CRC32 {
		return 4
	}
	return 2
}

// Checksum16 computes CRC-16/CCITT-FALSE over data. The check value for
// "123456789" is 0x29B1.
func Checksum16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Checksum32 computes CRC-32/IEEE over data. The check value for
// "123456789" is 0xCBF43926.
func Checksum32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// appendChecksum appends the big-endian checksum of data to dst.
func (k CRCKind) appendChecksum(dst, data []byte) []byte {
	if k == CRC32 {
		return binary.BigEndian.AppendUint32(dst, Checksum32(data))
	}
	return binary.BigEndian.AppendUint16(dst, Checksum16(data))
}

// verify compares the stored big-endian checksum against the recomputed one.
func (k CRCKind) verify(data, stored []byte) error {
	var want, got uint32
	if k == CRC32 {
		want = Checksum32(data)
		got = binary.BigEndian.Uint32(stored)
	} else {
		want = uint32(Checksum16(data))
		got = uint32(binary.BigEndian.Uint16(stored))
	}
	if want != got {
		return codecerr.Wrap(codecerr.ErrBadChecksum, codecerr.CorruptValue, "%s mismatch: computed 0x%0*X, frame carries 0x%0*X",
			k, k.Size()*2, want, k.Size()*2, got)
	}
	return nil
}
