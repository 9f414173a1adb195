package encoding

import (
	"math"
)

// SplitFloat32 splits the IEEE 754 bits of f into high & low halves
func SplitFloat32(f float32) (uint16, uint16) {
	return Split32(math.Float32bits(f))
}

// MergeFloat32 is the inverse of SplitFloat32
func MergeFloat32(hi, lo uint16) float32 {
	return math.Float32frombits(Merge16(hi, lo))
}

// FromBytes8 turns a bitmap's backing []byte into a uint8.
// Only the first byte is used.
func FromBytes8(data []byte) uint8 {
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// ToBytes8 turns uint8 into []byte of len 1 (eg. 8 bits)
func ToBytes8(in uint8) []byte {
	return []byte{in}
}

// Split32 uint32 to two uint16
func Split32(in uint32) (uint16, uint16) {
	return uint16(in >> 16), uint16(in)
}

// Merge16 two uint16 to uint32
func Merge16(a, b uint16) uint32 {
	return (uint32(a) << 16) + uint32(b)
}

// Split16 uint16 to two uint8
func Split16(in uint16) (uint8, uint8) {
	return uint8(in >> 8), uint8(in)
}

// Merge8 two uint8 to uint16
func Merge8(a, b uint8) uint16 {
	return (uint16(a) << 8) + uint16(b)
}
