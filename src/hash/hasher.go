package hash

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// DefaultHasher hashes common key types with 64-bit xxHash.
// Supported: string, [16|32|64]byte, all int/uint widths, uintptr,
// fmt.Stringer. For other key types supply a custom hasher via WithHasher.
// Panicking on unsupported types is deliberate to avoid silently poor
// hashing.
func DefaultHasher[K comparable](key K) uint64 {
	switch v := any(key).(type) {
	case string:
		return xxhash.Sum64String(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	// Integer-like keys: hash the little-endian bytes of the value.
	case uint8:
		return sum64FromUint64(uint64(v))
	case uint16:
		return sum64FromUint64(uint64(v))
	case uint32:
		return sum64FromUint64(uint64(v))
	case uint64:
		return sum64FromUint64(v)
	case uint:
		return sum64FromUint64(uint64(v))
	case uintptr:
		return sum64FromUint64(uint64(v))
	case int8:
		return sum64FromUint64(uint64(uint8(v)))
	case int16:
		return sum64FromUint64(uint64(uint16(v)))
	case int32:
		return sum64FromUint64(uint64(uint32(v)))
	case int64:
		return sum64FromUint64(uint64(v))
	case int:
		return sum64FromUint64(uint64(v))

	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("hash.DefaultHasher: unsupported key type %T; provide a custom hasher", key))
	}
}

func sum64FromUint64(u uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return xxhash.Sum64(buf[:])
}
