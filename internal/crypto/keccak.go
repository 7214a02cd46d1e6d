package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the legacy Keccak-256 digest of the concatenated parts.
// Commitments, boost source keys, randomness and state digests all use it so
// any observer can recompute them from public battle history.
func Keccak256(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Uint64 folds the first 8 bytes of a digest into a little-endian uint64.
func Uint64(digest [32]byte) uint64 {
	return binary.LittleEndian.Uint64(digest[:8])
}

// Derive returns an independent sub-random value for index.
// Derive(seed, i) for distinct i do not correlate with each other or with seed.
func Derive(seed, index uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], index)
	return Uint64(Keccak256(buf[:]))
}
