package blake3

import (
	"encoding/binary"
	"math/bits"
)

// Constants and algorithms from the BLAKE3 specification.
// https://github.com/BLAKE3-team/BLAKE3-specs/raw/master/blake3.pdf

const (
	// BlockSize is the size of a single message block that is
	// provided to the compression function.
	BlockSize = 64
	// ChunkSize is the size of a leaf of BLAKE3's Merkle tree.
	ChunkSize = 1024
	// KeySize is the size of a key used for keyed hashing.
	KeySize = 32
	// Size is the size of a default BLAKE3 hash.
	Size = 32

	blocksPerChunk = ChunkSize / BlockSize
	rounds         = 7

	// Values for input d of the BLAKE3 compression function, as
	// specified in table 3 on page 6.
	flagChunkStart        uint32 = 1 << 0
	flagChunkEnd          uint32 = 1 << 1
	flagParent            uint32 = 1 << 2
	flagRoot              uint32 = 1 << 3
	flagKeyedHash         uint32 = 1 << 4
	flagDeriveKeyContext  uint32 = 1 << 5
	flagDeriveKeyMaterial uint32 = 1 << 6
)

// Initialization vectors, as specified in table 1 on page 5.
var iv = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Message word permutation, as specified in table 2 on page 6. It is
// applied to the message between consecutive rounds.
var messagePermutation = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

// The G function, as specified on page 5.
func g(v *[16]uint32, a, b, c, d int, mx, my uint32) {
	v[a] += v[b] + mx
	v[d] = bits.RotateLeft32(v[d]^v[a], -16)
	v[c] += v[d]
	v[b] = bits.RotateLeft32(v[b]^v[c], -12)
	v[a] += v[b] + my
	v[d] = bits.RotateLeft32(v[d]^v[a], -8)
	v[c] += v[d]
	v[b] = bits.RotateLeft32(v[b]^v[c], -7)
}

// A single round: G applied to the columns of the state, followed by
// the diagonals.
func round(v *[16]uint32, m *[16]uint32) {
	g(v, 0, 4, 8, 12, m[0], m[1])
	g(v, 1, 5, 9, 13, m[2], m[3])
	g(v, 2, 6, 10, 14, m[4], m[5])
	g(v, 3, 7, 11, 15, m[6], m[7])
	g(v, 0, 5, 10, 15, m[8], m[9])
	g(v, 1, 6, 11, 12, m[10], m[11])
	g(v, 2, 7, 8, 13, m[12], m[13])
	g(v, 3, 4, 9, 14, m[14], m[15])
}

func permute(m *[16]uint32) {
	var permuted [16]uint32
	for i, j := range messagePermutation {
		permuted[i] = m[j]
	}
	*m = permuted
}

// compressPortable is the compression function, as specified on pages
// 4 to 6. It does not retain any of its arguments.
func compressPortable(h *[8]uint32, m *[16]uint32, t uint64, b uint32, d uint32) [16]uint32 {
	// Initialization, as specified on page 5.
	v := [...]uint32{
		h[0], h[1], h[2], h[3],
		h[4], h[5], h[6], h[7],
		iv[0], iv[1], iv[2], iv[3],
		uint32(t), uint32(t >> 32), b, d,
	}

	schedule := *m
	for r := 0; r < rounds; r++ {
		if r > 0 {
			permute(&schedule)
		}
		round(&v, &schedule)
	}

	// Output of the compression function, as specified on page 6.
	for i := 0; i < 8; i++ {
		v[i] ^= v[i+8]
		v[i+8] ^= h[i]
	}
	return v
}

// compress is the backend used by all nodes of the tree. It may be
// replaced by an accelerated implementation that yields identical
// output.
var compress = compressPortable

// Truncate the output of the compression function to 256 bits to obtain
// a chaining value.
func truncate(in [16]uint32) (out [8]uint32) {
	copy(out[:], in[:])
	return
}

// Concatenate two chaining values to obtain a parent node message.
func concatenate(a *[8]uint32, b *[8]uint32) (out [16]uint32) {
	copy(out[:], (*a)[:])
	copy(out[8:], (*b)[:])
	return
}

func bytesToWords(in *[BlockSize]byte) (out [16]uint32) {
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(in[i*4:])
	}
	return
}

func keyToWords(key []byte) (out [8]uint32) {
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(key[i*4:])
	}
	return
}

func wordsToBytes(in *[16]uint32, out *[BlockSize]byte) {
	for i, v := range in {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
}
