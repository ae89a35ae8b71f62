package blake3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// getRecursiveRootNode computes the root node of the Merkle tree for
// a fully buffered input, by splitting it into a left subtree that
// contains the largest power of two number of chunks and a right
// subtree containing the remainder.
func getRecursiveRootNode(data []byte, key *[8]uint32, flags uint32, chunkCounter uint64) node {
	if len(data) <= ChunkSize {
		c := newChunkState(key, chunkCounter, flags)
		c.write(data)
		return c.getNode()
	}
	totalChunks := (len(data) + ChunkSize - 1) / ChunkSize
	leftChunks := 1
	for leftChunks*2 < totalChunks {
		leftChunks *= 2
	}
	left := getRecursiveRootNode(data[:leftChunks*ChunkSize], key, flags, chunkCounter)
	right := getRecursiveRootNode(data[leftChunks*ChunkSize:], key, flags, chunkCounter+uint64(leftChunks))
	leftChainingValue, rightChainingValue := left.getChainingValue(), right.getChainingValue()
	return newParentNode(&leftChainingValue, &rightChainingValue, key, flags)
}

func TestChainingValueStackMatchesRecursiveTree(t *testing.T) {
	data := make([]byte, 37*ChunkSize+5)
	for i := range data {
		data[i] = byte(i * 7)
	}
	key := keyToWords([]byte("0123456789abcdef0123456789abcdef"))
	for _, sizeBytes := range []int{0, 1, ChunkSize, ChunkSize + 1, 2 * ChunkSize, 3*ChunkSize + 1, 8 * ChunkSize, 8*ChunkSize + 1, 31 * ChunkSize, len(data)} {
		for _, flags := range []uint32{0, flagKeyedHash} {
			k := &iv
			if flags == flagKeyedHash {
				k = &key
			}
			var h Hasher
			h.init(k, flags)
			h.writeUnchecked(data[:sizeBytes])
			require.Equal(t, getRecursiveRootNode(data[:sizeBytes], k, flags, 0), h.getRootNode(), "Input size %d", sizeBytes)
		}
	}
}

func TestChainingValueStackDepth(t *testing.T) {
	t.Run("MirrorsChunkCount", func(t *testing.T) {
		// The number of pending subtrees equals the number of
		// bits set in the number of completed chunks.
		var s chainingValueStack
		var cv [8]uint32
		for totalChunks := uint64(1); totalChunks <= 300; totalChunks++ {
			cv[0] = uint32(totalChunks)
			s.appendChunk(cv, totalChunks, &iv, 0)
			expectedDepth := 0
			for n := totalChunks; n > 0; n >>= 1 {
				expectedDepth += int(n & 1)
			}
			require.Equal(t, expectedDepth, s.depth)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		var s chainingValueStack
		var cv [8]uint32
		for i := 0; i < maximumStackDepth; i++ {
			s.push(&cv)
		}
		require.PanicsWithValue(t, "Chaining value stack exceeds its maximum depth of 54 entries", func() {
			s.push(&cv)
		})
	})
}

func TestMessageSchedule(t *testing.T) {
	// Permuting the message between rounds must yield the message
	// schedule listed in the BLAKE3 specification.
	expectedSchedule := [rounds][16]uint32{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8},
		{3, 4, 10, 12, 13, 2, 7, 14, 6, 5, 9, 0, 11, 15, 8, 1},
		{10, 7, 12, 9, 14, 3, 13, 15, 4, 0, 11, 2, 5, 8, 1, 6},
		{12, 13, 9, 11, 15, 10, 14, 8, 7, 2, 5, 3, 0, 1, 6, 4},
		{9, 14, 11, 5, 8, 12, 15, 1, 13, 3, 0, 10, 2, 6, 4, 7},
		{11, 15, 5, 0, 1, 9, 8, 6, 14, 10, 2, 12, 3, 4, 7, 13},
	}
	m := expectedSchedule[0]
	for r := 1; r < rounds; r++ {
		permute(&m)
		require.Equal(t, expectedSchedule[r], m, "Round %d", r+1)
	}
}
