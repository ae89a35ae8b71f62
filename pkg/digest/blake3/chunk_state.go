package blake3

// chunkState accumulates up to 1 KiB of data as a sequence of 64 byte
// blocks. Every block except the last one is compressed as soon as it
// is known that more data follows it. The final block is retained, as
// only upon completion of the chunk is it known that it needs to be
// compressed with the CHUNK_END flag.
type chunkState struct {
	// Construction of the current block.
	block     [BlockSize]byte
	blockSize uint32

	// Construction of the current chunk.
	chainingValue    [8]uint32
	blocksCompressed uint32
	counter          uint64
	flags            uint32
}

func newChunkState(key *[8]uint32, counter uint64, flags uint32) chunkState {
	return chunkState{
		chainingValue: *key,
		counter:       counter,
		flags:         flags,
	}
}

// getSizeBytes returns the number of bytes absorbed by the chunk.
func (c *chunkState) getSizeBytes() int {
	return BlockSize*int(c.blocksCompressed) + int(c.blockSize)
}

func (c *chunkState) getStartFlag() uint32 {
	if c.blocksCompressed == 0 {
		return flagChunkStart
	}
	return 0
}

// write data into the chunk. The caller must ensure that the total
// amount of data written does not exceed ChunkSize.
func (c *chunkState) write(b []byte) {
	for len(b) > 0 {
		if c.blockSize == BlockSize {
			// Current 64 byte block is complete and more
			// data follows. It can't be the final block.
			m := bytesToWords(&c.block)
			c.chainingValue = truncate(compress(&c.chainingValue, &m, c.counter, BlockSize, c.flags|c.getStartFlag()))
			c.blocksCompressed++
			c.blockSize = 0
		}

		// Store more data within the current 64 byte block.
		n := copy(c.block[c.blockSize:], b)
		b = b[n:]
		c.blockSize += uint32(n)
	}
}

// getNode returns the node corresponding to the final block of the
// chunk. The chunk itself is left unmodified.
func (c *chunkState) getNode() node {
	// Pad the data in the final 64 byte block with trailing zeroes.
	var block [BlockSize]byte
	copy(block[:], c.block[:c.blockSize])
	m := bytesToWords(&block)
	return newChunkNode(&c.chainingValue, &m, c.counter, c.blockSize, c.flags|c.getStartFlag())
}
