package blake3

import (
	"io"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// node in the BLAKE3 Merkle tree. It holds all of the inputs of a
// single call to the compression function, except for the ROOT flag,
// which is only known once the tree has been completed.
type node struct {
	chainingValue [8]uint32
	m             [16]uint32
	counter       uint64
	blockSize     uint32
	flags         uint32
}

// newChunkNode creates a node for the final block of a chunk of 1 KiB
// of data or less.
func newChunkNode(chainingValue *[8]uint32, m *[16]uint32, counter uint64, blockSize uint32, flags uint32) node {
	return node{
		chainingValue: *chainingValue,
		m:             *m,
		counter:       counter,
		blockSize:     blockSize,
		flags:         flags | flagChunkEnd,
	}
}

// newParentNode creates a node whose message consists of the chaining
// values of its left and right children. Parent nodes always use a
// counter of zero and a full block.
func newParentNode(left *[8]uint32, right *[8]uint32, key *[8]uint32, flags uint32) node {
	return node{
		chainingValue: *key,
		m:             concatenate(left, right),
		blockSize:     BlockSize,
		flags:         flags | flagParent,
	}
}

// getChainingValue compresses the node as a non-root node of the tree.
func (n *node) getChainingValue() [8]uint32 {
	return truncate(compress(&n.chainingValue, &n.m, n.counter, n.blockSize, n.flags))
}

// getOutputBlock compresses the node as the root of the tree. The
// output block counter takes the place of the chunk counter.
func (n *node) getOutputBlock(outputCounter uint64, out *[BlockSize]byte) {
	v := compress(&n.chainingValue, &n.m, outputCounter, n.blockSize, n.flags|flagRoot)
	wordsToBytes(&v, out)
}

// appendHashValue appends outputSizeBytes of hash output to b. Because
// BLAKE3 is an Extendable-Output Function (XOF), this may exceed the
// size of a single output block.
func (n *node) appendHashValue(outputSizeBytes int, b []byte) []byte {
	l := len(b)
	b = append(b, make([]byte, outputSizeBytes)...)
	out := b[l:]
	var block [BlockSize]byte
	for counter := uint64(0); len(out) > 0; counter++ {
		n.getOutputBlock(counter, &block)
		out = out[copy(out, block[:]):]
	}
	return b
}

// OutputReader produces the output of a finalized Hasher as a stream of
// up to 2^64-1 bytes. The first Size bytes are identical to the
// output of Hasher.Finalize().
type OutputReader struct {
	root       node
	block      [BlockSize]byte
	blockValid bool
	offset     uint64
}

func newOutputReader(root node) *OutputReader {
	return &OutputReader{root: root}
}

// Read output of the hash function. The call always fills p entirely,
// unless the end of the output stream is reached.
func (r *OutputReader) Read(p []byte) (int, error) {
	if r.offset == math.MaxUint64 {
		return 0, io.EOF
	}
	if remaining := math.MaxUint64 - r.offset; uint64(len(p)) > remaining {
		p = p[:remaining]
	}
	nTotal := len(p)
	for len(p) > 0 {
		blockOffset := r.offset % BlockSize
		if blockOffset == 0 || !r.blockValid {
			r.root.getOutputBlock(r.offset/BlockSize, &r.block)
			r.blockValid = true
		}
		n := copy(p, r.block[blockOffset:])
		p = p[n:]
		r.offset += uint64(n)
	}
	return nTotal, nil
}

// Seek to a position within the output stream. Because every output
// block is computed independently, seeking is a constant time
// operation. Seeking relative to the end of the stream is not
// supported.
func (r *OutputReader) Seek(offset int64, whence int) (int64, error) {
	newOffset := r.offset
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, status.Errorf(codes.InvalidArgument, "Negative seek position: %d", offset)
		}
		newOffset = uint64(offset)
	case io.SeekCurrent:
		if offset < 0 {
			if uint64(-offset) > newOffset {
				return 0, status.Errorf(codes.InvalidArgument, "Negative seek position: %d", int64(newOffset)+offset)
			}
			newOffset -= uint64(-offset)
		} else {
			if uint64(offset) > math.MaxUint64-newOffset {
				return 0, status.Errorf(codes.InvalidArgument, "Seek position exceeds %d: %d + %d", int64(math.MaxInt64), newOffset, offset)
			}
			newOffset += uint64(offset)
		}
	default:
		return 0, status.Errorf(codes.InvalidArgument, "Unsupported seek whence: %d", whence)
	}
	// Positions must be representable as the int64 return value.
	if newOffset > math.MaxInt64 {
		return 0, status.Errorf(codes.InvalidArgument, "Seek position exceeds %d: %d", int64(math.MaxInt64), newOffset)
	}
	if newOffset/BlockSize != r.offset/BlockSize {
		r.blockValid = false
	}
	r.offset = newOffset
	return int64(r.offset), nil
}
