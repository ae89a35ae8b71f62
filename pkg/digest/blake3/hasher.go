// Package blake3 implements the BLAKE3 cryptographic hash function,
// including keyed hashing, key derivation and extendable output.
//
// The Merkle tree is constructed incrementally, one chunk at a time,
// using a bounded stack of chaining values. The output is identical to
// that of any other BLAKE3 implementation.
package blake3

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errAlreadyFinalized = status.Error(codes.FailedPrecondition, "Hasher has already been finalized")

// Hasher computes a BLAKE3 hash over a stream of data. A Hasher may be
// finalized only once. Afterwards it needs to be reinitialized by
// calling Reset() or one of the Init*() functions.
//
// Hasher is not safe for concurrent use.
type Hasher struct {
	key      [8]uint32
	flags    uint32
	chunk    chunkState
	stack    chainingValueStack
	finished bool
}

// New creates a Hasher that computes a regular, unkeyed BLAKE3 hash.
func New() *Hasher {
	var h Hasher
	h.InitDefault()
	return &h
}

// NewKeyed creates a Hasher that computes a keyed BLAKE3 hash, which
// may be used as a message authentication code. The key must be
// exactly KeySize bytes in size.
func NewKeyed(key []byte) (*Hasher, error) {
	var h Hasher
	if err := h.InitKeyed(key); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewDeriveKey creates a Hasher that operates in key derivation mode.
// Data written into it is treated as key material, while the output is
// a key that is specific to the provided context string.
//
// The context string should be hardcoded, globally unique and
// application specific, e.g. "example.com 2019-12-25 16:18:03 session
// tokens v1".
func NewDeriveKey(context string) *Hasher {
	var h Hasher
	h.InitDeriveKey(context)
	return &h
}

func (h *Hasher) init(key *[8]uint32, flags uint32) {
	h.key = *key
	h.flags = flags
	h.Reset()
}

// InitDefault reinitializes the Hasher to compute an unkeyed hash.
func (h *Hasher) InitDefault() {
	h.init(&iv, 0)
}

// InitKeyed reinitializes the Hasher to compute a keyed hash. The
// state of the Hasher is left untouched if the key is invalid.
func (h *Hasher) InitKeyed(key []byte) error {
	if len(key) != KeySize {
		return status.Errorf(codes.InvalidArgument, "Key is %d bytes in size, while %d bytes were expected", len(key), KeySize)
	}
	keyWords := keyToWords(key)
	h.init(&keyWords, flagKeyedHash)
	return nil
}

// InitDeriveKey reinitializes the Hasher to operate in key derivation
// mode. The context string is hashed first, yielding the key that is
// used to hash the key material that is written afterwards.
func (h *Hasher) InitDeriveKey(context string) {
	h.init(&iv, flagDeriveKeyContext)
	h.writeUnchecked([]byte(context))
	n := h.getRootNode()
	contextKey := n.appendHashValue(KeySize, nil)
	contextKeyWords := keyToWords(contextKey)
	h.init(&contextKeyWords, flagDeriveKeyMaterial)
}

// Reset the Hasher to its initial state, retaining the mode and key
// that were provided upon initialization.
func (h *Hasher) Reset() {
	h.chunk = newChunkState(&h.key, 0, h.flags)
	h.stack.reset()
	h.finished = false
}

// Clone returns a copy of the Hasher, having the same state. Data may
// be written to both copies independently.
func (h *Hasher) Clone() *Hasher {
	c := *h
	return &c
}

// Write data into the Hasher. The output does not depend on how data
// is split across calls.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.finished {
		return 0, errAlreadyFinalized
	}
	h.writeUnchecked(p)
	return len(p), nil
}

func (h *Hasher) writeUnchecked(p []byte) {
	for len(p) > 0 {
		if h.chunk.getSizeBytes() == ChunkSize {
			// Current 1024 byte chunk is complete and more
			// data follows. Compute the chunk's chaining
			// value and store it on the chaining value stack.
			n := h.chunk.getNode()
			totalChunks := h.chunk.counter + 1
			h.stack.appendChunk(n.getChainingValue(), totalChunks, &h.key, h.flags)
			h.chunk = newChunkState(&h.key, totalChunks, h.flags)
		}

		nWrite := ChunkSize - h.chunk.getSizeBytes()
		if nWrite > len(p) {
			nWrite = len(p)
		}
		h.chunk.write(p[:nWrite])
		p = p[nWrite:]
	}
}

// getRootNode returns the root node of the Merkle tree that
// corresponds with all of the data that has been written.
func (h *Hasher) getRootNode() node {
	return h.stack.getRootNode(h.chunk.getNode(), &h.key, h.flags)
}

func (h *Hasher) finish() (node, error) {
	if h.finished {
		return node{}, errAlreadyFinalized
	}
	h.finished = true
	return h.getRootNode(), nil
}

// Finalize the Hasher, returning a hash of Size bytes.
func (h *Hasher) Finalize() (out [Size]byte, err error) {
	n, err := h.finish()
	if err != nil {
		return
	}
	var block [BlockSize]byte
	n.getOutputBlock(0, &block)
	copy(out[:], block[:])
	return
}

// FinalizeXOF finalizes the Hasher, returning a hash of arbitrary
// length. The first Size bytes are identical to the output of
// Finalize().
func (h *Hasher) FinalizeXOF(length int) ([]byte, error) {
	if length < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid output length: %d bytes", length)
	}
	n, err := h.finish()
	if err != nil {
		return nil, err
	}
	return n.appendHashValue(length, make([]byte, 0, length)), nil
}

// XOF finalizes the Hasher, returning an OutputReader that can be used
// to read an arbitrary amount of output.
func (h *Hasher) XOF() (*OutputReader, error) {
	n, err := h.finish()
	if err != nil {
		return nil, err
	}
	return newOutputReader(n), nil
}

// Sum256 returns the unkeyed BLAKE3 hash of data.
func Sum256(data []byte) [Size]byte {
	var h Hasher
	h.InitDefault()
	h.writeUnchecked(data)
	n := h.getRootNode()
	var block [BlockSize]byte
	n.getOutputBlock(0, &block)
	var out [Size]byte
	copy(out[:], block[:])
	return out
}

// DeriveKey derives a key from key material for a given context
// string, filling all of out.
func DeriveKey(context string, material []byte, out []byte) {
	var h Hasher
	h.InitDeriveKey(context)
	h.writeUnchecked(material)
	n := h.getRootNode()
	copy(out, n.appendHashValue(len(out), nil))
}
