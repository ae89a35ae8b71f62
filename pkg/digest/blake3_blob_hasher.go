package digest

import (
	"hash"

	"github.com/buildbarn/bb-blake3/pkg/digest/blake3"
)

type blake3BlobHasher struct {
	h               *blake3.Hasher
	outputSizeBytes int
}

// NewBLAKE3Hasher creates a hash.Hash for regular, unkeyed BLAKE3.
// Because BLAKE3 is an Extendable-Output Function (XOF), the size of
// the output needs to be specified.
func NewBLAKE3Hasher(outputSizeBytes int) hash.Hash {
	return &blake3BlobHasher{
		h:               blake3.New(),
		outputSizeBytes: outputSizeBytes,
	}
}

// NewKeyedBLAKE3Hasher creates a hash.Hash for keyed BLAKE3, which may
// be used to compute message authentication codes.
func NewKeyedBLAKE3Hasher(key []byte, outputSizeBytes int) (hash.Hash, error) {
	h, err := blake3.NewKeyed(key)
	if err != nil {
		return nil, err
	}
	return &blake3BlobHasher{
		h:               h,
		outputSizeBytes: outputSizeBytes,
	}, nil
}

// NewDeriveKeyBLAKE3Hasher creates a hash.Hash that uses BLAKE3's key
// derivation mode. Data written to the hasher is the key material.
func NewDeriveKeyBLAKE3Hasher(context string, outputSizeBytes int) hash.Hash {
	return &blake3BlobHasher{
		h:               blake3.NewDeriveKey(context),
		outputSizeBytes: outputSizeBytes,
	}
}

func (h *blake3BlobHasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

func (h *blake3BlobHasher) Sum(b []byte) []byte {
	// Finalize a copy of the state, so that more data may still
	// be written afterwards.
	out, err := h.h.Clone().FinalizeXOF(h.outputSizeBytes)
	if err != nil {
		panic(err)
	}
	return append(b, out...)
}

func (h *blake3BlobHasher) Reset() {
	h.h.Reset()
}

func (h *blake3BlobHasher) Size() int {
	return h.outputSizeBytes
}

func (h *blake3BlobHasher) BlockSize() int {
	return blake3.BlockSize
}
