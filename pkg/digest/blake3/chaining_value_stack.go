package blake3

import (
	"fmt"
)

// maximumStackDepth is the number of chaining values that need to be
// retained to hash 2^54 chunks, which corresponds to 2^64 bytes of
// input.
const maximumStackDepth = 54

// chainingValueStack implements BLAKE3's Chaining Value Stack, as
// specified in section 5.1.2 on pages 15 to 17.
//
// The stack holds the roots of completed subtrees that have no right
// neighbour yet, from left to right. Storage has a fixed capacity, so
// appending chunks never causes allocations.
type chainingValueStack struct {
	entries [maximumStackDepth][8]uint32
	depth   int
}

func (s *chainingValueStack) push(chainingValue *[8]uint32) {
	if s.depth == maximumStackDepth {
		panic(fmt.Sprintf("Chaining value stack exceeds its maximum depth of %d entries", maximumStackDepth))
	}
	s.entries[s.depth] = *chainingValue
	s.depth++
}

func (s *chainingValueStack) pop() [8]uint32 {
	s.depth--
	return s.entries[s.depth]
}

// appendChunk appends the chaining value of a completed chunk to the
// right hand side of the Merkle tree. totalChunks is the number of
// chunks completed so far, including this one. Every trailing zero bit
// of totalChunks corresponds to a subtree that has been completed,
// which is merged into a parent node immediately.
func (s *chainingValueStack) appendChunk(chainingValue [8]uint32, totalChunks uint64, key *[8]uint32, flags uint32) {
	for ; totalChunks&1 == 0; totalChunks >>= 1 {
		left := s.pop()
		n := newParentNode(&left, &chainingValue, key, flags)
		chainingValue = n.getChainingValue()
	}
	s.push(&chainingValue)
}

// getRootNode terminates the Merkle tree by inserting a final node on
// the right hand side. It then computes and returns the root node of the
// Merkle tree without modifying the stack.
func (s *chainingValueStack) getRootNode(lastNode node, key *[8]uint32, flags uint32) node {
	n := lastNode
	for i := s.depth - 1; i >= 0; i-- {
		right := n.getChainingValue()
		n = newParentNode(&s.entries[i], &right, key, flags)
	}
	return n
}

func (s *chainingValueStack) reset() {
	s.depth = 0
}
