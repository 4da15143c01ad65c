package merkle

import (
	"bytes"

	"github.com/luxfi/geth/crypto"
)

// Tree is a complete binary commitment over an ordered set of leaf
// hashes, built with the symmetric pair-hashing rule
// keccak(min(a,b) || max(a,b)) so the order siblings are presented in a
// proof never matters (invariant 8.6).
type Tree struct {
	// levels[0] is the leaf layer; levels[len(levels)-1] holds the root.
	levels [][][32]byte
}

// hashPair returns keccak256(min(a,b) || max(a,b)).
func hashPair(a, b [32]byte) [32]byte {
	lo, hi := a, b
	if bytes.Compare(a[:], b[:]) > 0 {
		lo, hi = b, a
	}
	buf := make([]byte, 0, 64)
	buf = append(buf, lo[:]...)
	buf = append(buf, hi[:]...)
	var out [32]byte
	copy(out[:], crypto.Keccak256(buf))
	return out
}

// BuildTree constructs a Tree over leafHashes in the given order. An odd
// node at any level is carried up to the next level unchanged.
func BuildTree(leafHashes [][32]byte) *Tree {
	if len(leafHashes) == 0 {
		return &Tree{levels: [][][32]byte{{}}}
	}

	levels := [][][32]byte{leafHashes}
	current := leafHashes
	for len(current) > 1 {
		next := make([][32]byte, 0, (len(current)+1)/2)
		for i := 0; i+1 < len(current); i += 2 {
			next = append(next, hashPair(current[i], current[i+1]))
		}
		if len(current)%2 == 1 {
			next = append(next, current[len(current)-1])
		}
		levels = append(levels, next)
		current = next
	}
	return &Tree{levels: levels}
}

// Root returns the tree's root hash, or the zero hash for an empty tree.
func (t *Tree) Root() [32]byte {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return [32]byte{}
	}
	return top[0]
}

// Proof returns the bottom-up sibling path for the leaf at index,
// sufficient to reconstruct the root under the symmetric pair-hash
// rule.
func (t *Tree) Proof(index int) [][32]byte {
	var proof [][32]byte
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		siblingIdx := idx ^ 1
		if siblingIdx < len(nodes) {
			proof = append(proof, nodes[siblingIdx])
		}
		idx /= 2
	}
	return proof
}

// VerifyProof recomputes the root from leaf and proof and reports
// whether it matches root, the client-side check a beneficiary performs
// before claiming.
func VerifyProof(leaf [32]byte, proof [][32]byte, root [32]byte) bool {
	current := leaf
	for _, sibling := range proof {
		current = hashPair(current, sibling)
	}
	return current == root
}
