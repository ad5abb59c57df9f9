// Package gating verifies that a market creator belongs to the permitted-creator set.
//
// The set is committed to as the root of a binary sha256 Merkle tree. Leaves are
// sha256(address) and interior nodes hash their two children in byte order, so an
// audit path is just the list of sibling hashes from leaf to root.
package gating

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/radicleart/bigmarket-dao/consts"
)

var (
	ErrEmptyTree          = errors.New("permitted-creator set is empty")
	ErrDuplicatePrincipal = errors.New("duplicate principal in permitted-creator set")
	ErrUnknownPrincipal   = errors.New("principal is not in the permitted-creator set")

	_ Verifier = MerkleVerifier{}
)

// Verifier checks a creator's membership proof against a committed root.
type Verifier interface {
	Verify(root ids.ID, principal codec.Address, proof []ids.ID) bool
}

// MerkleVerifier recomputes the root from the principal's leaf and its audit path.
type MerkleVerifier struct{}

// Verify reports whether proof links principal to root. An unset root accepts only
// the empty proof.
func (MerkleVerifier) Verify(root ids.ID, principal codec.Address, proof []ids.ID) bool {
	if root == ids.Empty {
		return len(proof) == 0
	}
	if len(proof) > consts.MaxProofLength {
		return false
	}
	running := LeafHash(principal)
	for _, sibling := range proof {
		running = combine(running, sibling)
	}
	return running == root
}

// LeafHash is the tree leaf committed for principal.
func LeafHash(principal codec.Address) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(principal[:]))
}

func combine(a, b ids.ID) ids.ID {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	buf := make([]byte, 0, 2*ids.IDLen)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	return ids.ID(hashing.ComputeHash256Array(buf))
}

// Tree is a permitted-creator tree built by governance tooling. The core never builds
// trees; it only verifies proofs against the committed root.
type Tree struct {
	levels [][]ids.ID
	index  map[codec.Address]int
}

// BuildTree commits to principals in the given order. A node without a sibling is
// promoted to the next level unchanged.
func BuildTree(principals []codec.Address) (*Tree, error) {
	if len(principals) == 0 {
		return nil, ErrEmptyTree
	}
	leaves := make([]ids.ID, len(principals))
	index := make(map[codec.Address]int, len(principals))
	for i, p := range principals {
		if _, ok := index[p]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePrincipal, p)
		}
		index[p] = i
		leaves[i] = LeafHash(p)
	}

	levels := [][]ids.ID{leaves}
	for level := leaves; len(level) > 1; {
		next := make([]ids.ID, 0, (len(level)+1)/2)
		for j := 0; j < len(level); j += 2 {
			if j+1 < len(level) {
				next = append(next, combine(level[j], level[j+1]))
			} else {
				next = append(next, level[j])
			}
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels, index: index}, nil
}

// Root returns the commitment to store as the permitted-creators root.
func (t *Tree) Root() ids.ID {
	return t.levels[len(t.levels)-1][0]
}

// Proof returns the audit path for principal, leaf first.
func (t *Tree) Proof(principal codec.Address) ([]ids.ID, error) {
	i, ok := t.index[principal]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrincipal, principal)
	}
	var proof []ids.ID
	for _, level := range t.levels[:len(t.levels)-1] {
		if sibling := i ^ 1; sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		i /= 2
	}
	return proof, nil
}
