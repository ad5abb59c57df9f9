package gating

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/stretchr/testify/require"
)

func principals(n int) []codec.Address {
	out := make([]codec.Address, n)
	for i := range out {
		out[i] = codec.CreateAddress(0, ids.GenerateTestID())
	}
	return out
}

func TestBuildTree_EveryMemberVerifies(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 8, 13} {
		members := principals(size)
		tree, err := BuildTree(members)
		require.NoError(t, err)

		for _, member := range members {
			proof, err := tree.Proof(member)
			require.NoError(t, err)
			require.True(t, MerkleVerifier{}.Verify(tree.Root(), member, proof), "size %d", size)
		}
	}
}

func TestVerify_RejectsOutsider(t *testing.T) {
	require := require.New(t)

	members := principals(5)
	tree, err := BuildTree(members)
	require.NoError(err)

	outsider := codec.CreateAddress(0, ids.GenerateTestID())
	proof, err := tree.Proof(members[0])
	require.NoError(err)

	require.False(MerkleVerifier{}.Verify(tree.Root(), outsider, proof))
	require.False(MerkleVerifier{}.Verify(tree.Root(), outsider, nil))
	_, err = tree.Proof(outsider)
	require.ErrorIs(err, ErrUnknownPrincipal)
}

func TestVerify_RejectsTamperedProof(t *testing.T) {
	require := require.New(t)

	members := principals(4)
	tree, err := BuildTree(members)
	require.NoError(err)

	proof, err := tree.Proof(members[2])
	require.NoError(err)
	proof[0][0] ^= 0xff
	require.False(MerkleVerifier{}.Verify(tree.Root(), members[2], proof))
}

func TestVerify_UnsetRootAcceptsOnlyEmptyProof(t *testing.T) {
	require := require.New(t)

	anyone := codec.CreateAddress(0, ids.GenerateTestID())
	require.True(MerkleVerifier{}.Verify(ids.Empty, anyone, nil))
	require.False(MerkleVerifier{}.Verify(ids.Empty, anyone, []ids.ID{ids.GenerateTestID()}))
}

func TestVerify_RejectsOverlongProof(t *testing.T) {
	members := principals(1)
	proof := make([]ids.ID, 33)
	require.False(t, MerkleVerifier{}.Verify(LeafHash(members[0]), members[0], proof))
}

func TestBuildTree_Errors(t *testing.T) {
	require := require.New(t)

	_, err := BuildTree(nil)
	require.ErrorIs(err, ErrEmptyTree)

	p := principals(1)[0]
	_, err = BuildTree([]codec.Address{p, p})
	require.ErrorIs(err, ErrDuplicatePrincipal)
}

func TestSingleMemberRootIsLeaf(t *testing.T) {
	members := principals(1)
	tree, err := BuildTree(members)
	require.NoError(t, err)
	require.Equal(t, LeafHash(members[0]), tree.Root())
}
