package merkle

import (
	"math/rand"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

func randomHash(seed int64) [32]byte {
	r := rand.New(rand.NewSource(seed))
	var h [32]byte
	r.Read(h[:])
	return h
}

func TestTreeProofVerifies(t *testing.T) {
	leaves := [][32]byte{randomHash(1), randomHash(2), randomHash(3), randomHash(4), randomHash(5)}
	tree := BuildTree(leaves)
	root := tree.Root()

	for i, leaf := range leaves {
		proof := tree.Proof(i)
		require.True(t, VerifyProof(leaf, proof, root), "leaf %d should verify", i)
	}
}

func TestTreeSiblingOrderInvariant(t *testing.T) {
	a, b := randomHash(10), randomHash(20)
	require.Equal(t, hashPair(a, b), hashPair(b, a))
}

func TestTreeEmpty(t *testing.T) {
	tree := BuildTree(nil)
	require.Equal(t, [32]byte{}, tree.Root())
}

func TestBuildLeavesSortedAndZeroPruned(t *testing.T) {
	rewards := types.NewRewards()
	tokenA := common.HexToAddress("0xAAAA")
	tokenB := common.HexToAddress("0xBBBB")
	acctLo := common.HexToAddress("0x1000")
	acctHi := common.HexToAddress("0x2000")

	rewards.Add(acctHi, tokenB, types.NewAmount(5))
	rewards.Add(acctHi, tokenA, types.NewAmount(7))
	rewards.Add(acctLo, tokenA, types.NewAmount(3))
	rewards.Add(acctLo, tokenB, types.ZeroAmount())

	leaves := BuildLeaves(rewards)
	require.Len(t, leaves, 2)
	require.Equal(t, acctLo, leaves[0].Account)
	require.Equal(t, uint32(0), leaves[0].Index)
	require.Len(t, leaves[0].Tokens, 1, "zero amount entries must be dropped")

	require.Equal(t, acctHi, leaves[1].Account)
	require.True(t, types.IsSortedAddresses(leaves[1].Tokens))
}

func TestBuildProducesVerifiableProofsForEveryAccount(t *testing.T) {
	rewards := types.NewRewards()
	token := common.HexToAddress("0xC0FFEE")
	accounts := []common.Address{
		common.HexToAddress("0x01"),
		common.HexToAddress("0x02"),
		common.HexToAddress("0x03"),
	}
	for i, a := range accounts {
		rewards.Add(a, token, types.NewAmount(uint64(100+i)))
	}

	result := Build(rewards)
	leaves := BuildLeaves(rewards)
	for i, leaf := range leaves {
		hash := LeafHash(leaf)
		entry := result.Claims[leaf.Account.Hex()]
		proof := make([][32]byte, len(entry.Proof))
		for j, p := range entry.Proof {
			var h [32]byte
			copy(h[:], common.FromHex(p))
			proof[j] = h
		}
		require.True(t, VerifyProof(hash, proof, result.Root), "account %d proof must verify", i)
	}
}
