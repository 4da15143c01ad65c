// Package merkle builds the distribution tree over a Rewards mapping:
// deterministic leaf encoding, tree construction and per-account proof
// extraction (SPEC_FULL.md §4.3), grounded in original_source's
// src/merkle_distributor/utils.py (get_merkle_node and friends).
package merkle

import (
	"github.com/luxfi/geth/crypto"

	"github.com/stakewise-oracle/oracle-node/internal/abi"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// BuildLeaves converts a Rewards mapping into the ordered MerkleLeaf
// slice used to build the tree: one leaf per account in ascending
// address order, zero amounts dropped, tokens sorted ascending, index
// assigned by position in that order.
func BuildLeaves(rewards types.Rewards) []types.MerkleLeaf {
	accounts := make([]types.Address, 0, len(rewards))
	for a := range rewards {
		accounts = append(accounts, a)
	}
	accounts = types.SortAddresses(accounts)

	leaves := make([]types.MerkleLeaf, 0, len(accounts))
	for i, account := range accounts {
		entries := rewards[account]
		tokens := make([]types.Address, 0, len(entries))
		amounts := make([]*types.Amount, 0, len(entries))
		for _, e := range entries {
			if e.Amount.IsZero() {
				continue
			}
			tokens = append(tokens, e.Token)
			amounts = append(amounts, e.Amount)
		}
		if len(tokens) == 0 {
			continue
		}
		leaves = append(leaves, types.MerkleLeaf{
			Index:   uint32(i),
			Account: account,
			Tokens:  tokens,
			Amounts: amounts,
		})
	}
	return leaves
}

// LeafHash computes keccak256(abi_encode(index, tokens[], account,
// amounts[])), the node value a tree is built over.
func LeafHash(leaf types.MerkleLeaf) [32]byte {
	encoded := abi.EncodeLeaf(leaf.Index, leaf.Tokens, leaf.Account, leaf.Amounts)
	var out [32]byte
	copy(out[:], crypto.Keccak256(encoded))
	return out
}
