package merkle

import (
	"encoding/hex"
	"fmt"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// ClaimEntry is one account's entry in the published claims bundle:
// enough for a beneficiary to submit a claim transaction against the
// on-chain MerkleDistributor.
type ClaimEntry struct {
	Index   uint32   `json:"index"`
	Tokens  []string `json:"tokens"`
	Amounts []string `json:"amounts"`
	Proof   []string `json:"proof"`
}

// Result bundles everything the distributor controller needs after
// building a tree: the root to vote on, and the claims file to pin to
// IPFS.
type Result struct {
	Root   [32]byte
	Claims map[string]ClaimEntry
}

// Build forms leaves from rewards, constructs the tree, and extracts a
// proof per leaf, returning the root and the per-account claims bundle
// ready for JSON marshaling and IPFS pinning (SPEC_FULL.md §4.3).
func Build(rewards types.Rewards) Result {
	leaves := BuildLeaves(rewards)

	leafHashes := make([][32]byte, len(leaves))
	for i, leaf := range leaves {
		leafHashes[i] = LeafHash(leaf)
	}

	tree := BuildTree(leafHashes)

	claims := make(map[string]ClaimEntry, len(leaves))
	for i, leaf := range leaves {
		entry := ClaimEntry{
			Index:   leaf.Index,
			Tokens:  make([]string, len(leaf.Tokens)),
			Amounts: make([]string, len(leaf.Amounts)),
			Proof:   hashesToHex(tree.Proof(i)),
		}
		for j, t := range leaf.Tokens {
			entry.Tokens[j] = t.Hex()
		}
		for j, amt := range leaf.Amounts {
			entry.Amounts[j] = amt.String()
		}
		claims[leaf.Account.Hex()] = entry
	}

	return Result{Root: tree.Root(), Claims: claims}
}

// DecodeClaimsBundle parses a previously-published claims bundle (the
// JSON Build produces) back into a Rewards mapping. Index and proof are
// discarded: the carry-over path only needs (account, token, amount),
// and a fresh index/proof is computed when the tree is rebuilt.
func DecodeClaimsBundle(claims map[string]ClaimEntry) (types.Rewards, error) {
	rewards := types.NewRewards()
	for accountHex, entry := range claims {
		if len(entry.Tokens) != len(entry.Amounts) {
			return nil, fmt.Errorf("merkle: claim for %s: %d tokens but %d amounts", accountHex, len(entry.Tokens), len(entry.Amounts))
		}
		account := types.ParseAddress(accountHex)
		for i, tokenHex := range entry.Tokens {
			amount, ok := new(types.Amount).SetString(entry.Amounts[i])
			if !ok {
				return nil, fmt.Errorf("merkle: claim for %s: invalid amount %q", accountHex, entry.Amounts[i])
			}
			rewards.Add(account, types.ParseAddress(tokenHex), amount)
		}
	}
	return rewards, nil
}

func hashesToHex(hashes [][32]byte) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = "0x" + hex.EncodeToString(h[:])
	}
	return out
}
