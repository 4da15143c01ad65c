package merkle

import (
	"context"
	"fmt"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// CarryOverSource fetches the prior epoch's unclaimed-balance file and
// the set of claim events recorded since it was published. Implemented
// by internal/ipfs (file fetch) and internal/sources/onchain (claimed
// events), kept as an interface here so carry-over loading stays
// testable without either dependency.
type CarryOverSource interface {
	// FetchClaimFile loads the previous claims bundle from uri (an
	// ipfs:// or /ipfs/ CID). A missing file is fatal for the tick per
	// SPEC_FULL.md §7 ("Prior-epoch IPFS file unavailable").
	FetchClaimFile(ctx context.Context, uri string) (types.Rewards, error)
	// ClaimedSince returns accounts that claimed on-chain in
	// (fromBlock, toBlock].
	ClaimedSince(ctx context.Context, fromBlock, toBlock uint64) ([]types.Address, error)
}

// LoadCarryOver fetches the prior claim file at prevProofsURI, removes
// every account that has claimed since prevBlock, and returns the
// remainder — the "unclaimed carry-over" merged into the new
// distribution by the distributor controller (SPEC_FULL.md §4.3).
func LoadCarryOver(ctx context.Context, src CarryOverSource, prevProofsURI string, prevBlock, toBlock uint64) (types.Rewards, error) {
	if prevProofsURI == "" {
		// First-ever distributor update: there is no prior epoch to
		// carry over.
		return types.NewRewards(), nil
	}

	carryOver, err := src.FetchClaimFile(ctx, prevProofsURI)
	if err != nil {
		return nil, fmt.Errorf("merkle: fetch prior claim file %s: %w", prevProofsURI, err)
	}

	claimed, err := src.ClaimedSince(ctx, prevBlock, toBlock)
	if err != nil {
		return nil, fmt.Errorf("merkle: fetch claimed events: %w", err)
	}
	for _, account := range claimed {
		delete(carryOver, account)
	}

	return carryOver, nil
}
