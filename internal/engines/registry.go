// Package engines implements the five PoolKind balance-extraction
// engines of SPEC_FULL.md §4.2, each resolving a recognized contract's
// current holder Balances from the subgraph at a fixed block. Resolver
// satisfies allocator.BalancesFetcher: it looks up the PoolKind
// registered for a contract and dispatches to the matching engine.
package engines

import (
	"context"
	"fmt"

	"github.com/stakewise-oracle/oracle-node/internal/sources/subgraph"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// WAD is the 1e18 fixed-point scale GraphQL subgraphs in this
// ecosystem use for shares/rates (mirrors original_source's WAD
// constant used throughout oracle/oracle/distributor/rewards.py).
const WAD = 1_000_000_000_000_000_000

// Resolver maps recognized contracts to their PoolKind and dispatches
// balance fetches to the matching engine.
type Resolver struct {
	client    *subgraph.Client
	pools     map[types.Address]types.PoolKind
	fromBlock uint64
	toBlock   uint64
}

// NewResolver constructs a Resolver. pools is the recognized-contract
// registry (SPEC_FULL.md §4.1's "recognized set"); fromBlock/toBlock
// bound the time-weighted engines' accrual window for this tick.
func NewResolver(client *subgraph.Client, pools map[types.Address]types.PoolKind, fromBlock, toBlock uint64) *Resolver {
	return &Resolver{client: client, pools: pools, fromBlock: fromBlock, toBlock: toBlock}
}

// Balances implements allocator.BalancesFetcher.
func (r *Resolver) Balances(ctx context.Context, contract types.Address) (*types.Balances, bool, error) {
	kind, ok := r.pools[contract]
	if !ok {
		return nil, false, nil
	}

	var (
		balances *types.Balances
		err      error
	)
	switch kind.Tag {
	case types.SingleTokenPool:
		balances, err = r.singleTokenPool(ctx, kind)
	case types.ConcentratedLiquidity:
		balances, err = r.concentratedLiquidity(ctx, kind, false)
	case types.ConcentratedLiquidityRange:
		balances, err = r.concentratedLiquidity(ctx, kind, true)
	case types.LendingShares:
		balances, err = r.lendingShares(ctx, kind)
	case types.TokenTimeWeighted:
		balances, err = r.tokenTimeWeighted(ctx, kind)
	default:
		return nil, false, fmt.Errorf("engines: unhandled pool kind %q for %s", kind.Tag, contract.Hex())
	}
	if err != nil {
		return nil, false, err
	}
	return balances, true, nil
}
