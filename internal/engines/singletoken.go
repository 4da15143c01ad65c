package engines

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/sources/subgraph"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

type lpShareEntity struct {
	ID      string `json:"id"`
	Account string `json:"account"`
	Share   string `json:"share"` // WAD-scaled fraction of the pool this LP holds
}

const singleTokenSharesQuery = `
query LPShares($pool: ID!, $block: Int!, $lastID: String!, $window: Int!) {
  lpShares(
    block: { number: $block }
    first: $window
    orderBy: id
    orderDirection: asc
    where: { pool: $pool, id_gt: $lastID }
  ) {
    id
    account
    share
  }
}`

type lpSharesResponse struct {
	LPShares []lpShareEntity `json:"lpShares"`
}

// singleTokenPool implements the SingleTokenPool PoolKind
// (spec.md §4.2): each LP's balance is its WAD-scaled share of the
// pool's current holdings of kind.Token, total supply equal to that
// on-chain balance.
func (r *Resolver) singleTokenPool(ctx context.Context, kind types.PoolKind) (*types.Balances, error) {
	poolBalance, err := r.poolTokenBalance(ctx, kind.Pool, kind.Token)
	if err != nil {
		return nil, fmt.Errorf("engines: single-token pool balance for %s: %w", kind.Pool.Hex(), err)
	}

	entities, err := subgraph.Paginate(ctx,
		func(ctx context.Context, lastID string, window int) ([]lpShareEntity, error) {
			var resp lpSharesResponse
			vars := map[string]any{"pool": kind.Pool.Hex(), "block": r.toBlock, "lastID": lastID, "window": window}
			if err := r.client.Execute(ctx, singleTokenSharesQuery, vars, &resp); err != nil {
				return nil, err
			}
			return resp.LPShares, nil
		},
		func(e lpShareEntity) string { return e.ID },
	)
	if err != nil {
		return nil, fmt.Errorf("engines: fetch lp shares for %s: %w", kind.Pool.Hex(), err)
	}

	balances := types.NewBalances()
	for _, e := range entities {
		share, ok := new(uint256.Int).SetString(e.Share)
		if !ok {
			return nil, fmt.Errorf("engines: lp share entity %s has non-numeric share %q", e.ID, e.Share)
		}
		amount := types.MulDiv(poolBalance, share, uint256.NewInt(WAD))
		balances.Add(common.HexToAddress(e.Account), amount)
	}
	balances.TotalSupply = poolBalance
	return balances, nil
}

// poolTokenBalance reads the pool entity's tokenBalance field from the
// subgraph at toBlock. The token argument is not part of the query: the
// pool's single tokenBalance field is taken as its balance of token.
func (r *Resolver) poolTokenBalance(ctx context.Context, pool, token types.Address) (*types.Amount, error) {
	var resp struct {
		Pool struct {
			TokenBalance string `json:"tokenBalance"`
		} `json:"pool"`
	}
	query := `query PoolBalance($id: ID!, $block: Int!) { pool(id: $id, block: { number: $block }) { tokenBalance } }`
	vars := map[string]any{"id": pool.Hex(), "block": r.toBlock}
	if err := r.client.Execute(ctx, query, vars, &resp); err != nil {
		return nil, err
	}
	balance, ok := new(uint256.Int).SetString(resp.Pool.TokenBalance)
	if !ok {
		return nil, fmt.Errorf("pool %s returned non-numeric tokenBalance %q", pool.Hex(), resp.Pool.TokenBalance)
	}
	return balance, nil
}
