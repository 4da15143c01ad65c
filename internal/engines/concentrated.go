package engines

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/sources/subgraph"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

type positionEntity struct {
	ID              string `json:"id"`
	Owner           string `json:"owner"`
	TickLower       int    `json:"tickLower"`
	TickUpper       int    `json:"tickUpper"`
	ActiveLiquidity string `json:"activeLiquidity"`
}

const positionsQuery = `
query Positions($pool: ID!, $block: Int!, $lastID: String!, $window: Int!) {
  positions(
    block: { number: $block }
    first: $window
    orderBy: id
    orderDirection: asc
    where: { pool: $pool, id_gt: $lastID }
  ) {
    id
    owner
    tickLower
    tickUpper
    activeLiquidity
  }
}`

type positionsResponse struct {
	Positions []positionEntity `json:"positions"`
}

type currentTickResponse struct {
	Pool struct {
		Tick int `json:"tick"`
	} `json:"pool"`
}

// concentratedLiquidity implements both ConcentratedLiquidity and
// ConcentratedLiquidityRange (spec.md §4.2): fetch every LP position in
// kind.Pool, then keep only positions whose range participates at
// block toBlock — either straddling the pool's current tick, or (when
// rangeRestricted) exactly matching kind.TickLower/TickUpper.
func (r *Resolver) concentratedLiquidity(ctx context.Context, kind types.PoolKind, rangeRestricted bool) (*types.Balances, error) {
	var currentTick int
	if !rangeRestricted {
		var resp currentTickResponse
		query := `query CurrentTick($id: ID!, $block: Int!) { pool(id: $id, block: { number: $block }) { tick } }`
		if err := r.client.Execute(ctx, query, map[string]any{"id": kind.Pool.Hex(), "block": r.toBlock}, &resp); err != nil {
			return nil, fmt.Errorf("engines: fetch current tick for %s: %w", kind.Pool.Hex(), err)
		}
		currentTick = resp.Pool.Tick
	}

	entities, err := subgraph.Paginate(ctx,
		func(ctx context.Context, lastID string, window int) ([]positionEntity, error) {
			var resp positionsResponse
			vars := map[string]any{"pool": kind.Pool.Hex(), "block": r.toBlock, "lastID": lastID, "window": window}
			if err := r.client.Execute(ctx, positionsQuery, vars, &resp); err != nil {
				return nil, err
			}
			return resp.Positions, nil
		},
		func(e positionEntity) string { return e.ID },
	)
	if err != nil {
		return nil, fmt.Errorf("engines: fetch positions for %s: %w", kind.Pool.Hex(), err)
	}

	balances := types.NewBalances()
	for _, e := range entities {
		participates := false
		if rangeRestricted {
			participates = e.TickLower == kind.TickLower && e.TickUpper == kind.TickUpper
		} else {
			participates = e.TickLower <= currentTick && currentTick < e.TickUpper
		}
		if !participates {
			continue
		}

		liquidity, ok := new(uint256.Int).SetString(e.ActiveLiquidity)
		if !ok {
			return nil, fmt.Errorf("engines: position %s has non-numeric activeLiquidity %q", e.ID, e.ActiveLiquidity)
		}
		balances.Add(common.HexToAddress(e.Owner), liquidity)
	}
	return balances, nil
}
