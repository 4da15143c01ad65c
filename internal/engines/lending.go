package engines

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/sources/subgraph"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

type lendingPositionEntity struct {
	ID        string `json:"id"`
	Account   string `json:"account"`
	Principal string `json:"principal"`
	UpdatedAt string `json:"updatedAtBlock"`
}

const lendingPositionsQuery = `
query LendingPositions($ctoken: ID!, $block: Int!, $lastID: String!, $window: Int!) {
  lendingPositions(
    block: { number: $block }
    first: $window
    orderBy: id
    orderDirection: asc
    where: { ctoken: $ctoken, id_gt: $lastID }
  ) {
    id
    account
    principal
    updatedAtBlock
  }
}`

type lendingPositionsResponse struct {
	LendingPositions []lendingPositionEntity `json:"lendingPositions"`
}

// lendingShares implements the LendingShares PoolKind (spec.md §4.2):
// balance is principal x elapsed blocks since last update, re-based to
// fromBlock for positions whose last update predates it.
func (r *Resolver) lendingShares(ctx context.Context, kind types.PoolKind) (*types.Balances, error) {
	entities, err := subgraph.Paginate(ctx,
		func(ctx context.Context, lastID string, window int) ([]lendingPositionEntity, error) {
			var resp lendingPositionsResponse
			vars := map[string]any{"ctoken": kind.CToken.Hex(), "block": r.toBlock, "lastID": lastID, "window": window}
			if err := r.client.Execute(ctx, lendingPositionsQuery, vars, &resp); err != nil {
				return nil, err
			}
			return resp.LendingPositions, nil
		},
		func(e lendingPositionEntity) string { return e.ID },
	)
	if err != nil {
		return nil, fmt.Errorf("engines: fetch lending positions for %s: %w", kind.CToken.Hex(), err)
	}

	balances := types.NewBalances()
	for _, e := range entities {
		principal, ok := new(uint256.Int).SetString(e.Principal)
		if !ok {
			return nil, fmt.Errorf("engines: lending position %s has non-numeric principal %q", e.ID, e.Principal)
		}
		updatedAt, err := parseBlockNumber(e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("engines: lending position %s: %w", e.ID, err)
		}

		points := accruePoints(principal, types.ZeroAmount(), updatedAt, r.fromBlock, r.toBlock)
		balances.Add(common.HexToAddress(e.Account), points)
	}
	return balances, nil
}
