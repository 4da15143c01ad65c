package engines

import (
	"context"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/sources/subgraph"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

type timeWeightedEntity struct {
	ID         string `json:"id"`
	Account    string `json:"account"`
	Principal  string `json:"principal"`
	PrevPoints string `json:"prevPoints"`
	UpdatedAt  string `json:"updatedAtBlock"`
}

const timeWeightedQuery = `
query TimeWeighted($token: ID!, $block: Int!, $lastID: String!, $window: Int!) {
  timeWeightedPositions(
    block: { number: $block }
    first: $window
    orderBy: id
    orderDirection: asc
    where: { token: $token, id_gt: $lastID }
  ) {
    id
    account
    principal
    prevPoints
    updatedAtBlock
  }
}`

type timeWeightedResponse struct {
	TimeWeightedPositions []timeWeightedEntity `json:"timeWeightedPositions"`
}

// tokenTimeWeighted implements the TokenTimeWeighted PoolKind
// (spec.md §4.2): points = prev_points + principal * (to_block -
// max(updated_at, from_block)), reset to 0 when updated_at < from_block;
// non-positive points and the zero address are dropped.
func (r *Resolver) tokenTimeWeighted(ctx context.Context, kind types.PoolKind) (*types.Balances, error) {
	entities, err := subgraph.Paginate(ctx,
		func(ctx context.Context, lastID string, window int) ([]timeWeightedEntity, error) {
			var resp timeWeightedResponse
			vars := map[string]any{"token": kind.Token.Hex(), "block": r.toBlock, "lastID": lastID, "window": window}
			if err := r.client.Execute(ctx, timeWeightedQuery, vars, &resp); err != nil {
				return nil, err
			}
			return resp.TimeWeightedPositions, nil
		},
		func(e timeWeightedEntity) string { return e.ID },
	)
	if err != nil {
		return nil, fmt.Errorf("engines: fetch time-weighted positions for %s: %w", kind.Token.Hex(), err)
	}

	balances := types.NewBalances()
	for _, e := range entities {
		account := common.HexToAddress(e.Account)
		if account == types.ZeroAddress {
			continue
		}

		principal, ok := new(uint256.Int).SetString(e.Principal)
		if !ok {
			return nil, fmt.Errorf("engines: time-weighted position %s has non-numeric principal %q", e.ID, e.Principal)
		}
		prevPoints, ok := new(uint256.Int).SetString(e.PrevPoints)
		if !ok {
			return nil, fmt.Errorf("engines: time-weighted position %s has non-numeric prevPoints %q", e.ID, e.PrevPoints)
		}
		updatedAt, err := parseBlockNumber(e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("engines: time-weighted position %s: %w", e.ID, err)
		}

		points := accruePoints(principal, prevPoints, updatedAt, r.fromBlock, r.toBlock)
		if points.IsZero() {
			continue
		}
		balances.Add(account, points)
	}
	return balances, nil
}

func parseBlockNumber(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block number %q: %w", s, err)
	}
	return n, nil
}
