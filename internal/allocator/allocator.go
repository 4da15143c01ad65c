// Package allocator implements the reward-distribution recursion that is
// this system's deterministic core (SPEC_FULL.md §4.1), grounded in
// original_source/oracle/oracle/distributor/rewards.py's
// DistributorRewards._get_rewards.
package allocator

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// BalancesFetcher resolves a recognized contract's PoolKind and fetches
// its holder Balances at the allocator's fixed to_block. Implemented by
// internal/engines; kept as an interface here so the allocator's
// recursion stays free of any network or subgraph concern.
type BalancesFetcher interface {
	// Balances returns holder balances for contract, or ok=false if
	// contract is not a recognized pool.
	Balances(ctx context.Context, contract types.Address) (balances *types.Balances, ok bool, err error)
}

// Allocator recursively distributes a reward budget across a recognized
// set of pool contracts, crediting everything it cannot resolve to a
// fallback address.
type Allocator struct {
	fetcher   BalancesFetcher
	fallback  types.Address
	redirects map[types.Address]types.Address
}

// New constructs an Allocator. redirects rewrites a terminal
// beneficiary to a different payout address (SPEC_FULL.md §4.1
// expansion); pass nil for none.
func New(fetcher BalancesFetcher, fallback types.Address, redirects map[types.Address]types.Address) *Allocator {
	return &Allocator{fetcher: fetcher, fallback: fallback, redirects: redirects}
}

// Allocate distributes reward (in rewardToken units) starting at
// contract, returning a Rewards mapping that sums exactly to reward.
// See SPEC_FULL.md §4.1 for the full algorithm and its invariants.
func (a *Allocator) Allocate(ctx context.Context, contract types.Address, reward *types.Amount, rewardToken types.Address) (types.Rewards, error) {
	rewards := types.NewRewards()
	if reward == nil || reward.IsZero() {
		return rewards, nil
	}

	balances, recognized, err := a.fetcher.Balances(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("allocator: fetch balances for %s: %w", contract, err)
	}
	if !recognized {
		rewards.Add(a.fallback, rewardToken, reward)
		return rewards, nil
	}

	visited := mapset.NewThreadUnsafeSet(contract)
	return a.allocateRecognized(ctx, contract, balances, reward, rewardToken, visited)
}

// allocateRecognized implements the recursive step once contract is
// known to be recognized and its balances already fetched once (the
// top-level Allocate call fetches eagerly so the not-recognized case
// above doesn't need a second round trip). visited is a
// ThreadUnsafeSet: each recursive branch clones it before descending,
// so no two branches ever share or race on the same set.
func (a *Allocator) allocateRecognized(ctx context.Context, contract types.Address, balances *types.Balances, reward *types.Amount, rewardToken types.Address, visited mapset.Set[types.Address]) (types.Rewards, error) {
	rewards := types.NewRewards()

	if balances.TotalSupply.IsZero() {
		rewards.Add(a.fallback, rewardToken, reward)
		return rewards, nil
	}

	accounts := balances.SortedAccounts()
	lastIndex := len(accounts) - 1
	distributed := types.ZeroAmount()

	for i, account := range accounts {
		var accountReward *types.Amount
		if i == lastIndex {
			accountReward = types.SubAmounts(reward, distributed)
		} else {
			accountReward = types.MulDiv(reward, balances.Balances[account], balances.TotalSupply)
		}

		if accountReward.IsZero() {
			continue
		}
		distributed = types.AddAmounts(distributed, accountReward)

		switch {
		case account == contract || visited.Contains(account):
			rewards.Add(a.fallback, rewardToken, accountReward)

		default:
			childBalances, recognized, err := a.fetcher.Balances(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("allocator: fetch balances for %s: %w", account, err)
			}
			if recognized {
				childVisited := visited.Clone()
				childVisited.Add(account)

				childRewards, err := a.allocateRecognized(ctx, account, childBalances, accountReward, rewardToken, childVisited)
				if err != nil {
					return nil, err
				}
				rewards.Merge(childRewards)
			} else {
				a.creditHolder(rewards, account, rewardToken, accountReward)
			}
		}
	}

	return rewards, nil
}

// creditHolder applies a distributor redirect, if configured, before
// adding the amount to a terminal (non-recognized, non-fallback)
// holder's reward entry. Fallback credits never redirect: the fallback
// address is a sink, not a holder position.
func (a *Allocator) creditHolder(rewards types.Rewards, to, token types.Address, amount *types.Amount) {
	if redirect, ok := a.redirects[to]; ok {
		to = redirect
	}
	rewards.Add(to, token, amount)
}
