package allocator

import (
	"context"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// fakeFetcher implements BalancesFetcher over an in-memory map, letting
// tests assemble arbitrary recognized-pool graphs including cycles.
type fakeFetcher struct {
	balances map[types.Address]*types.Balances
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{balances: make(map[types.Address]*types.Balances)}
}

func (f *fakeFetcher) set(contract types.Address, holders map[types.Address]uint64) {
	b := types.NewBalances()
	for holder, amount := range holders {
		b.Add(holder, types.NewAmount(amount))
	}
	f.balances[contract] = b
}

func (f *fakeFetcher) Balances(ctx context.Context, contract types.Address) (*types.Balances, bool, error) {
	b, ok := f.balances[contract]
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func addr(s string) types.Address { return common.HexToAddress(s) }

func TestAllocateDirectPayout(t *testing.T) {
	c := addr("0xC0")
	alpha, beta, gamma := addr("0xA1"), addr("0xB2"), addr("0xC3")
	token := addr("0x7070")
	fallback := addr("0xFA11")

	fetcher := newFakeFetcher()
	fetcher.set(c, map[types.Address]uint64{alpha: 1, beta: 1, gamma: 1})

	a := New(fetcher, fallback, nil)
	rewards, err := a.Allocate(context.Background(), c, types.NewAmount(1000), token)
	require.NoError(t, err)

	require.Equal(t, types.NewAmount(333).String(), rewardFor(rewards, alpha, token).String())
	require.Equal(t, types.NewAmount(333).String(), rewardFor(rewards, beta, token).String())
	require.Equal(t, types.NewAmount(334).String(), rewardFor(rewards, gamma, token).String())
	require.Equal(t, types.NewAmount(1000).String(), rewards.Total().String())
}

func TestAllocateEmptyPoolRoutesToFallback(t *testing.T) {
	c := addr("0xC0")
	token := addr("0x7070")
	fallback := addr("0xFA11")

	fetcher := newFakeFetcher()
	fetcher.set(c, map[types.Address]uint64{})

	a := New(fetcher, fallback, nil)
	rewards, err := a.Allocate(context.Background(), c, types.NewAmount(1000), token)
	require.NoError(t, err)
	require.Equal(t, types.NewAmount(1000).String(), rewardFor(rewards, fallback, token).String())
}

func TestAllocateUnrecognizedContractRoutesToFallback(t *testing.T) {
	c := addr("0xDEAD")
	token := addr("0x7070")
	fallback := addr("0xFA11")

	a := New(newFakeFetcher(), fallback, nil)
	rewards, err := a.Allocate(context.Background(), c, types.NewAmount(1000), token)
	require.NoError(t, err)
	require.Equal(t, types.NewAmount(1000).String(), rewardFor(rewards, fallback, token).String())
}

// TestAllocateNestedSelfReferenceRoutesToFallback covers a nested loop:
// contract C's only holder is recognized contract D, and D's only holder
// is C itself. While D's slice is distributed, C is not D but is already
// in the visited set, so the visited check routes the slice to fallback.
func TestAllocateNestedSelfReferenceRoutesToFallback(t *testing.T) {
	c := addr("0xC0")
	d := addr("0xD0")
	token := addr("0x7070")
	fallback := addr("0xFA11")

	fetcher := newFakeFetcher()
	fetcher.set(c, map[types.Address]uint64{d: 1})
	fetcher.set(d, map[types.Address]uint64{c: 1})

	a := New(fetcher, fallback, nil)
	rewards, err := a.Allocate(context.Background(), c, types.NewAmount(1000), token)
	require.NoError(t, err)
	require.Equal(t, types.NewAmount(1000).String(), rewardFor(rewards, fallback, token).String())
}

// TestAllocateCycleTerminatesAndConserves covers invariant 8.3: a
// recognized cycle A -> B -> A must terminate and still conserve the
// full reward budget, routing the looped portion to the fallback.
func TestAllocateCycleTerminatesAndConserves(t *testing.T) {
	a1 := addr("0xA1")
	b1 := addr("0xB1")
	holder := addr("0xD1")
	token := addr("0x7070")
	fallback := addr("0xFA11")

	fetcher := newFakeFetcher()
	fetcher.set(a1, map[types.Address]uint64{b1: 1, holder: 1})
	fetcher.set(b1, map[types.Address]uint64{a1: 1})

	alloc := New(fetcher, fallback, nil)
	rewards, err := alloc.Allocate(context.Background(), a1, types.NewAmount(1000), token)
	require.NoError(t, err)
	require.Equal(t, types.NewAmount(1000).String(), rewards.Total().String())
}

func TestAllocateZeroRewardIsEmpty(t *testing.T) {
	c := addr("0xC0")
	token := addr("0x7070")
	a := New(newFakeFetcher(), addr("0xFA11"), nil)
	rewards, err := a.Allocate(context.Background(), c, types.ZeroAmount(), token)
	require.NoError(t, err)
	require.Empty(t, rewards)
}

func TestAllocateRedirectsTerminalHolder(t *testing.T) {
	c := addr("0xC0")
	alpha := addr("0xA1")
	vault := addr("0xFEED")
	token := addr("0x7070")
	fallback := addr("0xFA11")

	fetcher := newFakeFetcher()
	fetcher.set(c, map[types.Address]uint64{alpha: 1})

	a := New(fetcher, fallback, map[types.Address]types.Address{alpha: vault})
	rewards, err := a.Allocate(context.Background(), c, types.NewAmount(500), token)
	require.NoError(t, err)
	require.Equal(t, types.NewAmount(500).String(), rewardFor(rewards, vault, token).String())
	_, redirectedPresent := rewards[alpha]
	require.False(t, redirectedPresent)
}

func rewardFor(r types.Rewards, account, token types.Address) *types.Amount {
	for _, entry := range r[account] {
		if entry.Token == token {
			return entry.Amount
		}
	}
	return types.ZeroAmount()
}
