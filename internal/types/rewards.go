package types

import "sort"

// TokenAmount is one (token, amount) pair within an account's reward
// entry. Per-account token lists are kept as a sorted slice rather than
// an inner map so the canonical, order-dependent output (merkle leaves,
// vote payload JSON) never depends on Go's randomized map iteration.
type TokenAmount struct {
	Token  Address
	Amount *Amount
}

// Rewards maps a beneficiary to its sorted, zero-pruned token amounts.
// The empty mapping is valid and represents "no rewards distributed".
type Rewards map[Address][]TokenAmount

// NewRewards returns an empty Rewards mapping.
func NewRewards() Rewards {
	return make(Rewards)
}

// Add credits amount of reward_token to the beneficiary, keeping the
// per-account token slice sorted in ascending token address order. It is
// the single mutation primitive every allocator/merkle code path uses so
// invariants (8.4 non-negativity, 8.5 sort stability) can't be bypassed.
func (r Rewards) Add(to, token Address, amount *Amount) {
	if amount == nil || amount.IsZero() {
		return
	}
	entries := r[to]
	for i := range entries {
		if entries[i].Token == token {
			entries[i].Amount = AddAmounts(entries[i].Amount, amount)
			return
		}
	}
	entries = append(entries, TokenAmount{Token: token, Amount: new(Amount).Set(amount)})
	sort.Slice(entries, func(i, j int) bool {
		return compareAddress(entries[i].Token, entries[j].Token) < 0
	})
	r[to] = entries
}

// Merge adds every entry of other into r and returns r, matching the
// allocator's merge-by-per-token-addition rule when combining a
// recursive call's result into the caller's accumulator.
func (r Rewards) Merge(other Rewards) Rewards {
	accounts := make([]Address, 0, len(other))
	for a := range other {
		accounts = append(accounts, a)
	}
	for _, account := range SortAddresses(accounts) {
		for _, entry := range other[account] {
			r.Add(account, entry.Token, entry.Amount)
		}
	}
	return r
}

// Total sums every amount across every account and token, used by tests
// asserting conservation (8.1: the sum of an allocation equals the
// input reward budget).
func (r Rewards) Total() *Amount {
	total := ZeroAmount()
	for _, entries := range r {
		for _, e := range entries {
			total = AddAmounts(total, e.Amount)
		}
	}
	return total
}

func compareAddress(a, b Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
