package types

// Balances is the output of a position engine at a fixed block: a total
// supply and a per-holder balance map. sum(Balances) may be less than
// TotalSupply when holders were filtered (e.g. the zero address).
type Balances struct {
	TotalSupply *Amount
	Balances    map[Address]*Amount
}

// NewBalances returns an empty Balances with a zero total supply.
func NewBalances() *Balances {
	return &Balances{
		TotalSupply: ZeroAmount(),
		Balances:    make(map[Address]*Amount),
	}
}

// Add credits amount to account's balance and the running total supply.
// Zero amounts are skipped so the balance map never accumulates dust
// entries that would otherwise still take part in sorting/iteration.
func (b *Balances) Add(account Address, amount *Amount) {
	if amount.IsZero() {
		return
	}
	if existing, ok := b.Balances[account]; ok {
		b.Balances[account] = AddAmounts(existing, amount)
	} else {
		b.Balances[account] = new(Amount).Set(amount)
	}
	b.TotalSupply = AddAmounts(b.TotalSupply, amount)
}

// SortedAccounts returns the balance map's keys in ascending address
// order, the iteration order every deterministic consumer (allocator,
// merkle builder) requires.
func (b *Balances) SortedAccounts() []Address {
	accounts := make([]Address, 0, len(b.Balances))
	for a := range b.Balances {
		accounts = append(accounts, a)
	}
	return SortAddresses(accounts)
}
