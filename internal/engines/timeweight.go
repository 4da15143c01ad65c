package engines

import "github.com/stakewise-oracle/oracle-node/internal/types"

// accruePoints implements the RariFusePool-style time-weighting shared
// by LendingShares and TokenTimeWeighted: `principal * elapsed_blocks`,
// re-based to fromBlock when the position's last update predates it
// (SPEC_FULL.md §4.2 expansion, grounded in original_source's
// get_rari_fuse_liquidity_points). updatedAt/fromBlock/toBlock are all
// expressed in block numbers.
func accruePoints(principal *types.Amount, prevPoints *types.Amount, updatedAt, fromBlock, toBlock uint64) *types.Amount {
	effectiveFrom := updatedAt
	base := prevPoints
	if updatedAt < fromBlock {
		effectiveFrom = fromBlock
		base = types.ZeroAmount()
	}
	if toBlock <= effectiveFrom {
		return base
	}

	elapsed := types.NewAmount(toBlock - effectiveFrom)
	accrued := new(types.Amount).Mul(principal, elapsed)
	return types.AddAmounts(base, accrued)
}
