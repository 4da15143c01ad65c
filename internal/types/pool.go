package types

// PoolKindTag discriminates the PoolKind tagged union. Every position
// engine in internal/engines switches on this tag.
type PoolKindTag int

const (
	// ConcentratedLiquidity selects LP positions whose tick range
	// straddles the pool's current tick.
	ConcentratedLiquidity PoolKindTag = iota
	// ConcentratedLiquidityRange restricts to positions whose range
	// exactly matches a configured [TickLower, TickUpper].
	ConcentratedLiquidityRange
	// SingleTokenPool weights LPs by their share of one token held by
	// the pool at a fixed block.
	SingleTokenPool
	// LendingShares weights holder shares by elapsed blocks since their
	// last position update.
	LendingShares
	// TokenTimeWeighted accrues principal x elapsed-blocks "points" per
	// holder.
	TokenTimeWeighted
)

// FullRangeTicks are the tick bounds used for "full-range" participation
// pools configured as ConcentratedLiquidityRange, mirroring Uniswap V3's
// MIN_TICK/MAX_TICK at the default tick spacing used by the protocol's
// full-range pools.
const (
	FullRangeTickLower = -887220
	FullRangeTickUpper = 887220
)

// PoolKind is the recognized-pool descriptor that drives which position
// engine services a given contract address. Which of the optional fields
// are meaningful is selected by Tag, as noted beside each field.
type PoolKind struct {
	Tag PoolKindTag

	Pool      Address // ConcentratedLiquidity, ConcentratedLiquidityRange, SingleTokenPool
	Token     Address // SingleTokenPool.WhichToken, TokenTimeWeighted.Token
	CToken    Address // LendingShares.CToken
	TickLower int     // ConcentratedLiquidityRange
	TickUpper int      // ConcentratedLiquidityRange
}

// DistributionDescriptor is a unit of upstream policy: a recognized
// contract, carrying reward, and the token it should be paid in. The
// allocator never invents these; they are supplied by the distributor
// controller from its configured reward schedule.
type DistributionDescriptor struct {
	Contract    Address
	Reward      *Amount
	RewardToken Address
}

// VotingParameters carries the per-vote-kind scheduling state common to
// the rewards, distributor and validator controllers: a monotonic nonce
// and the block range this tick covers. The distributor flavor also
// carries the previous root/proofs URI used for carry-over accounting.
type VotingParameters struct {
	Nonce     uint64
	FromBlock uint64
	ToBlock   uint64

	// PrevMerkleRoot and PrevProofsURI are populated for the distributor
	// vote kind only; they locate the prior epoch's claim file for
	// difference-based unclaimed-balance accounting (see internal/merkle).
	PrevMerkleRoot string
	PrevProofsURI  string
}
