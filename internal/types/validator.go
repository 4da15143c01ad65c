package types

// DistributorRedirect rewrites a terminal beneficiary to a different
// payout address. Some LP-token holders configure their accrued
// distributor rewards to be redirected elsewhere (e.g. a vault that
// auto-compounds on their behalf); the allocator consults this table
// only for terminal (non-recognized) credits, never for recursion.
type DistributorRedirect struct {
	From Address
	To   Address
}

// OperatorDepositData is one entry of an operator's IPFS-hosted deposit
// data file: the next validator keys available for registration.
type OperatorDepositData struct {
	Operator              Address
	PublicKey             []byte
	WithdrawalCredentials [32]byte
	DepositDataRoot       [32]byte
	Signature             []byte
	Proof                 []byte
}

// ValidatorRegistration is an on-chain registration event, used to
// detect which operator-supplied keys have already been used.
type ValidatorRegistration struct {
	PublicKey []byte
	Block     uint64
}

// ClaimedEvent is an on-chain distributor claim, used to prune
// previously-unclaimed carry-over balances that have since been
// redeemed (see internal/merkle's carry-over loading step).
type ClaimedEvent struct {
	Account Address
	Block   uint64
}
