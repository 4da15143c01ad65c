package controllers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/abi"
	"github.com/stakewise-oracle/oracle-node/internal/ipfs"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// Operator is the subgraph's view of a validator-registering operator:
// its IPFS-hosted deposit-data file and the index it has already
// consumed up to.
type Operator struct {
	Address          types.Address
	DepositDataURI   string
	DepositDataIndex int
}

// OperatorsSource lists configured operators as of upToBlock.
type OperatorsSource interface {
	Operators(ctx context.Context, upToBlock uint64) ([]Operator, error)
}

// RegistrationCheck's CanRegister reports whether publicKey is free to
// register: true when no ValidatorRegistration event for it exists up
// to upToBlock, grounded in eth1.py's can_register_validator.
type RegistrationCheck interface {
	CanRegister(ctx context.Context, upToBlock uint64, publicKeyHex string) (bool, error)
	DepositRoot(ctx context.Context, atBlock uint64) ([32]byte, error)
	PoolBalance(ctx context.Context, atBlock uint64) (*types.Amount, error)
}

// ValidatorController implements spec.md §4.5's validator vote: scan
// operators in subgraph order, advance each one's deposit-data index
// past keys already used on chain, and submit the first registrable
// deposit found, grounded in
// original_source/oracle/oracle/validators/eth1.py's select_validator.
type ValidatorController struct {
	operators OperatorsSource
	registry  RegistrationCheck
	ipfs      *ipfs.Client
	nonce     NonceSource
	submitter VoteSubmitter
}

// NewValidatorController constructs a ValidatorController. nonce
// re-reads the registry contract's on-chain nonce immediately before
// submission so a superseded tick can abandon quietly (spec.md §7).
func NewValidatorController(operators OperatorsSource, registry RegistrationCheck, ipfsClient *ipfs.Client, nonce NonceSource, submitter VoteSubmitter) *ValidatorController {
	return &ValidatorController{operators: operators, registry: registry, ipfs: ipfsClient, nonce: nonce, submitter: submitter}
}

// minPoolBalanceWei is the 32 ETH/GNO short-circuit named in spec.md §4.5.
var minPoolBalanceWei = new(types.Amount).Mul(types.NewAmount(32), types.NewAmount(1_000_000_000_000_000_000))

// Process runs one validator-controller tick at finalizedBlock.
func (c *ValidatorController) Process(ctx context.Context, nonce uint64, finalizedBlock uint64) error {
	poolBalance, err := c.registry.PoolBalance(ctx, finalizedBlock)
	if err != nil {
		return fmt.Errorf("validator controller: fetch pool balance: %w", err)
	}
	if poolBalance.Cmp(minPoolBalanceWei) < 0 {
		return nil
	}

	operators, err := c.operators.Operators(ctx, finalizedBlock)
	if err != nil {
		return fmt.Errorf("validator controller: fetch operators: %w", err)
	}

	for _, operator := range operators {
		selected, err := c.selectFromOperator(ctx, operator, finalizedBlock)
		if err != nil {
			return err
		}
		if selected == nil {
			continue
		}

		depositRoot, err := c.registry.DepositRoot(ctx, finalizedBlock)
		if err != nil {
			return fmt.Errorf("validator controller: fetch deposit root: %w", err)
		}

		current, err := c.nonce.CurrentNonce(ctx)
		if err != nil {
			return fmt.Errorf("validator controller: check on-chain nonce: %w", err)
		}
		if current != nonce {
			// Nonce advanced on-chain since the tick started: soft
			// abandon, per spec.md §7 and testable property 9.
			return nil
		}

		encoded := abi.EncodeValidatorsVote(nonce, []abi.DepositDatum{selected.datum}, depositRoot)
		return c.submitter.Submit(ctx, "validator-vote.json", nonce, encoded)
	}

	// No registrable deposit found this tick: not an error, just nothing
	// to vote on.
	return nil
}

type selectedDeposit struct {
	datum abi.DepositDatum
}

// operatorDeposit mirrors the JSON shape of one entry in an operator's
// IPFS-hosted deposit-data file.
type operatorDeposit struct {
	PublicKey             string   `json:"public_key"`
	WithdrawalCredentials string   `json:"withdrawal_credentials"`
	DepositDataRoot       string   `json:"deposit_data_root"`
	Signature             string   `json:"signature"`
	Proof                 []string `json:"proof"`
}

func (c *ValidatorController) selectFromOperator(ctx context.Context, operator Operator, finalizedBlock uint64) (*selectedDeposit, error) {
	if operator.DepositDataURI == "" {
		return nil, nil
	}

	raw, err := c.ipfs.Fetch(ctx, operator.DepositDataURI)
	if err != nil {
		return nil, fmt.Errorf("validator controller: fetch deposit data for %s: %w", operator.Address.Hex(), err)
	}

	deposits, err := decodeOperatorDeposits(raw)
	if err != nil {
		return nil, fmt.Errorf("validator controller: decode deposit data for %s: %w", operator.Address.Hex(), err)
	}

	maxIndex := len(deposits) - 1
	index := operator.DepositDataIndex
	if index > maxIndex {
		return nil, nil
	}

	for index <= maxIndex {
		candidate := deposits[index]
		canRegister, err := c.registry.CanRegister(ctx, finalizedBlock, candidate.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("validator controller: check registration for %s: %w", candidate.PublicKey, err)
		}
		if canRegister {
			return &selectedDeposit{datum: toDepositDatum(operator.Address, candidate)}, nil
		}
		index++
	}
	return nil, nil
}

func decodeOperatorDeposits(raw []byte) ([]operatorDeposit, error) {
	var deposits []operatorDeposit
	if err := json.Unmarshal(raw, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func toDepositDatum(operator types.Address, d operatorDeposit) abi.DepositDatum {
	proof := make([]byte, 0, len(d.Proof)*32)
	for _, p := range d.Proof {
		proof = append(proof, common.FromHex(p)...)
	}

	var withdrawalCredentials, depositDataRoot [32]byte
	copy(withdrawalCredentials[:], common.FromHex(d.WithdrawalCredentials))
	copy(depositDataRoot[:], common.FromHex(d.DepositDataRoot))

	return abi.DepositDatum{
		Operator:              operator,
		WithdrawalCredentials: withdrawalCredentials,
		DepositDataRoot:       depositDataRoot,
		Signature:             common.FromHex(d.Signature),
		Proof:                 proof,
	}
}
