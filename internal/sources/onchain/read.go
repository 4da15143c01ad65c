package onchain

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Selector identifies a zero-argument Solidity view function by its
// 4-byte selector. The controllers read nonce/deposit-root/pool-balance
// state this way rather than through a bound contract ABI, since the
// concrete deployed contracts are external collaborators this reader
// never links against (SPEC_FULL.md §4.6).
type Selector [4]byte

// ReadUint256 calls a zero-argument view function at the given block
// tag and decodes its return value as a single uint256 word.
func (c *Client) ReadUint256(ctx context.Context, contract common.Address, selector Selector, blockTag string) (*uint256.Int, error) {
	raw, err := c.CallContract(ctx, contract, selector[:], blockTag)
	if err != nil {
		return nil, fmt.Errorf("onchain: read uint256 from %s: %w", contract.Hex(), err)
	}
	if len(raw) < 32 {
		return nil, fmt.Errorf("onchain: %s returned %d bytes, want a 32-byte word", contract.Hex(), len(raw))
	}
	return new(uint256.Int).SetBytes(raw[:32]), nil
}

// ReadBytes32 calls a zero-argument view function and decodes its
// return value as a single bytes32 word.
func (c *Client) ReadBytes32(ctx context.Context, contract common.Address, selector Selector, blockTag string) ([32]byte, error) {
	var out [32]byte
	raw, err := c.CallContract(ctx, contract, selector[:], blockTag)
	if err != nil {
		return out, fmt.Errorf("onchain: read bytes32 from %s: %w", contract.Hex(), err)
	}
	if len(raw) < 32 {
		return out, fmt.Errorf("onchain: %s returned %d bytes, want a 32-byte word", contract.Hex(), len(raw))
	}
	copy(out[:], raw[:32])
	return out, nil
}

// ContractNonceSource re-reads a single contract's nonce()-style view
// function, satisfying controllers.NonceSource structurally.
type ContractNonceSource struct {
	client   *Client
	contract common.Address
	selector Selector
}

// NewContractNonceSource constructs a ContractNonceSource.
func NewContractNonceSource(client *Client, contract common.Address, selector Selector) *ContractNonceSource {
	return &ContractNonceSource{client: client, contract: contract, selector: selector}
}

// CurrentNonce reads the contract's nonce at the chain head.
func (s *ContractNonceSource) CurrentNonce(ctx context.Context) (uint64, error) {
	v, err := s.client.ReadUint256(ctx, s.contract, s.selector, "latest")
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}
