package abi

import (
	"github.com/luxfi/geth/common"
	"github.com/holiman/uint256"
)

// encodeAddressArray renders a `address[]` value's tail data: a length
// word followed by one word per element (address arrays have no
// per-element padding beyond the standard word).
func encodeAddressArray(addrs []common.Address) []byte {
	out := make([]byte, 0, wordSize+len(addrs)*wordSize)
	out = append(out, uint64Word(uint64(len(addrs)))...)
	for _, a := range addrs {
		out = append(out, addressWord(a)...)
	}
	return out
}

// encodeUint256Array renders a `uint256[]` value's tail data.
func encodeUint256Array(vals []*uint256.Int) []byte {
	out := make([]byte, 0, wordSize+len(vals)*wordSize)
	out = append(out, uint64Word(uint64(len(vals)))...)
	for _, v := range vals {
		out = append(out, uint256Word(v)...)
	}
	return out
}

// EncodeLeaf encodes the merkle-distributor leaf tuple
// (uint256 index, address[] tokens, address account, uint256[] amounts),
// matching the original oracle's `w3.codec.encode_abi` call in
// get_merkle_node. The caller hashes the result with keccak256.
func EncodeLeaf(index uint32, tokens []common.Address, account common.Address, amounts []*uint256.Int) []byte {
	const headWords = 4
	headSize := headWords * wordSize

	tokensTail := encodeAddressArray(tokens)
	tokensOffset := headSize
	amountsOffset := tokensOffset + len(tokensTail)
	amountsTail := encodeUint256Array(amounts)

	out := make([]byte, 0, headSize+len(tokensTail)+len(amountsTail))
	out = append(out, uint64Word(uint64(index))...)
	out = append(out, offsetWord(tokensOffset)...)
	out = append(out, addressWord(account)...)
	out = append(out, offsetWord(amountsOffset)...)
	out = append(out, tokensTail...)
	out = append(out, amountsTail...)
	return out
}
