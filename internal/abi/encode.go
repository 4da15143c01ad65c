// Package abi implements the narrow slice of Solidity ABI encoding this
// node needs: the four fixed tuple signatures used for merkle-leaf
// hashing and vote-payload signing (see SPEC_FULL.md §4.3/§6). It is not
// a general ABI codec — ordinary Solidity ABI encoding is a
// head/tail layout where static words go in the head and dynamic data
// (strings, bytes, arrays, tuples containing them) is appended to the
// tail with the head slot holding a byte offset to it.
package abi

import (
	"encoding/binary"
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/holiman/uint256"
)

const wordSize = 32

// word left-pads/right-pads per ABI rules: numeric and address/bool
// types are left-padded (big-endian value in a 32-byte word); bytes
// payloads are right-padded only within their own length-prefixed blob,
// which callers handle directly.
func word(b []byte) []byte {
	out := make([]byte, wordSize)
	copy(out[wordSize-len(b):], b)
	return out
}

func uint256Word(v *uint256.Int) []byte {
	return word(v.Bytes())
}

func uint64Word(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return word(b)
}

func addressWord(a common.Address) []byte {
	return word(a.Bytes())
}

func bytes32Word(b [32]byte) []byte {
	out := make([]byte, 32)
	copy(out, b[:])
	return out
}

// padRight pads b up to the next multiple of 32 bytes, as ABI requires
// for dynamic `bytes`/`string` payload blobs.
func padRight(b []byte) []byte {
	rem := len(b) % wordSize
	if rem == 0 {
		return b
	}
	return append(append([]byte{}, b...), make([]byte, wordSize-rem)...)
}

// encodeDynamicBytes returns the length-prefixed, zero-padded
// representation of a `bytes`/`string` value's tail data (the part that
// an offset word in the head points to).
func encodeDynamicBytes(b []byte) []byte {
	out := make([]byte, 0, wordSize+len(b)+wordSize)
	out = append(out, uint64Word(uint64(len(b)))...)
	out = append(out, padRight(b)...)
	return out
}

// offsetWord renders a byte offset (relative to the start of the
// enclosing head+tail block) as a uint256 ABI word.
func offsetWord(offset int) []byte {
	return new(big.Int).SetInt64(int64(offset)).FillBytes(make([]byte, wordSize))
}
