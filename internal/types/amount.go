package types

import "github.com/holiman/uint256"

// Amount is a non-negative 256-bit base-unit quantity. All allocation and
// merkle-leaf arithmetic uses it directly; floating point never appears
// on this path.
type Amount = uint256.Int

// ZeroAmount returns a freshly allocated zero-valued Amount. uint256.Int's
// zero value is already zero, but the helper keeps call sites explicit
// about intent (and shields them from the underlying type's mutability).
func ZeroAmount() *Amount {
	return new(uint256.Int)
}

// NewAmount constructs an Amount from a uint64, the common case for test
// fixtures and small constants (the 32 ETH deposit amount, WAD, etc).
func NewAmount(v uint64) *Amount {
	return new(uint256.Int).SetUint64(v)
}

// AddAmounts returns a new Amount equal to a+b without mutating either
// operand.
func AddAmounts(a, b *Amount) *Amount {
	out := new(uint256.Int)
	return out.Add(a, b)
}

// SubAmounts returns a new Amount equal to a-b without mutating either
// operand. Callers must ensure a >= b; the allocator's last-account
// absorption step is the only place this can legitimately go negative,
// and it never does given conservation (see internal/allocator).
func SubAmounts(a, b *Amount) *Amount {
	out := new(uint256.Int)
	return out.Sub(a, b)
}

// MulDiv computes floor(a*b/c) using 512-bit intermediate precision,
// matching the allocator's `reward * balance / total_supply` division
// with truncation toward zero. c must be non-zero; callers check
// total_supply > 0 before distributing (see internal/allocator).
func MulDiv(a, b, c *Amount) *Amount {
	out := new(uint256.Int)
	out, _ = out.MulDivOverflow(a, b, c)
	return out
}
