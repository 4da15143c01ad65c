// Package types holds the data model shared by the allocator, position
// engines, merkle builder and controllers: addresses, amounts, balances
// and reward maps. Nothing here talks to the network.
package types

import (
	"bytes"
	"sort"
	"strings"

	"github.com/luxfi/geth/common"
)

// Address is a 20-byte account or contract identifier. It is a thin alias
// over the teacher's common.Address so map keys and checksum formatting
// come for free, while keeping this package's public surface independent
// of the underlying EVM library.
type Address = common.Address

// ZeroAddress is the well-known null beneficiary; holders at this address
// are dropped by the TokenTimeWeighted position engine.
var ZeroAddress Address

// ParseAddress parses a hex string (with or without 0x prefix) into an
// Address, matching the teacher's HexToAddress semantics.
func ParseAddress(s string) Address {
	return common.HexToAddress(s)
}

// SortAddresses returns a new slice with addrs sorted in strictly
// ascending byte order, the ordering the allocator, merkle builder and
// position engines all depend on for determinism.
func SortAddresses(addrs []Address) []Address {
	out := make([]Address, len(addrs))
	copy(out, addrs)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out
}

// IsSortedAddresses reports whether addrs is strictly ascending, used by
// tests asserting the sort-stability invariant.
func IsSortedAddresses(addrs []Address) bool {
	for i := 1; i < len(addrs); i++ {
		if bytes.Compare(addrs[i-1].Bytes(), addrs[i].Bytes()) >= 0 {
			return false
		}
	}
	return true
}

// StripIPFSPrefix removes a leading "ipfs://" or "/ipfs/" from a CID
// string, both of which the protocol's contracts and subgraphs emit
// interchangeably.
func StripIPFSPrefix(cid string) string {
	cid = strings.TrimPrefix(cid, "ipfs://")
	cid = strings.TrimPrefix(cid, "/ipfs/")
	return cid
}
