package abi

import "github.com/luxfi/geth/common"

// DepositDatum mirrors the on-chain tuple
// (address operator, bytes32 withdrawalCredentials, bytes32 depositDataRoot, bytes signature, bytes proof)
// carried in the validators vote payload.
type DepositDatum struct {
	Operator              common.Address
	WithdrawalCredentials [32]byte
	DepositDataRoot       [32]byte
	Signature             []byte
	Proof                 []byte
}

// encode renders one DepositDatum as a self-contained ABI blob: a 5-word
// head (operator, withdrawalCredentials, depositDataRoot, sig-offset,
// proof-offset) followed by the signature and proof tail data. Offsets
// within this blob are relative to its own start, matching how a
// dynamic tuple is encoded inside a dynamic array's element slot.
func (d DepositDatum) encode() []byte {
	const headWords = 5
	headSize := headWords * wordSize

	sigTail := encodeDynamicBytes(d.Signature)
	sigOffset := headSize
	proofOffset := sigOffset + len(sigTail)
	proofTail := encodeDynamicBytes(d.Proof)

	out := make([]byte, 0, headSize+len(sigTail)+len(proofTail))
	out = append(out, addressWord(d.Operator)...)
	out = append(out, bytes32Word(d.WithdrawalCredentials)...)
	out = append(out, bytes32Word(d.DepositDataRoot)...)
	out = append(out, offsetWord(sigOffset)...)
	out = append(out, offsetWord(proofOffset)...)
	out = append(out, sigTail...)
	out = append(out, proofTail...)
	return out
}

// encodeDepositData renders the tail data for a dynamic array of dynamic
// tuples: a length word, then one offset per element (relative to the
// start of the offset table, i.e. the position right after the length
// word), then each element's blob in order.
func encodeDepositData(data []DepositDatum) []byte {
	elementBlobs := make([][]byte, len(data))
	for i, d := range data {
		elementBlobs[i] = d.encode()
	}

	offsetTableSize := len(data) * wordSize
	out := make([]byte, 0)
	out = append(out, uint64Word(uint64(len(data)))...)

	runningOffset := offsetTableSize
	for _, blob := range elementBlobs {
		out = append(out, offsetWord(runningOffset)...)
		runningOffset += len(blob)
	}
	for _, blob := range elementBlobs {
		out = append(out, blob...)
	}
	return out
}
