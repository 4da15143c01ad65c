package abi

import "github.com/holiman/uint256"

// EncodeRewardsVote encodes (uint256 nonce, uint256 activatedValidators,
// uint256 totalRewards), the payload signed for the rewards vote.
func EncodeRewardsVote(nonce uint64, activatedValidators uint64, totalRewards *uint256.Int) []byte {
	out := make([]byte, 0, 3*wordSize)
	out = append(out, uint64Word(nonce)...)
	out = append(out, uint64Word(activatedValidators)...)
	out = append(out, uint256Word(totalRewards)...)
	return out
}

// EncodeDistributorVote encodes (uint256 nonce, string ipfsCID, bytes32
// merkleRoot), the payload signed for the distributor vote.
func EncodeDistributorVote(nonce uint64, ipfsCID string, merkleRoot [32]byte) []byte {
	const headWords = 3
	headSize := headWords * wordSize

	cidTail := encodeDynamicBytes([]byte(ipfsCID))

	out := make([]byte, 0, headSize+len(cidTail))
	out = append(out, uint64Word(nonce)...)
	out = append(out, offsetWord(headSize)...)
	out = append(out, bytes32Word(merkleRoot)...)
	out = append(out, cidTail...)
	return out
}

// EncodeValidatorsVote encodes (uint256 nonce, DepositDatum[] depositData,
// bytes32 validatorsDepositRoot), the payload signed for the validator
// vote.
func EncodeValidatorsVote(nonce uint64, depositData []DepositDatum, validatorsDepositRoot [32]byte) []byte {
	const headWords = 3
	headSize := headWords * wordSize

	dataTail := encodeDepositData(depositData)

	out := make([]byte, 0, headSize+len(dataTail))
	out = append(out, uint64Word(nonce)...)
	out = append(out, offsetWord(headSize)...)
	out = append(out, bytes32Word(validatorsDepositRoot)...)
	out = append(out, dataTail...)
	return out
}
