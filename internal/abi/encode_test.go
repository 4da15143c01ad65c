package abi

import (
	"encoding/hex"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEncodeLeafLayout(t *testing.T) {
	tokens := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	amounts := []*uint256.Int{uint256.NewInt(100), uint256.NewInt(200)}
	account := common.HexToAddress("0x3333333333333333333333333333333333333333")

	encoded := EncodeLeaf(5, tokens, account, amounts)

	require.Equal(t, 0, len(encoded)%32, "ABI output must be word-aligned")

	// head: index, tokens-offset, account, amounts-offset
	require.Equal(t, uint64(5), bigWordUint64(encoded[0:32]))
	tokensOffset := bigWordUint64(encoded[32:64])
	require.Equal(t, uint64(128), tokensOffset)
	require.Equal(t, account.Bytes(), encoded[64+12:96])
	amountsOffset := bigWordUint64(encoded[96:128])

	// tokens tail: length then each address word
	tokensLen := bigWordUint64(encoded[128:160])
	require.Equal(t, uint64(2), tokensLen)
	require.Equal(t, tokens[0].Bytes(), encoded[160+12:192])
	require.Equal(t, tokens[1].Bytes(), encoded[192+12:224])

	amountsStart := int(amountsOffset)
	amountsLen := bigWordUint64(encoded[amountsStart : amountsStart+32])
	require.Equal(t, uint64(2), amountsLen)
}

func TestEncodeLeafDeterministic(t *testing.T) {
	tokens := []common.Address{common.HexToAddress("0xaaaa")}
	amounts := []*uint256.Int{uint256.NewInt(42)}
	account := common.HexToAddress("0xbbbb")

	a := EncodeLeaf(0, tokens, account, amounts)
	b := EncodeLeaf(0, tokens, account, amounts)
	require.Equal(t, hex.EncodeToString(a), hex.EncodeToString(b))
}

func TestEncodeDistributorVoteRoundTripsLength(t *testing.T) {
	root := [32]byte{1, 2, 3}
	encoded := EncodeDistributorVote(7, "QmExampleCID", root)
	require.Equal(t, 0, len(encoded)%32)
	require.Equal(t, uint64(7), bigWordUint64(encoded[0:32]))
}

func TestEncodeValidatorsVoteEmpty(t *testing.T) {
	root := [32]byte{9}
	encoded := EncodeValidatorsVote(1, nil, root)
	require.Equal(t, 0, len(encoded)%32)
	dataOffset := bigWordUint64(encoded[32:64])
	arrLen := bigWordUint64(encoded[dataOffset : dataOffset+32])
	require.Equal(t, uint64(0), arrLen)
}

func bigWordUint64(word []byte) uint64 {
	var v uint64
	for _, b := range word[len(word)-8:] {
		v = v<<8 | uint64(b)
	}
	return v
}
