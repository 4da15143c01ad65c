package signer

import (
	"testing"

	"github.com/luxfi/geth/crypto"
	"github.com/stretchr/testify/require"
)

func TestSignIsDeterministicPerKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := crypto.FromECDSA(key)

	s, err := New(bytesToHex(hexKey))
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	payload := []byte("encoded-vote-payload")
	sig1, err := s.Sign(payload)
	require.NoError(t, err)
	require.Len(t, sig1, 65)
	require.Contains(t, []byte{27, 28}, sig1[64])
}

func bytesToHex(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
