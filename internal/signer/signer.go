// Package signer implements keccak256 + EIP-191 personal-message
// signing over the ABI-encoded vote payloads, grounded in the teacher's
// use of github.com/luxfi/geth/crypto for keccak hashing elsewhere in
// the codebase (e.g. sync/atomic summary IDs).
package signer

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"
)

const personalMessagePrefix = "\x19Ethereum Signed Message:\n32"

// Signer signs already-computed ABI payloads with a single oracle
// private key. It never computes the payload itself — that is the
// controllers' job — so the key is only ever used on data the rest of
// the node has already finished deriving deterministically.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// New constructs a Signer from a hex-encoded secp256k1 private key (no
// 0x prefix required). A missing or malformed key is a startup-fatal
// error per SPEC_FULL.md §7.
func New(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("signer: parse oracle private key: %w", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the oracle's public address, used as the object-store
// upload path component.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign hashes encodedPayload with keccak256, wraps it in the EIP-191
// personal-message prefix, hashes again, and signs with ECDSA. The
// returned 65-byte signature is r‖s‖v with v in {27,28} as Ethereum
// wallets and contracts expect.
func (s *Signer) Sign(encodedPayload []byte) ([]byte, error) {
	payloadHash := crypto.Keccak256(encodedPayload)
	digest := crypto.Keccak256(append([]byte(personalMessagePrefix), payloadHash...))

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("signer: sign digest: %w", err)
	}
	// crypto.Sign returns v in {0,1}; personal-message signatures are
	// conventionally rendered with v in {27,28}.
	sig[64] += 27
	return sig, nil
}
