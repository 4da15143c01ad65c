package controllers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/stakewise-oracle/oracle-node/internal/publisher"
	"github.com/stakewise-oracle/oracle-node/internal/signer"
)

// NonceSource re-reads a vote kind's current on-chain nonce. Each
// controller checks this immediately before submitting so a tick whose
// nonce was superseded by another oracle (or a prior run of this one)
// abandons quietly instead of publishing a stale vote (spec.md §7,
// testable property 9).
type NonceSource interface {
	CurrentNonce(ctx context.Context) (uint64, error)
}

// SignedSubmitter is the concrete VoteSubmitter shared by all three
// controllers: sign the encoded payload, append it, and publish the
// result under the oracle's own address (spec.md §6's three vote
// names).
type SignedSubmitter struct {
	signer    *signer.Signer
	publisher *publisher.Publisher
}

// NewSignedSubmitter constructs a SignedSubmitter.
func NewSignedSubmitter(s *signer.Signer, p *publisher.Publisher) *SignedSubmitter {
	return &SignedSubmitter{signer: s, publisher: p}
}

type signedVote struct {
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
	Payload   string `json:"payload"`
}

// Submit signs encoded and publishes the resulting vote document under
// name.
func (s *SignedSubmitter) Submit(ctx context.Context, name string, nonce uint64, encoded []byte) error {
	sig, err := s.signer.Sign(encoded)
	if err != nil {
		return fmt.Errorf("submitter: sign %s vote: %w", name, err)
	}

	vote := signedVote{
		Nonce:     nonce,
		Signature: "0x" + hex.EncodeToString(sig),
		Payload:   "0x" + hex.EncodeToString(encoded),
	}
	body, err := json.Marshal(vote)
	if err != nil {
		return fmt.Errorf("submitter: marshal %s vote: %w", name, err)
	}

	return s.publisher.Publish(ctx, s.signer.Address().Hex(), publisher.VoteName(name), body)
}
