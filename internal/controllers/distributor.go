package controllers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stakewise-oracle/oracle-node/internal/abi"
	"github.com/stakewise-oracle/oracle-node/internal/allocator"
	"github.com/stakewise-oracle/oracle-node/internal/ipfs"
	"github.com/stakewise-oracle/oracle-node/internal/merkle"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// DistributorController implements spec.md §4.5's distributor vote:
// allocate every configured DistributionDescriptor, merge in the
// unclaimed carry-over from the previous epoch, build the Merkle
// tree, pin the claims bundle to IPFS, and submit a signed
// (nonce, merkle_root, ipfs_cid) vote.
type DistributorController struct {
	allocator   *allocator.Allocator
	carryOver   merkle.CarryOverSource
	ipfs        *ipfs.Client
	nonce       NonceSource
	submitter   VoteSubmitter
	descriptors []types.DistributionDescriptor
}

// NewDistributorController constructs a DistributorController. nonce
// re-reads the distributor contract's on-chain nonce immediately
// before submission so a superseded tick can abandon quietly
// (spec.md §7).
func NewDistributorController(alloc *allocator.Allocator, carryOver merkle.CarryOverSource, ipfsClient *ipfs.Client, nonce NonceSource, submitter VoteSubmitter, descriptors []types.DistributionDescriptor) *DistributorController {
	return &DistributorController{allocator: alloc, carryOver: carryOver, ipfs: ipfsClient, nonce: nonce, submitter: submitter, descriptors: descriptors}
}

// DistributorOutcome reports what a DistributorController tick
// published, if anything, so the caller can carry the root/proofs URI
// forward into the next tick's VotingParameters.
type DistributorOutcome struct {
	Submitted  bool
	MerkleRoot [32]byte
	ProofsURI  string
}

// Process runs one distributor-controller tick given the current
// voting parameters.
func (c *DistributorController) Process(ctx context.Context, params types.VotingParameters) (DistributorOutcome, error) {
	rewards := types.NewRewards()

	for _, descriptor := range c.descriptors {
		descriptorRewards, err := c.allocator.Allocate(ctx, descriptor.Contract, descriptor.Reward, descriptor.RewardToken)
		if err != nil {
			return DistributorOutcome{}, fmt.Errorf("distributor controller: allocate for %s: %w", descriptor.Contract.Hex(), err)
		}
		rewards.Merge(descriptorRewards)
	}

	carried, err := merkle.LoadCarryOver(ctx, c.carryOver, params.PrevProofsURI, params.FromBlock, params.ToBlock)
	if err != nil {
		return DistributorOutcome{}, fmt.Errorf("distributor controller: load carry-over: %w", err)
	}
	rewards.Merge(carried)

	result := merkle.Build(rewards)

	claimsJSON, err := json.Marshal(result.Claims)
	if err != nil {
		return DistributorOutcome{}, fmt.Errorf("distributor controller: marshal claims bundle: %w", err)
	}

	cid, err := c.ipfs.Upload(ctx, claimsJSON)
	if err != nil {
		return DistributorOutcome{}, fmt.Errorf("distributor controller: upload claims bundle: %w", err)
	}

	current, err := c.nonce.CurrentNonce(ctx)
	if err != nil {
		return DistributorOutcome{}, fmt.Errorf("distributor controller: check on-chain nonce: %w", err)
	}
	if current != params.Nonce {
		// Nonce advanced on-chain since the tick started: soft abandon,
		// per spec.md §7 and testable property 9.
		return DistributorOutcome{}, nil
	}

	encoded := abi.EncodeDistributorVote(params.Nonce, cid, result.Root)
	if err := c.submitter.Submit(ctx, "distributor-vote.json", params.Nonce, encoded); err != nil {
		return DistributorOutcome{}, err
	}
	return DistributorOutcome{Submitted: true, MerkleRoot: result.Root, ProofsURI: cid}, nil
}
