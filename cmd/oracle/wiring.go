package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/config"
	"github.com/stakewise-oracle/oracle-node/internal/controllers"
	"github.com/stakewise-oracle/oracle-node/internal/ipfs"
	"github.com/stakewise-oracle/oracle-node/internal/merkle"
	"github.com/stakewise-oracle/oracle-node/internal/sources/onchain"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// hexBlockTag renders a block number as the JSON-RPC quantity tag
// onchain.Client.CallContract expects.
func hexBlockTag(block uint64) string {
	return fmt.Sprintf("0x%x", block)
}

// topicsFrom converts the descriptors file's event topics into the
// onchain reader's shape (both are common.Hash under the hood).
func topicsFrom(d *config.Descriptors) onchain.EventTopics {
	return onchain.EventTopics{
		Claimed:               d.Topics.Claimed,
		ValidatorRegistration: d.Topics.ValidatorRegistration,
	}
}

// claimSourceAdapter composes the ipfs and onchain readers into
// merkle.CarryOverSource: the prior claims bundle comes from IPFS, the
// set of accounts that have since claimed comes from the distributor
// contract's Claimed event log.
type claimSourceAdapter struct {
	ipfs        *ipfs.Client
	onchain     *onchain.Client
	distributor common.Address
	topics      onchain.EventTopics
}

func (a *claimSourceAdapter) FetchClaimFile(ctx context.Context, uri string) (types.Rewards, error) {
	raw, err := a.ipfs.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	var claims map[string]merkle.ClaimEntry
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("wiring: decode claim file %s: %w", uri, err)
	}
	return merkle.DecodeClaimsBundle(claims)
}

func (a *claimSourceAdapter) ClaimedSince(ctx context.Context, fromBlock, toBlock uint64) ([]types.Address, error) {
	return a.onchain.ClaimedSince(ctx, a.distributor, a.topics, fromBlock, toBlock)
}

// registeredKeysAdapter satisfies controllers.ValidatorKeysSource by
// scanning the registry's ValidatorRegistration log from genesis
// through upToBlock, the pool's full set of currently registered keys.
type registeredKeysAdapter struct {
	client   *onchain.Client
	registry common.Address
	topics   onchain.EventTopics
}

func (a *registeredKeysAdapter) RegisteredPublicKeys(ctx context.Context, upToBlock uint64) ([]string, error) {
	used, err := a.client.RegisteredPublicKeys(ctx, a.registry, a.topics, 0, upToBlock)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(used))
	for k := range used {
		keys = append(keys, k)
	}
	return keys, nil
}

// operatorsAdapter satisfies controllers.OperatorsSource from the
// descriptors file's static operator list (SPEC_FULL.md §4.5: "iterates
// configured operators").
type operatorsAdapter struct {
	operators []controllers.Operator
}

func (a *operatorsAdapter) Operators(ctx context.Context, upToBlock uint64) ([]controllers.Operator, error) {
	return a.operators, nil
}

// registrationCheckAdapter satisfies controllers.RegistrationCheck
// against the configured registry/pool contracts and view selectors.
type registrationCheckAdapter struct {
	client    *onchain.Client
	registry  common.Address
	pool      common.Address
	topics    onchain.EventTopics
	selectors config.Selectors
}

func (a *registrationCheckAdapter) CanRegister(ctx context.Context, upToBlock uint64, publicKeyHex string) (bool, error) {
	used, err := a.client.RegisteredPublicKeys(ctx, a.registry, a.topics, 0, upToBlock)
	if err != nil {
		return false, err
	}
	return !used[publicKeyHex], nil
}

func (a *registrationCheckAdapter) DepositRoot(ctx context.Context, atBlock uint64) ([32]byte, error) {
	return a.client.ReadBytes32(ctx, a.registry, onchain.Selector(a.selectors.DepositRoot), hexBlockTag(atBlock))
}

func (a *registrationCheckAdapter) PoolBalance(ctx context.Context, atBlock uint64) (*types.Amount, error) {
	return a.client.ReadUint256(ctx, a.pool, onchain.Selector(a.selectors.PoolBalance), hexBlockTag(atBlock))
}

// rewardsStateReader reads the rewards contract's on-chain voting
// state each tick, the concrete backing for
// controllers.RewardsVotingState that the teacher's original design
// left as a bare struct literal.
type rewardsStateReader struct {
	client    *onchain.Client
	contract  common.Address
	selectors config.Selectors
}

func (r *rewardsStateReader) Read(ctx context.Context, atBlock uint64) (controllers.RewardsVotingState, error) {
	blockTag := hexBlockTag(atBlock)

	nonce, err := r.client.ReadUint256(ctx, r.contract, onchain.Selector(r.selectors.RewardsNonce), blockTag)
	if err != nil {
		return controllers.RewardsVotingState{}, fmt.Errorf("wiring: read rewards nonce: %w", err)
	}
	updatedAt, err := r.client.ReadUint256(ctx, r.contract, onchain.Selector(r.selectors.RewardsUpdatedAt), blockTag)
	if err != nil {
		return controllers.RewardsVotingState{}, fmt.Errorf("wiring: read rewards updated-at: %w", err)
	}
	fees, err := r.client.ReadUint256(ctx, r.contract, onchain.Selector(r.selectors.RewardsTotalFees), blockTag)
	if err != nil {
		return controllers.RewardsVotingState{}, fmt.Errorf("wiring: read total fees: %w", err)
	}
	rewards, err := r.client.ReadUint256(ctx, r.contract, onchain.Selector(r.selectors.RewardsTotalRewards), blockTag)
	if err != nil {
		return controllers.RewardsVotingState{}, fmt.Errorf("wiring: read total rewards: %w", err)
	}

	return controllers.RewardsVotingState{
		Nonce:              nonce.Uint64(),
		UpdatedAtTimestamp: int64(updatedAt.Uint64()),
		TotalFees:          fees,
		TotalRewards:       rewards,
	}, nil
}

// toOperators converts the descriptors file's static operator list to
// the shape controllers.OperatorsSource returns.
func toOperators(configured []config.OperatorConfig) []controllers.Operator {
	out := make([]controllers.Operator, len(configured))
	for i, o := range configured {
		out[i] = controllers.Operator{
			Address:          o.Address,
			DepositDataURI:   o.DepositDataURI,
			DepositDataIndex: o.DepositDataIndex,
		}
	}
	return out
}
