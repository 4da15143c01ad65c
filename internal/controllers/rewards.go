// Package controllers implements the three per-tick scheduling
// controllers of SPEC_FULL.md §4.5, grounded in
// original_source/oracle/oracle/rewards/controller.py and
// .../validators/eth1.py.
package controllers

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/stakewise-oracle/oracle-node/internal/abi"
	"github.com/stakewise-oracle/oracle-node/internal/clock"
	"github.com/stakewise-oracle/oracle-node/internal/config"
	"github.com/stakewise-oracle/oracle-node/internal/sources/beacon"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

const depositAmountGwei = 32_000_000_000 // 32 ETH/GNO in gwei

// ValidatorKeysSource supplies the pool's currently registered
// validator public keys, sourced from internal/sources/onchain.
type ValidatorKeysSource interface {
	RegisteredPublicKeys(ctx context.Context, upToBlock uint64) ([]string, error)
}

// VoteSubmitter signs and publishes an encoded vote payload; shared by
// all three controllers.
type VoteSubmitter interface {
	Submit(ctx context.Context, name string, nonce uint64, encoded []byte) error
}

// RewardsVotingState is the on-chain voting state a rewards controller
// tick reads before deciding whether to act.
type RewardsVotingState struct {
	Nonce              uint64
	UpdatedAtTimestamp int64
	TotalFees          *types.Amount
	TotalRewards       *types.Amount
}

// RewardsController implements spec.md §4.5's rewards vote: it decides
// whether a sync period has elapsed, waits for the beacon chain to
// finalize the target epoch, sums activated-validator balances minus
// the 32 ETH/GNO deposit (converting via the configured mGNO/GNO rate
// when applicable), and never lets total_rewards regress.
type RewardsController struct {
	clock     clock.Clock
	preset    config.NetworkPreset
	beacon    *beacon.Client
	keys      ValidatorKeysSource
	nonce     NonceSource
	submitter VoteSubmitter
	chunkSize int
}

// NewRewardsController constructs a RewardsController. nonce re-reads
// the rewards contract's on-chain nonce immediately before submission
// so a superseded tick can abandon quietly (spec.md §7).
func NewRewardsController(clk clock.Clock, preset config.NetworkPreset, beaconClient *beacon.Client, keys ValidatorKeysSource, nonce NonceSource, submitter VoteSubmitter, chunkSize int) *RewardsController {
	return &RewardsController{clock: clk, preset: preset, beacon: beaconClient, keys: keys, nonce: nonce, submitter: submitter, chunkSize: chunkSize}
}

// Process runs one rewards-controller tick at finalizedBlock/finalizedTimestamp.
func (c *RewardsController) Process(ctx context.Context, state RewardsVotingState, syncPeriodSeconds uint64, finalizedBlock uint64, finalizedTimestamp int64) error {
	nextUpdate := state.UpdatedAtTimestamp + int64(syncPeriodSeconds)
	now := c.clock.Now().Unix()
	for nextUpdate+int64(syncPeriodSeconds) <= now {
		nextUpdate += int64(syncPeriodSeconds)
	}
	if nextUpdate > now {
		return nil
	}

	publicKeys, err := c.keys.RegisteredPublicKeys(ctx, finalizedBlock)
	if err != nil {
		return fmt.Errorf("rewards controller: fetch registered public keys: %w", err)
	}

	updateEpoch := (uint64(nextUpdate) - c.preset.GenesisTime) / (c.preset.SlotsPerEpoch * c.preset.SecondsPerSlot)

	finalizedEpoch, err := c.beacon.FinalizedEpoch(ctx)
	if err != nil {
		return fmt.Errorf("rewards controller: fetch finality checkpoints: %w", err)
	}
	if finalizedEpoch < updateEpoch {
		// The caller's tick loop retries next tick; per spec.md §4.5 this
		// is a long wait, not a busy loop, so we return rather than block.
		return fmt.Errorf("rewards controller: epoch %d not yet finalized (at %d)", updateEpoch, finalizedEpoch)
	}

	stateID := fmt.Sprintf("%d", updateEpoch*c.preset.SlotsPerEpoch)

	// total_rewards is accumulated as a signed quantity: a slashed or
	// underwater validator's balance-minus-deposit delta is negative and
	// must net against the rest of the pool, not clamp to zero, matching
	// original_source's unclamped Python `total_rewards += validator_reward`.
	totalRewardsSigned := new(big.Int).Set(state.TotalFees.ToBig())
	activatedValidators := uint64(0)

	validators, err := c.beacon.Validators(ctx, stateID, publicKeys, c.chunkSize)
	if err != nil {
		return fmt.Errorf("rewards controller: fetch validator balances: %w", err)
	}
	for _, v := range validators {
		if beacon.PendingStatuses[v.Status] {
			continue
		}
		activatedValidators++

		balanceGwei, ok := new(uint256.Int).SetString(v.Balance)
		if !ok {
			return fmt.Errorf("rewards controller: validator %s has non-numeric balance %q", v.Index, v.Balance)
		}
		balanceWei := new(uint256.Int).Mul(balanceGwei, uint256.NewInt(1_000_000_000))
		depositWei := new(uint256.Int).Mul(uint256.NewInt(depositAmountGwei), uint256.NewInt(1_000_000_000))

		delta := new(big.Int).Sub(balanceWei.ToBig(), depositWei.ToBig())
		if c.preset.UsesMGNOConversion {
			delta.Mul(delta, big.NewInt(1_000_000_000_000_000_000))
			delta.Quo(delta, new(big.Int).SetUint64(c.preset.MGNORateWAD))
		}
		totalRewardsSigned.Add(totalRewardsSigned, delta)
	}

	if totalRewardsSigned.Sign() == 0 {
		return nil
	}

	// Never decrease total_rewards below the on-chain value; clamp upward
	// (also catches a net-negative signed sum, since the on-chain value is
	// always non-negative).
	totalRewards := state.TotalRewards
	if totalRewardsSigned.Cmp(state.TotalRewards.ToBig()) >= 0 {
		converted, overflow := uint256.FromBig(totalRewardsSigned)
		if overflow {
			return fmt.Errorf("rewards controller: computed total_rewards overflows 256 bits")
		}
		totalRewards = converted
	}

	current, err := c.nonce.CurrentNonce(ctx)
	if err != nil {
		return fmt.Errorf("rewards controller: check on-chain nonce: %w", err)
	}
	if current != state.Nonce {
		// Nonce advanced on-chain since the tick started: soft abandon,
		// per spec.md §7 and testable property 9.
		return nil
	}

	encoded := abi.EncodeRewardsVote(state.Nonce, activatedValidators, totalRewards)
	return c.submitter.Submit(ctx, "reward-vote.json", state.Nonce, encoded)
}
