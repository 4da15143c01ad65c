package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// DescriptorsFileKey is bound alongside the rest of BuildFlagSet's
// keys: the JSON file naming the deployment-specific wiring SPEC_FULL.md
// §4.9 calls out as required config surface (recognized pool sets,
// distribution schedule, operators, redirect table, contract addresses
// and the view-function selectors the controllers read each tick).
const DescriptorsFileKey = "descriptors-file"

// Selector is a 4-byte Solidity function selector for a zero-argument
// view call, supplied per-deployment since the concrete contract ABIs
// are external collaborators this repository never binds against
// directly (spec.md §1).
type Selector [4]byte

// ContractSet names the on-chain contracts the controllers read from
// and vote against.
type ContractSet struct {
	RewardsContract     types.Address
	DistributorContract types.Address
	RegistryContract    types.Address
	PoolContract        types.Address
}

// Selectors names the view-function selectors used for every
// zero-argument on-chain read the controllers perform each tick.
type Selectors struct {
	RewardsNonce        Selector
	DistributorNonce    Selector
	RegistryNonce       Selector
	RewardsUpdatedAt    Selector
	RewardsTotalFees    Selector
	RewardsTotalRewards Selector
	DepositRoot         Selector
	PoolBalance         Selector
}

// EventTopics names the log topics the onchain reader filters on.
type EventTopics struct {
	Claimed               common.Hash
	ValidatorRegistration common.Hash
}

// OperatorConfig is one configured validator-registering operator
// (SPEC_FULL.md §4.5's "iterates configured operators").
type OperatorConfig struct {
	Address          types.Address
	DepositDataURI   string
	DepositDataIndex int
}

// Descriptors is the fully resolved deployment-specific wiring loaded
// from DescriptorsFileKey: the recognized pool set the allocator
// resolves against, the distributor's reward schedule, the redirect
// table, the operator set, and the contracts/selectors/topics the
// controllers read on-chain state from.
type Descriptors struct {
	Pools         map[types.Address]types.PoolKind
	Distributions []types.DistributionDescriptor
	Redirects     map[types.Address]types.Address
	Operators     []OperatorConfig
	Contracts     ContractSet
	Selectors     Selectors
	Topics        EventTopics
}

type descriptorsFile struct {
	Pools map[string]struct {
		Kind      string `json:"kind"`
		Pool      string `json:"pool"`
		Token     string `json:"token"`
		CToken    string `json:"ctoken"`
		TickLower int    `json:"tick_lower"`
		TickUpper int    `json:"tick_upper"`
	} `json:"pools"`

	Distributions []struct {
		Contract    string `json:"contract"`
		Reward      string `json:"reward"`
		RewardToken string `json:"reward_token"`
	} `json:"distributions"`

	Redirects map[string]string `json:"redirects"`

	Operators []struct {
		Address          string `json:"address"`
		DepositDataURI   string `json:"deposit_data_uri"`
		DepositDataIndex int    `json:"deposit_data_index"`
	} `json:"operators"`

	Contracts struct {
		Rewards     string `json:"rewards"`
		Distributor string `json:"distributor"`
		Registry    string `json:"registry"`
		Pool        string `json:"pool"`
	} `json:"contracts"`

	Selectors struct {
		RewardsNonce        string `json:"rewards_nonce"`
		DistributorNonce    string `json:"distributor_nonce"`
		RegistryNonce       string `json:"registry_nonce"`
		RewardsUpdatedAt    string `json:"rewards_updated_at"`
		RewardsTotalFees    string `json:"rewards_total_fees"`
		RewardsTotalRewards string `json:"rewards_total_rewards"`
		DepositRoot         string `json:"deposit_root"`
		PoolBalance         string `json:"pool_balance"`
	} `json:"selectors"`

	Topics struct {
		Claimed               string `json:"claimed"`
		ValidatorRegistration string `json:"validator_registration"`
	} `json:"topics"`
}

// poolKindNames maps the descriptors file's "kind" strings to
// types.PoolKindTag, matching SPEC_FULL.md §3's PoolKind tagged union.
var poolKindNames = map[string]types.PoolKindTag{
	"concentrated_liquidity":       types.ConcentratedLiquidity,
	"concentrated_liquidity_range": types.ConcentratedLiquidityRange,
	"single_token_pool":            types.SingleTokenPool,
	"lending_shares":               types.LendingShares,
	"token_time_weighted":          types.TokenTimeWeighted,
}

// LoadDescriptors reads and resolves the descriptors file at path.
func LoadDescriptors(path string) (*Descriptors, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read descriptors file %s: %w", path, err)
	}

	var parsed descriptorsFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse descriptors file %s: %w", path, err)
	}

	pools := make(map[types.Address]types.PoolKind, len(parsed.Pools))
	for addrHex, p := range parsed.Pools {
		tag, ok := poolKindNames[p.Kind]
		if !ok {
			return nil, fmt.Errorf("config: descriptors: pool %s: unknown kind %q", addrHex, p.Kind)
		}
		pools[types.ParseAddress(addrHex)] = types.PoolKind{
			Tag:       tag,
			Pool:      types.ParseAddress(p.Pool),
			Token:     types.ParseAddress(p.Token),
			CToken:    types.ParseAddress(p.CToken),
			TickLower: p.TickLower,
			TickUpper: p.TickUpper,
		}
	}

	distributions := make([]types.DistributionDescriptor, len(parsed.Distributions))
	for i, d := range parsed.Distributions {
		reward, ok := new(types.Amount).SetString(d.Reward)
		if !ok {
			return nil, fmt.Errorf("config: descriptors: distribution %d: invalid reward %q", i, d.Reward)
		}
		distributions[i] = types.DistributionDescriptor{
			Contract:    types.ParseAddress(d.Contract),
			Reward:      reward,
			RewardToken: types.ParseAddress(d.RewardToken),
		}
	}

	redirects := make(map[types.Address]types.Address, len(parsed.Redirects))
	for fromHex, toHex := range parsed.Redirects {
		redirects[types.ParseAddress(fromHex)] = types.ParseAddress(toHex)
	}

	operators := make([]OperatorConfig, len(parsed.Operators))
	for i, o := range parsed.Operators {
		operators[i] = OperatorConfig{
			Address:          types.ParseAddress(o.Address),
			DepositDataURI:   o.DepositDataURI,
			DepositDataIndex: o.DepositDataIndex,
		}
	}

	selectors, err := resolveSelectors(parsed)
	if err != nil {
		return nil, err
	}

	return &Descriptors{
		Pools:         pools,
		Distributions: distributions,
		Redirects:     redirects,
		Operators:     operators,
		Contracts: ContractSet{
			RewardsContract:     types.ParseAddress(parsed.Contracts.Rewards),
			DistributorContract: types.ParseAddress(parsed.Contracts.Distributor),
			RegistryContract:    types.ParseAddress(parsed.Contracts.Registry),
			PoolContract:        types.ParseAddress(parsed.Contracts.Pool),
		},
		Selectors: selectors,
		Topics: EventTopics{
			Claimed:               common.HexToHash(parsed.Topics.Claimed),
			ValidatorRegistration: common.HexToHash(parsed.Topics.ValidatorRegistration),
		},
	}, nil
}

func resolveSelectors(parsed descriptorsFile) (Selectors, error) {
	fields := map[string]string{
		"rewards_nonce":         parsed.Selectors.RewardsNonce,
		"distributor_nonce":     parsed.Selectors.DistributorNonce,
		"registry_nonce":        parsed.Selectors.RegistryNonce,
		"rewards_updated_at":    parsed.Selectors.RewardsUpdatedAt,
		"rewards_total_fees":    parsed.Selectors.RewardsTotalFees,
		"rewards_total_rewards": parsed.Selectors.RewardsTotalRewards,
		"deposit_root":          parsed.Selectors.DepositRoot,
		"pool_balance":          parsed.Selectors.PoolBalance,
	}
	resolved := make(map[string]Selector, len(fields))
	for name, hexValue := range fields {
		sel, err := parseSelector(hexValue)
		if err != nil {
			return Selectors{}, fmt.Errorf("config: descriptors: selector %s: %w", name, err)
		}
		resolved[name] = sel
	}

	return Selectors{
		RewardsNonce:        resolved["rewards_nonce"],
		DistributorNonce:    resolved["distributor_nonce"],
		RegistryNonce:       resolved["registry_nonce"],
		RewardsUpdatedAt:    resolved["rewards_updated_at"],
		RewardsTotalFees:    resolved["rewards_total_fees"],
		RewardsTotalRewards: resolved["rewards_total_rewards"],
		DepositRoot:         resolved["deposit_root"],
		PoolBalance:         resolved["pool_balance"],
	}, nil
}

func parseSelector(hexValue string) (Selector, error) {
	var sel Selector
	raw := common.FromHex(hexValue)
	if len(raw) != len(sel) {
		return sel, fmt.Errorf("want 4 bytes, got %d (%q)", len(raw), hexValue)
	}
	copy(sel[:], raw)
	return sel, nil
}
