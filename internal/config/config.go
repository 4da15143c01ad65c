// Package config implements the per-network preset and flag/env
// loading named in SPEC_FULL.md §4.9, grounded in the teacher's
// cmd/simulator flag-then-viper wiring
// (cmd/simulator/main/main.go's BuildFlagSet/BuildViper/BuildConfig
// call shape) but rebuilt on spf13/cobra + spf13/viper rather than
// bare pflag, since cmd/oracle is a single-purpose daemon rather than
// a multi-mode load generator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// Flag keys bound to both CLI flags and environment variables
// (ORACLE_<UPPER_SNAKE> via viper's automatic env prefix).
const (
	NetworkKey           = "network"
	SigningKeyKey        = "signing-key"
	FallbackAddressKey   = "fallback-address"
	ProcessIntervalKey   = "process-interval"
	ConfirmationDepthKey = "confirmation-depth"
	SyncPeriodKey        = "sync-period"
	ValidatorChunkKey    = "validator-chunk-size"
	ObjectStoreBucketKey = "object-store-bucket"
	ObjectStoreRegionKey = "object-store-region"
	ObjectStoreEndpointKey = "object-store-endpoint"
	SubgraphEndpointsKey = "subgraph-endpoints"
	BeaconEndpointsKey   = "beacon-endpoints"
	RPCEndpointsKey      = "rpc-endpoints"
	IPFSGatewaysKey      = "ipfs-gateways"
	IPFSPinEndpointsKey  = "ipfs-pin-endpoints"
)

// NetworkPreset is the fixed-per-network parameter bundle spec.md §6
// implies every deployment needs (chain id, epoch timing, deposit
// token conversion rate).
type NetworkPreset struct {
	ChainID             uint64
	GenesisTime         uint64
	SecondsPerSlot      uint64
	SlotsPerEpoch       uint64
	DepositTokenSymbol  string
	UsesMGNOConversion  bool
	MGNORateWAD         uint64 // balance * WAD / MGNORateWAD, per spec.md §4.5
}

// Presets is the built-in set of supported networks. Unknown networks
// are a startup-fatal configuration error (SPEC_FULL.md §7).
var Presets = map[string]NetworkPreset{
	"mainnet": {
		ChainID:            1,
		GenesisTime:        1606824023,
		SecondsPerSlot:     12,
		SlotsPerEpoch:      32,
		DepositTokenSymbol: "ETH",
		UsesMGNOConversion: false,
	},
	"gnosis": {
		ChainID:            100,
		GenesisTime:        1638993340,
		SecondsPerSlot:     5,
		SlotsPerEpoch:      16,
		DepositTokenSymbol: "GNO",
		UsesMGNOConversion: true,
		MGNORateWAD:        32_000_000_000_000_000_000,
	},
}

// Config is the fully resolved process configuration for one oracle
// instance.
type Config struct {
	Network           string
	Preset            NetworkPreset
	SigningKeyHex      string
	FallbackAddress    types.Address
	ProcessInterval    time.Duration
	ConfirmationDepth  uint64
	SyncPeriod         time.Duration
	ValidatorChunkSize int

	ObjectStoreBucket   string
	ObjectStoreRegion   string
	ObjectStoreEndpoint string

	SubgraphEndpoints   []string
	BeaconEndpoints     []string
	RPCEndpoints        []string
	IPFSGateways        []string
	IPFSPinEndpoints    []string

	// DescriptorsFile names the JSON file resolved into Descriptors:
	// the recognized pool set, distribution schedule, operators,
	// redirect table, and the contracts/selectors/topics the
	// controllers read on-chain state from (SPEC_FULL.md §4.9).
	DescriptorsFile string
}

// BuildFlagSet declares every CLI flag this process accepts, mirroring
// the teacher's cmd/simulator.BuildFlagSet shape (one FlagSet, later
// bound into viper).
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("oracle", pflag.ContinueOnError)

	fs.String(NetworkKey, "mainnet", "network preset to run against")
	fs.String(SigningKeyKey, "", "hex-encoded ECDSA signing key (required)")
	fs.String(FallbackAddressKey, "", "fallback address for unrecognized/zero-supply allocations (required)")
	fs.Duration(ProcessIntervalKey, 5*time.Minute, "interval between ticks")
	fs.Uint64(ConfirmationDepthKey, 12, "blocks subtracted from consensus head before finalized")
	fs.Duration(SyncPeriodKey, 24*time.Hour, "rewards controller update period")
	fs.Int(ValidatorChunkKey, 500, "validator lookup chunk size")

	fs.String(ObjectStoreBucketKey, "", "S3-compatible bucket name (required)")
	fs.String(ObjectStoreRegionKey, "us-east-1", "S3-compatible region")
	fs.String(ObjectStoreEndpointKey, "", "S3-compatible endpoint override")

	fs.StringSlice(SubgraphEndpointsKey, nil, "subgraph replica endpoints (required, >=1)")
	fs.StringSlice(BeaconEndpointsKey, nil, "beacon-node endpoints (required, >=1)")
	fs.StringSlice(RPCEndpointsKey, nil, "EL JSON-RPC endpoints (required, >=1)")
	fs.StringSlice(IPFSGatewaysKey, nil, "IPFS gateway base URLs (required, >=1)")
	fs.StringSlice(IPFSPinEndpointsKey, nil, "IPFS pinning endpoints (required, >=1)")

	fs.String(DescriptorsFileKey, "", "path to the deployment descriptors JSON file (required; recognized pools, distribution schedule, operators, contracts/selectors/topics)")

	return fs
}

// BuildViper binds fs into a Viper instance that also reads
// ORACLE_-prefixed environment variables, matching the teacher's
// BuildViper(fs, args) contract.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("oracle")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}
	return v, nil
}

// BuildConfig resolves a fully validated Config from v, failing fast
// on any missing required field (SPEC_FULL.md §7: "credential missing
// at startup: fatal").
func BuildConfig(v *viper.Viper) (*Config, error) {
	network := v.GetString(NetworkKey)
	preset, ok := Presets[network]
	if !ok {
		return nil, fmt.Errorf("config: unknown network preset %q", network)
	}

	signingKey := v.GetString(SigningKeyKey)
	if signingKey == "" {
		return nil, fmt.Errorf("config: %s is required", SigningKeyKey)
	}

	fallback := v.GetString(FallbackAddressKey)
	if fallback == "" {
		return nil, fmt.Errorf("config: %s is required", FallbackAddressKey)
	}
	fallbackAddress := types.ParseAddress(fallback)

	bucket := v.GetString(ObjectStoreBucketKey)
	if bucket == "" {
		return nil, fmt.Errorf("config: %s is required", ObjectStoreBucketKey)
	}

	descriptorsFile := v.GetString(DescriptorsFileKey)
	if descriptorsFile == "" {
		return nil, fmt.Errorf("config: %s is required", DescriptorsFileKey)
	}

	subgraphs := v.GetStringSlice(SubgraphEndpointsKey)
	beacons := v.GetStringSlice(BeaconEndpointsKey)
	rpcs := v.GetStringSlice(RPCEndpointsKey)
	gateways := v.GetStringSlice(IPFSGatewaysKey)
	pins := v.GetStringSlice(IPFSPinEndpointsKey)

	for name, list := range map[string][]string{
		SubgraphEndpointsKey: subgraphs,
		BeaconEndpointsKey:   beacons,
		RPCEndpointsKey:      rpcs,
		IPFSGatewaysKey:      gateways,
		IPFSPinEndpointsKey:  pins,
	} {
		if len(list) == 0 {
			return nil, fmt.Errorf("config: %s requires at least one endpoint", name)
		}
	}

	return &Config{
		Network:             network,
		Preset:              preset,
		SigningKeyHex:       signingKey,
		FallbackAddress:     fallbackAddress,
		ProcessInterval:     v.GetDuration(ProcessIntervalKey),
		ConfirmationDepth:   v.GetUint64(ConfirmationDepthKey),
		SyncPeriod:          v.GetDuration(SyncPeriodKey),
		ValidatorChunkSize:  v.GetInt(ValidatorChunkKey),
		ObjectStoreBucket:   bucket,
		ObjectStoreRegion:   v.GetString(ObjectStoreRegionKey),
		ObjectStoreEndpoint: v.GetString(ObjectStoreEndpointKey),
		SubgraphEndpoints:   subgraphs,
		BeaconEndpoints:     beacons,
		RPCEndpoints:        rpcs,
		IPFSGateways:        gateways,
		IPFSPinEndpoints:    pins,
		DescriptorsFile:     descriptorsFile,
	}, nil
}
