// Command oracle is the process entrypoint wiring config, sources,
// controllers, and the per-tick scheduler loop (SPEC_FULL.md §4.9),
// grounded in the teacher's cmd/simulator flag/viper shape
// (internal/config) but built around spf13/cobra rather than a bare
// pflag-only main, since this daemon has a single always-on run mode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/stakewise-oracle/oracle-node/internal/allocator"
	"github.com/stakewise-oracle/oracle-node/internal/clock"
	"github.com/stakewise-oracle/oracle-node/internal/config"
	"github.com/stakewise-oracle/oracle-node/internal/controllers"
	"github.com/stakewise-oracle/oracle-node/internal/engines"
	"github.com/stakewise-oracle/oracle-node/internal/ipfs"
	"github.com/stakewise-oracle/oracle-node/internal/publisher"
	"github.com/stakewise-oracle/oracle-node/internal/signer"
	"github.com/stakewise-oracle/oracle-node/internal/sources/beacon"
	"github.com/stakewise-oracle/oracle-node/internal/sources/consensus"
	"github.com/stakewise-oracle/oracle-node/internal/sources/onchain"
	"github.com/stakewise-oracle/oracle-node/internal/sources/subgraph"
	"github.com/stakewise-oracle/oracle-node/internal/types"
)

func main() {
	fs := config.BuildFlagSet()
	root := &cobra.Command{
		Use:   "oracle",
		Short: "StakeWise-style liquid-staking oracle node",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.BuildViper(fs, args)
			if err != nil {
				return err
			}
			cfg, err := config.BuildConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().AddFlagSet(fs)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.NewLogger(log.NewTerminalHandler(os.Stderr, true))
	log.SetDefault(logger)

	oracleSigner, err := signer.New(cfg.SigningKeyHex)
	if err != nil {
		return fmt.Errorf("oracle: %w", err)
	}

	objectStore, err := publisher.New(cfg.ObjectStoreBucket, cfg.ObjectStoreRegion, cfg.ObjectStoreEndpoint)
	if err != nil {
		return fmt.Errorf("oracle: %w", err)
	}

	descriptors, err := config.LoadDescriptors(cfg.DescriptorsFile)
	if err != nil {
		return fmt.Errorf("oracle: %w", err)
	}

	rpcClients := make([]*onchain.Client, len(cfg.RPCEndpoints))
	for i, endpoint := range cfg.RPCEndpoints {
		rpcClients[i] = onchain.New(endpoint)
	}
	beaconClients := make([]*beacon.Client, len(cfg.BeaconEndpoints))
	for i, endpoint := range cfg.BeaconEndpoints {
		beaconClients[i] = beacon.New(endpoint)
	}

	tracker := newFinalityTracker(cfg, rpcClients)

	// A single RPC/subgraph endpoint backs the state reads and position
	// queries the controllers perform each tick; only the finality
	// tracker above needs the full endpoint set, since spec.md §4.4's
	// majority-consensus rule is scoped to the finalized-block fetch.
	primaryRPC := rpcClients[0]
	primaryBeacon := beaconClients[0]
	subgraphClient := subgraph.New(cfg.SubgraphEndpoints[0])
	ipfsClient := ipfs.New(cfg.IPFSGateways, cfg.IPFSPinEndpoints)

	submitter := controllers.NewSignedSubmitter(oracleSigner, objectStore)
	topics := topicsFrom(descriptors)

	rewardsController := controllers.NewRewardsController(
		clock.Real{},
		cfg.Preset,
		primaryBeacon,
		&registeredKeysAdapter{client: primaryRPC, registry: descriptors.Contracts.RegistryContract, topics: topics},
		onchain.NewContractNonceSource(primaryRPC, descriptors.Contracts.RewardsContract, onchain.Selector(descriptors.Selectors.RewardsNonce)),
		submitter,
		cfg.ValidatorChunkSize,
	)
	rewardsState := &rewardsStateReader{client: primaryRPC, contract: descriptors.Contracts.RewardsContract, selectors: descriptors.Selectors}

	validatorController := controllers.NewValidatorController(
		&operatorsAdapter{operators: toOperators(descriptors.Operators)},
		&registrationCheckAdapter{client: primaryRPC, registry: descriptors.Contracts.RegistryContract, pool: descriptors.Contracts.PoolContract, topics: topics, selectors: descriptors.Selectors},
		ipfsClient,
		onchain.NewContractNonceSource(primaryRPC, descriptors.Contracts.RegistryContract, onchain.Selector(descriptors.Selectors.RegistryNonce)),
		submitter,
	)

	claimSource := &claimSourceAdapter{ipfs: ipfsClient, onchain: primaryRPC, distributor: descriptors.Contracts.DistributorContract, topics: topics}
	distributorNonceSource := onchain.NewContractNonceSource(primaryRPC, descriptors.Contracts.DistributorContract, onchain.Selector(descriptors.Selectors.DistributorNonce))

	logger.Info("oracle starting",
		"network", cfg.Network,
		"address", oracleSigner.Address().Hex(),
		"rpcEndpoints", len(rpcClients),
		"beaconEndpoints", len(beaconClients),
		"recognizedPools", len(descriptors.Pools),
		"operators", len(descriptors.Operators),
	)

	ticker := time.NewTicker(cfg.ProcessInterval)
	defer ticker.Stop()

	var (
		lastFinalizedBlock uint64
		lastMerkleRoot     string
		lastProofsURI      string
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("oracle stopping")
			return nil
		case <-ticker.C:
			block, timestamp, err := tracker.Latest(ctx)
			if err != nil {
				logger.Error("finality tracker failed this tick", "err", err)
				continue
			}
			logger.Info("tick", "finalizedBlock", block, "timestamp", timestamp)

			fromBlock := lastFinalizedBlock

			// The position-engine resolver and its allocator are rebuilt
			// every tick since their accrual window (fromBlock, toBlock]
			// advances each time (SPEC_FULL.md §4.1/§4.2).
			resolver := engines.NewResolver(subgraphClient, descriptors.Pools, fromBlock, block)
			alloc := allocator.New(resolver, cfg.FallbackAddress, descriptors.Redirects)
			distributorController := controllers.NewDistributorController(alloc, claimSource, ipfsClient, distributorNonceSource, submitter, descriptors.Distributions)

			state, err := rewardsState.Read(ctx, block)
			if err != nil {
				logger.Error("tick: read rewards voting state failed", "err", err)
				continue
			}

			distributorNonce, err := primaryRPC.ReadUint256(ctx, descriptors.Contracts.DistributorContract, onchain.Selector(descriptors.Selectors.DistributorNonce), hexBlockTag(block))
			if err != nil {
				logger.Error("tick: read distributor nonce failed", "err", err)
				continue
			}
			votingParams := types.VotingParameters{
				Nonce:          distributorNonce.Uint64(),
				FromBlock:      fromBlock,
				ToBlock:        block,
				PrevMerkleRoot: lastMerkleRoot,
				PrevProofsURI:  lastProofsURI,
			}

			registryNonce, err := primaryRPC.ReadUint256(ctx, descriptors.Contracts.RegistryContract, onchain.Selector(descriptors.Selectors.RegistryNonce), hexBlockTag(block))
			if err != nil {
				logger.Error("tick: read registry nonce failed", "err", err)
				continue
			}

			var distributorOutcome controllers.DistributorOutcome
			runControllersConcurrently(ctx, logger,
				func(ctx context.Context) error {
					return rewardsController.Process(ctx, state, uint64(cfg.SyncPeriod.Seconds()), block, timestamp)
				},
				func(ctx context.Context) error {
					outcome, err := distributorController.Process(ctx, votingParams)
					distributorOutcome = outcome
					return err
				},
				func(ctx context.Context) error {
					return validatorController.Process(ctx, registryNonce.Uint64(), block)
				},
			)
			if distributorOutcome.Submitted {
				lastMerkleRoot = fmt.Sprintf("0x%x", distributorOutcome.MerkleRoot)
				lastProofsURI = distributorOutcome.ProofsURI
			}

			lastFinalizedBlock = block
		}
	}
}

// runControllersConcurrently drives the rewards/distributor/validator
// controller ticks concurrently (spec.md §5: "Per tick the three
// controllers run concurrently"), logging each failure independently
// rather than letting one controller's error cancel the others.
func runControllersConcurrently(ctx context.Context, logger log.Logger, tasks ...func(context.Context) error) {
	names := []string{"rewards", "distributor", "validator"}
	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(tasks))
	for i, task := range tasks {
		name := names[i]
		task := task
		go func() {
			results <- result{name: name, err: task(ctx)}
		}()
	}
	for range tasks {
		r := <-results
		if r.err != nil {
			logger.Error("controller tick failed", "controller", r.name, "err", r.err)
		}
	}
}

func newFinalityTracker(cfg *config.Config, rpcClients []*onchain.Client) *trackerAdapter {
	return &trackerAdapter{cfg: cfg, clients: rpcClients}
}

// trackerAdapter adapts onchain.Client.BlockNumber into the consensus
// fetcher's Query shape, keeping cmd/oracle free of a direct
// finality.Tracker construction dependency cycle on endpoint strings
// vs. client objects.
type trackerAdapter struct {
	cfg     *config.Config
	clients []*onchain.Client
}

func (t *trackerAdapter) Latest(ctx context.Context) (uint64, int64, error) {
	endpoints := t.cfg.RPCEndpoints
	byEndpoint := make(map[string]*onchain.Client, len(t.clients))
	for i, endpoint := range endpoints {
		byEndpoint[endpoint] = t.clients[i]
	}

	type observation struct {
		block uint64
	}
	result, err := consensus.Fetch(ctx, endpoints,
		func(ctx context.Context, endpoint string) (observation, error) {
			block, err := byEndpoint[endpoint].BlockNumber(ctx)
			return observation{block: block}, err
		},
		func(o observation) uint64 { return o.block },
	)
	if err != nil {
		return 0, 0, err
	}
	if result.block < t.cfg.ConfirmationDepth {
		return 0, time.Now().Unix(), nil
	}
	return result.block - t.cfg.ConfirmationDepth, time.Now().Unix(), nil
}
