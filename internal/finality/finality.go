// Package finality implements the finalized-block tracker named in
// SPEC_FULL.md §4.8: a single Latest call wrapping the multi-endpoint
// consensus fetcher (internal/sources/consensus) and applying the
// configured confirmation depth. cmd/oracle does not construct a
// Tracker: its own trackerAdapter applies the same consensus fetch and
// depth subtraction to onchain.Client.BlockNumber results.
package finality

import (
	"context"
	"fmt"

	"github.com/stakewise-oracle/oracle-node/internal/sources/consensus"
)

// BlockFetcher reports the current head block number and its
// timestamp as seen by one endpoint.
type BlockFetcher func(ctx context.Context, endpoint string) (blockNumber uint64, timestamp int64, err error)

// Tracker resolves the process's notion of "finalized block" by
// majority agreement across configured endpoints, minus a fixed
// confirmation depth.
type Tracker struct {
	endpoints         []string
	fetch             BlockFetcher
	confirmationDepth uint64
}

// New constructs a Tracker. confirmationDepth is the per-network
// number of blocks subtracted from the consensus head before it is
// considered finalized (SPEC_FULL.md §4.9).
func New(endpoints []string, fetch BlockFetcher, confirmationDepth uint64) *Tracker {
	return &Tracker{endpoints: endpoints, fetch: fetch, confirmationDepth: confirmationDepth}
}

type headObservation struct {
	blockNumber uint64
	timestamp   int64
}

// Latest returns the current finalized block and its timestamp, or
// consensus.ErrNoMajority if the configured endpoints disagree
// (SPEC_FULL.md §7: "Source disagreement").
func (t *Tracker) Latest(ctx context.Context) (uint64, int64, error) {
	head, err := consensus.Fetch(ctx, t.endpoints,
		func(ctx context.Context, endpoint string) (headObservation, error) {
			blockNumber, timestamp, err := t.fetch(ctx, endpoint)
			if err != nil {
				return headObservation{}, err
			}
			return headObservation{blockNumber: blockNumber, timestamp: timestamp}, nil
		},
		func(h headObservation) uint64 { return h.blockNumber },
	)
	if err != nil {
		return 0, 0, fmt.Errorf("finality: %w", err)
	}

	if head.blockNumber < t.confirmationDepth {
		return 0, head.timestamp, nil
	}
	return head.blockNumber - t.confirmationDepth, head.timestamp, nil
}
