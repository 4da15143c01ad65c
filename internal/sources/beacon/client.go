// Package beacon implements the REST client against a beacon-chain node
// named in SPEC_FULL.md §4.6/spec.md §6: finality checkpoints and
// chunked validator status/balance lookups. HTTP shape follows the
// same net/http conventions as internal/sources/subgraph (no beacon
// SDK is present anywhere in the retrieved pack).
package beacon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	connectTimeout = 5 * time.Second
	queryBudget    = 30 * time.Second

	// ValidatorChunkSize bounds how many validator ids are requested per
	// call, configurable per network (SPEC_FULL.md §4.9) but defaulted
	// here for callers that don't override it. Chunks are fetched
	// concurrently via golang.org/x/sync/errgroup, matching the
	// per-chunk fan-out point SPEC_FULL.md §5 names.
	ValidatorChunkSize = 500
)

// Status is a beacon-chain validator status string, e.g.
// "active_ongoing", "pending_queued", "exited_unslashed".
type Status string

// PendingStatuses are excluded from reward-eligible balance sums per
// spec.md §4.5 ("exclude validators in pending statuses").
var PendingStatuses = map[Status]bool{
	"pending_initialized": true,
	"pending_queued":      true,
}

// ValidatorInfo is one entry of the /validators response.
type ValidatorInfo struct {
	Index     string `json:"index"`
	Status    Status `json:"status"`
	Validator struct {
		PublicKey string `json:"pubkey"`
	} `json:"validator"`
	Balance string `json:"balance"`
}

// Client queries a single beacon node's REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client against baseURL (e.g. "https://beacon.example.org").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: queryBudget,
		},
	}
}

type finalityCheckpointsResponse struct {
	Data struct {
		Finalized struct {
			Epoch string `json:"epoch"`
		} `json:"finalized"`
	} `json:"data"`
}

// FinalizedEpoch returns the current finalized epoch reported by this
// node via GET /eth/v1/beacon/states/head/finality_checkpoints.
func (c *Client) FinalizedEpoch(ctx context.Context) (uint64, error) {
	var resp finalityCheckpointsResponse
	if err := c.get(ctx, "/eth/v1/beacon/states/head/finality_checkpoints", &resp); err != nil {
		return 0, err
	}
	epoch, err := strconv.ParseUint(resp.Data.Finalized.Epoch, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("beacon: parse finalized epoch %q: %w", resp.Data.Finalized.Epoch, err)
	}
	return epoch, nil
}

type validatorsResponse struct {
	Data []ValidatorInfo `json:"data"`
}

// Validators fetches validator status/balance for the given public
// keys at slot, issuing one request per ValidatorChunkSize-sized
// chunk (spec.md §6: "called in chunks of configured size").
func (c *Client) Validators(ctx context.Context, slot string, publicKeys []string, chunkSize int) ([]ValidatorInfo, error) {
	if chunkSize <= 0 {
		chunkSize = ValidatorChunkSize
	}

	numChunks := (len(publicKeys) + chunkSize - 1) / chunkSize
	results := make([][]ValidatorInfo, numChunks)

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < numChunks; i++ {
		i := i
		start := i * chunkSize
		end := start + chunkSize
		if end > len(publicKeys) {
			end = len(publicKeys)
		}
		chunk := publicKeys[start:end]

		group.Go(func() error {
			path := fmt.Sprintf("/eth/v1/beacon/states/%s/validators?id=%s", slot, strings.Join(chunk, ","))
			var resp validatorsResponse
			if err := c.get(groupCtx, path, &resp); err != nil {
				return fmt.Errorf("beacon: validators chunk [%d:%d]: %w", start, end, err)
			}
			results[i] = resp.Data
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []ValidatorInfo
	for _, chunk := range results {
		all = append(all, chunk...)
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("beacon: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("beacon: request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("beacon: %s returned transient status %d", path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("beacon: %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
