// Package onchain implements the thin JSON-RPC reader named in
// SPEC_FULL.md §4.6: eth_call for the few view functions the
// controllers need (deposit root, pool balance, on-chain nonce) and
// eth_getLogs filters for ClaimedEvent/ValidatorRegistration history.
//
// The teacher's own ethclient (github.com/luxfi/evm/ethclient) exposes
// exactly this shape of call but is wired through core/types and the
// full execution engine, neither of which this oracle links against.
// Rather than drag that weight in, this client dials the same
// JSON-RPC 2.0 wire protocol directly — the "ethclient-style RPC
// dialer" SPEC_FULL.md names — using the teacher's geth-derived
// common.Address/common.Hash for argument/result typing.
package onchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/luxfi/geth/common"
)

const (
	connectTimeout = 5 * time.Second
	queryBudget    = 30 * time.Second
)

// Client is a minimal JSON-RPC 2.0 client against an EVM-compatible
// node's HTTP endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New constructs a Client against endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: queryBudget},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("onchain: marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("onchain: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("onchain: %s request to %s: %w", method, c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("onchain: %s returned transient status %d", c.endpoint, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("onchain: %s returned status %d", c.endpoint, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("onchain: decode %s response: %w", method, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("onchain: %s rpc error %d: %s", method, parsed.Error.Code, parsed.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(parsed.Result, out)
}

// CallContract issues eth_call against to with calldata at the
// "latest" finalized block known to the caller (blockNumber, hex
// "0x..." encoded by the caller per the JSON-RPC quantity convention).
func (c *Client) CallContract(ctx context.Context, to common.Address, calldata []byte, blockTag string) ([]byte, error) {
	args := map[string]string{
		"to":   to.Hex(),
		"data": "0x" + common.Bytes2Hex(calldata),
	}
	var resultHex string
	if err := c.call(ctx, "eth_call", []any{args, blockTag}, &resultHex); err != nil {
		return nil, err
	}
	return common.FromHex(resultHex), nil
}

// BlockNumber returns the node's latest known block number via
// eth_blockNumber.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var resultHex string
	if err := c.call(ctx, "eth_blockNumber", nil, &resultHex); err != nil {
		return 0, err
	}
	return common.HexToHash(resultHex).Big().Uint64(), nil
}
