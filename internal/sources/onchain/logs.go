package onchain

import (
	"context"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

// Log is the subset of an eth_getLogs entry this reader needs.
type Log struct {
	Address     common.Address  `json:"address"`
	Topics      []common.Hash   `json:"topics"`
	Data        string          `json:"data"`
	BlockNumber string          `json:"blockNumber"`
	TxHash      common.Hash     `json:"transactionHash"`
}

type filterParams struct {
	FromBlock string          `json:"fromBlock"`
	ToBlock   string          `json:"toBlock"`
	Address   common.Address  `json:"address"`
	Topics    [][]common.Hash `json:"topics"`
}

func hexBlock(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

// filterLogs runs eth_getLogs for contract emitting topic0 between
// fromBlock and toBlock inclusive.
func (c *Client) filterLogs(ctx context.Context, contract common.Address, topic0 common.Hash, fromBlock, toBlock uint64) ([]Log, error) {
	params := filterParams{
		FromBlock: hexBlock(fromBlock),
		ToBlock:   hexBlock(toBlock),
		Address:   contract,
		Topics:    [][]common.Hash{{topic0}},
	}
	var logs []Log
	if err := c.call(ctx, "eth_getLogs", []any{params}, &logs); err != nil {
		return nil, fmt.Errorf("onchain: filter logs on %s: %w", contract.Hex(), err)
	}
	return logs, nil
}

// EventTopics carries the topic0 hashes of the Claimed and
// ValidatorRegistration events. The caller passes the concrete hashes
// for the deployed contracts (cmd/oracle reads them from the descriptors
// file), since the exact event signatures are a deployment detail outside this reader's
// scope (SPEC_FULL.md §4.3 treats the distributor contract's ABI as an
// external collaborator).
type EventTopics struct {
	Claimed              common.Hash
	ValidatorRegistration common.Hash
}

// ClaimedSince returns the distinct beneficiary addresses that claimed
// against distributor between fromBlock (exclusive) and toBlock
// (inclusive), satisfying merkle.CarryOverSource.
func (c *Client) ClaimedSince(ctx context.Context, distributor common.Address, topics EventTopics, fromBlock, toBlock uint64) ([]types.Address, error) {
	logs, err := c.filterLogs(ctx, distributor, topics.Claimed, fromBlock+1, toBlock)
	if err != nil {
		return nil, err
	}

	seen := make(map[types.Address]struct{})
	var accounts []types.Address
	for _, log := range logs {
		if len(log.Topics) < 2 {
			continue
		}
		account := common.BytesToAddress(log.Topics[1].Bytes())
		if _, ok := seen[account]; ok {
			continue
		}
		seen[account] = struct{}{}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// RegisteredPublicKeys returns the validator public keys that have a
// ValidatorRegistration event on registry between fromBlock and
// toBlock inclusive, used by the validator controller to skip
// deposit-data entries already consumed on chain.
func (c *Client) RegisteredPublicKeys(ctx context.Context, registry common.Address, topics EventTopics, fromBlock, toBlock uint64) (map[string]bool, error) {
	logs, err := c.filterLogs(ctx, registry, topics.ValidatorRegistration, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool, len(logs))
	for _, log := range logs {
		used[log.Data] = true
	}
	return used, nil
}
