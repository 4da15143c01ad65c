package merkle

import (
	"context"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

type fakeCarryOverSource struct {
	file    types.Rewards
	claimed []types.Address
}

func (f *fakeCarryOverSource) FetchClaimFile(ctx context.Context, uri string) (types.Rewards, error) {
	out := types.NewRewards()
	out.Merge(f.file)
	return out, nil
}

func (f *fakeCarryOverSource) ClaimedSince(ctx context.Context, fromBlock, toBlock uint64) ([]types.Address, error) {
	return f.claimed, nil
}

func TestLoadCarryOverRemovesClaimedAccounts(t *testing.T) {
	token := common.HexToAddress("0x7070")
	alpha := common.HexToAddress("0xA1")
	beta := common.HexToAddress("0xB2")

	prior := types.NewRewards()
	prior.Add(alpha, token, types.NewAmount(10))
	prior.Add(beta, token, types.NewAmount(3))

	src := &fakeCarryOverSource{file: prior, claimed: []types.Address{alpha}}

	carryOver, err := LoadCarryOver(context.Background(), src, "ipfs://Qm123", 100, 200)
	require.NoError(t, err)
	_, hasAlpha := carryOver[alpha]
	require.False(t, hasAlpha)
	require.Equal(t, types.NewAmount(3).String(), rewardForToken(carryOver, beta, token).String())
}

func TestLoadCarryOverEmptyURIIsNoop(t *testing.T) {
	src := &fakeCarryOverSource{file: types.NewRewards()}
	carryOver, err := LoadCarryOver(context.Background(), src, "", 0, 0)
	require.NoError(t, err)
	require.Empty(t, carryOver)
}

func rewardForToken(r types.Rewards, account, token types.Address) *types.Amount {
	for _, e := range r[account] {
		if e.Token == token {
			return e.Amount
		}
	}
	return types.ZeroAmount()
}
