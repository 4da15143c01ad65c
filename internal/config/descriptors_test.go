package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stakewise-oracle/oracle-node/internal/types"
)

func TestLoadDescriptorsResolvesPoolsAndSelectors(t *testing.T) {
	d, err := LoadDescriptors("testdata/descriptors.json")
	require.NoError(t, err)

	require.Len(t, d.Pools, 1)
	pool := types.ParseAddress("0x1111111111111111111111111111111111111111")
	kind, ok := d.Pools[pool]
	require.True(t, ok)
	require.Equal(t, types.SingleTokenPool, kind.Tag)

	require.Len(t, d.Distributions, 1)
	require.Equal(t, "1000000000000000000", d.Distributions[0].Reward.String())

	require.Len(t, d.Operators, 1)
	require.Equal(t, 0, d.Operators[0].DepositDataIndex)

	require.Equal(t, Selector{0x11, 0x22, 0x33, 0x44}, d.Selectors.RewardsNonce)
}

func TestLoadDescriptorsRejectsMissingFile(t *testing.T) {
	_, err := LoadDescriptors("testdata/does-not-exist.json")
	require.Error(t, err)
}
