package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildConfigRequiresSigningKey(t *testing.T) {
	fs := BuildFlagSet()
	v, err := BuildViper(fs, []string{
		"--network", "mainnet",
		"--fallback-address", "0x0000000000000000000000000000000000dEaD",
		"--object-store-bucket", "oracle-votes",
		"--subgraph-endpoints", "https://a.example.org",
		"--beacon-endpoints", "https://b.example.org",
		"--rpc-endpoints", "https://c.example.org",
		"--ipfs-gateways", "https://d.example.org",
		"--ipfs-pin-endpoints", "https://e.example.org",
		"--descriptors-file", "testdata/descriptors.json",
	})
	require.NoError(t, err)

	_, err = BuildConfig(v)
	require.Error(t, err)
}

func TestBuildConfigResolvesNetworkPreset(t *testing.T) {
	fs := BuildFlagSet()
	v, err := BuildViper(fs, []string{
		"--network", "gnosis",
		"--signing-key", "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690",
		"--fallback-address", "0x0000000000000000000000000000000000dEaD",
		"--object-store-bucket", "oracle-votes",
		"--subgraph-endpoints", "https://a.example.org",
		"--beacon-endpoints", "https://b.example.org",
		"--rpc-endpoints", "https://c.example.org",
		"--ipfs-gateways", "https://d.example.org",
		"--ipfs-pin-endpoints", "https://e.example.org",
		"--descriptors-file", "testdata/descriptors.json",
	})
	require.NoError(t, err)

	cfg, err := BuildConfig(v)
	require.NoError(t, err)
	require.Equal(t, "gnosis", cfg.Network)
	require.True(t, cfg.Preset.UsesMGNOConversion)
	require.Equal(t, []string{"https://a.example.org"}, cfg.SubgraphEndpoints)
}

func TestBuildConfigRejectsUnknownNetwork(t *testing.T) {
	fs := BuildFlagSet()
	v, err := BuildViper(fs, []string{
		"--network", "does-not-exist",
		"--signing-key", "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690",
		"--fallback-address", "0x0000000000000000000000000000000000dEaD",
		"--object-store-bucket", "oracle-votes",
		"--subgraph-endpoints", "https://a.example.org",
		"--beacon-endpoints", "https://b.example.org",
		"--rpc-endpoints", "https://c.example.org",
		"--ipfs-gateways", "https://d.example.org",
		"--ipfs-pin-endpoints", "https://e.example.org",
		"--descriptors-file", "testdata/descriptors.json",
	})
	require.NoError(t, err)

	_, err = BuildConfig(v)
	require.Error(t, err)
}
