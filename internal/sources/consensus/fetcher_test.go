package consensus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchPicksMajorityValue(t *testing.T) {
	endpoints := []string{"a", "b", "c"}
	values := map[string]uint64{"a": 100, "b": 100, "c": 90}

	result, err := Fetch(context.Background(), endpoints,
		func(ctx context.Context, endpoint string) (uint64, error) { return values[endpoint], nil },
		func(v uint64) uint64 { return v },
	)
	require.NoError(t, err)
	require.Equal(t, uint64(100), result)
}

func TestFetchReturnsErrNoMajority(t *testing.T) {
	endpoints := []string{"a", "b", "c"}
	values := map[string]uint64{"a": 1, "b": 2, "c": 3}

	_, err := Fetch(context.Background(), endpoints,
		func(ctx context.Context, endpoint string) (uint64, error) { return values[endpoint], nil },
		func(v uint64) uint64 { return v },
	)
	require.ErrorIs(t, err, ErrNoMajority)
}

func TestFetchIgnoresFailedEndpoints(t *testing.T) {
	endpoints := []string{"a", "b", "c"}

	result, err := Fetch(context.Background(), endpoints,
		func(ctx context.Context, endpoint string) (uint64, error) {
			if endpoint == "c" {
				return 0, errors.New("timeout")
			}
			return 50, nil
		},
		func(v uint64) uint64 { return v },
	)
	require.NoError(t, err)
	require.Equal(t, uint64(50), result)
}

func TestFetchRequiresMajorityNotJustPlurality(t *testing.T) {
	endpoints := []string{"a", "b", "c", "d"}
	values := map[string]uint64{"a": 10, "b": 10, "c": 20, "d": 30}

	_, err := Fetch(context.Background(), endpoints,
		func(ctx context.Context, endpoint string) (uint64, error) { return values[endpoint], nil },
		func(v uint64) uint64 { return v },
	)
	require.ErrorIs(t, err, ErrNoMajority)
}
