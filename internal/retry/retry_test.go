package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	policy := Policy{InitialInterval: time.Millisecond, Multiplier: 1, MaxInterval: time.Millisecond, MaxElapsedTime: time.Second}

	err := Do(context.Background(), policy, nil, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	attempts := 0
	policy := Policy{InitialInterval: time.Millisecond, Multiplier: 1, MaxInterval: time.Millisecond, MaxElapsedTime: time.Second}
	sentinel := errors.New("pagination inconsistency")

	err := Do(context.Background(), policy, nil, func(ctx context.Context) error {
		attempts++
		return Permanent(sentinel)
	})

	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, attempts)
}

func TestDoHonorsClassifier(t *testing.T) {
	attempts := 0
	policy := Policy{InitialInterval: time.Millisecond, Multiplier: 1, MaxInterval: time.Millisecond, MaxElapsedTime: time.Second}
	unretryable := errors.New("unknown contract")

	err := Do(context.Background(), policy, func(err error) bool { return false }, func(ctx context.Context) error {
		attempts++
		return unretryable
	})

	require.ErrorIs(t, err, unretryable)
	require.Equal(t, 1, attempts)
}
