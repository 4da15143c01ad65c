// Package retry implements the backoff combinator described in
// SPEC_FULL.md §9: a retry wrapper around an arbitrary operation,
// parameterized by a policy and an optional classifier for which errors
// are worth retrying. It is built on github.com/cenkalti/backoff/v4,
// the same exponential-backoff library the pack's erigon teacher
// (AKJUS-bsc-erigon) depends on, replacing the original oracle's
// tenacity-based retry decorators (original_source's `@retry(...)`
// annotations in rewards/controller.py and merkle_distributor/utils.py).
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures the exponential backoff used for a retried
// operation, matching SPEC_FULL.md §4.5's "base 1s, factor 2, cap 900s".
type Policy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPolicy is the tick-retry policy named in SPEC_FULL.md §4.5.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: time.Second,
		Multiplier:      2,
		MaxInterval:     900 * time.Second,
		MaxElapsedTime:  900 * time.Second,
	}
}

// TransientPolicy is the shorter-budget policy for latency-sensitive
// transient-source retries (SPEC_FULL.md §7: "300-900s depending on
// urgency").
func TransientPolicy() Policy {
	return Policy{
		InitialInterval: time.Second,
		Multiplier:      2,
		MaxInterval:     300 * time.Second,
		MaxElapsedTime:  300 * time.Second,
	}
}

// Classifier reports whether err is worth retrying. A nil Classifier
// retries every non-nil error, which is the common case — position
// engines and vote submission propagate whatever their Classifier
// rejects as a permanent failure.
type Classifier func(err error) bool

// ErrPermanent is an exported sentinel for permanent failures. Permanent
// does not wrap it and Do does not check for it: Do stops retrying
// immediately, regardless of the configured Classifier, only for errors
// marked by Permanent.
var ErrPermanent = errors.New("retry: permanent failure")

// Permanent marks err as non-retryable, matching backoff.Permanent.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op, retrying on failure per policy until it succeeds, a
// permanent error is returned, the classifier rejects the error, or the
// policy's MaxElapsedTime is exceeded. It stops early if ctx is
// canceled.
func Do(ctx context.Context, policy Policy, classify Classifier, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.Multiplier = policy.Multiplier
	b.MaxInterval = policy.MaxInterval
	b.MaxElapsedTime = policy.MaxElapsedTime

	bctx := backoff.WithContext(b, ctx)

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if classify != nil && !classify(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bctx)
}
