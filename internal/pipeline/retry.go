package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// RetryPolicy is a linear backoff: the n-th retry waits
// BaseDelay + (n-1)*Step, capped at MaxDelay, for at most MaxAttempts calls.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Step        time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy waits 500ms, 1s, 1.5s, 2s between five attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		Step:        500 * time.Millisecond,
		MaxDelay:    2500 * time.Millisecond,
	}
}

func (rp RetryPolicy) normalize() RetryPolicy {
	if rp.MaxAttempts < 1 {
		rp.MaxAttempts = 1
	}
	if rp.MaxDelay < rp.BaseDelay {
		rp.MaxDelay = rp.BaseDelay
	}
	return rp
}

// Delay returns the wait before retry n (1-based).
func (rp RetryPolicy) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := rp.BaseDelay + time.Duration(n-1)*rp.Step
	if d > rp.MaxDelay {
		d = rp.MaxDelay
	}
	return d
}

func (rp RetryPolicy) backoff() retry.Backoff {
	var n int
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return rp.Delay(n), false
	})
	b = retry.WithCappedDuration(rp.MaxDelay, b)
	return retry.WithMaxRetries(uint64(rp.MaxAttempts-1), b)
}

// Message fragments backends use for conditions that clear up on their own.
var transientSignatures = []string{
	"system busy",
	"resource busy",
	"not ready",
	"still starting",
	"temporarily unavailable",
}

// IsTransient reports whether err is worth retrying: it wraps
// domain.ErrBackendBusy or its message carries a known busy signature.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrBackendBusy) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// withRetry calls fn until it succeeds, fails permanently, the policy runs
// out or ctx is done. Exhaustion is reported as domain.ErrTimeout, a done
// ctx as domain.ErrCancelled and any other failure unchanged.
func (p *Pipeline) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := 0
	err := retry.Do(ctx, p.policy.backoff(), func(ctx context.Context) error {
		attempts++
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return domain.ErrCancelled
		case IsTransient(err):
			p.log.DebugContext(ctx, "transient backend failure",
				slog.String("op", op),
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()),
			)
			return retry.RetryableError(err)
		default:
			return err
		}
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil, errors.Is(err, domain.ErrCancelled):
		return domain.ErrCancelled
	case IsTransient(err):
		return fmt.Errorf("%s: %w after %d attempts: %v", op, domain.ErrTimeout, attempts, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
