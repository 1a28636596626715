package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/spaceweather"
	"github.com/couchcryptid/spaceweather/internal/observability"
	"github.com/sony/gobreaker"
)

// BreakerSource wraps a Source with a circuit breaker. After the configured
// number of consecutive failures, calls fail fast with ErrRequestFailed until
// the breaker timeout elapses and a single trial request succeeds.
type BreakerSource struct {
	next Source
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerSource returns next guarded by a breaker named "sws".
func NewBreakerSource(next Source, failures uint32, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *BreakerSource {
	settings := gobreaker.Settings{
		Name:        "sws",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			if to == gobreaker.StateOpen {
				metrics.BreakerOpen.Set(1)
			} else {
				metrics.BreakerOpen.Set(0)
			}
		},
	}
	return &BreakerSource{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// State reports the breaker state.
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerSource) GetAuroraOutlook(ctx context.Context) ([]spaceweather.AuroraOutlook, error) {
	return execute(b, func() ([]spaceweather.AuroraOutlook, error) { return b.next.GetAuroraOutlook(ctx) })
}

func (b *BreakerSource) GetAuroraWatch(ctx context.Context) ([]spaceweather.AuroraWatch, error) {
	return execute(b, func() ([]spaceweather.AuroraWatch, error) { return b.next.GetAuroraWatch(ctx) })
}

func (b *BreakerSource) GetAuroraAlert(ctx context.Context) ([]spaceweather.AuroraAlert, error) {
	return execute(b, func() ([]spaceweather.AuroraAlert, error) { return b.next.GetAuroraAlert(ctx) })
}

func (b *BreakerSource) GetMagAlert(ctx context.Context) ([]spaceweather.MagAlert, error) {
	return execute(b, func() ([]spaceweather.MagAlert, error) { return b.next.GetMagAlert(ctx) })
}

func (b *BreakerSource) GetMagWarning(ctx context.Context) ([]spaceweather.MagWarning, error) {
	return execute(b, func() ([]spaceweather.MagWarning, error) { return b.next.GetMagWarning(ctx) })
}

func (b *BreakerSource) GetAIndex(ctx context.Context, r spaceweather.TimeRange) ([]spaceweather.AIndex, error) {
	return execute(b, func() ([]spaceweather.AIndex, error) { return b.next.GetAIndex(ctx, r) })
}

func (b *BreakerSource) GetKIndex(ctx context.Context, r spaceweather.TimeRange, location string) ([]spaceweather.KIndex, error) {
	return execute(b, func() ([]spaceweather.KIndex, error) { return b.next.GetKIndex(ctx, r, location) })
}

func (b *BreakerSource) GetDstIndex(ctx context.Context, r spaceweather.TimeRange) ([]spaceweather.DstIndex, error) {
	return execute(b, func() ([]spaceweather.DstIndex, error) { return b.next.GetDstIndex(ctx, r) })
}

func execute[T any](b *BreakerSource, call func() ([]T, error)) ([]T, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return call()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", spaceweather.ErrRequestFailed, err)
	}
	if err != nil {
		return nil, err
	}
	return out.([]T), nil
}
