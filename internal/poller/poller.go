package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/spaceweather"
	"github.com/couchcryptid/spaceweather/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Source reads current space weather from SWS. *spaceweather.Client and
// *BreakerSource implement it.
type Source interface {
	GetAuroraOutlook(ctx context.Context) ([]spaceweather.AuroraOutlook, error)
	GetAuroraWatch(ctx context.Context) ([]spaceweather.AuroraWatch, error)
	GetAuroraAlert(ctx context.Context) ([]spaceweather.AuroraAlert, error)
	GetMagAlert(ctx context.Context) ([]spaceweather.MagAlert, error)
	GetMagWarning(ctx context.Context) ([]spaceweather.MagWarning, error)
	GetAIndex(ctx context.Context, r spaceweather.TimeRange) ([]spaceweather.AIndex, error)
	GetKIndex(ctx context.Context, r spaceweather.TimeRange, location string) ([]spaceweather.KIndex, error)
	GetDstIndex(ctx context.Context, r spaceweather.TimeRange) ([]spaceweather.DstIndex, error)
}

// Publisher delivers newly seen bulletins downstream.
type Publisher interface {
	Publish(ctx context.Context, bulletins []Bulletin) error
}

// IndexWindow is how far back each poll asks for index readings. The A index
// is daily, so the window covers at least one full previous day.
const IndexWindow = 48 * time.Hour

const initialBackoff = 200 * time.Millisecond

// Options tunes a Poller. Zero values fall back to defaults.
type Options struct {
	Interval time.Duration // default 5m
	Location string        // K index site, default the Australian region
	Clock    clockwork.Clock
}

// Poller periodically reads indices and bulletins, exports them as gauges and
// publishes bulletins it has not seen before.
type Poller struct {
	source    Source
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration
	location  string
	ready     atomic.Bool

	pollMu sync.Mutex // serializes Poll

	mu   sync.RWMutex
	seen map[string]Bulletin // bulletins in force as of the last poll, by ID; written only by Poll
}

// New creates a Poller. publisher may be nil, in which case new bulletins are
// only logged.
func New(src Source, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.Location == "" {
		opts.Location = spaceweather.AustralianRegion
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Poller{
		source:    src,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		clock:     opts.Clock,
		interval:  opts.Interval,
		location:  opts.Location,
		seen:      make(map[string]Bulletin),
	}
}

// CheckReadiness returns nil once a poll has completed without errors.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("poller has not completed a successful poll yet")
	}
	return nil
}

// Run polls until the context is cancelled. A failed poll is retried with
// exponential backoff starting at 200ms and capped at the poll interval.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval, "location", p.location)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	backoff := initialBackoff
	for {
		wait := p.interval
		if err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poller stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("poll failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = nextBackoff(backoff, p.interval)
		} else {
			backoff = initialBackoff
		}

		if !p.sleep(ctx, wait) {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Poll performs one cycle. Every endpoint is queried even if an earlier one
// fails; the returned error joins all failures.
func (p *Poller) Poll(ctx context.Context) error {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	now := p.clock.Now()
	errs := p.updateIndices(ctx, now)

	var fresh []Bulletin
	next := make(map[string]Bulletin, len(p.seen))
	for _, src := range bulletinSources(p.source) {
		bulletins, err := src.fetch(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.kind, err))
			p.carryOver(next, src.kind)
			continue
		}
		p.metrics.ActiveBulletins.WithLabelValues(string(src.kind)).Set(float64(len(bulletins)))
		for _, b := range bulletins {
			if prev, ok := p.seen[b.ID]; ok {
				next[b.ID] = prev
				continue
			}
			if containsID(fresh, b.ID) {
				continue
			}
			fresh = append(fresh, b)
		}
	}

	if err := p.publish(ctx, fresh); err != nil {
		errs = append(errs, err)
	} else {
		for _, b := range fresh {
			next[b.ID] = b
		}
	}
	p.mu.Lock()
	p.seen = next
	p.mu.Unlock()

	p.metrics.PollDuration.Observe(p.clock.Since(now).Seconds())
	if len(errs) > 0 {
		p.metrics.PollsTotal.WithLabelValues("error").Inc()
		return errors.Join(errs...)
	}
	p.metrics.PollsTotal.WithLabelValues("success").Inc()
	p.ready.Store(true)
	p.logger.Debug("poll complete", "new_bulletins", len(fresh), "active_bulletins", len(next))
	return nil
}

// Active returns the bulletins in force as of the last poll, newest first.
func (p *Poller) Active() []Bulletin {
	p.mu.RLock()
	out := make([]Bulletin, 0, len(p.seen))
	for _, b := range p.seen {
		out = append(out, b)
	}
	p.mu.RUnlock()

	slices.SortFunc(out, func(a, b Bulletin) int {
		if c := b.IssuedAt.Time().Compare(a.IssuedAt.Time()); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (p *Poller) updateIndices(ctx context.Context, now time.Time) []error {
	window := spaceweather.TimeRange{Start: spaceweather.At(now.Add(-IndexWindow))}
	var errs []error

	a, err := p.source.GetAIndex(ctx, window)
	if err != nil {
		errs = append(errs, fmt.Errorf("a index: %w", err))
	} else if v, ok := latest(a, func(r spaceweather.AIndex) (spaceweather.Timestamp, int) { return r.ValidTime, r.Index }); ok {
		p.metrics.LatestIndex.WithLabelValues("a").Set(float64(v))
	}

	k, err := p.source.GetKIndex(ctx, window, p.location)
	if err != nil {
		errs = append(errs, fmt.Errorf("k index: %w", err))
	} else if v, ok := latest(k, func(r spaceweather.KIndex) (spaceweather.Timestamp, int) { return r.ValidTime, r.Index }); ok {
		p.metrics.LatestIndex.WithLabelValues("k").Set(float64(v))
	}

	dst, err := p.source.GetDstIndex(ctx, window)
	if err != nil {
		errs = append(errs, fmt.Errorf("dst index: %w", err))
	} else if v, ok := latest(dst, func(r spaceweather.DstIndex) (spaceweather.Timestamp, int) { return r.ValidTime, r.Index }); ok {
		p.metrics.LatestIndex.WithLabelValues("dst").Set(float64(v))
	}

	return errs
}

func (p *Poller) publish(ctx context.Context, fresh []Bulletin) error {
	if len(fresh) == 0 {
		return nil
	}
	for _, b := range fresh {
		p.logger.Info("new bulletin", "id", b.ID, "kind", b.Kind, "issued_at", b.IssuedAt.String())
	}
	if p.publisher == nil {
		return nil
	}
	if err := p.publisher.Publish(ctx, fresh); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish bulletins: %w", err)
	}
	p.metrics.BulletinsPublished.Add(float64(len(fresh)))
	return nil
}

// carryOver keeps the seen IDs of a kind whose fetch failed so its bulletins
// are not republished once the endpoint recovers.
func (p *Poller) carryOver(next map[string]Bulletin, kind spaceweather.Kind) {
	for id, b := range p.seen {
		if b.Kind == kind {
			next[id] = b
		}
	}
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}

// latest returns the reading with the newest valid time. Later entries win
// ties, and readings without a time only count when nothing else is present.
func latest[T any](records []T, reading func(T) (spaceweather.Timestamp, int)) (int, bool) {
	var (
		best  time.Time
		value int
		found bool
	)
	for _, r := range records {
		at, v := reading(r)
		if !found || !at.Time().Before(best) {
			best, value, found = at.Time(), v, true
		}
	}
	return value, found
}

func containsID(bulletins []Bulletin, id string) bool {
	for _, b := range bulletins {
		if b.ID == id {
			return true
		}
	}
	return false
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
