package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

// Ticker is the part of time.Ticker the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{Ticker: time.NewTicker(d)}
}

type noopObserver struct{}

func (noopObserver) PollStarted(string) {}
func (noopObserver) PollFinished(string, string, time.Duration, int) {}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithObserver reports poll lifecycle events to observer.
func WithObserver(observer port.PollObserver) PollerOption {
	return func(p *Poller) {
		if observer != nil {
			p.observer = observer
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) PollerOption {
	return func(p *Poller) {
		if id != "" {
			p.runID = id
		}
	}
}

// WithTicker replaces the interval ticker factory.
func WithTicker(factory func(time.Duration) Ticker) PollerOption {
	return func(p *Poller) {
		if factory != nil {
			p.newTicker = factory
		}
	}
}

// WithClock replaces the time source used for batch timestamps and status.
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// Poller fetches one endpoint either once or on a fixed cadence and hands every response to a sink.
type Poller struct {
	urls      port.URLBuilder
	fetcher   port.RecordFetcher
	sink      port.RecordSink
	observer  port.PollObserver
	runID     string
	newTicker func(time.Duration) Ticker
	now       func() time.Time

	mu     sync.Mutex
	status domain.PollStatus
}

func NewPoller(urls port.URLBuilder, fetcher port.RecordFetcher, sink port.RecordSink, opts ...PollerOption) *Poller {
	p := &Poller{
		urls:      urls,
		fetcher:   fetcher,
		sink:      sink,
		observer:  noopObserver{},
		runID:     uuid.NewString(),
		newTicker: newTimeTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunID identifies this poller in logs and broadcast messages.
func (p *Poller) RunID() string {
	return p.runID
}

// Run executes req. The URL is built before any network traffic, so registry errors never reach
// the fetcher. Single-shot requests return the first fetch or write error. Interval requests log
// tick failures and keep polling until ctx is cancelled, then wait for in-flight ticks.
func (p *Poller) Run(ctx context.Context, req PollRequest) error {
	rawURL, err := p.urls.BuildURL(req.Endpoint, req.Params)
	if err != nil {
		return err
	}
	p.begin(req, rawURL)

	logger := slog.With(
		slog.String("runId", p.runID),
		slog.String("target", req.Target),
		slog.String("endpoint", req.Endpoint),
		slog.String("url", rawURL),
	)

	if req.Mode() == domain.PollModeSingleShot {
		logger.Info("openf1 poll started", slog.String("mode", string(domain.PollModeSingleShot)))
		return p.pollOnce(ctx, req.Endpoint, rawURL, 1)
	}

	logger.Info("openf1 poll started",
		slog.String("mode", string(domain.PollModeInterval)),
		slog.Duration("interval", req.Interval),
	)
	return p.runInterval(ctx, logger, req, rawURL)
}

func (p *Poller) runInterval(ctx context.Context, logger *slog.Logger, req PollRequest, rawURL string) error {
	ticker := p.newTicker(req.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			logger.Info("openf1 poll stopped", slog.Uint64("ticks", tick))
			return nil
		case <-ticker.C():
			tick++
			wg.Add(1)
			go func(n uint64) {
				defer wg.Done()
				if err := p.pollOnce(ctx, req.Endpoint, rawURL, n); err != nil {
					if ctx.Err() != nil && errors.Is(err, context.Canceled) {
						logger.Debug("openf1 tick abandoned on shutdown", slog.Uint64("tick", n))
						return
					}
					logger.Warn("openf1 tick failed", slog.Uint64("tick", n), slog.Any("error", err))
				}
			}(tick)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, endpoint, rawURL string, tick uint64) error {
	started := p.now()
	p.observer.PollStarted(endpoint)
	p.tickStarted()

	records, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		p.tickFinished(endpoint, port.OutcomeFetchError, started, 0, err)
		return fmt.Errorf("tick %d: %w", tick, err)
	}

	batch := domain.Batch{
		RunID:     p.runID,
		Endpoint:  endpoint,
		Tick:      tick,
		Records:   records,
		FetchedAt: p.now(),
	}
	if err := p.sink.WriteBatch(ctx, batch); err != nil {
		p.tickFinished(endpoint, port.OutcomeWriteError, started, 0, err)
		return fmt.Errorf("tick %d: %w", tick, err)
	}

	p.tickFinished(endpoint, port.OutcomeOK, started, len(records), nil)
	slog.Debug("openf1 batch persisted",
		slog.String("endpoint", endpoint),
		slog.Uint64("tick", tick),
		slog.Int("records", len(records)),
	)
	return nil
}

func (p *Poller) begin(req PollRequest, rawURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = domain.PollStatus{
		RunID:     p.runID,
		Target:    req.Target,
		Endpoint:  req.Endpoint,
		URL:       rawURL,
		Mode:      req.Mode(),
		StartedAt: p.now(),
	}
}

func (p *Poller) tickStarted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Ticks++
	p.status.InFlight++
}

func (p *Poller) tickFinished(endpoint, outcome string, started time.Time, records int, err error) {
	finished := p.now()
	p.observer.PollFinished(endpoint, outcome, finished.Sub(started), records)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.InFlight--
	if err != nil {
		p.status.Failures++
		p.status.LastError = err.Error()
		return
	}
	p.status.Records += uint64(records)
	p.status.LastSuccess = finished
}

// Status returns a snapshot of the current run.
func (p *Poller) Status() domain.PollStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
