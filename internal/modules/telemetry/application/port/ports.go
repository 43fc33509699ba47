package port

import (
	"context"
	"time"

	"openF1Poll/internal/modules/telemetry/domain"
)

// URLBuilder turns an endpoint name and parameter set into a request URL.
type URLBuilder interface {
	BuildURL(endpoint string, params domain.Params) (string, error)
}

// RecordFetcher retrieves the records behind a fully built URL.
type RecordFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]domain.Record, error)
}

// RecordSink persists batches. Implementations serialize concurrent WriteBatch calls.
type RecordSink interface {
	WriteBatch(ctx context.Context, batch domain.Batch) error
	Close() error
}

// PollObserver receives poll lifecycle events, typically for metrics.
type PollObserver interface {
	PollStarted(endpoint string)
	PollFinished(endpoint, outcome string, elapsed time.Duration, records int)
}

// Poll outcomes reported to PollObserver.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeWriteError = "write_error"
)
