package output

import (
	"context"
	"errors"
	"log/slog"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

// Fanout writes to a primary sink and then to best-effort mirrors.
// Only primary failures reach the caller; a batch the primary rejected is not mirrored.
type Fanout struct {
	primary port.RecordSink
	mirrors []port.RecordSink
}

func NewFanout(primary port.RecordSink, mirrors ...port.RecordSink) *Fanout {
	active := make([]port.RecordSink, 0, len(mirrors))
	for _, mirror := range mirrors {
		if mirror != nil {
			active = append(active, mirror)
		}
	}
	return &Fanout{primary: primary, mirrors: active}
}

func (f *Fanout) WriteBatch(ctx context.Context, batch domain.Batch) error {
	if err := f.primary.WriteBatch(ctx, batch); err != nil {
		return err
	}
	for _, mirror := range f.mirrors {
		if err := mirror.WriteBatch(ctx, batch); err != nil {
			slog.Warn("mirror sink write failed", slog.String("endpoint", batch.Endpoint), slog.Uint64("tick", batch.Tick), slog.String("sink", sinkName(mirror)), slog.Any("error", err))
		}
	}
	return nil
}

func (f *Fanout) Close() error {
	errs := make([]error, 0, len(f.mirrors)+1)
	for _, mirror := range f.mirrors {
		errs = append(errs, mirror.Close())
	}
	errs = append(errs, f.primary.Close())
	return errors.Join(errs...)
}

func sinkName(sink port.RecordSink) string {
	if named, ok := sink.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "mirror"
}

var _ port.RecordSink = (*Fanout)(nil)
