package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/shared/normalization"
)

// ReadySignaler is implemented by streams that may accept only part of a write and later
// announce that they can take more. The channel is closed or signalled once writing may resume.
type ReadySignaler interface {
	Ready() <-chan struct{}
}

// maxStalledWrites bounds consecutive zero-byte writes on streams without a ready signal.
const maxStalledWrites = 16

// LineSink appends one "key: value, key: value" line per record.
type LineSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	closed bool
}

// NewLineSink writes lines to w. Closing the sink closes w when it implements io.Closer.
func NewLineSink(w io.Writer) *LineSink {
	sink := &LineSink{w: w}
	if closer, ok := w.(io.Closer); ok {
		sink.closer = closer
	}
	return sink
}

// OpenLineSink opens path in append mode, creating it when missing.
func OpenLineSink(path string) (*LineSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return NewLineSink(file), nil
}

// RenderLine renders a record with its keys in sorted order, terminated by a newline.
func RenderLine(record domain.Record) string {
	keys := record.Keys()
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, key+": "+normalization.AsText(record[key]))
	}
	return strings.Join(fields, ", ") + "\n"
}

// WriteBatch writes every record of the batch in order. A batch is written under the sink lock,
// so batches from overlapping polls never interleave. The first write error aborts the batch.
func (s *LineSink) WriteBatch(ctx context.Context, batch domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return port.ErrSinkClosed
	}
	for i, record := range batch.Records {
		if err := s.writeLine(ctx, []byte(RenderLine(record))); err != nil {
			slog.Error("line sink write failed", slog.String("endpoint", batch.Endpoint), slog.Uint64("tick", batch.Tick), slog.Int("record", i), slog.Any("error", err))
			return fmt.Errorf("%w: record %d: %w", port.ErrSinkWrite, i, err)
		}
	}
	return nil
}

// writeLine issues the next write only after the previous one was fully accepted. A short write
// without an error means the stream is not ready; the remainder is written once it signals
// readiness.
func (s *LineSink) writeLine(ctx context.Context, line []byte) error {
	stalls := 0
	for len(line) > 0 {
		n, err := s.w.Write(line)
		if err != nil {
			return err
		}
		line = line[n:]
		if len(line) == 0 {
			return nil
		}

		if signaler, ok := s.w.(ReadySignaler); ok {
			select {
			case <-signaler.Ready():
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if n == 0 {
			stalls++
			if stalls >= maxStalledWrites {
				return io.ErrNoProgress
			}
		} else {
			stalls = 0
		}
	}
	return nil
}

// Close releases the underlying stream. Further writes fail with port.ErrSinkClosed.
func (s *LineSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

var _ port.RecordSink = (*LineSink)(nil)
