package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/shared/normalization"
)

// Column is one CSV column: ID selects the record field, Title is written in the header row.
type Column struct {
	ID    string
	Title string
}

// HeadersFromRecord derives the CSV columns from a sample record. Fields missing from the sample
// never get a column, even if later records carry them.
func HeadersFromRecord(record domain.Record) []Column {
	keys := record.Keys()
	columns := make([]Column, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, Column{
			ID:    strings.ToLower(strings.TrimSpace(key)),
			Title: strings.ToUpper(key),
		})
	}
	return columns
}

// CSVSink collects every record it receives and rewrites the whole file after each batch.
type CSVSink struct {
	mu      sync.Mutex
	path    string
	columns []Column
	records []domain.Record
	closed  bool
}

// NewCSVSink targets path. The file is truncated on the first write, not on creation.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) WriteBatch(_ context.Context, batch domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return port.ErrSinkClosed
	}
	if len(batch.Records) == 0 && len(s.records) > 0 {
		return nil
	}
	if s.columns == nil && len(batch.Records) > 0 {
		s.columns = HeadersFromRecord(batch.Records[0])
	}
	s.records = append(s.records, batch.Records...)

	if err := s.flushLocked(); err != nil {
		slog.Error("csv sink flush failed", slog.String("path", s.path), slog.String("endpoint", batch.Endpoint), slog.Any("error", err))
		return fmt.Errorf("%w: %w", port.ErrSinkWrite, err)
	}
	return nil
}

// flushLocked writes to a temporary file next to the target and renames it into place.
func (s *CSVSink) flushLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}

	writer := csv.NewWriter(tmp)
	if len(s.columns) > 0 {
		titles := make([]string, 0, len(s.columns))
		for _, column := range s.columns {
			titles = append(titles, column.Title)
		}
		if err := writer.Write(titles); err != nil {
			tmp.Close()
			return err
		}
	}
	for _, record := range s.records {
		if err := writer.Write(s.row(record)); err != nil {
			tmp.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *CSVSink) row(record domain.Record) []string {
	byID := make(map[string]any, len(record))
	for key, value := range record {
		byID[strings.ToLower(strings.TrimSpace(key))] = value
	}
	row := make([]string, 0, len(s.columns))
	for _, column := range s.columns {
		value, ok := byID[column.ID]
		if !ok || value == nil {
			row = append(row, "")
			continue
		}
		row = append(row, normalization.AsText(value))
	}
	return row
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ port.RecordSink = (*CSVSink)(nil)
