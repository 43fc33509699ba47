package infrastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

func decodeRecords(body io.Reader) ([]domain.Record, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	slog.Debug("openf1 payload decoded", slog.String("type", fmt.Sprintf("%T", payload)))

	return normalizeRecordPayload(payload)
}

// normalizeRecordPayload turns an object into one record and an array into one record per
// element, keeping the response order.
func normalizeRecordPayload(payload any) ([]domain.Record, error) {
	switch typed := payload.(type) {
	case map[string]any:
		return []domain.Record{domain.Record(typed)}, nil
	case []any:
		records := make([]domain.Record, 0, len(typed))
		for i, item := range typed {
			object, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", port.ErrUnexpectedPayload, i, item)
			}
			records = append(records, domain.Record(object))
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: top-level %T", port.ErrUnexpectedPayload, payload)
	}
}
