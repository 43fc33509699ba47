package infrastructure

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"openF1Poll/internal/modules/telemetry/application/port"
)

func TestDecodeRecords_ArrayKeepsOrder(t *testing.T) {
	records, err := decodeRecords(strings.NewReader(`[{"a":1},{"b":2}]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["a"] != json.Number("1") {
		t.Fatalf("unexpected first record: %v", records[0])
	}
	if records[1]["b"] != json.Number("2") {
		t.Fatalf("unexpected second record: %v", records[1])
	}
}

func TestDecodeRecords_ObjectIsSingleRecord(t *testing.T) {
	records, err := decodeRecords(strings.NewReader(`{"x":1,"y":2}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Keys(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("unexpected keys: %v", got)
	}
}

func TestDecodeRecords_PreservesNumberText(t *testing.T) {
	records, err := decodeRecords(strings.NewReader(`[{"gap_to_leader":0.005,"session_key":9165,"interval":null}]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got := records[0]["gap_to_leader"]; got != json.Number("0.005") {
		t.Fatalf("expected exact number text, got %v", got)
	}
	if got, ok := records[0]["interval"]; !ok || got != nil {
		t.Fatalf("expected null interval to be kept, got %v (present=%v)", got, ok)
	}
}

func TestDecodeRecords_EmptyArray(t *testing.T) {
	records, err := decodeRecords(strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestDecodeRecords_RejectsUnexpectedShapes(t *testing.T) {
	for _, body := range []string{`42`, `"text"`, `[1,2]`, `[{"a":1},"b"]`} {
		if _, err := decodeRecords(strings.NewReader(body)); !errors.Is(err, port.ErrUnexpectedPayload) {
			t.Fatalf("body %s: expected unexpected payload error, got %v", body, err)
		}
	}
	if _, err := decodeRecords(strings.NewReader(`{"a":`)); err == nil {
		t.Fatal("expected malformed json to fail")
	}
}
