package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

func TestResolveTargetAcceptsAliases(t *testing.T) {
	cases := map[string]string{
		"drivers":    "drivers",
		"Driver":     "drivers",
		" sessions ": "sessions",
		"interval":   "intervals",
		"intervals":  "intervals",
		"weather":    "weather",
		"stint":      "stints",
		"pits":       "pit",
	}
	for input, endpoint := range cases {
		target, err := ResolveTarget(input)
		if err != nil {
			t.Fatalf("ResolveTarget(%q) error: %v", input, err)
		}
		if target.Endpoint != endpoint {
			t.Fatalf("ResolveTarget(%q) endpoint = %q, want %q", input, target.Endpoint, endpoint)
		}
	}
}

func TestResolveTargetUnknown(t *testing.T) {
	_, err := ResolveTarget("lap_times")
	if !errors.Is(err, port.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestResolveTargetDefaultsAreIndependent(t *testing.T) {
	first, _ := ResolveTarget("drivers")
	first.Defaults["session_key"] = domain.NumberValue(1)

	second, _ := ResolveTarget("drivers")
	if got := second.Defaults["session_key"]; got.Kind() != domain.ValueLatest {
		t.Fatalf("defaults leaked between lookups: %v", got)
	}
}

func TestTargetNamesSorted(t *testing.T) {
	got := strings.Join(TargetNames(), ",")
	want := "drivers,interval,intervals,pit,sessions,stints,weather"
	if got != want {
		t.Fatalf("TargetNames() = %s, want %s", got, want)
	}
}

func TestNewPollRequestMergesOverrides(t *testing.T) {
	target, _ := ResolveTarget("intervals")
	req, err := NewPollRequest(target, domain.Params{"interval": domain.NumberValue(1.5)}, time.Second, "out.txt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Params["interval"].String(); got != "1.5" {
		t.Fatalf("interval override = %s", got)
	}
	if got := req.Params["session_key"].Kind(); got != domain.ValueLatest {
		t.Fatalf("session_key default lost: %v", got)
	}
	if req.Mode() != domain.PollModeInterval {
		t.Fatalf("mode = %s", req.Mode())
	}
	if got := target.Defaults["interval"].String(); got != "0.005" {
		t.Fatalf("target defaults mutated: %s", got)
	}
}

func TestNewPollRequestRequiresInterval(t *testing.T) {
	target, _ := ResolveTarget("weather")
	_, err := NewPollRequest(target, nil, 0, "out.txt", "line")
	if !errors.Is(err, port.ErrIntervalRequired) {
		t.Fatalf("expected ErrIntervalRequired, got %v", err)
	}
}

func TestNewPollRequestSingleShotWithInterval(t *testing.T) {
	target, _ := ResolveTarget("drivers")
	req, err := NewPollRequest(target, nil, 2*time.Second, "out.txt", "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Mode() != domain.PollModeInterval {
		t.Fatalf("drivers with interval should poll, got %s", req.Mode())
	}
}

func TestNewPollRequestRejectsInvalidInput(t *testing.T) {
	target, _ := ResolveTarget("drivers")
	cases := []struct {
		name     string
		interval time.Duration
		path     string
		format   string
		want     error
	}{
		{name: "negative interval", interval: -time.Second, path: "out.txt", want: port.ErrInvalidInterval},
		{name: "missing path", path: "  ", want: port.ErrInvalidRequest},
		{name: "unknown format", path: "out.txt", format: "xml", want: port.ErrInvalidRequest},
	}
	for _, tc := range cases {
		_, err := NewPollRequest(target, nil, tc.interval, tc.path, tc.format)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
