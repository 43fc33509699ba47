package normalization

import (
	"encoding/json"
	"testing"
)

func TestAsText(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: "null"},
		{name: "string", input: "VER", want: "VER"},
		{name: "json number", input: json.Number("0.005"), want: "0.005"},
		{name: "float", input: 9158.0, want: "9158"},
		{name: "bool", input: true, want: "true"},
		{name: "slice", input: []any{json.Number("2049"), json.Number("2051")}, want: "[2049,2051]"},
		{name: "map", input: map[string]any{"a": "b"}, want: `{"a":"b"}`},
	}

	for _, tc := range cases {
		if got := AsText(tc.input); got != tc.want {
			t.Fatalf("%s: AsText(%v) = %q, expected %q", tc.name, tc.input, got, tc.want)
		}
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"car_data":        "car_data",
		" Car-Data ":      "car_data",
		"RACE_CONTROL":    "race_control",
		"team-radio":      "team_radio",
		"":                "",
		"unknown-thing  ": "unknown_thing",
	}

	for input, expected := range cases {
		if got := NormalizeEndpoint(input); got != expected {
			t.Fatalf("NormalizeEndpoint(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestNormalizeTarget(t *testing.T) {
	cases := map[string]string{
		"interval":  "interval",
		"Intervals": "intervals",
		"driver":    "drivers",
		" Session ": "sessions",
		"pits":      "pit",
		"laps":      "laps",
	}

	for input, expected := range cases {
		if got := NormalizeTarget(input); got != expected {
			t.Fatalf("NormalizeTarget(%q) = %q, expected %q", input, got, expected)
		}
	}
}
