package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENF1_BASE_URL", "OPENF1_TIMEOUT", "OPENF1_IGNORE_UNKNOWN_PARAMS", "OPENF1_OUTPUT_FORMAT",
		"OPENF1_STATUS_ADDR", "OPENF1_STREAM_JWT_SECRET", "OPENF1_KAFKA_BROKERS", "OPENF1_KAFKA_TOPIC",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_DIRECTORY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenF1.BaseURL != "https://api.openf1.org/v1" {
		t.Fatalf("base url = %s", cfg.OpenF1.BaseURL)
	}
	if cfg.OpenF1.Timeout != 10*time.Second {
		t.Fatalf("timeout = %s", cfg.OpenF1.Timeout)
	}
	if cfg.Output.Format != "line" || cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Kafka.Enabled() || cfg.Status.Addr != "" {
		t.Fatalf("optional components should be disabled: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENF1_BASE_URL", "http://localhost:9000/v1")
	t.Setenv("OPENF1_TIMEOUT", "1m30s")
	t.Setenv("OPENF1_IGNORE_UNKNOWN_PARAMS", "true")
	t.Setenv("OPENF1_OUTPUT_FORMAT", "CSV")
	t.Setenv("OPENF1_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("OPENF1_KAFKA_TOPIC", "openf1.records")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenF1.Timeout != 90*time.Second || !cfg.OpenF1.IgnoreUnknownParams {
		t.Fatalf("unexpected openf1 config: %+v", cfg.OpenF1)
	}
	if cfg.Output.Format != "csv" {
		t.Fatalf("format = %s", cfg.Output.Format)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" || !cfg.Kafka.Enabled() {
		t.Fatalf("unexpected kafka config: %+v", cfg.Kafka)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad timeout":      {"OPENF1_TIMEOUT": "soon"},
		"zero timeout":     {"OPENF1_TIMEOUT": "0s"},
		"bad format":       {"OPENF1_OUTPUT_FORMAT": "xml"},
		"bad url":          {"OPENF1_BASE_URL": "not a url"},
		"bad bool":         {"OPENF1_IGNORE_UNKNOWN_PARAMS": "maybe"},
		"brokers no topic": {"OPENF1_KAFKA_BROKERS": "kafka:9092"},
		"bad log format":   {"LOG_FORMAT": "xml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
