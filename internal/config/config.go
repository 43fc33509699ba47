package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	str2duration "github.com/xhit/go-str2duration/v2"
)

type Config struct {
	OpenF1  OpenF1Config
	Output  OutputConfig
	Status  StatusConfig
	Kafka   KafkaConfig
	Logging LoggingConfig
}

type OpenF1Config struct {
	BaseURL             string        `validate:"required,url"`
	Timeout             time.Duration `validate:"gt=0"`
	IgnoreUnknownParams bool
}

type OutputConfig struct {
	Format string `validate:"oneof=line csv"`
}

// StatusConfig enables the local status server when Addr is set.
type StatusConfig struct {
	Addr      string
	JWTSecret string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string `validate:"required_with=Brokers"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type LoggingConfig struct {
	Level     string
	Format    string `validate:"oneof=text json"`
	Directory string
}

const (
	defaultBaseURL = "https://api.openf1.org/v1"
	defaultTimeout = 10 * time.Second
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Load reads the process environment. Call godotenv first to honour a local .env file.
func Load() (*Config, error) {
	timeout, err := durationEnv("OPENF1_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, err
	}
	ignoreUnknown, err := boolEnv("OPENF1_IGNORE_UNKNOWN_PARAMS")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenF1: OpenF1Config{
			BaseURL:             stringEnv("OPENF1_BASE_URL", defaultBaseURL),
			Timeout:             timeout,
			IgnoreUnknownParams: ignoreUnknown,
		},
		Output: OutputConfig{
			Format: strings.ToLower(stringEnv("OPENF1_OUTPUT_FORMAT", "line")),
		},
		Status: StatusConfig{
			Addr:      stringEnv("OPENF1_STATUS_ADDR", ""),
			JWTSecret: stringEnv("OPENF1_STREAM_JWT_SECRET", ""),
		},
		Kafka: KafkaConfig{
			Brokers: listEnv("OPENF1_KAFKA_BROKERS"),
			Topic:   stringEnv("OPENF1_KAFKA_TOPIC", ""),
		},
		Logging: LoggingConfig{
			Level:     stringEnv("LOG_LEVEL", "info"),
			Format:    strings.ToLower(stringEnv("LOG_FORMAT", "text")),
			Directory: stringEnv("LOG_DIRECTORY", ""),
		},
	}

	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func stringEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
