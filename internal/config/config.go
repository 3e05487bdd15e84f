package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rzbill/blocklog/internal/locator"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

// DefaultProgramID is the program address event logs are derived under.
const DefaultProgramID = "B5XNLjvDHkacwCASVVpo1EGK9L4AA7c7WdmX5qFrKLGH"

// Config is the top-level configuration loaded from file/env.
type Config struct {
	ProgramID string          `json:"programId" yaml:"programId"`
	Log       logpkg.Config   `json:"log" yaml:"log"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
	Policy    PolicyConfig    `json:"policy" yaml:"policy"`
	Sink      SinkConfig      `json:"sink" yaml:"sink"`
}

// AuthConfig controls how callers are identified.
type AuthConfig struct {
	// JWTSecret enables HS256 bearer tokens; the "sub" claim is the caller.
	JWTSecret string `json:"jwtSecret" yaml:"jwtSecret"`
	// AllowHeaderCaller accepts an unauthenticated X-Caller header / x-caller metadata.
	AllowHeaderCaller bool `json:"allowHeaderCaller" yaml:"allowHeaderCaller"`
}

// RateLimitConfig bounds requests per caller on the HTTP API. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// PolicyConfig holds optional CEL expressions gating each instruction.
// Variables: caller (string), key (int), size (int), count (int).
type PolicyConfig struct {
	Create string `json:"create" yaml:"create"`
	Append string `json:"append" yaml:"append"`
}

// SinkConfig selects where append notifications go.
type SinkConfig struct {
	Kafka KafkaConfig `json:"kafka" yaml:"kafka"`
}

// KafkaConfig enables the Kafka sink when Brokers and Topic are set.
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

// Enabled reports whether Kafka publishing is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 && k.Topic != "" }

// Default returns built-in defaults.
func Default() Config {
	return Config{
		ProgramID: DefaultProgramID,
		Log:       logpkg.Config{Level: "info", Format: "text"},
		Auth:      AuthConfig{AllowHeaderCaller: true},
		RateLimit: RateLimitConfig{RequestsPerSecond: 50, Burst: 100},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate checks fields that would otherwise fail later at startup.
func (c Config) Validate() error {
	if _, err := locator.ParseAddress(c.ProgramID); err != nil {
		return fmt.Errorf("programId: %w", err)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rateLimit: values must be non-negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0 {
		return errors.New("rateLimit: burst must be positive when requestsPerSecond is set")
	}
	if len(c.Sink.Kafka.Brokers) > 0 && c.Sink.Kafka.Topic == "" {
		return errors.New("sink.kafka: topic is required when brokers are set")
	}
	return nil
}

// Program returns the parsed program ID. Call Validate first.
func (c Config) Program() locator.Address {
	a, _ := locator.ParseAddress(c.ProgramID)
	return a
}
