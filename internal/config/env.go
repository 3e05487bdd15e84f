package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays BLOCKLOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BLOCKLOG_PROGRAM_ID"); v != "" {
		cfg.ProgramID = v
	}
	if v := os.Getenv("BLOCKLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BLOCKLOG_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BLOCKLOG_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("BLOCKLOG_ALLOW_HEADER_CALLER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.AllowHeaderCaller = b
		}
	}
	if v := os.Getenv("BLOCKLOG_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("BLOCKLOG_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("BLOCKLOG_POLICY_CREATE"); v != "" {
		cfg.Policy.Create = v
	}
	if v := os.Getenv("BLOCKLOG_POLICY_APPEND"); v != "" {
		cfg.Policy.Append = v
	}
	if v := os.Getenv("BLOCKLOG_KAFKA_BROKERS"); v != "" {
		cfg.Sink.Kafka.Brokers = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Sink.Kafka.Brokers = append(cfg.Sink.Kafka.Brokers, p)
			}
		}
	}
	if v := os.Getenv("BLOCKLOG_KAFKA_TOPIC"); v != "" {
		cfg.Sink.Kafka.Topic = v
	}
}
