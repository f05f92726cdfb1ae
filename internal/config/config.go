package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	CoreDatabaseURL string
	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string
	// KafkaBrokers is comma-separated; empty disables event publishing.
	KafkaBrokers string
	KafkaTopic   string
	AggregatorURL string
	OracleURL     string
	// PolicyFile points at the YAML fee/distribution policy; empty uses
	// built-in defaults.
	PolicyFile    string
	EscrowAccount string
	DiscountToken string
	// SweepBatchSize bounds how many due subscriptions one sweep picks up.
	SweepBatchSize   int
	SweepConcurrency int
}

func Load() (*Config, error) {
	batchSize, err := getEnvInt("SWEEP_BATCH_SIZE", 100)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("SWEEP_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CoreDatabaseURL:  getEnv("CORE_DATABASE_URL", ""),
		TemporalAddress:  getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:      getEnv("METRICS_ADDR", ":9102"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServiceName:      getEnv("SERVICE_NAME", ""),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "payment-events"),
		AggregatorURL:    getEnv("AGGREGATOR_URL", ""),
		OracleURL:        getEnv("ORACLE_URL", ""),
		PolicyFile:       getEnv("POLICY_FILE", ""),
		EscrowAccount:    getEnv("ESCROW_ACCOUNT", "platform-escrow"),
		DiscountToken:    getEnv("DISCOUNT_TOKEN", ""),
		SweepBatchSize:   batchSize,
		SweepConcurrency: concurrency,
	}

	return cfg, nil
}

// Validate checks that the variables the named service actually needs are
// set. Services share one config shape but not one set of requirements.
func (c *Config) Validate(service string) error {
	var missing []string

	need := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch service {
	case "payments-api":
		need("CORE_DATABASE_URL", c.CoreDatabaseURL)
		need("AGGREGATOR_URL", c.AggregatorURL)
		need("ORACLE_URL", c.OracleURL)
		need("DISCOUNT_TOKEN", c.DiscountToken)
	case "worker":
		need("CORE_DATABASE_URL", c.CoreDatabaseURL)
		need("TEMPORAL_ADDRESS", c.TemporalAddress)
		need("AGGREGATOR_URL", c.AggregatorURL)
	default:
		return fmt.Errorf("unknown service %q", service)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config for %s: %s", service, strings.Join(missing, ", "))
	}
	return nil
}

// Brokers splits KafkaBrokers into addresses.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
