package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that might interfere with defaults.
	os.Unsetenv("TEMPORAL_ADDRESS")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("KAFKA_TOPIC")
	os.Unsetenv("ESCROW_ACCOUNT")
	os.Unsetenv("SWEEP_BATCH_SIZE")
	os.Unsetenv("SWEEP_CONCURRENCY")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost:7233", cfg.TemporalAddress)
	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "payment-events", cfg.KafkaTopic)
	assert.Equal(t, "platform-escrow", cfg.EscrowAccount)
	assert.Equal(t, 100, cfg.SweepBatchSize)
	assert.Equal(t, 8, cfg.SweepConcurrency)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("CORE_DATABASE_URL", "postgres://core:5432/payments")
	t.Setenv("TEMPORAL_ADDRESS", "temporal.example.com:7233")
	t.Setenv("AGGREGATOR_URL", "https://agg.example.com")
	t.Setenv("ORACLE_URL", "https://oracle.example.com")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("DISCOUNT_TOKEN", "lutra")
	t.Setenv("POLICY_FILE", "/etc/payments/policy.yaml")
	t.Setenv("SWEEP_BATCH_SIZE", "250")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://core:5432/payments", cfg.CoreDatabaseURL)
	assert.Equal(t, "temporal.example.com:7233", cfg.TemporalAddress)
	assert.Equal(t, "https://agg.example.com", cfg.AggregatorURL)
	assert.Equal(t, "https://oracle.example.com", cfg.OracleURL)
	assert.Equal(t, "lutra", cfg.DiscountToken)
	assert.Equal(t, "/etc/payments/policy.yaml", cfg.PolicyFile)
	assert.Equal(t, 250, cfg.SweepBatchSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
}

func TestLoad_BadSweepBatchSize(t *testing.T) {
	t.Setenv("SWEEP_BATCH_SIZE", "lots")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_PaymentsAPI_MissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("payments-api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORE_DATABASE_URL")
	assert.Contains(t, err.Error(), "AGGREGATOR_URL")
	assert.Contains(t, err.Error(), "ORACLE_URL")
	assert.Contains(t, err.Error(), "DISCOUNT_TOKEN")
}

func TestValidate_Worker_MissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("worker")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORE_DATABASE_URL")
	assert.Contains(t, err.Error(), "TEMPORAL_ADDRESS")
}

func TestValidate_PaymentsAPI_Complete(t *testing.T) {
	cfg := &Config{
		CoreDatabaseURL: "postgres://localhost/payments",
		AggregatorURL:   "https://agg.example.com",
		OracleURL:       "https://oracle.example.com",
		DiscountToken:   "lutra",
	}
	require.NoError(t, cfg.Validate("payments-api"))
}

func TestValidate_UnknownService(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("billing-batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func TestBrokers_Empty(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.Brokers())
}
