// Package config provides configuration structures and validation for the
// settlement engine. It handles environment-based configuration for all major
// components including the trigger API, databases, messaging, and scan
// scheduling.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. Each field represents a major subsystem's configuration and is
// validated during startup.
type Config struct {
	Application  ApplicationConfig
	Logging      LoggingConfig
	Server       ServerConfig
	Kafka        KafkaConfig
	Postgres     PostgresConfig
	PayloadStore PayloadStoreConfig
	Scanner      ScannerConfig
	WorkerPool   WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP trigger API server settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains trigger consumer and outcome producer configuration
type KafkaConfig struct {
	Brokers           string
	TriggerTopic      string // Decision-approved events that trigger a scan
	EventsTopic       string // Settlement outcome events for downstream consumers
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for unparseable trigger events
}

// PostgresConfig contains ledger store configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// PayloadStoreConfig contains content-addressed payload store configuration
type PayloadStoreConfig struct {
	URI             string
	Database        string
	Collection      string
	FetchTimeout    time.Duration // Bound on a single payload fetch
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// ScannerConfig controls periodic settlement scans
type ScannerConfig struct {
	Interval  time.Duration // Time between scheduled passes
	BatchSize int           // Maximum decisions per kind per pass
}

// WorkerPoolConfig contains settlement worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of concurrent per-decision settlements
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.TriggerTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_TRIGGER_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate payload store config
	if c.PayloadStore.URI == "" {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_URI is required")
	}
	if c.PayloadStore.Database == "" {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_DATABASE is required")
	}
	if c.PayloadStore.Collection == "" {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_COLLECTION is required")
	}
	if c.PayloadStore.FetchTimeout <= 0 {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_FETCH_TIMEOUT must be greater than 0")
	}
	if c.PayloadStore.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_MAX_POOL_SIZE must be greater than 0")
	}
	if c.PayloadStore.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_MIN_POOL_SIZE must be greater than 0")
	}
	if c.PayloadStore.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "PAYLOAD_STORE_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Scanner config
	if c.Scanner.Interval <= 0 {
		validationErrors = append(validationErrors, "SCANNER_INTERVAL must be greater than 0")
	}
	if c.Scanner.BatchSize <= 0 {
		validationErrors = append(validationErrors, "SCANNER_BATCH_SIZE must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
