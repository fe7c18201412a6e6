package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/imrishuroy/storefront-admin/internal/aws"
)

// Config is the process configuration shared by the api and worker binaries.
type Config struct {
	Environment string
	LogLevel    string
	RunLocal    bool
	Port        string

	// SnapshotBackend is one of memory, file, dynamodb or redis.
	SnapshotBackend string
	SnapshotKey     string
	SnapshotDir     string
	SnapshotTable   string
	RedisAddr       string

	IdempotencyTable string
	IdempotencyTTL   time.Duration
	QueueURL         string
	MetricsNamespace string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RunLocal:         getEnvAsBool("RUN_LOCAL", false),
		Port:             getEnv("PORT", "8080"),
		SnapshotBackend:  getEnv("SNAPSHOT_BACKEND", "memory"),
		SnapshotKey:      getEnv("SNAPSHOT_KEY", "adminData"),
		SnapshotDir:      getEnv("SNAPSHOT_DIR", ".data"),
		SnapshotTable:    getEnv("SNAPSHOT_TABLE", ""),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", ""),
		IdempotencyTTL:   getEnvAsDuration("IDEMPOTENCY_TTL", 48*time.Hour),
		QueueURL:         getEnv("ORDERS_QUEUE_URL", ""),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", ""),
	}

	return cfg, nil
}

// AWSNeeds reports which AWS clients the configured components talk to.
func (c *Config) AWSNeeds() aws.Needs {
	return aws.Needs{
		DynamoDB:   c.SnapshotBackend == "dynamodb" || c.IdempotencyTable != "",
		SQS:        c.QueueURL != "",
		CloudWatch: c.MetricsNamespace != "",
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
