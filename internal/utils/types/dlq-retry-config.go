package types

import "time"

type DLQRetryConfig struct {
	BatchSize      int           `json:"batch_size" mapstructure:"BATCH_SIZE"`
	RetryInterval  time.Duration `json:"retry_interval" mapstructure:"RETRY_INTERVAL"`
	MaxRetryCount  int           `json:"max_retry_count" mapstructure:"MAX_RETRY_COUNT"`
	BackoffFactor  float64       `json:"backoff_factor" mapstructure:"BACKOFF_FACTOR"`
	DatabaseName   string        `json:"database_name" mapstructure:"DATABASE_NAME"`
	CollectionName string        `json:"collection_name" mapstructure:"COLLECTION_NAME"`
}
