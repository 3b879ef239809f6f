package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service    Service
	SQS        SQS
	ClickHouse ClickHouse
	Consumer   Consumer
	Signatures Signatures
}

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
	DialTimeoutSec  int    `envconfig:"CLICKHOUSE_DIAL_TIMEOUT_SEC" default:"5"`
	// MaxExecutionTimeSec bounds every query, including the FINAL lookups by ID
	MaxExecutionTimeSec int `envconfig:"CLICKHOUSE_MAX_EXECUTION_TIME_SEC" default:"60"`
}

type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"500"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
	MaxMessages     int32  `envconfig:"CONSUMER_MAX_MESSAGES" default:"10"`
	WaitTimeSec     int32  `envconfig:"CONSUMER_WAIT_TIME_SEC" default:"20"`
	BufferSize      int    `envconfig:"CONSUMER_BUFFER_SIZE" default:"100"`
	// RetryDelaySec is the visibility timeout applied to messages whose batch failed to insert
	RetryDelaySec int32 `envconfig:"CONSUMER_RETRY_DELAY_SEC" default:"30"`
}

type Signatures struct {
	CacheSize int `envconfig:"SIGNATURE_CACHE_SIZE" default:"4096"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
