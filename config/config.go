package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/counter"
	"github.com/xenn00/chat-delivery/internal/dispatch"
	"github.com/xenn00/chat-delivery/internal/utils/types"
)

type AppConfig struct {
	App struct {
		Name       string `mapstructure:"NAME"`
		Port       string `mapstructure:"PORT"`
		InstanceID string `mapstructure:"INSTANCE_ID"`
		PublicKey  string `mapstructure:"PUBLIC_KEY"`
	}

	DATABASE struct {
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
			DB       int    `mapstructure:"DB"`
			PoolSize int    `mapstructure:"POOL_SIZE"`
		}
		Mongo struct {
			Url      string `mapstructure:"URL"`
			Database string `mapstructure:"DATABASE"`
		}
	}

	KAFKA struct {
		Brokers     []string `mapstructure:"BROKERS"`
		Topic       string   `mapstructure:"TOPIC"`
		NotifyGroup string   `mapstructure:"NOTIFY_GROUP"`
	}

	STREAM struct {
		Prefix    string        `mapstructure:"PREFIX"`
		Shards    int           `mapstructure:"SHARDS"`
		MaxLen    int64         `mapstructure:"MAX_LEN"`
		Group     string        `mapstructure:"GROUP"`
		Block     time.Duration `mapstructure:"BLOCK"`
		Workers   int           `mapstructure:"WORKERS"`
		ClaimIdle time.Duration `mapstructure:"CLAIM_IDLE"`
	}

	BROADCAST broadcast.Config
	COUNTER   counter.Config
	DISPATCH  dispatch.Config

	PIPELINE struct {
		StepTimeout     time.Duration `mapstructure:"STEP_TIMEOUT"`
		PreviewTimeout  time.Duration `mapstructure:"PREVIEW_TIMEOUT"`
		MaxPreviews     int           `mapstructure:"MAX_PREVIEWS"`
		PreviewCacheTTL time.Duration `mapstructure:"PREVIEW_CACHE_TTL"`
	}

	TYPING struct {
		Rate  float64       `mapstructure:"RATE"`
		Burst int           `mapstructure:"BURST"`
		TTL   time.Duration `mapstructure:"TTL"`
	}

	WS struct {
		AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
	}

	WORKER struct {
		Count       int           `mapstructure:"COUNT"`
		AlertWindow time.Duration `mapstructure:"ALERT_WINDOW"`
	}

	DLQ types.DLQRetryConfig
}

var Conf *AppConfig

func setDefaults() {
	viper.SetDefault("APP.NAME", "chat-delivery")
	viper.SetDefault("APP.PORT", ":8080")
	viper.SetDefault("APP.INSTANCE_ID", "")
	viper.SetDefault("APP.PUBLIC_KEY", "public.pem")

	viper.SetDefault("DATABASE.POSTGRES.URL", "")
	viper.SetDefault("DATABASE.REDIS.ADDR", "localhost:6379")
	viper.SetDefault("DATABASE.REDIS.PASSWORD", "")
	viper.SetDefault("DATABASE.REDIS.DB", 0)
	viper.SetDefault("DATABASE.REDIS.POOL_SIZE", 50)
	viper.SetDefault("DATABASE.MONGO.URL", "")
	viper.SetDefault("DATABASE.MONGO.DATABASE", "chat_collection")

	viper.SetDefault("KAFKA.BROKERS", []string{"localhost:9092"})
	viper.SetDefault("KAFKA.TOPIC", "chat.messages")
	viper.SetDefault("KAFKA.NOTIFY_GROUP", "chat-notify")

	viper.SetDefault("STREAM.PREFIX", "chat:stream")
	viper.SetDefault("STREAM.SHARDS", 8)
	viper.SetDefault("STREAM.MAX_LEN", 100000)
	viper.SetDefault("STREAM.GROUP", "")
	viper.SetDefault("STREAM.BLOCK", "2s")
	viper.SetDefault("STREAM.WORKERS", 2)
	viper.SetDefault("STREAM.CLAIM_IDLE", "30s")

	viper.SetDefault("BROADCAST.RETRY_COUNT", broadcast.DefaultRetryCount)
	viper.SetDefault("BROADCAST.BASE_DELAY", "200ms")
	viper.SetDefault("BROADCAST.SEND_TIMEOUT", "5s")

	viper.SetDefault("COUNTER.DEDUP_TTL", "30s")
	viper.SetDefault("COUNTER.BREAKER_FAILURES", 5)
	viper.SetDefault("COUNTER.BREAKER_TIMEOUT", "10s")
	viper.SetDefault("COUNTER.REPOPULATE_INTERVAL", "30s")
	viper.SetDefault("COUNTER.RECONCILE_MARKER_TTL", "24h")

	viper.SetDefault("DISPATCH.INTERVAL", "10s")
	viper.SetDefault("DISPATCH.LOCK_NAME", "scheduled-dispatch")
	viper.SetDefault("DISPATCH.MAX_HOLD", "5m")
	viper.SetDefault("DISPATCH.BATCH_SIZE", 100)

	viper.SetDefault("PIPELINE.STEP_TIMEOUT", "5s")
	viper.SetDefault("PIPELINE.PREVIEW_TIMEOUT", "2s")
	viper.SetDefault("PIPELINE.MAX_PREVIEWS", 3)
	viper.SetDefault("PIPELINE.PREVIEW_CACHE_TTL", "6h")

	viper.SetDefault("TYPING.RATE", 1.0)
	viper.SetDefault("TYPING.BURST", 3)
	viper.SetDefault("TYPING.TTL", "1m")

	viper.SetDefault("WS.ALLOWED_ORIGINS", []string{})

	viper.SetDefault("WORKER.COUNT", 5)
	viper.SetDefault("WORKER.ALERT_WINDOW", "5m")

	viper.SetDefault("DLQ.BATCH_SIZE", 50)
	viper.SetDefault("DLQ.RETRY_INTERVAL", "1m")
	viper.SetDefault("DLQ.MAX_RETRY_COUNT", 5)
	viper.SetDefault("DLQ.BACKOFF_FACTOR", 2.0)
	viper.SetDefault("DLQ.DATABASE_NAME", "chat_collection")
	viper.SetDefault("DLQ.COLLECTION_NAME", "dlq_jobs")
}

// LoadConfig reads application.yaml from the working directory when present.
// Every key can be overridden by CHATAPP_<SECTION>_<KEY>.
func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CHATAPP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Warn().Msg("application.yaml not found, using defaults and environment")
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
