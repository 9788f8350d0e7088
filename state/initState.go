package state

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/xenn00/chat-delivery/config"
	"github.com/xenn00/chat-delivery/internal/publisher"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

type AppState struct {
	Ctx       context.Context
	Cancel    context.CancelFunc
	DB        *gorm.DB
	SQL       *sqlx.DB
	Redis     *redis.Client
	Mongo     *mongo.Client
	Kafka     *kafka.Writer
	PublicKey *rsa.PublicKey

	sqlDB *sql.DB
}

func InitAppState(ctx context.Context, cancel context.CancelFunc) (*AppState, error) {
	conf := config.Conf

	db, sqlDB, err := InitPostgres(conf.DATABASE.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	mongoClient, err := InitMongo(ctx, conf.DATABASE.Mongo.Url)
	if err != nil {
		return nil, err
	}

	rdb, err := InitRedis(ctx, RedisOptions{
		Addr:       conf.DATABASE.Redis.Addr,
		Password:   conf.DATABASE.Redis.Password,
		DB:         conf.DATABASE.Redis.DB,
		PoolSize:   conf.DATABASE.Redis.PoolSize,
		ClientName: conf.App.Name,
	})
	if err != nil {
		return nil, err
	}

	publicKey, err := InitPublicKey(conf.App.PublicKey)
	if err != nil {
		return nil, err
	}

	return &AppState{
		Ctx:       ctx,
		Cancel:    cancel,
		DB:        db,
		SQL:       SQLX(sqlDB),
		Mongo:     mongoClient,
		Redis:     rdb,
		Kafka:     publisher.NewKafkaWriter(conf.KAFKA.Brokers, conf.KAFKA.Topic),
		PublicKey: publicKey,
		sqlDB:     sqlDB,
	}, nil
}

func (a *AppState) Close() {
	if a.Kafka != nil {
		log.Info().Msg("Closing Kafka writer...")
		if err := a.Kafka.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Kafka writer")
		}
	}

	if a.sqlDB != nil {
		log.Info().Msg("Closing PostgreSQL database connection...")
		a.sqlDB.Close()
	}

	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		log.Info().Msg("Closing MongoDB client...")
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("Closing Redis client...")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
