package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/internal/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitPostgres(dsn string) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		log.Error().Msg(fmt.Errorf("failed to connect to database: %w", err).Error())
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Msg(fmt.Errorf("failed to get underlying sql.DB: %w", err).Error())
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxIdleTime(300 * time.Second)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	log.Info().Msg("Postgres database connection established successfully")
	return db, sqlDB, nil
}

// SQLX shares the gorm pool with the hand-written lock queries.
func SQLX(sqlDB *sql.DB) *sqlx.DB {
	return sqlx.NewDb(sqlDB, "pgx")
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Room{},
		&entity.RoomMember{},
		&entity.ReadStatus{},
		&entity.ScheduledMessage{},
		&entity.AppliedCounterJob{},
	); err != nil {
		return fmt.Errorf("failed to migrate relational schema: %w", err)
	}
	log.Info().Msg("relational schema migrated")
	return nil
}
