// Package database opens the Postgres connection and owns the schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/generation"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/quiz"
	"github.com/grivax/grivax-api/internal/user"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	config.WithContext(ctx).Info("Database connected")
	return db, nil
}

// Models lists every persisted entity in migration order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&outline.GenCourse{},
		&course.Course{},
		&course.Unit{},
		&course.Chapter{},
		&quiz.Quiz{},
		&quiz.Attempt{},
		&generation.Job{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
