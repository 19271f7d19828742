package pkg

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/learnhub/lms-service/internal/config"
	"github.com/learnhub/lms-service/internal/models"
)

// InitDatabase opens the Postgres connection, configures the pool and runs
// schema migration.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), newGormConfig(cfg.Environment))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// newGormConfig builds the gorm configuration used against Postgres. Driver
// errors are translated to gorm sentinels so unique index violations surface
// as gorm.ErrDuplicatedKey.
func newGormConfig(environment string) *gorm.Config {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	if environment == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	return gormConfig
}

// Migrate runs GORM auto-migration for all LMS entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Course{},
		&models.Lesson{},
		&models.Review{},
		&models.Enrollment{},
	)
}

// NewRedisClient creates a Redis client from the configured URL and verifies
// connectivity is left to the caller's first use (cache degrades gracefully).
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
