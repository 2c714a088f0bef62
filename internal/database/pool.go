// Package database manages the connection pool to the hosted document
// backend.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskify/app/internal/config"
	"taskify/app/internal/models"
)

type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		LogLevel:        logger.Info,
	}
}

// PoolConfigFromApp builds a pool config from the loaded app configuration.
func PoolConfigFromApp(cfg *config.Config) *PoolConfig {
	pool := DefaultPoolConfig()
	pool.DSN = cfg.GetBackendDSN()
	pool.MaxOpenConns = cfg.Backend.MaxOpenConns
	pool.MaxIdleConns = cfg.Backend.MaxIdleConns
	pool.ConnMaxLifetime = cfg.Backend.ConnMaxLifetime
	pool.ConnMaxIdleTime = cfg.Backend.ConnMaxIdleTime
	if cfg.IsProduction() {
		pool.LogLevel = logger.Warn
	}
	return pool
}

type DatabasePool struct {
	DB     *gorm.DB
	config *PoolConfig
}

func NewDatabasePool(config *PoolConfig) (*DatabasePool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	if config.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	if config.MaxOpenConns <= 0 || config.MaxIdleConns <= 0 {
		return nil, fmt.Errorf("connection limits must be positive")
	}

	db, err := gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	return &DatabasePool{DB: db, config: config}, nil
}

// Migrate creates or updates the schema for every persisted model.
func (p *DatabasePool) Migrate() error {
	if p.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	return p.DB.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Task{},
		&models.Note{},
		&models.Habit{},
		&models.Preferences{},
	)
}

func (p *DatabasePool) Stats() map[string]interface{} {
	if p.DB == nil {
		return map[string]interface{}{"error": "database connection is not initialized"}
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
	}
}

func (p *DatabasePool) Health() error {
	if p.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

func (p *DatabasePool) Close() error {
	if p.DB == nil {
		return nil
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
