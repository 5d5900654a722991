// Package db opens the PostgreSQL connection and applies the schema.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-sourcing/internal/config"
	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/diewo77/go-sourcing/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	retryDelay      = 2 * time.Second
)

// MigrationsPath is the golang-migrate source used when SQL migrations are enabled.
var MigrationsPath = "file://migrations"

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&models.Counter{},
		&models.Product{},
		&models.Category{},
		&models.SubCategory{},
		&models.Quotation{},
		&models.SelectedCompany{},
		&models.Negotiation{},
		&models.NegotiationRevision{},
		&models.UserFavorites{},
		&models.FavoriteEntry{},
	}
}

// Open connects to PostgreSQL, retrying while the database starts.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DSN())
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level), TranslateError: true}
	logger.Info(ctx, "connecting to database", zap.String("dsn", MaskDSN(dsn)))

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			err = conn.WithContext(ctx).Exec("SELECT 1").Error
		}
		if err == nil {
			return conn, nil
		}
		logger.Warn(ctx, "database not ready", zap.Int("attempt", i), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
}

// AutoMigrate creates or updates every table from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range Models() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations applies the versioned SQL files under MigrationsPath.
func RunSQLMigrations(dsn string) error {
	m, err := migrate.New(MigrationsPath, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Migrate applies the schema with SQL migrations when enabled, AutoMigrate otherwise.
func Migrate(ctx context.Context, conn *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations {
		logger.Info(ctx, "running sql migrations", zap.String("source", MigrationsPath))
		if err := RunSQLMigrations(cfg.Database.DSN()); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	} else if err := AutoMigrate(conn); err != nil {
		return err
	}
	for _, table := range []string{"counters", "negotiations", "quotations"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
