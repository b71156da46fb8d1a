package infra

import (
	"fmt"

	"distripos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema. gen_random_uuid() requires PostgreSQL 13+ (or pgcrypto).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates or updates all tables.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Producto{},
		&model.Caja{},
		&model.Venta{},
		&model.VentaDetalle{},
		&model.MovimientoStock{},
	)
}
