package database

import (
	"fmt"
	"time"

	"asset-inventory-backend/internal/config"
	"asset-inventory-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres and routes gorm's own logging through logrus.
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.AssetCategory{},
		&models.Employee{},
		&models.AssetType{},
		&models.AssetInstance{},
		&models.AssetAssignmentHistory{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one open loan per instance.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_instance
	  ON %s (asset_instance_id)
	  WHERE return_date IS NULL;
	`, models.AssignmentHistoryTable, models.AssignmentHistoryTable)).Error; err != nil {
		return fmt.Errorf("open loan index: %w", err)
	}

	// Low-stock sums only ever look at on-stock rows.
	if err := db.Exec(`
	  CREATE INDEX IF NOT EXISTS asset_instances_on_stock_by_type
	  ON asset_instances (asset_type_id)
	  WHERE status = 'on_stock';
	`).Error; err != nil {
		return fmt.Errorf("on-stock index: %w", err)
	}

	// Issued rows always have a holder; written-off rows hold nothing.
	if err := db.Exec(`
	  DO $$ BEGIN
	    ALTER TABLE asset_instances ADD CONSTRAINT asset_instances_issued_has_holder
	      CHECK ((status = 'issued') = (current_employee_id IS NOT NULL AND quantity >= 1));
	  EXCEPTION WHEN duplicate_object THEN NULL; END $$;
	`).Error; err != nil {
		return fmt.Errorf("issued constraint: %w", err)
	}
	if err := db.Exec(`
	  DO $$ BEGIN
	    ALTER TABLE asset_instances ADD CONSTRAINT asset_instances_written_off_empty
	      CHECK (status <> 'written_off' OR quantity = 0);
	  EXCEPTION WHEN duplicate_object THEN NULL; END $$;
	`).Error; err != nil {
		return fmt.Errorf("written-off constraint: %w", err)
	}

	return nil
}
