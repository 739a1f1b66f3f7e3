package database

import (
	"os"
	"testing"

	"asset-inventory-backend/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TestDSNEnv names the variable that enables tests against a real Postgres.
const TestDSNEnv = "TEST_DATABASE_DSN"

// OpenForTest migrates and truncates the database named by TEST_DATABASE_DSN,
// skipping the test when it is unset. Packages share that database, so run
// them with go test -p 1.
func OpenForTest(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping database test", TestDSNEnv)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	db, err := Open(&config.Config{DatabaseDSN: dsn, DBMaxOpenConns: 10, DBMaxIdleConns: 2}, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := db.Exec(`TRUNCATE asset_assignment_histories, asset_instances, asset_types,
		asset_categories, employees, audit_logs RESTART IDENTITY CASCADE`).Error; err != nil {
		t.Fatalf("truncate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
