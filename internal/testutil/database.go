// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

// AllModels is the list of GORM models auto-migrated in tests.
var AllModels = []interface{}{
	&models.User{},
	&models.Category{},
	&models.RecurringRule{},
	&models.Transaction{},
	&models.PiggyBank{},
}

var dbCounter atomic.Int64

// NewTestDSN returns a DSN for a fresh named in-memory database, so tests in
// one process never see each other's rows.
func NewTestDSN() string {
	return fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbCounter.Add(1))
}

// SetupTestDB creates an isolated in-memory SQLite database with all models
// migrated. The pool is capped at one connection, matching how the
// application runs SQLite and serializing concurrent writers.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(NewTestDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(AllModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
