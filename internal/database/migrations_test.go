package database

import (
	"path/filepath"
	"testing"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/sqlitedb"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestApplyMigrationsNormalizesUserEmails(testContext *testing.T) {
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	if err := database.AutoMigrate(&users.User{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}

	user := users.User{
		Email:        " Mixed@Example.COM ",
		PasswordHash: "hash",
	}
	if err := database.Create(&user).Error; err != nil {
		testContext.Fatalf("failed to insert user: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var stored users.User
	if err := database.Where("id = ?", user.ID).Take(&stored).Error; err != nil {
		testContext.Fatalf("failed to reload user: %v", err)
	}
	if stored.Email != "mixed@example.com" {
		testContext.Fatalf("expected normalized email, got %q", stored.Email)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationNormalizeUserEmails).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsRunsOnce(testContext *testing.T) {
	database, err := sqlitedb.Open(filepath.Join(testContext.TempDir(), "once.db"), zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&users.User{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("first run failed: %v", err)
	}
	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("second run failed: %v", err)
	}

	var count int64
	if err := database.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count migrations: %v", err)
	}
	if count != 1 {
		testContext.Fatalf("expected exactly one migration record, got %d", count)
	}
}

func TestOpenSQLiteCreatesSchema(testContext *testing.T) {
	databasePath := filepath.Join(testContext.TempDir(), "nested", "api.db")

	database, err := OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open api database: %v", err)
	}

	for _, table := range []string{"users", "notes", "db_migrations"} {
		if !database.Migrator().HasTable(table) {
			testContext.Fatalf("expected table %s to exist", table)
		}
	}
}
