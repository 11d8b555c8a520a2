package session

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:64;not null"`
	Value     string    `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (entry) TableName() string {
	return "session_entries"
}

// SQLiteStore persists the Credential in a SQLite table through gorm.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteStore wraps the provided database and ensures the session table exists.
func NewSQLiteStore(db *gorm.DB, logger *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("session: database connection required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("session: migrate: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// IsAuthenticated reports whether a Credential is stored.
func (s *SQLiteStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the stored Credential. Read failures are logged and reported as no Credential.
func (s *SQLiteStore) Token() string {
	var entries []entry
	if err := s.db.Where("entry_key = ?", TokenKey).Limit(1).Find(&entries).Error; err != nil {
		s.logger.Warn("session token read failed", zap.Error(err))
		return ""
	}
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Value
}

// SetToken upserts the Credential row.
func (s *SQLiteStore) SetToken(token string) error {
	record := entry{Key: TokenKey, Value: token}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("session: store token: %w", err)
	}
	return nil
}

// ClearToken deletes the Credential row if present.
func (s *SQLiteStore) ClearToken() error {
	if err := s.db.Where("entry_key = ?", TokenKey).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
