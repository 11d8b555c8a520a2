package users

import (
	"strings"
	"time"
)

// User is an account able to sign in with email and password.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
