package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken indicates the email already belongs to an account.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrUserNotFound indicates no account matches the identifier.
	ErrUserNotFound = errors.New("users: user not found")
	// ErrInvalidInput indicates an email or password the service cannot accept.
	ErrInvalidInput = errors.New("users: invalid input")
	// ErrMissingCredentials indicates an empty email or password.
	ErrMissingCredentials = fmt.Errorf("%w: email and password required", ErrInvalidInput)
	// ErrPasswordTooLong indicates a password bcrypt cannot hash.
	ErrPasswordTooLong = fmt.Errorf("%w: password exceeds 72 bytes", ErrInvalidInput)
)

// ServiceConfig describes the dependencies required for account management.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	HashCost int
	Logger   *zap.Logger
}

// Service registers and authenticates accounts.
type Service struct {
	db       *gorm.DB
	now      func() time.Time
	hashCost int
	logger   *zap.Logger
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	hashCost := cfg.HashCost
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("users: hash cost %d out of range", hashCost)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       cfg.Database,
		now:      clock,
		hashCost: hashCost,
		logger:   logger,
	}, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", normalized).Count(&existing).Error; err != nil {
		return User{}, fmt.Errorf("users: lookup email: %w", err)
	}
	if existing > 0 {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, ErrPasswordTooLong
	}
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	user := User{
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Authenticate returns the account matching email when password verifies.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("users: lookup email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID loads the account identified by id.
func (s *Service) FindByID(ctx context.Context, id uint) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: lookup id: %w", err)
	}
	return user, nil
}
