package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNoteNotFound indicates no note exists with the requested id.
	ErrNoteNotFound = errors.New("notes: note not found")
	// ErrForbidden indicates the note belongs to another user.
	ErrForbidden = errors.New("notes: note owned by another user")

	errMissingDatabase = errors.New("database handle is required")
	errMissingUserID   = errors.New("user identifier is required")
	noOpLogger         = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew  = "notes.service.new"
	opListNotes   = "notes.list_notes"
	opCreateNote  = "notes.create_note"
	opUpdateNote  = "notes.update_note"
	opDeleteNote  = "notes.delete_note"
	reasonMissing = "not_found"
	reasonOwner   = "forbidden"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// ListNotes returns the user's notes in creation order.
func (s *Service) ListNotes(ctx context.Context, userID uint) ([]Note, error) {
	if userID == 0 {
		s.logError(opListNotes, "missing_user_id", errMissingUserID)
		return nil, newServiceError(opListNotes, "missing_user_id", errMissingUserID)
	}

	notes := []Note{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&notes).Error; err != nil {
		s.logError(opListNotes, "query_failed", err, zap.Uint("user_id", userID))
		return nil, newServiceError(opListNotes, "query_failed", err)
	}

	return notes, nil
}

// CreateNote stores a new note owned by userID.
func (s *Service) CreateNote(ctx context.Context, userID uint, title, content string) (Note, error) {
	if userID == 0 {
		s.logError(opCreateNote, "missing_user_id", errMissingUserID)
		return Note{}, newServiceError(opCreateNote, "missing_user_id", errMissingUserID)
	}

	note := Note{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		s.logError(opCreateNote, "insert_failed", err, zap.Uint("user_id", userID))
		return Note{}, newServiceError(opCreateNote, "insert_failed", err)
	}
	return note, nil
}

// UpdateNote applies patch to a note owned by userID and stamps updated_at.
func (s *Service) UpdateNote(ctx context.Context, userID, noteID uint, patch Patch) (Note, error) {
	var updated Note
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err := s.ownedNote(tx, opUpdateNote, userID, noteID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			note.Title = *patch.Title
		}
		if patch.Content != nil {
			note.Content = *patch.Content
		}
		updatedAt := s.clock().UTC()
		note.UpdatedAt = &updatedAt

		if err := tx.Save(&note).Error; err != nil {
			s.logError(opUpdateNote, "save_failed", err,
				zap.Uint("user_id", userID),
				zap.Uint("note_id", noteID))
			return newServiceError(opUpdateNote, "save_failed", err)
		}
		updated = note
		return nil
	})
	if txErr != nil {
		return Note{}, txErr
	}
	return updated, nil
}

// DeleteNote removes a note owned by userID.
func (s *Service) DeleteNote(ctx context.Context, userID, noteID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err := s.ownedNote(tx, opDeleteNote, userID, noteID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&note).Error; err != nil {
			s.logError(opDeleteNote, "delete_failed", err,
				zap.Uint("user_id", userID),
				zap.Uint("note_id", noteID))
			return newServiceError(opDeleteNote, "delete_failed", err)
		}
		return nil
	})
}

// ownedNote loads noteID, distinguishing a missing note from one owned by someone else.
func (s *Service) ownedNote(tx *gorm.DB, operation string, userID, noteID uint) (Note, error) {
	var note Note
	err := tx.Where("id = ?", noteID).Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Note{}, newServiceError(operation, reasonMissing, ErrNoteNotFound)
	}
	if err != nil {
		s.logError(operation, "note_select_failed", err,
			zap.Uint("user_id", userID),
			zap.Uint("note_id", noteID))
		return Note{}, newServiceError(operation, "note_select_failed", err)
	}
	if note.UserID != userID {
		s.logger.Warn("note ownership mismatch",
			zap.String("operation", operation),
			zap.Uint("user_id", userID),
			zap.Uint("note_id", noteID))
		return Note{}, newServiceError(operation, reasonOwner, ErrForbidden)
	}
	return note, nil
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("notes service error", attrs...)
}
