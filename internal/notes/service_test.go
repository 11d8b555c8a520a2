package notes

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type stepClock struct {
	current time.Time
}

func (c *stepClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func newTestService(t *testing.T, logger *zap.Logger) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notes.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Note{}); err != nil {
		t.Fatalf("failed to migrate note schema: %v", err)
	}
	clock := &stepClock{current: time.Unix(1700000000, 0).UTC()}
	service, err := NewService(ServiceConfig{Database: db, Clock: clock.Now, Logger: logger})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service
}

func stringPointer(value string) *string {
	return &value
}

func TestNewServiceRequiresDatabase(t *testing.T) {
	_, err := NewService(ServiceConfig{})
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serviceErr.Code() != "notes.service.new.missing_database" {
		t.Fatalf("unexpected code %q", serviceErr.Code())
	}
}

func TestCreateAndListPreserveCreationOrder(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	first, err := service.CreateNote(ctx, 1, "First", "one")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := service.CreateNote(ctx, 2, "Other user", "x"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := service.CreateNote(ctx, 1, "Second", "two")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d and %d", first.ID, second.ID)
	}
	if first.UpdatedAt != nil {
		t.Fatalf("expected new note without updated_at")
	}

	listed, err := service.ListNotes(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 notes for user 1, got %d", len(listed))
	}
	if listed[0].Title != "First" || listed[1].Title != "Second" {
		t.Fatalf("unexpected order: %q, %q", listed[0].Title, listed[1].Title)
	}
}

func TestListNotesEmptyIsNotNil(t *testing.T) {
	service := newTestService(t, nil)

	listed, err := service.ListNotes(context.Background(), 9)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listed == nil || len(listed) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", listed)
	}
}

func TestListNotesRequiresUser(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.ListNotes(context.Background(), 0)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code() != "notes.list_notes.missing_user_id" {
		t.Fatalf("expected missing_user_id error, got %v", err)
	}
}

func TestUpdateNoteAppliesPartialPatch(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()
	created, err := service.CreateNote(ctx, 1, "Title", "Content")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := service.UpdateNote(ctx, 1, created.ID, Patch{Title: stringPointer("Renamed")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Content != "Content" {
		t.Fatalf("unexpected note after title patch: %#v", updated)
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.After(created.CreatedAt) {
		t.Fatalf("expected updated_at after created_at, got %v", updated.UpdatedAt)
	}

	updated, err = service.UpdateNote(ctx, 1, created.ID, Patch{Content: stringPointer("Rewritten")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Content != "Rewritten" {
		t.Fatalf("unexpected note after content patch: %#v", updated)
	}

	listed, err := service.ListNotes(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listed[0].Content != "Rewritten" || listed[0].UpdatedAt == nil {
		t.Fatalf("expected persisted update, got %#v", listed[0])
	}
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	service := newTestService(t, zap.New(core))
	ctx := context.Background()
	created, err := service.CreateNote(ctx, 1, "Mine", "body")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	testCases := []struct {
		name         string
		call         func() error
		expectedErr  error
		expectedCode string
	}{
		{
			name: "update foreign",
			call: func() error {
				_, err := service.UpdateNote(ctx, 2, created.ID, Patch{Title: stringPointer("stolen")})
				return err
			},
			expectedErr:  ErrForbidden,
			expectedCode: "notes.update_note.forbidden",
		},
		{
			name:         "delete foreign",
			call:         func() error { return service.DeleteNote(ctx, 2, created.ID) },
			expectedErr:  ErrForbidden,
			expectedCode: "notes.delete_note.forbidden",
		},
		{
			name: "update missing",
			call: func() error {
				_, err := service.UpdateNote(ctx, 1, created.ID+10, Patch{})
				return err
			},
			expectedErr:  ErrNoteNotFound,
			expectedCode: "notes.update_note.not_found",
		},
		{
			name:         "delete missing",
			call:         func() error { return service.DeleteNote(ctx, 1, created.ID+10) },
			expectedErr:  ErrNoteNotFound,
			expectedCode: "notes.delete_note.not_found",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.call()
			if !errors.Is(err, testCase.expectedErr) {
				t.Fatalf("expected %v, got %v", testCase.expectedErr, err)
			}
			var serviceErr *ServiceError
			if !errors.As(err, &serviceErr) || serviceErr.Code() != testCase.expectedCode {
				t.Fatalf("expected code %s, got %v", testCase.expectedCode, err)
			}
		})
	}

	if logs.FilterMessage("note ownership mismatch").Len() != 2 {
		t.Fatalf("expected two ownership warnings, got %d", logs.FilterMessage("note ownership mismatch").Len())
	}

	listed, err := service.ListNotes(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Title != "Mine" {
		t.Fatalf("expected note untouched, got %#v", listed)
	}
}

func TestDeleteNoteRemovesRow(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()
	created, err := service.CreateNote(ctx, 1, "Doomed", "body")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := service.DeleteNote(ctx, 1, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := service.DeleteNote(ctx, 1, created.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
	listed, err := service.ListNotes(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no notes, got %d", len(listed))
	}
}
