package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
)

var errStubTransport = errors.New("dial tcp: connection refused")

type recordingStore struct {
	*session.MemoryStore

	mu         sync.Mutex
	setCalls   []string
	clearCalls int
	setErr     error
}

func newRecordingStore(token string) *recordingStore {
	store := &recordingStore{MemoryStore: session.NewMemoryStore()}
	if token != "" {
		_ = store.MemoryStore.SetToken(token)
	}
	return store
}

func (s *recordingStore) SetToken(token string) error {
	s.mu.Lock()
	s.setCalls = append(s.setCalls, token)
	err := s.setErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.SetToken(token)
}

func (s *recordingStore) ClearToken() error {
	s.mu.Lock()
	s.clearCalls++
	s.mu.Unlock()
	return s.MemoryStore.ClearToken()
}

func (s *recordingStore) SetCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.setCalls...)
}

func (s *recordingStore) ClearCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearCalls
}

type stubAuthAPI struct {
	mu          sync.Mutex
	signupCalls int
	loginCalls  int
	signup      func(ctx context.Context, email, password string) (api.User, error)
	login       func(ctx context.Context, email, password string) (api.AuthToken, error)
}

func (s *stubAuthAPI) Signup(ctx context.Context, email, password string) (api.User, error) {
	s.mu.Lock()
	s.signupCalls++
	s.mu.Unlock()
	if s.signup == nil {
		return api.User{ID: 1, Email: email}, nil
	}
	return s.signup(ctx, email, password)
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (api.AuthToken, error) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()
	if s.login == nil {
		return api.AuthToken{AccessToken: "token", TokenType: "bearer"}, nil
	}
	return s.login(ctx, email, password)
}

func (s *stubAuthAPI) Calls() (signup, login int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signupCalls, s.loginCalls
}

type stubNotesAPI struct {
	mu      sync.Mutex
	calls   []string
	updates []api.NoteUpdate
	list    func(ctx context.Context) ([]api.Note, error)
	create  func(ctx context.Context, title, content string) (api.Note, error)
	update  func(ctx context.Context, id int64, update api.NoteUpdate) (api.Note, error)
	remove  func(ctx context.Context, id int64) error
}

func (s *stubNotesAPI) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubNotesAPI) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubNotesAPI) ListNotes(ctx context.Context) ([]api.Note, error) {
	s.record("list")
	if s.list == nil {
		return []api.Note{}, nil
	}
	return s.list(ctx)
}

func (s *stubNotesAPI) CreateNote(ctx context.Context, title, content string) (api.Note, error) {
	s.record("create")
	if s.create == nil {
		return api.Note{ID: 99, Title: title, Content: content}, nil
	}
	return s.create(ctx, title, content)
}

func (s *stubNotesAPI) UpdateNote(ctx context.Context, id int64, update api.NoteUpdate) (api.Note, error) {
	s.record("update")
	s.mu.Lock()
	s.updates = append(s.updates, update)
	s.mu.Unlock()
	if s.update == nil {
		return api.Note{ID: id, Title: *update.Title, Content: *update.Content}, nil
	}
	return s.update(ctx, id, update)
}

func (s *stubNotesAPI) DeleteNote(ctx context.Context, id int64) error {
	s.record("delete")
	if s.remove == nil {
		return nil
	}
	return s.remove(ctx, id)
}

func sampleNotes() []api.Note {
	return []api.Note{
		{ID: 1, Title: "Test Note 1", Content: "Content 1", UserID: 1},
		{ID: 2, Title: "Test Note 2", Content: "Content 2", UserID: 1},
	}
}

func listing(notes []api.Note) func(context.Context) ([]api.Note, error) {
	return func(context.Context) ([]api.Note, error) {
		return notes, nil
	}
}

func confirmAlways(answer bool, asked *[]string) Confirmer {
	return ConfirmerFunc(func(message string) bool {
		if asked != nil {
			*asked = append(*asked, message)
		}
		return answer
	})
}
