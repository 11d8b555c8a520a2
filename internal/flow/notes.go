package flow

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"go.uber.org/zap"
)

// NotesState is a node of the notes state machine.
type NotesState string

const (
	NotesCheckingAuth NotesState = "checking_auth"
	NotesRedirecting  NotesState = "redirecting"
	NotesLoading      NotesState = "loading"
	NotesLoaded       NotesState = "loaded"
	NotesError        NotesState = "error"
)

const (
	createLabelIdle = "Add Note"
	createLabelBusy = "Adding Note..."
)

// NotesAPI is the slice of the API client the notes flow needs.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]api.Note, error)
	CreateNote(ctx context.Context, title, content string) (api.Note, error)
	UpdateNote(ctx context.Context, id int64, update api.NoteUpdate) (api.Note, error)
	DeleteNote(ctx context.Context, id int64) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(message string) bool

// Confirm calls fn(message).
func (fn ConfirmerFunc) Confirm(message string) bool {
	return fn(message)
}

// EditDraft is the staged copy of a note under edit.
type EditDraft struct {
	ID      int64
	Title   string
	Content string
}

// NotesView is a snapshot of the notes page.
type NotesView struct {
	State          NotesState
	Notes          []api.Note
	Error          string
	EmptyMessage   string
	NewTitle       string
	NewContent     string
	Creating       bool
	CreateLabel    string
	CreateDisabled bool
	Editing        *EditDraft
	Saving         bool
	Pending        []int64
}

// NotesConfig wires a NotesFlow.
type NotesConfig struct {
	API       NotesAPI
	Session   session.Store
	Navigator Navigator
	Confirmer Confirmer
	Logger    *zap.Logger
}

// NotesFlow drives the notes page. Action methods return errors only for misuse;
// API failures are reported through the view.
type NotesFlow struct {
	api       NotesAPI
	session   session.Store
	navigator Navigator
	confirmer Confirmer
	logger    *zap.Logger

	mu         sync.Mutex
	active     bool
	generation uint64
	view       NotesView
	pending   map[int64]struct{}
	observers []func(NotesView)
}

// NewNotesFlow validates cfg and returns an unmounted flow.
func NewNotesFlow(cfg NotesConfig) (*NotesFlow, error) {
	if cfg.API == nil {
		return nil, errors.New("flow: notes api required")
	}
	if cfg.Session == nil {
		return nil, errors.New("flow: session store required")
	}
	if cfg.Navigator == nil {
		return nil, errors.New("flow: navigator required")
	}
	if cfg.Confirmer == nil {
		return nil, errors.New("flow: confirmer required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotesFlow{
		api:       cfg.API,
		session:   cfg.Session,
		navigator: cfg.Navigator,
		confirmer: cfg.Confirmer,
		logger:    logger,
		pending:   make(map[int64]struct{}),
		view:      freshNotesView(),
	}, nil
}

func freshNotesView() NotesView {
	return NotesView{
		State:       NotesCheckingAuth,
		CreateLabel: createLabelIdle,
	}
}

// View returns a copy of the current snapshot.
func (f *NotesFlow) View() NotesView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// OnChange registers an observer invoked after every view change.
func (f *NotesFlow) OnChange(observer func(NotesView)) {
	if observer == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, observer)
}

// Mount starts a fresh page, checks authentication and loads the list.
// Unauthenticated users are redirected to login without any network call.
func (f *NotesFlow) Mount(ctx context.Context) {
	f.mu.Lock()
	f.generation++
	generation := f.generation
	f.active = true
	f.view = freshNotesView()
	f.pending = make(map[int64]struct{})
	authenticated := f.session.IsAuthenticated()
	f.notifyLocked()

	f.mu.Lock()
	if !f.currentLocked(generation) {
		f.mu.Unlock()
		return
	}
	if !authenticated {
		f.logger.Debug("notes view requires authentication")
		f.redirectLocked()
		return
	}
	f.view.State = NotesLoading
	f.notifyLocked()

	notes, err := f.api.ListNotes(ctx)

	f.mu.Lock()
	if !f.currentLocked(generation) {
		f.mu.Unlock()
		return
	}
	if err != nil {
		if api.IsUnauthorized(err) {
			f.expireLocked()
			return
		}
		f.logger.Warn("list notes failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
		f.view.State = NotesError
		f.view.Notes = nil
		f.view.Error = errorMessage(err, MessageLoadFailed)
		f.notifyLocked()
		return
	}
	f.view.State = NotesLoaded
	f.view.Notes = slices.Clone(notes)
	f.notifyLocked()
}

// Unmount deactivates the flow. Calls still in flight resolve without effect,
// including after a later Mount.
func (f *NotesFlow) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
}

// SetNewNote updates the create form inputs.
func (f *NotesFlow) SetNewNote(title, content string) error {
	f.mu.Lock()
	if f.view.State != NotesLoaded {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	if f.view.Creating {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.view.NewTitle = title
	f.view.NewContent = content
	f.notifyLocked()
	return nil
}

// Create submits the create form. Blank inputs are rejected without a call.
func (f *NotesFlow) Create(ctx context.Context) error {
	f.mu.Lock()
	if f.view.State != NotesLoaded {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	if f.view.Creating {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	title, content := f.view.NewTitle, f.view.NewContent
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		f.view.Error = MessageNoteFieldsRequired
		f.notifyLocked()
		return nil
	}
	generation := f.generation
	f.view.Creating = true
	f.view.CreateLabel = createLabelBusy
	f.view.CreateDisabled = true
	f.view.Error = ""
	f.notifyLocked()

	note, err := f.api.CreateNote(ctx, title, content)

	f.mu.Lock()
	if !f.currentLocked(generation) {
		f.mu.Unlock()
		return nil
	}
	f.view.Creating = false
	f.view.CreateLabel = createLabelIdle
	f.view.CreateDisabled = false
	if err != nil {
		if api.IsUnauthorized(err) {
			f.expireLocked()
			return nil
		}
		f.logger.Warn("create note failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
		f.view.Error = errorMessage(err, MessageCreateFailed)
		f.notifyLocked()
		return nil
	}
	f.view.Notes = Apply(f.view.Notes, Appended(note))
	f.view.NewTitle = ""
	f.view.NewContent = ""
	f.notifyLocked()
	return nil
}

// BeginEdit opens the editor on a staged copy of the note.
func (f *NotesFlow) BeginEdit(id int64) error {
	f.mu.Lock()
	if f.view.State != NotesLoaded {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	if f.view.Saving {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	index := slices.IndexFunc(f.view.Notes, func(note api.Note) bool { return note.ID == id })
	if index < 0 {
		f.mu.Unlock()
		return ErrNoteNotFound
	}
	note := f.view.Notes[index]
	f.view.Editing = &EditDraft{ID: note.ID, Title: note.Title, Content: note.Content}
	f.notifyLocked()
	return nil
}

// StageEdit changes the staged values. The list is untouched until SaveEdit succeeds.
func (f *NotesFlow) StageEdit(title, content string) error {
	f.mu.Lock()
	if f.view.Editing == nil {
		f.mu.Unlock()
		return ErrNotEditing
	}
	if f.view.Saving {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.view.Editing = &EditDraft{ID: f.view.Editing.ID, Title: title, Content: content}
	f.notifyLocked()
	return nil
}

// CancelEdit discards the staged copy.
func (f *NotesFlow) CancelEdit() {
	f.mu.Lock()
	if f.view.Editing == nil {
		f.mu.Unlock()
		return
	}
	f.view.Editing = nil
	f.notifyLocked()
}

// SaveEdit sends the staged title and content. On failure the editor stays open.
func (f *NotesFlow) SaveEdit(ctx context.Context) error {
	f.mu.Lock()
	if f.view.State != NotesLoaded {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	if f.view.Editing == nil {
		f.mu.Unlock()
		return ErrNotEditing
	}
	draft := *f.view.Editing
	if _, busy := f.pending[draft.ID]; busy {
		f.mu.Unlock()
		return ErrNoteBusy
	}
	generation := f.generation
	f.pending[draft.ID] = struct{}{}
	f.view.Saving = true
	f.view.Error = ""
	f.notifyLocked()

	updated, err := f.api.UpdateNote(ctx, draft.ID, api.NoteUpdate{
		Title:   api.String(draft.Title),
		Content: api.String(draft.Content),
	})

	f.mu.Lock()
	if !f.currentLocked(generation) {
		f.mu.Unlock()
		return nil
	}
	delete(f.pending, draft.ID)
	f.view.Saving = false
	if err != nil {
		if api.IsUnauthorized(err) {
			f.expireLocked()
			return nil
		}
		f.logger.Warn("update note failed", zap.Int64("note_id", draft.ID), zap.Int("status", api.StatusOf(err)), zap.Error(err))
		f.view.Error = errorMessage(err, MessageUpdateFailed)
		f.notifyLocked()
		return nil
	}
	f.view.Notes = Apply(f.view.Notes, Replaced(updated))
	if f.view.Editing != nil && f.view.Editing.ID == draft.ID {
		f.view.Editing = nil
	}
	f.notifyLocked()
	return nil
}

// Delete asks the Confirmer and, once approved, deletes the note. A declined
// confirmation issues no call.
func (f *NotesFlow) Delete(ctx context.Context, id int64) error {
	if err := f.checkDeletable(id); err != nil {
		return err
	}
	if !f.confirmer.Confirm(MessageDeleteConfirm) {
		f.logger.Debug("note deletion declined", zap.Int64("note_id", id))
		return nil
	}

	f.mu.Lock()
	if err := f.deletableLocked(id); err != nil {
		f.mu.Unlock()
		return err
	}
	generation := f.generation
	f.pending[id] = struct{}{}
	f.view.Error = ""
	f.notifyLocked()

	err := f.api.DeleteNote(ctx, id)

	f.mu.Lock()
	if !f.currentLocked(generation) {
		f.mu.Unlock()
		return nil
	}
	delete(f.pending, id)
	if err != nil {
		if api.IsUnauthorized(err) {
			f.expireLocked()
			return nil
		}
		f.logger.Warn("delete note failed", zap.Int64("note_id", id), zap.Int("status", api.StatusOf(err)), zap.Error(err))
		f.view.Error = errorMessage(err, MessageDeleteFailed)
		f.notifyLocked()
		return nil
	}
	f.view.Notes = Apply(f.view.Notes, Removed(id))
	if f.view.Editing != nil && f.view.Editing.ID == id {
		f.view.Editing = nil
	}
	f.notifyLocked()
	return nil
}

// Logout clears the Credential and returns to login without a network call.
func (f *NotesFlow) Logout() error {
	f.mu.Lock()
	if f.view.State != NotesLoaded && f.view.State != NotesError {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	if err := f.session.ClearToken(); err != nil {
		f.logger.Warn("session token not cleared", zap.Error(err))
	}
	f.redirectLocked()
	return nil
}

// currentLocked reports whether results of a call started under generation still apply.
func (f *NotesFlow) currentLocked(generation uint64) bool {
	return f.active && f.generation == generation
}

func (f *NotesFlow) checkDeletable(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletableLocked(id)
}

func (f *NotesFlow) deletableLocked(id int64) error {
	if f.view.State != NotesLoaded {
		return ErrNotLoaded
	}
	if !slices.ContainsFunc(f.view.Notes, func(note api.Note) bool { return note.ID == id }) {
		return ErrNoteNotFound
	}
	if _, busy := f.pending[id]; busy {
		return ErrNoteBusy
	}
	return nil
}

// expireLocked treats a 401 as session expiry. It must be called with mu held and releases it.
func (f *NotesFlow) expireLocked() {
	f.logger.Info("session expired; returning to login")
	if err := f.session.ClearToken(); err != nil {
		f.logger.Warn("session token not cleared", zap.Error(err))
	}
	f.redirectLocked()
}

// redirectLocked deactivates the flow and navigates to login. It must be called with mu held and releases it.
func (f *NotesFlow) redirectLocked() {
	f.active = false
	f.view.State = NotesRedirecting
	f.view.Error = ""
	f.view.Editing = nil
	f.notifyLocked()
	f.navigator.Navigate(RouteLogin)
}

// notifyLocked releases mu and then notifies observers with the new snapshot.
func (f *NotesFlow) notifyLocked() {
	snapshot := f.snapshotLocked()
	observers := slices.Clone(f.observers)
	f.mu.Unlock()

	notify(observers, snapshot)
}

func (f *NotesFlow) snapshotLocked() NotesView {
	view := f.view
	view.Notes = slices.Clone(f.view.Notes)
	if view.Notes == nil {
		view.Notes = []api.Note{}
	}
	if f.view.Editing != nil {
		draft := *f.view.Editing
		view.Editing = &draft
	}
	view.Pending = make([]int64, 0, len(f.pending))
	for id := range f.pending {
		view.Pending = append(view.Pending, id)
	}
	slices.Sort(view.Pending)
	if view.State == NotesLoaded && len(view.Notes) == 0 {
		view.EmptyMessage = MessageEmptyNotes
	} else {
		view.EmptyMessage = ""
	}
	return view
}
