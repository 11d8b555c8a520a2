package integration_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/auth"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/database"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/flow"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/notes"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/server"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	signingSecret = "integration-secret"
	journeyEmail  = "journey@example.com"
	journeyPass   = "password123"
)

type environment struct {
	client *api.Client
	store  *session.MemoryStore
}

func newEnvironment(testContext *testing.T) environment {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite("file:journey_"+testContext.Name()+"?mode=memory&cache=shared", zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	usersService, err := users.NewService(users.ServiceConfig{Database: db, HashCost: bcrypt.MinCost})
	if err != nil {
		testContext.Fatalf("failed to build users service: %v", err)
	}
	notesService, err := notes.NewService(notes.ServiceConfig{Database: db})
	if err != nil {
		testContext.Fatalf("failed to build notes service: %v", err)
	}
	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(signingSecret),
		Issuer:        "pocketnotes-api",
		Audience:      "pocketnotes",
		TokenTTL:      30 * time.Minute,
	})
	if err != nil {
		testContext.Fatalf("failed to build token issuer: %v", err)
	}
	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: issuer,
		UsersService: usersService,
		NotesService: notesService,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	backend := httptest.NewServer(handler)
	testContext.Cleanup(backend.Close)

	store := session.NewMemoryStore()
	client, err := api.NewClient(api.Config{BaseURL: backend.URL, Session: store})
	if err != nil {
		testContext.Fatalf("failed to build api client: %v", err)
	}
	return environment{client: client, store: store}
}

func (env environment) submit(testContext *testing.T, mode flow.AuthMode, email, password string) (flow.AuthView, *flow.RouteRecorder) {
	testContext.Helper()
	routes := &flow.RouteRecorder{}
	authFlow, err := flow.NewAuthFlow(flow.AuthConfig{Mode: mode, API: env.client, Session: env.store, Navigator: routes})
	if err != nil {
		testContext.Fatalf("failed to build auth flow: %v", err)
	}
	if err := authFlow.Submit(context.Background(), email, password); err != nil {
		testContext.Fatalf("submit failed: %v", err)
	}
	return authFlow.View(), routes
}

func (env environment) mountNotes(testContext *testing.T, approve bool) (*flow.NotesFlow, *flow.RouteRecorder) {
	testContext.Helper()
	routes := &flow.RouteRecorder{}
	notesFlow, err := flow.NewNotesFlow(flow.NotesConfig{
		API:       env.client,
		Session:   env.store,
		Navigator: routes,
		Confirmer: flow.ConfirmerFunc(func(string) bool { return approve }),
	})
	if err != nil {
		testContext.Fatalf("failed to build notes flow: %v", err)
	}
	notesFlow.Mount(context.Background())
	return notesFlow, routes
}

func TestSignupLoginNotesLogoutJourney(testContext *testing.T) {
	env := newEnvironment(testContext)
	ctx := context.Background()

	view, routes := env.submit(testContext, flow.ModeSignup, journeyEmail, journeyPass)
	if view.State != flow.AuthSuccess || view.Notice != flow.MessageSignupComplete {
		testContext.Fatalf("unexpected signup view: %+v", view)
	}
	if last, _ := routes.Last(); last != flow.RouteLogin {
		testContext.Fatalf("expected navigation to login after signup, got %q", last)
	}

	view, _ = env.submit(testContext, flow.ModeSignup, journeyEmail, journeyPass)
	if view.State != flow.AuthFailed || view.Error != "Email already registered" {
		testContext.Fatalf("expected duplicate signup rejection, got %+v", view)
	}

	view, _ = env.submit(testContext, flow.ModeLogin, journeyEmail, "wrong")
	if view.State != flow.AuthFailed || view.Error != "Incorrect email or password" {
		testContext.Fatalf("expected login rejection, got %+v", view)
	}
	if env.store.IsAuthenticated() {
		testContext.Fatalf("failed login must not store a credential")
	}

	view, routes = env.submit(testContext, flow.ModeLogin, journeyEmail, journeyPass)
	if view.State != flow.AuthRedirecting || !env.store.IsAuthenticated() {
		testContext.Fatalf("expected login to store the credential, got %+v", view)
	}
	if last, _ := routes.Last(); last != flow.RouteNotes {
		testContext.Fatalf("expected navigation to notes, got %q", last)
	}

	notesFlow, routes := env.mountNotes(testContext, true)
	notesView := notesFlow.View()
	if notesView.State != flow.NotesLoaded || notesView.EmptyMessage != flow.MessageEmptyNotes {
		testContext.Fatalf("expected empty loaded list, got %+v", notesView)
	}

	if err := notesFlow.SetNewNote("New Note", "New Content"); err != nil {
		testContext.Fatalf("set new note failed: %v", err)
	}
	if err := notesFlow.Create(ctx); err != nil {
		testContext.Fatalf("create failed: %v", err)
	}
	notesView = notesFlow.View()
	if len(notesView.Notes) != 1 || notesView.Notes[0].Title != "New Note" || notesView.Notes[0].ID == 0 {
		testContext.Fatalf("expected one created note, got %+v", notesView.Notes)
	}
	created := notesView.Notes[0]

	if err := notesFlow.BeginEdit(created.ID); err != nil {
		testContext.Fatalf("begin edit failed: %v", err)
	}
	if err := notesFlow.StageEdit("Edited", "Edited content"); err != nil {
		testContext.Fatalf("stage edit failed: %v", err)
	}
	if err := notesFlow.SaveEdit(ctx); err != nil {
		testContext.Fatalf("save edit failed: %v", err)
	}
	notesView = notesFlow.View()
	if notesView.Editing != nil || notesView.Notes[0].Title != "Edited" || notesView.Notes[0].UpdatedAt == nil {
		testContext.Fatalf("expected saved edit, got %+v", notesView)
	}

	if err := notesFlow.Delete(ctx, created.ID); err != nil {
		testContext.Fatalf("delete failed: %v", err)
	}
	if remaining := notesFlow.View().Notes; len(remaining) != 0 {
		testContext.Fatalf("expected empty list after delete, got %+v", remaining)
	}

	reloaded, _ := env.mountNotes(testContext, false)
	if len(reloaded.View().Notes) != 0 {
		testContext.Fatalf("expected server to have no notes, got %+v", reloaded.View().Notes)
	}
	reloaded.Unmount()

	if err := notesFlow.Logout(); err != nil {
		testContext.Fatalf("logout failed: %v", err)
	}
	if env.store.IsAuthenticated() {
		testContext.Fatalf("expected credential cleared on logout")
	}
	if last, _ := routes.Last(); last != flow.RouteLogin {
		testContext.Fatalf("expected navigation to login after logout, got %q", last)
	}
}

func TestProtectedRouteRedirectsToLogin(testContext *testing.T) {
	env := newEnvironment(testContext)

	notesFlow, routes := env.mountNotes(testContext, false)
	if notesFlow.View().State != flow.NotesRedirecting {
		testContext.Fatalf("expected redirect state, got %s", notesFlow.View().State)
	}
	if got := routes.Routes(); len(got) != 1 || got[0] != flow.RouteLogin {
		testContext.Fatalf("expected single redirect to login, got %v", got)
	}
}

func TestRejectedCredentialExpiresSession(testContext *testing.T) {
	env := newEnvironment(testContext)
	if err := env.store.SetToken("forged.token.value"); err != nil {
		testContext.Fatalf("failed to seed token: %v", err)
	}

	notesFlow, routes := env.mountNotes(testContext, false)
	view := notesFlow.View()
	if view.State != flow.NotesRedirecting || view.Error != "" {
		testContext.Fatalf("expected silent redirect, got %+v", view)
	}
	if env.store.IsAuthenticated() {
		testContext.Fatalf("expected rejected credential to be cleared")
	}
	if last, _ := routes.Last(); last != flow.RouteLogin {
		testContext.Fatalf("expected navigation to login, got %q", last)
	}
}

func TestNotesAreScopedToTheirOwner(testContext *testing.T) {
	env := newEnvironment(testContext)
	ctx := context.Background()

	for _, email := range []string{"first@example.com", "second@example.com"} {
		if _, err := env.client.Signup(ctx, email, journeyPass); err != nil {
			testContext.Fatalf("signup %s failed: %v", email, err)
		}
	}

	firstToken, err := env.client.Login(ctx, "first@example.com", journeyPass)
	if err != nil {
		testContext.Fatalf("login failed: %v", err)
	}
	if err := env.store.SetToken(firstToken.AccessToken); err != nil {
		testContext.Fatalf("set token failed: %v", err)
	}
	note, err := env.client.CreateNote(ctx, "Private", "first only")
	if err != nil {
		testContext.Fatalf("create failed: %v", err)
	}

	secondToken, err := env.client.Login(ctx, "second@example.com", journeyPass)
	if err != nil {
		testContext.Fatalf("login failed: %v", err)
	}
	if err := env.store.SetToken(secondToken.AccessToken); err != nil {
		testContext.Fatalf("set token failed: %v", err)
	}

	listed, err := env.client.ListNotes(ctx)
	if err != nil {
		testContext.Fatalf("list failed: %v", err)
	}
	if len(listed) != 0 {
		testContext.Fatalf("expected second user to see no notes, got %+v", listed)
	}
	_, err = env.client.UpdateNote(ctx, note.ID, api.NoteUpdate{Title: api.String("stolen")})
	if api.StatusOf(err) != http.StatusForbidden {
		testContext.Fatalf("expected 403 for foreign update, got %v", err)
	}
	err = env.client.DeleteNote(ctx, note.ID)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Not authorized to delete this note" {
		testContext.Fatalf("expected forbidden delete message, got %v", err)
	}
}
