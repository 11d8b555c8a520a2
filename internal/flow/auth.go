package flow

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/api"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthMode selects which form the auth flow drives.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeSignup
)

func (m AuthMode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

func (m AuthMode) labels() (idle, busy string) {
	if m == ModeSignup {
		return "Sign Up", "Signing up..."
	}
	return "Log In", "Logging in..."
}

// AuthState is a node of the auth state machine.
type AuthState string

const (
	AuthIdle        AuthState = "idle"
	AuthSubmitting  AuthState = "submitting"
	AuthSuccess     AuthState = "success"
	AuthFailed      AuthState = "failed"
	AuthRedirecting AuthState = "redirecting"
)

// AuthView is a snapshot of the auth form.
type AuthView struct {
	Mode           AuthMode
	State          AuthState
	Email          string
	Error          string
	Notice         string
	SubmitLabel    string
	SubmitDisabled bool
}

// AuthAPI is the slice of the API client the auth flow needs.
type AuthAPI interface {
	Signup(ctx context.Context, email, password string) (api.User, error)
	Login(ctx context.Context, email, password string) (api.AuthToken, error)
}

// AuthConfig wires an AuthFlow.
type AuthConfig struct {
	Mode      AuthMode
	API       AuthAPI
	Session   session.Store
	Navigator Navigator
	Logger    *zap.Logger
}

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// AuthFlow drives the login or signup form.
type AuthFlow struct {
	mode      AuthMode
	api       AuthAPI
	session   session.Store
	navigator Navigator
	logger    *zap.Logger
	validate  *validator.Validate

	mu        sync.Mutex
	view      AuthView
	observers []func(AuthView)
}

// NewAuthFlow validates cfg and returns an idle flow.
func NewAuthFlow(cfg AuthConfig) (*AuthFlow, error) {
	if cfg.API == nil {
		return nil, errors.New("flow: auth api required")
	}
	if cfg.Session == nil {
		return nil, errors.New("flow: session store required")
	}
	if cfg.Navigator == nil {
		return nil, errors.New("flow: navigator required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idleLabel, _ := cfg.Mode.labels()
	return &AuthFlow{
		mode:      cfg.Mode,
		api:       cfg.API,
		session:   cfg.Session,
		navigator: cfg.Navigator,
		logger:    logger,
		validate:  validator.New(),
		view: AuthView{
			Mode:        cfg.Mode,
			State:       AuthIdle,
			SubmitLabel: idleLabel,
		},
	}, nil
}

// View returns the current snapshot.
func (f *AuthFlow) View() AuthView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

// OnChange registers an observer invoked after every view change.
func (f *AuthFlow) OnChange(observer func(AuthView)) {
	if observer == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, observer)
}

// Submit validates the form and performs signup or login. API failures become view
// state; only a concurrent submit returns an error.
func (f *AuthFlow) Submit(ctx context.Context, email, password string) error {
	idleLabel, _ := f.mode.labels()

	input := credentials{Email: strings.TrimSpace(email), Password: strings.TrimSpace(password)}
	valid := f.validate.Struct(input) == nil
	if started, err := f.begin(email, valid); !started {
		return err
	}

	fail := func(message string) {
		f.update(func(view *AuthView) {
			view.State = AuthFailed
			view.Error = message
			view.SubmitLabel = idleLabel
			view.SubmitDisabled = false
		})
	}

	if f.mode == ModeSignup {
		if _, err := f.api.Signup(ctx, input.Email, password); err != nil {
			f.logger.Info("signup failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
			fail(errorMessage(err, api.DefaultErrorMessage))
			return nil
		}
		f.update(func(view *AuthView) {
			view.State = AuthSuccess
			view.Notice = MessageSignupComplete
			view.SubmitLabel = idleLabel
			view.SubmitDisabled = false
		})
		f.navigator.Navigate(RouteLogin)
		return nil
	}

	token, err := f.api.Login(ctx, input.Email, password)
	if err != nil {
		f.logger.Info("login failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
		fail(errorMessage(err, api.DefaultErrorMessage))
		return nil
	}
	if err := f.session.SetToken(token.AccessToken); err != nil {
		f.logger.Warn("session token not stored", zap.Error(err))
		fail(MessageSessionSaveFailed)
		return nil
	}
	f.update(func(view *AuthView) {
		view.State = AuthRedirecting
		view.SubmitLabel = idleLabel
		view.SubmitDisabled = false
	})
	f.navigator.Navigate(RouteNotes)
	return nil
}

// begin moves the flow to submitting, or to failed when the input is invalid. It reports
// whether a call should be made; a submit already in flight yields ErrSubmitInProgress.
func (f *AuthFlow) begin(email string, valid bool) (bool, error) {
	idleLabel, busyLabel := f.mode.labels()

	f.mu.Lock()
	if f.view.State == AuthSubmitting {
		f.mu.Unlock()
		return false, ErrSubmitInProgress
	}
	f.view.Email = email
	f.view.Notice = ""
	if valid {
		f.view.State = AuthSubmitting
		f.view.Error = ""
		f.view.SubmitLabel = busyLabel
		f.view.SubmitDisabled = true
	} else {
		f.view.State = AuthFailed
		f.view.Error = MessageCredentialsRequired
		f.view.SubmitLabel = idleLabel
		f.view.SubmitDisabled = false
	}
	snapshot, observers := f.view, slices.Clone(f.observers)
	f.mu.Unlock()

	notify(observers, snapshot)
	return valid, nil
}

func (f *AuthFlow) update(mutate func(view *AuthView)) {
	f.mu.Lock()
	mutate(&f.view)
	snapshot, observers := f.view, slices.Clone(f.observers)
	f.mu.Unlock()

	notify(observers, snapshot)
}
