package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/notes"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const userIDContextKey = "pocketnotes_user_id"

const (
	detailCredentials        = "Could not validate credentials"
	detailUserNotFound       = "User not found"
	detailEmailTaken         = "Email already registered"
	detailIncorrectLogin     = "Incorrect email or password"
	detailNoteNotFound       = "Note not found"
	detailUpdateForbidden    = "Not authorized to update this note"
	detailDeleteForbidden    = "Not authorized to delete this note"
	detailInvalidNoteID      = "Invalid note id"
	detailInvalidSignup      = "Email and password are required"
	detailPasswordTooLong    = "Password must be at most 72 bytes"
	detailInternal           = "Internal server error"
	tokenTypeBearer          = "bearer"
	headerWWWAuthenticate    = "WWW-Authenticate"
	challengeBearer          = "Bearer"
	authorizationBearerToken = "Bearer "
)

var (
	errMissingTokenManager = errors.New("token manager dependency required")
	errMissingUsersService = errors.New("users service dependency required")
	errMissingNotesService = errors.New("notes service dependency required")
)

// TokenManager issues and validates access tokens.
type TokenManager interface {
	IssueAccessToken(ctx context.Context, subject string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// UsersService manages accounts.
type UsersService interface {
	Register(ctx context.Context, email, password string) (users.User, error)
	Authenticate(ctx context.Context, email, password string) (users.User, error)
	FindByID(ctx context.Context, id uint) (users.User, error)
}

// NotesService persists notes with ownership checks.
type NotesService interface {
	ListNotes(ctx context.Context, userID uint) ([]notes.Note, error)
	CreateNote(ctx context.Context, userID uint, title, content string) (notes.Note, error)
	UpdateNote(ctx context.Context, userID, noteID uint, patch notes.Patch) (notes.Note, error)
	DeleteNote(ctx context.Context, userID, noteID uint) error
}

type Dependencies struct {
	TokenManager   TokenManager
	UsersService   UsersService
	NotesService   NotesService
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.UsersService == nil {
		return nil, errMissingUsersService
	}
	if deps.NotesService == nil {
		return nil, errMissingNotesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(requestLogger(logger))
	router.Use(corsMiddleware(deps.AllowedOrigins))

	handler := &httpHandler{
		tokens:       deps.TokenManager,
		usersService: deps.UsersService,
		notesService: deps.NotesService,
		logger:       logger,
	}

	router.GET("/", handler.handleRoot)
	router.GET("/health", handler.handleHealth)
	router.POST("/auth/signup", handler.handleSignup)
	router.POST("/auth/login", handler.handleLogin)

	protected := router.Group("/notes")
	protected.Use(handler.authorizeRequest)
	protected.GET("", handler.handleListNotes)
	protected.POST("", handler.handleCreateNote)
	protected.PUT("/:id", handler.handleUpdateNote)
	protected.DELETE("/:id", handler.handleDeleteNote)

	return router, nil
}

type httpHandler struct {
	tokens       TokenManager
	usersService UsersService
	notesService NotesService
	logger       *zap.Logger
}

type credentialsPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponsePayload struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponsePayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *httpHandler) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Notes API"})
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *httpHandler) handleSignup(c *gin.Context) {
	var request credentialsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, bindingDetail(err))
		return
	}

	user, err := h.usersService.Register(c.Request.Context(), request.Email, request.Password)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		abortWithDetail(c, http.StatusBadRequest, detailEmailTaken)
		return
	case errors.Is(err, users.ErrPasswordTooLong):
		abortWithDetail(c, http.StatusUnprocessableEntity, detailPasswordTooLong)
		return
	case errors.Is(err, users.ErrInvalidInput):
		abortWithDetail(c, http.StatusUnprocessableEntity, detailInvalidSignup)
		return
	case err != nil:
		h.logger.Error("failed to register user", zap.Error(err))
		abortWithDetail(c, http.StatusInternalServerError, detailInternal)
		return
	}

	c.JSON(http.StatusCreated, userResponsePayload{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC(),
	})
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request credentialsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, bindingDetail(err))
		return
	}

	user, err := h.usersService.Authenticate(c.Request.Context(), request.Email, request.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		h.logger.Info("login rejected")
		c.Header(headerWWWAuthenticate, challengeBearer)
		abortWithDetail(c, http.StatusUnauthorized, detailIncorrectLogin)
		return
	}
	if err != nil {
		h.logger.Error("failed to authenticate user", zap.Error(err))
		abortWithDetail(c, http.StatusInternalServerError, detailInternal)
		return
	}

	token, expiresIn, err := h.tokens.IssueAccessToken(c.Request.Context(), strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		h.logger.Error("failed to issue access token", zap.Error(err))
		abortWithDetail(c, http.StatusInternalServerError, detailInternal)
		return
	}

	c.JSON(http.StatusOK, authResponsePayload{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   expiresIn,
	})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, authorizationBearerToken) {
		h.rejectCredentials(c, detailCredentials)
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, authorizationBearerToken))
	if token == "" {
		h.rejectCredentials(c, detailCredentials)
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		h.rejectCredentials(c, detailCredentials)
		return
	}
	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || userID == 0 {
		h.logger.Warn("token subject is not a user id", zap.String("subject", subject))
		h.rejectCredentials(c, detailCredentials)
		return
	}
	if _, err := h.usersService.FindByID(c.Request.Context(), uint(userID)); err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			h.logger.Error("failed to load token subject", zap.Error(err))
		}
		h.rejectCredentials(c, detailUserNotFound)
		return
	}
	c.Set(userIDContextKey, uint(userID))
	c.Next()
}

func (h *httpHandler) rejectCredentials(c *gin.Context, detail string) {
	c.Header(headerWWWAuthenticate, challengeBearer)
	abortWithDetail(c, http.StatusUnauthorized, detail)
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func bindingDetail(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return "Invalid " + strings.ToLower(first.Field()) + ": failed " + first.Tag() + " check"
	}
	return "Invalid request body"
}
