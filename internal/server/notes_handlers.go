package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type noteCreatePayload struct {
	Title   *string `json:"title" binding:"required"`
	Content *string `json:"content" binding:"required"`
}

type noteUpdatePayload struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type noteResponsePayload struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UserID    uint       `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func newNoteResponse(note notes.Note) noteResponsePayload {
	response := noteResponsePayload{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		UserID:    note.UserID,
		CreatedAt: note.CreatedAt.UTC(),
	}
	if note.UpdatedAt != nil {
		updatedAt := note.UpdatedAt.UTC()
		response.UpdatedAt = &updatedAt
	}
	return response
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.rejectCredentials(c, detailCredentials)
		return
	}

	stored, err := h.notesService.ListNotes(c.Request.Context(), userID)
	if err != nil {
		h.abortInternal(c, "failed to list notes", err)
		return
	}

	response := make([]noteResponsePayload, 0, len(stored))
	for _, note := range stored {
		response = append(response, newNoteResponse(note))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.rejectCredentials(c, detailCredentials)
		return
	}

	var request noteCreatePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, bindingDetail(err))
		return
	}

	note, err := h.notesService.CreateNote(c.Request.Context(), userID, *request.Title, *request.Content)
	if err != nil {
		h.abortInternal(c, "failed to create note", err)
		return
	}
	c.JSON(http.StatusCreated, newNoteResponse(note))
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.rejectCredentials(c, detailCredentials)
		return
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}

	var request noteUpdatePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, bindingDetail(err))
		return
	}

	note, err := h.notesService.UpdateNote(c.Request.Context(), userID, noteID, notes.Patch{
		Title:   request.Title,
		Content: request.Content,
	})
	if err != nil {
		h.writeNoteError(c, err, detailUpdateForbidden, "failed to update note")
		return
	}
	c.JSON(http.StatusOK, newNoteResponse(note))
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.rejectCredentials(c, detailCredentials)
		return
	}
	noteID, ok := parseNoteID(c)
	if !ok {
		return
	}

	if err := h.notesService.DeleteNote(c.Request.Context(), userID, noteID); err != nil {
		h.writeNoteError(c, err, detailDeleteForbidden, "failed to delete note")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) writeNoteError(c *gin.Context, err error, forbiddenDetail, logMessage string) {
	switch {
	case errors.Is(err, notes.ErrNoteNotFound):
		abortWithDetail(c, http.StatusNotFound, detailNoteNotFound)
	case errors.Is(err, notes.ErrForbidden):
		abortWithDetail(c, http.StatusForbidden, forbiddenDetail)
	default:
		h.abortInternal(c, logMessage, err)
	}
}

// abortInternal logs err and responds 500, exposing the service error code when present.
func (h *httpHandler) abortInternal(c *gin.Context, message string, err error) {
	fields := []zap.Field{zap.Error(err)}
	body := gin.H{"detail": detailInternal}
	var serviceErr *notes.ServiceError
	if errors.As(err, &serviceErr) {
		fields = append(fields, zap.String("code", serviceErr.Code()))
		body["code"] = serviceErr.Code()
	}
	h.logger.Error(message, fields...)
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok && userID != 0
}

func parseNoteID(c *gin.Context) (uint, bool) {
	parsed, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || parsed == 0 {
		abortWithDetail(c, http.StatusUnprocessableEntity, detailInvalidNoteID)
		return 0, false
	}
	return uint(parsed), true
}
