package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/service"
)

// CommentHandler handles test-case comment endpoints
type CommentHandler struct {
	commentService *service.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *service.CommentService, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// CommentRequest is the create payload.
type CommentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/test-cases/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	testCaseID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req CommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.commentService.Create(actor, testCaseID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// List handles GET /api/test-cases/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	testCaseID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	comments, err := h.commentService.ListByTestCase(testCaseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	writeJSON(w, http.StatusOK, comments)
}

// Delete handles DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.commentService.Delete(actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
