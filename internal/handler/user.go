package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/domain"
)

// UserHandler lists users for assignment pickers and permission admin.
type UserHandler struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users domain.UserRepository, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
	}

	writeJSON(w, http.StatusOK, views)
}
