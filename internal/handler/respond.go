package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/security/middleware"
)

// ErrorResponse is the error envelope. Reason is set on forbidden responses
// so clients can distinguish a closed case from a missing permission; Fields
// carries per-field validation messages.
type ErrorResponse struct {
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func statusForCode(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalid:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	ae := apperr.From(err)
	if ae.Code == apperr.CodeInternal {
		logger.Error("request failed", slog.String("error", ae.Error()))
	}
	writeJSON(w, statusForCode(ae.Code), ErrorResponse{
		Message: ae.Message,
		Reason:  ae.Reason,
		Fields:  ae.Fields,
	})
}

// actorFromRequest builds the caller identity from the verified JWT claims.
func actorFromRequest(r *http.Request) (domain.Actor, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return domain.Actor{}, false
	}
	return domain.Actor{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, true
}

// pathID parses the named path segment as a positive integer id.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid id", map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return false
	}
	return true
}
