package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hongminglow/learning-be/internal/models/dto"
)

// Client-facing messages shared across handlers.
const (
	MsgServerError  = "Server error"
	MsgUnauthorized = "Not authorized"
)

// JSON writes payload as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}

// Message writes a {"msg": ...} body.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, dto.MessageResponse{Msg: msg})
}

// Invalid writes a 400 with the rejected fields.
func Invalid(w http.ResponseWriter, errs []dto.FieldError) {
	JSON(w, http.StatusBadRequest, dto.MessageResponse{Msg: "Invalid request", Errors: errs})
}

// ServerError writes the generic 500 body. Callers log the cause first.
func ServerError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, MsgServerError)
}
