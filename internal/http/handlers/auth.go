package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/learning-be/internal/auth"
	"github.com/hongminglow/learning-be/internal/errutil"
	"github.com/hongminglow/learning-be/internal/http/respond"
	"github.com/hongminglow/learning-be/internal/metrics"
	"github.com/hongminglow/learning-be/internal/middleware"
	"github.com/hongminglow/learning-be/internal/models/dto"
)

const maxBodyBytes = 1 << 20

// AuthHandler owns the register, login and profile endpoints.
type AuthHandler struct {
	svc     *auth.Service
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAuthHandler constructs the handler. m and logger may be nil.
func NewAuthHandler(svc *auth.Service, tokens *auth.TokenManager, m *metrics.Metrics, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{svc: svc, tokens: tokens, metrics: m, logger: logger}
}

// ProfileResponse is the body of GET /me.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.Handle("GET /me", middleware.RequireAuth(h.tokens, h.metrics)(http.HandlerFunc(h.handleMe)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "register"

	var req dto.RegisterRequest
	if !h.decode(w, r, op, &req) {
		return
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		h.metrics.RecordAuth(op, metrics.OutcomeInvalidRequest)
		respond.Invalid(w, errs)
		return
	}

	student, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			h.metrics.RecordAuth(op, metrics.OutcomeDuplicateEmail)
			respond.Message(w, http.StatusBadRequest, "Student already exists")
			return
		}
		h.fail(w, r, op, "register student failed", err)
		return
	}

	h.issue(w, r, op, student.ID)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "login"

	var req dto.LoginRequest
	if !h.decode(w, r, op, &req) {
		return
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		h.metrics.RecordAuth(op, metrics.OutcomeInvalidRequest)
		respond.Invalid(w, errs)
		return
	}

	student, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.RecordAuth(op, metrics.OutcomeInvalidCredentials)
			respond.Message(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.fail(w, r, op, "authenticate student failed", err)
		return
	}

	h.issue(w, r, op, student.ID)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	principalID, ok := middleware.PrincipalID(r.Context())
	if !ok {
		respond.Message(w, http.StatusUnauthorized, respond.MsgUnauthorized)
		return
	}

	student, err := h.svc.Profile(r.Context(), principalID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			respond.Message(w, http.StatusNotFound, "Student not found")
			return
		}
		errutil.LogError(r.Context(), h.logger, "load profile failed", err)
		respond.ServerError(w)
		return
	}

	respond.JSON(w, http.StatusOK, ProfileResponse{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		CreatedAt: student.CreatedAt,
	})
}

// decode reads a JSON body into dst, answering 400 itself on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.metrics.RecordAuth(op, metrics.OutcomeInvalidRequest)
		respond.JSON(w, http.StatusBadRequest, dto.MessageResponse{
			Msg:    "Invalid request",
			Errors: []dto.FieldError{{Field: "body", Msg: "Request body must be a JSON object"}},
		})
		return false
	}
	return true
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, op, principalID string) {
	token, err := h.tokens.Issue(principalID)
	if err != nil {
		h.fail(w, r, op, "issue token failed", err)
		return
	}
	h.metrics.RecordAuth(op, metrics.OutcomeSuccess)
	respond.JSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, op, msg string, err error) {
	h.metrics.RecordAuth(op, metrics.OutcomeError)
	errutil.LogError(r.Context(), h.logger, msg, err)
	respond.ServerError(w)
}
