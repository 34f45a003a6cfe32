package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lagat24/greentrace/auth"
	"github.com/lagat24/greentrace/models"
	"github.com/lagat24/greentrace/store"
)

// AuthService is the slice of the auth layer the handlers call.
type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (models.AuthResponse, error)
}

// AuthHandler handles signup and login requests.
type AuthHandler struct {
	service AuthService
	devMode bool
}

// NewAuthHandler creates an auth handler. devMode exposes internal error
// detail in 500 bodies.
func NewAuthHandler(service AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{service: service, devMode: devMode}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid signup body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON", "")
		return
	}

	logRequest(ctx, "info", "Signup request", zap.String("email", req.Email))

	resp, err := h.service.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.writeSignupError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Signup successful", zap.Int("user_id", resp.User.ID))
	writeJSON(w, http.StatusOK, resp)
}

// writeSignupError maps the auth service error taxonomy onto statuses.
func (h *AuthHandler) writeSignupError(ctx context.Context, w http.ResponseWriter, err error) {
	var dup *store.DuplicateFieldError
	switch {
	case errors.Is(err, auth.ErrValidation):
		writeError(w, http.StatusBadRequest, "Username, email, and password are required", "")
	case errors.As(err, &dup):
		logRequest(ctx, "info", "Duplicate signup", zap.String("field", dup.Field))
		writeError(w, http.StatusConflict, duplicateMessage(dup.Field), dup.Field)
	case errors.Is(err, store.ErrForeignKey):
		writeError(w, http.StatusBadRequest, "Referenced record does not exist", "")
	case errors.Is(err, store.ErrFieldTooLong):
		writeError(w, http.StatusBadRequest, "Field value too long", "")
	default:
		logRequest(ctx, "error", "Signup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, h.internalMessage(err), "")
	}
}

func duplicateMessage(field string) string {
	switch field {
	case "email":
		return "Email already registered"
	case "username":
		return "Username already taken"
	}
	return "Duplicate value"
}

// internalMessage hides diagnostic detail from callers unless dev mode is on.
func (h *AuthHandler) internalMessage(err error) string {
	if h.devMode {
		return err.Error()
	}
	return "Server error"
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid login body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON", "")
		return
	}

	logRequest(ctx, "info", "Login request")

	resp, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Deliberately identical for unknown email and wrong password.
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "")
			return
		}
		logRequest(ctx, "error", "Login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, h.internalMessage(err), "")
		return
	}

	logRequest(ctx, "info", "Login successful", zap.Int("user_id", resp.User.ID))
	writeJSON(w, http.StatusOK, resp)
}
