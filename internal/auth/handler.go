package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

const (
	minPasswordLen = 8
	maxAuthBody    = 1 << 16
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(creds.DisplayName) == "" {
		writeError(w, http.StatusBadRequest, "email, password, and displayName are required")
		return
	}
	if len(creds.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	result, err := h.service.Register(r.Context(), creds.Email, creds.Password, creds.DisplayName)
	if err != nil {
		handleServiceError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.service.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		handleServiceError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Me returns the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// decodeCredentials reads the body and requires email and password. It writes
// the 400 itself.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody)).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return creds, false
	}
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return creds, false
	}
	return creds, true
}

func handleServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
