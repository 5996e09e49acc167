package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves the single-admin login endpoint. Credentials are checked
// against the configured admin pair; there is no user store.
type Handler struct {
	ts       *TokenService
	username string
	password string
	log      *slog.Logger
}

func NewHandler(ts *TokenService, username, password string, log *slog.Logger) *Handler {
	return &Handler{ts: ts, username: username, password: password, log: log}
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONError(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if input.Username == "" || input.Password == "" {
		writeJSONError(w, "Missing fields", http.StatusBadRequest)
		return
	}

	if input.Username != h.username || input.Password != h.password {
		writeJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.ts.Generate(input.Username)
	if err != nil {
		h.log.Error("failed to sign admin token", "error", err)
		writeJSONError(w, "Token generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
