package handlers

import (
	"net/http"
	"strings"

	"drift-notes/internal/auth"
	"drift-notes/internal/db"
)

const minPasswordLen = 6

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLen {
		h.error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		h.storeError(w, err, "", "", "Server error creating user")
		return
	}

	user, err := h.db.CreateUser(req.Username, req.Email, hash)
	if err != nil {
		h.storeError(w, err, "User not found", "Email is already registered", "Server error creating user")
		return
	}

	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		h.storeError(w, err, "", "", "Server error creating user")
		return
	}

	h.respond(w, map[string]interface{}{"token": token, "user": user}, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.db.GetUserByEmail(req.Email)
	if err == db.ErrNotFound {
		h.error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.storeError(w, err, "", "", "Server error logging in")
		return
	}

	if err := h.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		h.storeError(w, err, "", "", "Server error logging in")
		return
	}

	h.respond(w, map[string]interface{}{"token": token, "user": user}, http.StatusOK)
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.db.GetUser(auth.UserID(r))
	if err != nil {
		h.storeError(w, err, "User not found", "", "Server error fetching profile")
		return
	}
	h.respond(w, map[string]interface{}{"user": user}, http.StatusOK)
}
