package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"drift-notes/internal/auth"
	"drift-notes/internal/cache"
	"drift-notes/internal/db"
)

type Handlers struct {
	db    *db.DB
	cache *cache.Cache
	auth  *auth.Auth
}

func New(database *db.DB, c *cache.Cache, a *auth.Auth) *Handlers {
	return &Handlers{
		db:    database,
		cache: c,
		auth:  a,
	}
}

func (h *Handlers) respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) error(w http.ResponseWriter, message string, status int) {
	h.respond(w, map[string]string{"message": message}, status)
}

// storeError maps store failures onto the error taxonomy: missing or
// unowned records are 404, uniqueness violations 400, anything else is
// logged and surfaced as a generic 500.
func (h *Handlers) storeError(w http.ResponseWriter, err error, notFound, conflict, internal string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		h.error(w, notFound, http.StatusNotFound)
	case errors.Is(err, db.ErrDuplicate):
		h.error(w, conflict, http.StatusBadRequest)
	default:
		log.Printf("store error: %v", err)
		h.error(w, internal, http.StatusInternalServerError)
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
