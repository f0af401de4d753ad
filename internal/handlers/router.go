package handlers

import (
	"net/http"

	"drift-notes/internal/auth"
)

func methods(h http.HandlerFunc, allowed ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, m := range allowed {
			if r.Method == m {
				h(w, r)
				return
			}
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Router wires every endpoint. Auth endpoints are open; everything else
// requires a bearer token and runs with the resolved owner id.
func Router(h *Handlers, a *auth.Auth) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/register", methods(h.Register, http.MethodPost))
	mux.HandleFunc("/api/auth/login", methods(h.Login, http.MethodPost))
	mux.HandleFunc("/api/auth/profile", a.Middleware(methods(h.Profile, http.MethodGet)))

	mux.HandleFunc("/api/notes", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetNotes(w, r)
		case http.MethodPost:
			h.CreateNote(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/api/notes/recent", a.Middleware(methods(h.GetRecentNotes, http.MethodGet)))
	mux.HandleFunc("/api/notes/stats", a.Middleware(methods(h.GetNoteStats, http.MethodGet)))
	mux.HandleFunc("/api/notes/bulk-delete", a.Middleware(methods(h.BulkDeleteNotes, http.MethodPost)))
	mux.HandleFunc("/api/notes/", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetNote(w, r)
		case http.MethodPut:
			h.UpdateNote(w, r)
		case http.MethodDelete:
			h.DeleteNote(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.HandleFunc("/api/categories", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetCategories(w, r)
		case http.MethodPost:
			h.CreateCategory(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/api/categories/", a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			h.UpdateCategory(w, r)
		case http.MethodDelete:
			h.DeleteCategory(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	return mux
}
