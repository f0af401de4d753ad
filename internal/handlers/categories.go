package handlers

import (
	"log"
	"net/http"
	"strings"

	"drift-notes/internal/auth"
	"drift-notes/internal/cache"
	"drift-notes/internal/models"
)

// withCount attaches the live note count to a category. Counts are
// computed per request, never cached.
func (h *Handlers) withCount(userID string, c *models.Category) {
	count, err := h.db.CountNotesInCategory(userID, c.Name)
	if err != nil {
		log.Printf("count notes in %q: %v", c.Name, err)
		return
	}
	c.NoteCount = count
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)

	categories, err := h.db.ListCategories(userID)
	if err != nil {
		h.storeError(w, err, "", "", "Server error fetching categories")
		return
	}

	persisted := make(map[string]bool, len(categories))
	for i := range categories {
		persisted[categories[i].Name] = true
		h.withCount(userID, &categories[i])
	}

	// The built-in categories are always presented unless a real one
	// shadows them. They carry a synthetic id and are never stored.
	for _, name := range models.DefaultCategoryNames {
		if persisted[name] {
			continue
		}
		def := models.Category{
			ID:        "default-" + name,
			Name:      name,
			Color:     models.DefaultColor(name),
			Icon:      models.DefaultIcon(name),
			IsDefault: true,
		}
		h.withCount(userID, &def)
		categories = append(categories, def)
	}

	h.respond(w, map[string]interface{}{"categories": categories}, http.StatusOK)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	category, err := h.db.CreateCategory(userID, req.Name, req.Color, req.Icon)
	if err != nil {
		h.storeError(w, err, "", "Category with this name already exists", "Server error creating category")
		return
	}

	h.withCount(userID, category)
	h.respond(w, map[string]interface{}{
		"message":  "Category created successfully",
		"category": category,
	}, http.StatusCreated)
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")

	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
		Icon  *string `json:"icon"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			h.error(w, "Category name is required", http.StatusBadRequest)
			return
		}
		req.Name = &trimmed
	}

	category, err := h.db.UpdateCategory(userID, id, req.Name, req.Color, req.Icon)
	if err != nil {
		h.storeError(w, err, "Category not found", "Category with this name already exists", "Server error updating category")
		return
	}

	// A rename rewrites notes wholesale; drop whatever we hold for
	// this owner.
	h.cache.InvalidateByPrefix(cache.UserPrefix(userID))

	h.withCount(userID, category)
	h.respond(w, map[string]interface{}{
		"message":  "Category updated successfully",
		"category": category,
	}, http.StatusOK)
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")

	if err := h.db.DeleteCategory(userID, id); err != nil {
		h.storeError(w, err, "Category not found", "", "Server error deleting category")
		return
	}

	h.cache.InvalidateByPrefix(cache.UserPrefix(userID))
	h.respond(w, map[string]string{
		"message": "Category deleted successfully. Notes moved to Personal category.",
	}, http.StatusOK)
}
