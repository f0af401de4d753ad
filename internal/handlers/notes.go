package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"drift-notes/internal/auth"
	"drift-notes/internal/cache"
	"drift-notes/internal/db"
	"drift-notes/internal/derive"
	"drift-notes/internal/models"
)

// validateTitle trims the title and checks it against the field rules,
// returning the normalized value or a client-facing message. Limits
// count characters, not bytes.
func validateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "Title and content are required"
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLen {
		return "", fmt.Sprintf("Title must be at most %d characters", models.MaxTitleLen)
	}
	return title, ""
}

func validateContent(content string) string {
	if content == "" {
		return "Title and content are required"
	}
	if utf8.RuneCountInString(content) > models.MaxContentLen {
		return fmt.Sprintf("Content must be at most %d characters", models.MaxContentLen)
	}
	return ""
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

// parseReminder interprets the raw reminder value: absent or null
// clears it, otherwise an RFC 3339 timestamp is expected.
func parseReminder(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// ensureCategory is the best-effort side write: a novel category name
// on a note gets a real record, but a failure here never fails the
// note write.
func (h *Handlers) ensureCategory(userID, name string) {
	if err := h.db.EnsureCategory(userID, name); err != nil {
		log.Printf("ensure category %q: %v", name, err)
	}
}

func (h *Handlers) GetNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := db.ListOptions{
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Search:   q.Get("search"),
	}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	opts.Clamp()

	notes, total, err := h.db.ListNotes(auth.UserID(r), opts)
	if err != nil {
		h.storeError(w, err, "", "", "Server error fetching notes")
		return
	}

	h.respond(w, map[string]interface{}{
		"notes":       notes,
		"totalPages":  int(math.Ceil(float64(total) / float64(opts.Limit))),
		"currentPage": opts.Page,
		"total":       total,
	}, http.StatusOK)
}

func (h *Handlers) GetRecentNotes(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-derive.ServerRecentWindow)
	notes, err := h.db.RecentNotes(auth.UserID(r), since, 10)
	if err != nil {
		h.storeError(w, err, "", "", "Server error fetching recent notes")
		return
	}
	h.respond(w, map[string]interface{}{"notes": notes}, http.StatusOK)
}

func (h *Handlers) GetNoteStats(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)

	stats, err := h.db.NoteStats(userID)
	if err != nil {
		h.storeError(w, err, "", "", "Server error fetching statistics")
		return
	}
	categoryStats, err := h.db.CategoryCounts(userID)
	if err != nil {
		h.storeError(w, err, "", "", "Server error fetching statistics")
		return
	}

	h.respond(w, map[string]interface{}{
		"stats":         stats,
		"categoryStats": categoryStats,
	}, http.StatusOK)
}

func (h *Handlers) GetNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)
	id := strings.TrimPrefix(r.URL.Path, "/api/notes/")

	key := cache.NoteKey(userID, id)
	if note, ok := h.cache.Get(key); ok {
		h.respond(w, map[string]interface{}{"note": note}, http.StatusOK)
		return
	}

	note, err := h.db.GetNote(userID, id)
	if err != nil {
		h.storeError(w, err, "Note not found", "", "Server error fetching note")
		return
	}

	h.cache.Set(key, note)
	h.respond(w, map[string]interface{}{"note": note}, http.StatusOK)
}

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string          `json:"title"`
		Content  string          `json:"content"`
		Category string          `json:"category"`
		Priority string          `json:"priority"`
		Reminder json.RawMessage `json:"reminder"`
		Tags     []string        `json:"tags"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	title, msg := validateTitle(req.Title)
	if msg == "" {
		msg = validateContent(req.Content)
	}
	if msg != "" {
		h.error(w, msg, http.StatusBadRequest)
		return
	}

	if req.Category == "" {
		req.Category = models.DefaultCategory
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(req.Priority) {
		h.error(w, "Priority must be low, medium or high", http.StatusBadRequest)
		return
	}

	reminder, err := parseReminder(req.Reminder)
	if err != nil {
		h.error(w, "Invalid reminder timestamp", http.StatusBadRequest)
		return
	}

	note := &models.Note{
		UserID:   auth.UserID(r),
		Title:    title,
		Content:  req.Content,
		Category: req.Category,
		Type:     derive.NoteType(req.Content),
		Priority: req.Priority,
		Reminder: reminder,
		Tags:     trimTags(req.Tags),
	}

	if err := h.db.CreateNote(note); err != nil {
		h.storeError(w, err, "", "", "Server error creating note")
		return
	}

	h.ensureCategory(note.UserID, note.Category)

	h.respond(w, map[string]interface{}{
		"message": "Note created successfully",
		"note":    note,
	}, http.StatusCreated)
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)
	id := strings.TrimPrefix(r.URL.Path, "/api/notes/")

	var req struct {
		Title       *string         `json:"title"`
		Content     *string         `json:"content"`
		Category    *string         `json:"category"`
		Priority    *string         `json:"priority"`
		Reminder    json.RawMessage `json:"reminder"`
		Tags        *[]string       `json:"tags"`
		IsCompleted *bool           `json:"isCompleted"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	note, err := h.db.GetNote(userID, id)
	if err != nil {
		h.storeError(w, err, "Note not found", "", "Server error updating note")
		return
	}

	if req.Title != nil {
		title, msg := validateTitle(*req.Title)
		if msg != "" {
			h.error(w, msg, http.StatusBadRequest)
			return
		}
		note.Title = title
	}
	if req.Content != nil {
		if msg := validateContent(*req.Content); msg != "" {
			h.error(w, msg, http.StatusBadRequest)
			return
		}
		note.Content = *req.Content
		// Type follows content, and only content.
		note.Type = derive.NoteType(note.Content)
	}
	if req.Category != nil {
		note.Category = *req.Category
		if note.Category == "" {
			note.Category = models.DefaultCategory
		}
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			h.error(w, "Priority must be low, medium or high", http.StatusBadRequest)
			return
		}
		note.Priority = *req.Priority
	}
	if len(req.Reminder) > 0 {
		reminder, err := parseReminder(req.Reminder)
		if err != nil {
			h.error(w, "Invalid reminder timestamp", http.StatusBadRequest)
			return
		}
		note.Reminder = reminder
	}
	if req.Tags != nil {
		note.Tags = trimTags(*req.Tags)
	}
	if req.IsCompleted != nil {
		note.IsCompleted = *req.IsCompleted
	}

	if err := h.db.UpdateNote(note); err != nil {
		h.storeError(w, err, "Note not found", "", "Server error updating note")
		return
	}

	if req.Category != nil {
		h.ensureCategory(userID, note.Category)
	}

	h.cache.Invalidate(cache.NoteKey(userID, id))
	h.respond(w, map[string]interface{}{
		"message": "Note updated successfully",
		"note":    note,
	}, http.StatusOK)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)
	id := strings.TrimPrefix(r.URL.Path, "/api/notes/")

	if err := h.db.DeleteNote(userID, id); err != nil {
		h.storeError(w, err, "Note not found", "", "Server error deleting note")
		return
	}

	h.cache.Invalidate(cache.NoteKey(userID, id))
	h.respond(w, map[string]string{"message": "Note deleted successfully"}, http.StatusOK)
}

func (h *Handlers) BulkDeleteNotes(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r)

	var req struct {
		NoteIDs []string `json:"noteIds"`
	}
	body := json.NewDecoder(r.Body)
	if err := body.Decode(&req); err != nil || req.NoteIDs == nil {
		h.error(w, "Note IDs array is required", http.StatusBadRequest)
		return
	}

	deleted, err := h.db.DeleteNotes(userID, req.NoteIDs)
	if err != nil {
		h.storeError(w, err, "", "", "Server error deleting notes")
		return
	}

	h.cache.InvalidateByPrefix(cache.UserPrefix(userID))
	h.respond(w, map[string]interface{}{
		"message":      fmt.Sprintf("%d notes deleted successfully", deleted),
		"deletedCount": deleted,
	}, http.StatusOK)
}
