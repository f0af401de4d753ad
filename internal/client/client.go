// Package client is the Go counterpart of the browser client: an
// authenticated transport wrapper over the REST API plus a view-model
// that derives local views with the same rules the server uses.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"drift-notes/internal/models"
)

// APIError is a non-2xx response decoded into the server's message
// envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken replaces the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Message == "" {
			envelope.Message = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Register creates an account and keeps the returned token for later
// calls.
func (c *Client) Register(username, email, password string) (*models.User, error) {
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(email, password string) (*models.User, error) {
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) Profile() (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(http.MethodGet, "/api/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// NoteQuery narrows a note listing; zero values leave the server
// defaults in charge.
type NoteQuery struct {
	Category string
	Type     string
	Search   string
	Page     int
	Limit    int
}

// NotesPage is one page of a listing plus its pagination envelope.
type NotesPage struct {
	Notes       []models.Note `json:"notes"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Total       int           `json:"total"`
}

func (c *Client) Notes(q NoteQuery) (*NotesPage, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/api/notes"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page NotesPage
	if err := c.do(http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Note(id string) (*models.Note, error) {
	var resp struct {
		Note *models.Note `json:"note"`
	}
	if err := c.do(http.MethodGet, "/api/notes/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Note, nil
}

// NoteDraft is the payload for creating a note.
type NoteDraft struct {
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Category string     `json:"category,omitempty"`
	Priority string     `json:"priority,omitempty"`
	Reminder *time.Time `json:"reminder,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
}

func (c *Client) CreateNote(draft NoteDraft) (*models.Note, error) {
	var resp struct {
		Note *models.Note `json:"note"`
	}
	if err := c.do(http.MethodPost, "/api/notes", draft, &resp); err != nil {
		return nil, err
	}
	return resp.Note, nil
}

// NotePatch is a partial update; nil fields are left untouched by the
// server. ClearReminder sends an explicit null.
type NotePatch struct {
	Title         *string
	Content       *string
	Category      *string
	Priority      *string
	Reminder      *time.Time
	ClearReminder bool
	Tags          *[]string
	IsCompleted   *bool
}

func (p NotePatch) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Content != nil {
		body["content"] = *p.Content
	}
	if p.Category != nil {
		body["category"] = *p.Category
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	if p.Reminder != nil {
		body["reminder"] = p.Reminder.Format(time.RFC3339)
	} else if p.ClearReminder {
		body["reminder"] = nil
	}
	if p.Tags != nil {
		body["tags"] = *p.Tags
	}
	if p.IsCompleted != nil {
		body["isCompleted"] = *p.IsCompleted
	}
	return json.Marshal(body)
}

func (c *Client) UpdateNote(id string, patch NotePatch) (*models.Note, error) {
	var resp struct {
		Note *models.Note `json:"note"`
	}
	if err := c.do(http.MethodPut, "/api/notes/"+id, patch, &resp); err != nil {
		return nil, err
	}
	return resp.Note, nil
}

func (c *Client) DeleteNote(id string) error {
	return c.do(http.MethodDelete, "/api/notes/"+id, nil, nil)
}

func (c *Client) BulkDeleteNotes(ids []string) (int, error) {
	var resp struct {
		DeletedCount int `json:"deletedCount"`
	}
	err := c.do(http.MethodPost, "/api/notes/bulk-delete", map[string][]string{"noteIds": ids}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

func (c *Client) RecentNotes() ([]models.Note, error) {
	var resp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := c.do(http.MethodGet, "/api/notes/recent", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *Client) Stats() (models.NoteStats, []models.CategoryCount, error) {
	var resp struct {
		Stats         models.NoteStats       `json:"stats"`
		CategoryStats []models.CategoryCount `json:"categoryStats"`
	}
	if err := c.do(http.MethodGet, "/api/notes/stats", nil, &resp); err != nil {
		return models.NoteStats{}, nil, err
	}
	return resp.Stats, resp.CategoryStats, nil
}

func (c *Client) Categories() ([]models.Category, error) {
	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.do(http.MethodGet, "/api/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) CreateCategory(name, color, icon string) (*models.Category, error) {
	body := map[string]string{"name": name}
	if color != "" {
		body["color"] = color
	}
	if icon != "" {
		body["icon"] = icon
	}
	var resp struct {
		Category *models.Category `json:"category"`
	}
	if err := c.do(http.MethodPost, "/api/categories", body, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

func (c *Client) UpdateCategory(id string, name, color, icon *string) (*models.Category, error) {
	body := map[string]interface{}{}
	if name != nil {
		body["name"] = *name
	}
	if color != nil {
		body["color"] = *color
	}
	if icon != nil {
		body["icon"] = *icon
	}
	var resp struct {
		Category *models.Category `json:"category"`
	}
	if err := c.do(http.MethodPut, "/api/categories/"+id, body, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

func (c *Client) DeleteCategory(id string) error {
	return c.do(http.MethodDelete, "/api/categories/"+id, nil, nil)
}
