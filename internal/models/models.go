package models

import "time"

// Field limits enforced on note writes, in characters.
const (
	MaxTitleLen   = 200
	MaxContentLen = 10000
)

// DefaultCategory is the fallback category name. It always exists as a
// concept even when no category row carries it.
const DefaultCategory = "Personal"

// Note priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Note types, derived from content length and never set directly.
const (
	TypeShort = "short"
	TypeLong  = "long"
)

type Note struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	Reminder    *time.Time `json:"reminder"`
	IsCompleted bool       `json:"isCompleted"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	NoteCount int       `json:"noteCount"`
	IsDefault bool      `json:"isDefault,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NoteStats is the per-user aggregate returned by the stats endpoint.
type NoteStats struct {
	TotalNotes     int `json:"totalNotes"`
	ShortNotes     int `json:"shortNotes"`
	LongNotes      int `json:"longNotes"`
	CompletedNotes int `json:"completedNotes"`
}

// CategoryCount is one row of the count-by-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ValidPriority reports whether p is one of the three note priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type categoryStyle struct {
	Color string
	Icon  string
}

// defaultStyles maps the built-in category names to their fixed
// presentation. Unknown names fall back to the neutral style.
var defaultStyles = map[string]categoryStyle{
	"Personal": {Color: "#3B82F6", Icon: "user"},
	"Work":     {Color: "#EF4444", Icon: "briefcase"},
	"Ideas":    {Color: "#F59E0B", Icon: "lightbulb"},
	"Shopping": {Color: "#10B981", Icon: "shopping-cart"},
	"Health":   {Color: "#8B5CF6", Icon: "heart"},
}

// DefaultCategoryNames lists the five built-in categories in display
// order. They are always presented even when not persisted.
var DefaultCategoryNames = []string{"Personal", "Work", "Ideas", "Shopping", "Health"}

// DefaultColor returns the fixed color for a category name.
func DefaultColor(name string) string {
	if s, ok := defaultStyles[name]; ok {
		return s.Color
	}
	return "#6B7280"
}

// DefaultIcon returns the fixed icon for a category name.
func DefaultIcon(name string) string {
	if s, ok := defaultStyles[name]; ok {
		return s.Icon
	}
	return "folder"
}
