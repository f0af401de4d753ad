// Package derive holds the pure derivation rules shared by the server
// and the client view-model: note type from content length, recency
// windows, activity bucketing, and search matching. Keeping them in one
// place stops the two sides drifting apart.
package derive

import (
	"strings"
	"time"
	"unicode/utf8"

	"drift-notes/internal/models"
)

// LongContentThreshold is the content length, in characters, above
// which a note is long.
const LongContentThreshold = 200

// The two recency windows are distinct concepts: the server's /recent
// endpoint looks back 7 days, the client's activity panel 3 days.
const (
	ServerRecentWindow = 7 * 24 * time.Hour
	ClientRecentWindow = 3 * 24 * time.Hour
)

// NoteType derives the type of a note from its content. The threshold
// counts characters, not bytes, so multibyte text is not penalized.
func NoteType(content string) string {
	if utf8.RuneCountInString(content) > LongContentThreshold {
		return models.TypeLong
	}
	return models.TypeShort
}

// Recent reports whether a last-modified timestamp falls inside the
// given window ending at now.
func Recent(updatedAt, now time.Time, window time.Duration) bool {
	return updatedAt.After(now.Add(-window))
}

// Activity buckets, in priority order. A note belongs to exactly one.
const (
	BucketJustNow   = "Just now"
	BucketToday     = "Today"
	BucketYesterday = "Yesterday"
	BucketThisWeek  = "This week"
)

// ActivityBuckets lists the buckets in display order.
var ActivityBuckets = []string{BucketJustNow, BucketToday, BucketYesterday, BucketThisWeek}

// ActivityBucket assigns a last-modified timestamp to its activity
// bucket relative to now.
func ActivityBucket(updatedAt, now time.Time) string {
	age := now.Sub(updatedAt)
	switch {
	case age < time.Hour:
		return BucketJustNow
	case age < 24*time.Hour:
		return BucketToday
	case age < 48*time.Hour:
		return BucketYesterday
	default:
		return BucketThisWeek
	}
}

// MatchesSearch reports whether term appears case-insensitively as a
// substring of the note's title, content, or any tag. An empty term
// matches everything.
//
// The store's SQL listing applies the same per-field rules but folds
// case with sqlite's lower(), which is ASCII-only; non-ASCII terms
// match case-sensitively there while this function folds full Unicode.
func MatchesSearch(n *models.Note, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(n.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), term) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
