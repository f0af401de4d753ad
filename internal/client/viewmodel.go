package client

import (
	"sort"
	"sync"
	"time"

	"drift-notes/internal/derive"
	"drift-notes/internal/models"
)

// ViewModel keeps an optimistic local copy of the note list and derives
// filtered and grouped views from it with the shared rules.
type ViewModel struct {
	mu    sync.RWMutex
	notes map[string]models.Note
	now   func() time.Time
}

func NewViewModel() *ViewModel {
	return &ViewModel{
		notes: make(map[string]models.Note),
		now:   time.Now,
	}
}

// ApplyNote merges a note into the local copy. A response that is older
// than what we already hold is dropped, so a slow round trip can never
// overwrite a newer edit. The note type is recomputed locally rather
// than trusted, so optimistic inserts stay consistent before the server
// confirms.
func (vm *ViewModel) ApplyNote(n models.Note) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if held, ok := vm.notes[n.ID]; ok && held.UpdatedAt.After(n.UpdatedAt) {
		return false
	}
	n.Type = derive.NoteType(n.Content)
	vm.notes[n.ID] = n
	return true
}

func (vm *ViewModel) RemoveNote(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.notes, id)
}

func (vm *ViewModel) RemoveNotes(ids []string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, id := range ids {
		delete(vm.notes, id)
	}
}

// Replace swaps the whole local list, e.g. after a fresh listing fetch.
func (vm *ViewModel) Replace(notes []models.Note) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.notes = make(map[string]models.Note, len(notes))
	for _, n := range notes {
		n.Type = derive.NoteType(n.Content)
		vm.notes[n.ID] = n
	}
}

func (vm *ViewModel) sorted() []models.Note {
	out := make([]models.Note, 0, len(vm.notes))
	for _, n := range vm.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Notes returns the local list, newest-updated first.
func (vm *ViewModel) Notes() []models.Note {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.sorted()
}

// Filter mirrors the server's listing rules: the literal "All" category
// and "all" type disable their filters, search is a case-insensitive
// substring over title, content and tags.
func (vm *ViewModel) Filter(category, noteType, search string) []models.Note {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	out := []models.Note{}
	for _, n := range vm.sorted() {
		if category != "" && category != "All" && n.Category != category {
			continue
		}
		if noteType != "" && noteType != "all" && n.Type != noteType {
			continue
		}
		if !derive.MatchesSearch(&n, search) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Recent returns notes modified within the client's 3-day window,
// newest first. The window is deliberately narrower than the server's
// /recent endpoint.
func (vm *ViewModel) Recent() []models.Note {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	now := vm.now()
	out := []models.Note{}
	for _, n := range vm.sorted() {
		if derive.Recent(n.UpdatedAt, now, derive.ClientRecentWindow) {
			out = append(out, n)
		}
	}
	return out
}

// ActivityGroup is one non-empty recency bucket of the activity panel.
type ActivityGroup struct {
	Bucket string
	Notes  []models.Note
}

// ActivityGroups buckets the recent notes into just now / today /
// yesterday / this week, in that order, skipping empty buckets. Each
// note lands in exactly one bucket.
func (vm *ViewModel) ActivityGroups() []ActivityGroup {
	now := vm.now()
	grouped := map[string][]models.Note{}
	for _, n := range vm.Recent() {
		bucket := derive.ActivityBucket(n.UpdatedAt, now)
		grouped[bucket] = append(grouped[bucket], n)
	}

	out := []ActivityGroup{}
	for _, bucket := range derive.ActivityBuckets {
		if notes := grouped[bucket]; len(notes) > 0 {
			out = append(out, ActivityGroup{Bucket: bucket, Notes: notes})
		}
	}
	return out
}

// HasActiveReminder reports whether the note carries a reminder that is
// still in the future. Reminders are inert timestamps; this is the only
// place they are compared against the clock.
func (vm *ViewModel) HasActiveReminder(n *models.Note) bool {
	return n.Reminder != nil && n.Reminder.After(vm.now())
}
