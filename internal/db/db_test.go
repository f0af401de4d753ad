package db

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drift-notes/internal/derive"
	"drift-notes/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func makeNote(t *testing.T, d *DB, userID, title, content, category string) *models.Note {
	t.Helper()
	n := &models.Note{
		UserID:   userID,
		Title:    title,
		Content:  content,
		Category: category,
		Type:     derive.NoteType(content),
		Priority: models.PriorityMedium,
	}
	require.NoError(t, d.CreateNote(n))
	return n
}

// setUpdatedAt pins a note's last-modified timestamp so ordering tests
// are deterministic.
func setUpdatedAt(t *testing.T, d *DB, id string, ts time.Time) {
	t.Helper()
	_, err := d.conn.Exec(`UPDATE notes SET updated_at = ? WHERE id = ?`, ts.UnixMilli(), id)
	require.NoError(t, err)
}

func TestNoteCRUD(t *testing.T) {
	d := newTestDB(t)

	reminder := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	n := &models.Note{
		UserID:   "u1",
		Title:    "Groceries",
		Content:  "milk, eggs",
		Category: "Personal",
		Type:     derive.NoteType("milk, eggs"),
		Priority: models.PriorityMedium,
		Reminder: &reminder,
		Tags:     []string{"errands", "home"},
	}
	require.NoError(t, d.CreateNote(n))
	require.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	got, err := d.GetNote("u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, models.TypeShort, got.Type)
	assert.Equal(t, []string{"errands", "home"}, got.Tags)
	require.NotNil(t, got.Reminder)
	assert.True(t, got.Reminder.Equal(reminder))

	t.Run("not visible to another user", func(t *testing.T) {
		_, err := d.GetNote("u2", n.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update rewrites fields", func(t *testing.T) {
		got.Content = "milk, eggs, bread"
		got.IsCompleted = true
		got.Reminder = nil
		require.NoError(t, d.UpdateNote(got))

		again, err := d.GetNote("u1", n.ID)
		require.NoError(t, err)
		assert.Equal(t, "milk, eggs, bread", again.Content)
		assert.True(t, again.IsCompleted)
		assert.Nil(t, again.Reminder)
	})

	t.Run("update of unknown id", func(t *testing.T) {
		missing := *got
		missing.ID = "nope"
		assert.ErrorIs(t, d.UpdateNote(&missing), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, d.DeleteNote("u2", n.ID), ErrNotFound)
		require.NoError(t, d.DeleteNote("u1", n.ID))
		_, err := d.GetNote("u1", n.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListNotesFilters(t *testing.T) {
	d := newTestDB(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := makeNote(t, d, "u1", "Meeting notes", "prepare budget proposal", "Work")
	b := makeNote(t, d, "u1", "Groceries", "milk and eggs", "Shopping")
	long := makeNote(t, d, "u1", "Long read", strings.Repeat("x", 300), "Work")
	makeNote(t, d, "u2", "Other user", "budget stuff", "Work")

	setUpdatedAt(t, d, a.ID, base.Add(3*time.Hour))
	setUpdatedAt(t, d, b.ID, base.Add(2*time.Hour))
	setUpdatedAt(t, d, long.ID, base.Add(1*time.Hour))

	t.Run("no filters returns everything newest first", func(t *testing.T) {
		notes, total, err := d.ListNotes("u1", ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, notes, 3)
		assert.Equal(t, a.ID, notes[0].ID)
		assert.Equal(t, b.ID, notes[1].ID)
		assert.Equal(t, long.ID, notes[2].ID)
	})

	t.Run("literal All disables the category filter", func(t *testing.T) {
		_, total, err := d.ListNotes("u1", ListOptions{Category: "All"})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("category filter", func(t *testing.T) {
		notes, total, err := d.ListNotes("u1", ListOptions{Category: "Work"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, notes, 2)
	})

	t.Run("type filter", func(t *testing.T) {
		notes, _, err := d.ListNotes("u1", ListOptions{Type: models.TypeLong})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, long.ID, notes[0].ID)

		_, total, err := d.ListNotes("u1", ListOptions{Type: "all"})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("search is case-insensitive over title content and tags", func(t *testing.T) {
		notes, _, err := d.ListNotes("u1", ListOptions{Search: "BUDGET"})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, a.ID, notes[0].ID)

		tagged := makeNote(t, d, "u1", "Untitled", "nothing here", "Personal")
		tagged.Tags = []string{"Budgeting"}
		require.NoError(t, d.UpdateNote(tagged))

		notes, _, err = d.ListNotes("u1", ListOptions{Search: "budget"})
		require.NoError(t, err)
		assert.Len(t, notes, 2)

		notes, _, err = d.ListNotes("u1", ListOptions{Search: "groceries"})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, b.ID, notes[0].ID)
	})

	t.Run("tag search matches elements not JSON punctuation", func(t *testing.T) {
		tagged := makeNote(t, d, "u1", "Plain", "no keywords", "Personal")
		tagged.Tags = []string{"alpha", "beta"}
		require.NoError(t, d.UpdateNote(tagged))

		// Tags are stored as a JSON array; matching must see the
		// elements, not the serialized text around them.
		for _, term := range []string{`","`, `"`, "[", "alpha\",\"beta"} {
			notes, _, err := d.ListNotes("u1", ListOptions{Search: term})
			require.NoError(t, err)
			assert.Empty(t, notes, "term %q", term)
		}

		notes, _, err := d.ListNotes("u1", ListOptions{Search: "alp"})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, tagged.ID, notes[0].ID)

		notes, _, err = d.ListNotes("u1", ListOptions{Search: "BETA"})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, tagged.ID, notes[0].ID)
	})
}

func TestListNotesPagination(t *testing.T) {
	d := newTestDB(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Note i gets a distinct timestamp; higher i means more recent.
	for i := 1; i <= 125; i++ {
		n := makeNote(t, d, "u1", fmt.Sprintf("note %03d", i), "content", "Personal")
		setUpdatedAt(t, d, n.ID, base.Add(time.Duration(i)*time.Minute))
	}

	t.Run("page math", func(t *testing.T) {
		notes, total, err := d.ListNotes("u1", ListOptions{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 125, total)
		require.Len(t, notes, 50)
		assert.Equal(t, "note 125", notes[0].Title)
	})

	t.Run("page 2 holds ranks 51 through 100", func(t *testing.T) {
		notes, _, err := d.ListNotes("u1", ListOptions{Page: 2, Limit: 50})
		require.NoError(t, err)
		require.Len(t, notes, 50)
		// Rank 51 by descending updatedAt is note 75, rank 100 is note 26.
		assert.Equal(t, "note 075", notes[0].Title)
		assert.Equal(t, "note 026", notes[49].Title)
	})

	t.Run("last page is a partial slice", func(t *testing.T) {
		notes, _, err := d.ListNotes("u1", ListOptions{Page: 3, Limit: 50})
		require.NoError(t, err)
		assert.Len(t, notes, 25)
	})

	t.Run("non-positive inputs are clamped", func(t *testing.T) {
		notes, total, err := d.ListNotes("u1", ListOptions{Page: -2, Limit: 0})
		require.NoError(t, err)
		assert.Equal(t, 125, total)
		assert.Len(t, notes, DefaultPageLimit)
		assert.Equal(t, "note 125", notes[0].Title)
	})
}

func TestRecentNotes(t *testing.T) {
	d := newTestDB(t)
	now := time.Now().UTC()

	old := makeNote(t, d, "u1", "old", "content", "Personal")
	setUpdatedAt(t, d, old.ID, now.Add(-8*24*time.Hour))

	for i := 0; i < 12; i++ {
		n := makeNote(t, d, "u1", fmt.Sprintf("fresh %d", i), "content", "Personal")
		setUpdatedAt(t, d, n.ID, now.Add(-time.Duration(i)*time.Hour))
	}

	notes, err := d.RecentNotes("u1", now.Add(-derive.ServerRecentWindow), 10)
	require.NoError(t, err)
	require.Len(t, notes, 10, "capped at 10 even with 12 fresh notes")
	assert.Equal(t, "fresh 0", notes[0].Title)
	for _, n := range notes {
		assert.NotEqual(t, old.ID, n.ID)
	}
}

func TestNoteStatsAndCategoryCounts(t *testing.T) {
	d := newTestDB(t)

	t.Run("empty user", func(t *testing.T) {
		s, err := d.NoteStats("u1")
		require.NoError(t, err)
		assert.Equal(t, models.NoteStats{}, s)

		counts, err := d.CategoryCounts("u1")
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	makeNote(t, d, "u1", "a", "short one", "Work")
	makeNote(t, d, "u1", "b", strings.Repeat("y", 250), "Work")
	done := makeNote(t, d, "u1", "c", "another short", "Ideas")
	done.IsCompleted = true
	require.NoError(t, d.UpdateNote(done))
	makeNote(t, d, "u2", "foreign", "not counted", "Work")

	s, err := d.NoteStats("u1")
	require.NoError(t, err)
	assert.Equal(t, models.NoteStats{TotalNotes: 3, ShortNotes: 2, LongNotes: 1, CompletedNotes: 1}, s)

	counts, err := d.CategoryCounts("u1")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.CategoryCount{Category: "Work", Count: 2}, counts[0])
	assert.Equal(t, models.CategoryCount{Category: "Ideas", Count: 1}, counts[1])
}

func TestBulkDelete(t *testing.T) {
	d := newTestDB(t)

	x := makeNote(t, d, "u1", "x", "content", "Personal")
	y := makeNote(t, d, "u1", "y", "content", "Personal")
	z := makeNote(t, d, "u2", "z", "content", "Personal")

	deleted, err := d.DeleteNotes("u1", []string{x.ID, y.ID, z.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted, "only the requester's notes are deleted")

	_, err = d.GetNote("u2", z.ID)
	assert.NoError(t, err, "the foreign note survives")

	deleted, err = d.DeleteNotes("u1", nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCategoryCreate(t *testing.T) {
	d := newTestDB(t)

	c, err := d.CreateCategory("u1", "Work", "", "")
	require.NoError(t, err)
	assert.Equal(t, "#EF4444", c.Color, "defaults from the fixed table")
	assert.Equal(t, "briefcase", c.Icon)

	t.Run("duplicate per user", func(t *testing.T) {
		_, err := d.CreateCategory("u1", "Work", "", "")
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("same name for another user", func(t *testing.T) {
		_, err := d.CreateCategory("u2", "Work", "", "")
		assert.NoError(t, err)
	})

	t.Run("unknown name gets the neutral style", func(t *testing.T) {
		c, err := d.CreateCategory("u1", "Gardening", "", "")
		require.NoError(t, err)
		assert.Equal(t, "#6B7280", c.Color)
		assert.Equal(t, "folder", c.Icon)
	})

	t.Run("explicit style wins", func(t *testing.T) {
		c, err := d.CreateCategory("u1", "Travel", "#123456", "plane")
		require.NoError(t, err)
		assert.Equal(t, "#123456", c.Color)
		assert.Equal(t, "plane", c.Icon)
	})
}

func TestEnsureCategory(t *testing.T) {
	d := newTestDB(t)

	t.Run("skips the default name", func(t *testing.T) {
		require.NoError(t, d.EnsureCategory("u1", models.DefaultCategory))
		_, err := d.GetCategoryByName("u1", models.DefaultCategory)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("creates a novel name once", func(t *testing.T) {
		require.NoError(t, d.EnsureCategory("u1", "Recipes"))
		require.NoError(t, d.EnsureCategory("u1", "Recipes"))

		cats, err := d.ListCategories("u1")
		require.NoError(t, err)
		require.Len(t, cats, 1)
		assert.Equal(t, "Recipes", cats[0].Name)
	})
}

func TestRenameCategoryCascade(t *testing.T) {
	d := newTestDB(t)

	work, err := d.CreateCategory("u1", "Work", "", "")
	require.NoError(t, err)
	_, err = d.CreateCategory("u1", "Ideas", "", "")
	require.NoError(t, err)

	n1 := makeNote(t, d, "u1", "a", "content", "Work")
	n2 := makeNote(t, d, "u1", "b", "content", "Work")
	other := makeNote(t, d, "u1", "c", "content", "Ideas")
	foreign := makeNote(t, d, "u2", "d", "content", "Work")

	t.Run("rename to a taken name is rejected and notes untouched", func(t *testing.T) {
		taken := "Ideas"
		_, err := d.UpdateCategory("u1", work.ID, &taken, nil, nil)
		assert.ErrorIs(t, err, ErrDuplicate)

		got, err := d.GetNote("u1", n1.ID)
		require.NoError(t, err)
		assert.Equal(t, "Work", got.Category)
	})

	t.Run("rename rewrites exactly the affected notes", func(t *testing.T) {
		newName := "Office"
		updated, err := d.UpdateCategory("u1", work.ID, &newName, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "Office", updated.Name)

		for _, id := range []string{n1.ID, n2.ID} {
			got, err := d.GetNote("u1", id)
			require.NoError(t, err)
			assert.Equal(t, "Office", got.Category)
		}

		got, err := d.GetNote("u1", other.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ideas", got.Category, "unrelated note keeps its category")

		gotForeign, err := d.GetNote("u2", foreign.ID)
		require.NoError(t, err)
		assert.Equal(t, "Work", gotForeign.Category, "other user's note keeps its category")

		oldCount, err := d.CountNotesInCategory("u1", "Work")
		require.NoError(t, err)
		assert.Zero(t, oldCount)
		newCount, err := d.CountNotesInCategory("u1", "Office")
		require.NoError(t, err)
		assert.Equal(t, 2, newCount)
	})

	t.Run("style-only update does not touch notes", func(t *testing.T) {
		color := "#000000"
		updated, err := d.UpdateCategory("u1", work.ID, nil, &color, nil)
		require.NoError(t, err)
		assert.Equal(t, "Office", updated.Name)
		assert.Equal(t, "#000000", updated.Color)
	})

	t.Run("unknown category", func(t *testing.T) {
		name := "Anything"
		_, err := d.UpdateCategory("u1", "missing", &name, nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteCategoryCascade(t *testing.T) {
	d := newTestDB(t)

	work, err := d.CreateCategory("u1", "Work", "", "")
	require.NoError(t, err)

	n1 := makeNote(t, d, "u1", "a", "content", "Work")
	n2 := makeNote(t, d, "u1", "b", "content", "Work")
	personal := makeNote(t, d, "u1", "c", "content", "Personal")

	require.NoError(t, d.DeleteCategory("u1", work.ID))

	for _, id := range []string{n1.ID, n2.ID} {
		got, err := d.GetNote("u1", id)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultCategory, got.Category, "orphaned notes fall back to Personal")
	}

	got, err := d.GetNote("u1", personal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, got.Category)

	_, err = d.GetCategory("u1", work.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("delete of unknown category", func(t *testing.T) {
		assert.ErrorIs(t, d.DeleteCategory("u1", work.ID), ErrNotFound)
	})
}

func TestUsers(t *testing.T) {
	d := newTestDB(t)

	u, err := d.CreateUser("sam", "sam@example.com", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = d.CreateUser("sam2", "sam@example.com", "hash2")
	assert.ErrorIs(t, err, ErrDuplicate)

	byEmail, err := d.GetUserByEmail("sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := d.GetUser(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam", byID.Username)

	_, err = d.GetUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
