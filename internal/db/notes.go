package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"drift-notes/internal/models"
)

// ListOptions narrows and pages a note listing. The literal "All"
// category and "all" type disable their filters.
type ListOptions struct {
	Category string
	Type     string
	Search   string
	Page     int
	Limit    int
}

const DefaultPageLimit = 50

// Clamp normalizes pagination inputs: page below 1 becomes 1, a
// non-positive limit falls back to the default.
func (o *ListOptions) Clamp() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageLimit
	}
}

const noteColumns = `id, user_id, title, content, category, type, priority, reminder, is_completed, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var n models.Note
	var reminder sql.NullInt64
	var completed int
	var tagsJSON string
	var createdAt, updatedAt int64

	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.Type,
		&n.Priority, &reminder, &completed, &tagsJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if reminder.Valid {
		t := time.UnixMilli(reminder.Int64).UTC()
		n.Reminder = &t
	}
	n.IsCompleted = completed != 0
	n.Tags = []string{}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
			return nil, err
		}
	}
	n.CreatedAt = time.UnixMilli(createdAt).UTC()
	n.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &n, nil
}

func noteArgs(n *models.Note) (reminder any, completed int, tagsJSON string, err error) {
	if n.Reminder != nil {
		reminder = n.Reminder.UnixMilli()
	}
	if n.IsCompleted {
		completed = 1
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, 0, "", err
	}
	return reminder, completed, string(raw), nil
}

// CreateNote persists a note, assigning its id and timestamps.
func (d *DB) CreateNote(n *models.Note) error {
	n.ID = uuid.NewString()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	reminder, completed, tagsJSON, err := noteArgs(n)
	if err != nil {
		return err
	}

	_, err = d.conn.Exec(`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, n.Category, n.Type, n.Priority,
		reminder, completed, tagsJSON, n.CreatedAt.UnixMilli(), n.UpdatedAt.UnixMilli())
	return err
}

func (d *DB) GetNote(userID, id string) (*models.Note, error) {
	return scanNote(d.conn.QueryRow(
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID))
}

// UpdateNote rewrites every mutable field of the note and bumps its
// last-modified timestamp. The caller supplies the already-merged
// record.
func (d *DB) UpdateNote(n *models.Note) error {
	n.UpdatedAt = time.Now().UTC()

	reminder, completed, tagsJSON, err := noteArgs(n)
	if err != nil {
		return err
	}

	res, err := d.conn.Exec(`UPDATE notes SET title = ?, content = ?, category = ?, type = ?, priority = ?,
		reminder = ?, is_completed = ?, tags = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		n.Title, n.Content, n.Category, n.Type, n.Priority,
		reminder, completed, tagsJSON, n.UpdatedAt.UnixMilli(), n.ID, n.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteNote(userID, id string) error {
	res, err := d.conn.Exec(`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNotes removes the given ids that belong to the user and reports
// how many were actually deleted. Unknown or foreign ids are ignored.
func (d *DB) DeleteNotes(userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	res, err := d.conn.Exec(`DELETE FROM notes WHERE id IN (`+placeholders+`) AND user_id = ?`, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// ListNotes returns one page of the user's notes, newest-updated first,
// along with the total match count.
func (d *DB) ListNotes(userID string, opts ListOptions) ([]models.Note, int, error) {
	opts.Clamp()

	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.Category != "" && opts.Category != "All" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.Type != "" && opts.Type != "all" {
		where = append(where, "type = ?")
		args = append(args, opts.Type)
	}
	if opts.Search != "" {
		// Tags are matched per element, not against the serialized
		// list, so JSON punctuation can never produce a false hit.
		term := strings.ToLower(opts.Search)
		where = append(where, `(instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0
			OR EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE instr(lower(json_each.value), ?) > 0))`)
		args = append(args, term, term, term)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (opts.Page - 1) * opts.Limit
	pageArgs := append(args, opts.Limit, offset)
	rows, err := d.conn.Query(`SELECT `+noteColumns+` FROM notes WHERE `+cond+
		` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, *n)
	}
	return notes, total, rows.Err()
}

// RecentNotes returns up to limit notes modified at or after since,
// newest first.
func (d *DB) RecentNotes(userID string, since time.Time, limit int) ([]models.Note, error) {
	rows, err := d.conn.Query(`SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? AND updated_at >= ?
		ORDER BY updated_at DESC, id LIMIT ?`, userID, since.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// NoteStats computes the user's aggregate counts in one pass.
func (d *DB) NoteStats(userID string) (models.NoteStats, error) {
	var s models.NoteStats
	err := d.conn.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN type = 'short' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN type = 'long' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN is_completed = 1 THEN 1 ELSE 0 END), 0)
		FROM notes WHERE user_id = ?`, userID).
		Scan(&s.TotalNotes, &s.ShortNotes, &s.LongNotes, &s.CompletedNotes)
	return s, err
}

// CategoryCounts returns the per-category note breakdown, largest
// first.
func (d *DB) CategoryCounts(userID string) ([]models.CategoryCount, error) {
	rows, err := d.conn.Query(`SELECT category, COUNT(*) AS cnt FROM notes
		WHERE user_id = ? GROUP BY category ORDER BY cnt DESC, category`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountNotesInCategory returns the live note count for one category
// name.
func (d *DB) CountNotesInCategory(userID, name string) (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE user_id = ? AND category = ?`,
		userID, name).Scan(&count)
	return count, err
}
