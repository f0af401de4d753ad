package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"drift-notes/internal/models"
)

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	var createdAt, updatedAt int64
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	c.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &c, nil
}

const categoryColumns = `id, user_id, name, color, icon, created_at, updated_at`

// ListCategories returns the user's persisted categories sorted by
// name.
func (d *DB) ListCategories(userID string) ([]models.Category, error) {
	rows, err := d.conn.Query(`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (d *DB) GetCategory(userID, id string) (*models.Category, error) {
	return scanCategory(d.conn.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, userID))
}

func (d *DB) GetCategoryByName(userID, name string) (*models.Category, error) {
	return scanCategory(d.conn.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND name = ?`, userID, name))
}

// CreateCategory persists a category, filling color and icon from the
// defaults table when empty. Returns ErrDuplicate if the user already
// has a category with that name; the per-user UNIQUE constraint does
// the checking, so two concurrent creates cannot both succeed.
func (d *DB) CreateCategory(userID, name, color, icon string) (*models.Category, error) {
	if color == "" {
		color = models.DefaultColor(name)
	}
	if icon == "" {
		icon = models.DefaultIcon(name)
	}

	now := time.Now().UTC()
	c := &models.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := d.conn.Exec(`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Color, c.Icon, c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EnsureCategory creates a category with default styling if the user
// does not have one with that name. The literal default name is never
// persisted for this path.
func (d *DB) EnsureCategory(userID, name string) error {
	if name == "" || name == models.DefaultCategory {
		return nil
	}
	_, err := d.CreateCategory(userID, name, "", "")
	if err == ErrDuplicate {
		return nil
	}
	return err
}

// UpdateCategory applies the supplied fields (nil means keep). When the
// name changes, every note holding the old name is rewritten to the new
// one in the same transaction, so a crash cannot strand notes on a
// renamed-away name. Returns ErrDuplicate if the new name is taken.
func (d *DB) UpdateCategory(userID, id string, name, color, icon *string) (*models.Category, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c, err := scanCategory(tx.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return nil, err
	}

	oldName := c.Name
	if name != nil {
		c.Name = *name
	}
	if color != nil {
		c.Color = *color
	}
	if icon != nil {
		c.Icon = *icon
	}

	c.UpdatedAt = time.Now().UTC()
	// A rename onto a taken name trips the per-user UNIQUE constraint
	// here, before any note is touched, and the transaction rolls back.
	_, err = tx.Exec(`UPDATE categories SET name = ?, color = ?, icon = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Color, c.Icon, c.UpdatedAt.UnixMilli(), id, userID)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}

	if c.Name != oldName {
		if _, err := tx.Exec(`UPDATE notes SET category = ? WHERE user_id = ? AND category = ?`,
			c.Name, userID, oldName); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes the category after reassigning its notes to
// the default category, in one transaction. No note is ever left
// pointing at a name no category concept holds.
func (d *DB) DeleteCategory(userID, id string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c, err := scanCategory(tx.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE notes SET category = ? WHERE user_id = ? AND category = ?`,
		models.DefaultCategory, userID, c.Name); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return err
	}

	return tx.Commit()
}
