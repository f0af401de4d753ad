package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"drift-notes/internal/models"
)

// CreateUser persists a user. Uniqueness rides on the email column's
// UNIQUE constraint, so concurrent registrations cannot both succeed.
func (d *DB) CreateUser(username, email, passwordHash string) (*models.User, error) {
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := d.conn.Exec(`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *DB) GetUser(id string) (*models.User, error) {
	return d.scanUser(d.conn.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	return d.scanUser(d.conn.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (d *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var createdAt int64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}
