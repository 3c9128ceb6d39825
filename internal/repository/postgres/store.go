// Package postgres persists submissions in a contact_messages table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"contact-service/internal/model"
)

// Store implements model.MessageStore against PostgreSQL.
type Store struct{ db *sql.DB }

// NewStore creates a Postgres-backed message store.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// EnsureSchema creates the contact_messages table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS contact_messages (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			message    TEXT NOT NULL,
			ip         TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure contact_messages schema: %w", err)
	}
	return nil
}

// Append inserts the submission and fills in its generated id.
func (s *Store) Append(ctx context.Context, sub *model.Submission) error {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, message, ip, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, sub.Name, sub.Email, sub.Message, sub.IP, sub.CreatedAt).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	sub.ID = strconv.FormatInt(id, 10)
	return nil
}

// List returns all submissions, most recent first.
func (s *Store) List(ctx context.Context) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, message, ip, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		var (
			id  int64
			sub model.Submission
		)
		if err := rows.Scan(&id, &sub.Name, &sub.Email, &sub.Message, &sub.IP, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		sub.ID = strconv.FormatInt(id, 10)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact messages: %w", err)
	}
	return out, nil
}
