package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Document is one user's mirrored aggregate. Body is stored verbatim.
type Document struct {
	UserID    string
	Version   int64
	Body      json.RawMessage
	UpdatedAt time.Time
}

type DocumentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db, now: time.Now}
}

func (r *DocumentRepository) Get(ctx context.Context, userID string) (*Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, version, body, updated_at FROM documents WHERE user_id = ?`, userID)

	var (
		doc       Document
		body      string
		updatedAt string
	)
	if err := row.Scan(&doc.UserID, &doc.Version, &body, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.Body = json.RawMessage(body)

	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse document updated_at: %w", err)
	}
	doc.UpdatedAt = t
	return &doc, nil
}

// Put replaces the user's document and bumps its version.
func (r *DocumentRepository) Put(ctx context.Context, userID string, body json.RawMessage) (*Document, error) {
	now := r.now().UTC()
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO documents (user_id, version, body, updated_at) VALUES (?, 1, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			version = documents.version + 1,
			body = excluded.body,
			updated_at = excluded.updated_at
		 RETURNING version`,
		userID, string(body), formatTime(now),
	)

	var version int64
	if err := row.Scan(&version); err != nil {
		return nil, fmt.Errorf("put document: %w", err)
	}
	return &Document{
		UserID:    userID,
		Version:   version,
		Body:      append(json.RawMessage{}, body...),
		UpdatedAt: now,
	}, nil
}
