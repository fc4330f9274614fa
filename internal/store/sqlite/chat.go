package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/store"
)

// CreateConversation inserts a new conversation.
// Returns store.ErrAlreadyExists when the ID is taken.
func (s *Store) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, created_at, updated_at) VALUES (?, ?, ?)`,
		c.ID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// GetConversation returns a conversation by ID.
func (s *Store) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var (
		c                    domain.Conversation
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// foreign_keys is a per-connection pragma, so do not rely on the cascade.
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

// AppendMessage stores msg at the end of its conversation and bumps the
// conversation's updated_at.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		formatTime(msg.CreatedAt), msg.ConversationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_messages (id, conversation_id, role, source, text, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE conversation_id = ?))`,
		msg.ID,
		msg.ConversationID,
		string(msg.Role),
		string(msg.Source),
		msg.Text,
		formatTime(msg.CreatedAt),
		msg.ConversationID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListMessages returns a conversation's messages in the order they were added.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, source, text, created_at
		FROM chat_messages
		WHERE conversation_id = ?
		ORDER BY seq`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ChatMessage
	for rows.Next() {
		var (
			m                  domain.ChatMessage
			role, source, when string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &source, &m.Text, &when); err != nil {
			return nil, err
		}
		m.Role = domain.ChatRole(role)
		m.Source = domain.ChatSource(source)
		if m.CreatedAt, err = parseTime(when); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
