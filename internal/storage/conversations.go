package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagecampus/sage-assistant-go/internal/apperr"
)

// CreateConversation inserts a new conversation and returns it.
func (db *DB) CreateConversation(ctx context.Context, assistantType, title string) (*Conversation, error) {
	if assistantType != "academic" && assistantType != "social" {
		return nil, apperr.NewValidationError("assistant_type", "must be 'academic' or 'social'")
	}
	if title == "" {
		title = "New conversation"
	}

	now := time.Now()
	conv := &Conversation{
		ID:            uuid.NewString(),
		AssistantType: assistantType,
		Title:         title,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO conversations (id, assistant_type, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.AssistantType, conv.Title, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return conv, nil
}

// GetConversation returns a conversation by ID.
// Returns apperr.ErrNotFound if it does not exist.
func (db *DB) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	var createdAt, updatedAt int64

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, assistant_type, title, created_at, updated_at
		 FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.AssistantType, &conv.Title, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	conv.CreatedAt = time.Unix(createdAt, 0)
	conv.UpdatedAt = time.Unix(updatedAt, 0)
	return &conv, nil
}

// ListConversations returns conversations ordered by most recently updated.
// assistantType filters when non-empty.
func (db *DB) ListConversations(ctx context.Context, assistantType string) ([]*Conversation, error) {
	query := `SELECT id, assistant_type, title, created_at, updated_at FROM conversations`
	args := []any{}
	if assistantType != "" {
		query += ` WHERE assistant_type = ?`
		args = append(args, assistantType)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var convs []*Conversation
	for rows.Next() {
		var conv Conversation
		var createdAt, updatedAt int64
		if err := rows.Scan(&conv.ID, &conv.AssistantType, &conv.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt = time.Unix(createdAt, 0)
		conv.UpdatedAt = time.Unix(updatedAt, 0)
		convs = append(convs, &conv)
	}

	return convs, rows.Err()
}

// UpdateConversationTitle renames a conversation.
func (db *DB) UpdateConversationTitle(ctx context.Context, id, title string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteConversation removes a conversation and its messages (cascade).
func (db *DB) DeleteConversation(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AppendMessage appends a turn to a conversation. Append-only: existing
// messages are never mutated. The sequence number is assigned inside the
// insert so concurrent appends to the same conversation stay ordered.
func (db *DB) AppendMessage(ctx context.Context, conversationID string, role Role, content string) (*Message, error) {
	now := time.Now()
	msg := &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?), ?, ?, ?)
		 RETURNING seq`,
		msg.ID, conversationID, conversationID, string(role), content, now.Unix(),
	).Scan(&msg.Seq)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now.Unix(), conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	return msg, nil
}

// RecentMessages returns the most recent limit messages of a conversation in
// chronological order. limit <= 0 returns the whole conversation.
func (db *DB) RecentMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	query := `SELECT id, conversation_id, seq, role, content, created_at
	          FROM messages WHERE conversation_id = ? ORDER BY seq DESC`
	args := []any{conversationID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []*Message
	for rows.Next() {
		var msg Message
		var role string
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Seq, &role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = Role(role)
		msg.CreatedAt = time.Unix(createdAt, 0)
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, nil
}

// CountMessages returns the number of messages in a conversation.
func (db *DB) CountMessages(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
