package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createConversationTables(db); err != nil {
		return err
	}
	return createCatalogTables(db)
}

func createConversationTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		assistant_type TEXT CHECK(assistant_type IN ('academic', 'social')) NOT NULL,
		title TEXT NOT NULL DEFAULT 'New conversation',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
	CREATE INDEX IF NOT EXISTS idx_conversations_assistant_type ON conversations(assistant_type);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		role TEXT CHECK(role IN ('user', 'assistant', 'system')) NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(conversation_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create conversation tables: %w", err)
	}

	return nil
}

func createCatalogTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS courses (
		code TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		instructor TEXT,
		description TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_courses_title ON courses(title);

	CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		cuisine_type TEXT,
		distance_from_campus REAL,
		price TEXT,
		address TEXT,
		tags TEXT,
		phone TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_venues_category ON venues(category);
	CREATE INDEX IF NOT EXISTS idx_venues_distance ON venues(distance_from_campus);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT,
		event_type TEXT,
		event_date TEXT,
		venue_name TEXT,
		price_info TEXT,
		ticket_url TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}

	return nil
}
