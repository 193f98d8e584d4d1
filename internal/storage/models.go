package storage

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Conversation is a persisted chat session bound to one assistant type.
type Conversation struct {
	ID            string
	AssistantType string // "academic" or "social"
	Title         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is one turn of a conversation. Messages are append-only; seq
// preserves insertion order within a conversation.
type Message struct {
	ID             string
	ConversationID string
	Seq            int64
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// Course is a catalog row backing exact course-code lookup.
type Course struct {
	Code        string
	Title       string
	Instructor  string
	Description string
}

// Venue is a catalog row for a dining or entertainment place.
type Venue struct {
	ID                 string
	Name               string
	Category           string
	CuisineType        string
	DistanceFromCampus float64 // kilometers
	Price              string  // currency-symbol ladder, e.g. "₺₺"
	Address            string
	Tags               string
	Phone              string
}

// Event is a catalog row for a local event.
type Event struct {
	ID        string
	Title     string
	Category  string
	EventType string
	EventDate string
	VenueName string
	PriceInfo string // currency text, e.g. "400 TL"
	TicketURL string
}
