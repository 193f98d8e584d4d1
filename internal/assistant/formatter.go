package assistant

import (
	"fmt"
	"strings"

	"github.com/sagecampus/sage-assistant-go/internal/rag"
)

// courseBodyLimit caps how much of a course document goes into the
// context block.
const courseBodyLimit = 500

// FormatCourses renders course hits into the context block appended to
// the user turn. Empty input yields an empty string so the turn carries
// no context appendage.
func FormatCourses(hits []rag.CourseHit) string {
	if len(hits) == 0 {
		return ""
	}

	parts := []string{"RELEVANT COURSES (Semantic Search Results):\n"}
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("\n[Relevance: %.1f%%] %s - %s",
			hit.Similarity*100, hit.Code, hit.Title))
		if hit.Instructor != "" {
			parts = append(parts, fmt.Sprintf("Instructor: %s", hit.Instructor))
		}
		if hit.Document != "" {
			parts = append(parts, fmt.Sprintf("Content: %s...\n", truncateRunes(hit.Document, courseBodyLimit)))
		}
	}

	return strings.Join(parts, "\n")
}

// FormatVenues renders venue hits, assumed already sorted ascending by
// distance from campus. Distances under 1 km display as integer meters,
// otherwise as kilometers with exactly one decimal.
func FormatVenues(hits []rag.VenueHit) string {
	if len(hits) == 0 {
		return ""
	}

	parts := []string{"NEARBY VENUES (from database):\n"}
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("\n[Relevance: %.1f%%] %s", hit.Similarity*100, hit.Name))
		if hit.Category != "" {
			parts = append(parts, fmt.Sprintf("Category: %s", hit.Category))
		}
		if hit.CuisineType != "" {
			parts = append(parts, fmt.Sprintf("Cuisine: %s", hit.CuisineType))
		}
		if hit.DistanceKm != nil {
			parts = append(parts, fmt.Sprintf("Distance: %s from campus", formatDistance(*hit.DistanceKm)))
		}
		if hit.Price != "" {
			parts = append(parts, fmt.Sprintf("Price: %s", hit.Price))
		}
		if hit.Address != "" {
			parts = append(parts, fmt.Sprintf("Address: %s", hit.Address))
		}
		if hit.Tags != "" {
			parts = append(parts, fmt.Sprintf("Features: %s", hit.Tags))
		}
		if hit.Phone != "" {
			parts = append(parts, fmt.Sprintf("Phone: %s", hit.Phone))
		}
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// FormatEvents renders event hits. Ticket URLs pass through verbatim.
func FormatEvents(hits []rag.EventHit) string {
	if len(hits) == 0 {
		return ""
	}

	parts := []string{"UPCOMING EVENTS IN ANKARA:\n"}
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("\n[Relevance: %.1f%%] %s", hit.Similarity*100, hit.Title))
		if hit.Category != "" {
			parts = append(parts, fmt.Sprintf("Category: %s", hit.Category))
		}
		if hit.EventType != "" {
			parts = append(parts, fmt.Sprintf("Type: %s", hit.EventType))
		}
		if hit.EventDate != "" {
			parts = append(parts, fmt.Sprintf("Date: %s", hit.EventDate))
		}
		if hit.VenueName != "" {
			parts = append(parts, fmt.Sprintf("Venue: %s", hit.VenueName))
		}
		if hit.PriceInfo != "" {
			parts = append(parts, fmt.Sprintf("Price: %s", hit.PriceInfo))
		}
		if hit.TicketURL != "" {
			parts = append(parts, fmt.Sprintf("Ticket URL: %s", hit.TicketURL))
		}
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// formatDistance renders a km distance as "NNN meters" under 1 km or
// "N.N km" at or above it.
func formatDistance(km float64) string {
	if km < 1.0 {
		return fmt.Sprintf("%d meters", int(km*1000))
	}
	return fmt.Sprintf("%.1f km", km)
}

// truncateRunes cuts s to at most limit characters without splitting a
// multi-byte rune.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
