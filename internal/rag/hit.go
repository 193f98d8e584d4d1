// Package rag provides semantic retrieval over the catalog collections
// using chromem-go for vector storage and Gemini for embeddings, with a
// BM25 keyword fallback for course search.
package rag

import (
	"strconv"
	"strings"
)

// Collection names in the vector store.
const (
	CourseCollection        = "courses"
	DiningCollection        = "dining_places"
	EntertainmentCollection = "entertainment_places"
	EventCollection         = "events"
)

// farAwayKm sorts venues with unknown distance last.
const farAwayKm = 999.0

// Hit is one ranked result from a vector store query. Distance is the
// provider's cosine distance; nil when the provider did not report one.
type Hit struct {
	Collection string
	ID         string
	Document   string
	Metadata   map[string]string
	Distance   *float64
}

// Similarity converts the provider distance into a similarity score,
// clamped to [0, 1]. A missing distance yields 0.
func (h Hit) Similarity() float64 {
	if h.Distance == nil {
		return 0.0
	}
	s := 1.0 - *h.Distance
	if s < 0 {
		return 0.0
	}
	if s > 1 {
		return 1.0
	}
	return s
}

// CourseHit is a course result with typed fields extracted from hit
// metadata.
type CourseHit struct {
	Code       string
	Title      string
	Instructor string
	Document   string
	Similarity float64
}

// CourseHitFrom builds a CourseHit from a raw hit. Returns false when the
// required course_code or course_title metadata is missing; callers skip
// such hits instead of failing the whole result set.
func CourseHitFrom(h Hit) (CourseHit, bool) {
	code := strings.TrimSpace(h.Metadata["course_code"])
	title := strings.TrimSpace(h.Metadata["course_title"])
	if code == "" || title == "" {
		return CourseHit{}, false
	}
	return CourseHit{
		Code:       code,
		Title:      title,
		Instructor: h.Metadata["instructor"],
		Document:   h.Document,
		Similarity: h.Similarity(),
	}, true
}

// VenueHit is a dining or entertainment venue result.
type VenueHit struct {
	Name        string
	Category    string
	CuisineType string
	// DistanceKm is the physical distance from campus in kilometers,
	// nil when missing or malformed in metadata.
	DistanceKm *float64
	Price      string
	Address    string
	Tags       string
	Phone      string
	Similarity float64
}

// SortDistance is the merge-sort key for venue hits. Unknown distances
// sort last.
func (v VenueHit) SortDistance() float64 {
	if v.DistanceKm == nil {
		return farAwayKm
	}
	return *v.DistanceKm
}

// VenueHitFrom builds a VenueHit from a raw hit. Returns false when the
// name metadata is missing. A malformed distance_from_campus value leaves
// DistanceKm nil rather than rejecting the hit.
func VenueHitFrom(h Hit) (VenueHit, bool) {
	name := strings.TrimSpace(h.Metadata["name"])
	if name == "" {
		return VenueHit{}, false
	}

	v := VenueHit{
		Name:        name,
		Category:    h.Metadata["category"],
		CuisineType: h.Metadata["cuisine_type"],
		Price:       h.Metadata["price"],
		Address:     h.Metadata["address"],
		Tags:        h.Metadata["tags"],
		Phone:       h.Metadata["phone"],
		Similarity:  h.Similarity(),
	}

	if raw := h.Metadata["distance_from_campus"]; raw != "" {
		if km, err := strconv.ParseFloat(raw, 64); err == nil {
			v.DistanceKm = &km
		}
	}

	return v, true
}

// EventHit is a local event result.
type EventHit struct {
	Title      string
	Category   string
	EventType  string
	EventDate  string
	VenueName  string
	PriceInfo  string
	TicketURL  string
	Similarity float64
}

// EventHitFrom builds an EventHit from a raw hit. Returns false when the
// title metadata is missing.
func EventHitFrom(h Hit) (EventHit, bool) {
	title := strings.TrimSpace(h.Metadata["title"])
	if title == "" {
		return EventHit{}, false
	}
	return EventHit{
		Title:      title,
		Category:   h.Metadata["category"],
		EventType:  h.Metadata["event_type"],
		EventDate:  h.Metadata["event_date"],
		VenueName:  h.Metadata["venue_name"],
		PriceInfo:  h.Metadata["price_info"],
		TicketURL:  h.Metadata["ticket_url"],
		Similarity: h.Similarity(),
	}, true
}
