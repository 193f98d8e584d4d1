package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestHitSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		distance *float64
		want     float64
	}{
		{"nil distance", nil, 0.0},
		{"zero distance", floatPtr(0.0), 1.0},
		{"typical distance", floatPtr(0.25), 0.75},
		{"distance one", floatPtr(1.0), 0.0},
		{"distance above one clamps to zero", floatPtr(1.7), 0.0},
		{"negative distance clamps to one", floatPtr(-0.3), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Hit{Distance: tt.distance}
			assert.InDelta(t, tt.want, h.Similarity(), 1e-9)
		})
	}
}

func TestCourseHitFrom(t *testing.T) {
	h := Hit{
		Document: "Introductory programming with Python.",
		Metadata: map[string]string{
			"course_code":  "CMPE 113",
			"course_title": "Fundamentals of Programming",
			"instructor":   "E. Demir",
		},
		Distance: floatPtr(0.2),
	}

	course, ok := CourseHitFrom(h)
	require.True(t, ok)
	assert.Equal(t, "CMPE 113", course.Code)
	assert.Equal(t, "Fundamentals of Programming", course.Title)
	assert.Equal(t, "E. Demir", course.Instructor)
	assert.InDelta(t, 0.8, course.Similarity, 1e-9)
}

func TestCourseHitFromMissingCode(t *testing.T) {
	h := Hit{Metadata: map[string]string{"course_title": "Orphan"}}
	_, ok := CourseHitFrom(h)
	assert.False(t, ok)
}

func TestVenueHitFrom(t *testing.T) {
	h := Hit{
		Metadata: map[string]string{
			"name":                 "Off Cafe",
			"category":             "Cafe",
			"distance_from_campus": "0.13",
			"price":                "₺₺",
		},
	}

	venue, ok := VenueHitFrom(h)
	require.True(t, ok)
	require.NotNil(t, venue.DistanceKm)
	assert.InDelta(t, 0.13, *venue.DistanceKm, 1e-9)
	assert.InDelta(t, 0.13, venue.SortDistance(), 1e-9)
}

func TestVenueHitFromMalformedDistance(t *testing.T) {
	h := Hit{
		Metadata: map[string]string{
			"name":                 "Mystery Bar",
			"distance_from_campus": "close-ish",
		},
	}

	venue, ok := VenueHitFrom(h)
	require.True(t, ok)
	assert.Nil(t, venue.DistanceKm)
	assert.InDelta(t, farAwayKm, venue.SortDistance(), 1e-9)
}

func TestVenueHitFromMissingName(t *testing.T) {
	_, ok := VenueHitFrom(Hit{Metadata: map[string]string{"category": "Cafe"}})
	assert.False(t, ok)
}

func TestEventHitFrom(t *testing.T) {
	h := Hit{
		Metadata: map[string]string{
			"title":      "Jazz Night",
			"event_date": "2025-11-02",
			"price_info": "400 TL",
			"ticket_url": "https://tickets.example.com/jazz",
		},
	}

	event, ok := EventHitFrom(h)
	require.True(t, ok)
	assert.Equal(t, "Jazz Night", event.Title)
	assert.Equal(t, "https://tickets.example.com/jazz", event.TicketURL)

	_, ok = EventHitFrom(Hit{Metadata: map[string]string{"category": "music"}})
	assert.False(t, ok)
}
