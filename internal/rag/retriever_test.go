package rag

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

type stubSearcher struct {
	hits    map[string][]Hit
	err     error
	enabled bool
}

func (s *stubSearcher) Query(_ context.Context, collection, _ string, _ int) ([]Hit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hits[collection], nil
}

func (s *stubSearcher) IsEnabled() bool { return s.enabled }

type stubCatalog struct {
	courses map[string]*storage.Course
}

func (c *stubCatalog) CourseByCode(_ context.Context, code string) (*storage.Course, error) {
	course, ok := c.courses[storage.NormalizeCourseCode(code)]
	if !ok {
		return nil, nil
	}
	return course, nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func courseHit(code, title string, distance float64) Hit {
	return Hit{
		Collection: CourseCollection,
		Metadata:   map[string]string{"course_code": code, "course_title": title},
		Distance:   &distance,
	}
}

func venueHit(name string, distanceKm string) Hit {
	return Hit{
		Metadata: map[string]string{"name": name, "distance_from_campus": distanceKm},
	}
}

func TestSearchCoursesExactMatchFirst(t *testing.T) {
	searcher := &stubSearcher{
		enabled: true,
		hits: map[string][]Hit{
			CourseCollection: {
				courseHit("MATH 101", "Calculus I", 0.3),
				courseHit("CMPE 113", "Fundamentals of Programming", 0.4),
				courseHit("PHYS 100", "Physics I", 0.5),
			},
		},
	}
	catalog := &stubCatalog{courses: map[string]*storage.Course{
		"CMPE113": {Code: "CMPE 113", Title: "Fundamentals of Programming", Instructor: "E. Demir"},
	}}

	r := NewRetriever(searcher, catalog, nil, nil, testLogger(), RetrieverConfig{CourseTopK: 3})
	results := r.SearchCourses(context.Background(), "who teaches CMPE 113?")

	require.Len(t, results, 3)
	assert.Equal(t, "CMPE 113", results[0].Code)
	assert.Equal(t, 1.0, results[0].Similarity)
	// The semantic duplicate of the exact hit is dropped, not double-listed.
	assert.Equal(t, "MATH 101", results[1].Code)
	assert.Equal(t, "PHYS 100", results[2].Code)
}

func TestSearchCoursesNoCodeNoShortCircuit(t *testing.T) {
	searcher := &stubSearcher{
		enabled: true,
		hits: map[string][]Hit{
			CourseCollection: {courseHit("MATH 101", "Calculus I", 0.3)},
		},
	}
	catalog := &stubCatalog{courses: map[string]*storage.Course{}}

	r := NewRetriever(searcher, catalog, nil, nil, testLogger(), RetrieverConfig{CourseTopK: 3})
	results := r.SearchCourses(context.Background(), "easy math electives")

	require.Len(t, results, 1)
	assert.Equal(t, "MATH 101", results[0].Code)
	assert.InDelta(t, 0.7, results[0].Similarity, 1e-9)
}

func TestSearchCoursesKeywordFallback(t *testing.T) {
	keyword := NewCourseIndex(testLogger())
	require.NoError(t, keyword.Initialize([]*storage.Course{
		{Code: "CMPE 113", Title: "Fundamentals of Programming", Description: "Python programming basics"},
		{Code: "HIST 201", Title: "Ottoman History", Description: "Empire and reform"},
	}))

	r := NewRetriever(&stubSearcher{enabled: false}, nil, keyword, nil, testLogger(), RetrieverConfig{CourseTopK: 3})
	results := r.SearchCourses(context.Background(), "programming python")

	require.NotEmpty(t, results)
	assert.Equal(t, "CMPE 113", results[0].Code)
	assert.Greater(t, results[0].Similarity, 0.9)
}

func TestSearchCoursesProviderErrorFallsBack(t *testing.T) {
	keyword := NewCourseIndex(testLogger())
	require.NoError(t, keyword.Initialize([]*storage.Course{
		{Code: "CMPE 113", Title: "Fundamentals of Programming", Description: "Python programming basics"},
	}))

	searcher := &stubSearcher{enabled: true, err: errors.New("collection missing")}
	r := NewRetriever(searcher, nil, keyword, nil, testLogger(), RetrieverConfig{CourseTopK: 3})
	results := r.SearchCourses(context.Background(), "programming")

	require.Len(t, results, 1)
	assert.Equal(t, "CMPE 113", results[0].Code)
}

func TestSearchVenuesMergesAndSortsByDistance(t *testing.T) {
	searcher := &stubSearcher{
		enabled: true,
		hits: map[string][]Hit{
			DiningCollection: {
				venueHit("Campus Grill", "1.2"),
				venueHit("Off Cafe", "0.13"),
			},
			EntertainmentCollection: {
				venueHit("Cinema Plaza", "0.8"),
				venueHit("Bowling Hall", "oops"),
			},
		},
	}

	r := NewRetriever(searcher, nil, nil, nil, testLogger(), RetrieverConfig{VenueTopK: 10})
	results := r.SearchVenues(context.Background(), "somewhere to hang out")

	require.Len(t, results, 4)
	assert.Equal(t, "Off Cafe", results[0].Name)
	assert.Equal(t, "Cinema Plaza", results[1].Name)
	assert.Equal(t, "Campus Grill", results[2].Name)
	// Malformed distance sorts last instead of dropping the venue.
	assert.Equal(t, "Bowling Hall", results[3].Name)
}

func TestSearchVenuesTruncatesToTopK(t *testing.T) {
	searcher := &stubSearcher{
		enabled: true,
		hits: map[string][]Hit{
			DiningCollection: {
				venueHit("A", "0.1"), venueHit("B", "0.2"), venueHit("C", "0.3"),
			},
		},
	}

	r := NewRetriever(searcher, nil, nil, nil, testLogger(), RetrieverConfig{VenueTopK: 2})
	results := r.SearchVenues(context.Background(), "food")

	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Name)
	assert.Equal(t, "B", results[1].Name)
}

func TestSearchVenuesProviderErrorYieldsEmpty(t *testing.T) {
	searcher := &stubSearcher{enabled: true, err: errors.New("network down")}
	r := NewRetriever(searcher, nil, nil, nil, testLogger(), RetrieverConfig{VenueTopK: 10})

	assert.Empty(t, r.SearchVenues(context.Background(), "food"))
}

func TestSearchEvents(t *testing.T) {
	searcher := &stubSearcher{
		enabled: true,
		hits: map[string][]Hit{
			EventCollection: {
				{Metadata: map[string]string{"title": "Jazz Night", "ticket_url": "https://t.example/jazz"}},
				{Metadata: map[string]string{"category": "no title, skipped"}},
			},
		},
	}

	r := NewRetriever(searcher, nil, nil, nil, testLogger(), RetrieverConfig{EventTopK: 5})
	results := r.SearchEvents(context.Background(), "concerts this weekend")

	require.Len(t, results, 1)
	assert.Equal(t, "Jazz Night", results[0].Title)
}

func TestSearchEventsDisabledSearcher(t *testing.T) {
	r := NewRetriever(nil, nil, nil, nil, testLogger(), RetrieverConfig{EventTopK: 5})
	assert.Empty(t, r.SearchEvents(context.Background(), "concerts"))
}
