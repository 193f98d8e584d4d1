package rag

import (
	"context"
	"regexp"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sagecampus/sage-assistant-go/internal/apperr"
	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/metrics"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// courseCodePattern matches a course code like "CMPE 113" or "cmpe113"
// inside a query.
var courseCodePattern = regexp.MustCompile(`\b[A-Za-z]{2,4}\s?\d{3}\b`)

// Searcher is the semantic search provider behind the retriever.
type Searcher interface {
	Query(ctx context.Context, collection, query string, topK int) ([]Hit, error)
	IsEnabled() bool
}

// CourseLookup resolves exact course codes against the catalog.
type CourseLookup interface {
	CourseByCode(ctx context.Context, code string) (*storage.Course, error)
}

// Retriever answers domain queries against the vector store, with an
// exact-match short-circuit for course codes and a BM25 keyword fallback
// when semantic search is unavailable. Retrieval is always best-effort:
// every failure degrades to an empty result set.
type Retriever struct {
	searcher Searcher
	catalog  CourseLookup
	keyword  *CourseIndex
	metrics  *metrics.Metrics
	logger   *logger.Logger

	courseTopK int
	venueTopK  int
	eventTopK  int
}

// RetrieverConfig holds per-domain result caps.
type RetrieverConfig struct {
	CourseTopK int
	VenueTopK  int
	EventTopK  int
}

// NewRetriever creates a retriever. searcher may be nil (semantic search
// disabled); catalog and keyword may be nil when the catalog is empty.
func NewRetriever(searcher Searcher, catalog CourseLookup, keyword *CourseIndex, m *metrics.Metrics, log *logger.Logger, cfg RetrieverConfig) *Retriever {
	return &Retriever{
		searcher:   searcher,
		catalog:    catalog,
		keyword:    keyword,
		metrics:    m,
		logger:     log.WithModule("retriever"),
		courseTopK: cfg.CourseTopK,
		venueTopK:  cfg.VenueTopK,
		eventTopK:  cfg.EventTopK,
	}
}

// SearchCourses retrieves courses relevant to the query. A course code in
// the query short-circuits to an exact catalog lookup: the exact hit gets
// similarity 1.0 and the top spot, semantic results fill the remaining
// slots, deduplicated by code. Falls back to BM25 keyword search when the
// vector store is disabled or fails.
func (r *Retriever) SearchCourses(ctx context.Context, query string) []CourseHit {
	topK := r.courseTopK

	var results []CourseHit
	if exact := r.exactCourseMatch(ctx, query); exact != nil {
		results = append(results, *exact)
		topK--
	}

	semantic, ok := r.semanticCourses(ctx, query, topK)
	if !ok {
		semantic = r.keywordCourses(query, topK)
	}

	seen := make(map[string]bool, len(results))
	for _, hit := range results {
		seen[storage.NormalizeCourseCode(hit.Code)] = true
	}
	for _, hit := range semantic {
		code := storage.NormalizeCourseCode(hit.Code)
		if seen[code] {
			continue
		}
		seen[code] = true
		results = append(results, hit)
	}

	if len(results) > r.courseTopK {
		results = results[:r.courseTopK]
	}
	return results
}

// exactCourseMatch looks up the first course code found in the query.
// Returns nil when the query carries no code or the catalog has no row.
func (r *Retriever) exactCourseMatch(ctx context.Context, query string) *CourseHit {
	if r.catalog == nil {
		return nil
	}

	code := courseCodePattern.FindString(query)
	if code == "" {
		return nil
	}

	course, err := r.catalog.CourseByCode(ctx, code)
	if err != nil {
		r.logger.WithError(err).WithField("code", code).Warn("Exact course lookup failed")
		return nil
	}
	if course == nil {
		return nil
	}

	if r.metrics != nil {
		r.metrics.ExactMatchHitsTotal.Inc()
	}

	return &CourseHit{
		Code:       course.Code,
		Title:      course.Title,
		Instructor: course.Instructor,
		Document:   course.Description,
		Similarity: 1.0,
	}
}

// semanticCourses queries the vector store. The second return value is
// false when semantic search is unavailable or produced nothing, telling
// the caller to fall back to keyword search.
func (r *Retriever) semanticCourses(ctx context.Context, query string, topK int) ([]CourseHit, bool) {
	if topK <= 0 {
		return nil, true
	}
	if r.searcher == nil || !r.searcher.IsEnabled() {
		return nil, false
	}

	hits := r.query(ctx, CourseCollection, query, topK)
	if hits == nil {
		return nil, false
	}

	results := make([]CourseHit, 0, len(hits))
	for _, hit := range hits {
		if course, ok := CourseHitFrom(hit); ok {
			results = append(results, course)
		}
	}
	return results, true
}

func (r *Retriever) keywordCourses(query string, topK int) []CourseHit {
	if topK <= 0 || !r.keyword.IsEnabled() {
		return nil
	}

	results, err := r.keyword.Search(query, topK)
	if err != nil {
		r.logger.WithError(err).Warn("Keyword course search failed")
		return nil
	}
	return results
}

// SearchVenues retrieves venues for the query from the dining and
// entertainment collections concurrently, merges both result sets, sorts
// ascending by physical distance from campus and truncates to the venue
// cap. A failing collection contributes an empty set.
func (r *Retriever) SearchVenues(ctx context.Context, query string) []VenueHit {
	var dining, entertainment []VenueHit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dining = r.venuesFrom(gctx, DiningCollection, query)
		return nil
	})
	g.Go(func() error {
		entertainment = r.venuesFrom(gctx, EntertainmentCollection, query)
		return nil
	})
	_ = g.Wait()

	merged := make([]VenueHit, 0, len(dining)+len(entertainment))
	merged = append(merged, dining...)
	merged = append(merged, entertainment...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SortDistance() < merged[j].SortDistance()
	})

	if len(merged) > r.venueTopK {
		merged = merged[:r.venueTopK]
	}
	return merged
}

func (r *Retriever) venuesFrom(ctx context.Context, collection, query string) []VenueHit {
	hits := r.query(ctx, collection, query, r.venueTopK)

	results := make([]VenueHit, 0, len(hits))
	for _, hit := range hits {
		if venue, ok := VenueHitFrom(hit); ok {
			results = append(results, venue)
		}
	}
	return results
}

// SearchEvents retrieves local events for the query.
func (r *Retriever) SearchEvents(ctx context.Context, query string) []EventHit {
	hits := r.query(ctx, EventCollection, query, r.eventTopK)

	results := make([]EventHit, 0, len(hits))
	for _, hit := range hits {
		if event, ok := EventHitFrom(hit); ok {
			results = append(results, event)
		}
	}
	return results
}

// query wraps one provider call with metrics. Returns nil on any provider
// error; retrieval never propagates failures.
func (r *Retriever) query(ctx context.Context, collection, query string, topK int) []Hit {
	if r.searcher == nil || !r.searcher.IsEnabled() {
		return nil
	}

	start := time.Now()
	hits, err := r.searcher.Query(ctx, collection, query, topK)
	duration := time.Since(start)

	if r.metrics != nil {
		r.metrics.RetrievalDurationSeconds.WithLabelValues(collection).Observe(duration.Seconds())
	}

	if err != nil {
		if r.metrics != nil {
			r.metrics.RetrievalErrorsTotal.WithLabelValues(collection).Inc()
		}
		r.logger.WithError(apperr.NewRetrievalError(collection, err)).Warn("Retrieval failed, continuing without context")
		return nil
	}

	if r.metrics != nil {
		r.metrics.RetrievalHitsTotal.WithLabelValues(collection).Add(float64(len(hits)))
	}
	return hits
}
