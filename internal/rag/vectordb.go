package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/sagecampus/sage-assistant-go/internal/genai"
	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// queryPrefix is prepended to search queries before embedding. The
// embedding model is trained with asymmetric query/passage prefixes.
const queryPrefix = "query: "

// embedConcurrency bounds parallel embedding calls during indexing.
const embedConcurrency = 4

// VectorDB wraps chromem-go for the catalog collections.
type VectorDB struct {
	db            *chromem.DB
	collections   map[string]*chromem.Collection
	embeddingFunc chromem.EmbeddingFunc
	logger        *logger.Logger
	mu            sync.RWMutex
	initialized   bool
}

// NewVectorDB creates the vector database with persistence under
// persistDir. Returns nil if apiKey is empty (semantic search disabled).
func NewVectorDB(persistDir, apiKey string, log *logger.Logger) (*VectorDB, error) {
	embedder := genai.NewEmbeddingClient(apiKey)
	if !embedder.IsConfigured() {
		log.Info("Gemini API key not configured, semantic search disabled")
		return nil, nil
	}

	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create chromem database: %w", err)
	}

	return &VectorDB{
		db:            db,
		collections:   make(map[string]*chromem.Collection),
		embeddingFunc: embedder.Func(),
		logger:        log,
	}, nil
}

// Initialize opens or creates every catalog collection. Call once after
// construction, before any Query or Index call.
func (v *VectorDB) Initialize(_ context.Context) error {
	if v == nil {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	names := []string{CourseCollection, DiningCollection, EntertainmentCollection, EventCollection}
	for _, name := range names {
		collection, err := v.db.GetOrCreateCollection(name, nil, v.embeddingFunc)
		if err != nil {
			return fmt.Errorf("failed to get/create collection %s: %w", name, err)
		}
		v.collections[name] = collection
		if count := collection.Count(); count > 0 {
			v.logger.WithFields(map[string]any{
				"collection": name,
				"count":      count,
			}).Info("Loaded existing embeddings from disk")
		}
	}

	v.initialized = true
	return nil
}

// Query performs semantic search in the named collection. Results carry
// the provider distance; ordering follows descending similarity. An
// unknown collection or empty query yields an empty result, not an error.
func (v *VectorDB) Query(ctx context.Context, collection, query string, topK int) ([]Hit, error) {
	if v == nil || strings.TrimSpace(query) == "" || topK <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	col, ok := v.collections[collection]
	if !ok || col == nil {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	// chromem-go returns an error when asking for more results than the
	// collection holds.
	docCount := col.Count()
	if docCount == 0 {
		return nil, nil
	}
	if topK > docCount {
		topK = docCount
	}

	results, err := col.Query(ctx, queryPrefix+query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		distance := 1.0 - float64(result.Similarity)
		hits = append(hits, Hit{
			Collection: collection,
			ID:         result.ID,
			Document:   result.Content,
			Metadata:   result.Metadata,
			Distance:   &distance,
		})
	}

	return hits, nil
}

// IndexCourses embeds and stores courses in the course collection.
func (v *VectorDB) IndexCourses(ctx context.Context, courses []*storage.Course) error {
	if v == nil || len(courses) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(courses))
	for _, course := range courses {
		if strings.TrimSpace(course.Description) == "" && strings.TrimSpace(course.Title) == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      course.Code,
			Content: fmt.Sprintf("%s %s. %s", course.Code, course.Title, course.Description),
			Metadata: map[string]string{
				"course_code":  course.Code,
				"course_title": course.Title,
				"instructor":   course.Instructor,
			},
		})
	}

	return v.addDocuments(ctx, CourseCollection, docs)
}

// IndexVenues embeds and stores venues in the named venue collection
// (dining or entertainment).
func (v *VectorDB) IndexVenues(ctx context.Context, collection string, venues []*storage.Venue) error {
	if v == nil || len(venues) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(venues))
	for _, venue := range venues {
		if strings.TrimSpace(venue.Name) == "" {
			continue
		}
		parts := []string{venue.Name, venue.Category, venue.CuisineType, venue.Tags, venue.Address}
		docs = append(docs, chromem.Document{
			ID:      venue.ID,
			Content: joinNonEmpty(parts, ". "),
			Metadata: map[string]string{
				"name":                 venue.Name,
				"category":             venue.Category,
				"cuisine_type":         venue.CuisineType,
				"distance_from_campus": strconv.FormatFloat(venue.DistanceFromCampus, 'f', -1, 64),
				"price":                venue.Price,
				"address":              venue.Address,
				"tags":                 venue.Tags,
				"phone":                venue.Phone,
			},
		})
	}

	return v.addDocuments(ctx, collection, docs)
}

// IndexEvents embeds and stores events in the event collection.
func (v *VectorDB) IndexEvents(ctx context.Context, events []*storage.Event) error {
	if v == nil || len(events) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(events))
	for _, event := range events {
		if strings.TrimSpace(event.Title) == "" {
			continue
		}
		parts := []string{event.Title, event.Category, event.EventType, event.VenueName, event.EventDate}
		docs = append(docs, chromem.Document{
			ID:      event.ID,
			Content: joinNonEmpty(parts, ". "),
			Metadata: map[string]string{
				"title":      event.Title,
				"category":   event.Category,
				"event_type": event.EventType,
				"event_date": event.EventDate,
				"venue_name": event.VenueName,
				"price_info": event.PriceInfo,
				"ticket_url": event.TicketURL,
			},
		})
	}

	return v.addDocuments(ctx, EventCollection, docs)
}

func (v *VectorDB) addDocuments(ctx context.Context, collection string, docs []chromem.Document) error {
	if len(docs) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	col, ok := v.collections[collection]
	if !ok || col == nil {
		return fmt.Errorf("unknown collection %q", collection)
	}

	if err := col.AddDocuments(ctx, docs, embedConcurrency); err != nil {
		return fmt.Errorf("failed to add documents to %s: %w", collection, err)
	}

	v.logger.WithFields(map[string]any{
		"collection": collection,
		"count":      len(docs),
	}).Info("Indexed documents for semantic search")
	return nil
}

// Count returns the number of documents in the named collection.
func (v *VectorDB) Count(collection string) int {
	if v == nil {
		return 0
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	col, ok := v.collections[collection]
	if !ok || col == nil {
		return 0
	}
	return col.Count()
}

// IsEnabled returns true once the database is initialized.
func (v *VectorDB) IsEnabled() bool {
	if v == nil {
		return false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.initialized
}

// Close releases the database. chromem-go persists on every operation,
// so there is nothing to flush.
func (v *VectorDB) Close() error {
	return nil
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
