package rag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	bm25 "github.com/iwilltry42/bm25-go/bm25"

	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// CourseIndex provides keyword-based course search using BM25. Used as a
// fallback when the vector store is disabled or unavailable.
type CourseIndex struct {
	okapi       *bm25.BM25Okapi
	courses     []*storage.Course // document index -> course
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
}

// NewCourseIndex creates an empty course keyword index.
func NewCourseIndex(log *logger.Logger) *CourseIndex {
	return &CourseIndex{logger: log}
}

// Initialize builds the BM25 index from the course catalog. BM25 needs
// the full corpus for IDF, so this replaces any previous index.
func (idx *CourseIndex) Initialize(courses []*storage.Course) error {
	if idx == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	var corpus []string
	var kept []*storage.Course
	for _, course := range courses {
		doc := strings.TrimSpace(strings.Join([]string{
			course.Code, course.Title, course.Instructor, course.Description,
		}, " "))
		if doc == "" {
			continue
		}
		corpus = append(corpus, doc)
		kept = append(kept, course)
	}

	if len(corpus) == 0 {
		idx.okapi = nil
		idx.courses = nil
		idx.initialized = true
		return nil
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to create BM25 index: %w", err)
	}

	idx.okapi = okapi
	idx.courses = kept
	idx.initialized = true

	idx.logger.WithField("docs", len(corpus)).Info("BM25 course index initialized")
	return nil
}

// Search performs BM25 keyword search over the course catalog. Confidence
// is derived from rank position since raw BM25 scores are unbounded and
// query-dependent.
func (idx *CourseIndex) Search(query string, topN int) ([]CourseHit, error) {
	if idx == nil {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.initialized || idx.okapi == nil {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	type scoredDoc struct {
		docID int
		score float64
	}
	var scored []scoredDoc
	for docID, score := range scores {
		if score > 0 {
			scored = append(scored, scoredDoc{docID: docID, score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}

	results := make([]CourseHit, 0, len(scored))
	for rank, sd := range scored {
		course := idx.courses[sd.docID]
		results = append(results, CourseHit{
			Code:       course.Code,
			Title:      course.Title,
			Instructor: course.Instructor,
			Document:   course.Description,
			Similarity: rankConfidence(rank + 1),
		})
	}

	return results, nil
}

// IsEnabled returns true once the index holds documents.
func (idx *CourseIndex) IsEnabled() bool {
	if idx == nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized && idx.okapi != nil
}

// Count returns the number of indexed courses.
func (idx *CourseIndex) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.courses)
}

// rankConfidence maps a 1-indexed BM25 rank to a confidence score.
//
// Formula: 1 / (1 + 0.05 * rank)
//   - rank 1 -> 0.95
//   - rank 5 -> 0.80
//   - rank 10 -> 0.67
func rankConfidence(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return 1.0 / (1.0 + 0.05*float64(rank))
}

// tokenize lowercases and splits text on non-alphanumeric runes. Handles
// Turkish text adequately since both Turkish and English are
// space-delimited.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
