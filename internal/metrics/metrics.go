package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat turn metrics
	ChatTurnsTotal       *prometheus.CounterVec
	ChatDurationSeconds  *prometheus.HistogramVec
	ChatStreamChunkCount prometheus.Histogram

	// Completion metrics
	CompletionCallsTotal    *prometheus.CounterVec
	CompletionDuration      *prometheus.HistogramVec
	CompletionTokensTotal   *prometheus.CounterVec
	LanguageRetriesTotal    *prometheus.CounterVec
	LanguageFallbacksTotal  *prometheus.CounterVec
	CompletionFailuresTotal *prometheus.CounterVec

	// Retrieval metrics
	RetrievalDurationSeconds *prometheus.HistogramVec
	RetrievalHitsTotal       *prometheus.CounterVec
	RetrievalErrorsTotal     *prometheus.CounterVec
	ExactMatchHitsTotal      prometheus.Counter

	// HTTP metrics
	HTTPErrorsTotal     *prometheus.CounterVec
	RateLimitDropsTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ChatTurnsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_chat_turns_total",
				Help: "Total chat turns by persona, language, and status",
			},
			[]string{"persona", "language", "status"}, // status: ok, retried, fallback, apology
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sage_chat_duration_seconds",
				Help:    "End-to-end chat turn duration in seconds by persona",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"persona"},
		),

		ChatStreamChunkCount: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sage_chat_stream_chunks",
				Help:    "Number of chunks forwarded per streaming turn",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),

		CompletionCallsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_completion_calls_total",
				Help: "Total completion service calls by mode and status",
			},
			[]string{"mode", "status"}, // mode: blocking, streaming; status: success, error
		),

		CompletionDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sage_completion_duration_seconds",
				Help:    "Completion call duration in seconds by mode",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"mode"},
		),

		CompletionTokensTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_completion_tokens_total",
				Help: "Total tokens consumed by direction",
			},
			[]string{"direction"}, // direction: input, output
		),

		LanguageRetriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_language_retries_total",
				Help: "Language-consistency retries by expected language",
			},
			[]string{"language"},
		),

		LanguageFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_language_fallbacks_total",
				Help: "Fixed-apology fallbacks after a failed language retry",
			},
			[]string{"language"},
		),

		CompletionFailuresTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_completion_failures_total",
				Help: "Completion service failures by mode",
			},
			[]string{"mode"},
		),

		RetrievalDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sage_retrieval_duration_seconds",
				Help:    "Semantic retrieval duration in seconds by collection",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"collection"},
		),

		RetrievalHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_retrieval_hits_total",
				Help: "Retrieval hits returned by collection",
			},
			[]string{"collection"},
		),

		RetrievalErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_retrieval_errors_total",
				Help: "Retrieval failures recovered as empty context by collection",
			},
			[]string{"collection"},
		),

		ExactMatchHitsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "sage_retrieval_exact_match_hits_total",
				Help: "Course queries short-circuited by an exact code match",
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_http_errors_total",
				Help: "Total HTTP errors by type and endpoint",
			},
			[]string{"error_type", "endpoint"},
		),

		RateLimitDropsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "sage_rate_limit_drops_total",
				Help: "Chat requests rejected by the per-client rate limiter",
			},
		),
	}

	return m
}
