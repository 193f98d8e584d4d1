package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/sagecampus/sage-assistant-go/internal/apperr"
	"github.com/sagecampus/sage-assistant-go/internal/genai"
	"github.com/sagecampus/sage-assistant-go/internal/lang"
	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/metrics"
	"github.com/sagecampus/sage-assistant-go/internal/rag"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// Completer is the completion service behind the orchestrator.
type Completer interface {
	Complete(ctx context.Context, msgs []genai.Message, opts genai.CompletionOptions) (string, error)
	Stream(ctx context.Context, msgs []genai.Message, opts genai.CompletionOptions, onChunk func(string) error) (string, error)
}

// ContextRetriever supplies domain context for a turn. All searches are
// best-effort and return empty slices on failure.
type ContextRetriever interface {
	SearchCourses(ctx context.Context, query string) []rag.CourseHit
	SearchVenues(ctx context.Context, query string) []rag.VenueHit
	SearchEvents(ctx context.Context, query string) []rag.EventHit
}

// Config holds the sampling and windowing knobs for the orchestrator.
type Config struct {
	AcademicTemperature   float64
	SocialTemperature     float64
	StreamingTemperature  float64
	MaxTokens             int64
	TopP                  float64
	PromptHistoryTurns    int
	ExpansionHistoryTurns int
}

// Status classifies how a turn concluded.
type Status string

const (
	// StatusOK: first attempt passed verification.
	StatusOK Status = "ok"
	// StatusRetried: the repair attempt produced the right language.
	StatusRetried Status = "retried"
	// StatusFallback: both attempts failed verification; fixed apology.
	StatusFallback Status = "fallback"
	// StatusApology: the completion service failed; fixed apology.
	StatusApology Status = "apology"
	// StatusPartial: streaming stopped early; Text holds the produced
	// prefix.
	StatusPartial Status = "partial"
)

// Reply is the outcome of one chat turn.
type Reply struct {
	Text     string
	Language lang.Tag
	Status   Status
}

// Orchestrator runs the per-turn pipeline. Stateless across turns; all
// collaborators are injected at construction and safe for concurrent use.
type Orchestrator struct {
	completer Completer
	retriever ContextRetriever
	detector  lang.Detector
	metrics   *metrics.Metrics
	logger    *logger.Logger
	cfg       Config
}

// New creates an orchestrator.
func New(completer Completer, retriever ContextRetriever, detector lang.Detector, m *metrics.Metrics, log *logger.Logger, cfg Config) *Orchestrator {
	return &Orchestrator{
		completer: completer,
		retriever: retriever,
		detector:  detector,
		metrics:   m,
		logger:    log.WithModule("assistant"),
		cfg:       cfg,
	}
}

// Chat runs one blocking, language-verified turn. The response language
// must match the detected request language; one repair attempt is made at
// temperature 0 before degrading to the fixed localized apology. At most
// two completion calls per turn. Completion failures degrade to the
// localized "cannot respond" apology instead of surfacing.
func (o *Orchestrator) Chat(ctx context.Context, persona Persona, userText string, history []storage.Message) (Reply, error) {
	if !persona.Valid() {
		return Reply{}, apperr.NewValidationError("persona", "must be academic or social")
	}
	if strings.TrimSpace(userText) == "" {
		return Reply{}, apperr.NewValidationError("message", "must not be empty")
	}

	start := time.Now()
	tag := o.detector.Detect(userText)
	blocks := o.contextBlocks(ctx, persona, userText, history)

	temperature := o.cfg.AcademicTemperature
	if persona == Social {
		temperature = o.cfg.SocialTemperature
	}

	msgs := Assemble(persona, tag, history, userText, blocks, o.cfg.PromptHistoryTurns, false)
	text, err := o.complete(ctx, msgs, temperature)

	reply := Reply{Language: tag, Status: StatusOK}
	switch {
	case err != nil:
		reply.Text = cannotRespondMessage(tag)
		reply.Status = StatusApology
	case o.detector.Detect(text) != tag:
		reply = o.repairLanguage(ctx, persona, tag, history, userText, blocks)
	default:
		reply.Text = text
	}

	o.recordTurn(persona, tag, reply.Status, time.Since(start))
	return reply, nil
}

// repairLanguage runs the single retry of the verification state machine:
// stricter directive, temperature 0. A second mismatch or a completion
// failure yields the fixed localized apology.
func (o *Orchestrator) repairLanguage(ctx context.Context, persona Persona, tag lang.Tag, history []storage.Message, userText string, blocks []string) Reply {
	if o.metrics != nil {
		o.metrics.LanguageRetriesTotal.WithLabelValues(string(tag)).Inc()
	}
	o.logger.WithError(apperr.ErrLanguageMismatch).WithFields(map[string]any{
		"persona":  string(persona),
		"expected": string(tag),
	}).Warn("Response language mismatch, retrying with strict directive")

	msgs := Assemble(persona, tag, history, userText, blocks, o.cfg.PromptHistoryTurns, true)
	text, err := o.complete(ctx, msgs, 0.0)

	if err != nil {
		return Reply{Text: cannotRespondMessage(tag), Language: tag, Status: StatusApology}
	}
	if o.detector.Detect(text) != tag {
		if o.metrics != nil {
			o.metrics.LanguageFallbacksTotal.WithLabelValues(string(tag)).Inc()
		}
		return Reply{Text: languageFallbackMessage(tag), Language: tag, Status: StatusFallback}
	}
	return Reply{Text: text, Language: tag, Status: StatusRetried}
}

// ChatStream runs one streaming turn. Chunks are forwarded through
// onChunk as produced and accumulated for persistence; language
// verification is skipped since the response is already committed to the
// client. If the stream stops early the produced prefix is still
// returned so the caller can persist it.
func (o *Orchestrator) ChatStream(ctx context.Context, persona Persona, userText string, history []storage.Message, onChunk func(string) error) (Reply, error) {
	if !persona.Valid() {
		return Reply{}, apperr.NewValidationError("persona", "must be academic or social")
	}
	if strings.TrimSpace(userText) == "" {
		return Reply{}, apperr.NewValidationError("message", "must not be empty")
	}

	start := time.Now()
	tag := o.detector.Detect(userText)
	blocks := o.contextBlocks(ctx, persona, userText, history)
	msgs := Assemble(persona, tag, history, userText, blocks, o.cfg.PromptHistoryTurns, false)

	opts := genai.CompletionOptions{
		Temperature: o.cfg.StreamingTemperature,
		MaxTokens:   o.cfg.MaxTokens,
		TopP:        o.cfg.TopP,
	}

	chunks := 0
	text, err := o.completer.Stream(ctx, msgs, opts, func(chunk string) error {
		chunks++
		return onChunk(chunk)
	})

	if o.metrics != nil {
		o.metrics.ChatStreamChunkCount.Observe(float64(chunks))
	}

	reply := Reply{Language: tag, Status: StatusOK, Text: text}
	if err != nil {
		if text == "" {
			// Nothing reached the client yet, so the apology can still be
			// the whole response.
			apology := cannotRespondMessage(tag)
			_ = onChunk(apology)
			reply.Text = apology
			reply.Status = StatusApology
			if o.metrics != nil {
				o.metrics.CompletionFailuresTotal.WithLabelValues("streaming").Inc()
			}
		} else {
			reply.Status = StatusPartial
			o.logger.WithError(err).WithField("produced_chars", len(text)).Warn("Stream ended early, keeping produced prefix")
		}
	}

	o.recordTurn(persona, tag, reply.Status, time.Since(start))
	return reply, nil
}

// contextBlocks retrieves and formats the persona's context blocks in
// domain order. The academic persona retrieves with the history-expanded
// query; the social persona retrieves with the raw text.
func (o *Orchestrator) contextBlocks(ctx context.Context, persona Persona, userText string, history []storage.Message) []string {
	if o.retriever == nil {
		return nil
	}

	if persona == Academic {
		expanded := ExpandQuery(userText, history, o.cfg.ExpansionHistoryTurns)
		return []string{FormatCourses(o.retriever.SearchCourses(ctx, expanded))}
	}

	return []string{
		FormatVenues(o.retriever.SearchVenues(ctx, userText)),
		FormatEvents(o.retriever.SearchEvents(ctx, userText)),
	}
}

func (o *Orchestrator) complete(ctx context.Context, msgs []genai.Message, temperature float64) (string, error) {
	opts := genai.CompletionOptions{
		Temperature: temperature,
		MaxTokens:   o.cfg.MaxTokens,
		TopP:        o.cfg.TopP,
	}

	start := time.Now()
	text, err := o.completer.Complete(ctx, msgs, opts)
	duration := time.Since(start)

	if o.metrics != nil {
		o.metrics.CompletionDuration.WithLabelValues("blocking").Observe(duration.Seconds())
		status := "success"
		if err != nil {
			status = "error"
			o.metrics.CompletionFailuresTotal.WithLabelValues("blocking").Inc()
		}
		o.metrics.CompletionCallsTotal.WithLabelValues("blocking", status).Inc()
	}

	if err != nil {
		o.logger.WithError(err).Error("Completion call failed")
	}
	return text, err
}

func (o *Orchestrator) recordTurn(persona Persona, tag lang.Tag, status Status, duration time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.ChatTurnsTotal.WithLabelValues(string(persona), string(tag), string(status)).Inc()
	o.metrics.ChatDurationSeconds.WithLabelValues(string(persona)).Observe(duration.Seconds())
}
