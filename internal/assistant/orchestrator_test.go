package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagecampus/sage-assistant-go/internal/apperr"
	"github.com/sagecampus/sage-assistant-go/internal/genai"
	"github.com/sagecampus/sage-assistant-go/internal/lang"
	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/rag"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// scriptedCompleter returns canned responses in order and records every
// call it receives.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     [][]genai.Message
	opts      []genai.CompletionOptions
}

func (c *scriptedCompleter) next() (string, error) {
	i := len(c.calls) - 1
	var text string
	var err error
	if i < len(c.responses) {
		text = c.responses[i]
	}
	if i < len(c.errs) {
		err = c.errs[i]
	}
	return text, err
}

func (c *scriptedCompleter) Complete(_ context.Context, msgs []genai.Message, opts genai.CompletionOptions) (string, error) {
	c.calls = append(c.calls, msgs)
	c.opts = append(c.opts, opts)
	return c.next()
}

func (c *scriptedCompleter) Stream(_ context.Context, msgs []genai.Message, opts genai.CompletionOptions, onChunk func(string) error) (string, error) {
	c.calls = append(c.calls, msgs)
	c.opts = append(c.opts, opts)
	text, err := c.next()
	if err != nil {
		return "", err
	}
	half := len(text) / 2
	for _, chunk := range []string{text[:half], text[half:]} {
		if chunk == "" {
			continue
		}
		if cbErr := onChunk(chunk); cbErr != nil {
			return chunk, cbErr
		}
	}
	return text, nil
}

// wordlistDetector classifies text as Turkish when it contains any of the
// configured markers, mirroring the real detector's contract.
type wordlistDetector struct{ turkish []string }

func (d wordlistDetector) Detect(text string) lang.Tag {
	for _, marker := range d.turkish {
		if marker != "" && strings.Contains(text, marker) {
			return lang.Turkish
		}
	}
	return lang.English
}

type emptyRetriever struct{}

func (emptyRetriever) SearchCourses(context.Context, string) []rag.CourseHit { return nil }
func (emptyRetriever) SearchVenues(context.Context, string) []rag.VenueHit   { return nil }
func (emptyRetriever) SearchEvents(context.Context, string) []rag.EventHit   { return nil }

type cannedRetriever struct {
	courses []rag.CourseHit
	venues  []rag.VenueHit
	events  []rag.EventHit

	courseQuery string
}

func (r *cannedRetriever) SearchCourses(_ context.Context, query string) []rag.CourseHit {
	r.courseQuery = query
	return r.courses
}
func (r *cannedRetriever) SearchVenues(context.Context, string) []rag.VenueHit { return r.venues }
func (r *cannedRetriever) SearchEvents(context.Context, string) []rag.EventHit { return r.events }

func testConfig() Config {
	return Config{
		AcademicTemperature:   0.1,
		SocialTemperature:     0.5,
		StreamingTemperature:  0.7,
		MaxTokens:             2000,
		TopP:                  0.9,
		PromptHistoryTurns:    10,
		ExpansionHistoryTurns: 3,
	}
}

func newOrchestrator(completer Completer, retriever ContextRetriever, detector lang.Detector) *Orchestrator {
	return New(completer, retriever, detector, nil, logger.NewWithWriter("error", io.Discard), testConfig())
}

var trDetector = wordlistDetector{turkish: []string{"merhaba", "kafe", "Üzgünüm", "kampüse"}}

func TestChatHappyPath(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"Here is your answer."}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	reply, err := o.Chat(context.Background(), Academic, "what is CMPE 113?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Here is your answer.", reply.Text)
	assert.Equal(t, lang.English, reply.Language)
	assert.Equal(t, StatusOK, reply.Status)
	require.Len(t, completer.calls, 1)
	assert.InDelta(t, 0.1, completer.opts[0].Temperature, 1e-9)
}

func TestChatSocialTemperature(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"Sure, try the cafe."}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	_, err := o.Chat(context.Background(), Social, "any cafes?", nil)

	require.NoError(t, err)
	require.Len(t, completer.opts, 1)
	assert.InDelta(t, 0.5, completer.opts[0].Temperature, 1e-9)
	assert.Equal(t, int64(2000), completer.opts[0].MaxTokens)
	assert.InDelta(t, 0.9, completer.opts[0].TopP, 1e-9)
}

func TestChatLanguageRetrySucceeds(t *testing.T) {
	// First response comes back in English for a Turkish request; the
	// retry produces Turkish.
	completer := &scriptedCompleter{responses: []string{
		"Hello! Nice to meet you.",
		"merhaba! Size nasıl yardımcı olabilirim?",
	}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	reply, err := o.Chat(context.Background(), Social, "merhaba", nil)

	require.NoError(t, err)
	assert.Equal(t, StatusRetried, reply.Status)
	assert.Equal(t, "merhaba! Size nasıl yardımcı olabilirim?", reply.Text)
	require.Len(t, completer.calls, 2)
	// Retry runs deterministic.
	assert.InDelta(t, 0.0, completer.opts[1].Temperature, 1e-9)
	// Retry prompt carries the urgent directive as the second system turn.
	assert.Contains(t, completer.calls[1][1].Content, "URGENT: Reply only in Turkish")
}

func TestChatLanguageFallbackAfterTwoMismatches(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"Hello! Nice to meet you.",
		"Still English, sorry.",
	}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	reply, err := o.Chat(context.Background(), Social, "merhaba", nil)

	require.NoError(t, err)
	assert.Equal(t, StatusFallback, reply.Status)
	assert.Equal(t, "Üzgünüm, yanıtı Türkçe oluşturamadım. Lütfen tekrar deneyin.", reply.Text)
	// Never more than two completion calls per turn.
	assert.Len(t, completer.calls, 2)
}

func TestChatCompletionFailureYieldsApology(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{apperr.NewCompletionError("m", errors.New("boom"))}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	reply, err := o.Chat(context.Background(), Academic, "merhaba", nil)

	require.NoError(t, err)
	assert.Equal(t, StatusApology, reply.Status)
	assert.Equal(t, "Üzgünüm, şu anda yanıt oluşturamıyorum. Lütfen daha sonra tekrar deneyin.", reply.Text)
	assert.Len(t, completer.calls, 1)
}

func TestChatRetryCompletionFailureYieldsApology(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []string{"Hello! Wrong language."},
		errs:      []error{nil, apperr.NewCompletionError("m", errors.New("boom"))},
	}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	reply, err := o.Chat(context.Background(), Social, "merhaba", nil)

	require.NoError(t, err)
	assert.Equal(t, StatusApology, reply.Status)
	assert.Equal(t, "Üzgünüm, şu anda yanıt oluşturamıyorum. Lütfen daha sonra tekrar deneyin.", reply.Text)
}

func TestChatEmptyContextLeavesUserTurnRaw(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"ok"}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	_, err := o.Chat(context.Background(), Social, "any cafes?", nil)

	require.NoError(t, err)
	require.Len(t, completer.calls, 1)
	userTurn := completer.calls[0][len(completer.calls[0])-1]
	assert.Equal(t, "any cafes?", userTurn.Content)
}

func TestChatAcademicRetrievesWithExpandedQuery(t *testing.T) {
	retriever := &cannedRetriever{}
	completer := &scriptedCompleter{responses: []string{"ok"}}
	o := newOrchestrator(completer, retriever, trDetector)

	history := []storage.Message{
		{Role: storage.RoleAssistant, Content: "CMPE 113 covers Python."},
	}
	_, err := o.Chat(context.Background(), Academic, "who teaches this course?", history)

	require.NoError(t, err)
	assert.Contains(t, retriever.courseQuery, "CMPE 113")
	assert.Contains(t, retriever.courseQuery, "who teaches this course?")
}

func TestChatSocialContextOrder(t *testing.T) {
	retriever := &cannedRetriever{
		venues: []rag.VenueHit{{Name: "Off Cafe", Similarity: 0.9}},
		events: []rag.EventHit{{Title: "Jazz Night", Similarity: 0.7}},
	}
	completer := &scriptedCompleter{responses: []string{"ok"}}
	o := newOrchestrator(completer, retriever, trDetector)

	_, err := o.Chat(context.Background(), Social, "what should I do tonight?", nil)

	require.NoError(t, err)
	userTurn := completer.calls[0][len(completer.calls[0])-1].Content
	venueIdx := strings.Index(userTurn, "NEARBY VENUES")
	eventIdx := strings.Index(userTurn, "UPCOMING EVENTS")
	require.GreaterOrEqual(t, venueIdx, 0)
	require.GreaterOrEqual(t, eventIdx, 0)
	assert.Less(t, venueIdx, eventIdx)
}

func TestChatInvalidPersona(t *testing.T) {
	o := newOrchestrator(&scriptedCompleter{}, emptyRetriever{}, trDetector)

	_, err := o.Chat(context.Background(), Persona("wizard"), "hi", nil)

	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestChatEmptyMessage(t *testing.T) {
	o := newOrchestrator(&scriptedCompleter{}, emptyRetriever{}, trDetector)

	_, err := o.Chat(context.Background(), Academic, "   ", nil)

	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestChatStreamForwardsChunksAndSkipsVerifier(t *testing.T) {
	// A wrong-language stream still returns as-is: verification is
	// skipped once chunks are committed to the client.
	completer := &scriptedCompleter{responses: []string{"Hello from the stream."}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	var got []string
	reply, err := o.ChatStream(context.Background(), Social, "merhaba", nil, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, StatusOK, reply.Status)
	assert.Equal(t, "Hello from the stream.", reply.Text)
	assert.Len(t, got, 2)
	assert.Len(t, completer.calls, 1)
	assert.InDelta(t, 0.7, completer.opts[0].Temperature, 1e-9)
}

func TestChatStreamFailureForwardsApology(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{apperr.NewCompletionError("m", errors.New("boom"))}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	var got []string
	reply, err := o.ChatStream(context.Background(), Academic, "merhaba", nil, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, StatusApology, reply.Status)
	require.Len(t, got, 1)
	assert.Equal(t, "Üzgünüm, şu anda yanıt oluşturamıyorum. Lütfen daha sonra tekrar deneyin.", got[0])
}

func TestChatStreamClientGoneKeepsPrefix(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"partial answer text"}}
	o := newOrchestrator(completer, emptyRetriever{}, trDetector)

	clientGone := errors.New("client disconnected")
	reply, err := o.ChatStream(context.Background(), Academic, "tell me more", nil, func(string) error {
		return clientGone
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPartial, reply.Status)
	assert.NotEmpty(t, reply.Text)
}
