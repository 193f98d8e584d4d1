package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"github.com/sagecampus/sage-assistant-go/internal/apperr"
	"github.com/sagecampus/sage-assistant-go/internal/assistant"
	"github.com/sagecampus/sage-assistant-go/internal/logger"
	"github.com/sagecampus/sage-assistant-go/internal/metrics"
	"github.com/sagecampus/sage-assistant-go/internal/sentry"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// handlers carries the dependencies shared by all HTTP handlers.
type handlers struct {
	db             *storage.DB
	orchestrator   *assistant.Orchestrator
	metrics        *metrics.Metrics
	logger         *logger.Logger
	historyTurns   int
	requestTimeout time.Duration
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	AssistantType  string `json:"assistant_type"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
	Language       string `json:"language"`
	Status         string `json:"status"`
}

type conversationResponse struct {
	ID            string `json:"id"`
	AssistantType string `json:"assistant_type"`
	Title         string `json:"title"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type conversationDetailResponse struct {
	conversationResponse
	MessageCount int `json:"message_count"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toConversationResponse(conv *storage.Conversation) conversationResponse {
	return conversationResponse{
		ID:            conv.ID,
		AssistantType: conv.AssistantType,
		Title:         conv.Title,
		CreatedAt:     conv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     conv.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toMessageResponse(msg *storage.Message) messageResponse {
	return messageResponse{
		ID:        msg.ID,
		Seq:       msg.Seq,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// handleError maps domain errors to HTTP status codes and records the
// failure in metrics.
func (h *handlers) handleError(c *gin.Context, err error) {
	endpoint := c.FullPath()
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		h.metrics.HTTPErrorsTotal.WithLabelValues("invalid_input", endpoint).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		h.metrics.HTTPErrorsTotal.WithLabelValues("not_found", endpoint).Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	default:
		h.metrics.HTTPErrorsTotal.WithLabelValues("internal", endpoint).Inc()
		h.logger.WithError(err).WithField("endpoint", endpoint).Error("Request failed")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// prepareTurn resolves the conversation for a chat request, creating one
// when no ID is given, and returns the prompt history loaded before the
// incoming user message is appended.
func (h *handlers) prepareTurn(ctx context.Context, req chatRequest) (*storage.Conversation, []storage.Message, error) {
	var conv *storage.Conversation
	var err error

	if req.ConversationID == "" {
		conv, err = h.db.CreateConversation(ctx, req.AssistantType, conversationTitle(req.Message))
	} else {
		conv, err = h.db.GetConversation(ctx, req.ConversationID)
	}
	if err != nil {
		return nil, nil, err
	}

	// History must not include the turn being answered.
	recent, err := h.db.RecentMessages(ctx, conv.ID, h.historyTurns)
	if err != nil {
		return nil, nil, err
	}
	history := make([]storage.Message, 0, len(recent))
	for _, msg := range recent {
		history = append(history, *msg)
	}

	if _, err := h.db.AppendMessage(ctx, conv.ID, storage.RoleUser, req.Message); err != nil {
		return nil, nil, err
	}

	return conv, history, nil
}

// conversationTitle derives a title for a new conversation from its first
// message, cut to 60 characters without splitting a multi-byte rune.
func conversationTitle(message string) string {
	const titleLimit = 60
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit])
}

// validateChatRequest checks the fields shared by both chat endpoints.
// Runs before any row is written so a rejected turn leaves no state.
func validateChatRequest(req chatRequest) error {
	if !assistant.Persona(req.AssistantType).Valid() {
		return apperr.NewValidationError("assistant_type", "must be 'academic' or 'social'")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperr.NewValidationError("message", "must not be empty")
	}
	return nil
}

// chat handles POST /api/chat.
func (h *handlers) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, apperr.NewValidationError("body", "invalid JSON"))
		return
	}
	if err := validateChatRequest(req); err != nil {
		h.handleError(c, err)
		return
	}
	persona := assistant.Persona(req.AssistantType)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	conv, history, err := h.prepareTurn(ctx, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	reply, err := h.orchestrator.Chat(ctx, persona, req.Message, history)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if _, err := h.db.AppendMessage(ctx, conv.ID, storage.RoleAssistant, reply.Text); err != nil {
		h.logger.WithError(err).WithField("conversation_id", conv.ID).Error("Failed to persist assistant reply")
	}

	c.JSON(http.StatusOK, chatResponse{
		ConversationID: conv.ID,
		Response:       reply.Text,
		Language:       string(reply.Language),
		Status:         string(reply.Status),
	})
}

// chatStream handles POST /api/chat/stream using server-sent events. Each
// text fragment is sent as a data event; a final event carries the turn
// metadata. The full produced text is persisted even when the client
// disconnects mid-stream.
func (h *handlers) chatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, apperr.NewValidationError("body", "invalid JSON"))
		return
	}
	if err := validateChatRequest(req); err != nil {
		h.handleError(c, err)
		return
	}
	persona := assistant.Persona(req.AssistantType)

	// Persistence must survive client disconnects, so the turn runs on a
	// context detached from the request once headers are committed.
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	conv, history, err := h.prepareTurn(ctx, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	clientCtx := c.Request.Context()
	onChunk := func(delta string) error {
		select {
		case <-clientCtx.Done():
			return clientCtx.Err()
		default:
		}
		if err := writeSSE(c, "message", gin.H{"delta": delta}); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	reply, streamErr := h.orchestrator.ChatStream(ctx, persona, req.Message, history, onChunk)

	if reply.Text != "" {
		if _, err := h.db.AppendMessage(ctx, conv.ID, storage.RoleAssistant, reply.Text); err != nil {
			h.logger.WithError(err).WithField("conversation_id", conv.ID).Error("Failed to persist streamed reply")
		}
	}

	if streamErr != nil && clientCtx.Err() != nil {
		// Client went away; nothing left to write.
		return
	}

	_ = writeSSE(c, "done", gin.H{
		"conversation_id": conv.ID,
		"language":        string(reply.Language),
		"status":          string(reply.Status),
	})
	c.Writer.Flush()
}

func writeSSE(c *gin.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// createConversation handles POST /api/conversations.
func (h *handlers) createConversation(c *gin.Context) {
	var req struct {
		AssistantType string `json:"assistant_type"`
		Title         string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, apperr.NewValidationError("body", "invalid JSON"))
		return
	}

	conv, err := h.db.CreateConversation(c.Request.Context(), req.AssistantType, req.Title)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toConversationResponse(conv))
}

// listConversations handles GET /api/conversations with an optional
// assistant_type filter.
func (h *handlers) listConversations(c *gin.Context) {
	assistantType := c.Query("assistant_type")
	if assistantType != "" && !assistant.Persona(assistantType).Valid() {
		h.handleError(c, apperr.NewValidationError("assistant_type", "must be 'academic' or 'social'"))
		return
	}

	convs, err := h.db.ListConversations(c.Request.Context(), assistantType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]conversationResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, toConversationResponse(conv))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// getConversation handles GET /api/conversations/:id.
func (h *handlers) getConversation(c *gin.Context) {
	ctx := c.Request.Context()
	conv, err := h.db.GetConversation(ctx, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	count, err := h.db.CountMessages(ctx, conv.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversationDetailResponse{
		conversationResponse: toConversationResponse(conv),
		MessageCount:         count,
	})
}

// listMessages handles GET /api/conversations/:id/messages.
func (h *handlers) listMessages(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.db.GetConversation(ctx, id); err != nil {
		h.handleError(c, err)
		return
	}

	msgs, err := h.db.RecentMessages(ctx, id, 0)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]messageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toMessageResponse(msg))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// updateConversation handles PATCH /api/conversations/:id.
func (h *handlers) updateConversation(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		h.handleError(c, apperr.NewValidationError("title", "must not be empty"))
		return
	}

	id := c.Param("id")
	if err := h.db.UpdateConversationTitle(c.Request.Context(), id, req.Title); err != nil {
		h.handleError(c, err)
		return
	}

	conv, err := h.db.GetConversation(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConversationResponse(conv))
}

// deleteConversation handles DELETE /api/conversations/:id.
func (h *handlers) deleteConversation(c *gin.Context) {
	if err := h.db.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// exportConversation handles GET /api/conversations/:id/export. The
// transcript is written as gzip-compressed NDJSON, one message per line,
// preceded by a conversation header line.
func (h *handlers) exportConversation(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	conv, err := h.db.GetConversation(ctx, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	msgs, err := h.db.RecentMessages(ctx, id, 0)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "conversation-"+conv.ID+".ndjson.gz"))
	c.Status(http.StatusOK)

	gz := gzip.NewWriter(c.Writer)
	enc := json.NewEncoder(gz)

	if err := enc.Encode(toConversationResponse(conv)); err != nil {
		h.logger.WithError(err).Error("Failed to write export header")
		return
	}
	for _, msg := range msgs {
		if err := enc.Encode(toMessageResponse(msg)); err != nil {
			h.logger.WithError(err).Error("Failed to write export message")
			return
		}
	}

	if err := gz.Close(); err != nil {
		h.logger.WithError(err).Error("Failed to finish export stream")
	}
}
