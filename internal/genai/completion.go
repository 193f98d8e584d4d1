// This file contains the Groq chat completion client, using the
// OpenAI-compatible API via openai-go with a custom base URL.
package genai

import (
	"context"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sagecampus/sage-assistant-go/internal/apperr"
)

// TokenUsage reports tokens consumed by one completion call.
type TokenUsage struct {
	Input  int64
	Output int64
}

// UsageRecorder receives token usage after successful completions.
// Optional; a nil recorder is ignored.
type UsageRecorder interface {
	RecordCompletionTokens(usage TokenUsage)
}

// CompletionClient invokes the Groq chat completion service.
type CompletionClient struct {
	client openai.Client
	model  string
	usage  UsageRecorder
}

// NewCompletionClient creates a Groq completion client.
// Returns nil if apiKey is empty (chat disabled).
func NewCompletionClient(apiKey, model string) *CompletionClient {
	if apiKey == "" {
		return nil
	}

	client := openai.NewClient(
		option.WithBaseURL(GroqBaseURL),
		option.WithAPIKey(apiKey),
	)

	return &CompletionClient{
		client: client,
		model:  model,
	}
}

// SetUsageRecorder attaches a token usage recorder.
func (c *CompletionClient) SetUsageRecorder(r UsageRecorder) {
	if c != nil {
		c.usage = r
	}
}

// Model returns the configured model name.
func (c *CompletionClient) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// IsEnabled returns true if the client is configured.
func (c *CompletionClient) IsEnabled() bool {
	return c != nil
}

func (c *CompletionClient) buildParams(msgs []Message, opts CompletionOptions) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(opts.MaxTokens),
		TopP:        openai.Float(opts.TopP),
	}
}

// Complete performs a blocking completion and returns the generated text.
// Provider failures are mapped to apperr.ErrCompletionUnavailable; an
// empty choice list maps to apperr.ErrMalformedResponse. Neither panics
// nor propagates raw transport errors.
func (c *CompletionClient) Complete(ctx context.Context, msgs []Message, opts CompletionOptions) (string, error) {
	if c == nil {
		return "", apperr.NewCompletionError("", apperr.ErrCompletionUnavailable)
	}

	params := c.buildParams(msgs, opts)

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "completion API call failed",
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", apperr.NewCompletionError(c.model, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperr.ErrMalformedResponse
	}

	c.recordUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	slog.DebugContext(ctx, "completion finished",
		"model", c.model,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"duration_ms", duration.Milliseconds())

	return resp.Choices[0].Message.Content, nil
}

// Stream performs a streaming completion, invoking onChunk for every text
// fragment as it arrives, and returns the accumulated full text. The chunk
// sequence is lazy, finite, and not restartable. If onChunk returns an
// error (client gone), forwarding stops and the accumulated prefix is
// returned alongside that error so the caller can decide what to persist.
func (c *CompletionClient) Stream(ctx context.Context, msgs []Message, opts CompletionOptions, onChunk func(string) error) (string, error) {
	if c == nil {
		return "", apperr.NewCompletionError("", apperr.ErrCompletionUnavailable)
	}

	params := c.buildParams(msgs, opts)

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	var full []byte
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		full = append(full, delta...)
		if onChunk != nil {
			if err := onChunk(delta); err != nil {
				return string(full), err
			}
		}
	}

	if err := stream.Err(); err != nil {
		slog.WarnContext(ctx, "completion stream failed",
			"model", c.model,
			"received_bytes", len(full),
			"error", err)
		// A failure before any content is a hard unavailability; after
		// partial content, return the prefix and let the caller choose.
		if len(full) == 0 {
			return "", apperr.NewCompletionError(c.model, err)
		}
		return string(full), apperr.NewCompletionError(c.model, err)
	}

	if len(full) == 0 {
		return "", apperr.ErrMalformedResponse
	}

	c.recordUsage(acc.Usage.PromptTokens, acc.Usage.CompletionTokens)

	return string(full), nil
}

func (c *CompletionClient) recordUsage(input, output int64) {
	if c.usage == nil {
		return
	}
	c.usage.RecordCompletionTokens(TokenUsage{Input: input, Output: output})
}
