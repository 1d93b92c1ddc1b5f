package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the extraction capability cannot be
// reached at all (transport failure, timeout, missing configuration).
// Callers treat it as a recoverable condition: affected items stay
// pending and are picked up again by a later reprocess run.
var ErrUnavailable = errors.New("extraction capability unavailable")

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// ExtractionAIClient defines the model adapter interface used by the
// tag extractor. Implementations exist for OpenAI-compatible APIs and
// for Ollama.
type ExtractionAIClient interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	ResetMetrics()
	GetMetrics() ModelMetrics
}

// ExtractRequest carries the item text and the current tag vocabulary
// for one extraction call.
type ExtractRequest struct {
	Title        string
	Subject      string
	DocumentText string
	ExistingTags []string
	ContextHint  string
}

// ExtractResult is the structured output of one extraction call.
// MatchedTags only contains names present in the supplied vocabulary.
type ExtractResult struct {
	MatchedTags      []string `json:"matched_tags"`
	SuggestedNewTags []string `json:"suggested_new_tags"`
	Summary          string   `json:"summary"`
}
