package ai

import (
	"context"
	"fmt"
	"strings"

	gUtil "beleidsgraaf/internal/util"
	"beleidsgraaf/pkg/logger"
)

// DefaultDocumentTokenBudget bounds how much of an item's document text
// is sent along with the extraction prompt.
const DefaultDocumentTokenBudget = 6000

// extractionRetries bounds transient-failure retries per model call.
const extractionRetries = 3

// TagExtractor implements the tag-extraction capability on top of a
// model adapter. It is safe for concurrent use if the underlying
// adapter is.
type TagExtractor struct {
	client         ExtractionAIClient
	model          string
	documentBudget int
}

// TagExtractorParams configures a TagExtractor.
type TagExtractorParams struct {
	Model               string
	DocumentTokenBudget int
}

// NewTagExtractor creates a TagExtractor over the given adapter.
func NewTagExtractor(client ExtractionAIClient, params TagExtractorParams) *TagExtractor {
	budget := params.DocumentTokenBudget
	if budget <= 0 {
		budget = DefaultDocumentTokenBudget
	}
	return &TagExtractor{
		client:         client,
		model:          params.Model,
		documentBudget: budget,
	}
}

// ExtractTags runs one extraction call. Transport-level failures are
// wrapped in ErrUnavailable; a response that parses but violates the
// vocabulary is sanitized rather than rejected (unknown tag names are
// dropped, reported at debug level).
func (e *TagExtractor) ExtractTags(ctx context.Context, req ExtractRequest) (ExtractResult, error) {
	if e.client == nil {
		return ExtractResult{}, fmt.Errorf("%w: no adapter configured", ErrUnavailable)
	}

	if req.DocumentText != "" {
		truncated, err := TruncateToTokenBudget(req.DocumentText, e.documentBudget)
		if err != nil {
			return ExtractResult{}, fmt.Errorf("token budget: %w", err)
		}
		req.DocumentText = truncated
	}

	prompt := BuildExtractionPrompt(req)

	opts := []GenerateOption{}
	if e.model != "" {
		opts = append(opts, WithModel(e.model))
	}

	var result ExtractResult
	err := gUtil.RetryErrWithContext(ctx, extractionRetries, func(ctx context.Context) error {
		return e.client.GenerateCompletionWithFormat(
			ctx,
			"tag_extraction",
			"Matched vocabulary tags, suggested new tags and a summary for one parliamentary item",
			prompt,
			&result,
			opts...,
		)
	})
	if err != nil {
		return ExtractResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	result.MatchedTags = intersectVocabulary(result.MatchedTags, req.ExistingTags)
	return result, nil
}

// GetMetrics reports the accumulated usage of the underlying adapter.
func (e *TagExtractor) GetMetrics() ModelMetrics {
	if e.client == nil {
		return ModelMetrics{}
	}
	return e.client.GetMetrics()
}

// ResetMetrics clears the adapter's usage counters.
func (e *TagExtractor) ResetMetrics() {
	if e.client == nil {
		return
	}
	e.client.ResetMetrics()
}

// intersectVocabulary keeps only tags present in the vocabulary,
// case-insensitively, normalized to the vocabulary spelling. Order of
// first mention is preserved and duplicates are dropped.
func intersectVocabulary(matched, vocabulary []string) []string {
	canonical := make(map[string]string, len(vocabulary))
	for _, v := range vocabulary {
		canonical[strings.ToLower(strings.TrimSpace(v))] = v
	}

	seen := make(map[string]bool, len(matched))
	out := make([]string, 0, len(matched))
	for _, m := range matched {
		key := strings.ToLower(strings.TrimSpace(m))
		name, ok := canonical[key]
		if !ok {
			logger.Debug("[Extract] Dropping tag outside vocabulary", "tag", m)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
