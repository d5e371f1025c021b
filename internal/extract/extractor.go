package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/araroot/kotomine/internal/model"
)

// Extractor turns subtitle text into vocabulary insights through a
// Provider. A malformed or shape-mismatched model response degrades to an
// empty result; only transport errors (including cancellation) surface to
// the caller.
type Extractor struct {
	provider   Provider
	sampleSize int
	verbose    bool
}

// NewExtractor returns an Extractor surfacing at most sampleSize words per
// response.
func NewExtractor(provider Provider, sampleSize int, verbose bool) *Extractor {
	if sampleSize <= 0 {
		sampleSize = 20
	}
	return &Extractor{provider: provider, sampleSize: sampleSize, verbose: verbose}
}

// Extract requests vocabulary for one subtitle. The returned words are a
// random sample capped at the configured size, for variety across repeated
// lines.
func (e *Extractor) Extract(ctx context.Context, subtitle string, platform model.Platform, deletedWords []string) (model.ExtractionResult, error) {
	prompt := BuildPrompt(subtitle, platform, deletedWords)

	raw, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	result, err := ParseResult(raw)
	if err != nil {
		if e.verbose {
			fmt.Fprintf(os.Stderr, "extract: unparsable response: %v\n", err)
		}
		return model.ExtractionResult{}, nil
	}

	result.Words = sample(result.Words, e.sampleSize)
	return result, nil
}

// ParseResult decodes a model response, tolerating markdown code fences
// around the JSON payload.
func ParseResult(raw string) (model.ExtractionResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return model.ExtractionResult{}, fmt.Errorf("decode extraction response: %w", err)
	}
	if result.Words == nil {
		return model.ExtractionResult{}, fmt.Errorf("extraction response has no words field")
	}
	return result, nil
}

// sample picks up to n words uniformly at random, preserving nothing about
// order. Fisher-Yates on a copy.
func sample(words []model.WordInsight, n int) []model.WordInsight {
	if len(words) <= n {
		return words
	}
	shuffled := make([]model.WordInsight, len(words))
	copy(shuffled, words)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}
