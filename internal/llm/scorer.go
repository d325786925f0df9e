package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/ports"
	"tonify/internal/trait"
)

// StyleScorer implements ports.TraitScorer against the text style oracle.
type StyleScorer struct {
	client *client
}

var _ ports.TraitScorer = (*StyleScorer)(nil)

// NewStyleScorer constructs a scorer from oracle configuration.
func NewStyleScorer(config Config) *StyleScorer {
	return &StyleScorer{client: newClient(config, "style-scorer")}
}

// ScoreText estimates a trait vector for a block of text. Blank input fails
// with ErrEmptyInput before any network call.
func (s *StyleScorer) ScoreText(ctx context.Context, text string) (trait.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return trait.Vector{}, tonifyerrors.ErrEmptyInput
	}

	content, err := s.client.completeWithRetry(ctx, "score text", scoreSystemPrompt, buildScoreUserPrompt(text))
	if err != nil {
		return trait.Vector{}, err
	}

	vector, err := parseTraitVector(content)
	if err != nil {
		return trait.Vector{}, err
	}
	return vector, nil
}

// parseTraitVector validates the oracle's structured response. All six trait
// fields must be present, numeric, and within [-1, 1]; anything else is a
// malformed response, never silently defaulted.
func parseTraitVector(content string) (trait.Vector, error) {
	var fields map[string]json.Number
	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return trait.Vector{}, tonifyerrors.NewMalformedError(
			fmt.Errorf("decode trait response: %w", err), "")
	}

	var vector trait.Vector
	for _, tr := range trait.All {
		raw, ok := fields[string(tr)]
		if !ok {
			return trait.Vector{}, tonifyerrors.NewMalformedError(
				fmt.Errorf("trait response missing field %q", tr), "")
		}
		value, err := raw.Float64()
		if err != nil {
			return trait.Vector{}, tonifyerrors.NewMalformedError(
				fmt.Errorf("trait %s is not numeric: %w", tr, err), "")
		}
		vector.Set(tr, value)
	}

	if err := vector.Validate(); err != nil {
		return trait.Vector{}, tonifyerrors.NewMalformedError(
			fmt.Errorf("trait response invalid: %w", err), "")
	}

	return vector, nil
}
