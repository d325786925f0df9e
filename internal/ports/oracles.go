// Package ports defines the interfaces the core depends on. Adapters live
// elsewhere; tests substitute deterministic fakes.
package ports

import (
	"context"

	"tonify/internal/trait"
)

// ExampleCount is the required number of generated usage examples, ordered
// [professional email, social post, customer-service reply, creative piece].
const ExampleCount = 4

// TraitScorer estimates a trait vector from a block of free text.
//
// Implementations retry transient failures per the standard policy and must
// never return a vector with any field outside [-1, 1].
type TraitScorer interface {
	ScoreText(ctx context.Context, text string) (trait.Vector, error)
}

// GeneratedContent is the all-or-nothing result of content generation.
type GeneratedContent struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Prompt   string   `json:"prompt"`
	Examples []string `json:"examples"`
}

// ContentGenerator produces display content for a trait vector. Either the
// full GeneratedContent is returned or the call fails; partial results are
// never surfaced.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, traits trait.Vector) (GeneratedContent, error)
}
