// Package aggregate reduces an answer set into one normalized trait vector.
package aggregate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"tonify/internal/logging"
	"tonify/internal/ports"
	"tonify/internal/question"
	"tonify/internal/trait"
)

// Aggregator blends static option weights and oracle-scored free text into a
// trait vector. The oracle is the only non-deterministic input; given a
// deterministic scorer, Aggregate is a pure function of its arguments.
type Aggregator struct {
	scorer ports.TraitScorer
	logger logging.Logger
}

// New constructs an aggregator. logger may be nil.
func New(scorer ports.TraitScorer, logger logging.Logger) *Aggregator {
	return &Aggregator{
		scorer: scorer,
		logger: logging.OrNop(logger),
	}
}

// Aggregate computes one trait vector from the answered questions.
//
// Each answered choice question contributes one observation per trait listed
// in its selected option; each selected multi-select option contributes
// independently; each non-empty free-text answer contributes one observation
// per trait from the oracle's estimate. The final value per trait is the
// arithmetic mean of its observations, clamped to [-1, 1]; traits with no
// observations stay 0.0.
func (a *Aggregator) Aggregate(ctx context.Context, answers question.AnswerSet, bank *question.Bank) (trait.Vector, error) {
	observations := make(map[trait.Trait][]float64)

	// Free-text questions are scored concurrently; results are keyed by
	// question and merged in bank order so the outcome is order-independent.
	freeTextVectors := make(map[string]trait.Vector)
	var freeTextMu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)

	for _, q := range bank.Questions() {
		answer, answered := answers[q.ID]
		if !answered {
			continue
		}

		switch q.Kind {
		case question.KindChoice:
			option, ok := q.Option(answer.Option)
			if !ok {
				a.logger.Warn("Question %s: unknown option %q, skipping", q.ID, answer.Option)
				continue
			}
			for tr, weight := range option.Weights {
				observations[tr] = append(observations[tr], weight)
			}

		case question.KindMultiSelect:
			for _, key := range answer.Options {
				option, ok := q.Option(key)
				if !ok {
					a.logger.Warn("Question %s: unknown option %q, skipping", q.ID, key)
					continue
				}
				for tr, weight := range option.Weights {
					observations[tr] = append(observations[tr], weight)
				}
			}

		case question.KindFreeText:
			text := strings.TrimSpace(answer.Text)
			if text == "" {
				continue
			}
			questionID := q.ID
			group.Go(func() error {
				vector, err := a.scorer.ScoreText(groupCtx, text)
				if err != nil {
					return fmt.Errorf("score question %s: %w", questionID, err)
				}
				freeTextMu.Lock()
				freeTextVectors[questionID] = vector
				freeTextMu.Unlock()
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return trait.Vector{}, err
	}

	// Merge oracle results in bank order for deterministic observation lists.
	for _, q := range bank.Questions() {
		vector, ok := freeTextVectors[q.ID]
		if !ok {
			continue
		}
		for _, tr := range trait.All {
			observations[tr] = append(observations[tr], vector.Get(tr))
		}
	}

	var result trait.Vector
	for _, tr := range trait.All {
		values := observations[tr]
		if len(values) == 0 {
			continue
		}
		sum := 0.0
		for _, value := range values {
			sum += value
		}
		result.Set(tr, trait.Clamp(sum/float64(len(values))))
	}

	a.logger.Debug("Aggregated %d answers into %+v", len(answers), result)
	return result, nil
}
