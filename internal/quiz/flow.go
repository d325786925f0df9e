// Package quiz sequences the question bank, collects raw answers, and invokes
// trait aggregation on completion.
package quiz

import (
	"context"

	"tonify/internal/logging"
	"tonify/internal/question"
	"tonify/internal/trait"
)

// State is the flow's lifecycle phase.
type State string

const (
	// StateInProgress - collecting answers.
	StateInProgress State = "in_progress"
	// StateComplete - aggregation succeeded; terminal until Reset.
	StateComplete State = "complete"
	// StateFailed - aggregation failed; Complete may be retried without
	// losing collected answers.
	StateFailed State = "failed"
)

// Aggregator reduces collected answers into a trait vector.
type Aggregator interface {
	Aggregate(ctx context.Context, answers question.AnswerSet, bank *question.Bank) (trait.Vector, error)
}

// Flow walks the ordered question bank. It owns the answer set exclusively
// until aggregation. Not safe for concurrent use; one flow serves one quiz
// session.
type Flow struct {
	bank       *question.Bank
	aggregator Aggregator
	logger     logging.Logger

	index   int
	answers question.AnswerSet
	state   State
	result  trait.Vector
	lastErr error
}

// NewFlow constructs a flow positioned at the first question.
func NewFlow(bank *question.Bank, aggregator Aggregator, logger logging.Logger) *Flow {
	return &Flow{
		bank:       bank,
		aggregator: aggregator,
		logger:     logging.OrNop(logger),
		answers:    make(question.AnswerSet),
		state:      StateInProgress,
	}
}

// State returns the current lifecycle phase.
func (f *Flow) State() State {
	return f.state
}

// Index returns the 0-based position of the current question.
func (f *Flow) Index() int {
	return f.index
}

// Current returns the question at the current position.
func (f *Flow) Current() question.Question {
	return f.bank.At(f.index)
}

// Answers returns a copy of the collected answers.
func (f *Flow) Answers() question.AnswerSet {
	return f.answers.Clone()
}

// Result returns the aggregated vector; meaningful only in StateComplete.
func (f *Flow) Result() trait.Vector {
	return f.result
}

// Err returns the failure from the last Complete attempt, if any.
func (f *Flow) Err() error {
	return f.lastErr
}

// Next advances by one question. From the last question it completes the quiz
// instead of advancing past the end.
func (f *Flow) Next(ctx context.Context) error {
	if f.index < f.bank.Len()-1 {
		f.index++
		return nil
	}
	return f.Complete(ctx)
}

// Previous steps back one question; a no-op at the first question.
func (f *Flow) Previous() {
	if f.index > 0 {
		f.index--
	}
}

// JumpTo moves to an arbitrary question; out-of-range indices are ignored.
func (f *Flow) JumpTo(index int) {
	if index >= 0 && index < f.bank.Len() {
		f.index = index
	}
}

// RecordAnswer upserts an answer. Answer shape is not validated against the
// question kind, with one exception: a multi-select answer exceeding the
// question's declared maximum is rejected, leaving the prior selection
// unchanged.
func (f *Flow) RecordAnswer(questionID string, answer question.Answer) {
	if q, ok := f.bank.ByID(questionID); ok &&
		q.Kind == question.KindMultiSelect && len(answer.Options) > q.MaxSelections {
		f.logger.Debug("Question %s: selection of %d exceeds max %d, keeping prior answer",
			questionID, len(answer.Options), q.MaxSelections)
		return
	}
	f.answers[questionID] = answer
}

// Complete aggregates the collected answers exactly once and transitions to
// StateComplete. On aggregation failure the flow moves to StateFailed instead;
// retrying Complete from there re-runs aggregation with the answers intact.
func (f *Flow) Complete(ctx context.Context) error {
	if f.state == StateComplete {
		return nil
	}

	result, err := f.aggregator.Aggregate(ctx, f.answers.Clone(), f.bank)
	if err != nil {
		f.state = StateFailed
		f.lastErr = err
		f.logger.Warn("Aggregation failed: %v", err)
		return err
	}

	f.result = result
	f.state = StateComplete
	f.lastErr = nil
	f.logger.Info("Quiz complete: %d answers aggregated", len(f.answers))
	return nil
}

// Reset clears index, answers, completion state, and any error.
func (f *Flow) Reset() {
	f.index = 0
	f.answers = make(question.AnswerSet)
	f.state = StateInProgress
	f.result = trait.Vector{}
	f.lastErr = nil
}
