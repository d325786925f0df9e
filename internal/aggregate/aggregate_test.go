package aggregate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/question"
	"tonify/internal/trait"
)

// stubScorer returns canned vectors keyed by input text.
type stubScorer struct {
	vectors map[string]trait.Vector
	err     error
	calls   atomic.Int32
}

func (s *stubScorer) ScoreText(ctx context.Context, text string) (trait.Vector, error) {
	s.calls.Add(1)
	if s.err != nil {
		return trait.Vector{}, s.err
	}
	return s.vectors[text], nil
}

func testBank(t *testing.T) *question.Bank {
	t.Helper()
	bank, err := question.NewBank([]question.Question{
		{
			ID: "q1_greeting", Kind: question.KindChoice, Prompt: "greeting",
			Options: []question.Option{
				{Key: "A", Weights: map[trait.Trait]float64{trait.Formality: -1, trait.Warmth: 0.3}},
				{Key: "B", Weights: map[trait.Trait]float64{trait.Formality: 1}},
			},
		},
		{
			ID: "q2_length", Kind: question.KindChoice, Prompt: "length",
			Options: []question.Option{
				{Key: "A", Weights: map[trait.Trait]float64{trait.Formality: 1}},
			},
		},
		{
			ID: "q3_values", Kind: question.KindMultiSelect, Prompt: "values", MaxSelections: 2,
			Options: []question.Option{
				{Key: "A", Weights: map[trait.Trait]float64{trait.Brevity: 0.8}},
				{Key: "B", Weights: map[trait.Trait]float64{trait.Brevity: 0.2, trait.Warmth: 0.5}},
			},
		},
		{
			ID: "q4_sample", Kind: question.KindFreeText, Prompt: "sample", WordLimit: 50,
		},
	})
	require.NoError(t, err)
	return bank
}

func TestAggregateSingleChoiceWeights(t *testing.T) {
	scorer := &stubScorer{}
	agg := New(scorer, nil)

	answers := question.AnswerSet{"q1_greeting": question.ChoiceAnswer("A")}
	vector, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)

	want := trait.Vector{Formality: -1, Warmth: 0.3}
	assert.True(t, vector.Equal(want), "got %+v", vector)
	assert.Zero(t, scorer.calls.Load())
}

func TestAggregateAveragesObservations(t *testing.T) {
	agg := New(&stubScorer{}, nil)

	// Two choice answers contribute formality -1 and 1: mean is 0, not the sum.
	answers := question.AnswerSet{
		"q1_greeting": question.ChoiceAnswer("A"),
		"q2_length":   question.ChoiceAnswer("A"),
	}
	vector, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, vector.Formality, trait.Epsilon)
	assert.InDelta(t, 0.3, vector.Warmth, trait.Epsilon)
}

func TestAggregateMultiSelectContributesPerOption(t *testing.T) {
	agg := New(&stubScorer{}, nil)

	answers := question.AnswerSet{"q3_values": question.MultiAnswer("A", "B")}
	vector, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)

	// Brevity gets two observations (0.8, 0.2) from one question.
	assert.InDelta(t, 0.5, vector.Brevity, trait.Epsilon)
	assert.InDelta(t, 0.5, vector.Warmth, trait.Epsilon)
}

func TestAggregateBlendsFreeTextObservations(t *testing.T) {
	scorer := &stubScorer{vectors: map[string]trait.Vector{
		"my week was wild": {Formality: 1, Humor: 0.6},
	}}
	agg := New(scorer, nil)

	answers := question.AnswerSet{
		"q1_greeting": question.ChoiceAnswer("A"), // formality -1
		"q4_sample":   question.TextAnswer("my week was wild"),
	}
	vector, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)

	// formality: mean(-1, 1) = 0; humor: mean(0.6) = 0.6
	assert.InDelta(t, 0.0, vector.Formality, trait.Epsilon)
	assert.InDelta(t, 0.6, vector.Humor, trait.Epsilon)
	assert.Equal(t, int32(1), scorer.calls.Load())
}

func TestAggregateSkipsEmptyAndUnanswered(t *testing.T) {
	scorer := &stubScorer{}
	agg := New(scorer, nil)

	answers := question.AnswerSet{"q4_sample": question.TextAnswer("   ")}
	vector, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)

	assert.True(t, vector.Equal(trait.Neutral()), "got %+v", vector)
	assert.Zero(t, scorer.calls.Load(), "blank free text must not reach the oracle")
}

func TestAggregateNoAnswersIsNeutral(t *testing.T) {
	agg := New(&stubScorer{}, nil)

	vector, err := agg.Aggregate(context.Background(), question.AnswerSet{}, testBank(t))
	require.NoError(t, err)
	require.NoError(t, vector.Validate())
	assert.True(t, vector.Equal(trait.Neutral()))
}

func TestAggregatePropagatesQuota(t *testing.T) {
	scorer := &stubScorer{err: tonifyerrors.NewQuotaError(errors.New("429"))}
	agg := New(scorer, nil)

	answers := question.AnswerSet{"q4_sample": question.TextAnswer("some writing")}
	_, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.Error(t, err)
	assert.True(t, tonifyerrors.IsQuota(err))
}

func TestAggregateIdempotent(t *testing.T) {
	scorer := &stubScorer{vectors: map[string]trait.Vector{
		"sample": {Warmth: 0.4, Brevity: -0.2},
	}}
	agg := New(scorer, nil)

	answers := question.AnswerSet{
		"q1_greeting": question.ChoiceAnswer("B"),
		"q3_values":   question.MultiAnswer("B"),
		"q4_sample":   question.TextAnswer("sample"),
	}

	first, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "first %+v second %+v", first, second)
}

func TestAggregateResultAlwaysInRange(t *testing.T) {
	// An oracle vector at the extremes plus extreme weights still clamps.
	scorer := &stubScorer{vectors: map[string]trait.Vector{
		"sample": {Formality: -1, Brevity: -1, Humor: -1, Warmth: -1, Directness: -1, Expressiveness: -1},
	}}
	agg := New(scorer, nil)

	answers := question.AnswerSet{
		"q1_greeting": question.ChoiceAnswer("A"),
		"q4_sample":   question.TextAnswer("sample"),
	}
	vector, err := agg.Aggregate(context.Background(), answers, testBank(t))
	require.NoError(t, err)
	require.NoError(t, vector.Validate())
}
