package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonify/internal/trait"
)

func TestDefaultBankLoads(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)
	require.Equal(t, 8, bank.Len())

	kinds := map[Kind]int{}
	for _, q := range bank.Questions() {
		kinds[q.Kind]++
	}
	assert.Equal(t, 5, kinds[KindChoice])
	assert.Equal(t, 2, kinds[KindMultiSelect])
	assert.Equal(t, 1, kinds[KindFreeText])

	greeting, ok := bank.ByID("q1_greeting")
	require.True(t, ok)
	opt, ok := greeting.Option("A")
	require.True(t, ok)
	assert.Equal(t, -1.0, opt.Weights[trait.Formality])
	assert.Equal(t, 0.3, opt.Weights[trait.Warmth])
}

func TestNewBankValidation(t *testing.T) {
	valid := Question{
		ID:     "q1",
		Kind:   KindChoice,
		Prompt: "pick one",
		Options: []Option{
			{Key: "A", Text: "a", Weights: map[trait.Trait]float64{trait.Humor: 0.5}},
		},
	}

	tests := []struct {
		name      string
		questions []Question
		wantErr   string
	}{
		{name: "valid", questions: []Question{valid}},
		{
			name: "duplicate ids",
			questions: []Question{valid, {
				ID: "q1", Kind: KindFreeText, Prompt: "write",
			}},
			wantErr: "duplicate question id",
		},
		{
			name: "unknown trait",
			questions: []Question{{
				ID: "q2", Kind: KindChoice, Prompt: "pick",
				Options: []Option{{Key: "A", Weights: map[trait.Trait]float64{"charisma": 1}}},
			}},
			wantErr: "unknown trait",
		},
		{
			name: "weight out of range",
			questions: []Question{{
				ID: "q2", Kind: KindChoice, Prompt: "pick",
				Options: []Option{{Key: "A", Weights: map[trait.Trait]float64{trait.Humor: 1.5}}},
			}},
			wantErr: "outside [-1, 1]",
		},
		{
			name: "multi-select without max",
			questions: []Question{{
				ID: "q2", Kind: KindMultiSelect, Prompt: "pick",
				Options: []Option{{Key: "A"}},
			}},
			wantErr: "max_selections",
		},
		{
			name: "free text with options",
			questions: []Question{{
				ID: "q2", Kind: KindFreeText, Prompt: "write",
				Options: []Option{{Key: "A"}},
			}},
			wantErr: "cannot have options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBank(tt.questions)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAnswerSetClone(t *testing.T) {
	original := AnswerSet{
		"q1": ChoiceAnswer("A"),
		"q6": MultiAnswer("A", "B"),
		"q8": TextAnswer("hello"),
	}

	cloned := original.Clone()
	cloned["q1"] = ChoiceAnswer("B")
	cloned["q6"].Options[0] = "D"

	assert.Equal(t, "A", original["q1"].Option)
	assert.Equal(t, "A", original["q6"].Options[0])
	assert.Equal(t, "hello", cloned["q8"].Text)
}
