package question

import (
	"fmt"

	"tonify/internal/trait"
)

// Kind discriminates the three question variants.
type Kind string

const (
	KindChoice      Kind = "choice"
	KindMultiSelect Kind = "multi_select"
	KindFreeText    Kind = "free_text"
)

// Option is one selectable answer for a choice or multi-select question. Its
// weight mapping is partial: traits not listed contribute nothing.
type Option struct {
	Key     string                  `yaml:"key"`
	Text    string                  `yaml:"text"`
	Weights map[trait.Trait]float64 `yaml:"weights"`
}

// Question is one quiz item. Kind decides which fields are meaningful:
// Options for choice and multi-select, MaxSelections for multi-select only,
// WordLimit (informational, enforced by the presenting layer) for free text.
type Question struct {
	ID            string   `yaml:"id"`
	Kind          Kind     `yaml:"kind"`
	Prompt        string   `yaml:"prompt"`
	Options       []Option `yaml:"options,omitempty"`
	MaxSelections int      `yaml:"max_selections,omitempty"`
	WordLimit     int      `yaml:"word_limit,omitempty"`
}

// Option returns the option with the given key.
func (q Question) Option(key string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

func (q Question) validate() error {
	if q.ID == "" {
		return fmt.Errorf("question missing id")
	}
	if q.Prompt == "" {
		return fmt.Errorf("question %s: missing prompt", q.ID)
	}

	switch q.Kind {
	case KindChoice, KindMultiSelect:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: %s question needs options", q.ID, q.Kind)
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.Key == "" {
				return fmt.Errorf("question %s: option missing key", q.ID)
			}
			if seen[opt.Key] {
				return fmt.Errorf("question %s: duplicate option key %q", q.ID, opt.Key)
			}
			seen[opt.Key] = true
			for tr, weight := range opt.Weights {
				if !knownTrait(tr) {
					return fmt.Errorf("question %s: option %s: unknown trait %q", q.ID, opt.Key, tr)
				}
				if weight < -1 || weight > 1 {
					return fmt.Errorf("question %s: option %s: trait %s weight %v outside [-1, 1]", q.ID, opt.Key, tr, weight)
				}
			}
		}
		if q.Kind == KindMultiSelect && q.MaxSelections <= 0 {
			return fmt.Errorf("question %s: multi-select needs a positive max_selections", q.ID)
		}
	case KindFreeText:
		if len(q.Options) > 0 {
			return fmt.Errorf("question %s: free-text question cannot have options", q.ID)
		}
	default:
		return fmt.Errorf("question %s: unknown kind %q", q.ID, q.Kind)
	}

	return nil
}

func knownTrait(t trait.Trait) bool {
	for _, known := range trait.All {
		if t == known {
			return true
		}
	}
	return false
}

// Bank is an ordered, immutable sequence of questions. Order matters for
// navigation, not for scoring.
type Bank struct {
	questions []Question
	byID      map[string]int
}

// NewBank validates the question list and builds the lookup index.
func NewBank(questions []Question) (*Bank, error) {
	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		if err := q.validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		byID[q.ID] = i
	}
	return &Bank{
		questions: append([]Question(nil), questions...),
		byID:      byID,
	}, nil
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns the question at a 0-based position.
func (b *Bank) At(index int) Question {
	return b.questions[index]
}

// ByID returns the question with the given identifier.
func (b *Bank) ByID(id string) (Question, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[idx], true
}

// Questions returns a copy of the ordered question list.
func (b *Bank) Questions() []Question {
	return append([]Question(nil), b.questions...)
}
