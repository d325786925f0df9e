package question

// Answer holds the raw response to one question. Exactly one field is set,
// matching the question's kind; the aggregation layer interprets it.
type Answer struct {
	Option  string   `json:"option,omitempty"`  // choice: selected option key
	Options []string `json:"options,omitempty"` // multi-select: selected option keys
	Text    string   `json:"text,omitempty"`    // free text: raw submission
}

// ChoiceAnswer records a single selected option.
func ChoiceAnswer(key string) Answer {
	return Answer{Option: key}
}

// MultiAnswer records a set of selected options.
func MultiAnswer(keys ...string) Answer {
	return Answer{Options: append([]string(nil), keys...)}
}

// TextAnswer records a free-text submission.
func TextAnswer(text string) Answer {
	return Answer{Text: text}
}

// AnswerSet maps question identifiers to answers. It may be sparse;
// unanswered questions are simply absent.
type AnswerSet map[string]Answer

// Clone returns an independent copy of the answer set.
func (s AnswerSet) Clone() AnswerSet {
	cloned := make(AnswerSet, len(s))
	for id, answer := range s {
		if answer.Options != nil {
			answer.Options = append([]string(nil), answer.Options...)
		}
		cloned[id] = answer
	}
	return cloned
}
