package question

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBankYAML []byte

var (
	defaultBankOnce sync.Once
	defaultBank     *Bank
	defaultBankErr  error
)

// DefaultBank returns the built-in quiz: five choice questions, two
// multi-selects, and one free-text writing sample.
func DefaultBank() (*Bank, error) {
	defaultBankOnce.Do(func() {
		defaultBank, defaultBankErr = ParseBank(defaultBankYAML)
	})
	return defaultBank, defaultBankErr
}

// ParseBank decodes a YAML question-bank definition.
func ParseBank(data []byte) (*Bank, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}
	return NewBank(doc.Questions)
}
