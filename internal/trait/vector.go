package trait

import (
	"fmt"
	"math"
)

// Trait names one of the six style dimensions.
type Trait string

const (
	Formality      Trait = "formality"
	Brevity        Trait = "brevity"
	Humor          Trait = "humor"
	Warmth         Trait = "warmth"
	Directness     Trait = "directness"
	Expressiveness Trait = "expressiveness"
)

// All lists the six traits in canonical order.
var All = []Trait{Formality, Brevity, Humor, Warmth, Directness, Expressiveness}

// Epsilon is the tolerance for float comparison between vectors.
const Epsilon = 1e-9

// Vector is the six-dimensional normalized representation of a writing style.
// Every field lies in [-1, 1]; 0.0 means no signal for that trait.
type Vector struct {
	Formality      float64 `json:"formality" yaml:"formality"`
	Brevity        float64 `json:"brevity" yaml:"brevity"`
	Humor          float64 `json:"humor" yaml:"humor"`
	Warmth         float64 `json:"warmth" yaml:"warmth"`
	Directness     float64 `json:"directness" yaml:"directness"`
	Expressiveness float64 `json:"expressiveness" yaml:"expressiveness"`
}

// Neutral returns the all-zero vector.
func Neutral() Vector {
	return Vector{}
}

// Get returns the value for the named trait. Unknown traits read as 0.
func (v Vector) Get(t Trait) float64 {
	switch t {
	case Formality:
		return v.Formality
	case Brevity:
		return v.Brevity
	case Humor:
		return v.Humor
	case Warmth:
		return v.Warmth
	case Directness:
		return v.Directness
	case Expressiveness:
		return v.Expressiveness
	}
	return 0
}

// Set assigns the value for the named trait. Unknown traits are ignored.
func (v *Vector) Set(t Trait, value float64) {
	switch t {
	case Formality:
		v.Formality = value
	case Brevity:
		v.Brevity = value
	case Humor:
		v.Humor = value
	case Warmth:
		v.Warmth = value
	case Directness:
		v.Directness = value
	case Expressiveness:
		v.Expressiveness = value
	}
}

// Merge overlays the given trait values onto a copy of v, clamping each to
// [-1, 1]. Traits absent from partial keep their current value.
func (v Vector) Merge(partial map[Trait]float64) Vector {
	merged := v
	for t, value := range partial {
		merged.Set(t, Clamp(value))
	}
	return merged
}

// Clamp bounds a single value to [-1, 1].
func Clamp(value float64) float64 {
	return math.Max(-1, math.Min(1, value))
}

// Clamped returns a copy of v with every field bounded to [-1, 1].
func (v Vector) Clamped() Vector {
	clamped := v
	for _, t := range All {
		clamped.Set(t, Clamp(v.Get(t)))
	}
	return clamped
}

// Validate reports an error when any field lies outside [-1, 1] or is not a
// finite number.
func (v Vector) Validate() error {
	for _, t := range All {
		value := v.Get(t)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("trait %s is not a finite number", t)
		}
		if value < -1 || value > 1 {
			return fmt.Errorf("trait %s value %v outside [-1, 1]", t, value)
		}
	}
	return nil
}

// Equal reports whether two vectors match field-by-field within Epsilon.
func (v Vector) Equal(other Vector) bool {
	for _, t := range All {
		if math.Abs(v.Get(t)-other.Get(t)) > Epsilon {
			return false
		}
	}
	return true
}
