package profile

import (
	"context"
	"fmt"

	"tonify/internal/ports"
)

// CopySuffix is appended to the source profile's name when duplicating.
const CopySuffix = " copy"

// Duplicate reads one profile and creates a new record under the same owner,
// copying every field except the name, which gets a suffix. No multi-record
// transaction is involved: a concurrent delete between the read and the
// create simply yields a duplicate of the last-read state.
func Duplicate(ctx context.Context, store ports.ProfileStore, id string) (ports.Profile, error) {
	source, err := store.Get(ctx, id)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("duplicate profile: %w", err)
	}

	fields := ports.ProfileFields{
		Name:     source.Name + CopySuffix,
		Traits:   source.Traits,
		Title:    source.Title,
		Summary:  source.Summary,
		Prompt:   source.Prompt,
		Examples: source.Examples,
	}
	return store.Create(ctx, source.OwnerID, fields)
}
