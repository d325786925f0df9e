package ports

import (
	"context"
	"time"

	"tonify/internal/trait"
)

// Profile is a persisted, named tone scoped to an owner identity.
type Profile struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Name      string       `json:"name"`
	Traits    trait.Vector `json:"traits"`
	Title     string       `json:"title"`
	Summary   string       `json:"summary"`
	Prompt    string       `json:"prompt"`
	Examples  []string     `json:"examples"`
	CreatedAt time.Time    `json:"created_at"`
}

// ProfileFields carries the writable fields for a create.
type ProfileFields struct {
	Name     string
	Traits   trait.Vector
	Title    string
	Summary  string
	Prompt   string
	Examples []string
}

// ProfileUpdate carries a partial update; nil fields are left unchanged.
// All non-nil fields are applied atomically.
type ProfileUpdate struct {
	Name     *string
	Traits   *trait.Vector
	Title    *string
	Summary  *string
	Prompt   *string
	Examples *[]string
}

// ProfileStore is generic record CRUD for tone profiles, keyed by profile
// identity and scoped by owner identity for list and create.
type ProfileStore interface {
	// Create persists a new profile and returns it with an assigned identity
	// and creation timestamp.
	Create(ctx context.Context, ownerID string, fields ProfileFields) (Profile, error)

	// Get returns one profile by identity; ErrNotFound when absent.
	Get(ctx context.Context, id string) (Profile, error)

	// List returns the owner's profiles ordered newest-first.
	List(ctx context.Context, ownerID string) ([]Profile, error)

	// Update applies a partial update and returns the updated record.
	Update(ctx context.Context, id string, update ProfileUpdate) (Profile, error)

	// Delete removes a profile; ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// Apply overlays the update's non-nil fields onto a profile.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Traits != nil {
		p.Traits = *u.Traits
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Summary != nil {
		p.Summary = *u.Summary
	}
	if u.Prompt != nil {
		p.Prompt = *u.Prompt
	}
	if u.Examples != nil {
		p.Examples = append([]string(nil), (*u.Examples)...)
	}
}
