// Package session owns the working tone state and its regenerate/save
// workflow.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/logging"
	"tonify/internal/ports"
	"tonify/internal/trait"
)

// ErrGenerationInFlight is returned when Regenerate is called while a prior
// call is still running; overlapping regenerations are rejected, not queued.
var ErrGenerationInFlight = errors.New("a regeneration is already in flight")

// ErrAlreadySaved is returned when Save is called on a working state that
// already has a persisted identity; subsequent changes persist through
// regeneration or explicit store updates.
var ErrAlreadySaved = errors.New("profile already has an identity")

// Controller holds the working, possibly-unsaved tone. The working state is
// mutated only by the controller's own methods; the profile store remains the
// single source of truth for persisted profiles.
type Controller struct {
	store     ports.ProfileStore
	generator ports.ContentGenerator
	logger    logging.Logger

	mu          sync.Mutex
	working     ports.Profile
	baseline    ports.Profile // stored snapshot backing the dirty check
	pendingName string
	epoch       uint64
	generating  bool
}

// New constructs a controller with an empty, all-neutral working state.
func New(store ports.ProfileStore, generator ports.ContentGenerator, logger logging.Logger) *Controller {
	return &Controller{
		store:     store,
		generator: generator,
		logger:    logging.OrNop(logger),
	}
}

// Working returns a copy of the current working state.
func (c *Controller) Working() ports.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneProfile(c.working)
}

// SetTraits merges the given trait values into the working state, clamping
// each to [-1, 1]. It never triggers generation.
func (c *Controller) SetTraits(partial map[trait.Trait]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.working.Traits = c.working.Traits.Merge(partial)
}

// Regenerate calls the content generation oracle with the current working
// traits. On success the working title/summary/prompt/examples are replaced;
// when the working state already has a persisted identity, the same values
// are first written through to the profile store, making regeneration on an
// existing profile auto-saving. On failure the working state is untouched.
func (c *Controller) Regenerate(ctx context.Context) error {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return ErrGenerationInFlight
	}
	c.generating = true
	traits := c.working.Traits
	profileID := c.working.ID
	epoch := c.epoch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
	}()

	content, err := c.generator.GenerateContent(ctx, traits)
	if err != nil {
		c.logger.Warn("Content generation failed: %v", err)
		return err
	}

	// Write-through happens before the working state is touched so a store
	// failure leaves everything exactly as it was.
	var updated ports.Profile
	if profileID != "" {
		update := ports.ProfileUpdate{
			Traits:   &traits,
			Title:    &content.Title,
			Summary:  &content.Summary,
			Prompt:   &content.Prompt,
			Examples: &content.Examples,
		}
		updated, err = c.store.Update(ctx, profileID, update)
		if err != nil {
			c.logger.Warn("Auto-save of profile %s failed: %v", profileID, err)
			return fmt.Errorf("auto-save profile: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The session may have been reset or rehydrated while the oracle call was
	// in flight; a stale result must never be applied.
	if c.epoch != epoch {
		c.logger.Debug("Discarding generation result from a previous session epoch")
		return nil
	}

	c.working.Title = content.Title
	c.working.Summary = content.Summary
	c.working.Prompt = content.Prompt
	c.working.Examples = append([]string(nil), content.Examples...)
	if profileID != "" {
		c.baseline = cloneProfile(updated)
	}
	c.logger.Info("Regenerated content for profile %q", profileID)
	return nil
}

// Save persists the working state as a new profile under the owner identity
// carried by ctx. Only valid before the working state has an identity. When
// no identity is available the pending name is preserved so the save can be
// retried after sign-in without data loss; a retry with an empty name reuses
// the preserved one.
func (c *Controller) Save(ctx context.Context, name string) (ports.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.working.ID != "" {
		return ports.Profile{}, ErrAlreadySaved
	}

	if name == "" {
		name = c.pendingName
	}

	ownerID := ports.OwnerIDFromContext(ctx)
	if ownerID == "" {
		c.pendingName = name
		return ports.Profile{}, tonifyerrors.ErrSaveRequiresIdentity
	}

	fields := ports.ProfileFields{
		Name:     name,
		Traits:   c.working.Traits,
		Title:    c.working.Title,
		Summary:  c.working.Summary,
		Prompt:   c.working.Prompt,
		Examples: append([]string(nil), c.working.Examples...),
	}

	created, err := c.store.Create(ctx, ownerID, fields)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	c.working = cloneProfile(created)
	c.baseline = cloneProfile(created)
	c.pendingName = ""
	c.logger.Info("Saved new profile %s for owner %s", created.ID, ownerID)
	return created, nil
}

// PendingName returns the save name preserved across an identity detour.
func (c *Controller) PendingName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingName
}

// HasUnsavedChanges reports whether the working state diverges from its
// stored profile. Always false for a working state with no identity.
func (c *Controller) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.working.ID == "" {
		return false
	}

	if !c.working.Traits.Equal(c.baseline.Traits) {
		return true
	}
	if c.working.Name != c.baseline.Name ||
		c.working.Title != c.baseline.Title ||
		c.working.Summary != c.baseline.Summary ||
		c.working.Prompt != c.baseline.Prompt {
		return true
	}
	if len(c.working.Examples) != len(c.baseline.Examples) {
		return true
	}
	for i := range c.working.Examples {
		if c.working.Examples[i] != c.baseline.Examples[i] {
			return true
		}
	}
	return false
}

// ResetForNewSession discards the working state back to all-neutral traits
// and empty content. Any generation still in flight is invalidated: its
// result will be discarded rather than applied to the fresh session.
func (c *Controller) ResetForNewSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.working = ports.Profile{}
	c.baseline = ports.Profile{}
	c.pendingName = ""
}

// LoadFromProfile hydrates the working state, including identity, from a
// stored profile for edit flows. Like a reset, it invalidates in-flight
// generation results.
func (c *Controller) LoadFromProfile(profile ports.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.working = cloneProfile(profile)
	c.baseline = cloneProfile(profile)
	c.pendingName = ""
}

func cloneProfile(p ports.Profile) ports.Profile {
	cloned := p
	cloned.Examples = append([]string(nil), p.Examples...)
	return cloned
}
