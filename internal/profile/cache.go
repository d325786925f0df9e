package profile

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"tonify/internal/logging"
	"tonify/internal/ports"
)

// ListCache decorates a profile store with an owner-scoped LRU cache of list
// results. Every write through the cache invalidates the affected owner's
// entry in the same call, so the cache never diverges from the store.
type ListCache struct {
	store  ports.ProfileStore
	cache  *lru.Cache[string, []ports.Profile]
	logger logging.Logger
}

var _ ports.ProfileStore = (*ListCache)(nil)

// NewListCache wraps store with a cache of up to size owner lists.
func NewListCache(store ports.ProfileStore, size int, logger logging.Logger) (*ListCache, error) {
	cache, err := lru.New[string, []ports.Profile](size)
	if err != nil {
		return nil, fmt.Errorf("create list cache: %w", err)
	}
	return &ListCache{
		store:  store,
		cache:  cache,
		logger: logging.OrNop(logger),
	}, nil
}

func (c *ListCache) Create(ctx context.Context, ownerID string, fields ports.ProfileFields) (ports.Profile, error) {
	profile, err := c.store.Create(ctx, ownerID, fields)
	if err != nil {
		return ports.Profile{}, err
	}
	c.cache.Remove(ownerID)
	return profile, nil
}

func (c *ListCache) Get(ctx context.Context, id string) (ports.Profile, error) {
	return c.store.Get(ctx, id)
}

func (c *ListCache) List(ctx context.Context, ownerID string) ([]ports.Profile, error) {
	if cached, ok := c.cache.Get(ownerID); ok {
		c.logger.Debug("List cache hit for owner %s (%d profiles)", ownerID, len(cached))
		return cloneList(cached), nil
	}

	profiles, err := c.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(ownerID, cloneList(profiles))
	return profiles, nil
}

func (c *ListCache) Update(ctx context.Context, id string, update ports.ProfileUpdate) (ports.Profile, error) {
	profile, err := c.store.Update(ctx, id, update)
	if err != nil {
		return ports.Profile{}, err
	}
	c.cache.Remove(profile.OwnerID)
	return profile, nil
}

func (c *ListCache) Delete(ctx context.Context, id string) error {
	// The owner is needed for invalidation, so resolve it before deleting.
	profile, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Remove(profile.OwnerID)
	return nil
}

func cloneList(profiles []ports.Profile) []ports.Profile {
	cloned := make([]ports.Profile, len(profiles))
	for i, profile := range profiles {
		cloned[i] = cloneStored(profile)
	}
	return cloned
}
