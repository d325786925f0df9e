package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/logging"
	"tonify/internal/ports"
)

// RedisStore persists profiles in Redis for shared deployments. Each profile
// lives at "{prefix}:profile:{id}" as a JSON value; each owner has a list at
// "{prefix}:owner:{ownerID}" of profile ids, newest first.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger logging.Logger
	newID  func() string
	now    func() time.Time
}

var _ ports.ProfileStore = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. prefix defaults to "tonify".
func NewRedisStore(client *redis.Client, prefix string, logger logging.Logger) *RedisStore {
	if prefix == "" {
		prefix = "tonify"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logging.OrNop(logger),
		newID:  newProfileID,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisStore) profileKey(id string) string {
	return fmt.Sprintf("%s:profile:%s", s.prefix, id)
}

func (s *RedisStore) ownerKey(ownerID string) string {
	return fmt.Sprintf("%s:owner:%s", s.prefix, ownerID)
}

func (s *RedisStore) Create(ctx context.Context, ownerID string, fields ports.ProfileFields) (ports.Profile, error) {
	profile := ports.Profile{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      fields.Name,
		Traits:    fields.Traits,
		Title:     fields.Title,
		Summary:   fields.Summary,
		Prompt:    fields.Prompt,
		Examples:  append([]string(nil), fields.Examples...),
		CreatedAt: s.now(),
	}

	encoded, err := json.Marshal(profile)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("encode profile: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.profileKey(profile.ID), encoded, 0)
	pipe.LPush(ctx, s.ownerKey(ownerID), profile.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return ports.Profile{}, fmt.Errorf("store profile: %w", err)
	}

	s.logger.Debug("Created profile %s for owner %s", profile.ID, ownerID)
	return profile, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (ports.Profile, error) {
	encoded, err := s.client.Get(ctx, s.profileKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return ports.Profile{}, tonifyerrors.ErrNotFound
	}
	if err != nil {
		return ports.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	var profile ports.Profile
	if err := json.Unmarshal([]byte(encoded), &profile); err != nil {
		return ports.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}

func (s *RedisStore) List(ctx context.Context, ownerID string) ([]ports.Profile, error) {
	ids, err := s.client.LRange(ctx, s.ownerKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}

	var result []ports.Profile
	for _, id := range ids {
		profile, err := s.Get(ctx, id)
		if tonifyerrors.IsNotFound(err) {
			// Index entry outlived its record; skip it.
			s.logger.Warn("Owner %s index references missing profile %s", ownerID, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, update ports.ProfileUpdate) (ports.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return ports.Profile{}, err
	}

	update.Apply(&profile)

	encoded, err := json.Marshal(profile)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("encode profile: %w", err)
	}
	if err := s.client.Set(ctx, s.profileKey(id), encoded, 0).Err(); err != nil {
		return ports.Profile{}, fmt.Errorf("store profile: %w", err)
	}
	return profile, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.profileKey(id))
	pipe.LRem(ctx, s.ownerKey(profile.OwnerID), 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
