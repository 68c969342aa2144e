package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const permCacheKeyPrefix = "authz:perms:"

// PermissionCache holds resolved advanced-permission sets per person in
// redis. Role mutations invalidate the person's entry.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache constructs a cache with the given entry TTL.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	return &PermissionCache{client: client, ttl: ttl}
}

func permCacheKey(personID uuid.UUID) string {
	return permCacheKeyPrefix + personID.String()
}

// Get returns the cached permission set, or false on a miss. Transport
// errors are reported so the caller can log and fall back to the store.
func (c *PermissionCache) Get(ctx context.Context, personID uuid.UUID) ([]AdvancedPermission, bool, error) {
	raw, err := c.client.Get(ctx, permCacheKey(personID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("authz: cache get: %w", err)
	}
	var perms []AdvancedPermission
	if err := json.Unmarshal(raw, &perms); err != nil {
		// A corrupt entry behaves as a miss.
		return nil, false, nil
	}
	return perms, true, nil
}

// Set stores the permission set under the person's key.
func (c *PermissionCache) Set(ctx context.Context, personID uuid.UUID, perms []AdvancedPermission) error {
	raw, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("authz: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, permCacheKey(personID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("authz: cache set: %w", err)
	}
	return nil
}

// InvalidatePerson drops the person's cached permission set.
func (c *PermissionCache) InvalidatePerson(ctx context.Context, personID uuid.UUID) error {
	if err := c.client.Del(ctx, permCacheKey(personID)).Err(); err != nil {
		return fmt.Errorf("authz: cache invalidate: %w", err)
	}
	return nil
}
