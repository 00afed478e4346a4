package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout written by the host-side exporter
const (
	statesKey         = "hass:states"
	entityRegistryKey = "hass:entity_registry"
	deviceRegistryKey = "hass:device_registry"
	areaRegistryKey   = "hass:area_registry"
	exposedKeyPrefix  = "hass:exposed:"
)

// RedisStore implements Registry on top of a Redis mirror of the host registries.
// It never writes; every call reads the current mirror.
type RedisStore struct {
	client *redis.Client
}

var _ Registry = (*RedisStore)(nil)

// NewRedisStore connects to the Redis mirror
func NewRedisStore(redisURL string) (*RedisStore, error) {
	// Parse Redis URL
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// exposedKey generates the Redis key of the exposure set for a domain
func (r *RedisStore) exposedKey(domain string) string {
	return fmt.Sprintf("%s%s", exposedKeyPrefix, domain)
}

// States returns all states ordered by entity id
func (r *RedisStore) States(ctx context.Context) ([]State, error) {
	data, err := r.client.HGetAll(ctx, statesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load states from Redis: %w", err)
	}

	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	states := make([]State, 0, len(ids))
	for _, id := range ids {
		var state State
		if err := json.Unmarshal([]byte(data[id]), &state); err != nil {
			return nil, fmt.Errorf("failed to parse state %s: %w", id, err)
		}
		if state.EntityID == "" {
			state.EntityID = id
		}
		states = append(states, state)
	}
	return states, nil
}

func (r *RedisStore) ShouldExpose(ctx context.Context, domain, entityID string) (bool, error) {
	exposed, err := r.client.SIsMember(ctx, r.exposedKey(domain), entityID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check exposure of %s: %w", entityID, err)
	}
	return exposed, nil
}

func (r *RedisStore) Entity(ctx context.Context, entityID string) (*EntityEntry, error) {
	var entry EntityEntry
	found, err := r.lookup(ctx, entityRegistryKey, entityID, &entry)
	if err != nil || !found {
		return nil, err
	}
	if entry.EntityID == "" {
		entry.EntityID = entityID
	}
	return &entry, nil
}

func (r *RedisStore) Device(ctx context.Context, deviceID string) (*DeviceEntry, error) {
	var entry DeviceEntry
	found, err := r.lookup(ctx, deviceRegistryKey, deviceID, &entry)
	if err != nil || !found {
		return nil, err
	}
	if entry.ID == "" {
		entry.ID = deviceID
	}
	return &entry, nil
}

func (r *RedisStore) Area(ctx context.Context, areaID string) (*Area, error) {
	var area Area
	found, err := r.lookup(ctx, areaRegistryKey, areaID, &area)
	if err != nil || !found {
		return nil, err
	}
	if area.ID == "" {
		area.ID = areaID
	}
	return &area, nil
}

// lookup reads one JSON record from a registry hash
func (r *RedisStore) lookup(ctx context.Context, key, field string, out any) (bool, error) {
	data, err := r.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s from %s: %w", field, key, err)
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to parse %s from %s: %w", field, key, err)
	}
	return true, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Health check - verify Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
