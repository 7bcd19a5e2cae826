// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/helphub/internal/platform/constants"
)

// RedisCache implements [Cache] with one JSON string per role profile and one
// integer generation counter per role name.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a profile cache. A zero ttl stores entries without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(roleName string) string {
	return constants.RedisPrefixProfile + roleName
}

func generationKey(roleName string) string {
	return constants.RedisPrefixProfileGeneration + roleName
}

// setIfCurrent writes KEYS[1] only while KEYS[2] still holds ARGV[1]. A missing
// counter reads as generation 0. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

/*
Get implements [Cache].

The entry and its generation are read with one MGET, so the pair is
consistent with any concurrent [RedisCache.Invalidate].

Returns:
  - *Profile: Cached profile, nil on a miss
  - int64: Generation of roleName at read time
  - error: Redis failure or an undecodable entry
*/
func (cache *RedisCache) Get(context context.Context, roleName string) (*Profile, int64, error) {
	values, err := cache.client.MGet(context, cacheKey(roleName), generationKey(roleName)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis_profile_cache_get_failed: %w", err)
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, 0, fmt.Errorf("redis_profile_cache_decode_failed: %w", err)
	}

	profile, err := FromSnapshot(snapshot)
	if err != nil {
		return nil, 0, fmt.Errorf("redis_profile_cache_invalid_entry: %w", err)
	}
	return profile, generation, nil
}

func parseGeneration(value any) (int64, error) {
	raw, ok := value.(string)
	if !ok {
		return 0, nil
	}

	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis_profile_cache_bad_generation: %w", err)
	}
	return generation, nil
}

// Set implements [Cache].
func (cache *RedisCache) Set(context context.Context, profile *Profile, generation int64) (bool, error) {
	snapshot := profile.Snapshot()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("redis_profile_cache_encode_failed: %w", err)
	}

	keys := []string{cacheKey(snapshot.RoleName), generationKey(snapshot.RoleName)}
	written, err := setIfCurrent.Run(context, cache.client, keys,
		strconv.FormatInt(generation, 10), payload, cache.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis_profile_cache_set_failed: %w", err)
	}
	return written == 1, nil
}

// Invalidate implements [Cache]. Entries and counters change in one MULTI.
func (cache *RedisCache) Invalidate(context context.Context, roleNames ...string) error {
	if len(roleNames) == 0 {
		return nil
	}

	_, err := cache.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		for _, name := range roleNames {
			pipe.Del(context, cacheKey(name))
			pipe.Incr(context, generationKey(name))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_profile_cache_invalidate_failed: %w", err)
	}
	return nil
}
