package cache

import (
	"context"
	"courier-route-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// DefaultRedisTTL bounds how long cached provider results stay fresh.
// Travel times drift with traffic; a day-old value is still a better
// seed than a cold call.
const DefaultRedisTTL = 24 * time.Hour

const (
	geocodeKeyPrefix    = "geocode:"
	travelTimeKeyPrefix = "traveltime:"
)

// RedisGeocodeCache caches address -> coordinate lookups in Redis with
// a TTL. Values are stored as small JSON documents.
type RedisGeocodeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

type cachedCoord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fetch cached coordinates for the given addresses.
func (r *RedisGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueNonEmpty(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = geocodeKeyPrefix + a
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var c cachedCoord
		// Unparseable entries are treated as misses, not failures.
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		out[uniq[i]] = domain.Coordinates{Lat: c.Lat, Lng: c.Lng}
	}

	return out, nil
}

// Store address -> coordinate mappings with the cache TTL.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for addr, c := range results {
		payload, err := json.Marshal(cachedCoord{Lat: c.Lat, Lng: c.Lng})
		if err != nil {
			return fmt.Errorf("insert geocode cache addr=%q: marshal: %w", addr, err)
		}
		pipe.Set(ctx, geocodeKeyPrefix+addr, payload, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: pipeline exec: %w", err)
	}

	return nil
}

// RedisTravelTimeCache caches directed pairwise travel times in Redis
// with a TTL.
type RedisTravelTimeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTravelTimeCache(client *redis.Client, ttl time.Duration) *RedisTravelTimeCache {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisTravelTimeCache{Client: client, TTL: ttl}
}

// Fetch cached travel times for the given pair keys.
func (r *RedisTravelTimeCache) GetMany(ctx context.Context, pairs []string) (map[string]float64, error) {
	if r.Client == nil {
		return nil, errors.New("travel time cache: redis client is nil")
	}

	uniq := uniqueNonEmpty(pairs)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	keys := make([]string, len(uniq))
	for i, p := range uniq {
		keys[i] = travelTimeKeyPrefix + p
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: mget: %w", err)
	}

	out := make(map[string]float64, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		out[uniq[i]] = seconds
	}

	return out, nil
}

// Store directed travel times with the cache TTL.
func (r *RedisTravelTimeCache) PutMany(ctx context.Context, values map[string]float64) error {
	if r.Client == nil {
		return errors.New("travel time cache: redis client is nil")
	}

	if len(values) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for pair, seconds := range values {
		pipe.Set(ctx, travelTimeKeyPrefix+pair, strconv.FormatFloat(seconds, 'f', -1, 64), r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert travel time cache: pipeline exec: %w", err)
	}

	return nil
}
