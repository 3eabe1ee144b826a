package cache

import (
	"context"
	"courier-route-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	c := NewRedisGeocodeCache(client, time.Minute)
	ctx := context.Background()

	want := map[string]domain.Coordinates{
		"1901 W Madison St": {Lat: 33.446, Lng: -112.089},
		"100 Main St":       {Lat: 40.712, Lng: -74.006},
	}

	if err := c.PutMany(ctx, want); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"1901 W Madison St", "100 Main St", "nowhere"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2", len(got))
	}
	for addr, coord := range want {
		if got[addr] != coord {
			t.Errorf("%q = %+v, want %+v", addr, got[addr], coord)
		}
	}
}

func TestRedisGeocodeCacheSkipsCorruptEntries(t *testing.T) {
	client := newTestRedis(t)
	c := NewRedisGeocodeCache(client, time.Minute)
	ctx := context.Background()

	if err := client.Set(ctx, geocodeKeyPrefix+"bad", "not-json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"bad"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt entry should be a miss, got %+v", got)
	}
}

func TestRedisTravelTimeCacheRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	c := NewRedisTravelTimeCache(client, time.Minute)
	ctx := context.Background()

	pairA := domain.Coordinates{Lat: 1, Lng: 2}.LatLng() + "|" + domain.Coordinates{Lat: 3, Lng: 4}.LatLng()
	pairB := domain.Coordinates{Lat: 3, Lng: 4}.LatLng() + "|" + domain.Coordinates{Lat: 1, Lng: 2}.LatLng()

	if err := c.PutMany(ctx, map[string]float64{pairA: 300, pairB: 330.5}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{pairA, pairB, "0,0|9,9"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2", len(got))
	}
	if got[pairA] != 300 {
		t.Errorf("pairA = %f, want 300", got[pairA])
	}
	if got[pairB] != 330.5 {
		t.Errorf("pairB = %f, want 330.5", got[pairB])
	}
}

func TestRedisTravelTimeCacheExpiry(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	c := NewRedisTravelTimeCache(client, time.Second)
	ctx := context.Background()

	if err := c.PutMany(ctx, map[string]float64{"a|b": 60}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	srv.FastForward(2 * time.Second)

	got, err := c.GetMany(ctx, []string{"a|b"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired entry, got %+v", got)
	}
}
