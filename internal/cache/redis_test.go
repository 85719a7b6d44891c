package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/storefront-cli/internal/cache"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	s := cache.NewRedisStore(client, "categories", "https://shop.example.com")

	s.Put(ctx, []item{{ID: "c-1", Name: "Kitchen"}})

	var got []item
	if !s.Get(ctx, &got) {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestRedisStore_KeyExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	s := cache.NewRedisStoreWithTTL(client, "tags", "https://shop.example.com", time.Minute)

	s.Put(ctx, []string{"sale"})
	mr.FastForward(2 * time.Minute)

	var got []string
	if s.Get(ctx, &got) {
		t.Fatal("expected miss after key expiry")
	}
}

func TestRedisStore_Clear(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	s := cache.NewRedisStore(client, "tags", "https://shop.example.com")

	s.Put(ctx, []string{"sale"})
	s.Clear(ctx)

	var got []string
	if s.Get(ctx, &got) {
		t.Fatal("expected miss after clear")
	}
}

func TestClearAllRedis_KeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	cache.NewRedisStore(client, "tags", "https://shop.example.com").Put(ctx, []string{"a"})
	cache.NewRedisStore(client, "categories", "https://shop.example.com").Put(ctx, []string{"b"})
	if err := mr.Set("other-app:key", "keep"); err != nil {
		t.Fatal(err)
	}

	if err := cache.ClearAllRedis(ctx, client); err != nil {
		t.Fatalf("ClearAllRedis: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != "other-app:key" {
		t.Fatalf("unexpected remaining keys: %v", keys)
	}
}

func TestRedisStore_UnreachableServerIsAMiss(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	s := cache.NewRedisStore(client, "tags", "https://shop.example.com")
	s.Put(context.Background(), []string{"a"})

	var got []string
	if s.Get(context.Background(), &got) {
		t.Fatal("expected miss when redis is down")
	}
}
