package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockops/inventory-service/internal/port"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisAdapter_SetGetDelete(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "inventory:test-cache-sku"
	client.Del(ctx, key)

	if err := adapter.Set(ctx, key, []byte(`{"sku":"test-cache-sku"}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := adapter.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != `{"sku":"test-cache-sku"}` {
		t.Errorf("unexpected value: %s", val)
	}

	if err := adapter.Delete(ctx, key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := adapter.Get(ctx, key); !errors.Is(err, port.ErrCacheMiss) {
		t.Errorf("expected miss after delete, got: %v", err)
	}
}

func TestRedisAdapter_Miss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client)
	_, err := adapter.Get(context.Background(), "inventory:test-never-set")
	if !errors.Is(err, port.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got: %v", err)
	}
}

func TestRedisAdapter_TTLExpiry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)
	key := "inventory:test-ttl-sku"

	if err := adapter.Set(ctx, key, []byte("x"), 500*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := adapter.Get(ctx, key); err != nil {
		t.Fatalf("get before expiry failed: %v", err)
	}

	time.Sleep(700 * time.Millisecond)
	if _, err := adapter.Get(ctx, key); !errors.Is(err, port.ErrCacheMiss) {
		t.Errorf("expected miss after TTL, got: %v", err)
	}
}
