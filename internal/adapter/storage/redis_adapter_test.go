package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
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

func TestGetSetDelete(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "cart:test-user")

	// Miss is (nil, nil), not an error.
	val, err := adapter.Get(ctx, "cart:test-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil on miss, got %q", val)
	}

	if err := adapter.Set(ctx, "cart:test-user", []byte(`{"items":[]}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err = adapter.Get(ctx, "cart:test-user")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != `{"items":[]}` {
		t.Errorf("unexpected value %q", val)
	}

	if err := adapter.Delete(ctx, "cart:test-user"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	val, _ = adapter.Get(ctx, "cart:test-user")
	if val != nil {
		t.Error("expected miss after delete")
	}
}

func TestSet_EntryExpires(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	if err := adapter.Set(ctx, "expiry-test", []byte("v"), 100*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	val, err := adapter.Get(ctx, "expiry-test")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != nil {
		t.Error("expected entry to expire")
	}
}

func TestSetNX_FirstCallerWins(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "lock:cart:test-user")

	ok, err := adapter.SetNX(ctx, "lock:cart:test-user", []byte("a"), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first caller to acquire")
	}

	ok, err = adapter.SetNX(ctx, "lock:cart:test-user", []byte("b"), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second caller to lose")
	}

	client.Del(ctx, "lock:cart:test-user")
}

func TestSetNX_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "lock:checkout:concurrent-user")

	var acquired atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetNX(ctx, "lock:checkout:concurrent-user", []byte("x"), time.Minute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				acquired.Add(1)
			}
		}()
	}

	wg.Wait()

	if acquired.Load() != 1 {
		t.Errorf("expected exactly 1 acquisition, got %d", acquired.Load())
	}

	client.Del(ctx, "lock:checkout:concurrent-user")
}

func TestDeleteByPattern(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	for _, key := range []string{"products:aaa", "products:bbb", "products:ccc"} {
		if err := adapter.Set(ctx, key, []byte("page"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := adapter.Set(ctx, "product:keeper", []byte("p"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := adapter.DeleteByPattern(ctx, "products:*"); err != nil {
		t.Fatalf("DeleteByPattern failed: %v", err)
	}

	for _, key := range []string{"products:aaa", "products:bbb", "products:ccc"} {
		if val, _ := adapter.Get(ctx, key); val != nil {
			t.Errorf("expected %s to be deleted", key)
		}
	}
	if val, _ := adapter.Get(ctx, "product:keeper"); val == nil {
		t.Error("pattern delete must not touch product:keeper")
	}

	client.Del(ctx, "product:keeper")
}
