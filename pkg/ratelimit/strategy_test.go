package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestInMemoryRateLimiter_IsLimited_IsPerKey(t *testing.T) {
	ctx := context.Background()
	limiter := NewInMemoryRateLimiter(1, time.Second)

	limited, err := limiter.IsLimited(ctx, "client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-a should not be limited")
	}

	limited, err = limiter.IsLimited(ctx, "client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limited {
		t.Fatalf("second immediate request for client-a should be limited")
	}

	limited, err = limiter.IsLimited(ctx, "client-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-b should not be limited (per-key limiter)")
	}
}

func TestInMemoryRateLimiter_AllowsBurstUpToLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewInMemoryRateLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		if limited, _ := limiter.IsLimited(ctx, "page-view"); limited {
			t.Fatalf("request %d should be within the burst", i+1)
		}
	}

	if limited, _ := limiter.IsLimited(ctx, "page-view"); !limited {
		t.Fatalf("request 31 should be limited")
	}
}

func TestNewRateLimiter_PicksStrategy(t *testing.T) {
	if _, ok := NewRateLimiter(&RateLimitConfig{Requests: 1, Window: time.Second}).(*InMemoryRateLimiter); !ok {
		t.Fatalf("expected in-memory limiter without a Redis client")
	}

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	rl, ok := NewRateLimiter(&RateLimitConfig{Requests: 5, Window: time.Minute, Redis: client}).(*RedisRateLimiter)
	if !ok {
		t.Fatalf("expected Redis limiter when a client is configured")
	}

	if n, w := rl.GetLimitDetails(); n != 5 || w != time.Minute {
		t.Fatalf("unexpected limit details: %d %v", n, w)
	}
}

func TestRedisRateLimiter_ReturnsErrorWhenRedisUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	rl := NewRedisRateLimiter(client, 5, time.Minute, nil)

	limited, err := rl.IsLimited(context.Background(), "client-a")
	if err == nil {
		t.Fatalf("expected an error when Redis is unreachable")
	}
	if limited {
		t.Fatalf("a failed check must not report the client as limited")
	}
}
