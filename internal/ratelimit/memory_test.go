package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 10, 0, 5, 0, time.UTC)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "1.2.3.4", 3, now)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		if result.Remaining != 3-i-1 {
			t.Fatalf("attempt %d: expected remaining=%d, got %d", i, 3-i-1, result.Remaining)
		}
	}

	result, err := limiter.Allow(ctx, "1.2.3.4", 3, now)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if result.Allowed {
		t.Fatalf("fourth attempt should be denied")
	}
	if !result.Reset.After(now) {
		t.Fatalf("reset must be in the future, got %s", result.Reset)
	}

	// A new window clears the count.
	later := now.Add(time.Minute)
	result, err = limiter.Allow(ctx, "1.2.3.4", 3, later)
	if err != nil {
		t.Fatalf("allow in next window: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("next window should be allowed")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Now()

	if result, _ := limiter.Allow(ctx, "a", 1, now); !result.Allowed {
		t.Fatalf("first key should be allowed")
	}
	if result, _ := limiter.Allow(ctx, "a", 1, now); result.Allowed {
		t.Fatalf("first key should be exhausted")
	}
	if result, _ := limiter.Allow(ctx, "b", 1, now); !result.Allowed {
		t.Fatalf("other keys must not share the counter")
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter()

	result, err := limiter.Allow(context.Background(), "a", 0, time.Now())
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("zero limit must disable throttling")
	}
}
