package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return s, c
}

func TestRedisLock_Exclusive(t *testing.T) {
	_, c := newClient(t)
	ctx := context.Background()

	a := NewRedisLock(c, "escalator", time.Minute)
	b := NewRedisLock(c, "escalator", time.Minute)

	ok, err := a.TryLock(ctx)
	if err != nil || !ok {
		t.Fatalf("first TryLock = %v, %v", ok, err)
	}
	ok, err = b.TryLock(ctx)
	if err != nil || ok {
		t.Fatalf("second TryLock should fail softly, got %v, %v", ok, err)
	}

	// b does not own the key
	if err := b.Unlock(ctx); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("foreign unlock err = %v, want ErrNotHeld", err)
	}
	if err := a.Unlock(ctx); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	ok, err = b.TryLock(ctx)
	if err != nil || !ok {
		t.Fatalf("TryLock after release = %v, %v", ok, err)
	}
}

func TestRedisLock_ExpiresAndExtend(t *testing.T) {
	s, c := newClient(t)
	ctx := context.Background()

	l := NewRedisLock(c, "k", 10*time.Second)
	if ok, _ := l.TryLock(ctx); !ok {
		t.Fatalf("expected lock")
	}

	s.FastForward(5 * time.Second)
	if err := l.Extend(ctx); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	s.FastForward(8 * time.Second)
	if !s.Exists("k") {
		t.Fatalf("extended lock expired early")
	}

	s.FastForward(5 * time.Second)
	if s.Exists("k") {
		t.Fatalf("lock should have expired")
	}
	if err := l.Extend(ctx); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("Extend after expiry err = %v", err)
	}
}
