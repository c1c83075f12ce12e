package middleware

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingTTL bounds how long a reservation survives a handler that never returns.
const pendingTTL = 60 * time.Second

// storedResponse is what the replay store keeps per idempotency key. A
// pending entry has no status yet.
type storedResponse struct {
	Pending     bool      `json:"pending"`
	Status      int       `json:"status,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	RequestID   string    `json:"request_id"`
	SentAt      time.Time `json:"sent_at"`
	StoredAt    time.Time `json:"stored_at"`
}

func (s storedResponse) replayable() bool {
	return !s.Pending && s.Status != 0 && len(s.Body) > 0
}

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func replayKey(method, route string, actorID uint64, requestID string) string {
	return strings.Join([]string{
		"procurement", "idemp",
		strings.ToLower(method),
		route,
		strconv.FormatUint(actorID, 10),
		requestID,
	}, ":")
}

// reserve claims key for a new request. False means someone already holds it.
func (s *replayStore) reserve(ctx context.Context, key string, r storedResponse) (bool, error) {
	r.Pending = true
	payload, err := json.Marshal(r)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, pendingTTL).Result()
}

func (s *replayStore) get(ctx context.Context, key string) (storedResponse, error) {
	var r storedResponse
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(raw, &r)
	return r, err
}

func (s *replayStore) finish(ctx context.Context, key string, r storedResponse) error {
	r.Pending = false
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
