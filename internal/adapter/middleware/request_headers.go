package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	headerRequestID = "Ax-Request-Id"
	headerRequestAt = "Ax-Request-At"
	headerReplay    = "Ax-Idempotent-Replay"

	maxClockSkew = 10 * time.Minute
)

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// normalizeRequestID accepts a dashed lowercase UUID or 32 lowercase hex chars
// and returns it trimmed.
func normalizeRequestID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || id != strings.ToLower(id) {
		return "", false
	}
	switch len(id) {
	case 32:
		_, err := hex.DecodeString(id)
		return id, err == nil
	case 36:
		u, err := uuid.Parse(id)
		return id, err == nil && u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
	}
	return "", false
}

// parseRequestAt reads epoch seconds, epoch milliseconds or RFC3339 with an
// explicit zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + headerRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(headerRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func withinSkew(at, now time.Time) bool {
	return !at.Before(now.Add(-maxClockSkew)) && !at.After(now.Add(maxClockSkew))
}
