package middleware

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	a := fingerprint([]byte(`{"action":"approve"}`))
	if len(a) != 64 {
		t.Fatalf("fingerprint length = %d", len(a))
	}
	if a != fingerprint([]byte(`{"action":"approve"}`)) {
		t.Fatalf("fingerprint is not stable")
	}
	if a == fingerprint([]byte(`{"action":"reject"}`)) {
		t.Fatalf("different bodies share a fingerprint")
	}
}

func TestNormalizeRequestID(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", true},
		{strings.Repeat("a", 32), true},
		{"  3f9a6a1b3d544fbe8b3a6b3e8d6b2c88 ", true},
		{"", false},
		{strings.Repeat("A", 32), false},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8", false},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880", false},
		{strings.Repeat("z", 32), false},
		{"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", false},
		{"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", false},
	}
	for _, tc := range cases {
		got, ok := normalizeRequestID(tc.in)
		if ok != tc.ok {
			t.Fatalf("normalizeRequestID(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != strings.TrimSpace(tc.in) {
			t.Fatalf("normalizeRequestID(%q) = %q", tc.in, got)
		}
	}
}

func TestParseRequestAt(t *testing.T) {
	sec := time.Now().Unix()
	ms := time.Now().UnixMilli()
	want := time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)

	cases := []struct {
		raw  string
		want time.Time
	}{
		{strconv.FormatInt(sec, 10), time.Unix(sec, 0).UTC()},
		{strconv.FormatInt(ms, 10), time.UnixMilli(ms).UTC()},
		{"2025-09-05T10:00:00+07:00", want},
		{"2025-09-05T03:00:00Z", want},
		{"2025-09-05T03:00:00.000Z", want},
	}
	for _, tc := range cases {
		got, err := parseRequestAt(tc.raw)
		if err != nil {
			t.Fatalf("parseRequestAt(%q): %v", tc.raw, err)
		}
		if !got.Equal(tc.want) || got.Location() != time.UTC {
			t.Fatalf("parseRequestAt(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{"", "not-a-time", "2025-09-05T10:00:00", "1736123456abc"} {
		if _, err := parseRequestAt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestWithinSkew(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	if !withinSkew(now.Add(-maxClockSkew), now) || !withinSkew(now.Add(maxClockSkew), now) {
		t.Fatalf("boundaries must be accepted")
	}
	if withinSkew(now.Add(-maxClockSkew-time.Second), now) || withinSkew(now.Add(maxClockSkew+time.Second), now) {
		t.Fatalf("outside the window must be rejected")
	}
}
