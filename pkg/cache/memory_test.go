package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	value, found, err := s.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if string(value) != "v" {
		t.Errorf("value = %q, want v", value)
	}

	exists, _ := s.Exists(ctx, "k")
	if !exists {
		t.Error("Exists = false after Set")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Error("key present after Delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)

	now := time.Now()
	s.now = func() time.Time { return now }

	s.Set(ctx, "short", []byte("x"), time.Second)
	s.Set(ctx, "forever", []byte("y"), NoExpiry)

	now = now.Add(2 * time.Second)

	if _, found, _ := s.Get(ctx, "short"); found {
		t.Error("expired entry still readable")
	}
	if _, found, _ := s.Get(ctx, "forever"); !found {
		t.Error("NoExpiry entry expired")
	}
}

func TestMemoryStoreEvictsOldestTenth(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)

	for i := 0; i < 101; i++ {
		s.Set(ctx, fmt.Sprintf("key-%03d", i), []byte("v"), NoExpiry)
	}

	// Overflow evicts the oldest 10%
	stats := s.Stats(ctx)
	if stats.Keys != 91 {
		t.Errorf("Keys = %d, want 91", stats.Keys)
	}
	for i := 0; i < 10; i++ {
		if ok, _ := s.Exists(ctx, fmt.Sprintf("key-%03d", i)); ok {
			t.Errorf("key-%03d survived eviction", i)
		}
	}
	if ok, _ := s.Exists(ctx, "key-100"); !ok {
		t.Error("newest key evicted")
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)
	s.Set(ctx, "a", []byte("1"), NoExpiry)
	s.Set(ctx, "b", []byte("2"), NoExpiry)
	s.Clear(ctx)
	if stats := s.Stats(ctx); stats.Keys != 0 {
		t.Errorf("Keys = %d after Clear, want 0", stats.Keys)
	}
}

func TestVerdictTTLPolicy(t *testing.T) {
	positive := 7 * 24 * time.Hour
	negative := 24 * time.Hour

	tests := []struct {
		riskLevel string
		score     int
		want      time.Duration
	}{
		{"critical", 95, NoExpiry},
		{"dangerous", 92, NoExpiry}, // score >= 90 pins regardless of level
		{"dangerous", 75, positive},
		{"suspicious", 60, positive},
		{"safe", 59, negative},
		{"safe", 10, negative},
	}
	for _, tt := range tests {
		got := VerdictTTL(tt.riskLevel, tt.score, positive, negative)
		if got != tt.want {
			t.Errorf("VerdictTTL(%q, %d) = %v, want %v", tt.riskLevel, tt.score, got, tt.want)
		}
		// Pure: the same verdict always maps to the same TTL
		if again := VerdictTTL(tt.riskLevel, tt.score, positive, negative); again != got {
			t.Errorf("VerdictTTL(%q, %d) not deterministic", tt.riskLevel, tt.score)
		}
	}
}

func TestURLKeyNormalises(t *testing.T) {
	a := URLKey("  https://Example.com/Path  ")
	b := URLKey("https://example.com/path")
	if a != b {
		t.Errorf("URLKey not normalised: %q != %q", a, b)
	}
	if len(a) != len("url_analysis:")+16 {
		t.Errorf("key %q has unexpected hash length", a)
	}
}
