package httpmiddleware

import (
	"testing"
	"time"
)

func TestTokenBucketExhaustion(t *testing.T) {
	l := NewTokenBucket(3, 60)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("bucket should be empty")
	}
	// Other clients are unaffected.
	if !l.Allow("5.6.7.8") {
		t.Fatal("separate client should have its own bucket")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	now := time.Now()
	l := NewTokenBucket(2, 60)
	l.now = func() time.Time { return now }

	l.Allow("ip")
	l.Allow("ip")
	if l.Allow("ip") {
		t.Fatal("bucket should be empty")
	}

	// A minute later the bucket is full again (capped at capacity).
	now = now.Add(time.Minute)
	if !l.Allow("ip") {
		t.Fatal("bucket should have refilled")
	}
	if !l.Allow("ip") {
		t.Fatal("refill should restore up to capacity")
	}
	if l.Allow("ip") {
		t.Fatal("refill must not exceed capacity")
	}
}

func TestTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewTokenBucket(0, 5)
	for i := 0; i < 5; i++ {
		if !l.Allow("ip") {
			t.Fatalf("request %d should pass with defaulted capacity", i+1)
		}
	}
	if l.Allow("ip") {
		t.Fatal("bucket should be empty after capacity requests")
	}
}
