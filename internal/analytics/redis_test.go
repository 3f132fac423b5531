package analytics

import (
	"testing"
	"time"
)

func TestBuildKey_Buckets(t *testing.T) {
	at := time.Date(2024, 6, 1, 15, 42, 7, 0, time.UTC)

	if got := buildKey("deliveries", "success", at, time.Hour); got != "runway:deliveries:success:2024060115" {
		t.Errorf("hour bucket = %q", got)
	}
	if got := buildKey("kinds", "leave", at, 24*time.Hour); got != "runway:kinds:leave:20240601" {
		t.Errorf("day bucket = %q", got)
	}
	if got := buildKey("deliveries", "failed", at, time.Minute); got != "runway:deliveries:failed:202406011542" {
		t.Errorf("default bucket = %q", got)
	}
}

func TestTruncateToBucket_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2024, 6, 1, 3, 0, 0, 0, loc) // 2024-05-31 22:00 UTC

	if got := truncateToBucket(at, time.Hour); got != "2024053122" {
		t.Errorf("bucket = %q, want 2024053122", got)
	}
}
