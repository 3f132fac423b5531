package circuitbreaker

import (
	"testing"
	"time"
)

func TestAllow_UnknownProvider_Allowed(t *testing.T) {
	cb := New(3, 5*time.Second)
	if err := cb.Allow("aviationstack"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAllow_BelowThreshold_Allowed(t *testing.T) {
	cb := New(3, 5*time.Second)
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	if err := cb.Allow("aviationstack"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAllow_AtThreshold_Open(t *testing.T) {
	cb := New(3, 5*time.Second)
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	if err := cb.Allow("aviationstack"); err == nil {
		t.Fatal("expected ErrCircuitOpen, got nil")
	}
}

func TestAllow_OpenAfterCooldown_HalfOpen(t *testing.T) {
	cb := New(3, 10*time.Millisecond)
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	time.Sleep(15 * time.Millisecond)
	if err := cb.Allow("aviationstack"); err != nil {
		t.Fatalf("expected nil (probe allowed), got %v", err)
	}
	if err := cb.Allow("aviationstack"); err == nil {
		t.Fatal("expected ErrCircuitOpen while half-open probe in flight")
	}
}

func TestRecordSuccess_ResetsToClose(t *testing.T) {
	cb := New(3, 10*time.Millisecond)
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	time.Sleep(15 * time.Millisecond)
	cb.Allow("aviationstack")
	cb.RecordSuccess("aviationstack")
	if err := cb.Allow("aviationstack"); err != nil {
		t.Fatalf("expected nil after reset, got %v", err)
	}
}

func TestRecordFailure_HalfOpenReOpens(t *testing.T) {
	cb := New(3, 10*time.Millisecond)
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	time.Sleep(15 * time.Millisecond)
	cb.Allow("aviationstack")
	cb.RecordFailure("aviationstack")
	if err := cb.Allow("aviationstack"); err == nil {
		t.Fatal("expected ErrCircuitOpen after probe failure re-open")
	}
}

func TestIndependentProviders(t *testing.T) {
	cb := New(2, 5*time.Second)
	cb.RecordFailure("aviationstack")
	cb.RecordFailure("aviationstack")
	if err := cb.Allow("aviationstack"); err == nil {
		t.Fatal("expected aviationstack open")
	}
	if err := cb.Allow("opensky"); err != nil {
		t.Fatalf("expected opensky allowed, got %v", err)
	}
}
