package airports

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	apt   *Airport
	err   error
}

func (c *countingSource) Airport(_ context.Context, iata string) (*Airport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.apt, c.err
}

type mockCacheMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (m *mockCacheMetrics) AirportCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestStatic_KnownAndUnknown(t *testing.T) {
	ctx := context.Background()

	apt, err := Static{}.Airport(ctx, "lhr")
	if err != nil {
		t.Fatalf("Airport failed: %v", err)
	}
	if apt == nil || apt.City != "London" || apt.Latitude != 51.477 {
		t.Errorf("LHR = %+v", apt)
	}

	apt, err = Static{}.Airport(ctx, "XXX")
	if err != nil || apt != nil {
		t.Errorf("unknown code = (%+v, %v), want (nil, nil)", apt, err)
	}
}

func TestCachedStore_SecondLookupHitsCache(t *testing.T) {
	src := &countingSource{apt: &Airport{IATA: "JFK", City: "New York", Latitude: 40.641, Longitude: -73.778}}
	metrics := &mockCacheMetrics{}
	store := NewCachedStore(src).WithMetrics(metrics)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		apt, err := store.Airport(ctx, "JFK")
		if err != nil {
			t.Fatalf("Airport failed: %v", err)
		}
		if apt == nil || apt.City != "New York" {
			t.Fatalf("JFK = %+v", apt)
		}
	}

	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if metrics.misses != 1 || metrics.hits != 2 {
		t.Errorf("hits=%d misses=%d, want 2/1", metrics.hits, metrics.misses)
	}
}

func TestCachedStore_CachesNegativeResults(t *testing.T) {
	src := &countingSource{} // always returns nil
	store := NewCachedStore(src)
	ctx := context.Background()

	store.Airport(ctx, "XXX")
	store.Airport(ctx, "XXX")

	if src.calls != 1 {
		t.Errorf("source called %d times, want 1 (negative result cached)", src.calls)
	}
}

func TestCachedStore_DoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("upstream down")}
	store := NewCachedStore(src)
	ctx := context.Background()

	if _, err := store.Airport(ctx, "JFK"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := store.Airport(ctx, "JFK"); err == nil {
		t.Fatal("expected error on retry")
	}

	if src.calls != 2 {
		t.Errorf("source called %d times, want 2 (errors not cached)", src.calls)
	}
}

func TestCachedStore_NormalizesCode(t *testing.T) {
	src := &countingSource{apt: &Airport{IATA: "SFO"}}
	store := NewCachedStore(src)
	ctx := context.Background()

	store.Airport(ctx, "sfo")
	store.Airport(ctx, " SFO ")

	if src.calls != 1 {
		t.Errorf("source called %d times, want 1 (same code after normalization)", src.calls)
	}
}

func TestChain_FirstAnswerWins(t *testing.T) {
	miss := &countingSource{}
	hit := &countingSource{apt: &Airport{IATA: "DEN", City: "Denver"}}
	never := &countingSource{apt: &Airport{IATA: "DEN", City: "Wrong"}}

	chain := Chain{miss, hit, never}
	apt, err := chain.Airport(context.Background(), "DEN")
	if err != nil {
		t.Fatalf("Airport failed: %v", err)
	}
	if apt == nil || apt.City != "Denver" {
		t.Errorf("apt = %+v", apt)
	}
	if never.calls != 0 {
		t.Errorf("third source called %d times, want 0", never.calls)
	}
}

func TestChain_ErrorFallsThrough(t *testing.T) {
	failing := &countingSource{err: errors.New("remote down")}
	backup := &countingSource{apt: &Airport{IATA: "SEA", City: "Seattle"}}

	apt, err := Chain{failing, backup}.Airport(context.Background(), "SEA")
	if err != nil {
		t.Fatalf("Airport failed: %v", err)
	}
	if apt == nil || apt.City != "Seattle" {
		t.Errorf("apt = %+v", apt)
	}
}
