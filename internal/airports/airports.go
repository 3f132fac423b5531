// Package airports resolves IATA codes to coordinates and display metadata.
// Lookups go through an in-memory cache in front of a chain of sources, so a
// remote airport API is asked about each code at most once per process.
package airports

import (
	"context"
	"strings"
	"sync"
)

// Airport is the metadata needed to draw a route and compute progress.
type Airport struct {
	IATA      string
	Name      string
	City      string
	Latitude  float64
	Longitude float64
}

// Source resolves one IATA code. A nil Airport with nil error means the
// source does not know the code.
type Source interface {
	Airport(ctx context.Context, iata string) (*Airport, error)
}

// MetricsSink receives cache hit/miss counts. Implementations must not block.
type MetricsSink interface {
	AirportCacheLookup(hit bool)
}

// Chain tries each source in order and returns the first answer.
type Chain []Source

func (c Chain) Airport(ctx context.Context, iata string) (*Airport, error) {
	var lastErr error
	for _, src := range c {
		apt, err := src.Airport(ctx, iata)
		if err != nil {
			lastErr = err
			continue
		}
		if apt != nil {
			return apt, nil
		}
	}
	return nil, lastErr
}

// CachedStore memoizes lookups from the underlying source. Negative results
// are cached too: an unknown code stays unknown for the process lifetime.
type CachedStore struct {
	source  Source
	metrics MetricsSink // optional, nil = disabled

	mu    sync.Mutex
	cache map[string]*Airport
}

func NewCachedStore(source Source) *CachedStore {
	return &CachedStore{
		source: source,
		cache:  make(map[string]*Airport),
	}
}

// WithMetrics attaches a metrics sink to the store.
func (s *CachedStore) WithMetrics(m MetricsSink) *CachedStore {
	s.metrics = m
	return s
}

func (s *CachedStore) Airport(ctx context.Context, iata string) (*Airport, error) {
	iata = strings.ToUpper(strings.TrimSpace(iata))
	if iata == "" {
		return nil, nil
	}

	s.mu.Lock()
	apt, ok := s.cache[iata]
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.AirportCacheLookup(ok)
	}
	if ok {
		return apt, nil
	}

	apt, err := s.source.Airport(ctx, iata)
	if err != nil {
		// Do not cache transient failures.
		return nil, err
	}

	s.mu.Lock()
	s.cache[iata] = apt
	s.mu.Unlock()
	return apt, nil
}
