// Package resolver orchestrates one flight lookup: query the schedule
// provider, pick the most plausibly current leg, enrich it with airport
// coordinates and tracker telemetry, and derive progress and ETA. When no
// provider is configured or the lookup fails, known demo flights answer
// instead.
package resolver

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/mottavibrannon/runway/internal/airports"
	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/geo"
	"github.com/mottavibrannon/runway/internal/metrics"
	"github.com/mottavibrannon/runway/internal/scoring"
)

// ErrNotFound means no provider row and no demo fixture matched the ident.
var ErrNotFound = errors.New("flight not found")

// DefaultProviderTimeout bounds the schedule provider round trip.
const DefaultProviderTimeout = 10 * time.Second

// scheduleProgressCap keeps schedule-derived progress from claiming a flight
// is practically landed while no arrival has been reported.
const scheduleProgressCap = 0.9

// Provider is a schedule data source able to list candidate legs for a
// designator and optionally fetch telemetry for one of them.
type Provider interface {
	Name() string
	Candidates(ctx context.Context, ident string) ([]domain.Candidate, error)
	Position(ctx context.Context, c domain.Candidate) (*domain.LivePosition, error)
}

// Fuser attaches tracker telemetry to a record lacking it.
type Fuser interface {
	Enrich(ctx context.Context, record *domain.FlightRecord) string
}

// AirportLookup resolves IATA codes to coordinates.
type AirportLookup interface {
	Airport(ctx context.Context, iata string) (*airports.Airport, error)
}

// Breaker gates provider calls after repeated failures.
type Breaker interface {
	Allow(name string) error
	RecordSuccess(name string)
	RecordFailure(name string)
}

// MetricsSink defines the interface for recording resolution metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	ResolutionCompleted(outcome string, duration time.Duration)
	ProviderRequest(provider string, statusClass string, duration time.Duration)
}

// Resolver runs the lookup pipeline. Every collaborator except the provider
// is optional; a nil provider means demo-only operation.
type Resolver struct {
	provider Provider
	fuser    Fuser
	airports AirportLookup
	breaker  Breaker
	metrics  MetricsSink
	clock    func() time.Time
	timeout  time.Duration
}

func New(provider Provider) *Resolver {
	return &Resolver{
		provider: provider,
		clock:    time.Now,
		timeout:  DefaultProviderTimeout,
	}
}

// WithFusion attaches the tracker fusion engine.
func (r *Resolver) WithFusion(f Fuser) *Resolver {
	r.fuser = f
	return r
}

// WithAirports attaches the airport coordinate source.
func (r *Resolver) WithAirports(a AirportLookup) *Resolver {
	r.airports = a
	return r
}

// WithBreaker attaches the provider circuit breaker.
func (r *Resolver) WithBreaker(b Breaker) *Resolver {
	r.breaker = b
	return r
}

// WithMetrics attaches a metrics sink.
func (r *Resolver) WithMetrics(m MetricsSink) *Resolver {
	r.metrics = m
	return r
}

// WithClock overrides the time source.
func (r *Resolver) WithClock(clock func() time.Time) *Resolver {
	r.clock = clock
	return r
}

// WithTimeout overrides the provider round-trip timeout.
func (r *Resolver) WithTimeout(d time.Duration) *Resolver {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// NormalizeIdent canonicalizes user input: "ba 178" and "BA-178" both
// become "BA178".
func NormalizeIdent(ident string) string {
	ident = strings.ToUpper(strings.TrimSpace(ident))
	ident = strings.ReplaceAll(ident, " ", "")
	ident = strings.ReplaceAll(ident, "-", "")
	return ident
}

// Resolve looks up a flight by designator. The returned record is owned by
// the caller. ErrNotFound is the only expected failure: upstream trouble
// degrades to demo fixtures, not errors.
func (r *Resolver) Resolve(ctx context.Context, ident string) (domain.FlightRecord, error) {
	ident = NormalizeIdent(ident)
	start := r.clock()

	if record, ok := r.resolveLive(ctx, ident); ok {
		r.completed(metrics.ResolutionLive, start)
		return record, nil
	}

	if record, ok := demoFlight(ident, r.clock()); ok {
		r.completed(metrics.ResolutionDemo, start)
		return record, nil
	}

	r.completed(metrics.ResolutionNotFound, start)
	return domain.FlightRecord{}, ErrNotFound
}

func (r *Resolver) resolveLive(ctx context.Context, ident string) (domain.FlightRecord, bool) {
	if r.provider == nil || ident == "" {
		return domain.FlightRecord{}, false
	}

	name := r.provider.Name()
	if r.breaker != nil {
		if err := r.breaker.Allow(name); err != nil {
			log.Printf("resolver: provider %s circuit open, skipping", name)
			return domain.FlightRecord{}, false
		}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reqStart := r.clock()
	candidates, err := r.provider.Candidates(ctxTimeout, ident)
	if r.metrics != nil {
		status := 200
		if err != nil {
			status = 0
		}
		r.metrics.ProviderRequest(name, metrics.ClassifyStatus(status, err), r.clock().Sub(reqStart))
	}
	if err != nil {
		log.Printf("resolver: provider %s failed for %s: %v", name, ident, err)
		if r.breaker != nil {
			r.breaker.RecordFailure(name)
		}
		return domain.FlightRecord{}, false
	}
	if r.breaker != nil {
		r.breaker.RecordSuccess(name)
	}
	if len(candidates) == 0 {
		return domain.FlightRecord{}, false
	}

	chosen := r.selectCandidate(candidates)
	record := chosen.Record

	if record.Live == nil {
		pos, err := r.provider.Position(ctxTimeout, chosen)
		if err != nil {
			log.Printf("resolver: position fetch for %s failed: %v", ident, err)
		} else {
			record.Live = pos
		}
	}

	r.enrichAirports(ctxTimeout, &record)

	if r.fuser != nil {
		r.fuser.Enrich(ctxTimeout, &record)
	}

	r.finalize(&record)
	return record, true
}

func (r *Resolver) selectCandidate(candidates []domain.Candidate) domain.Candidate {
	evidence := make([]domain.RawCandidate, len(candidates))
	for i, c := range candidates {
		evidence[i] = c.Evidence
	}
	return candidates[scoring.SelectBest(evidence, r.clock())]
}

// enrichAirports fills in missing coordinates and display metadata for both
// legs. Lookup failures leave the leg as the provider shipped it.
func (r *Resolver) enrichAirports(ctx context.Context, record *domain.FlightRecord) {
	if r.airports == nil {
		return
	}
	enrichLeg(ctx, r.airports, &record.Departure)
	enrichLeg(ctx, r.airports, &record.Arrival)
}

func enrichLeg(ctx context.Context, lookup AirportLookup, leg *domain.AirportLeg) {
	if leg.IATA == "" || leg.HasCoordinates() {
		return
	}
	apt, err := lookup.Airport(ctx, leg.IATA)
	if err != nil {
		log.Printf("resolver: airport lookup %s failed: %v", leg.IATA, err)
		return
	}
	if apt == nil {
		return
	}
	lat, lon := apt.Latitude, apt.Longitude
	leg.Latitude = &lat
	leg.Longitude = &lon
	if leg.Name == "" {
		leg.Name = apt.Name
	}
	if leg.City == "" {
		leg.City = apt.City
	}
}

// finalize derives ETA and progress from whatever telemetry and schedule the
// record ended up with.
func (r *Resolver) finalize(record *domain.FlightRecord) {
	now := r.clock()

	live := record.Live
	airborne := live != nil && live.OnGround != nil && !*live.OnGround

	// Airborne with GPS: recompute the arrival estimate from distance over
	// ground speed. Overrides whatever the schedule said.
	if airborne && record.Arrival.HasCoordinates() {
		eta := geo.EstimateETA(now, live.Latitude, live.Longitude,
			*record.Arrival.Latitude, *record.Arrival.Longitude, live.GroundSpeedKnots)
		if eta != nil {
			record.Arrival.EstimatedTime = *eta
		}
	}

	// Geodesic progress needs live coordinates and both endpoints. A
	// position reporting on-ground never drives it: gate telemetry would
	// override the provider's own progress with a near-endpoint clamp.
	if live != nil && !live.ConfirmedOnGround() &&
		record.Departure.HasCoordinates() && record.Arrival.HasCoordinates() {
		if frac := geo.ProgressFraction(
			*record.Departure.Latitude, *record.Departure.Longitude,
			*record.Arrival.Latitude, *record.Arrival.Longitude,
			live.Latitude, live.Longitude); frac != nil {
			record.Progress = frac
			return
		}
	}

	if record.Progress != nil {
		return
	}

	// Fall back to elapsed schedule time.
	if frac := scheduleProgress(record, now); frac != nil {
		record.Progress = frac
	}
}

func scheduleProgress(record *domain.FlightRecord, now time.Time) *float64 {
	dep := record.Departure.ScheduledTime
	arr := record.Arrival.EstimatedTime
	if arr.IsZero() {
		arr = record.Arrival.ScheduledTime
	}
	if dep.IsZero() || arr.IsZero() || !arr.After(dep) {
		return nil
	}

	frac := now.Sub(dep).Seconds() / arr.Sub(dep).Seconds()
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	if record.Status == domain.StatusActive && record.ArrivedAt == nil && frac > scheduleProgressCap {
		frac = scheduleProgressCap
	}
	return &frac
}

func (r *Resolver) completed(outcome string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ResolutionCompleted(outcome, r.clock().Sub(start))
	}
}
