// Package fusion fills in live telemetry from a secondary tracker when the
// schedule provider returned none. Matching runs two strategies in order:
// exact transponder identity (ICAO24), then callsign prefix within a
// bounding box spanning the route.
package fusion

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mottavibrannon/runway/internal/airlines"
	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/metrics"
	"github.com/mottavibrannon/runway/internal/position"
)

// bboxMarginDeg pads the route's bounding box so aircraft slightly off the
// great-circle track still fall inside the query area.
const bboxMarginDeg = 3.0

// DefaultTimeout bounds one tracker query.
const DefaultTimeout = 5 * time.Second

// Tracker is the live state source queried for candidate aircraft.
type Tracker interface {
	StatesByICAO24(ctx context.Context, icao24 string) ([]domain.StateVector, error)
	StatesInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]domain.StateVector, error)
}

// MetricsSink receives fusion outcome counts. Implementations must not block.
type MetricsSink interface {
	FusionOutcome(strategy string)
}

// Engine owns the tracker queries and the matching rules.
type Engine struct {
	tracker Tracker
	metrics MetricsSink // optional, nil = disabled
	timeout time.Duration
}

func New(tracker Tracker) *Engine {
	return &Engine{
		tracker: tracker,
		timeout: DefaultTimeout,
	}
}

// WithMetrics attaches a metrics sink to the engine.
func (e *Engine) WithMetrics(m MetricsSink) *Engine {
	e.metrics = m
	return e
}

// WithTimeout overrides the per-query timeout.
func (e *Engine) WithTimeout(d time.Duration) *Engine {
	e.timeout = d
	return e
}

// Enrich attaches tracker telemetry to the record when it has none, or when
// what it has reports the aircraft on the ground (stale gate telemetry). It
// returns the strategy that produced a match. Terminal statuses never get
// telemetry fused. Tracker failures degrade to a no-match outcome: the
// record is still serviceable without live data.
func (e *Engine) Enrich(ctx context.Context, record *domain.FlightRecord) string {
	airborne := record.Live != nil && !record.Live.ConfirmedOnGround()
	if airborne || record.Status.Terminal() {
		e.record(metrics.FusionSkipped)
		return metrics.FusionSkipped
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if pos := e.byICAO24(ctxTimeout, record); pos != nil {
		record.Live = pos
		e.record(metrics.FusionICAO24)
		return metrics.FusionICAO24
	}

	if pos := e.byCallsign(ctxTimeout, record); pos != nil {
		record.Live = pos
		e.record(metrics.FusionCallsign)
		return metrics.FusionCallsign
	}

	e.record(metrics.FusionNone)
	return metrics.FusionNone
}

// byICAO24 queries the exact transponder address the schedule provider gave
// us. A hit is authoritative.
func (e *Engine) byICAO24(ctx context.Context, record *domain.FlightRecord) *domain.LivePosition {
	if record.ICAO24 == "" {
		return nil
	}

	vectors, err := e.tracker.StatesByICAO24(ctx, record.ICAO24)
	if err != nil {
		log.Printf("fusion: icao24 lookup for %s failed: %v", record.ICAO24, err)
		return nil
	}

	for _, sv := range vectors {
		if pos := position.FromStateVector(sv); pos != nil && !pos.ConfirmedOnGround() {
			return pos
		}
	}
	return nil
}

// byCallsign scans the route's bounding box for an aircraft broadcasting the
// callsign the airline would assign this flight number.
func (e *Engine) byCallsign(ctx context.Context, record *domain.FlightRecord) *domain.LivePosition {
	expected := airlines.ExpectedCallsign(record.FlightNumber)
	if expected == "" {
		return nil
	}
	if !record.Departure.HasCoordinates() || !record.Arrival.HasCoordinates() {
		return nil
	}

	minLat, minLon, maxLat, maxLon := routeBox(record.Departure, record.Arrival)
	vectors, err := e.tracker.StatesInBox(ctx, minLat, minLon, maxLat, maxLon)
	if err != nil {
		log.Printf("fusion: bbox lookup for %s failed: %v", record.FlightNumber, err)
		return nil
	}

	for _, sv := range vectors {
		callsign := strings.ToUpper(strings.TrimSpace(sv.Callsign))
		if callsign == "" || !strings.HasPrefix(callsign, expected) {
			continue
		}
		if pos := position.FromStateVector(sv); pos != nil && !pos.ConfirmedOnGround() {
			return pos
		}
	}
	return nil
}

// routeBox is the smallest lat/lon box containing both endpoints, padded by
// the margin.
func routeBox(dep, arr domain.AirportLeg) (minLat, minLon, maxLat, maxLon float64) {
	minLat = min(*dep.Latitude, *arr.Latitude) - bboxMarginDeg
	maxLat = max(*dep.Latitude, *arr.Latitude) + bboxMarginDeg
	minLon = min(*dep.Longitude, *arr.Longitude) - bboxMarginDeg
	maxLon = max(*dep.Longitude, *arr.Longitude) + bboxMarginDeg
	return minLat, minLon, maxLat, maxLon
}

func (e *Engine) record(strategy string) {
	if e.metrics != nil {
		e.metrics.FusionOutcome(strategy)
	}
}
