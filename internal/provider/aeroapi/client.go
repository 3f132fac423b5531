// Package aeroapi provides a client for the FlightAware AeroAPI v4.
//
// The flights search returns recent legs newest-first without telemetry;
// positions come from a separate per-flight endpoint. Altitude in position
// payloads is in flight levels (hundreds of feet), speed already in knots.
//
// API Documentation: https://www.flightaware.com/aeroapi/portal/documentation
package aeroapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mottavibrannon/runway/internal/airlines"
	"github.com/mottavibrannon/runway/internal/airports"
	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/position"
)

const (
	// BaseURL is the FlightAware AeroAPI v4 base URL.
	BaseURL = "https://aeroapi.flightaware.com/aeroapi"

	// DefaultTimeout for flight search requests.
	DefaultTimeout = 10 * time.Second

	// positionTimeout bounds the follow-up telemetry fetch; a missing
	// position degrades the response, it must not stall it.
	positionTimeout = 5 * time.Second
)

// Client calls AeroAPI with rate limiting to protect the query quota.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
}

// Config contains configuration for the AeroAPI client.
type Config struct {
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// NewClient creates a new AeroAPI client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 10
	}

	requestsPerSecond := float64(cfg.RequestsPerMinute) / 60.0
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), 1)

	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
		baseURL:     BaseURL,
	}
}

// WithBaseURL overrides the API endpoint (useful for testing).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Name identifies the provider for circuit breaking and metrics.
func (c *Client) Name() string {
	return "aeroapi"
}

type flightsResponse struct {
	Flights []flightRow `json:"flights"`
}

type flightRow struct {
	Ident      string `json:"ident"`
	IdentIATA  string `json:"ident_iata"`
	FAFlightID string `json:"fa_flight_id"`

	Operator     string `json:"operator"`
	AircraftType string `json:"aircraft_type"`
	Status       string `json:"status"`

	Origin      *airportRef `json:"origin"`
	Destination *airportRef `json:"destination"`

	TerminalOrigin      string `json:"terminal_origin"`
	TerminalDestination string `json:"terminal_destination"`

	ScheduledOut *time.Time `json:"scheduled_out"`
	ActualOut    *time.Time `json:"actual_out"`
	ScheduledIn  *time.Time `json:"scheduled_in"`
	EstimatedIn  *time.Time `json:"estimated_in"`
	ActualIn     *time.Time `json:"actual_in"`

	ProgressPercent *float64 `json:"progress_percent"`
}

type airportRef struct {
	Code     string `json:"code"`
	CodeIATA string `json:"code_iata"`
	Name     string `json:"name"`
	City     string `json:"city"`
}

type positionResponse struct {
	LastPosition *positionRow `json:"last_position"`
	positionRow
}

type positionRow struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Altitude    *float64 `json:"altitude"` // flight levels
	Groundspeed *float64 `json:"groundspeed"`
	Heading     *float64 `json:"heading"`
}

// Candidates fetches every recent leg for the designator. AeroAPI never
// embeds telemetry in the search response, so evidence is timestamps and the
// status string only.
func (c *Client) Candidates(ctx context.Context, ident string) ([]domain.Candidate, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/flights/%s", c.baseURL, url.PathEscape(ident))
	var body flightsResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(body.Flights))
	for _, row := range body.Flights {
		candidates = append(candidates, mapRow(row))
	}
	return candidates, nil
}

// Position fetches live telemetry for an active candidate. Terminal or
// not-yet-departed flights have no position to fetch.
func (c *Client) Position(ctx context.Context, cand domain.Candidate) (*domain.LivePosition, error) {
	if cand.Ref == "" || cand.Record.Status != domain.StatusActive {
		return nil, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, positionTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/flights/%s/position", c.baseURL, url.PathEscape(cand.Ref))
	var body positionResponse
	if err := c.getJSON(ctxTimeout, endpoint, &body); err != nil {
		return nil, err
	}

	pos := body.LastPosition
	if pos == nil {
		pos = &body.positionRow
	}

	return position.Normalize(position.Payload{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Altitude:  pos.Altitude,
		Speed:     pos.Groundspeed,
		Heading:   pos.Heading,
	}, position.SourceFlightLevel), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapRow(row flightRow) domain.Candidate {
	number := row.IdentIATA
	if number == "" {
		number = row.Ident
	}

	status := MapStatus(row.Status)

	record := domain.FlightRecord{
		FlightNumber: number,
		Airline:      operatorName(row.Operator),
		Status:       status,
		Departure:    mapLeg(row.Origin, row.TerminalOrigin, row.ScheduledOut, firstNonNil(row.ActualOut, row.ScheduledOut)),
		Arrival:      mapLeg(row.Destination, row.TerminalDestination, row.ScheduledIn, firstNonNil(row.EstimatedIn, row.ScheduledIn)),
		ArrivedAt:    row.ActualIn,
	}
	if row.AircraftType != "" {
		aircraft := row.AircraftType
		record.Aircraft = &aircraft
	}
	if row.ProgressPercent != nil {
		progress := *row.ProgressPercent / 100
		record.Progress = &progress
	}

	return domain.Candidate{
		Evidence: domain.RawCandidate{
			DepartedActual: row.ActualOut,
			ArrivedActual:  row.ActualIn,
			StatusLabel:    string(status),
		},
		Record: record,
		Ref:    row.FAFlightID,
	}
}

func mapLeg(ref *airportRef, terminal string, scheduled, estimated *time.Time) domain.AirportLeg {
	out := domain.AirportLeg{Terminal: terminal}
	if out.Terminal == "" {
		out.Terminal = "N/A"
	}
	if ref != nil {
		out.IATA = ref.CodeIATA
		if out.IATA == "" {
			out.IATA = ref.Code
		}
		out.Name = ref.Name
		out.City = ref.City
	}
	if scheduled != nil {
		out.ScheduledTime = *scheduled
	}
	if estimated != nil {
		out.EstimatedTime = *estimated
	}
	return out
}

// MapStatus folds AeroAPI's prose status strings into the canonical set.
func MapStatus(s string) domain.FlightStatus {
	if s == "" {
		return domain.StatusUnknown
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "en route"), strings.Contains(lower, "departed"):
		return domain.StatusActive
	case strings.Contains(lower, "arrived"):
		return domain.StatusLanded
	case strings.Contains(lower, "cancelled"):
		return domain.StatusCancelled
	case strings.Contains(lower, "diverted"):
		return domain.StatusDiverted
	case strings.Contains(lower, "scheduled"):
		return domain.StatusScheduled
	default:
		return domain.StatusUnknown
	}
}

func operatorName(icao string) string {
	if name, ok := airlines.OperatorName(icao); ok {
		return name
	}
	if icao != "" {
		return icao
	}
	return "Unknown"
}

func firstNonNil(times ...*time.Time) *time.Time {
	for _, t := range times {
		if t != nil {
			return t
		}
	}
	return nil
}

// AirportInfo implements the airport metadata source against AeroAPI's
// airports endpoint.
type airportInfoResponse struct {
	Code      string   `json:"code"`
	CodeIATA  string   `json:"code_iata"`
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Airport resolves an IATA code through /airports/{id}. A 404 means the code
// is unknown, not an error.
func (c *Client) Airport(ctx context.Context, iata string) (*airports.Airport, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/airports/%s", c.baseURL, url.PathEscape(iata))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch airport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body airportInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode airport: %w", err)
	}
	if body.Latitude == nil || body.Longitude == nil {
		return nil, nil
	}

	code := body.CodeIATA
	if code == "" {
		code = iata
	}
	return &airports.Airport{
		IATA:      code,
		Name:      body.Name,
		City:      body.City,
		Latitude:  *body.Latitude,
		Longitude: *body.Longitude,
	}, nil
}
