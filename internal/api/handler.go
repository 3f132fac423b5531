package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mottavibrannon/runway/internal/alerts"
	"github.com/mottavibrannon/runway/internal/domain"
	"github.com/mottavibrannon/runway/internal/resolver"
)

// FlightResolver answers flight lookups. ErrNotFound is the only expected
// failure mode.
type FlightResolver interface {
	Resolve(ctx context.Context, ident string) (domain.FlightRecord, error)
}

// AlertScheduler arms one-shot SMS alerts. demo=true means the request was
// accepted but no timer was armed.
type AlertScheduler interface {
	Schedule(req alerts.Request) (demo bool, err error)
}

type Handler struct {
	resolver FlightResolver
	alerts   AlertScheduler

	flightDataLive bool
	smsLive        bool
}

func NewHandler(res FlightResolver, sched AlertScheduler) *Handler {
	return &Handler{resolver: res, alerts: sched}
}

// WithServiceStatus sets what /api/health reports for each dependency.
// Status is derived from configuration presence, not probed.
func (h *Handler) WithServiceStatus(flightDataLive, smsLive bool) *Handler {
	h.flightDataLive = flightDataLive
	h.smsLive = smsLive
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/api/health" && r.Method == http.MethodGet:
		h.health(w, r)

	case strings.HasPrefix(path, "/api/flight/") && r.Method == http.MethodGet:
		h.flight(w, r)

	case path == "/api/alert" && r.Method == http.MethodPost:
		h.alert(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Services: HealthServices{
			FlightData: serviceMode(h.flightDataLive),
			SMS:        serviceMode(h.smsLive),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func serviceMode(live bool) string {
	if live {
		return "live"
	}
	return "demo"
}

func (h *Handler) flight(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimPrefix(r.URL.Path, "/api/flight/")
	if number == "" || strings.Contains(number, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	record, err := h.resolver.Resolve(r.Context(), number)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			writeJSON(w, http.StatusOK, FlightEnvelope{
				Success: false,
				Error:   "Flight not found.",
				Hint:    resolver.DemoHint,
			})
			return
		}
		log.Printf("api: flight lookup error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to look up flight")
		return
	}

	writeJSON(w, http.StatusOK, FlightEnvelope{
		Success: true,
		Data:    toFlightJSON(record),
		Demo:    record.Demo,
	})
}

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

func (h *Handler) alert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Phone == "" || req.SendAtMs == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	firesAt := time.UnixMilli(req.SendAtMs)
	demo, err := h.alerts.Schedule(alerts.Request{
		Recipient:    req.Phone,
		FlightNumber: req.FlightNumber,
		Kind:         domain.ParseAlertKind(req.Type),
		ArrivalCity:  req.ArrivalCity,
		FiresAt:      firesAt,
	})
	switch {
	case errors.Is(err, alerts.ErrAlertInPast):
		// A stale send time is an expected client state, not a transport
		// failure. The envelope carries the refusal.
		writeJSON(w, http.StatusOK, AlertResponse{
			Success: false,
			Error:   "Alert time is in the past",
		})
		return
	case errors.Is(err, alerts.ErrEmptyRecipient), errors.Is(err, alerts.ErrEmptyFlight):
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	case err != nil:
		log.Printf("api: schedule alert error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to schedule alert")
		return
	}

	if demo {
		writeJSON(w, http.StatusOK, AlertResponse{Success: true, Demo: true})
		return
	}

	writeJSON(w, http.StatusOK, AlertResponse{
		Success: true,
		Message: "SMS scheduled for " + firesAt.UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}
