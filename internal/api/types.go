package api

import (
	"time"

	"github.com/mottavibrannon/runway/internal/domain"
)

// AlertRequest is the POST /api/alert body.
type AlertRequest struct {
	Phone        string `json:"phone"`
	FlightNumber string `json:"flightNumber"`
	SendAtMs     int64  `json:"sendAtMs"`
	Type         string `json:"type,omitempty"`
	ArrivalCity  string `json:"arrivalCity,omitempty"`
}

type AlertResponse struct {
	Success bool   `json:"success"`
	Demo    bool   `json:"demo,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FlightEnvelope wraps every GET /api/flight response. Lookup misses are a
// success=false envelope with a hint, not a transport error.
type FlightEnvelope struct {
	Success bool        `json:"success"`
	Data    *FlightJSON `json:"data,omitempty"`
	Demo    bool        `json:"demo,omitempty"`
	Error   string      `json:"error,omitempty"`
	Hint    string      `json:"hint,omitempty"`
}

type FlightJSON struct {
	FlightNumber string    `json:"flightNumber"`
	Airline      string    `json:"airline"`
	Aircraft     *string   `json:"aircraft"`
	Status       string    `json:"status"`
	Dep          LegJSON   `json:"dep"`
	Arr          LegJSON   `json:"arr"`
	Live         *LiveJSON `json:"live"`
	Progress     *float64  `json:"progress"`
	Demo         bool      `json:"demo"`
}

// LegJSON carries one endpoint of the route. The departure leg reports
// actualTime, the arrival leg estimatedTime.
type LegJSON struct {
	IATA          string   `json:"iata"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
	Terminal      string   `json:"terminal"`
	ScheduledTime string   `json:"scheduledTime,omitempty"`
	ActualTime    string   `json:"actualTime,omitempty"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
}

type LiveJSON struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
	IsGround  *bool    `json:"is_ground"`
}

type HealthResponse struct {
	Status   string         `json:"status"`
	Services HealthServices `json:"services"`
}

type HealthServices struct {
	FlightData string `json:"flightData"`
	SMS        string `json:"sms"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func toFlightJSON(rec domain.FlightRecord) *FlightJSON {
	out := &FlightJSON{
		FlightNumber: rec.FlightNumber,
		Airline:      rec.Airline,
		Aircraft:     rec.Aircraft,
		Status:       string(rec.Status),
		Progress:     rec.Progress,
		Demo:         rec.Demo,
		Dep: LegJSON{
			IATA:          rec.Departure.IATA,
			Name:          rec.Departure.Name,
			City:          rec.Departure.City,
			Lat:           rec.Departure.Latitude,
			Lon:           rec.Departure.Longitude,
			Terminal:      rec.Departure.Terminal,
			ScheduledTime: formatTime(rec.Departure.ScheduledTime),
			ActualTime:    formatTime(rec.Departure.EstimatedTime),
		},
		Arr: LegJSON{
			IATA:          rec.Arrival.IATA,
			Name:          rec.Arrival.Name,
			City:          rec.Arrival.City,
			Lat:           rec.Arrival.Latitude,
			Lon:           rec.Arrival.Longitude,
			Terminal:      rec.Arrival.Terminal,
			ScheduledTime: formatTime(rec.Arrival.ScheduledTime),
			EstimatedTime: formatTime(rec.Arrival.EstimatedTime),
		},
	}
	if rec.Live != nil {
		out.Live = &LiveJSON{
			Latitude:  rec.Live.Latitude,
			Longitude: rec.Live.Longitude,
			Altitude:  rec.Live.AltitudeFeet,
			Speed:     rec.Live.GroundSpeedKnots,
			Heading:   rec.Live.HeadingDegrees,
			IsGround:  rec.Live.OnGround,
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
