package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertKind string

const (
	AlertLeave       AlertKind = "leave"
	AlertLanding     AlertKind = "landing"
	AlertBothLeave   AlertKind = "both_leave"
	AlertBothLanding AlertKind = "both_landing"
)

// ParseAlertKind maps a request string to an AlertKind. Unknown values fall
// back to the "leave" message, matching delivery behavior.
func ParseAlertKind(s string) AlertKind {
	switch AlertKind(s) {
	case AlertLeave, AlertLanding, AlertBothLeave, AlertBothLanding:
		return AlertKind(s)
	default:
		return AlertLeave
	}
}

// AlertEvent is emitted by the alert scheduler when a pending alert fires.
type AlertEvent struct {
	ID uuid.UUID

	Recipient    string
	FlightNumber string
	Kind         AlertKind
	ArrivalCity  string

	ScheduledFor time.Time // requested fire time
	FiredAt      time.Time // actual emission time

	CreatedAt time.Time
}
