package alerts

import (
	"fmt"

	"github.com/mottavibrannon/runway/internal/domain"
)

// Message renders the SMS body for a fired alert. Unknown kinds fall back to
// the leave message.
func Message(kind domain.AlertKind, flightNumber, arrivalCity string) string {
	switch kind {
	case domain.AlertLanding:
		return fmt.Sprintf("✈️ Runway: %s has landed in %s! Go pick them up 🎉", flightNumber, arrivalCity)
	case domain.AlertBothLeave:
		return fmt.Sprintf("✈️ Runway: Time to leave for %s — %s is on its way.", arrivalCity, flightNumber)
	case domain.AlertBothLanding:
		return fmt.Sprintf("✈️ Runway: %s touched down in %s!", flightNumber, arrivalCity)
	default:
		return fmt.Sprintf("✈️ Runway: Time to head to the airport! %s arrives in %s soon.", flightNumber, arrivalCity)
	}
}
