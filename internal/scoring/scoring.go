// Package scoring ranks ambiguous provider rows for a single flight number
// and picks the one most plausibly airborne right now.
//
// Schedule-oriented providers frequently mislabel an airborne flight as
// "scheduled" when their feed lags reality, so corroborating evidence (live
// GPS, actual out/in timestamps) outranks the status string.
package scoring

import (
	"strings"
	"time"

	"github.com/mottavibrannon/runway/internal/domain"
)

// Evidence ladder rungs, best first. Evaluated top to bottom; the first
// matching rung is the candidate's rank.
const (
	rankLiveAirborne    = iota // live position, explicitly not on ground
	rankLiveUnknown            // live position, ground state unknown
	rankEnRouteToday           // departed today (UTC), not yet arrived
	rankEnRoute                // departed any day, not yet arrived
	rankLabeledActive          // provider says "active"
	rankDepartedToday          // departed today regardless of arrival state
	rankLabeledScheduled       // provider says "scheduled"
	rankLabeledLanded          // provider says "landed"
	rankFallback
)

// Rank returns the candidate's position on the evidence ladder. Lower is
// better.
func Rank(c domain.RawCandidate, now time.Time) int {
	switch {
	case c.HasLivePosition && c.ConfirmedAirborne:
		return rankLiveAirborne
	case c.HasLivePosition:
		return rankLiveUnknown
	case departedToday(c, now) && c.ArrivedActual == nil:
		return rankEnRouteToday
	case c.DepartedActual != nil && c.ArrivedActual == nil:
		return rankEnRoute
	case strings.EqualFold(c.StatusLabel, "active"):
		return rankLabeledActive
	case departedToday(c, now):
		return rankDepartedToday
	case strings.EqualFold(c.StatusLabel, "scheduled"):
		return rankLabeledScheduled
	case strings.EqualFold(c.StatusLabel, "landed"):
		return rankLabeledLanded
	default:
		return rankFallback
	}
}

// SelectBest returns the index of the best-ranked candidate. Ties keep the
// provider's original order: the first of equal rank wins. The caller
// guarantees a non-empty slice.
func SelectBest(candidates []domain.RawCandidate, now time.Time) int {
	best := 0
	bestRank := Rank(candidates[0], now)
	for i := 1; i < len(candidates); i++ {
		if r := Rank(candidates[i], now); r < bestRank {
			best = i
			bestRank = r
		}
	}
	return best
}

func departedToday(c domain.RawCandidate, now time.Time) bool {
	if c.DepartedActual == nil {
		return false
	}
	y1, m1, d1 := c.DepartedActual.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
