// Package geo provides the great-circle math used for arrival progress and
// ETA estimation. All functions are pure; positions are WGS84 decimal degrees.
package geo

import (
	"math"
	"time"
)

const (
	// EarthRadiusNm is the Earth's mean radius in nautical miles.
	EarthRadiusNm = 3440.065

	// MinEtaSpeedKnots is the slowest ground speed treated as a moving
	// aircraft. Anything below is stale or taxiing telemetry and produces
	// no ETA.
	MinEtaSpeedKnots = 50.0

	degToRad = math.Pi / 180.0

	// minRouteAngle is the smallest dep->arr angular distance (radians)
	// for which a progress fraction is defined. Routes shorter than this
	// (dep == arr, bad data) would blow up the division.
	minRouteAngle = 0.001

	progressFloor = 0.02
	progressCeil  = 0.98
)

// HaversineNm returns the great-circle distance between two points in
// nautical miles.
func HaversineNm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusNm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// EstimateETA projects an arrival time from the current position and ground
// speed. Returns nil when speed is unknown or below MinEtaSpeedKnots.
func EstimateETA(now time.Time, curLat, curLon, destLat, destLon float64, groundSpeedKnots *float64) *time.Time {
	if groundSpeedKnots == nil || *groundSpeedKnots < MinEtaSpeedKnots {
		return nil
	}
	distNm := HaversineNm(curLat, curLon, destLat, destLon)
	hours := distNm / *groundSpeedKnots
	eta := now.Add(time.Duration(hours * float64(time.Hour)))
	return &eta
}

// ProgressFraction returns how far along the dep->arr great circle the
// current position is, as a fraction clamped to [0.02, 0.98]. The clamp
// keeps noisy GPS near an endpoint from reporting exactly 0% or 100%.
// Returns nil for degenerate routes (dep and arr effectively identical).
func ProgressFraction(depLat, depLon, arrLat, arrLon, curLat, curLon float64) *float64 {
	dep := unitVector(depLat, depLon)
	arr := unitVector(arrLat, arrLon)
	cur := unitVector(curLat, curLon)

	total := angleBetween(dep, arr)
	if total < minRouteAngle {
		return nil
	}
	partial := angleBetween(dep, cur)

	frac := partial / total
	if frac < progressFloor {
		frac = progressFloor
	}
	if frac > progressCeil {
		frac = progressCeil
	}
	return &frac
}

type vec3 struct{ x, y, z float64 }

func unitVector(lat, lon float64) vec3 {
	latR := lat * degToRad
	lonR := lon * degToRad
	return vec3{
		x: math.Cos(latR) * math.Cos(lonR),
		y: math.Cos(latR) * math.Sin(lonR),
		z: math.Sin(latR),
	}
}

// angleBetween returns the central angle between two unit vectors via the
// spherical law of cosines.
func angleBetween(a, b vec3) float64 {
	dot := a.x*b.x + a.y*b.y + a.z*b.z
	// Guard against rounding pushing the dot product out of [-1, 1].
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}
