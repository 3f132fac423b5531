package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LHR -> JFK, the classic transatlantic pair.
const (
	lhrLat = 51.477
	lhrLon = -0.461
	jfkLat = 40.641
	jfkLon = -73.778
)

func TestHaversineNm(t *testing.T) {
	// Published great-circle distance LHR-JFK is ~2990nm.
	dist := HaversineNm(lhrLat, lhrLon, jfkLat, jfkLon)
	assert.InDelta(t, 2990, dist, 30)

	// Zero distance for identical points.
	assert.InDelta(t, 0, HaversineNm(lhrLat, lhrLon, lhrLat, lhrLon), 0.001)
}

func TestEstimateETA(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil speed", func(t *testing.T) {
		assert.Nil(t, EstimateETA(now, 0, 0, 10, 10, nil))
	})

	t.Run("parked", func(t *testing.T) {
		zero := 0.0
		assert.Nil(t, EstimateETA(now, 0, 0, 10, 10, &zero))
	})

	t.Run("below threshold", func(t *testing.T) {
		slow := 49.0
		assert.Nil(t, EstimateETA(now, 0, 0, 10, 10, &slow))
	})

	t.Run("cruise", func(t *testing.T) {
		// 1000nm at 200kt is 5 hours out.
		speed := 200.0
		// ~16.667 degrees of latitude along a meridian is 1000nm.
		eta := EstimateETA(now, 0, 0, 1000/60.0, 0, &speed)
		require.NotNil(t, eta)
		assert.WithinDuration(t, now.Add(5*time.Hour), *eta, 2*time.Minute)
		assert.True(t, eta.After(now))
	})
}

func TestProgressFraction_Endpoints(t *testing.T) {
	// At the departure airport the fraction sits on the lower clamp.
	atDep := ProgressFraction(lhrLat, lhrLon, jfkLat, jfkLon, lhrLat, lhrLon)
	require.NotNil(t, atDep)
	assert.InDelta(t, 0.02, *atDep, 0.0001)

	// At the arrival airport it sits on the upper clamp.
	atArr := ProgressFraction(lhrLat, lhrLon, jfkLat, jfkLon, jfkLat, jfkLon)
	require.NotNil(t, atArr)
	assert.InDelta(t, 0.98, *atArr, 0.0001)
}

func TestProgressFraction_Monotonic(t *testing.T) {
	// Sample points progressively closer to JFK along a rough LHR->JFK
	// track; the fraction must never decrease.
	waypoints := [][2]float64{
		{51.0, -10.0},
		{52.0, -25.0},
		{52.1, -32.4},
		{50.0, -45.0},
		{46.0, -60.0},
		{42.0, -70.0},
	}

	prev := -1.0
	for _, wp := range waypoints {
		p := ProgressFraction(lhrLat, lhrLon, jfkLat, jfkLon, wp[0], wp[1])
		require.NotNil(t, p, "waypoint %v", wp)
		assert.GreaterOrEqual(t, *p, prev, "waypoint %v", wp)
		prev = *p
	}
}

func TestProgressFraction_DegenerateRoute(t *testing.T) {
	// dep == arr has no defined progress.
	assert.Nil(t, ProgressFraction(lhrLat, lhrLon, lhrLat, lhrLon, 45.0, -30.0))
}

func TestProgressFraction_Midpoint(t *testing.T) {
	// A point near the halfway mark lands around 0.5, well off both clamps.
	p := ProgressFraction(lhrLat, lhrLon, jfkLat, jfkLon, 52.3, -37.0)
	require.NotNil(t, p)
	assert.Greater(t, *p, 0.35)
	assert.Less(t, *p, 0.65)
}
