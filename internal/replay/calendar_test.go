package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveServicesWeekdayRule(t *testing.T) {
	e := newTestEngine()

	// Monday inside the range
	active := e.ActiveServices(date(2025, time.March, 10))
	assert.Contains(t, active, "WD1")

	// Saturday: weekday flag off
	active = e.ActiveServices(date(2025, time.March, 8))
	assert.NotContains(t, active, "WD1")

	// Monday outside the range
	active = e.ActiveServices(date(2025, time.July, 7))
	assert.NotContains(t, active, "WD1")
}

func TestActiveServicesRemovedException(t *testing.T) {
	e := newTestEngine()

	// 2025-01-06 is a Monday but carries a removal exception.
	active := e.ActiveServices(date(2025, time.January, 6))
	assert.NotContains(t, active, "WD1")
}

func TestActiveServicesAddedExceptionIsUnconditional(t *testing.T) {
	e := newTestEngine()

	// 2025-07-04 is past the rule's end date; the added exception
	// includes the service anyway.
	active := e.ActiveServices(date(2025, time.July, 4))
	assert.Contains(t, active, "WD1")
}

func TestActiveServicesMemoized(t *testing.T) {
	e := newTestEngine()

	d := date(2025, time.March, 10)
	first := e.ActiveServices(d)
	second := e.ActiveServices(d)
	// repeated queries return the cached set itself
	assert.Equal(t, first, second)

	e.mu.RLock()
	_, cached := e.svcCache["2025-03-10"]
	e.mu.RUnlock()
	assert.True(t, cached)
}

func TestActiveTripsOrderAndFiltering(t *testing.T) {
	e := newTestEngine()

	trips := e.ActiveTrips(date(2025, time.March, 10))
	require.Len(t, trips, 2)
	// trip table insertion order is preserved
	assert.Equal(t, "t1", trips[0].ID)
	assert.Equal(t, "t2", trips[1].ID)

	assert.Empty(t, e.ActiveTrips(date(2025, time.March, 9)))
}
