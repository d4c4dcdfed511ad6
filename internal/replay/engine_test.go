package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtfs-replay/internal/gtfs"
)

// Fixture layout: route 501 with a weekday service, one daytime trip
// A -> B -> C and one overnight trip A -> B scheduled past 24h.
func testRecords() Records {
	return Records{
		Stops: []gtfs.Stop{
			{ID: "A", Name: "Alder Ave", Lat: 43.0, Lon: -79.0},
			{ID: "B", Name: "Birch St", Lat: 43.2, Lon: -79.2},
			{ID: "C", Name: "Cedar Loop", Lat: 43.4, Lon: -79.4},
		},
		Routes: []gtfs.Route{
			{ID: "r1", ShortName: "501", LongName: "Queen"},
		},
		Trips: []gtfs.Trip{
			{ID: "t1", RouteID: "r1", ServiceID: "WD1", Headsign: "East", ShapeID: "sh1"},
			{ID: "t2", RouteID: "r1", ServiceID: "WD1", Headsign: "Night East", ShapeID: "sh1"},
		},
		StopTimes: []gtfs.StopTime{
			// t1: 08:00 -> 08:10 -> 08:20, fed out of order on purpose
			{TripID: "t1", StopID: "C", ArrivalSec: 30000, DepartureSec: 30000, Sequence: 3},
			{TripID: "t1", StopID: "A", ArrivalSec: 28800, DepartureSec: 28800, Sequence: 1},
			{TripID: "t1", StopID: "B", ArrivalSec: 29400, DepartureSec: 29400, Sequence: 2},
			// t2: 23:53 -> 00:10 next day (arrival past 86400)
			{TripID: "t2", StopID: "A", ArrivalSec: 86000, DepartureSec: 86000, Sequence: 1},
			{TripID: "t2", StopID: "B", ArrivalSec: 87000, DepartureSec: 87000, Sequence: 2},
		},
		Calendar: []gtfs.CalendarEntry{
			{
				ServiceID: "WD1",
				StartDate: "20250101",
				EndDate:   "20250630",
				Weekdays:  [7]bool{false, true, true, true, true, true, false},
			},
		},
		CalendarDates: []gtfs.CalendarDate{
			{ServiceID: "WD1", Date: "20250106", ExceptionType: gtfs.ExceptionRemoved},
			{ServiceID: "WD1", Date: "20250704", ExceptionType: gtfs.ExceptionAdded},
		},
		Shapes: []gtfs.ShapePoint{
			{ShapeID: "sh1", Lat: 43.0, Lon: -79.0, Sequence: 2},
			{ShapeID: "sh1", Lat: 43.4, Lon: -79.4, Sequence: 3},
			{ShapeID: "sh1", Lat: 42.9, Lon: -78.9, Sequence: 1},
		},
		Delays: []gtfs.DelayEvent{
			{Route: "501", Date: "2025-03-10", Sec: 28800, Code: "MECH", Minutes: 15},
		},
		DelayCodes: map[string]string{"MECH": "Mechanical"},
	}
}

func newTestEngine() *Engine {
	return NewEngine(NewSnapshot(testRecords()))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTickIncludesOvernightTripFromPreviousDay(t *testing.T) {
	e := newTestEngine()

	// Tuesday 00:10: t2 started Monday 23:53 and is still moving.
	got := e.Tick(date(2025, time.March, 11), 600)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].TripID)
	assert.InDelta(t, 43.2, got[0].Lat, 1e-9)
	assert.InDelta(t, -79.2, got[0].Lon, 1e-9)
}

func TestTickDoesNotDoubleCountOvernightTrip(t *testing.T) {
	e := newTestEngine()

	// Monday 00:10: t2 has not started yet and Sunday has no service,
	// so nothing is in motion.
	got := e.Tick(date(2025, time.March, 10), 600)
	assert.Empty(t, got)

	// Monday 08:05: only the daytime trip.
	got = e.Tick(date(2025, time.March, 10), 29100)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TripID)
}

func TestTickAfterOvernightTripEnds(t *testing.T) {
	e := newTestEngine()

	// Tuesday 00:20: t2 arrived at 00:10 and is parked at its last stop.
	got := e.Tick(date(2025, time.March, 11), 1200)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].TripID)
	assert.Equal(t, "End of Trip", got[0].NextStop)
}

func TestServiceDateRange(t *testing.T) {
	e := newTestEngine()

	rng := e.ServiceDateRange()
	require.NotNil(t, rng)
	assert.Equal(t, "2025-01-01", rng.Min.Format("2006-01-02"))
	assert.Equal(t, "2025-06-30", rng.Max.Format("2006-01-02"))

	empty := NewEngine(NewSnapshot(Records{}))
	assert.Nil(t, empty.ServiceDateRange())
}

func TestShapePoints(t *testing.T) {
	e := newTestEngine()

	pts := e.ShapePoints("sh1")
	require.Len(t, pts, 3)
	// sorted by point sequence, not ingestion order
	assert.Equal(t, LatLon{Lat: 42.9, Lon: -78.9}, pts[0])
	assert.Equal(t, LatLon{Lat: 43.4, Lon: -79.4}, pts[2])

	assert.Nil(t, e.ShapePoints("nope"))
}
