package replay

import (
	"sync"
	"time"

	"gtfs-replay/internal/gtfs"
)

const daySeconds = 86400

// Engine answers all schedule-replay queries over one immutable
// Snapshot. The only mutable state is the per-date active-service
// cache, guarded for concurrent use by the tick loop and the HTTP API.
type Engine struct {
	snap *Snapshot

	mu       sync.RWMutex
	svcCache map[string]map[string]struct{} // day key -> active service IDs
}

// NewEngine wraps a built snapshot.
func NewEngine(snap *Snapshot) *Engine {
	return &Engine{
		snap:     snap,
		svcCache: make(map[string]map[string]struct{}),
	}
}

// Snapshot exposes the underlying store for read-only use.
func (e *Engine) Snapshot() *Snapshot { return e.snap }

// DateRange bounds a date picker: min start and max end across all
// weekly calendar rules.
type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// ServiceDateRange returns the calendar's overall validity range, or
// nil when no calendar rows were loaded.
func (e *Engine) ServiceDateRange() *DateRange {
	if len(e.snap.Calendar) == 0 {
		return nil
	}
	minD, maxD := "99999999", "00000000"
	for _, c := range e.snap.Calendar {
		if c.StartDate < minD {
			minD = c.StartDate
		}
		if c.EndDate > maxD {
			maxD = c.EndDate
		}
	}
	start, err := time.Parse("20060102", minD)
	if err != nil {
		return nil
	}
	end, err := time.Parse("20060102", maxD)
	if err != nil {
		return nil
	}
	return &DateRange{Min: start, Max: end}
}

// LatLon is a bare coordinate pair for shape polylines.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ShapePoints returns the ordered polyline for a shape, or nil when
// the shape is unknown.
func (e *Engine) ShapePoints(shapeID string) []LatLon {
	pts := e.snap.Shapes[shapeID]
	if len(pts) == 0 {
		return nil
	}
	out := make([]LatLon, len(pts))
	for i, p := range pts {
		out[i] = LatLon{Lat: p.Lat, Lon: p.Lon}
	}
	return out
}

// ActiveTrips returns every trip whose service runs on date, in trip
// table order. No route filtering happens here; hiding vehicles is a
// display concern.
func (e *Engine) ActiveTrips(date time.Time) []gtfs.Trip {
	services := e.ActiveServices(date)
	if len(services) == 0 {
		return nil
	}
	var active []gtfs.Trip
	for _, t := range e.snap.Trips {
		if _, ok := services[t.ServiceID]; ok {
			active = append(active, t)
		}
	}
	return active
}

// Tick computes the full vehicle snapshot for a simulated instant.
// Trips from the previous service day are re-checked at sec+86400 so
// overnight runs stay on the map after midnight; only trips scheduled
// past 24h qualify, so nothing is counted twice.
func (e *Engine) Tick(date time.Time, sec int) []VehiclePosition {
	var out []VehiclePosition
	for _, trip := range e.ActiveTrips(date) {
		if vp := e.Position(trip, sec, date); vp != nil {
			out = append(out, *vp)
		}
	}

	yesterday := date.AddDate(0, 0, -1)
	for _, trip := range e.ActiveTrips(yesterday) {
		sts := e.snap.StopTimes[trip.ID]
		if len(sts) == 0 {
			continue
		}
		if sts[len(sts)-1].ArrivalSec <= daySeconds {
			continue
		}
		if vp := e.Position(trip, sec+daySeconds, yesterday); vp != nil {
			out = append(out, *vp)
		}
	}
	return out
}
