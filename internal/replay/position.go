package replay

import (
	"time"

	"gtfs-replay/internal/gtfs"
)

// VehiclePosition is one vehicle's state at a simulated instant, as
// handed to the renderer.
type VehiclePosition struct {
	TripID        string      `json:"id"`
	RouteID       string      `json:"routeId"`
	ShapeID       string      `json:"shapeId"`
	Lat           float64     `json:"lat"`
	Lon           float64     `json:"lon"`
	Headsign      string      `json:"tripHeadsign"`
	NextStop      string      `json:"nextStop"`
	DelayStatus   DelayStatus `json:"delayStatus"`
	DelayInfo     *DelayInfo  `json:"delayInfo,omitempty"`
	HasDailyDelay bool        `json:"hasDailyDelay"`
}

// Position interpolates a trip's location at sec seconds into the
// given service date. It returns nil when the trip has not started,
// has no usable stop sequence, or references unknown stops; a
// malformed trip drops out of the snapshot instead of failing the
// whole tick.
func (e *Engine) Position(trip gtfs.Trip, sec int, date time.Time) *VehiclePosition {
	sts := e.snap.StopTimes[trip.ID]
	if len(sts) == 0 {
		return nil
	}

	var from, to *gtfs.StopTime
	for i := 0; i+1 < len(sts); i++ {
		if sec >= sts[i].DepartureSec && sec <= sts[i+1].ArrivalSec {
			from, to = &sts[i], &sts[i+1]
			break
		}
	}

	if from == nil || to == nil {
		last := sts[len(sts)-1]
		if sec < last.ArrivalSec {
			return nil // not on trip yet
		}
		stop, ok := e.snap.Stops[last.StopID]
		if !ok {
			return nil
		}
		return &VehiclePosition{
			TripID:      trip.ID,
			RouteID:     e.routeShortName(trip.RouteID),
			ShapeID:     trip.ShapeID,
			Lat:         stop.Lat,
			Lon:         stop.Lon,
			Headsign:    trip.Headsign,
			NextStop:    "End of Trip",
			DelayStatus: StatusNone,
		}
	}

	fromStop, okFrom := e.snap.Stops[from.StopID]
	toStop, okTo := e.snap.Stops[to.StopID]
	if !okFrom || !okTo {
		return nil
	}

	total := to.ArrivalSec - from.DepartureSec
	progress := 0.0
	if total > 0 {
		progress = float64(sec-from.DepartureSec) / float64(total)
	}
	lat := fromStop.Lat + (toStop.Lat-fromStop.Lat)*progress
	lon := fromStop.Lon + (toStop.Lon-fromStop.Lon)*progress

	shortName := e.routeShortName(trip.RouteID)
	status, info := e.Classify(shortName, date, sec)

	return &VehiclePosition{
		TripID:        trip.ID,
		RouteID:       shortName,
		ShapeID:       trip.ShapeID,
		Lat:           lat,
		Lon:           lon,
		Headsign:      trip.Headsign,
		NextStop:      toStop.Name,
		DelayStatus:   status,
		DelayInfo:     info,
		HasDailyDelay: e.HasDailyDelay(shortName, date),
	}
}

func (e *Engine) routeShortName(routeID string) string {
	if r, ok := e.snap.Routes[routeID]; ok {
		return r.ShortName
	}
	return ""
}
