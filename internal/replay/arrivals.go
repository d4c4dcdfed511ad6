package replay

import (
	"sort"
	"time"
)

// Arrival answers a stop-level "when is the next vehicle" query.
type Arrival struct {
	Sec     int    `json:"time"`
	TripID  string `json:"tripId"`
	RouteID string `json:"routeId"`
}

// NextArrival returns the first arrival at the stop strictly after
// afterSec whose service runs on date, or nil when nothing further is
// scheduled. The per-stop index is sorted by time only, so the scan
// skips inactive services as it goes; per-stop lists are short
// relative to the trip set, which is the point of the index.
func (e *Engine) NextArrival(stopID string, afterSec int, date time.Time) *Arrival {
	list := e.snap.arrivals[stopID]
	if len(list) == 0 {
		return nil
	}
	services := e.ActiveServices(date)
	start := sort.Search(len(list), func(i int) bool { return list[i].Sec > afterSec })
	for _, a := range list[start:] {
		if _, ok := services[a.ServiceID]; !ok {
			continue
		}
		return &Arrival{Sec: a.Sec, TripID: a.TripID, RouteID: a.RouteID}
	}
	return nil
}
