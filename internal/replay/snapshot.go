package replay

import (
	"sort"

	"gtfs-replay/internal/gtfs"
)

// Records holds the raw typed rows produced by a feed source. Slice
// order matters in two places: Trips keeps the trip-table insertion
// order exposed by ActiveTrips, and Delays keeps log ingestion order,
// which is the tie-break order for overlapping delay windows.
type Records struct {
	Stops         []gtfs.Stop
	Trips         []gtfs.Trip
	StopTimes     []gtfs.StopTime
	Routes        []gtfs.Route
	Calendar      []gtfs.CalendarEntry
	CalendarDates []gtfs.CalendarDate
	Shapes        []gtfs.ShapePoint
	Delays        []gtfs.DelayEvent
	DelayCodes    map[string]string
}

// stopArrival is one precomputed entry of the per-stop arrival index.
type stopArrival struct {
	Sec       int
	TripID    string
	RouteID   string
	ServiceID string
}

// Snapshot is the immutable in-memory schedule and delay store. It is
// built once from Records and only read afterwards; every index a
// query path needs is prepared here.
type Snapshot struct {
	Stops         map[string]gtfs.Stop
	Trips         []gtfs.Trip
	TripsByID     map[string]gtfs.Trip
	StopTimes     map[string][]gtfs.StopTime // by trip, ascending stop sequence
	Routes        map[string]gtfs.Route
	Calendar      []gtfs.CalendarEntry
	CalendarDates map[string][]gtfs.CalendarDate // by compact YYYYMMDD date
	Shapes        map[string][]gtfs.ShapePoint   // by shape, ascending point sequence
	Delays        map[string]map[string][]gtfs.DelayEvent // route short name -> day key -> events
	DelayCodes    map[string]string

	arrivals map[string][]stopArrival // by stop, ascending arrival time
}

// NewSnapshot indexes raw records into the query form. Stop-time
// chunks may arrive concatenated in any order; each trip's sequence is
// re-sorted here, which is what interpolation correctness rests on.
func NewSnapshot(rec Records) *Snapshot {
	s := &Snapshot{
		Stops:         make(map[string]gtfs.Stop, len(rec.Stops)),
		Trips:         rec.Trips,
		TripsByID:     make(map[string]gtfs.Trip, len(rec.Trips)),
		StopTimes:     make(map[string][]gtfs.StopTime),
		Routes:        make(map[string]gtfs.Route, len(rec.Routes)),
		Calendar:      rec.Calendar,
		CalendarDates: make(map[string][]gtfs.CalendarDate),
		Shapes:        make(map[string][]gtfs.ShapePoint),
		Delays:        make(map[string]map[string][]gtfs.DelayEvent),
		DelayCodes:    rec.DelayCodes,
		arrivals:      make(map[string][]stopArrival),
	}
	if s.DelayCodes == nil {
		s.DelayCodes = make(map[string]string)
	}

	for _, st := range rec.Stops {
		s.Stops[st.ID] = st
	}
	for _, t := range rec.Trips {
		s.TripsByID[t.ID] = t
	}
	for _, r := range rec.Routes {
		s.Routes[r.ID] = r
	}
	for _, st := range rec.StopTimes {
		s.StopTimes[st.TripID] = append(s.StopTimes[st.TripID], st)
	}
	for _, sts := range s.StopTimes {
		sort.SliceStable(sts, func(i, j int) bool { return sts[i].Sequence < sts[j].Sequence })
	}
	for _, cd := range rec.CalendarDates {
		s.CalendarDates[cd.Date] = append(s.CalendarDates[cd.Date], cd)
	}
	for _, p := range rec.Shapes {
		s.Shapes[p.ShapeID] = append(s.Shapes[p.ShapeID], p)
	}
	for _, pts := range s.Shapes {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Sequence < pts[j].Sequence })
	}
	for _, d := range rec.Delays {
		byDate := s.Delays[d.Route]
		if byDate == nil {
			byDate = make(map[string][]gtfs.DelayEvent)
			s.Delays[d.Route] = byDate
		}
		byDate[d.Date] = append(byDate[d.Date], d)
	}

	s.buildArrivalIndex()
	return s
}

// buildArrivalIndex maps every stop to the time-sorted list of trips
// touching it, so next-arrival queries never rescan the full trip set.
func (s *Snapshot) buildArrivalIndex() {
	for tripID, sts := range s.StopTimes {
		trip, ok := s.TripsByID[tripID]
		if !ok {
			continue
		}
		for _, st := range sts {
			s.arrivals[st.StopID] = append(s.arrivals[st.StopID], stopArrival{
				Sec:       st.ArrivalSec,
				TripID:    tripID,
				RouteID:   trip.RouteID,
				ServiceID: trip.ServiceID,
			})
		}
	}
	for _, list := range s.arrivals {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Sec < list[j].Sec })
	}
}
