package gtfs

// Stop is a boarding location from stops.txt.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Trip is a single scheduled run of a vehicle from trips.txt.
type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
	Headsign  string
	ShapeID   string
}

// StopTime is one entry of a trip's ordered stop sequence.
// ArrivalSec and DepartureSec are seconds since midnight of the
// service day and can exceed 24h for overnight trips.
type StopTime struct {
	TripID       string
	StopID       string
	ArrivalSec   int
	DepartureSec int
	Sequence     int
}

// Route groups trips under a public-facing line. ShortName is the
// number riders (and the agency's delay logs) use, e.g. "501".
type Route struct {
	ID        string
	ShortName string
	LongName  string
}

// CalendarEntry is a weekly service rule from calendar.txt.
// StartDate and EndDate are compact YYYYMMDD strings, which compare
// correctly as plain strings. Weekdays is indexed by time.Weekday.
type CalendarEntry struct {
	ServiceID string
	StartDate string
	EndDate   string
	Weekdays  [7]bool
}

// Exception types from calendar_dates.txt.
const (
	ExceptionAdded   = 1
	ExceptionRemoved = 2
)

// CalendarDate is a per-date exception to a weekly rule.
// Date is a compact YYYYMMDD string.
type CalendarDate struct {
	ServiceID     string
	Date          string
	ExceptionType int
}

// ShapePoint is one vertex of a trip's drawn path.
type ShapePoint struct {
	ShapeID  string
	Lat      float64
	Lon      float64
	Sequence int
}

// DelayEvent is a single incident from the agency's delay logs.
// Route is the route short name extracted from the log's line label,
// Date is a YYYY-MM-DD day key and Sec the time of day in seconds.
type DelayEvent struct {
	Route   string
	Date    string
	Sec     int
	Code    string
	Minutes int
}
