package feed

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gtfs-replay/internal/gtfs"
)

// table wraps a parsed CSV file: a header-index map plus data rows.
type table struct {
	idx  map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	t := &table{idx: makeIndex(header)}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows, keep the rest
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func (t *table) field(row []string, name string) string {
	if i, ok := t.idx[name]; ok && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func loadStops(dir string) ([]gtfs.Stop, error) {
	t, err := readTable(filepath.Join(dir, "stops.txt"))
	if err != nil {
		return nil, err
	}
	stops := make([]gtfs.Stop, 0, len(t.rows))
	for _, row := range t.rows {
		lat, _ := strconv.ParseFloat(t.field(row, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(t.field(row, "stop_lon"), 64)
		stops = append(stops, gtfs.Stop{
			ID:   t.field(row, "stop_id"),
			Name: t.field(row, "stop_name"),
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stops, nil
}

func loadTrips(dir string) ([]gtfs.Trip, error) {
	t, err := readTable(filepath.Join(dir, "trips.txt"))
	if err != nil {
		return nil, err
	}
	trips := make([]gtfs.Trip, 0, len(t.rows))
	for _, row := range t.rows {
		trips = append(trips, gtfs.Trip{
			ID:        t.field(row, "trip_id"),
			RouteID:   t.field(row, "route_id"),
			ServiceID: t.field(row, "service_id"),
			Headsign:  t.field(row, "trip_headsign"),
			ShapeID:   t.field(row, "shape_id"),
		})
	}
	return trips, nil
}

func loadRoutes(dir string) ([]gtfs.Route, error) {
	t, err := readTable(filepath.Join(dir, "routes.txt"))
	if err != nil {
		return nil, err
	}
	routes := make([]gtfs.Route, 0, len(t.rows))
	for _, row := range t.rows {
		routes = append(routes, gtfs.Route{
			ID:        t.field(row, "route_id"),
			ShortName: t.field(row, "route_short_name"),
			LongName:  t.field(row, "route_long_name"),
		})
	}
	return routes, nil
}

var weekdayColumns = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func loadCalendar(dir string) ([]gtfs.CalendarEntry, error) {
	t, err := readTable(filepath.Join(dir, "calendar.txt"))
	if err != nil {
		return nil, err
	}
	entries := make([]gtfs.CalendarEntry, 0, len(t.rows))
	for _, row := range t.rows {
		e := gtfs.CalendarEntry{
			ServiceID: t.field(row, "service_id"),
			StartDate: t.field(row, "start_date"),
			EndDate:   t.field(row, "end_date"),
		}
		for i, col := range weekdayColumns {
			e.Weekdays[i] = t.field(row, col) == "1"
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func loadCalendarDates(dir string) ([]gtfs.CalendarDate, error) {
	t, err := readTable(filepath.Join(dir, "calendar_dates.txt"))
	if err != nil {
		return nil, err
	}
	dates := make([]gtfs.CalendarDate, 0, len(t.rows))
	for _, row := range t.rows {
		et, _ := strconv.Atoi(t.field(row, "exception_type"))
		dates = append(dates, gtfs.CalendarDate{
			ServiceID:     t.field(row, "service_id"),
			Date:          t.field(row, "date"),
			ExceptionType: et,
		})
	}
	return dates, nil
}

func loadShapes(dir string) ([]gtfs.ShapePoint, error) {
	t, err := readTable(filepath.Join(dir, "shapes.txt"))
	if err != nil {
		return nil, err
	}
	pts := make([]gtfs.ShapePoint, 0, len(t.rows))
	for _, row := range t.rows {
		lat, _ := strconv.ParseFloat(t.field(row, "shape_pt_lat"), 64)
		lon, _ := strconv.ParseFloat(t.field(row, "shape_pt_lon"), 64)
		seq, _ := strconv.Atoi(t.field(row, "shape_pt_sequence"))
		pts = append(pts, gtfs.ShapePoint{
			ShapeID:  t.field(row, "shape_id"),
			Lat:      lat,
			Lon:      lon,
			Sequence: seq,
		})
	}
	return pts, nil
}

func loadStopTimesPart(path string) ([]gtfs.StopTime, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	sts := make([]gtfs.StopTime, 0, len(t.rows))
	for _, row := range t.rows {
		seq, _ := strconv.Atoi(t.field(row, "stop_sequence"))
		sts = append(sts, gtfs.StopTime{
			TripID:       t.field(row, "trip_id"),
			StopID:       t.field(row, "stop_id"),
			ArrivalSec:   gtfs.ParseTime(t.field(row, "arrival_time")),
			DepartureSec: gtfs.ParseTime(t.field(row, "departure_time")),
			Sequence:     seq,
		})
	}
	return sts, nil
}

// routeNumber pulls the leading numeric token out of a delay log's
// free-text line label ("501 Queen" -> "501").
var routeNumber = regexp.MustCompile(`^\d+`)

// loadDelayLog parses one of the agency's delay spreadsheets. Rows
// whose line label carries no leading route number are dropped, same
// as entries for non-numbered services.
func loadDelayLog(path string) ([]gtfs.DelayEvent, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	events := make([]gtfs.DelayEvent, 0, len(t.rows))
	for _, row := range t.rows {
		route := routeNumber.FindString(t.field(row, "Line"))
		if route == "" {
			continue
		}
		date := t.field(row, "Date")
		if date == "" {
			continue
		}
		// Dates come as "2025-03-10T00:00:00"; the day part is the key.
		date = strings.SplitN(date, "T", 2)[0]
		minutes, _ := strconv.Atoi(t.field(row, "Min Delay"))
		events = append(events, gtfs.DelayEvent{
			Route:   route,
			Date:    date,
			Sec:     gtfs.ParseTime(t.field(row, "Time")),
			Code:    t.field(row, "Code"),
			Minutes: minutes,
		})
	}
	return events, nil
}

func loadDelayCodes(dir string) (map[string]string, error) {
	t, err := readTable(filepath.Join(dir, "Code_Descriptions.csv"))
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		if code := t.field(row, "CODE"); code != "" {
			codes[code] = t.field(row, "DESCRIPTION")
		}
	}
	return codes, nil
}
