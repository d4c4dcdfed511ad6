package feed

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gtfs-replay/internal/gtfs"
	"gtfs-replay/internal/replay"
)

// Open connects to a GTFS Postgres import through the pgx stdlib
// driver with conservative pool limits.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Ping verifies the connection with a bounded timeout.
func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// WithDBName returns a DSN identical to the input but with the
// database path replaced. Supports postgres:// and postgresql://.
func WithDBName(dsn, database string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("empty DSN")
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(database, "/") {
		u.Path = "/" + database
	} else {
		u.Path = database
	}
	return u.String(), nil
}

// loadPostgresSchedule reads the schedule tables from an imported GTFS
// database. Unlike the CSV path, a failed query is a hard error: a
// reachable database with missing tables points at a broken import,
// not at an optional file.
func loadPostgresSchedule(ctx context.Context, dsn string) (replay.Records, error) {
	var rec replay.Records

	db, err := Open(dsn)
	if err != nil {
		return rec, err
	}
	defer db.Close()
	if err := Ping(ctx, db); err != nil {
		return rec, err
	}

	if rec.Stops, err = queryStops(ctx, db); err != nil {
		return rec, err
	}
	if rec.Routes, err = queryRoutes(ctx, db); err != nil {
		return rec, err
	}
	if rec.Trips, err = queryTrips(ctx, db); err != nil {
		return rec, err
	}
	if rec.StopTimes, err = queryStopTimes(ctx, db); err != nil {
		return rec, err
	}
	if rec.Calendar, err = queryCalendar(ctx, db); err != nil {
		return rec, err
	}
	if rec.CalendarDates, err = queryCalendarDates(ctx, db); err != nil {
		return rec, err
	}
	if rec.Shapes, err = queryShapes(ctx, db); err != nil {
		return rec, err
	}
	return rec, nil
}

func queryStops(ctx context.Context, db *sql.DB) ([]gtfs.Stop, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT stop_id, COALESCE(stop_name, ''), stop_lat, stop_lon FROM stops`)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()
	var stops []gtfs.Stop
	for rows.Next() {
		var s gtfs.Stop
		if err := rows.Scan(&s.ID, &s.Name, &s.Lat, &s.Lon); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

func queryRoutes(ctx context.Context, db *sql.DB) ([]gtfs.Route, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT route_id, COALESCE(route_short_name, ''), COALESCE(route_long_name, '') FROM routes`)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()
	var routes []gtfs.Route
	for rows.Next() {
		var r gtfs.Route
		if err := rows.Scan(&r.ID, &r.ShortName, &r.LongName); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func queryTrips(ctx context.Context, db *sql.DB) ([]gtfs.Trip, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT trip_id, route_id, service_id, COALESCE(trip_headsign, ''), COALESCE(shape_id, '') FROM trips`)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()
	var trips []gtfs.Trip
	for rows.Next() {
		var t gtfs.Trip
		if err := rows.Scan(&t.ID, &t.RouteID, &t.ServiceID, &t.Headsign, &t.ShapeID); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func queryStopTimes(ctx context.Context, db *sql.DB) ([]gtfs.StopTime, error) {
	// arrival/departure may be stored as text or interval; cast to text
	// and reuse the feed time parser.
	rows, err := db.QueryContext(ctx,
		`SELECT trip_id, stop_id, COALESCE(arrival_time::text, ''), COALESCE(departure_time::text, ''), stop_sequence
         FROM stop_times ORDER BY trip_id, stop_sequence`)
	if err != nil {
		return nil, fmt.Errorf("query stop_times: %w", err)
	}
	defer rows.Close()
	var sts []gtfs.StopTime
	for rows.Next() {
		var st gtfs.StopTime
		var arr, dep string
		if err := rows.Scan(&st.TripID, &st.StopID, &arr, &dep, &st.Sequence); err != nil {
			return nil, err
		}
		st.ArrivalSec = gtfs.ParseTime(arr)
		st.DepartureSec = gtfs.ParseTime(dep)
		sts = append(sts, st)
	}
	return sts, rows.Err()
}

func queryCalendar(ctx context.Context, db *sql.DB) ([]gtfs.CalendarEntry, error) {
	// Weekday columns vary across importers (0/1, t/f, enums); compare
	// as text.
	rows, err := db.QueryContext(ctx,
		`SELECT service_id,
                sunday::text, monday::text, tuesday::text, wednesday::text,
                thursday::text, friday::text, saturday::text,
                to_char(start_date, 'YYYYMMDD'), to_char(end_date, 'YYYYMMDD')
         FROM calendar`)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}
	defer rows.Close()
	var entries []gtfs.CalendarEntry
	for rows.Next() {
		var e gtfs.CalendarEntry
		var days [7]string
		if err := rows.Scan(&e.ServiceID,
			&days[0], &days[1], &days[2], &days[3], &days[4], &days[5], &days[6],
			&e.StartDate, &e.EndDate); err != nil {
			return nil, err
		}
		for i, d := range days {
			e.Weekdays[i] = boolish(d)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func queryCalendarDates(ctx context.Context, db *sql.DB) ([]gtfs.CalendarDate, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT service_id, to_char(date, 'YYYYMMDD'), exception_type::text FROM calendar_dates`)
	if err != nil {
		return nil, fmt.Errorf("query calendar_dates: %w", err)
	}
	defer rows.Close()
	var dates []gtfs.CalendarDate
	for rows.Next() {
		var cd gtfs.CalendarDate
		var et string
		if err := rows.Scan(&cd.ServiceID, &cd.Date, &et); err != nil {
			return nil, err
		}
		switch strings.ToLower(strings.TrimSpace(et)) {
		case "1", "added":
			cd.ExceptionType = gtfs.ExceptionAdded
		case "2", "removed":
			cd.ExceptionType = gtfs.ExceptionRemoved
		}
		dates = append(dates, cd)
	}
	return dates, rows.Err()
}

func queryShapes(ctx context.Context, db *sql.DB) ([]gtfs.ShapePoint, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT shape_id, shape_pt_lat, shape_pt_lon, shape_pt_sequence
         FROM shapes ORDER BY shape_id, shape_pt_sequence`)
	if err != nil {
		return nil, fmt.Errorf("query shapes: %w", err)
	}
	defer rows.Close()
	var pts []gtfs.ShapePoint
	for rows.Next() {
		var p gtfs.ShapePoint
		if err := rows.Scan(&p.ShapeID, &p.Lat, &p.Lon, &p.Sequence); err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, rows.Err()
}

func boolish(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "available":
		return true
	}
	return false
}
