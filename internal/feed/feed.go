package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"gtfs-replay/internal/gtfs"
	"gtfs-replay/internal/replay"
)

// Options selects where the schedule and delay data come from.
type Options struct {
	// DataDir holds the GTFS text files, the split stop_times parts
	// and the delay spreadsheets.
	DataDir string
	// StopTimesParts is the number of stop_times_part_N.txt chunks.
	StopTimesParts int
	// DatabaseURL, when set, loads the schedule tables from a GTFS
	// Postgres import instead of the CSV files. Delay logs are not
	// part of a GTFS import and always come from DataDir.
	DatabaseURL string
}

// Load reads every source table and builds the immutable snapshot. A
// single table failing to load degrades to an empty table with a
// logged warning; Load only errors when no schedule data at all could
// be assembled, since no query can run against an empty store.
func Load(ctx context.Context, opts Options) (*replay.Snapshot, error) {
	var rec replay.Records
	var err error

	if opts.DatabaseURL != "" {
		rec, err = loadPostgresSchedule(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("load schedule from postgres: %w", err)
		}
	} else {
		rec = loadCSVSchedule(ctx, opts)
	}

	rec.Delays = loadDelays(opts.DataDir)
	rec.DelayCodes, err = loadDelayCodes(opts.DataDir)
	if err != nil {
		log.Printf("warning: delay codes unavailable: %v", err)
		rec.DelayCodes = map[string]string{}
	}

	if len(rec.Stops) == 0 && len(rec.Trips) == 0 {
		return nil, errors.New("no schedule data loaded")
	}

	log.Printf("feed loaded: %d stops, %d trips, %d stop times, %d routes, %d calendar rows, %d exceptions, %d shape points, %d delay events",
		len(rec.Stops), len(rec.Trips), len(rec.StopTimes), len(rec.Routes),
		len(rec.Calendar), len(rec.CalendarDates), len(rec.Shapes), len(rec.Delays))

	return replay.NewSnapshot(rec), nil
}

func loadCSVSchedule(ctx context.Context, opts Options) replay.Records {
	var rec replay.Records
	dir := opts.DataDir

	stops, err := loadStops(dir)
	rec.Stops = warnEmpty("stops.txt", stops, err)
	trips, err := loadTrips(dir)
	rec.Trips = warnEmpty("trips.txt", trips, err)
	routes, err := loadRoutes(dir)
	rec.Routes = warnEmpty("routes.txt", routes, err)
	calendar, err := loadCalendar(dir)
	rec.Calendar = warnEmpty("calendar.txt", calendar, err)
	dates, err := loadCalendarDates(dir)
	rec.CalendarDates = warnEmpty("calendar_dates.txt", dates, err)
	shapes, err := loadShapes(dir)
	rec.Shapes = warnEmpty("shapes.txt", shapes, err)
	rec.StopTimes = loadStopTimes(ctx, opts)
	return rec
}

// loadStopTimes fetches the split stop_times chunks concurrently.
// Chunk order does not matter: per-trip sequences are re-sorted when
// the snapshot is built.
func loadStopTimes(ctx context.Context, opts Options) []gtfs.StopTime {
	parts := opts.StopTimesParts
	if parts < 1 {
		parts = 1
	}
	results := make([][]gtfs.StopTime, parts)

	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < parts; i++ {
		i := i
		g.Go(func() error {
			name := fmt.Sprintf("stop_times_part_%d.txt", i+1)
			sts, err := loadStopTimesPart(filepath.Join(opts.DataDir, name))
			if err != nil {
				log.Printf("warning: %s unavailable: %v", name, err)
				return nil
			}
			results[i] = sts
			return nil
		})
	}
	_ = g.Wait()

	var all []gtfs.StopTime
	for _, sts := range results {
		all = append(all, sts...)
	}
	return all
}

// loadDelays concatenates the bus and streetcar logs in that order.
// Ingestion order is load-bearing: the classifier resolves overlapping
// windows by first match in this order.
func loadDelays(dir string) []gtfs.DelayEvent {
	var all []gtfs.DelayEvent
	for _, name := range []string{"Bus_delay2025.csv", "StreetCar_delay2025.csv"} {
		events, err := loadDelayLog(filepath.Join(dir, name))
		if err != nil {
			log.Printf("warning: %s unavailable: %v", name, err)
			continue
		}
		all = append(all, events...)
	}
	return all
}

func warnEmpty[T any](name string, rows []T, err error) []T {
	if err != nil {
		log.Printf("warning: %s unavailable: %v", name, err)
		return nil
	}
	return rows
}
