// Package runner drives the replay clock: a wall-clock ticker that
// advances simulated time-of-day at a configurable speed, computes the
// vehicle snapshot for each instant and hands it to the publisher.
package runner

import (
	"context"
	"log"
	"time"

	"gtfs-replay/internal/metrics"
	"gtfs-replay/internal/publisher"
	"gtfs-replay/internal/replay"
)

const daySeconds = 86400

type Runner struct {
	engine   *replay.Engine
	pub      *publisher.NATSPublisher // nil disables publishing
	mcol     *metrics.Collector       // nil disables metrics
	interval time.Duration
	speed    float64

	date time.Time
	sec  float64
}

func New(engine *replay.Engine, pub *publisher.NATSPublisher, mcol *metrics.Collector,
	interval time.Duration, speed float64, startDate time.Time, startSec int) *Runner {
	return &Runner{
		engine:   engine,
		pub:      pub,
		mcol:     mcol,
		interval: interval,
		speed:    speed,
		date:     startDate,
		sec:      float64(startSec),
	}
}

// Run ticks until the context is cancelled. Each query is independent
// given (date, time-of-day); the runner only owns the advancing clock.
func (r *Runner) Run(ctx context.Context) error {
	log.Printf("replay starting at %s %05.0fs (speed x%.1f)", r.date.Format("2006-01-02"), r.sec, r.speed)
	tick := time.NewTicker(r.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			r.step()
		}
	}
}

func (r *Runner) step() {
	start := time.Now()
	positions := r.engine.Tick(r.date, int(r.sec))

	if r.pub != nil {
		dateKey := r.date.Format("2006-01-02")
		for _, v := range positions {
			if err := r.pub.PublishVehicle(dateKey, int(r.sec), v); err != nil {
				log.Printf("publish error for %s: %v", v.TripID, err)
			}
		}
	}

	if r.mcol != nil {
		delayed, impacted := 0, 0
		for _, v := range positions {
			switch v.DelayStatus {
			case replay.StatusDelayed:
				delayed++
			case replay.StatusImpacted:
				impacted++
			}
		}
		r.mcol.Vehicles.Set(float64(len(positions)))
		r.mcol.DelayedVehicles.Set(float64(delayed))
		r.mcol.ImpactedVehicles.Set(float64(impacted))
		r.mcol.TicksTotal.Inc()
		r.mcol.TickDuration.Observe(time.Since(start).Seconds())
	}

	r.advance()
}

// advance moves simulated time by one interval scaled by the speed
// multiplier, rolling over to the next service date at 24h. Times
// past 86400 belong to overnight trips of the previous date and are
// handled inside Tick, not here.
func (r *Runner) advance() {
	r.sec += r.interval.Seconds() * r.speed
	for r.sec >= daySeconds {
		r.sec -= daySeconds
		r.date = r.date.AddDate(0, 0, 1)
		log.Printf("replay rolled over to %s", r.date.Format("2006-01-02"))
	}
}
