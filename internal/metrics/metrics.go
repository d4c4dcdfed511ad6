package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Vehicles         prometheus.Gauge
	DelayedVehicles  prometheus.Gauge
	ImpactedVehicles prometheus.Gauge

	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	LoadDuration prometheus.Gauge
	TableRows    *prometheus.GaugeVec // table label

	SpeedMultiplier prometheus.Gauge
	TickInterval    prometheus.Gauge // seconds
}

func NewCollector(speedMultiplier float64, tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Vehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_vehicles",
			Help: "Vehicles in the latest simulated snapshot.",
		}),
		DelayedVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_vehicles_delayed",
			Help: "Vehicles currently inside a delay window.",
		}),
		ImpactedVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_vehicles_impacted",
			Help: "Vehicles currently inside a post-delay impact window.",
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_ticks_total",
			Help: "Total simulation ticks computed.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_tick_duration_seconds",
			Help:    "Duration of simulation tick computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		LoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_load_duration_seconds",
			Help: "Wall time of the one-shot feed load.",
		}),
		TableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "replay_table_rows",
			Help: "Rows loaded per source table.",
		}, []string{"table"}),
		SpeedMultiplier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_speed_multiplier",
			Help: "Current simulated-time speed multiplier.",
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_tick_interval_seconds",
			Help: "Tick interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.Vehicles, c.DelayedVehicles, c.ImpactedVehicles,
		c.TicksTotal, c.TickDuration,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.LoadDuration, c.TableRows,
		c.SpeedMultiplier, c.TickInterval,
	)

	c.SpeedMultiplier.Set(speedMultiplier)
	c.TickInterval.Set(tickInterval.Seconds())

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
