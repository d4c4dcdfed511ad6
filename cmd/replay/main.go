package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gtfs-replay/internal/api"
	"gtfs-replay/internal/config"
	"gtfs-replay/internal/feed"
	"gtfs-replay/internal/metrics"
	"gtfs-replay/internal/publisher"
	"gtfs-replay/internal/replay"
	"gtfs-replay/internal/runner"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics setup
	var mcol *metrics.Collector
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.SpeedMultiplier, cfg.TickInterval)
		metricsSrv = mcol.Serve(cfg.MetricsAddr)
	}

	// One-shot load and snapshot build; no query runs before this
	// completes.
	loadStart := time.Now()
	snap, err := feed.Load(ctx, feed.Options{
		DataDir:        cfg.DataDir,
		StopTimesParts: cfg.StopTimesParts,
		DatabaseURL:    cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("feed load error: %v", err)
	}
	if mcol != nil {
		mcol.LoadDuration.Set(time.Since(loadStart).Seconds())
		mcol.TableRows.WithLabelValues("stops").Set(float64(len(snap.Stops)))
		mcol.TableRows.WithLabelValues("trips").Set(float64(len(snap.Trips)))
		mcol.TableRows.WithLabelValues("routes").Set(float64(len(snap.Routes)))
		mcol.TableRows.WithLabelValues("calendar").Set(float64(len(snap.Calendar)))
		mcol.TableRows.WithLabelValues("shapes").Set(float64(len(snap.Shapes)))
	}

	engine := replay.NewEngine(snap)

	// NATS publisher; empty NATS_URL runs the API without publishing
	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSLogSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
	}

	// HTTP API for the renderer
	apiSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewServer(engine, cfg.Location).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		log.Printf("api listening on %s", cfg.HTTPAddr)
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	// Replay clock
	run := runner.New(engine, pub, mcol, cfg.TickInterval, cfg.SpeedMultiplier, cfg.StartDate, cfg.StartTimeSec)
	go func() {
		if err := run.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("runner stopped: %v", err)
		}
	}()

	// Block until context cancelled
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	log.Println("shutdown complete")
}

// wrapPublisherMetrics adapts the Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
