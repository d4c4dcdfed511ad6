package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir        string
	DatabaseURL    string
	StopTimesParts int

	HTTPAddr        string
	MetricsAddr     string
	NATSURL         string
	NATSLogSubjects bool

	TickInterval    time.Duration
	SpeedMultiplier float64
	StartDate       time.Time
	StartTimeSec    int
	Location        *time.Location
}

// Load reads configuration from .env and the environment.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.DataDir = getenvDefault("DATA_DIR", "./static_data")
	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"))

	if v := os.Getenv("STOP_TIMES_PARTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid STOP_TIMES_PARTS: %q", v)
		}
		cfg.StopTimesParts = n
	} else {
		cfg.StopTimesParts = 12
	}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	// Empty NATS_URL disables publishing; the HTTP API still serves.
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSLogSubjects = truthy(os.Getenv("LOG_NATS_SUBJECTS"))

	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid TICK_INTERVAL_MS: %q", v)
		}
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	} else {
		cfg.TickInterval = time.Second
	}

	if v := os.Getenv("SPEED_MULTIPLIER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid SPEED_MULTIPLIER: %q", v)
		}
		cfg.SpeedMultiplier = f
	} else {
		cfg.SpeedMultiplier = 1.0
	}

	tzName := getenvDefault("TZ", "")
	if tzName == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	now := time.Now().In(cfg.Location)
	if v := os.Getenv("START_DATE"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid START_DATE: %q", v)
		}
		cfg.StartDate = d
	} else {
		cfg.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, cfg.Location)
	}

	if v := os.Getenv("START_TIME_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec < 0 || sec >= 86400 {
			return nil, fmt.Errorf("invalid START_TIME_SEC: %q", v)
		}
		cfg.StartTimeSec = sec
	} else {
		cfg.StartTimeSec = now.Hour()*3600 + now.Minute()*60 + now.Second()
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}
