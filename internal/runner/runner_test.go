package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gtfs-replay/internal/replay"
)

func TestAdvanceRollsOverServiceDate(t *testing.T) {
	engine := replay.NewEngine(replay.NewSnapshot(replay.Records{}))
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	r := New(engine, nil, nil, time.Second, 600, start, 86100)

	// one tick of 600x speed crosses midnight
	r.step()
	assert.Equal(t, "2025-03-11", r.date.Format("2006-01-02"))
	assert.InDelta(t, 300, r.sec, 1e-9)

	r.step()
	assert.Equal(t, "2025-03-11", r.date.Format("2006-01-02"))
	assert.InDelta(t, 900, r.sec, 1e-9)
}

func TestStepWithoutPublisherOrMetrics(t *testing.T) {
	engine := replay.NewEngine(replay.NewSnapshot(replay.Records{}))
	r := New(engine, nil, nil, time.Second, 1, time.Now(), 0)

	// nothing loaded, nothing published; just must not panic
	r.step()
	assert.InDelta(t, 1, r.sec, 1e-9)
}
