package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtfs-replay/internal/gtfs"
)

// The fixture logs a 15-minute delay on route 501 at 08:00:00 on
// 2025-03-10: delayed until 08:15:00, impacted for five hours after.
func TestClassifyWindows(t *testing.T) {
	e := newTestEngine()
	d := date(2025, time.March, 10)

	status, info := e.Classify("501", d, 28800) // 08:00:00
	assert.Equal(t, StatusDelayed, status)
	require.NotNil(t, info)
	assert.Equal(t, "MECH", info.Code)
	assert.Equal(t, "Mechanical", info.Description)
	assert.Equal(t, 15, info.Minutes)

	status, _ = e.Classify("501", d, 29400) // 08:10:00
	assert.Equal(t, StatusDelayed, status)

	status, _ = e.Classify("501", d, 29700) // 08:15:00, inclusive end
	assert.Equal(t, StatusDelayed, status)

	status, _ = e.Classify("501", d, 29701)
	assert.Equal(t, StatusImpacted, status)

	status, _ = e.Classify("501", d, 47700) // 13:15:00, impact window end
	assert.Equal(t, StatusImpacted, status)

	status, info = e.Classify("501", d, 47701)
	assert.Equal(t, StatusNone, status)
	assert.Nil(t, info)
}

func TestClassifyOtherRouteAndDate(t *testing.T) {
	e := newTestEngine()

	status, _ := e.Classify("502", date(2025, time.March, 10), 28800)
	assert.Equal(t, StatusNone, status)

	status, _ = e.Classify("501", date(2025, time.March, 11), 28800)
	assert.Equal(t, StatusNone, status)
}

func TestHasDailyDelayIndependentOfInstant(t *testing.T) {
	e := newTestEngine()
	d := date(2025, time.March, 10)

	// well past the impact window, the day-level flag still holds
	status, _ := e.Classify("501", d, 80000)
	assert.Equal(t, StatusNone, status)
	assert.True(t, e.HasDailyDelay("501", d))

	assert.False(t, e.HasDailyDelay("501", date(2025, time.March, 11)))
	assert.False(t, e.HasDailyDelay("502", d))
}

func TestClassifyFirstEventInLogOrderWins(t *testing.T) {
	rec := testRecords()
	// Two overlapping windows: the earlier-logged event puts 30000 in
	// its impact window, the later-logged one would still be delayed.
	rec.Delays = []gtfs.DelayEvent{
		{Route: "501", Date: "2025-03-10", Sec: 28000, Code: "E1", Minutes: 5},
		{Route: "501", Date: "2025-03-10", Sec: 28000, Code: "E2", Minutes: 120},
	}
	e := NewEngine(NewSnapshot(rec))

	status, info := e.Classify("501", date(2025, time.March, 10), 30000)
	assert.Equal(t, StatusImpacted, status)
	require.NotNil(t, info)
	assert.Equal(t, "E1", info.Code)
}

func TestClassifyUnknownCode(t *testing.T) {
	rec := testRecords()
	rec.Delays = []gtfs.DelayEvent{
		{Route: "501", Date: "2025-03-10", Sec: 28800, Code: "XXXX", Minutes: 10},
	}
	e := NewEngine(NewSnapshot(rec))

	_, info := e.Classify("501", date(2025, time.March, 10), 28900)
	require.NotNil(t, info)
	assert.Equal(t, "XXXX", info.Code)
	assert.Empty(t, info.Description)
}

func TestMonthlyDelayCounts(t *testing.T) {
	rec := testRecords()
	rec.Delays = []gtfs.DelayEvent{
		{Route: "501", Date: "2025-03-10", Sec: 28800, Code: "MECH", Minutes: 15},
		{Route: "501", Date: "2025-03-12", Sec: 30000, Code: "MECH", Minutes: 5},
		{Route: "501", Date: "2025-05-01", Sec: 30000, Code: "MECH", Minutes: 5},
	}
	e := NewEngine(NewSnapshot(rec))

	months := e.MonthlyDelayCounts("501")
	require.Len(t, months, 12)
	assert.Equal(t, "Mar", months[2].Month)
	assert.Equal(t, 2, months[2].Count)
	assert.Equal(t, 1, months[4].Count)
	assert.Equal(t, 0, months[0].Count)

	// unknown route still yields twelve zeroed entries
	months = e.MonthlyDelayCounts("999")
	require.Len(t, months, 12)
	for _, m := range months {
		assert.Zero(t, m.Count)
	}
}

func TestMonthlyDelayCountsByWeekday(t *testing.T) {
	rec := testRecords()
	rec.Delays = []gtfs.DelayEvent{
		{Route: "501", Date: "2025-03-10", Sec: 28800, Code: "MECH", Minutes: 15}, // Monday
		{Route: "501", Date: "2025-03-15", Sec: 30000, Code: "MECH", Minutes: 5},  // Saturday
		{Route: "501", Date: "2025-03-15", Sec: 40000, Code: "MECH", Minutes: 5},  // Saturday
	}
	e := NewEngine(NewSnapshot(rec))

	months := e.MonthlyDelayCountsByWeekday("501")
	require.Len(t, months, 12)
	mar := months[2]
	assert.Equal(t, "Mar", mar.Month)
	assert.Equal(t, 1, mar.Weekdays[int(time.Monday)])
	assert.Equal(t, 2, mar.Weekdays[int(time.Saturday)])
	assert.Equal(t, 3, mar.Total)
	assert.Zero(t, months[0].Total)
}
