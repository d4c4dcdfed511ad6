package replay

import (
	"time"
)

// DelayStatus classifies a vehicle's relation to logged delay events
// at an instant.
type DelayStatus string

const (
	StatusNone     DelayStatus = "none"
	StatusDelayed  DelayStatus = "delayed"
	StatusImpacted DelayStatus = "impacted"
)

// impactSeconds is the post-delay window during which downstream
// effects (bunching, gaps) are still attributed to an event. Five
// hours is deliberately generous; the logs carry no recovery data.
const impactSeconds = 300 * 60

// DelayInfo describes the event a delayed or impacted status came from.
type DelayInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes"`
}

// Classify scans the route's delay events for the given date in log
// order: inside [start, start+minutes] the vehicle is delayed, inside
// the following impact window it is impacted, and the first matching
// event wins. Events are not re-sorted by time, so overlapping windows
// resolve by ingestion order — bus log before streetcar log.
func (e *Engine) Classify(routeShortName string, date time.Time, sec int) (DelayStatus, *DelayInfo) {
	events := e.snap.Delays[routeShortName][date.Format("2006-01-02")]
	for _, ev := range events {
		start := ev.Sec
		end := start + ev.Minutes*60
		switch {
		case sec >= start && sec <= end:
			return StatusDelayed, e.delayInfo(ev.Code, ev.Minutes)
		case sec > end && sec <= end+impactSeconds:
			return StatusImpacted, e.delayInfo(ev.Code, ev.Minutes)
		}
	}
	return StatusNone, nil
}

// HasDailyDelay reports whether any event was logged for the route on
// that date, independent of the instant-level status.
func (e *Engine) HasDailyDelay(routeShortName string, date time.Time) bool {
	return len(e.snap.Delays[routeShortName][date.Format("2006-01-02")]) > 0
}

func (e *Engine) delayInfo(code string, minutes int) *DelayInfo {
	return &DelayInfo{
		Code:        code,
		Description: e.snap.DelayCodes[code], // empty when the code is unknown
		Minutes:     minutes,
	}
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthlyDelayCount is one bar of the per-route delay chart.
type MonthlyDelayCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyDelayCounts aggregates the route's logged events per calendar
// month across the whole dataset. Always returns 12 entries.
func (e *Engine) MonthlyDelayCounts(routeShortName string) []MonthlyDelayCount {
	var counts [12]int
	for day, events := range e.snap.Delays[routeShortName] {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		counts[int(d.Month())-1] += len(events)
	}
	out := make([]MonthlyDelayCount, 12)
	for i := range out {
		out[i] = MonthlyDelayCount{Month: monthNames[i], Count: counts[i]}
	}
	return out
}

// WeekdayDelayCount is one month of the stacked per-weekday chart.
type WeekdayDelayCount struct {
	Month    string `json:"month"`
	Weekdays [7]int `json:"weekdays"` // Sunday..Saturday
	Total    int    `json:"total"`
}

// MonthlyDelayCountsByWeekday splits each month's event count by the
// weekday the event occurred on. Always returns 12 entries.
func (e *Engine) MonthlyDelayCountsByWeekday(routeShortName string) []WeekdayDelayCount {
	out := make([]WeekdayDelayCount, 12)
	for i := range out {
		out[i].Month = monthNames[i]
	}
	for day, events := range e.snap.Delays[routeShortName] {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		m := int(d.Month()) - 1
		out[m].Weekdays[int(d.Weekday())] += len(events)
		out[m].Total += len(events)
	}
	return out
}
