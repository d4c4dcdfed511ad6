package replay

import (
	"time"

	"gtfs-replay/internal/gtfs"
)

// ActiveServices resolves which service IDs run on the given date: the
// weekly rules whose date range and weekday flag match, minus removed
// exceptions, plus added exceptions. Added services are included
// unconditionally, even outside their rule's date range. Results are
// memoized per calendar day; the calendar never changes after load, so
// cached sets stay valid for the life of the process.
func (e *Engine) ActiveServices(date time.Time) map[string]struct{} {
	key := date.Format("2006-01-02")

	e.mu.RLock()
	cached, ok := e.svcCache[key]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	compact := date.Format("20060102")
	weekday := date.Weekday()

	removed := make(map[string]struct{})
	var added []string
	for _, cd := range e.snap.CalendarDates[compact] {
		switch cd.ExceptionType {
		case gtfs.ExceptionRemoved:
			removed[cd.ServiceID] = struct{}{}
		case gtfs.ExceptionAdded:
			added = append(added, cd.ServiceID)
		}
	}

	active := make(map[string]struct{})
	for _, c := range e.snap.Calendar {
		if compact < c.StartDate || compact > c.EndDate {
			continue
		}
		if !c.Weekdays[weekday] {
			continue
		}
		if _, rm := removed[c.ServiceID]; rm {
			continue
		}
		active[c.ServiceID] = struct{}{}
	}
	for _, id := range added {
		active[id] = struct{}{}
	}

	e.mu.Lock()
	e.svcCache[key] = active
	e.mu.Unlock()
	return active
}
