package gtfs

import (
	"strconv"
	"strings"
)

// ParseTime converts a GTFS "HH:MM:SS" (or "HH:MM") string to seconds
// since midnight. Hours beyond 24 are allowed for overnight trips.
// Empty or unparsable values yield 0, matching the feed's habit of
// leaving optional times blank.
func ParseTime(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	sec := 0
	if len(parts) > 2 {
		sec, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
	}
	return h*3600 + m*60 + sec
}

// FormatTime renders seconds since midnight as HH:MM:SS. Used for
// log lines and API payloads, not for feed round-tripping.
func FormatTime(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := sec % 3600 / 60
	s := sec % 60
	return pad2(h) + ":" + pad2(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
