package gtfs

import "testing"

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00:00", 0},
		{"08:00:00", 28800},
		{"08:10", 29400},
		{"25:30:00", 91800}, // overnight trips run past 24h
		{" 08:00:00 ", 28800},
		{"", 0},
		{"garbage", 0},
		{"8", 0},
		{"xx:10:00", 0},
	}
	for _, tt := range tests {
		if got := ParseTime(tt.in); got != tt.want {
			t.Errorf("ParseTime(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00:00"},
		{28800, "08:00:00"},
		{29461, "08:11:01"},
		{91800, "25:30:00"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
