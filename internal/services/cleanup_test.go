package services

import (
	"testing"
	"time"
)

func TestNextMidnight(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{
			now:  time.Date(2026, 3, 1, 12, 30, 0, 0, loc),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
		},
		{
			// exactly midnight schedules the next day, not an immediate run
			now:  time.Date(2026, 3, 1, 0, 0, 0, 0, loc),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
		},
		{
			// month rollover
			now:  time.Date(2026, 2, 28, 23, 59, 59, 0, loc),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, loc),
		},
	}
	for _, tc := range cases {
		if got := nextMidnight(tc.now); !got.Equal(tc.want) {
			t.Errorf("nextMidnight(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}
