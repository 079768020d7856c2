package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mprates/dailylesson/internal/scheduler"
)

func TestNextOccurrence(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2026, 8, 31, 6, 30, 0, 0, loc),
			hour: 8,
			want: time.Date(2026, 8, 31, 8, 0, 0, 0, loc),
		},
		{
			name: "already passed rolls to tomorrow",
			now:  time.Date(2026, 8, 31, 9, 15, 0, 0, loc),
			hour: 8,
			want: time.Date(2026, 9, 1, 8, 0, 0, 0, loc),
		},
		{
			name: "exactly at the hour rolls to tomorrow",
			now:  time.Date(2026, 8, 31, 8, 0, 0, 0, loc),
			hour: 8,
			want: time.Date(2026, 9, 1, 8, 0, 0, 0, loc),
		},
		{
			name: "midnight hour",
			now:  time.Date(2026, 8, 31, 12, 0, 0, 0, loc),
			hour: 0,
			want: time.Date(2026, 9, 1, 0, 0, 0, 0, loc),
		},
		{
			name: "invalid hour falls back to default",
			now:  time.Date(2026, 8, 31, 6, 0, 0, 0, loc),
			hour: 42,
			want: time.Date(2026, 8, 31, 8, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scheduler.NextOccurrence(tt.now, tt.hour)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now), "occurrence must be strictly in the future")
		})
	}
}
