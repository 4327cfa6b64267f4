package month

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonths_TableTests(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{
			name:  "middle of month",
			start: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			n:     1,
			want:  time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "end of january into leap february",
			start: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			n:     1,
			want:  time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "end of january into regular february",
			start: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			n:     1,
			want:  time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "year rollover",
			start: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
			n:     1,
			want:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "several months",
			start: time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
			n:     3,
			want:  time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero months",
			start: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
			n:     0,
			want:  time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "negative months",
			start: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			n:     -1,
			want:  time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.n))
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysIn(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysIn(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
}
