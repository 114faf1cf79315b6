package fat12

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{
			name:  "zero is no valid date",
			input: 0,
			want:  time.Time{},
		},
		{
			name:  "first day of the epoch",
			input: 1<<5 | 1,
			want:  time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "some date",
			input: 41<<9 | 3<<5 | 14,
			want:  time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "last possible date",
			input: 127<<9 | 12<<5 | 31,
			want:  time.Date(2107, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "month 0 is invalid",
			input: 41<<9 | 14,
			want:  time.Time{},
		},
		{
			name:  "month 13 is carried over",
			input: 13<<5 | 1,
			want:  time.Date(1981, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.input))
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{
			name:  "midnight",
			input: 0,
			want:  time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "seconds are stored in steps of 2",
			input: 12<<11 | 30<<5 | 5,
			want:  time.Date(1, 1, 1, 12, 30, 10, 0, time.UTC),
		},
		{
			name:  "last valid time",
			input: 23<<11 | 59<<5 | 29,
			want:  time.Date(1, 1, 1, 23, 59, 58, 0, time.UTC),
		},
		{
			name:  "minute 60 is carried into the hour",
			input: 1<<11 | 60<<5,
			want:  time.Date(1, 1, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			name:  "overflow is capped",
			input: 0xFFFF,
			want:  time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTime(tt.input))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, time.Date(2021, 3, 14, 12, 30, 10, 0, time.UTC), ParseTimestamp(41<<9|3<<5|14, 12<<11|30<<5|5))
	assert.True(t, ParseTimestamp(0, 12<<11).IsZero())
	assert.Equal(t, time.Date(2021, 3, 14, 23, 59, 59, 0, time.UTC), ParseTimestamp(41<<9|3<<5|14, 0xFFFF), "the time never moves the date")
}

func TestBitfield(t *testing.T) {
	packed := uint16(41<<9 | 3<<5 | 14)
	assert.Equal(t, 14, dateDay.from(packed))
	assert.Equal(t, 3, dateMonth.from(packed))
	assert.Equal(t, 41, dateYear.from(packed))

	packed = 23<<11 | 59<<5 | 29
	assert.Equal(t, 23, timeHours.from(packed))
	assert.Equal(t, 59, timeMinutes.from(packed))
	assert.Equal(t, 29, timeSeconds.from(packed))
}
