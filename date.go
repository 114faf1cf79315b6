package fat12

import (
	"time"
)

// fatEpochYear is the year a FAT date counts from.
const fatEpochYear = 1980

// bitfield is one packed value inside of a FAT date or time.
type bitfield struct {
	shift uint
	width uint
}

func (f bitfield) from(packed uint16) int {
	return int(packed>>f.shift) & (1<<f.width - 1)
}

var (
	dateDay   = bitfield{shift: 0, width: 5}
	dateMonth = bitfield{shift: 5, width: 4}
	dateYear  = bitfield{shift: 9, width: 7}

	timeSeconds = bitfield{shift: 0, width: 5}
	timeMinutes = bitfield{shift: 5, width: 6}
	timeHours   = bitfield{shift: 11, width: 5}
)

// ParseDate decodes a packed FAT date:
//  Bits 0-4:  day of month, 1-31.
//  Bits 5-8:  month of year, 1-12.
//  Bits 9-15: years since 1980, 0-127 (1980-2107).
// The result always has a time of 00:00:00 UTC.
//
// A day or month of 0 is not valid. In that case time.Time{} is returned, so
// time.Time.IsZero() can be used to detect it.
// A month bigger than 12 is carried over into the next year by time.Date.
func ParseDate(input uint16) time.Time {
	return ParseTimestamp(input, 0)
}

// ParseTime decodes a packed FAT time with a granularity of 2 seconds:
//  Bits 0-4:   2-second count, 0-29 (0-58 seconds).
//  Bits 5-10:  minutes, 0-59.
//  Bits 11-15: hours, 0-23.
// The result is on January 1, year 1, so a time of 00:00:00 is time.Time.IsZero().
//
// Out of range values are carried over, but never past 23:59:59.
func ParseTime(input uint16) time.Time {
	hours, minutes, seconds := clock(input)
	return time.Date(1, 1, 1, hours, minutes, seconds, 0, time.UTC)
}

// clock unpacks a FAT time, clamped to 23:59:59 if the fields overflow the day.
func clock(input uint16) (hours, minutes, seconds int) {
	hours = timeHours.from(input)
	minutes = timeMinutes.from(input)
	seconds = timeSeconds.from(input) * 2

	if hours*3600+minutes*60+seconds >= 24*3600 {
		return 23, 59, 59
	}
	return hours, minutes, seconds
}

// ParseTimestamp combines a packed FAT date and time into one UTC timestamp.
// It returns time.Time{} if the date is invalid.
func ParseTimestamp(date, packedTime uint16) time.Time {
	day := dateDay.from(date)
	month := dateMonth.from(date)
	if day == 0 || month == 0 {
		return time.Time{}
	}

	hours, minutes, seconds := clock(packedTime)
	return time.Date(fatEpochYear+dateYear.from(date), time.Month(month), day, hours, minutes, seconds, 0, time.UTC)
}
