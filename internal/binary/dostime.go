package binary

import "time"

// DOSTime decodes a packed DOS date and time pair.
// A zero date yields the zero time.
func DOSTime(date, clock uint16) time.Time {
	if date == 0 {
		return time.Time{}
	}
	year := int(date>>9) + 1980
	month := time.Month(date >> 5 & 0x0F)
	day := int(date & 0x1F)
	hour := int(clock >> 11)
	minute := int(clock >> 5 & 0x3F)
	sec := int(clock&0x1F) * 2
	return time.Date(year, month, day, hour, minute, sec, 0, time.Local)
}

// PackDOSTime encodes t as a DOS date and time pair.
// Years outside 1980..2107 are clamped; seconds lose their lowest bit.
func PackDOSTime(t time.Time) (date, clock uint16) {
	if t.IsZero() {
		return 0, 0
	}
	t = t.In(time.Local)
	year := t.Year()
	switch {
	case year < 1980:
		return 1<<5 | 1, 0
	case year > 2107:
		return 127<<9 | 12<<5 | 31, 23<<11 | 59<<5 | 29
	}
	//nolint:gosec // every field is range limited above or by time.Time
	date = uint16(year-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	//nolint:gosec // every field is range limited by time.Time
	clock = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, clock
}
