package session

import "fmt"

// NewID formats a session id as YYYYMMDD-HHMMSS from a Unix timestamp,
// using a direct civil-from-days algorithm (Howard Hinnant's
// days_from_civil, reversed) so session ids carry no locale or external
// date-library dependency, per spec §4.D.
func NewID(unixSeconds int64) string {
	days := unixSeconds / 86400
	secOfDay := unixSeconds % 86400
	if secOfDay < 0 {
		secOfDay += 86400
		days--
	}

	y, m, d := civilFromDays(days)
	hh := secOfDay / 3600
	mm := (secOfDay % 3600) / 60
	ss := secOfDay % 60

	return fmt.Sprintf("%04d%02d%02d-%02d%02d%02d", y, m, d, hh, mm, ss)
}

// civilFromDays converts a day count since 1970-01-01 into (year, month,
// day), per Howard Hinnant's chrono-compatible civil_from_days algorithm.
func civilFromDays(z int64) (year int64, month int, day int) {
	z += 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, int(m), int(d)
}
