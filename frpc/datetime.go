// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"fmt"
	"time"
)

// Calendar years representable by a DateTime. The year is stored as an
// 11-bit offset from MinYear on the wire.
const (
	MinYear = 1600
	MaxYear = MinYear + 2047
)

// maxZoneOffset bounds |timeZone| in seconds, exclusive.
const maxZoneOffset = 24 * 60 * 60

// DateTime is a calendar date and time together with the Unix instant it
// denotes and the UTC offset that was in effect.
type DateTime struct {
	owned
	year     int16 // offset from MinYear
	month    int8
	day      int8
	hour     int8
	minute   int8
	second   int8
	weekday  int8 // 0 = Sunday
	unixTime int64
	timeZone int32 // seconds east of UTC
	dst      bool
}

// PackedDateTime is the nine-field wire image of a DateTime.
type PackedDateTime struct {
	Year     uint16 // offset from MinYear
	Month    uint8
	Day      uint8
	Hour     uint8
	Minute   uint8
	Second   uint8
	Weekday  uint8
	UnixTime int64
	TimeZone int32
}

var (
	epoch = &DateTime{
		year:    1970 - MinYear,
		month:   1,
		day:     1,
		weekday: int8(time.Thursday),
	}
	nullDateTime = &DateTime{unixTime: -1}
)

// Epoch returns the shared 1970-01-01T00:00:00Z value. It belongs to no pool
// and may be placed in any container.
func Epoch() *DateTime { return epoch }

// NullDateTime returns the shared "no date" value: all calendar fields zero
// and a Unix time of -1.
func NullDateTime() *DateTime { return nullDateTime }

func (*DateTime) Type() Type { return TypeDateTime }
func (*DateTime) TypeName() string { return TypeDateTime.String() }

func (v *DateTime) Year() int { return int(v.year) + MinYear }
func (v *DateTime) Month() int { return int(v.month) }
func (v *DateTime) Day() int { return int(v.day) }
func (v *DateTime) Hour() int { return int(v.hour) }
func (v *DateTime) Minute() int { return int(v.minute) }
func (v *DateTime) Second() int { return int(v.second) }
func (v *DateTime) Weekday() int { return int(v.weekday) }
func (v *DateTime) UnixTime() int64 { return v.unixTime }
func (v *DateTime) TimeZone() int { return int(v.timeZone) }

// IsDST reports whether daylight saving time was in effect. Only values
// derived from a named zone can report true.
func (v *DateTime) IsDST() bool { return v.dst }

// Time returns the instant in a fixed zone carrying the stored offset.
func (v *DateTime) Time() time.Time {
	return time.Unix(v.unixTime, 0).In(time.FixedZone("", int(v.timeZone)))
}

// Packed returns the wire image.
func (v *DateTime) Packed() PackedDateTime {
	return PackedDateTime{
		Year:     uint16(v.year),
		Month:    uint8(v.month),
		Day:      uint8(v.day),
		Hour:     uint8(v.hour),
		Minute:   uint8(v.minute),
		Second:   uint8(v.second),
		Weekday:  uint8(v.weekday),
		UnixTime: v.unixTime,
		TimeZone: v.timeZone,
	}
}

func (v *DateTime) CloneInto(p *Pool) Value {
	c := *v
	c.owned = owned{p}
	p.track(&c)
	return &c
}

// IsoFormat renders YYYY-MM-DDTHH:MM:SS followed by the UTC offset as ±HHMM,
// or ±HHMMSS when the offset has a seconds part.
func (v *DateTime) IsoFormat() string {
	sign := byte('+')
	off := int(v.timeZone)
	if off < 0 {
		sign = '-'
		off = -off
	}
	zone := fmt.Sprintf("%c%02d%02d", sign, off/3600, off%3600/60)
	if off%60 != 0 {
		zone += fmt.Sprintf("%02d", off%60)
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d%s",
		v.Year(), v.month, v.day, v.hour, v.minute, v.second, zone)
}

// Now returns the current wall-clock second in the pool's local zone.
func (p *Pool) Now() *DateTime {
	return p.DateTimeFromUnix(time.Now().Unix())
}

// NewDateTime builds a value from calendar fields read as local time in the
// pool's zone. Fields that do not denote a real time in the supported year
// range are rejected with a *FormatError.
func (p *Pool) NewDateTime(year, month, day, hour, minute, second int) (*DateTime, error) {
	input := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second)
	if reason := checkFields(year, month, day, hour, minute, second); reason != "" {
		return nil, &FormatError{Input: input, Reason: reason}
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, p.loc)
	if t.Year() < MinYear || t.Year() > MaxYear {
		return nil, &FormatError{Input: input, Reason: "year out of range"}
	}
	return p.fromTime(t), nil
}

// DateTimeFromUnix derives every field from t in the pool's local zone,
// including the DST flag.
func (p *Pool) DateTimeFromUnix(t int64) *DateTime {
	return p.fromTime(time.Unix(t, 0).In(p.loc))
}

// DateTimeFromUnixZone derives every field from t at a fixed offset of tz
// seconds east of UTC. The result does not depend on the host zone. It panics
// unless tz lies strictly within one day of UTC.
func (p *Pool) DateTimeFromUnixZone(t int64, tz int) *DateTime {
	if tz <= -maxZoneOffset || tz >= maxZoneOffset {
		panic(fmt.Sprintf("frpc: zone offset %ds outside (-%d, %d)", tz, maxZoneOffset, maxZoneOffset))
	}
	return p.fromTime(time.Unix(t, 0).In(time.FixedZone("", tz)))
}

// DateTimeFromTime converts t, keeping its zone and truncating to the second.
func (p *Pool) DateTimeFromTime(t time.Time) *DateTime {
	return p.fromTime(t)
}

// DateTimeFromPacked rebuilds a value from its wire image. No field is
// validated or derived.
func (p *Pool) DateTimeFromPacked(pk PackedDateTime) *DateTime {
	v := &DateTime{
		owned:    owned{p},
		year:     int16(pk.Year),
		month:    int8(pk.Month),
		day:      int8(pk.Day),
		hour:     int8(pk.Hour),
		minute:   int8(pk.Minute),
		second:   int8(pk.Second),
		weekday:  int8(pk.Weekday),
		unixTime: pk.UnixTime,
		timeZone: pk.TimeZone,
	}
	p.track(v)
	return v
}

// RawDateTime stores the given fields and Unix time verbatim. Weekday and
// zone offset are zero.
func (p *Pool) RawDateTime(year, month, day, hour, minute, second int, unixTime int64) *DateTime {
	v := &DateTime{
		owned:    owned{p},
		year:     int16(year - MinYear),
		month:    int8(month),
		day:      int8(day),
		hour:     int8(hour),
		minute:   int8(minute),
		second:   int8(second),
		unixTime: unixTime,
	}
	p.track(v)
	return v
}

// ParseDateTime reads an ISO-8601 date-time. Without a zone designator the
// text is taken as local time in the pool's zone.
func (p *Pool) ParseDateTime(text string) (*DateTime, error) {
	f, err := parseISO(text)
	if err != nil {
		return nil, err
	}
	if reason := checkFields(f.year, f.month, f.day, f.hour, f.minute, f.second); reason != "" {
		return nil, &FormatError{Input: text, Reason: reason}
	}
	if !f.hasZone {
		return p.NewDateTime(f.year, f.month, f.day, f.hour, f.minute, f.second)
	}
	t := time.Date(f.year, time.Month(f.month), f.day, f.hour, f.minute, f.second, 0,
		time.FixedZone("", f.offset))
	return p.fromTime(t), nil
}

func (p *Pool) fromTime(t time.Time) *DateTime {
	if t.Year() < MinYear || t.Year() > MaxYear {
		panic(fmt.Sprintf("frpc: year %d outside [%d, %d]", t.Year(), MinYear, MaxYear))
	}
	_, off := t.Zone()
	v := &DateTime{
		owned:    owned{p},
		year:     int16(t.Year() - MinYear),
		month:    int8(t.Month()),
		day:      int8(t.Day()),
		hour:     int8(t.Hour()),
		minute:   int8(t.Minute()),
		second:   int8(t.Second()),
		weekday:  int8(t.Weekday()),
		unixTime: t.Unix(),
		timeZone: int32(off),
		dst:      t.IsDST(),
	}
	p.track(v)
	return v
}

// checkFields returns why the fields do not name a real time, or "".
func checkFields(year, month, day, hour, minute, second int) string {
	switch {
	case year < MinYear || year > MaxYear:
		return "year out of range"
	case month < 1 || month > 12:
		return "month out of range"
	case hour < 0 || hour > 23:
		return "hour out of range"
	case minute < 0 || minute > 59:
		return "minute out of range"
	case second < 0 || second > 59:
		return "second out of range"
	case day < 1 || time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Day() != day:
		return "day out of range"
	}
	return ""
}

type isoFields struct {
	year, month, day     int
	hour, minute, second int
	hasZone              bool
	offset               int
}

type isoScanner struct {
	s   string
	pos int
}

func (sc *isoScanner) done() bool { return sc.pos >= len(sc.s) }

func (sc *isoScanner) peek() byte {
	if sc.done() {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *isoScanner) accept(c byte) bool {
	if sc.peek() == c {
		sc.pos++
		return true
	}
	return false
}

func (sc *isoScanner) isDigit() bool {
	c := sc.peek()
	return c >= '0' && c <= '9'
}

func (sc *isoScanner) digits(n int) (int, bool) {
	if sc.pos+n > len(sc.s) {
		return 0, false
	}
	v := 0
	for _, c := range []byte(sc.s[sc.pos : sc.pos+n]) {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	sc.pos += n
	return v, true
}

func parseISO(text string) (isoFields, error) {
	var f isoFields
	sc := &isoScanner{s: text}
	bad := func(reason string) (isoFields, error) {
		return isoFields{}, &FormatError{Input: text, Reason: reason}
	}
	var ok bool

	if f.year, ok = sc.digits(4); !ok {
		return bad("expected 4-digit year")
	}
	extended := sc.accept('-')
	if f.month, ok = sc.digits(2); !ok {
		return bad("expected 2-digit month")
	}
	if extended && !sc.accept('-') {
		return bad("expected '-' before day")
	}
	if f.day, ok = sc.digits(2); !ok {
		return bad("expected 2-digit day")
	}
	if sc.done() {
		return f, nil
	}

	if c := sc.peek(); c == 'T' || c == 't' || c == ' ' {
		sc.pos++
	} else {
		return bad("expected date/time separator")
	}
	if f.hour, ok = sc.digits(2); !ok {
		return bad("expected 2-digit hour")
	}
	extended = sc.accept(':')
	if f.minute, ok = sc.digits(2); !ok {
		return bad("expected 2-digit minute")
	}
	if extended {
		if sc.accept(':') {
			if f.second, ok = sc.digits(2); !ok {
				return bad("expected 2-digit second")
			}
		}
	} else if sc.isDigit() {
		if f.second, ok = sc.digits(2); !ok {
			return bad("expected 2-digit second")
		}
	}
	if sc.accept('.') || sc.accept(',') {
		if !sc.isDigit() {
			return bad("expected fraction digits")
		}
		for sc.isDigit() {
			sc.pos++
		}
	}

	switch c := sc.peek(); c {
	case 0:
	case 'Z', 'z':
		sc.pos++
		f.hasZone = true
	case '+', '-':
		sc.pos++
		hh, ok := sc.digits(2)
		if !ok {
			return bad("expected 2-digit zone hour")
		}
		var mm, ss int
		colon := sc.accept(':')
		if colon || sc.isDigit() {
			if mm, ok = sc.digits(2); !ok {
				return bad("expected 2-digit zone minute")
			}
			if (colon && sc.accept(':')) || (!colon && sc.isDigit()) {
				if ss, ok = sc.digits(2); !ok {
					return bad("expected 2-digit zone second")
				}
			}
		}
		if hh > 23 || mm > 59 || ss > 59 {
			return bad("zone offset out of range")
		}
		f.hasZone = true
		f.offset = hh*3600 + mm*60 + ss
		if c == '-' {
			f.offset = -f.offset
		}
	default:
		return bad(fmt.Sprintf("unexpected %q", c))
	}
	if !sc.done() {
		return bad("trailing characters")
	}
	return f, nil
}
