// Package gpstime provides GPS time as a week/seconds-of-week value type
// and conversions to and from calendar dates.
package gpstime

import (
	"fmt"
	"math"
	"time"
)

// Second counts used throughout the simulator.
const (
	SecondsInWeek     = 604800.0
	SecondsInHalfWeek = 302400.0
	SecondsInDay      = 86400.0
	SecondsInHour     = 3600.0
	SecondsInMinute   = 60.0
)

// Time is a GPS time: week number counted from January 6, 1980 plus
// seconds into that week. A negative week marks an unset time.
type Time struct {
	Week int
	Sec  float64
}

// Date is a Gregorian calendar date with fractional seconds.
type Date struct {
	Y, M, D int
	HH, MM  int
	Sec     float64
}

// Invalid returns a Time that compares as unset.
func Invalid() Time {
	return Time{Week: -1}
}

// Valid reports whether t holds a usable GPS time.
func (t Time) Valid() bool {
	return t.Week >= 0
}

// daysToMonth[m-1] is the day-of-year of the first day of month m in a
// non-leap year.
var daysToMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// FromDate converts a UTC calendar date into GPS time.
func FromDate(d Date) Time {
	ye := d.Y - 1980

	// Leap days since Jan 5/Jan 6, 1980.
	lpdays := ye/4 + 1
	if ye%4 == 0 && d.M <= 2 {
		lpdays--
	}

	// Days elapsed since Jan 5/Jan 6, 1980.
	de := ye*365 + daysToMonth[d.M-1] + d.D + lpdays - 6

	return Time{
		Week: de / 7,
		Sec: float64(de%7)*SecondsInDay + float64(d.HH)*SecondsInHour +
			float64(d.MM)*SecondsInMinute + d.Sec,
	}
}

// ToDate converts a GPS time back into a calendar date via the Julian day
// number.
func (t Time) ToDate() Date {
	var d Date

	c := int(float64(7*t.Week)+math.Floor(t.Sec/SecondsInDay)+2444245.0) + 1537
	e := int((float64(c) - 122.1) / 365.25)
	f := 365*e + e/4
	g := int(float64(c-f) / 30.6001)

	d.D = c - f - int(30.6001*float64(g))
	d.M = g - 1 - 12*(g/14)
	d.Y = e - 4715 - (7+d.M)/10

	d.HH = int(t.Sec/SecondsInHour) % 24
	d.MM = int(t.Sec/SecondsInMinute) % 60
	d.Sec = t.Sec - SecondsInMinute*math.Floor(t.Sec/SecondsInMinute)

	return d
}

// Add returns t advanced by dt seconds, normalized so that the seconds
// stay within [0, SecondsInWeek). The result is rounded to the nearest
// millisecond to keep repeated 0.1 s steps exact.
func (t Time) Add(dt float64) Time {
	r := Time{Week: t.Week, Sec: t.Sec + dt}
	r.Sec = math.Round(r.Sec*1000.0) / 1000.0

	for r.Sec >= SecondsInWeek {
		r.Sec -= SecondsInWeek
		r.Week++
	}
	for r.Sec < 0.0 {
		r.Sec += SecondsInWeek
		r.Week--
	}

	return r
}

// Sub returns t - u in seconds.
func (t Time) Sub(u Time) float64 {
	return t.Sec - u.Sec + float64(t.Week-u.Week)*SecondsInWeek
}

// Now returns the current UTC wall clock as a GPS time.
func Now() Time {
	return FromDate(FromGoTime(time.Now().UTC()))
}

// FromGoTime converts a time.Time into a calendar Date.
func FromGoTime(t time.Time) Date {
	return Date{
		Y:   t.Year(),
		M:   int(t.Month()),
		D:   t.Day(),
		HH:  t.Hour(),
		MM:  t.Minute(),
		Sec: float64(t.Second()),
	}
}

// String renders the date in the scenario time format YYYY/MM/DD,hh:mm:ss.
func (d Date) String() string {
	return fmt.Sprintf("%4d/%02d/%02d,%02d:%02d:%02.0f", d.Y, d.M, d.D, d.HH, d.MM, d.Sec)
}
