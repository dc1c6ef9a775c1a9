// Package locale formats dates and numbers the way Italian-facing pages and
// emails present them.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var weekdays = [...]string{
	"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato",
}

var months = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

var printer = message.NewPrinter(language.Italian)

// LongDate renders t as "<weekday> <day> <month> <year>", e.g.
// "mercoledì 14 ottobre 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// ShortDate renders t as dd/mm/yyyy.
func ShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ClockTime renders a time-of-day offset as HH:MM.
func ClockTime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	return fmt.Sprintf("%02d:%02d", int(d.Hours())%24, int(d.Minutes())%60)
}

// Number renders n with Italian digit grouping ("1.234.567").
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Day returns midnight UTC of t's calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysFrom returns the calendar day n days after today in loc.
func DaysFrom(now time.Time, n int, loc *time.Location) time.Time {
	return Day(now, loc).AddDate(0, 0, n)
}
