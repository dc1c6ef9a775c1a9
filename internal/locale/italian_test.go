package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLongDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), "mercoledì 14 ottobre 2026"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "lunedì 1 gennaio 2024"},
		{time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), "domenica 31 dicembre 2023"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LongDate(tt.in))
	}
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "09:05", ClockTime(9*time.Hour+5*time.Minute+30*time.Second))
	assert.Equal(t, "00:00", ClockTime(0))
	assert.Equal(t, "23:59", ClockTime(23*time.Hour+59*time.Minute))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "7", Number(7))
	assert.Equal(t, "1.234", Number(1234))
	assert.Equal(t, "1.234.567", Number(1234567))
}

func TestDayNormalizesToUTCMidnight(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 23:30 UTC on the 13th is already the 14th in Rome.
	in := time.Date(2026, 10, 13, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), Day(in, rome))
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), DaysFrom(in, 1, rome))
}
