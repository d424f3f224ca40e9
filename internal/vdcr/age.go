package vdcr

import (
	"strconv"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

const Unknown = "Unknown"

// AgeLabel reports how long ago t was in whole days: "Today", "1 day ago", "N days ago".
// Future times read as "Today"; a zero time is "Unknown".
func AgeLabel(t, now time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	days := DaysSince(t, now)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	}
	return strconv.Itoa(days) + " days ago"
}

// DaysSince is floor((now - t) / 24h).
func DaysSince(t, now time.Time) int {
	d := now.Sub(t)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// LastTouched prefers the explicit review date and falls back to the row's update time.
func LastTouched(rec *repository.VDCRRecord) time.Time {
	if rec.LastUpdate != nil && !rec.LastUpdate.IsZero() {
		return *rec.LastUpdate
	}
	return rec.UpdatedAt
}
