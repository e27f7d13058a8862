package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"
)

// weekdayKeys maps time.Weekday to the lowercase names used in the
// business-hours config
var weekdayKeys = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// weekdayLabels are the short display names, Monday first, used when
// formatting hours for the shopper
var weekdayLabels = []struct {
	key   string
	label string
}{
	{"monday", "Mon"},
	{"tuesday", "Tue"},
	{"wednesday", "Wed"},
	{"thursday", "Thu"},
	{"friday", "Fri"},
	{"saturday", "Sat"},
	{"sunday", "Sun"},
}

// IsWithinBusinessHours reports whether the merchant is open at the given
// instant. A missing or empty config means always open. Overnight windows
// (close earlier than open) are honored, including the tail of the
// previous day's window spilling into the current day.
func IsWithinBusinessHours(cfg *models.BusinessHoursConfig, at time.Time) bool {
	if cfg == nil || len(cfg.Days) == 0 {
		return true
	}

	local := at.In(configLocation(cfg))
	minutes := local.Hour()*60 + local.Minute()

	if day, ok := cfg.Days[weekdayKeys[local.Weekday()]]; ok && day.IsOpen {
		open, err1 := parseClock(day.Open)
		close, err2 := parseClock(day.Close)
		if err1 == nil && err2 == nil {
			if close >= open {
				if minutes >= open && minutes <= close {
					return true
				}
			} else if minutes >= open || minutes <= close {
				// Overnight window on today's schedule
				return true
			}
		}
	}

	// Previous day's overnight window may still cover the early morning
	prevKey := weekdayKeys[(int(local.Weekday())+6)%7]
	if prev, ok := cfg.Days[prevKey]; ok && prev.IsOpen {
		open, err1 := parseClock(prev.Open)
		close, err2 := parseClock(prev.Close)
		if err1 == nil && err2 == nil && close < open && minutes <= close {
			return true
		}
	}

	return false
}

// FormatBusinessHours renders the weekly schedule for the shopper,
// grouping consecutive weekdays that share the same window.
// Example: "Mon-Fri: 9:00 AM - 5:00 PM; Sat: 10:00 AM - 2:00 PM; Sun: Closed"
func FormatBusinessHours(cfg *models.BusinessHoursConfig) string {
	if cfg == nil || len(cfg.Days) == 0 {
		return "Open 24/7"
	}

	type group struct {
		startLabel string
		endLabel   string
		window     string
	}

	var groups []group
	for _, wd := range weekdayLabels {
		window := dayWindow(cfg.Days[wd.key])
		if len(groups) > 0 && groups[len(groups)-1].window == window {
			groups[len(groups)-1].endLabel = wd.label
			continue
		}
		groups = append(groups, group{startLabel: wd.label, endLabel: wd.label, window: window})
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		days := g.startLabel
		if g.endLabel != g.startLabel {
			days = g.startLabel + "-" + g.endLabel
		}
		parts = append(parts, fmt.Sprintf("%s: %s", days, g.window))
	}

	return strings.Join(parts, "; ")
}

// NextOpenTime scans up to 14 days ahead for the first opening strictly
// after from. Returns nil when the schedule has no open day, or when no
// config exists (always open, nothing to wait for).
func NextOpenTime(cfg *models.BusinessHoursConfig, from time.Time) *time.Time {
	if cfg == nil || len(cfg.Days) == 0 {
		return nil
	}

	loc := configLocation(cfg)
	local := from.In(loc)

	for offset := 0; offset <= 14; offset++ {
		day := local.AddDate(0, 0, offset)
		sched, ok := cfg.Days[weekdayKeys[day.Weekday()]]
		if !ok || !sched.IsOpen {
			continue
		}
		open, err := parseClock(sched.Open)
		if err != nil {
			continue
		}
		candidate := time.Date(day.Year(), day.Month(), day.Day(), open/60, open%60, 0, 0, loc)
		if candidate.After(from) {
			return &candidate
		}
	}

	return nil
}

// configLocation loads the configured timezone, falling back to UTC
func configLocation(cfg *models.BusinessHoursConfig) *time.Location {
	if cfg.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("⚠️  Invalid business hours timezone %q, falling back to UTC: %v", cfg.Timezone, err)
		return time.UTC
	}
	return loc
}

// parseClock converts an "HH:MM" string to minutes since midnight
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// dayWindow renders one day's window in 12-hour clock form
func dayWindow(day models.DaySchedule) string {
	if !day.IsOpen {
		return "Closed"
	}
	open, err1 := parseClock(day.Open)
	close, err2 := parseClock(day.Close)
	if err1 != nil || err2 != nil {
		return "Closed"
	}
	return formatClock(open) + " - " + formatClock(close)
}

// formatClock renders minutes since midnight as a 12-hour clock string
func formatClock(minutes int) string {
	hour := minutes / 60
	minute := minutes % 60

	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}

	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}
