package services

import (
	"testing"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayConfig() *models.BusinessHoursConfig {
	return &models.BusinessHoursConfig{
		Timezone: "UTC",
		Days: map[string]models.DaySchedule{
			"monday":    {IsOpen: true, Open: "09:00", Close: "17:00"},
			"tuesday":   {IsOpen: true, Open: "09:00", Close: "17:00"},
			"wednesday": {IsOpen: true, Open: "09:00", Close: "17:00"},
			"thursday":  {IsOpen: true, Open: "09:00", Close: "17:00"},
			"friday":    {IsOpen: true, Open: "09:00", Close: "17:00"},
			"saturday":  {IsOpen: true, Open: "10:00", Close: "14:00"},
			"sunday":    {IsOpen: false},
		},
	}
}

func TestIsWithinBusinessHours(t *testing.T) {
	cfg := weekdayConfig()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday mid-morning", time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC), true},
		{"monday before open", time.Date(2026, 8, 24, 8, 59, 0, 0, time.UTC), false},
		{"monday at open", time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC), true},
		{"monday at close", time.Date(2026, 8, 24, 17, 0, 0, 0, time.UTC), true},
		{"monday after close", time.Date(2026, 8, 24, 17, 1, 0, 0, time.UTC), false},
		{"saturday short window", time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC), true},
		{"sunday closed", time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinBusinessHours(cfg, tt.at))
		})
	}
}

func TestIsWithinBusinessHours_NilConfigAlwaysOpen(t *testing.T) {
	assert.True(t, IsWithinBusinessHours(nil, time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)))
	assert.True(t, IsWithinBusinessHours(&models.BusinessHoursConfig{}, time.Now()))
}

func TestIsWithinBusinessHours_OvernightWindow(t *testing.T) {
	// Bar hours: open evenings, closing after midnight
	cfg := &models.BusinessHoursConfig{
		Timezone: "UTC",
		Days: map[string]models.DaySchedule{
			"friday": {IsOpen: true, Open: "18:00", Close: "02:00"},
		},
	}

	// 2026-08-28 is a Friday
	assert.True(t, IsWithinBusinessHours(cfg, time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC)), "friday evening")
	assert.False(t, IsWithinBusinessHours(cfg, time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)), "friday noon")

	// Early Saturday morning is still Friday's window
	assert.True(t, IsWithinBusinessHours(cfg, time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)), "saturday 1am carryover")
	assert.False(t, IsWithinBusinessHours(cfg, time.Date(2026, 8, 29, 3, 0, 0, 0, time.UTC)), "saturday 3am closed")
}

func TestFormatBusinessHours(t *testing.T) {
	got := FormatBusinessHours(weekdayConfig())
	assert.Equal(t, "Mon-Fri: 9:00 AM - 5:00 PM; Sat: 10:00 AM - 2:00 PM; Sun: Closed", got)
}

func TestFormatBusinessHours_NilConfig(t *testing.T) {
	assert.Equal(t, "Open 24/7", FormatBusinessHours(nil))
}

func TestNextOpenTime(t *testing.T) {
	cfg := weekdayConfig()

	// Sunday afternoon → Monday 9:00
	from := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	next := NextOpenTime(cfg, from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), next.UTC())

	// Monday during hours → Tuesday 9:00 (strictly after from)
	from = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	next = NextOpenTime(cfg, from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC), next.UTC())

	// Monday before opening → same day 9:00
	from = time.Date(2026, 8, 24, 7, 0, 0, 0, time.UTC)
	next = NextOpenTime(cfg, from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC), next.UTC())
}

func TestNextOpenTime_NoOpenDays(t *testing.T) {
	cfg := &models.BusinessHoursConfig{
		Timezone: "UTC",
		Days:     map[string]models.DaySchedule{"monday": {IsOpen: false}},
	}
	assert.Nil(t, NextOpenTime(cfg, time.Now()))
	assert.Nil(t, NextOpenTime(nil, time.Now()))
}

func TestParseClock(t *testing.T) {
	m, err := parseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = parseClock("25:00")
	assert.Error(t, err)
	_, err = parseClock("nine")
	assert.Error(t, err)
}
