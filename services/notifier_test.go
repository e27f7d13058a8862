package services

import (
	"testing"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
)

func TestReadyToFlush(t *testing.T) {
	monday := time.Date(2026, 8, 24, 11, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)

	merchant := &models.Merchant{
		NotificationEmail: "owner@example.com",
		BusinessHours:     weekdayConfig(),
	}
	queued := &models.EmailAlertLog{Status: "queued", UrgencyLevel: models.UrgencyHigh}

	tests := []struct {
		name     string
		marker   *models.EmailAlertLog
		merchant *models.Merchant
		at       time.Time
		want     bool
	}{
		{"queued and open", queued, merchant, monday, true},
		{"still closed", queued, merchant, sunday, false},
		{"already sent", &models.EmailAlertLog{Status: "sent"}, merchant, monday, false},
		{"no email configured", queued, &models.Merchant{BusinessHours: weekdayConfig()}, monday, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readyToFlush(tt.marker, tt.merchant, tt.at))
		})
	}
}
