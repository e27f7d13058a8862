package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineUrgency(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		failureReason string
		withinHours   bool
		want          string
	}{
		{
			name:        "refund during hours is high",
			message:     "I need a refund for my last purchase",
			withinHours: true,
			want:        models.UrgencyHigh,
		},
		{
			name:        "refund outside hours caps at medium",
			message:     "I need a refund for my last purchase",
			withinHours: false,
			want:        models.UrgencyMedium,
		},
		{
			name:        "unauthorized charge during hours is high",
			message:     "There's an unauthorized charge on my card",
			withinHours: true,
			want:        models.UrgencyHigh,
		},
		{
			name:        "shipping question during hours is medium",
			message:     "when does shipping usually take",
			withinHours: true,
			want:        models.UrgencyMedium,
		},
		{
			name:        "shipping question outside hours drops to low",
			message:     "when does shipping usually take",
			withinHours: false,
			want:        models.UrgencyLow,
		},
		{
			name:          "bot failure during hours is medium",
			message:       "just let me talk to someone",
			failureReason: FailureLowConfidence,
			withinHours:   true,
			want:          models.UrgencyMedium,
		},
		{
			name:          "clarification loop outside hours is low",
			message:       "just let me talk to someone",
			failureReason: FailureClarificationLoop,
			withinHours:   false,
			want:          models.UrgencyLow,
		},
		{
			name:        "no keywords during hours is low",
			message:     "can I speak with a person please",
			withinHours: true,
			want:        models.UrgencyLow,
		},
		{
			name:        "no keywords outside hours is low",
			message:     "can I speak with a person please",
			withinHours: false,
			want:        models.UrgencyLow,
		},
		{
			name:        "keyword match is case insensitive",
			message:     "PAYMENT went through twice!",
			withinHours: true,
			want:        models.UrgencyHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineUrgency(tt.message, tt.failureReason, tt.withinHours)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetermineUrgency_HighBeatsFailureReason(t *testing.T) {
	// A money keyword outranks the failure-reason band
	got := DetermineUrgency("the checkout is broken", FailureLowConfidence, true)
	assert.Equal(t, models.UrgencyHigh, got)
}

func TestPreviewText_StripsFormatting(t *testing.T) {
	got := previewText("*Help!* I was **charged twice** for `order 42`")
	assert.Equal(t, "Help! I was charged twice for order 42", got)
}

func TestPreviewText_TruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes that do not divide the cap evenly; a byte-index cut
	// would land mid-rune
	long := strings.Repeat("→", 200)
	require.Greater(t, len(long), models.MaxAlertPreviewLen)

	got := previewText(long)
	assert.LessOrEqual(t, len(got), models.MaxAlertPreviewLen)
	assert.True(t, utf8.ValidString(got))
}

func TestPreviewText_ShortMessageUntouched(t *testing.T) {
	assert.Equal(t, "where is my order", previewText("where is my order"))
}
