package services

import (
	"testing"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
)

func TestMentionsBot(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"@bot where is my order", true},
		{"hey @bot can you help", true},
		{"HEY @BOT", true},
		{"@bot", true},
		{"(@bot)", true},
		{"email me at robot@bot.com", false},
		{"@bots are cool", false},
		{"something@botanical", false},
		{"no mention here", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionsBot(tt.message))
		})
	}
}

func hybridConv(activatedAt time.Time) *models.Conversation {
	return &models.Conversation{
		ID: "conv-1",
		HybridMode: models.HybridModeState{
			Enabled:     true,
			ActivatedAt: activatedAt.Format(time.RFC3339),
			ExpiresAt:   activatedAt.Add(models.HybridModeWindow).Format(time.RFC3339),
			Reason:      "agent_takeover",
		},
	}
}

func TestShouldBotRespond(t *testing.T) {
	svc := &HybridModeService{}
	activated := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	conv := hybridConv(activated)

	// 90 minutes in: window still active, plain message silenced
	respond, notice := svc.ShouldBotRespond(conv, "where is my order", activated.Add(90*time.Minute))
	assert.False(t, respond)
	assert.Equal(t, HybridModeNotice, notice)

	// Same instant, @bot mention overrides
	respond, _ = svc.ShouldBotRespond(conv, "@bot where is my order", activated.Add(90*time.Minute))
	assert.True(t, respond)

	// 130 minutes in: window expired, plain message answered again
	respond, _ = svc.ShouldBotRespond(conv, "where is my order", activated.Add(130*time.Minute))
	assert.True(t, respond)
}

func TestShouldBotRespond_Disabled(t *testing.T) {
	svc := &HybridModeService{}
	conv := &models.Conversation{ID: "conv-1"}

	respond, notice := svc.ShouldBotRespond(conv, "hello", time.Now())
	assert.True(t, respond)
	assert.Empty(t, notice)
}

func TestShouldBotRespond_UnparseableExpiryFailsOpen(t *testing.T) {
	svc := &HybridModeService{}
	conv := &models.Conversation{
		ID: "conv-1",
		HybridMode: models.HybridModeState{
			Enabled:   true,
			ExpiresAt: "not-a-timestamp",
		},
	}

	respond, _ := svc.ShouldBotRespond(conv, "hello", time.Now())
	assert.True(t, respond, "corrupt expiry must not silence the bot")
}

func TestHybridModeStatus(t *testing.T) {
	svc := &HybridModeService{}
	activated := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	conv := hybridConv(activated)

	enabled, remaining := svc.Status(conv, activated.Add(1*time.Hour))
	assert.True(t, enabled)
	assert.Equal(t, 3600, remaining)

	enabled, remaining = svc.Status(conv, activated.Add(3*time.Hour))
	assert.False(t, enabled)
	assert.Zero(t, remaining)
}
