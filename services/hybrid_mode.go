package services

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"gorm.io/gorm"
)

// botMentionRe matches @bot as a standalone word, case-insensitive
var botMentionRe = regexp.MustCompile(`(?i)(^|[^a-z0-9_])@bot($|[^a-z0-9_])`)

// HybridModeNotice is returned instead of a bot reply while a human has
// the conversation
const HybridModeNotice = "One of our team members is helping you right now. Mention @bot if you need me in the meantime."

// HybridModeService controls the time-bounded bot silence after a human
// takes over a conversation
type HybridModeService struct {
	db *gorm.DB
}

// NewHybridModeService creates the service
func NewHybridModeService(db *gorm.DB) *HybridModeService {
	return &HybridModeService{db: db}
}

// MentionsBot reports whether the message explicitly summons the bot
func MentionsBot(message string) bool {
	return botMentionRe.MatchString(message)
}

// ShouldBotRespond decides whether the bot answers this message:
//  1. hybrid mode off → respond
//  2. window expired or expiry unparseable → respond (auto-expiry)
//  3. message mentions @bot → respond
//  4. otherwise stay silent and return the fixed notice
//
// The decision is pure; callers clear an expired window via Deactivate.
func (s *HybridModeService) ShouldBotRespond(conv *models.Conversation, message string, now time.Time) (bool, string) {
	state := &conv.HybridMode

	if !state.Enabled {
		return true, ""
	}
	if state.Expired(now) {
		return true, ""
	}
	if MentionsBot(message) {
		return true, ""
	}
	return false, HybridModeNotice
}

// Activate puts the conversation into hybrid mode for the fixed window
func (s *HybridModeService) Activate(conv *models.Conversation, reason string, now time.Time) error {
	conv.HybridMode = models.HybridModeState{
		Enabled:     true,
		ActivatedAt: now.Format(time.RFC3339),
		ExpiresAt:   now.Add(models.HybridModeWindow).Format(time.RFC3339),
		Reason:      reason,
	}
	if err := s.db.Model(conv).Update("hybrid_mode", conv.HybridMode).Error; err != nil {
		return fmt.Errorf("failed to activate hybrid mode: %w", err)
	}
	log.Printf("🤝 Hybrid mode ON for conversation %s (reason: %s, expires: %s)",
		conv.ID, reason, conv.HybridMode.ExpiresAt)
	return nil
}

// Deactivate clears the silence window
func (s *HybridModeService) Deactivate(conv *models.Conversation) error {
	conv.HybridMode.Enabled = false
	if err := s.db.Model(conv).Update("hybrid_mode", conv.HybridMode).Error; err != nil {
		return fmt.Errorf("failed to deactivate hybrid mode: %w", err)
	}
	log.Printf("🤖 Hybrid mode OFF for conversation %s", conv.ID)
	return nil
}

// Status reports the current window for UI display without mutating state
func (s *HybridModeService) Status(conv *models.Conversation, now time.Time) (enabled bool, remainingSeconds int) {
	state := &conv.HybridMode
	if !state.Enabled || state.Expired(now) {
		return false, 0
	}
	return true, state.RemainingSeconds(now)
}
