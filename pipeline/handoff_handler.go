package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"

	"gorm.io/gorm"
)

// HandoffHandler moves a conversation to a human: it flips the
// conversation status, raises an alert for the merchant, and puts the bot
// into hybrid mode so it stays out of the way.
type HandoffHandler struct {
	db      *gorm.DB
	handoff *services.HandoffService
	hybrid  *services.HybridModeService
}

// NewHandoffHandler creates the handler
func NewHandoffHandler(db *gorm.DB, handoff *services.HandoffService, hybrid *services.HybridModeService) *HandoffHandler {
	return &HandoffHandler{db: db, handoff: handoff, hybrid: hybrid}
}

// Handle acknowledges the handoff to the shopper and kicks off alerting.
// Repeated handoff requests on an already-pending conversation do not
// re-raise the alert.
func (h *HandoffHandler) Handle(ctx context.Context, req *Request) (*models.ConversationResponse, error) {
	conv := req.Conversation
	merchant := req.Merchant
	now := time.Now()
	within := services.IsWithinBusinessHours(merchant.BusinessHours, now)

	alreadyPending := conv.Status == models.ConversationHandoff &&
		conv.HandoffStatus != models.HandoffNone

	if !alreadyPending {
		conv.Status = models.ConversationHandoff
		conv.HandoffStatus = models.HandoffPending
		conv.HandoffReason = req.Message
		if err := h.db.Model(conv).Updates(map[string]interface{}{
			"status":         conv.Status,
			"handoff_status": conv.HandoffStatus,
			"handoff_reason": conv.HandoffReason,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to mark conversation for handoff: %w", err)
		}

		if err := h.hybrid.Activate(conv, "human_handoff", now); err != nil {
			log.Printf("⚠️  Failed to activate hybrid mode on handoff: %v", err)
		}

		// Alerting must never delay the shopper's acknowledgement
		go func(m models.Merchant, c models.Conversation, msg, name string) {
			if _, err := h.handoff.CreateAlert(&m, &c, msg, name); err != nil {
				log.Printf("⚠️  Failed to create handoff alert: %v", err)
			}
		}(*merchant, *conv, req.Message, req.SenderName)
	}

	return &models.ConversationResponse{
		Message:    h.acknowledgement(merchant, within, now),
		Intent:     models.IntentHumanHandoff,
		Confidence: req.Classification.Confidence,
		Metadata: map[string]interface{}{
			"handoff_status": conv.HandoffStatus,
			"within_hours":   within,
		},
	}, nil
}

// acknowledgement picks the reply template by availability
func (h *HandoffHandler) acknowledgement(merchant *models.Merchant, within bool, now time.Time) string {
	if within {
		return "Of course! I'm connecting you with our team now. Someone will be with you shortly."
	}

	msg := "I've let our team know you'd like to talk to someone. We're currently outside business hours, so there may be a delay."

	if hours := services.FormatBusinessHours(merchant.BusinessHours); hours != "" {
		msg += fmt.Sprintf("\n\nOur hours: %s", hours)
	}
	if next := services.NextOpenTime(merchant.BusinessHours, now); next != nil {
		msg += fmt.Sprintf("\nWe'll be back %s.", next.Format("Monday at 3:04 PM"))
	}
	msg += "\n\nIn the meantime, I'm happy to keep helping. Mention @bot anytime."

	return msg
}
