package services

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handoff failure reasons carried on the conversation and consulted by
// triage
const (
	FailureLowConfidence     = "low_confidence"
	FailureClarificationLoop = "clarification_loop"
)

// highPriorityKeywords flag money-adjacent problems that need immediate
// attention while someone is around to act
var highPriorityKeywords = []string{
	"checkout", "payment", "charged", "refund", "billing",
	"fraud", "stolen", "unauthorized", "dispute", "chargeback",
	"double charge", "can't pay", "cannot pay",
}

// mediumPriorityKeywords flag routine but time-sensitive topics
var mediumPriorityKeywords = []string{
	"order", "shipping", "tracking", "delivery", "account",
	"login", "password", "return", "exchange", "cancel",
}

// DetermineUrgency assigns the triage severity for a handoff. Business
// hours are resolved first by the caller: outside-hours handoffs are
// capped at medium, since no one is available to act immediately.
func DetermineUrgency(message, failureReason string, withinHours bool) string {
	lower := strings.ToLower(message)

	for _, kw := range highPriorityKeywords {
		if strings.Contains(lower, kw) {
			if withinHours {
				return models.UrgencyHigh
			}
			return models.UrgencyMedium
		}
	}

	if failureReason == FailureLowConfidence || failureReason == FailureClarificationLoop {
		if withinHours {
			return models.UrgencyMedium
		}
		return models.UrgencyLow
	}

	for _, kw := range mediumPriorityKeywords {
		if strings.Contains(lower, kw) {
			if withinHours {
				return models.UrgencyMedium
			}
			return models.UrgencyLow
		}
	}

	return models.UrgencyLow
}

// previewText builds the message excerpt stored on an alert: formatting
// stripped, truncated on a rune boundary so the row stays valid UTF-8
func previewText(message string) string {
	preview := StripMarkdown(message)
	if len(preview) <= models.MaxAlertPreviewLen {
		return preview
	}
	cut := models.MaxAlertPreviewLen
	for cut > 0 && !utf8.RuneStart(preview[cut]) {
		cut--
	}
	return preview[:cut]
}

// HandoffService persists handoff alerts and triggers notification
// dispatch. Every failure here is logged and swallowed: the shopper's
// reply is never blocked on alerting.
type HandoffService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewHandoffService creates the service
func NewHandoffService(db *gorm.DB, notifier *Notifier) *HandoffService {
	return &HandoffService{db: db, notifier: notifier}
}

// CreateAlert records exactly one HandoffAlert for a triggering handoff
// event and dispatches notifications.
func (s *HandoffService) CreateAlert(merchant *models.Merchant, conv *models.Conversation, message, customerName string) (*models.HandoffAlert, error) {
	now := time.Now()
	within := IsWithinBusinessHours(merchant.BusinessHours, now)
	urgency := DetermineUrgency(message, conv.LastFailureReason, within)

	alert := &models.HandoffAlert{
		ID:             uuid.New().String(),
		MerchantID:     merchant.ID,
		ConversationID: conv.ID,
		UrgencyLevel:   urgency,
		CustomerName:   customerName,
		CustomerID:     conv.SessionID,
		MessagePreview: previewText(message),
		IsOffline:      !within,
		CreatedAt:      now,
	}

	if err := s.db.Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to persist handoff alert: %w", err)
	}

	log.Printf("🚨 Handoff alert %s created (merchant: %s, urgency: %s, offline: %v)",
		alert.ID, merchant.ID, urgency, alert.IsOffline)

	// Dashboard consumers read the alert row directly; email dispatch is
	// rate-limited and queued outside business hours.
	s.notifier.Dispatch(merchant, conv, alert)

	return alert, nil
}
