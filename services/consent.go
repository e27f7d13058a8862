package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"gorm.io/gorm"
)

// affirmativeReplies and negativeReplies are the normalized word sets a
// pending consent prompt is matched against. Anything else is not treated
// as a consent reply.
var affirmativeReplies = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"ok": true, "okay": true, "please": true, "yes please": true,
	"y": true, "alright": true, "fine": true, "go ahead": true,
	"sounds good": true, "of course": true,
}

var negativeReplies = map[string]bool{
	"no": true, "nope": true, "nah": true, "never": true, "n": true,
	"no thanks": true, "no thank you": true, "dont": true, "don't": true,
	"stop": true, "opt out": true,
}

// ConsentCheck is the outcome of gating an intent on consent
type ConsentCheck struct {
	Allowed     bool
	Prompt      string
	ConsentType models.ConsentType
}

// ConsentReply is the interpretation of a message while consent is pending
type ConsentReply struct {
	Handled bool // false: not a consent reply, gate stays pending
	Granted bool
	Reply   string
}

// ConsentService gates intents that require shopper consent and records
// the decisions. Grants are idempotent: one row per
// (session, merchant, type), updated in place.
type ConsentService struct {
	db *gorm.DB
}

// NewConsentService creates the service
func NewConsentService(db *gorm.DB) *ConsentService {
	return &ConsentService{db: db}
}

// consentTypeForIntent maps gated intents to the consent type they need.
// Cart-adjacent intents are enumerated explicitly rather than inheriting
// the cart type by default.
func consentTypeForIntent(intent models.Intent) (models.ConsentType, bool) {
	switch intent {
	case models.IntentCartAdd, models.IntentCheckout:
		return models.ConsentCart, true
	case models.IntentAddLastViewed:
		return models.ConsentDataCollection, true
	default:
		return "", false
	}
}

// InterpretConsentReply normalizes a message and matches it against the
// affirmative and negative word sets.
// Returns (granted, recognized); recognized=false means the message is
// not a consent reply at all.
func InterpretConsentReply(message string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, ".!?,")

	if affirmativeReplies[normalized] {
		return true, true
	}
	if negativeReplies[normalized] {
		return false, true
	}
	return false, false
}

// CheckConsent gates the classified intent. Intents outside the gated set
// pass through with no prompt. For gated intents a missing or revoked
// record produces a blocking prompt and marks the conversation so the
// next message is interpreted as the answer.
func (s *ConsentService) CheckConsent(conv *models.Conversation, intent models.Intent) (*ConsentCheck, error) {
	consentType, gated := consentTypeForIntent(intent)
	if !gated {
		return &ConsentCheck{Allowed: true}, nil
	}

	var record models.ConsentRecord
	err := s.db.Where("session_id = ? AND merchant_id = ? AND consent_type = ?",
		conv.SessionID, conv.MerchantID, consentType).First(&record).Error

	if err == nil && record.IsValid() {
		return &ConsentCheck{Allowed: true, ConsentType: consentType}, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("consent lookup failed: %w", err)
	}

	if err == gorm.ErrRecordNotFound {
		record = models.ConsentRecord{
			SessionID:     conv.SessionID,
			MerchantID:    conv.MerchantID,
			ConsentType:   consentType,
			SourceChannel: conv.Platform,
			MessageShown:  true,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return nil, fmt.Errorf("failed to create pending consent record: %w", err)
		}
	} else if !record.MessageShown {
		s.db.Model(&record).Update("message_shown", true)
	}

	// Mark the conversation so the next message answers this prompt
	conv.PendingConsentType = string(consentType)
	if err := s.db.Model(conv).Update("pending_consent_type", conv.PendingConsentType).Error; err != nil {
		return nil, fmt.Errorf("failed to mark consent pending: %w", err)
	}

	return &ConsentCheck{
		Allowed:     false,
		ConsentType: consentType,
		Prompt:      consentPrompt(consentType),
	}, nil
}

// CheckConsentResponse interprets a message while a consent prompt is
// pending. Unrecognized replies leave the gate pending so the caller can
// retry the original intent once consent context clears.
func (s *ConsentService) CheckConsentResponse(conv *models.Conversation, message string) (*ConsentReply, error) {
	if conv.PendingConsentType == "" {
		return &ConsentReply{Handled: false}, nil
	}

	granted, recognized := InterpretConsentReply(message)
	if !recognized {
		return &ConsentReply{Handled: false}, nil
	}

	consentType := models.ConsentType(conv.PendingConsentType)

	if granted {
		if _, err := s.Grant(conv.SessionID, conv.MerchantID, consentType, conv.Platform); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.Revoke(conv.SessionID, conv.MerchantID, consentType); err != nil {
			return nil, err
		}
	}

	conv.PendingConsentType = ""
	if err := s.db.Model(conv).Update("pending_consent_type", "").Error; err != nil {
		log.Printf("⚠️  Failed to clear pending consent marker: %v", err)
	}

	reply := "No problem, I won't do that. Anything else I can help with?"
	if granted {
		reply = "Great, thanks! Just send your request again and I'll take care of it."
	}

	return &ConsentReply{Handled: true, Granted: granted, Reply: reply}, nil
}

// Grant records consent, updating the existing row when one exists
func (s *ConsentService) Grant(sessionID, merchantID string, consentType models.ConsentType, channel string) (*models.ConsentRecord, error) {
	now := time.Now()

	var record models.ConsentRecord
	err := s.db.Where("session_id = ? AND merchant_id = ? AND consent_type = ?",
		sessionID, merchantID, consentType).First(&record).Error

	if err == gorm.ErrRecordNotFound {
		record = models.ConsentRecord{
			SessionID:     sessionID,
			MerchantID:    merchantID,
			ConsentType:   consentType,
			GrantedAt:     &now,
			SourceChannel: channel,
			MessageShown:  true,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return nil, fmt.Errorf("failed to create consent record: %w", err)
		}
		return &record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consent lookup failed: %w", err)
	}

	record.GrantedAt = &now
	if err := s.db.Model(&record).Updates(map[string]interface{}{
		"granted_at": now,
		"updated_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update consent record: %w", err)
	}

	return &record, nil
}

// Revoke records an opt-out on the existing row, creating one when needed
func (s *ConsentService) Revoke(sessionID, merchantID string, consentType models.ConsentType) (*models.ConsentRecord, error) {
	now := time.Now()

	var record models.ConsentRecord
	err := s.db.Where("session_id = ? AND merchant_id = ? AND consent_type = ?",
		sessionID, merchantID, consentType).First(&record).Error

	if err == gorm.ErrRecordNotFound {
		record = models.ConsentRecord{
			SessionID:   sessionID,
			MerchantID:  merchantID,
			ConsentType: consentType,
			RevokedAt:   &now,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return nil, fmt.Errorf("failed to create consent record: %w", err)
		}
		return &record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consent lookup failed: %w", err)
	}

	record.RevokedAt = &now
	if err := s.db.Model(&record).Updates(map[string]interface{}{
		"revoked_at": now,
		"updated_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update consent record: %w", err)
	}

	return &record, nil
}

// HasAnyConsent reports whether the session holds at least one granted
// consent for this merchant
func (s *ConsentService) HasAnyConsent(sessionID, merchantID string) bool {
	var records []models.ConsentRecord
	if err := s.db.Where("session_id = ? AND merchant_id = ?", sessionID, merchantID).
		Find(&records).Error; err != nil {
		return false
	}
	for i := range records {
		if records[i].IsValid() {
			return true
		}
	}
	return false
}

// consentPrompt is the channel-facing ask per consent type
func consentPrompt(consentType models.ConsentType) string {
	switch consentType {
	case models.ConsentCart:
		return "Before I manage your cart, I need your OK to save your selections on this chat. Is that alright? (yes/no)"
	case models.ConsentMarketing:
		return "Can I occasionally send you offers and updates here? (yes/no)"
	case models.ConsentConversation:
		return "Is it OK if I keep our conversation history so I can help you better next time? (yes/no)"
	default:
		return "To personalize your experience I'd like to remember a few details about what you're shopping for. Is that OK? (yes/no)"
	}
}
