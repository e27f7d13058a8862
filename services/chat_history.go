package services

import (
	"fmt"
	"log"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxMessagesPerContact caps stored history per (merchant, session) pair.
// Older rows are trimmed after each save.
const MaxMessagesPerContact = 20

// ChatHistoryService persists conversation turns and serves them back for
// prompt construction
type ChatHistoryService struct {
	db *gorm.DB
}

// NewChatHistoryService creates the service
func NewChatHistoryService(db *gorm.DB) *ChatHistoryService {
	return &ChatHistoryService{db: db}
}

// SaveIncomingMessage stores a shopper message. Duplicate platform message
// ids are skipped so webhook redeliveries stay idempotent. Returns true
// when the row was actually inserted.
func (s *ChatHistoryService) SaveIncomingMessage(merchantID, sessionID, messageID, body, senderName string, ts time.Time) (bool, error) {
	if messageID == "" {
		messageID = uuid.New().String()
	}

	var existing models.ChatMessage
	err := s.db.Where("message_id = ?", messageID).First(&existing).Error
	if err == nil {
		log.Printf("📨 Skipping duplicate message %s", messageID)
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, fmt.Errorf("failed to check for duplicate message: %w", err)
	}

	msg := models.ChatMessage{
		MessageID:  messageID,
		MerchantID: merchantID,
		SessionID:  sessionID,
		FromBot:    false,
		Body:       body,
		SenderName: senderName,
		Timestamp:  ts,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return false, fmt.Errorf("failed to save incoming message: %w", err)
	}

	s.CleanupOldMessages(merchantID, sessionID)
	return true, nil
}

// SaveOutgoingMessage stores a bot reply with a generated message id
func (s *ChatHistoryService) SaveOutgoingMessage(merchantID, sessionID, body string) error {
	msg := models.ChatMessage{
		MessageID:  "bot-" + uuid.New().String(),
		MerchantID: merchantID,
		SessionID:  sessionID,
		FromBot:    true,
		Body:       body,
		Timestamp:  time.Now(),
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to save outgoing message: %w", err)
	}

	s.CleanupOldMessages(merchantID, sessionID)
	return nil
}

// CleanupOldMessages trims history beyond MaxMessagesPerContact for one
// contact. Errors are logged, not returned, since trimming is best effort.
func (s *ChatHistoryService) CleanupOldMessages(merchantID, sessionID string) {
	var count int64
	if err := s.db.Model(&models.ChatMessage{}).
		Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		Count(&count).Error; err != nil {
		log.Printf("⚠️ Failed to count chat history for %s: %v", sessionID, err)
		return
	}
	if count <= MaxMessagesPerContact {
		return
	}

	excess := count - MaxMessagesPerContact
	var stale []models.ChatMessage
	if err := s.db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		Order("timestamp ASC").Limit(int(excess)).Find(&stale).Error; err != nil {
		log.Printf("⚠️ Failed to find stale chat history for %s: %v", sessionID, err)
		return
	}

	ids := make([]uint, 0, len(stale))
	for _, m := range stale {
		ids = append(ids, m.ID)
	}
	if len(ids) > 0 {
		if err := s.db.Delete(&models.ChatMessage{}, ids).Error; err != nil {
			log.Printf("⚠️ Failed to trim chat history for %s: %v", sessionID, err)
		}
	}
}

// RecentTurns returns the last n turns for a contact in chronological
// order
func (s *ChatHistoryService) RecentTurns(merchantID, sessionID string, n int) ([]models.ChatMessage, error) {
	if n <= 0 {
		n = MaxMessagesPerContact
	}

	var messages []models.ChatMessage
	if err := s.db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		Order("timestamp DESC").Limit(n).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	// reverse into ascending order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
