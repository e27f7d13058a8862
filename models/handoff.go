package models

import "time"

// Urgency levels for handoff alerts
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// MaxAlertPreviewLen caps the message excerpt stored on an alert
const MaxAlertPreviewLen = 500

// HandoffAlert is the dashboard notification created exactly once per
// handoff event. Dashboard consumers read and mark it; the core only
// writes it.
type HandoffAlert struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	MerchantID     string    `gorm:"index;not null" json:"merchant_id"`
	ConversationID string    `gorm:"index;not null" json:"conversation_id"`
	UrgencyLevel   string    `gorm:"index;default:'low'" json:"urgency_level"` // low|medium|high
	CustomerName   string    `json:"customer_name,omitempty"`
	CustomerID     string    `json:"customer_id"` // platform sender id
	MessagePreview string    `gorm:"type:text" json:"message_preview"`
	IsOffline      bool      `gorm:"default:false" json:"is_offline"`
	IsRead         bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName override for the handoff_alerts table
func (HandoffAlert) TableName() string {
	return "handoff_alerts"
}

// EmailAlertLog is the last-sent marker backing the per-merchant,
// per-urgency email backoff. One row per (merchant, urgency); status flips
// to queued when an alert fires outside business hours.
type EmailAlertLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MerchantID   string    `gorm:"uniqueIndex:idx_email_alert_key;not null" json:"merchant_id"`
	UrgencyLevel string    `gorm:"uniqueIndex:idx_email_alert_key;not null" json:"urgency_level"`
	Status       string    `gorm:"default:'sent'" json:"status"` // sent|queued
	LastSentAt   time.Time `json:"last_sent_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName override for the email_alert_logs table
func (EmailAlertLog) TableName() string {
	return "email_alert_logs"
}
