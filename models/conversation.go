package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Conversation status values
const (
	ConversationActive  = "active"
	ConversationHandoff = "handoff"
)

// Handoff status values
const (
	HandoffNone    = "none"
	HandoffPending = "pending"
	HandoffActive  = "active"
)

// MaxClarificationAttempts caps how many follow-up questions are asked
// before falling back to assumptions
const MaxClarificationAttempts = 3

// HybridModeWindow is how long the bot stays silent after a human takeover
const HybridModeWindow = 2 * time.Hour

// ClarificationState tracks multi-turn clarification progress for one
// conversation. Stored as a jsonb column, patched as a unit.
type ClarificationState struct {
	Active         bool     `json:"active"`
	AttemptCount   int      `json:"attempt_count"`
	QuestionsAsked []string `json:"questions_asked,omitempty"`
}

// Value implements driver.Valuer for jsonb storage
func (s ClarificationState) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for jsonb storage
func (s *ClarificationState) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Asked reports whether the named constraint was already asked about
func (s *ClarificationState) Asked(constraint string) bool {
	for _, q := range s.QuestionsAsked {
		if q == constraint {
			return true
		}
	}
	return false
}

// RecordQuestion appends constraint to the asked set (no duplicates) and
// bumps the attempt counter
func (s *ClarificationState) RecordQuestion(constraint string) {
	s.Active = true
	s.AttemptCount++
	if !s.Asked(constraint) {
		s.QuestionsAsked = append(s.QuestionsAsked, constraint)
	}
}

// HybridModeState is the time-bounded silence window after a human takes
// over a conversation. Timestamps are stored as RFC3339 strings; an
// unparseable expiry is treated as already expired (fail-open: the shopper
// keeps getting bot replies rather than silence).
type HybridModeState struct {
	Enabled     bool   `json:"enabled"`
	ActivatedAt string `json:"activated_at,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Value implements driver.Valuer for jsonb storage
func (s HybridModeState) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for jsonb storage
func (s *HybridModeState) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Expired reports whether the silence window has lapsed at the given
// instant. Unparseable or missing expiry counts as expired.
func (s *HybridModeState) Expired(now time.Time) bool {
	expires, err := time.Parse(time.RFC3339, s.ExpiresAt)
	if err != nil {
		return true
	}
	return now.After(expires)
}

// RemainingSeconds returns how long the window still has to run, for UI
// display. Zero once expired.
func (s *HybridModeState) RemainingSeconds(now time.Time) int {
	expires, err := time.Parse(time.RFC3339, s.ExpiresAt)
	if err != nil || now.After(expires) {
		return 0
	}
	return int(expires.Sub(now).Seconds())
}

// Conversation is the per-shopper dialogue record. One row per
// (merchant, platform sender); mutated by every gate and handler.
type Conversation struct {
	ID                string `gorm:"primaryKey" json:"id"`
	MerchantID        string `gorm:"index:idx_merchant_session;not null" json:"merchant_id"`
	SessionID         string `gorm:"index:idx_merchant_session;not null" json:"session_id"` // platform sender id
	Platform          string `gorm:"default:'whatsapp'" json:"platform"`
	Status            string `gorm:"index;default:'active'" json:"status"` // active|handoff
	HandoffStatus     string `gorm:"default:'none'" json:"handoff_status"` // none|pending|active
	HandoffReason     string `gorm:"type:text" json:"handoff_reason,omitempty"`
	LastFailureReason string `json:"last_failure_reason,omitempty"` // low_confidence|clarification_loop

	Clarification ClarificationState `gorm:"type:jsonb" json:"clarification"`
	HybridMode    HybridModeState    `gorm:"type:jsonb" json:"hybrid_mode"`

	PendingOrderLookup bool   `gorm:"default:false" json:"pending_order_lookup"`
	PendingConsentType string `json:"pending_consent_type,omitempty"`
	OfflineAlertQueued bool   `gorm:"default:false" json:"offline_alert_queued"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName override for the conversations table
func (Conversation) TableName() string {
	return "conversations"
}

// scanJSON decodes a jsonb column value ([]byte or string) into dest
func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
