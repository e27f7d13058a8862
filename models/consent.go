package models

import "time"

// ConsentType identifies what the shopper is consenting to
type ConsentType string

const (
	ConsentCart           ConsentType = "cart"
	ConsentDataCollection ConsentType = "data_collection"
	ConsentMarketing      ConsentType = "marketing"
	ConsentConversation   ConsentType = "conversation"
)

// Consent status values derived from the grant/revoke timestamps
const (
	ConsentPending  = "pending"
	ConsentGranted  = "granted"
	ConsentOptedOut = "opted_out"
)

// ConsentRecord tracks one consent decision per (session, merchant, type).
// Re-granting after a revocation updates the same row; there is never more
// than one record per key.
type ConsentRecord struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	SessionID     string      `gorm:"uniqueIndex:idx_consent_key;not null" json:"session_id"`
	MerchantID    string      `gorm:"uniqueIndex:idx_consent_key;not null" json:"merchant_id"`
	ConsentType   ConsentType `gorm:"uniqueIndex:idx_consent_key;not null" json:"consent_type"`
	GrantedAt     *time.Time  `json:"granted_at,omitempty"`
	RevokedAt     *time.Time  `json:"revoked_at,omitempty"`
	SourceChannel string      `gorm:"default:'whatsapp'" json:"source_channel"`
	MessageShown  bool        `gorm:"default:false" json:"message_shown"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName override for the consent_records table
func (ConsentRecord) TableName() string {
	return "consent_records"
}

// Status derives the record state from the timestamps. A revocation that
// postdates the grant wins; a later re-grant wins back.
func (r *ConsentRecord) Status() string {
	switch {
	case r.RevokedAt != nil && (r.GrantedAt == nil || r.RevokedAt.After(*r.GrantedAt)):
		return ConsentOptedOut
	case r.GrantedAt != nil:
		return ConsentGranted
	default:
		return ConsentPending
	}
}

// IsValid reports whether the record currently authorizes the action
func (r *ConsentRecord) IsValid() bool {
	return r.Status() == ConsentGranted
}

// CanStoreConversation reports whether conversation storage is allowed
// under this record. Only meaningful for ConsentConversation records.
func (r *ConsentRecord) CanStoreConversation() bool {
	return r.ConsentType == ConsentConversation && r.IsValid()
}
