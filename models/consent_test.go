package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsentRecordStatus(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-1 * time.Hour)

	tests := []struct {
		name      string
		grantedAt *time.Time
		revokedAt *time.Time
		want      string
	}{
		{"fresh record is pending", nil, nil, ConsentPending},
		{"granted", &now, nil, ConsentGranted},
		{"revoked only", nil, &now, ConsentOptedOut},
		{"revoke after grant wins", &earlier, &now, ConsentOptedOut},
		{"re-grant after revoke wins back", &now, &earlier, ConsentGranted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := ConsentRecord{GrantedAt: tt.grantedAt, RevokedAt: tt.revokedAt}
			assert.Equal(t, tt.want, record.Status())
			assert.Equal(t, tt.want == ConsentGranted, record.IsValid())
		})
	}
}

func TestCanStoreConversation(t *testing.T) {
	now := time.Now()

	record := ConsentRecord{ConsentType: ConsentConversation, GrantedAt: &now}
	assert.True(t, record.CanStoreConversation())

	revoked := now.Add(time.Minute)
	record.RevokedAt = &revoked
	assert.False(t, record.CanStoreConversation())

	other := ConsentRecord{ConsentType: ConsentCart, GrantedAt: &now}
	assert.False(t, other.CanStoreConversation())
}
