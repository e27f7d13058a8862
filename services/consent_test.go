package services

import (
	"testing"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
)

func TestInterpretConsentReply(t *testing.T) {
	tests := []struct {
		message    string
		granted    bool
		recognized bool
	}{
		{"yes", true, true},
		{"Yes", true, true},
		{"  YES  ", true, true},
		{"yes please", true, true},
		{"sure", true, true},
		{"ok", true, true},
		{"okay!", true, true},
		{"y", true, true},
		{"go ahead", true, true},
		{"no", false, true},
		{"No thanks", false, true},
		{"nope.", false, true},
		{"opt out", false, true},
		{"stop", false, true},
		{"what does that mean?", false, false},
		{"show me red shoes", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			granted, recognized := InterpretConsentReply(tt.message)
			assert.Equal(t, tt.recognized, recognized, "recognized")
			if recognized {
				assert.Equal(t, tt.granted, granted, "granted")
			}
		})
	}
}

func TestConsentTypeForIntent(t *testing.T) {
	ct, gated := consentTypeForIntent(models.IntentCartAdd)
	assert.True(t, gated)
	assert.Equal(t, models.ConsentCart, ct)

	ct, gated = consentTypeForIntent(models.IntentCheckout)
	assert.True(t, gated)
	assert.Equal(t, models.ConsentCart, ct)

	ct, gated = consentTypeForIntent(models.IntentAddLastViewed)
	assert.True(t, gated)
	assert.Equal(t, models.ConsentDataCollection, ct)

	for _, intent := range []models.Intent{
		models.IntentProductSearch, models.IntentGreeting, models.IntentGeneral,
		models.IntentOrderTracking, models.IntentHumanHandoff, models.IntentCartView,
	} {
		_, gated := consentTypeForIntent(intent)
		assert.False(t, gated, "intent %s must not be gated", intent)
	}
}
