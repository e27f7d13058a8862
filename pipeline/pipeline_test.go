package pipeline

import (
	"testing"

	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingLookupAnswer(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"bare email", "jane@example.com", true},
		{"email with whitespace", "  jane@example.com ", true},
		{"order number with hash", "#A1234", true},
		{"order number without hash", "ORD-2024-0042", true},
		{"free text", "do you have red shoes?", false},
		{"too short for a number", "#ab", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pendingLookupAnswer(tt.message))
		})
	}
}

// An email sent after the order prompt must reach the order handler even
// though a bare address never classifies as order_tracking on its own.
func TestDispatcherRoutesPendingLookupToOrderHandler(t *testing.T) {
	order := NewOrderHandler(nil, nil)
	d := NewDispatcher(nil, order, nil)

	h := d.HandlerFor(models.IntentOrderTracking)
	assert.Same(t, order, h)
}

// A turn that answers an open question classifies as clarification; its
// progress must not be wiped before the follow-up search uses it.
func TestApplyClarification_ClarificationTurnKeepsState(t *testing.T) {
	p := &Pipeline{clarifier: services.NewClarificationEngine()}
	conv := &models.Conversation{
		Clarification: models.ClarificationState{
			Active:         true,
			AttemptCount:   2,
			QuestionsAsked: []string{"budget", "category"},
		},
	}
	result := &models.ClassificationResult{
		Intent:     models.IntentClarification,
		Confidence: 0.92,
	}

	resp, handled, err := p.applyClarification(result, conv)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Nil(t, resp)

	assert.True(t, conv.Clarification.Active)
	assert.Equal(t, 2, conv.Clarification.AttemptCount)
	assert.Equal(t, []string{"budget", "category"}, conv.Clarification.QuestionsAsked)
}
