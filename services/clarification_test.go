package services

import (
	"testing"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestNeedsClarification(t *testing.T) {
	engine := NewClarificationEngine()

	tests := []struct {
		name   string
		result models.ClassificationResult
		want   bool
	}{
		{
			name: "complete high-confidence search passes",
			result: models.ClassificationResult{
				Intent:     models.IntentProductSearch,
				Confidence: 0.92,
				Entities:   models.ExtractedEntities{Category: "shoes", Budget: floatPtr(100)},
			},
			want: false,
		},
		{
			name: "low confidence search needs a question",
			result: models.ClassificationResult{
				Intent:     models.IntentProductSearch,
				Confidence: 0.55,
				Entities:   models.ExtractedEntities{Category: "shoes", Budget: floatPtr(100)},
			},
			want: true,
		},
		{
			name: "missing budget needs a question",
			result: models.ClassificationResult{
				Intent:     models.IntentProductSearch,
				Confidence: 0.95,
				Entities:   models.ExtractedEntities{Category: "shoes"},
			},
			want: true,
		},
		{
			name: "missing category needs a question",
			result: models.ClassificationResult{
				Intent:     models.IntentProductSearch,
				Confidence: 0.95,
				Entities:   models.ExtractedEntities{Budget: floatPtr(50)},
			},
			want: true,
		},
		{
			name: "low confidence greeting passes through",
			result: models.ClassificationResult{
				Intent:     models.IntentGreeting,
				Confidence: 0.40,
			},
			want: false,
		},
		{
			name: "unknown intent never clarifies",
			result: models.ClassificationResult{
				Intent:     models.IntentUnknown,
				Confidence: 0.0,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.NeedsClarification(&tt.result))
		})
	}
}

func TestShouldFallbackToAssumptions(t *testing.T) {
	engine := NewClarificationEngine()

	assert.False(t, engine.ShouldFallbackToAssumptions(nil))
	assert.False(t, engine.ShouldFallbackToAssumptions(&models.ClarificationState{AttemptCount: 0}))
	assert.False(t, engine.ShouldFallbackToAssumptions(&models.ClarificationState{AttemptCount: 2}))
	assert.True(t, engine.ShouldFallbackToAssumptions(&models.ClarificationState{AttemptCount: 3}))
	assert.True(t, engine.ShouldFallbackToAssumptions(&models.ClarificationState{AttemptCount: 4}))
}

func TestGenerateAssumptionMessage(t *testing.T) {
	engine := NewClarificationEngine()

	result := models.ClassificationResult{
		Intent:   models.IntentProductSearch,
		Entities: models.ExtractedEntities{Category: "sneakers"},
	}
	message, assumed := engine.GenerateAssumptionMessage(&result)

	assert.Contains(t, message, "sneakers")
	assert.Equal(t, "sneakers", assumed["category"])
	// Unresolved budget stays an explicit nil so search applies no filter
	budget, ok := assumed["budget"]
	assert.True(t, ok)
	assert.Nil(t, budget)
}

func TestGenerateAssumptionMessage_NoEntities(t *testing.T) {
	engine := NewClarificationEngine()

	message, assumed := engine.GenerateAssumptionMessage(&models.ClassificationResult{
		Intent: models.IntentProductSearch,
	})

	assert.Contains(t, message, "items")
	assert.Nil(t, assumed["category"])
	assert.Nil(t, assumed["budget"])
}
