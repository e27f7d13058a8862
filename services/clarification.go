package services

import (
	"fmt"

	"github.com/hazlamahedich/shop-sub004/models"
)

// ClarificationEngine decides whether a product search needs a follow-up
// question and produces the assumption fallback once the attempt budget is
// spent. Clarification is a product-search-specific behavior, not a
// generic low-confidence handler.
type ClarificationEngine struct{}

// NewClarificationEngine creates the engine
func NewClarificationEngine() *ClarificationEngine {
	return &ClarificationEngine{}
}

// NeedsClarification returns true only for product_search intents whose
// confidence is below the threshold or whose budget/category entity is
// missing. Every other intent passes through regardless of confidence.
func (e *ClarificationEngine) NeedsClarification(result *models.ClassificationResult) bool {
	if result.Intent != models.IntentProductSearch {
		return false
	}
	return result.Confidence < models.ConfidenceThreshold ||
		result.Entities.Budget == nil ||
		result.Entities.Category == ""
}

// ShouldFallbackToAssumptions returns true once the conversation has
// burned through all clarification attempts
func (e *ClarificationEngine) ShouldFallbackToAssumptions(state *models.ClarificationState) bool {
	if state == nil {
		return false
	}
	return state.AttemptCount >= models.MaxClarificationAttempts
}

// GenerateAssumptionMessage builds the "let me just show you something"
// reply used after clarification is exhausted. The assumed map carries
// explicit nils for unresolved fields so downstream search knows no hard
// filter was intended.
func (e *ClarificationEngine) GenerateAssumptionMessage(result *models.ClassificationResult) (string, map[string]interface{}) {
	label := result.Entities.Category
	if label == "" {
		label = "items"
	}

	assumed := map[string]interface{}{
		"category": nil,
		"budget":   nil,
	}
	if result.Entities.Category != "" {
		assumed["category"] = result.Entities.Category
	}
	if result.Entities.Budget != nil {
		assumed["budget"] = *result.Entities.Budget
	}

	message := fmt.Sprintf(
		"No problem - let me just show you some %s I think you'll like. "+
			"Feel free to tell me afterward if you'd like a different price range, brand, or style.",
		label)

	return message, assumed
}
