package models

// Intent is the classified purpose of a shopper message
type Intent string

const (
	IntentProductSearch     Intent = "product_search"
	IntentProductInquiry    Intent = "product_inquiry"
	IntentProductComparison Intent = "product_comparison"
	IntentGreeting          Intent = "greeting"
	IntentGeneral           Intent = "general"
	IntentClarification     Intent = "clarification"
	IntentCartView          Intent = "cart_view"
	IntentCartAdd           Intent = "cart_add"
	IntentCheckout          Intent = "checkout"
	IntentOrderTracking     Intent = "order_tracking"
	IntentHumanHandoff      Intent = "human_handoff"
	IntentForgetPreferences Intent = "forget_preferences"
	IntentAddLastViewed     Intent = "add_last_viewed"
	IntentUnknown           Intent = "unknown"
)

// AllIntents lists every intent the classifier may emit
var AllIntents = []Intent{
	IntentProductSearch,
	IntentProductInquiry,
	IntentProductComparison,
	IntentGreeting,
	IntentGeneral,
	IntentClarification,
	IntentCartView,
	IntentCartAdd,
	IntentCheckout,
	IntentOrderTracking,
	IntentHumanHandoff,
	IntentForgetPreferences,
	IntentAddLastViewed,
	IntentUnknown,
}

// IsValid reports whether i is one of the known intents
func (i Intent) IsValid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// ConfidenceThreshold is the minimum classifier confidence before a
// follow-up question is considered
const ConfidenceThreshold = 0.80

// ExtractedEntities holds structured values pulled out of free text
type ExtractedEntities struct {
	Category         string                 `json:"category,omitempty"`
	Budget           *float64               `json:"budget,omitempty"`
	Size             string                 `json:"size,omitempty"`
	Color            string                 `json:"color,omitempty"`
	Brand            string                 `json:"brand,omitempty"`
	ProductReference string                 `json:"product_reference,omitempty"`
	OrderNumber      string                 `json:"order_number,omitempty"`
	Constraints      map[string]interface{} `json:"constraints,omitempty"`
}

// ClassificationResult is the structured outcome of intent classification.
// Confidence is always in [0,1]; failure paths yield IntentUnknown with 0.0.
type ClassificationResult struct {
	Intent     Intent            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   ExtractedEntities `json:"entities"`
	Reasoning  string            `json:"reasoning,omitempty"`
	Provider   string            `json:"provider,omitempty"`
	Model      string            `json:"model,omitempty"`
}

// NeedsClarification reports whether the raw confidence fell below the
// threshold. This is a hint on the result; the clarification engine makes
// the final decision (it also considers intent and missing entities).
func (r *ClassificationResult) NeedsClarification() bool {
	return r.Confidence < ConfidenceThreshold
}

// ConversationResponse is the single reply produced for one inbound message
type ConversationResponse struct {
	Message    string                 `json:"message"`
	Intent     Intent                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Products   []Product              `json:"products,omitempty"`
	Order      *Order                 `json:"order,omitempty"`
}
