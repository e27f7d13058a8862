package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/hazlamahedich/shop-sub004/models"
)

// MaxClassifierTurns caps how much history is sent with each
// classification request
const MaxClassifierTurns = 5

// ShoppingContext carries recent browsing signals into classification so
// follow-ups like "the second one" resolve against what was just shown
type ShoppingContext struct {
	RecentProducts []models.Product
	LastQuery      string
	LastCategory   string
}

// injectionPatterns neutralize attempts to override the classifier
// instructions before the raw message reaches the model
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+|the\s+)?(previous|above|prior|earlier)\s+(instructions?|prompts?|messages?|rules?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+|the\s+)?(previous|above|prior|earlier)\s+(instructions?|prompts?|messages?|rules?)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all|your\s+instructions?)`),
	regexp.MustCompile(`(?i)(you\s+are\s+now|act\s+as\s+if|pretend\s+(to\s+be|you\s+are))`),
	regexp.MustCompile(`(?i)system\s+prompt`),
}

// fencedBlockRe extracts the payload from a response wrapped in a
// markdown code fence
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// IntentClassifier turns a free-text shopper message into a structured
// ClassificationResult via an LLM completion. It never returns an error:
// both call failures and undecodable output degrade to the unknown intent
// with zero confidence.
type IntentClassifier struct {
	provider AIProvider
}

// NewIntentClassifier creates a classifier backed by the given provider
func NewIntentClassifier(provider AIProvider) *IntentClassifier {
	return &IntentClassifier{provider: provider}
}

// SanitizeMessage neutralizes instruction-override attempts in the raw
// message before it is sent downstream
func SanitizeMessage(message string) string {
	sanitized := message
	for _, re := range injectionPatterns {
		sanitized = re.ReplaceAllString(sanitized, "[filtered]")
	}
	return sanitized
}

// classifierPayload is the structured output expected from the model
type classifierPayload struct {
	Intent     string                   `json:"intent"`
	Confidence float64                  `json:"confidence"`
	Entities   models.ExtractedEntities `json:"entities"`
	Reasoning  string                   `json:"reasoning"`
}

// Classify sends the message plus recent context to the LLM and decodes
// the result. Failure paths yield intent=unknown with confidence 0.0.
func (c *IntentClassifier) Classify(ctx context.Context, message string, history []models.ChatMessage, shopCtx *ShoppingContext) *models.ClassificationResult {
	systemPrompt := classifierSystemPrompt()
	userPrompt := c.buildUserPrompt(message, history, shopCtx)

	text, _, _, err := c.provider.AskLLM(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("⚠️  [Classifier] LLM call failed, degrading to unknown intent: %v", err)
		return &models.ClassificationResult{
			Intent:     models.IntentUnknown,
			Confidence: 0.0,
			Provider:   "error",
			Reasoning:  fmt.Sprintf("Classification call failed: %v", err),
		}
	}

	result, err := DecodeClassification(text)
	if err != nil {
		log.Printf("⚠️  [Classifier] Undecodable response, degrading to unknown intent: %v", err)
		return &models.ClassificationResult{
			Intent:     models.IntentUnknown,
			Confidence: 0.0,
			Provider:   c.provider.GetProviderName(),
			Model:      c.provider.GetModelName(),
			Reasoning:  fmt.Sprintf("Parse failed: %v", err),
		}
	}

	result.Provider = c.provider.GetProviderName()
	result.Model = c.provider.GetModelName()
	return result
}

// DecodeClassification is the strict decode step for classifier output.
// It tolerates a response wrapped in a fenced code block; anything that
// is not valid structured output is a decode failure, never a panic.
func DecodeClassification(text string) (*models.ClassificationResult, error) {
	payload := strings.TrimSpace(text)
	if m := fencedBlockRe.FindStringSubmatch(payload); m != nil {
		payload = m[1]
	}

	var decoded classifierPayload
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, fmt.Errorf("invalid classification JSON: %w", err)
	}

	intent := models.Intent(decoded.Intent)
	if !intent.IsValid() {
		intent = models.IntentUnknown
	}

	confidence := decoded.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &models.ClassificationResult{
		Intent:     intent,
		Confidence: confidence,
		Entities:   decoded.Entities,
		Reasoning:  decoded.Reasoning,
	}, nil
}

// classifierSystemPrompt describes the intent set, extraction schema, and
// output format for the model
func classifierSystemPrompt() string {
	var b strings.Builder

	b.WriteString("You are an intent classifier for a shopping assistant. ")
	b.WriteString("Classify the customer's message into exactly one intent:\n\n")
	b.WriteString("- product_search: looking for products to buy\n")
	b.WriteString("- product_inquiry: asking about a specific product\n")
	b.WriteString("- product_comparison: comparing two or more products\n")
	b.WriteString("- greeting: hello, hi, good morning\n")
	b.WriteString("- general: questions about the store, policies, anything else\n")
	b.WriteString("- clarification: answering a question the assistant just asked\n")
	b.WriteString("- cart_view: asking what's in the cart\n")
	b.WriteString("- cart_add: asking to add something to the cart\n")
	b.WriteString("- checkout: ready to pay or complete the purchase\n")
	b.WriteString("- order_tracking: asking where an order is\n")
	b.WriteString("- human_handoff: asking for a person, agent, or manager\n")
	b.WriteString("- forget_preferences: asking to delete saved preferences or data\n")
	b.WriteString("- add_last_viewed: asking to save or add the last product shown\n")
	b.WriteString("- unknown: none of the above\n\n")
	b.WriteString("Extract entities when present: category, budget (number), size, color, brand, ")
	b.WriteString("product_reference, order_number, and any extra constraints (sort_by, sort_order, limit).\n\n")
	b.WriteString("Examples:\n")
	b.WriteString(`Message: "show me running shoes under $100"` + "\n")
	b.WriteString(`{"intent":"product_search","confidence":0.95,"entities":{"category":"running shoes","budget":100},"reasoning":"explicit product request with budget"}` + "\n")
	b.WriteString(`Message: "where is my order #A1234"` + "\n")
	b.WriteString(`{"intent":"order_tracking","confidence":0.97,"entities":{"order_number":"A1234"},"reasoning":"order status request"}` + "\n")
	b.WriteString(`Message: "can I talk to a real person"` + "\n")
	b.WriteString(`{"intent":"human_handoff","confidence":0.98,"entities":{},"reasoning":"explicit request for a human"}` + "\n\n")
	b.WriteString("Respond with a single JSON object: ")
	b.WriteString(`{"intent": "...", "confidence": 0.0-1.0, "entities": {...}, "reasoning": "..."}`)

	return b.String()
}

// buildUserPrompt assembles recent turns, shopping context, and the
// sanitized message
func (c *IntentClassifier) buildUserPrompt(message string, history []models.ChatMessage, shopCtx *ShoppingContext) string {
	var b strings.Builder

	if len(history) > 0 {
		start := 0
		if len(history) > MaxClassifierTurns {
			start = len(history) - MaxClassifierTurns
		}
		b.WriteString("Recent conversation:\n")
		for _, turn := range history[start:] {
			role := "Customer"
			if turn.FromBot {
				role = "Assistant"
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", role, turn.Body))
		}
		b.WriteString("\n")
	}

	if shopCtx != nil {
		if len(shopCtx.RecentProducts) > 0 {
			b.WriteString("Recently shown products:\n")
			for _, p := range shopCtx.RecentProducts {
				b.WriteString(fmt.Sprintf("- %s (%s, %.2f %s)\n", p.Title, p.Category, p.Price, p.Currency))
			}
		}
		if shopCtx.LastQuery != "" {
			b.WriteString(fmt.Sprintf("Last search: %s\n", shopCtx.LastQuery))
		}
		if shopCtx.LastCategory != "" {
			b.WriteString(fmt.Sprintf("Last category: %s\n", shopCtx.LastCategory))
		}
		b.WriteString("\n")
	}

	b.WriteString("Message: ")
	b.WriteString(SanitizeMessage(message))

	return b.String()
}
