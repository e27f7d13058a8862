package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"
)

// generalFallbackReply is used when the LLM is unavailable
const generalFallbackReply = "I'm here to help you shop! You can ask me about products, " +
	"your orders, or anything about the store."

// GeneralHandler covers every intent without a dedicated handler. Product
// searches hit the catalog directly; everything else goes through the LLM
// with the merchant's persona and store context in the system prompt.
type GeneralHandler struct {
	provider services.AIProvider
	catalog  *services.CatalogService
	detector *MentionDetector
}

// NewGeneralHandler creates the handler
func NewGeneralHandler(provider services.AIProvider, catalog *services.CatalogService, detector *MentionDetector) *GeneralHandler {
	return &GeneralHandler{provider: provider, catalog: catalog, detector: detector}
}

// Handle produces the reply for a general-path intent
func (h *GeneralHandler) Handle(ctx context.Context, req *Request) (*models.ConversationResponse, error) {
	switch req.Classification.Intent {
	case models.IntentProductSearch:
		return h.handleProductSearch(req)
	case models.IntentGreeting:
		if req.Merchant.CustomGreeting != "" {
			return &models.ConversationResponse{
				Message:    req.Merchant.CustomGreeting,
				Intent:     models.IntentGreeting,
				Confidence: req.Classification.Confidence,
			}, nil
		}
	}

	return h.handleWithLLM(ctx, req)
}

// handleProductSearch turns extracted entities into a catalog query
func (h *GeneralHandler) handleProductSearch(req *Request) (*models.ConversationResponse, error) {
	entities := req.Classification.Entities

	criteria := services.SearchCriteria{
		Query:    entities.ProductReference,
		Category: entities.Category,
		Brand:    entities.Brand,
		Color:    entities.Color,
		Size:     entities.Size,
		MaxPrice: entities.Budget,
	}
	if sortBy, ok := entities.Constraints["sort_by"].(string); ok {
		criteria.SortBy = sortBy
	}
	if sortOrder, ok := entities.Constraints["sort_order"].(string); ok {
		criteria.SortOrder = sortOrder
	}

	products, err := h.catalog.SearchProducts(req.Merchant.ID, criteria)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	if len(products) == 0 {
		label := entities.Category
		if label == "" {
			label = "that"
		}
		return &models.ConversationResponse{
			Message: fmt.Sprintf("I couldn't find any %s matching what you described. "+
				"Want me to broaden the search, or try a different category?", label),
			Intent:     models.IntentProductSearch,
			Confidence: req.Classification.Confidence,
		}, nil
	}

	if len(products) == 1 {
		return &models.ConversationResponse{
			Message:    "This looks like a match:\n\n" + services.FormatProductCard(products[0]),
			Intent:     models.IntentProductSearch,
			Confidence: req.Classification.Confidence,
			Products:   products,
		}, nil
	}

	lead := "Here's what I found for you:"
	return &models.ConversationResponse{
		Message:    services.FormatProductList(lead, products),
		Intent:     models.IntentProductSearch,
		Confidence: req.Classification.Confidence,
		Products:   products,
	}, nil
}

// handleWithLLM asks the model with full store context
func (h *GeneralHandler) handleWithLLM(ctx context.Context, req *Request) (*models.ConversationResponse, error) {
	systemPrompt := h.buildSystemPrompt(req.Merchant, req.Conversation.SessionID)
	userPrompt := h.buildUserPrompt(req)

	text, _, _, err := h.provider.AskLLM(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("⚠️  [General] LLM unavailable, using fallback reply: %v", err)
		return &models.ConversationResponse{
			Message:    generalFallbackReply,
			Intent:     req.Classification.Intent,
			Confidence: req.Classification.Confidence,
			Metadata:   map[string]interface{}{"fallback": true},
		}, nil
	}

	reply := services.FormatForChannel(text)
	var products []models.Product
	if ShouldDetectMentions(req.Message) {
		products = h.detector.DetectProducts(ctx, req.Merchant.ID, reply)
	}

	return &models.ConversationResponse{
		Message:    reply,
		Intent:     req.Classification.Intent,
		Confidence: req.Classification.Confidence,
		Products:   products,
	}, nil
}

// buildSystemPrompt assembles persona, store facts, hours, catalog
// excerpt, and the sender's recent orders
func (h *GeneralHandler) buildSystemPrompt(merchant *models.Merchant, sessionID string) string {
	var b strings.Builder

	botName := merchant.BotName
	if botName == "" {
		botName = "Assistant"
	}
	b.WriteString(fmt.Sprintf("You are %s, the shopping assistant for %s.\n", botName, merchant.Name))

	if merchant.Personality != "" {
		b.WriteString("Personality: " + merchant.Personality + "\n")
	}
	if merchant.BusinessDescription != "" {
		b.WriteString("About the store: " + merchant.BusinessDescription + "\n")
	}
	if hours := services.FormatBusinessHours(merchant.BusinessHours); hours != "" {
		b.WriteString("Business hours: " + hours + "\n")
	}

	if catalog := h.catalog.CatalogSummary(merchant.ID, 15); catalog != "" {
		b.WriteString("\nCurrent catalog (excerpt):\n")
		b.WriteString(catalog)
	}
	if orders := h.catalog.RecentOrdersSummary(merchant.ID, sessionID, 3); orders != "" {
		b.WriteString("\nThis customer's recent orders:\n")
		b.WriteString(orders)
	}

	b.WriteString("\nKeep replies short and friendly, formatted for a chat app. ")
	b.WriteString("Never invent products, prices, or order details that are not listed above.")

	return b.String()
}

// buildUserPrompt assembles recent turns plus the sanitized message
func (h *GeneralHandler) buildUserPrompt(req *Request) string {
	var b strings.Builder

	history := req.History
	if len(history) > services.MaxClassifierTurns {
		history = history[len(history)-services.MaxClassifierTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, turn := range history {
			role := "Customer"
			if turn.FromBot {
				role = "You"
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", role, turn.Body))
		}
		b.WriteString("\n")
	}

	b.WriteString("Customer: ")
	b.WriteString(services.SanitizeMessage(req.Message))

	return b.String()
}
