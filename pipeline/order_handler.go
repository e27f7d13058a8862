package pipeline

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"

	"gorm.io/gorm"
)

// orderNumberRe accepts 4 to 20 alphanumeric/dash characters, after an
// optional leading '#'
var orderNumberRe = regexp.MustCompile(`^#?[A-Za-z0-9-]{4,20}$`)

// emailRe is a pragmatic email shape check, not full RFC validation
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// OrderHandler answers order-tracking questions. Lookup order: explicit
// order number, then orders placed from this sender, then a prompt whose
// answer (number or email) is resolved on the next turn.
type OrderHandler struct {
	db      *gorm.DB
	catalog *services.CatalogService
}

// NewOrderHandler creates the handler
func NewOrderHandler(db *gorm.DB, catalog *services.CatalogService) *OrderHandler {
	return &OrderHandler{db: db, catalog: catalog}
}

// LooksLikeOrderNumber reports whether text could be an order number
func LooksLikeOrderNumber(text string) bool {
	return orderNumberRe.MatchString(strings.TrimSpace(text))
}

// LooksLikeEmail reports whether text could be an email address
func LooksLikeEmail(text string) bool {
	return emailRe.MatchString(strings.TrimSpace(text))
}

// Handle resolves the order and renders its status
func (h *OrderHandler) Handle(ctx context.Context, req *Request) (*models.ConversationResponse, error) {
	conv := req.Conversation
	merchant := req.Merchant

	// A previous turn asked for an order number or email
	if conv.PendingOrderLookup {
		return h.resolvePendingLookup(req)
	}

	if number := req.Classification.Entities.OrderNumber; number != "" {
		return h.respondForNumber(merchant.ID, conv, number)
	}

	if LooksLikeOrderNumber(req.Message) {
		return h.respondForNumber(merchant.ID, conv, req.Message)
	}

	order, err := h.catalog.LatestOrderBySession(merchant.ID, conv.SessionID)
	if err == nil {
		return h.orderResponse(order, ""), nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}

	// Nothing on file for this sender; ask and remember that we asked
	h.setPendingLookup(conv, true)
	return &models.ConversationResponse{
		Message: "I couldn't find an order linked to this chat. Could you share your order number " +
			"(for example #A1234) or the email you used at checkout?",
		Intent:     models.IntentOrderTracking,
		Confidence: req.Classification.Confidence,
	}, nil
}

// resolvePendingLookup interprets the follow-up answer to an order prompt
func (h *OrderHandler) resolvePendingLookup(req *Request) (*models.ConversationResponse, error) {
	conv := req.Conversation
	merchant := req.Merchant
	answer := strings.TrimSpace(req.Message)

	if LooksLikeEmail(answer) {
		return h.respondForEmail(merchant.ID, conv, answer, req.Classification.Confidence)
	}

	if LooksLikeOrderNumber(answer) {
		return h.respondForNumber(merchant.ID, conv, answer)
	}

	// Not a usable answer; drop the pending marker and decline gracefully
	h.setPendingLookup(conv, false)
	return &models.ConversationResponse{
		Message: "Hmm, that doesn't look like an order number or email I can use. " +
			"If you find your order confirmation, just send me the number and I'll check right away.",
		Intent:     models.IntentOrderTracking,
		Confidence: req.Classification.Confidence,
	}, nil
}

// respondForNumber looks up one order by its number
func (h *OrderHandler) respondForNumber(merchantID string, conv *models.Conversation, number string) (*models.ConversationResponse, error) {
	h.setPendingLookup(conv, false)

	order, err := h.catalog.OrderByNumber(merchantID, number)
	if err == gorm.ErrRecordNotFound {
		return &models.ConversationResponse{
			Message: fmt.Sprintf("I couldn't find an order %s. Double-check the number, "+
				"or send me the email you used at checkout and I'll look it up that way.",
				strings.TrimPrefix(strings.TrimSpace(number), "#")),
			Intent: models.IntentOrderTracking,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}

	return h.orderResponse(order, ""), nil
}

// respondForEmail resolves a customer by email and links this chat to
// their profile so future lookups work without asking again
func (h *OrderHandler) respondForEmail(merchantID string, conv *models.Conversation, email string, confidence float64) (*models.ConversationResponse, error) {
	h.setPendingLookup(conv, false)

	customer, err := h.catalog.CustomerByEmail(merchantID, email)
	if err == gorm.ErrRecordNotFound {
		return &models.ConversationResponse{
			Message: "I couldn't find any orders under that email. " +
				"If you have your order number handy, send it over and I'll check directly.",
			Intent:     models.IntentOrderTracking,
			Confidence: confidence,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}

	if err := h.catalog.LinkSession(customer, conv.SessionID); err != nil {
		log.Printf("⚠️  Failed to link session to customer %d: %v", customer.ID, err)
	}

	order, err := h.catalog.LatestOrderForCustomer(merchantID, customer.ID)
	if err == gorm.ErrRecordNotFound {
		return &models.ConversationResponse{
			Message:    "I found your account, but there are no orders on it yet. Anything I can help you find?",
			Intent:     models.IntentOrderTracking,
			Confidence: confidence,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}

	greeting := ""
	if customer.Name != "" {
		greeting = fmt.Sprintf("Welcome back, %s! ", customer.Name)
	}
	return h.orderResponse(order, greeting), nil
}

// orderResponse renders one order's status
func (h *OrderHandler) orderResponse(order *models.Order, prefix string) *models.ConversationResponse {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(fmt.Sprintf("Here's your order *#%s*:\n", order.OrderNumber))
	b.WriteString(fmt.Sprintf("Status: *%s*\n", order.Status))
	if order.ItemSummary != "" {
		b.WriteString(fmt.Sprintf("Items: %s\n", order.ItemSummary))
	}
	b.WriteString(fmt.Sprintf("Total: %.2f %s", order.Total, order.Currency))
	if order.TrackingURL != "" {
		b.WriteString("\nTrack it here: " + order.TrackingURL)
	}

	return &models.ConversationResponse{
		Message: b.String(),
		Intent:  models.IntentOrderTracking,
		Order:   order,
	}
}

// setPendingLookup persists the pending-order-prompt marker
func (h *OrderHandler) setPendingLookup(conv *models.Conversation, pending bool) {
	if conv.PendingOrderLookup == pending {
		return
	}
	conv.PendingOrderLookup = pending
	if err := h.db.Model(conv).Update("pending_order_lookup", pending).Error; err != nil {
		log.Printf("⚠️  Failed to update pending order lookup flag: %v", err)
	}
}
