package pipeline

import (
	"context"

	"github.com/hazlamahedich/shop-sub004/models"
)

// Request carries everything a handler needs for one inbound message
type Request struct {
	Merchant       *models.Merchant
	Conversation   *models.Conversation
	Message        string
	SenderName     string
	Classification *models.ClassificationResult
	History        []models.ChatMessage
}

// Handler produces the reply for one classified message
type Handler interface {
	Handle(ctx context.Context, req *Request) (*models.ConversationResponse, error)
}

// Dispatcher routes a classified intent to its handler. The table is
// closed: every intent resolves to exactly one handler, with the general
// handler as the explicit default.
type Dispatcher struct {
	handoff *HandoffHandler
	order   *OrderHandler
	general *GeneralHandler
}

// NewDispatcher builds the routing table
func NewDispatcher(handoff *HandoffHandler, order *OrderHandler, general *GeneralHandler) *Dispatcher {
	return &Dispatcher{handoff: handoff, order: order, general: general}
}

// HandlerFor resolves the handler for an intent
func (d *Dispatcher) HandlerFor(intent models.Intent) Handler {
	switch intent {
	case models.IntentHumanHandoff:
		return d.handoff
	case models.IntentOrderTracking:
		return d.order
	default:
		return d.general
	}
}
