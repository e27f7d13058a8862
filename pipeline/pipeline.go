package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pipeline runs one inbound message through the gate sequence:
// consent-reply intercept, hybrid-mode silence, classification,
// clarification, consent gate, then handler dispatch. Messages for the
// same conversation are serialized; different conversations run
// concurrently.
type Pipeline struct {
	db         *gorm.DB
	classifier *services.IntentClassifier
	clarifier  *services.ClarificationEngine
	questions  *services.QuestionGenerator
	consent    *services.ConsentService
	hybrid     *services.HybridModeService
	catalog    *services.CatalogService
	history    *services.ChatHistoryService
	dispatcher *Dispatcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires the pipeline from its services
func New(db *gorm.DB, classifier *services.IntentClassifier, consent *services.ConsentService,
	hybrid *services.HybridModeService, catalog *services.CatalogService,
	history *services.ChatHistoryService, dispatcher *Dispatcher) *Pipeline {
	return &Pipeline{
		db:         db,
		classifier: classifier,
		clarifier:  services.NewClarificationEngine(),
		questions:  services.NewQuestionGenerator(),
		consent:    consent,
		hybrid:     hybrid,
		catalog:    catalog,
		history:    history,
		dispatcher: dispatcher,
		locks:      make(map[string]*sync.Mutex),
	}
}

// conversationLock returns the serialization lock for one conversation
func (p *Pipeline) conversationLock(merchantID, sessionID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := merchantID + "|" + sessionID
	if lock, ok := p.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	p.locks[key] = lock
	return lock
}

// FindOrCreateConversation loads the dialogue record for a sender,
// creating it on first contact
func (p *Pipeline) FindOrCreateConversation(merchantID, sessionID, platform string) (*models.Conversation, error) {
	var conv models.Conversation
	err := p.db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("conversation lookup failed: %w", err)
	}

	conv = models.Conversation{
		ID:         uuid.New().String(),
		MerchantID: merchantID,
		SessionID:  sessionID,
		Platform:   platform,
		Status:     models.ConversationActive,
	}
	if err := p.db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	log.Printf("💬 New conversation %s (merchant: %s, session: %s)", conv.ID, merchantID, sessionID)
	return &conv, nil
}

// Process handles one inbound message end to end. A nil response with a
// nil error means the bot deliberately stays silent.
func (p *Pipeline) Process(ctx context.Context, merchant *models.Merchant, sessionID, senderName, message string) (*models.ConversationResponse, error) {
	lock := p.conversationLock(merchant.ID, sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := p.FindOrCreateConversation(merchant.ID, sessionID, "whatsapp")
	if err != nil {
		return nil, err
	}

	// A consent prompt is waiting for its answer
	if conv.PendingConsentType != "" {
		reply, err := p.consent.CheckConsentResponse(conv, message)
		if err != nil {
			return nil, err
		}
		if reply.Handled {
			return &models.ConversationResponse{
				Message: reply.Reply,
				Intent:  models.IntentGeneral,
				Metadata: map[string]interface{}{
					"consent_granted": reply.Granted,
				},
			}, nil
		}
		// Not a consent answer; carry on, the gate stays pending
	}

	// Hybrid mode: a human has the conversation
	now := time.Now()
	if conv.HybridMode.Enabled && conv.HybridMode.Expired(now) {
		if err := p.hybrid.Deactivate(conv); err != nil {
			log.Printf("⚠️  Failed to clear expired hybrid mode: %v", err)
		}
	}
	if respond, _ := p.hybrid.ShouldBotRespond(conv, message, now); !respond {
		log.Printf("🤫 Bot silent for conversation %s (hybrid mode)", conv.ID)
		return nil, nil
	}

	// A previous turn asked for an order number or email. An answer of
	// either shape goes straight to the order handler; re-classifying a
	// bare email would route it away from the lookup.
	if conv.PendingOrderLookup && pendingLookupAnswer(message) {
		req := &Request{
			Merchant:     merchant,
			Conversation: conv,
			Message:      message,
			SenderName:   senderName,
			Classification: &models.ClassificationResult{
				Intent:     models.IntentOrderTracking,
				Confidence: 1.0,
			},
		}
		return p.dispatcher.HandlerFor(models.IntentOrderTracking).Handle(ctx, req)
	}

	history, err := p.history.RecentTurns(merchant.ID, sessionID, services.MaxClassifierTurns*2)
	if err != nil {
		log.Printf("⚠️  Failed to load history, classifying without it: %v", err)
		history = nil
	}

	result := p.classifier.Classify(ctx, message, history, nil)
	log.Printf("🧠 Classified %q as %s (%.2f)", truncate(message, 60), result.Intent, result.Confidence)

	// The shopper changed the subject instead of answering the order
	// prompt; drop the marker so a later "#ABCD" isn't misread
	if conv.PendingOrderLookup && result.Intent != models.IntentOrderTracking {
		p.clearPendingLookup(conv)
	}

	if resp, handled, err := p.applyClarification(result, conv); err != nil {
		return nil, err
	} else if handled {
		return resp, nil
	}

	p.recordLowConfidence(conv, result)

	check, err := p.consent.CheckConsent(conv, result.Intent)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return &models.ConversationResponse{
			Message:    check.Prompt,
			Intent:     result.Intent,
			Confidence: result.Confidence,
			Metadata: map[string]interface{}{
				"consent_pending": string(check.ConsentType),
			},
		}, nil
	}

	req := &Request{
		Merchant:       merchant,
		Conversation:   conv,
		Message:        message,
		SenderName:     senderName,
		Classification: result,
		History:        history,
	}
	return p.dispatcher.HandlerFor(result.Intent).Handle(ctx, req)
}

// applyClarification runs the product-search clarification gate. handled
// is true when the gate produced the reply itself.
func (p *Pipeline) applyClarification(result *models.ClassificationResult, conv *models.Conversation) (*models.ConversationResponse, bool, error) {
	state := &conv.Clarification

	if !p.clarifier.NeedsClarification(result) {
		// A turn that answers an open question classifies as the
		// clarification intent; its progress must survive until the
		// follow-up search folds the answer in
		if state.Active && result.Intent != models.IntentClarification {
			p.resetClarification(conv)
		}
		return nil, false, nil
	}

	if p.clarifier.ShouldFallbackToAssumptions(state) {
		message, assumed := p.clarifier.GenerateAssumptionMessage(result)

		conv.LastFailureReason = services.FailureClarificationLoop
		if err := p.db.Model(conv).Update("last_failure_reason", conv.LastFailureReason).Error; err != nil {
			log.Printf("⚠️  Failed to record clarification loop: %v", err)
		}
		p.resetClarification(conv)

		criteria := services.SearchCriteria{Category: result.Entities.Category, MaxPrice: result.Entities.Budget}
		products, err := p.catalog.SearchProducts(conv.MerchantID, criteria)
		if err != nil {
			log.Printf("⚠️  Assumption search failed: %v", err)
			products = nil
		}

		return &models.ConversationResponse{
			Message:    message,
			Intent:     models.IntentProductSearch,
			Confidence: result.Confidence,
			Products:   products,
			Metadata:   map[string]interface{}{"assumed": assumed},
		}, true, nil
	}

	question, constraint, err := p.questions.GenerateNextQuestion(result, state.QuestionsAsked)
	if errors.Is(err, services.ErrNoMoreQuestions) {
		// Every constraint is known or asked; let the search proceed
		p.resetClarification(conv)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	state.RecordQuestion(constraint)
	if err := p.db.Model(conv).Update("clarification", conv.Clarification).Error; err != nil {
		return nil, false, fmt.Errorf("failed to persist clarification state: %w", err)
	}

	return &models.ConversationResponse{
		Message:    question,
		Intent:     models.IntentProductSearch,
		Confidence: result.Confidence,
		Metadata: map[string]interface{}{
			"clarifying": constraint,
			"attempt":    state.AttemptCount,
		},
	}, true, nil
}

// pendingLookupAnswer reports whether a message can resolve an
// outstanding email-or-order-number prompt
func pendingLookupAnswer(message string) bool {
	return LooksLikeEmail(message) || LooksLikeOrderNumber(message)
}

// clearPendingLookup drops the order-prompt marker
func (p *Pipeline) clearPendingLookup(conv *models.Conversation) {
	conv.PendingOrderLookup = false
	if err := p.db.Model(conv).Update("pending_order_lookup", false).Error; err != nil {
		log.Printf("⚠️  Failed to clear pending order lookup flag: %v", err)
	}
}

// resetClarification clears the clarification state once resolved
func (p *Pipeline) resetClarification(conv *models.Conversation) {
	conv.Clarification = models.ClarificationState{}
	if err := p.db.Model(conv).Update("clarification", conv.Clarification).Error; err != nil {
		log.Printf("⚠️  Failed to reset clarification state: %v", err)
	}
}

// recordLowConfidence marks the conversation when classification came
// back below threshold, feeding later handoff triage
func (p *Pipeline) recordLowConfidence(conv *models.Conversation, result *models.ClassificationResult) {
	if result.Confidence >= models.ConfidenceThreshold {
		return
	}
	if result.Intent == models.IntentProductSearch {
		return // clarification owns this path
	}
	conv.LastFailureReason = services.FailureLowConfidence
	if err := p.db.Model(conv).Update("last_failure_reason", conv.LastFailureReason).Error; err != nil {
		log.Printf("⚠️  Failed to record low-confidence marker: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
