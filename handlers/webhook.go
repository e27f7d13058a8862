package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hazlamahedich/shop-sub004/database"
	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"

	"github.com/gin-gonic/gin"
)

// WebhookPayload is the inbound message event from the channel gateway
type WebhookPayload struct {
	InstanceName string `json:"instanceName"` // channel token
	Event        struct {
		Info struct {
			ID        string    `json:"ID"`
			Sender    string    `json:"Sender"`
			Chat      string    `json:"Chat"`
			Type      string    `json:"Type"`
			PushName  string    `json:"PushName"`
			Timestamp time.Time `json:"Timestamp"`
			IsFromMe  bool      `json:"IsFromMe"`
		} `json:"Info"`
		Message struct {
			ExtendedTextMessage struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
			Conversation string `json:"conversation"`
		} `json:"Message"`
	} `json:"event"`
}

// cleanJID removes the device suffix from a platform JID
// Example: "6281233784490:24@s.whatsapp.net" → "6281233784490@s.whatsapp.net"
func cleanJID(jid string) string {
	if strings.Contains(jid, ":") {
		parts := strings.Split(jid, ":")
		if len(parts) >= 2 {
			phonePart := parts[0]
			domainPart := parts[len(parts)-1]
			if strings.Contains(domainPart, "@") {
				domain := domainPart[strings.Index(domainPart, "@"):]
				return phonePart + domain
			}
		}
	}
	return jid
}

// WebhookHandler accepts inbound shopper messages and enqueues them for
// pipeline processing
type WebhookHandler struct {
	resolver *services.MerchantResolver
	history  *services.ChatHistoryService
}

// NewWebhookHandler creates the handler
func NewWebhookHandler(resolver *services.MerchantResolver, history *services.ChatHistoryService) *WebhookHandler {
	return &WebhookHandler{resolver: resolver, history: history}
}

// HandleInbound processes one webhook delivery. Work beyond validation
// and persistence happens in the worker; the webhook answers fast.
func (h *WebhookHandler) HandleInbound(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Invalid webhook payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	channelToken := payload.InstanceName
	messageID := payload.Event.Info.ID
	from := cleanJID(payload.Event.Info.Sender)
	msgType := payload.Event.Info.Type
	pushName := payload.Event.Info.PushName
	timestamp := payload.Event.Info.Timestamp

	log.Printf("📨 Webhook received: token=%s, from=%s, type=%s", channelToken, from, msgType)

	if payload.Event.Info.IsFromMe {
		c.JSON(http.StatusOK, gin.H{"message": "Skipped: own message"})
		return
	}

	var body string
	if payload.Event.Message.ExtendedTextMessage.Text != "" {
		body = payload.Event.Message.ExtendedTextMessage.Text
	} else {
		body = payload.Event.Message.Conversation
	}

	if msgType != "text" || strings.TrimSpace(body) == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Non-text message ignored"})
		return
	}

	merchant, err := h.resolver.ResolveByChannelToken(channelToken)
	if err != nil {
		log.Printf("Failed to resolve channel token: %v", err)
		c.JSON(http.StatusOK, gin.H{"message": "Unknown channel", "error": err.Error()})
		return
	}

	sessionID := strings.Split(from, "@")[0]

	inserted, err := h.history.SaveIncomingMessage(merchant.ID, sessionID, messageID, body, pushName, timestamp)
	if err != nil {
		log.Printf("Failed to save chat message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}
	if !inserted {
		c.JSON(http.StatusOK, gin.H{"message": "Duplicate message"})
		return
	}

	db := database.GetDB()
	job := models.ConversationJob{
		Status:     "pending",
		Priority:   5,
		MerchantID: merchant.ID,
		SessionID:  sessionID,
		MessageID:  messageID,
	}
	if err := db.Create(&job).Error; err != nil {
		log.Printf("Failed to enqueue conversation job: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue job"})
		return
	}

	// NOTIFY trigger fires automatically on insert
	log.Printf("✅ Job #%d queued (merchant: %s, message: %s)", job.ID, merchant.ID, messageID)

	c.JSON(http.StatusOK, gin.H{
		"status":     "queued",
		"message_id": messageID,
		"job_id":     job.ID,
	})
}
