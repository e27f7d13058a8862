package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"

	"gorm.io/gorm"
)

// EmailBackoffWindow caps alert emails to one per urgency level per
// merchant within this window
const EmailBackoffWindow = 24 * time.Hour

// queueDrainInterval is how often queued offline alerts are re-checked
// against business hours
const queueDrainInterval = 5 * time.Minute

// Notifier decides whether and how to notify a merchant about a handoff
// alert. The dashboard feed is the alert row itself; email has backoff
// and offline-queuing rules. Every failure is logged and swallowed.
type Notifier struct {
	db *gorm.DB
}

// NewNotifier creates the notifier
func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Dispatch applies the email notification rules for one alert:
//   - no notification email configured → dashboard only
//   - an email for this (merchant, urgency) went out within the backoff
//     window → skip
//   - alert fired outside business hours → queue instead of send, guarded
//     by the conversation's idempotency flag
func (n *Notifier) Dispatch(merchant *models.Merchant, conv *models.Conversation, alert *models.HandoffAlert) {
	if merchant.NotificationEmail == "" {
		return
	}

	var marker models.EmailAlertLog
	err := n.db.Where("merchant_id = ? AND urgency_level = ?", merchant.ID, alert.UrgencyLevel).
		First(&marker).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		log.Printf("⚠️  [Notifier] Email marker lookup failed: %v", err)
		return
	}

	if err == nil && marker.Status == "sent" && time.Since(marker.LastSentAt) < EmailBackoffWindow {
		log.Printf("[Notifier] Email suppressed by backoff (merchant: %s, urgency: %s)",
			merchant.ID, alert.UrgencyLevel)
		return
	}

	if alert.IsOffline {
		if conv.OfflineAlertQueued {
			return // already queued for this conversation
		}
		conv.OfflineAlertQueued = true
		if err := n.db.Model(conv).Update("offline_alert_queued", true).Error; err != nil {
			log.Printf("⚠️  [Notifier] Failed to set offline-queue flag: %v", err)
		}
		n.upsertMarker(merchant.ID, alert.UrgencyLevel, "queued")
		log.Printf("📥 [Notifier] Alert email queued until business hours (merchant: %s)", merchant.ID)
		return
	}

	if err := n.sendAlertEmail(merchant, alert); err != nil {
		log.Printf("⚠️  [Notifier] Failed to send alert email: %v", err)
		return
	}

	n.upsertMarker(merchant.ID, alert.UrgencyLevel, "sent")
}

// DrainQueuedAlerts periodically delivers alert emails that were queued
// outside business hours once the merchant is open again. Runs as a
// goroutine from main.
func (n *Notifier) DrainQueuedAlerts() {
	ticker := time.NewTicker(queueDrainInterval)
	defer ticker.Stop()

	for range ticker.C {
		n.drainQueuedAlerts()
	}
}

func (n *Notifier) drainQueuedAlerts() {
	var markers []models.EmailAlertLog
	if err := n.db.Where("status = ?", "queued").Find(&markers).Error; err != nil {
		log.Printf("⚠️  [Notifier] Queued alert sweep failed: %v", err)
		return
	}

	for i := range markers {
		n.flushQueuedMarker(&markers[i])
	}
}

// readyToFlush reports whether a queued marker can be delivered now
func readyToFlush(marker *models.EmailAlertLog, merchant *models.Merchant, now time.Time) bool {
	return marker.Status == "queued" &&
		merchant.NotificationEmail != "" &&
		IsWithinBusinessHours(merchant.BusinessHours, now)
}

// flushQueuedMarker sends the email behind one queued marker and
// releases the conversation's offline-queue guard so a later offline
// handoff can queue again
func (n *Notifier) flushQueuedMarker(marker *models.EmailAlertLog) {
	var merchant models.Merchant
	if err := n.db.First(&merchant, "id = ?", marker.MerchantID).Error; err != nil {
		log.Printf("⚠️  [Notifier] Merchant lookup for queued alert failed: %v", err)
		return
	}

	if merchant.NotificationEmail == "" {
		// email was unconfigured after queueing; nothing to deliver
		if err := n.db.Delete(marker).Error; err != nil {
			log.Printf("⚠️  [Notifier] Failed to drop stale queued marker: %v", err)
		}
		return
	}

	if !readyToFlush(marker, &merchant, time.Now()) {
		return // still outside business hours
	}

	// The newest alert at this urgency backs the email body
	var alert models.HandoffAlert
	if err := n.db.Where("merchant_id = ? AND urgency_level = ?", marker.MerchantID, marker.UrgencyLevel).
		Order("created_at DESC").First(&alert).Error; err != nil {
		log.Printf("⚠️  [Notifier] Alert lookup for queued email failed: %v", err)
		return
	}

	if err := n.sendAlertEmail(&merchant, &alert); err != nil {
		log.Printf("⚠️  [Notifier] Failed to send queued alert email: %v", err)
		return
	}

	n.upsertMarker(marker.MerchantID, marker.UrgencyLevel, "sent")
	if err := n.db.Model(&models.Conversation{}).
		Where("id = ?", alert.ConversationID).
		Update("offline_alert_queued", false).Error; err != nil {
		log.Printf("⚠️  [Notifier] Failed to release offline-queue flag: %v", err)
	}
	log.Printf("📤 [Notifier] Queued alert email delivered (merchant: %s, urgency: %s)",
		marker.MerchantID, marker.UrgencyLevel)
}

// upsertMarker records the last email decision for the backoff window
func (n *Notifier) upsertMarker(merchantID, urgency, status string) {
	now := time.Now()

	var marker models.EmailAlertLog
	err := n.db.Where("merchant_id = ? AND urgency_level = ?", merchantID, urgency).
		First(&marker).Error

	if err == gorm.ErrRecordNotFound {
		marker = models.EmailAlertLog{
			MerchantID:   merchantID,
			UrgencyLevel: urgency,
			Status:       status,
			LastSentAt:   now,
		}
		if err := n.db.Create(&marker).Error; err != nil {
			log.Printf("⚠️  [Notifier] Failed to create email marker: %v", err)
		}
		return
	}
	if err != nil {
		log.Printf("⚠️  [Notifier] Email marker lookup failed: %v", err)
		return
	}

	if err := n.db.Model(&marker).Updates(map[string]interface{}{
		"status":       status,
		"last_sent_at": now,
		"updated_at":   now,
	}).Error; err != nil {
		log.Printf("⚠️  [Notifier] Failed to update email marker: %v", err)
	}
}

// alertEmailRequest is the payload for the email delivery API
type alertEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// sendAlertEmail delivers the alert through the configured email API
func (n *Notifier) sendAlertEmail(merchant *models.Merchant, alert *models.HandoffAlert) error {
	emailAPI := os.Getenv("EMAIL_API_URL")
	if emailAPI == "" {
		return fmt.Errorf("EMAIL_API_URL not configured")
	}

	subject := fmt.Sprintf("[%s] Customer needs help (%s urgency)", merchant.Name, alert.UrgencyLevel)
	body := fmt.Sprintf("A customer asked for a human.\n\nUrgency: %s\nCustomer: %s\nMessage: %s\n",
		alert.UrgencyLevel, alert.CustomerID, alert.MessagePreview)

	payload := alertEmailRequest{
		To:      merchant.NotificationEmail,
		Subject: subject,
		Body:    body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest("POST", emailAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email API returned %d", resp.StatusCode)
	}

	log.Printf("📧 [Notifier] Alert email sent to %s (urgency: %s)",
		merchant.NotificationEmail, alert.UrgencyLevel)
	return nil
}
