package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/hazlamahedich/shop-sub004/database"
	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"

	"github.com/gin-gonic/gin"
)

// ListHandoffAlerts returns the merchant's alerts, newest first.
// Query params: unread=true to filter, limit (default 50).
func ListHandoffAlerts(c *gin.Context) {
	merchantID := c.GetString("merchant_id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	db := database.GetDB()
	query := db.Where("merchant_id = ?", merchantID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var alerts []models.HandoffAlert
	if err := query.Order("created_at DESC").Limit(limit).Find(&alerts).Error; err != nil {
		log.Printf("Failed to list handoff alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// MarkAlertRead flips one alert to read
func MarkAlertRead(c *gin.Context) {
	merchantID := c.GetString("merchant_id")
	alertID := c.Param("id")

	db := database.GetDB()
	result := db.Model(&models.HandoffAlert{}).
		Where("id = ? AND merchant_id = ?", alertID, merchantID).
		Update("is_read", true)
	if result.Error != nil {
		log.Printf("Failed to mark alert read: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read", "alert_id": alertID})
}

// ConversationStatus reports one conversation's gates for the dashboard:
// handoff state and the hybrid-mode window
func ConversationStatus(c *gin.Context) {
	merchantID := c.GetString("merchant_id")
	sessionID := c.Param("session")

	db := database.GetDB()
	var conv models.Conversation
	if err := db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	hybrid := services.NewHybridModeService(db)
	enabled, remaining := hybrid.Status(&conv, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"conversation_id":  conv.ID,
		"status":           conv.Status,
		"handoff_status":   conv.HandoffStatus,
		"hybrid_mode":      enabled,
		"hybrid_remaining": remaining,
		"pending_consent":  conv.PendingConsentType,
		"clarifying":       conv.Clarification.Active,
	})
}

// TakeOverConversation puts the bot into hybrid mode because a human is
// replying from the dashboard
func TakeOverConversation(c *gin.Context) {
	merchantID := c.GetString("merchant_id")
	sessionID := c.Param("session")

	db := database.GetDB()
	var conv models.Conversation
	if err := db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	hybrid := services.NewHybridModeService(db)
	if err := hybrid.Activate(&conv, "agent_takeover", time.Now()); err != nil {
		log.Printf("Failed to activate hybrid mode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to take over"})
		return
	}

	db.Model(&conv).Updates(map[string]interface{}{
		"status":         models.ConversationHandoff,
		"handoff_status": models.HandoffActive,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":     "taken_over",
		"expires_at": conv.HybridMode.ExpiresAt,
	})
}

// ReleaseConversation hands the conversation back to the bot
func ReleaseConversation(c *gin.Context) {
	merchantID := c.GetString("merchant_id")
	sessionID := c.Param("session")

	db := database.GetDB()
	var conv models.Conversation
	if err := db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	hybrid := services.NewHybridModeService(db)
	if err := hybrid.Deactivate(&conv); err != nil {
		log.Printf("Failed to deactivate hybrid mode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release"})
		return
	}

	db.Model(&conv).Updates(map[string]interface{}{
		"status":               models.ConversationActive,
		"handoff_status":       models.HandoffNone,
		"offline_alert_queued": false,
	})

	c.JSON(http.StatusOK, gin.H{"status": "released"})
}
