package services

import (
	"fmt"

	"github.com/hazlamahedich/shop-sub004/models"

	"gorm.io/gorm"
)

// MerchantResolver maps an inbound channel token to the owning merchant
type MerchantResolver struct {
	db *gorm.DB
}

// NewMerchantResolver creates the resolver
func NewMerchantResolver(db *gorm.DB) *MerchantResolver {
	return &MerchantResolver{db: db}
}

// ResolveByChannelToken loads the merchant for a channel token and checks
// the bot is enabled. Webhooks with unknown tokens are rejected upstream.
func (r *MerchantResolver) ResolveByChannelToken(token string) (*models.Merchant, error) {
	if token == "" {
		return nil, fmt.Errorf("empty channel token")
	}

	var merchant models.Merchant
	err := r.db.Where("channel_token = ?", token).First(&merchant).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("no merchant registered for channel token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve merchant: %w", err)
	}

	if !merchant.BotActive {
		return nil, fmt.Errorf("bot disabled for merchant %s", merchant.ID)
	}

	return &merchant, nil
}

// ResolveByID loads a merchant by primary key
func (r *MerchantResolver) ResolveByID(merchantID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("id = ?", merchantID).First(&merchant).Error; err != nil {
		return nil, fmt.Errorf("failed to load merchant %s: %w", merchantID, err)
	}
	return &merchant, nil
}
