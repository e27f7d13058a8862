package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hazlamahedich/shop-sub004/models"
)

// SendTextRequest payload for the channel gateway
type SendTextRequest struct {
	SessionID string `json:"sessionId"`
	To        string `json:"to"`
	Text      string `json:"text"`
}

// SendProductsRequest payload for a product carousel
type SendProductsRequest struct {
	SessionID string       `json:"sessionId"`
	To        string       `json:"to"`
	Text      string       `json:"text"`
	Products  []ProductRef `json:"products"`
}

// ProductRef is the gateway's product card shape
type ProductRef struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"imageUrl,omitempty"`
	URL      string  `json:"url,omitempty"`
}

// TypingStateRequest payload for the typing indicator
type TypingStateRequest struct {
	Phone string `json:"Phone"`
	State string `json:"State"` // "composing" or "stop"
}

// MarkReadRequest payload to mark inbound messages as read
type MarkReadRequest struct {
	Phone      string   `json:"Phone"`
	MessageIDs []string `json:"MessageIds"`
}

func gatewayURL(path string) (string, error) {
	base := os.Getenv("CHANNEL_GATEWAY_URL")
	if base == "" {
		return "", fmt.Errorf("CHANNEL_GATEWAY_URL not configured")
	}
	return base + path, nil
}

func postToGateway(url, channelToken string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", channelToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}

// SendChannelText sends a plain text reply through the channel gateway.
// The gateway validates the token and proxies to the platform.
func SendChannelText(channelToken, to, text string) error {
	url, err := gatewayURL("/chat/send/text")
	if err != nil {
		return err
	}
	return postToGateway(url, channelToken, SendTextRequest{
		SessionID: channelToken,
		To:        to,
		Text:      text,
	})
}

// SendChannelProducts sends a reply with attached product cards
func SendChannelProducts(channelToken, to, text string, products []models.Product) error {
	if len(products) == 0 {
		return SendChannelText(channelToken, to, text)
	}

	url, err := gatewayURL("/chat/send/products")
	if err != nil {
		return err
	}

	refs := make([]ProductRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, ProductRef{
			Title:    p.Title,
			Price:    p.Price,
			Currency: p.Currency,
			ImageURL: p.ImageURL,
			URL:      p.ProductURL,
		})
	}

	return postToGateway(url, channelToken, SendProductsRequest{
		SessionID: channelToken,
		To:        to,
		Text:      text,
		Products:  refs,
	})
}

// SetTypingState toggles the typing indicator for a contact.
// state is "composing" or "stop".
func SetTypingState(channelToken, phone, state string) error {
	url, err := gatewayURL("/chat/presence")
	if err != nil {
		return err
	}
	return postToGateway(url, channelToken, TypingStateRequest{
		Phone: phone,
		State: state,
	})
}

// MarkMessageRead marks inbound messages as read so the shopper sees
// blue ticks while the reply is being prepared
func MarkMessageRead(channelToken, phone string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	url, err := gatewayURL("/chat/markread")
	if err != nil {
		return err
	}
	return postToGateway(url, channelToken, MarkReadRequest{
		Phone:      phone,
		MessageIDs: messageIDs,
	})
}
