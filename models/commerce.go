package models

import (
	"time"

	"github.com/lib/pq"
)

// Product is one catalog item surfaced as a product card
type Product struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	MerchantID  string    `gorm:"index;not null" json:"merchant_id"`
	Title       string    `gorm:"not null" json:"title"`
	Category    string    `gorm:"index" json:"category"`
	Brand       string    `json:"brand,omitempty"`
	Color       string    `json:"color,omitempty"`
	Size        string    `json:"size,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `gorm:"default:'USD'" json:"currency"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ProductURL  string    `json:"product_url,omitempty"`
	InStock     bool      `gorm:"default:true" json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName override for the products table
func (Product) TableName() string {
	return "products"
}

// Order is a placed order, looked up by number or by customer
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MerchantID  string    `gorm:"index;not null" json:"merchant_id"`
	OrderNumber string    `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID  *uint     `gorm:"index" json:"customer_id,omitempty"`
	SessionID   string    `gorm:"index" json:"session_id"` // platform sender that placed it
	Status      string    `gorm:"default:'processing'" json:"status"`
	Total       float64   `json:"total"`
	Currency    string    `gorm:"default:'USD'" json:"currency"`
	ItemSummary string    `gorm:"type:text" json:"item_summary,omitempty"`
	TrackingURL string    `json:"tracking_url,omitempty"`
	PlacedAt    time.Time `json:"placed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName override for the orders table
func (Order) TableName() string {
	return "orders"
}

// CustomerProfile links a shopper's email to the platform sender ids seen
// for them, enabling cross-device order lookup
type CustomerProfile struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MerchantID string         `gorm:"index:idx_customer_email;not null" json:"merchant_id"`
	Email      string         `gorm:"index:idx_customer_email;not null" json:"email"`
	Name       string         `json:"name,omitempty"`
	SessionIDs pq.StringArray `gorm:"type:text[]" json:"session_ids"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName override for the customer_profiles table
func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

// ChatMessage is one conversation turn, kept for LLM context. History is
// capped per contact; an external retention job owns long-term storage.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MessageID  string    `gorm:"uniqueIndex;not null" json:"message_id"`
	MerchantID string    `gorm:"index;not null" json:"merchant_id"`
	SessionID  string    `gorm:"index;not null" json:"session_id"`
	FromBot    bool      `gorm:"default:false" json:"from_bot"`
	Body       string    `gorm:"type:text" json:"body"`
	SenderName string    `json:"sender_name,omitempty"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName override for the chat_messages table
func (ChatMessage) TableName() string {
	return "chat_messages"
}
