package services

import (
	"fmt"
	"strings"

	"github.com/hazlamahedich/shop-sub004/models"

	"gorm.io/gorm"
)

// DefaultSearchLimit caps product search results when the caller does not
// specify one
const DefaultSearchLimit = 5

// SearchCriteria narrows a catalog search. Nil/empty fields are ignored.
type SearchCriteria struct {
	Query     string
	Category  string
	Brand     string
	Color     string
	Size      string
	MaxPrice  *float64
	SortBy    string // price|created_at
	SortOrder string // asc|desc
	Limit     int
}

// CatalogService is the product/order query capability consumed by the
// order-tracking handler and the product-mention detector
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates the service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// SearchProducts queries the merchant catalog with the given criteria
func (s *CatalogService) SearchProducts(merchantID string, criteria SearchCriteria) ([]models.Product, error) {
	query := s.db.Where("merchant_id = ? AND in_stock = ?", merchantID, true)

	if criteria.Category != "" {
		query = query.Where("category ILIKE ?", "%"+criteria.Category+"%")
	}
	if criteria.Brand != "" {
		query = query.Where("brand ILIKE ?", "%"+criteria.Brand+"%")
	}
	if criteria.Color != "" {
		query = query.Where("color ILIKE ?", "%"+criteria.Color+"%")
	}
	if criteria.Size != "" {
		query = query.Where("size ILIKE ?", "%"+criteria.Size+"%")
	}
	if criteria.Query != "" {
		like := "%" + criteria.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if criteria.MaxPrice != nil {
		query = query.Where("price <= ?", *criteria.MaxPrice)
	}

	order := "created_at DESC"
	if criteria.SortBy == "price" {
		if strings.EqualFold(criteria.SortOrder, "desc") {
			order = "price DESC"
		} else {
			order = "price ASC"
		}
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var products []models.Product
	if err := query.Order(order).Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	return products, nil
}

// ProductsByTitle finds catalog items whose titles match any of the given
// names, used to resolve detector mentions to real products
func (s *CatalogService) ProductsByTitle(merchantID string, titles []string, limit int) ([]models.Product, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := s.db.Where("merchant_id = ? AND in_stock = ?", merchantID, true)

	clauses := make([]string, 0, len(titles))
	args := make([]interface{}, 0, len(titles))
	for _, title := range titles {
		clauses = append(clauses, "title ILIKE ?")
		args = append(args, "%"+strings.TrimSpace(title)+"%")
	}
	query = query.Where(strings.Join(clauses, " OR "), args...)

	var products []models.Product
	if err := query.Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("product title lookup failed: %w", err)
	}
	return products, nil
}

// CatalogSummary renders a compact catalog excerpt for the LLM system
// prompt
func (s *CatalogService) CatalogSummary(merchantID string, max int) string {
	if max <= 0 {
		max = 15
	}

	var products []models.Product
	if err := s.db.Where("merchant_id = ? AND in_stock = ?", merchantID, true).
		Order("created_at DESC").Limit(max).Find(&products).Error; err != nil {
		return ""
	}
	if len(products) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range products {
		b.WriteString(fmt.Sprintf("- %s (%s) - %.2f %s\n", p.Title, p.Category, p.Price, p.Currency))
	}
	return b.String()
}

// OrderByNumber looks an order up by its number, tolerating a leading '#'
func (s *CatalogService) OrderByNumber(merchantID, number string) (*models.Order, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(number), "#")

	var order models.Order
	err := s.db.Where("merchant_id = ? AND order_number ILIKE ?", merchantID, normalized).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LatestOrderBySession returns the most recent order placed from this
// platform sender
func (s *CatalogService) LatestOrderBySession(merchantID, sessionID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		Order("placed_at DESC").First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CustomerByEmail finds the merchant's customer profile for an email
func (s *CatalogService) CustomerByEmail(merchantID, email string) (*models.CustomerProfile, error) {
	var customer models.CustomerProfile
	err := s.db.Where("merchant_id = ? AND email ILIKE ?", merchantID, strings.TrimSpace(email)).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// LinkSession attaches a platform sender id to a customer profile so
// future lookups from this device resolve directly
func (s *CatalogService) LinkSession(customer *models.CustomerProfile, sessionID string) error {
	for _, existing := range customer.SessionIDs {
		if existing == sessionID {
			return nil
		}
	}
	customer.SessionIDs = append(customer.SessionIDs, sessionID)
	if err := s.db.Model(customer).Update("session_ids", customer.SessionIDs).Error; err != nil {
		return fmt.Errorf("failed to link session to customer: %w", err)
	}
	return nil
}

// LatestOrderForCustomer returns the customer's most recent order
func (s *CatalogService) LatestOrderForCustomer(merchantID string, customerID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("merchant_id = ? AND customer_id = ?", merchantID, customerID).
		Order("placed_at DESC").First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// RecentOrdersSummary renders recent orders for this sender for the LLM
// system prompt
func (s *CatalogService) RecentOrdersSummary(merchantID, sessionID string, max int) string {
	if max <= 0 {
		max = 3
	}

	var orders []models.Order
	if err := s.db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		Order("placed_at DESC").Limit(max).Find(&orders).Error; err != nil {
		return ""
	}
	if len(orders) == 0 {
		return ""
	}

	var b strings.Builder
	for _, o := range orders {
		b.WriteString(fmt.Sprintf("- #%s: %s (%.2f %s)\n", o.OrderNumber, o.Status, o.Total, o.Currency))
	}
	return b.String()
}
