package model

import (
	"fmt"
	"strings"
)

// Order statuses. OrderOther collects anything the storefront sends that
// is not one of the known statuses, so the categories stay exhaustive.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderOther      = "other"
)

// OrderCategories lists the order status categories in display order.
var OrderCategories = []string{
	OrderPending,
	OrderProcessing,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
	OrderOther,
}

var knownOrderStatuses = map[string]bool{
	OrderPending:    true,
	OrderProcessing: true,
	OrderShipped:    true,
	OrderDelivered:  true,
	OrderCancelled:  true,
}

// Order is one row of the order collection.
type Order struct {
	ID            string  `json:"id"`
	OrderNumber   string  `json:"order_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	Status        string  `json:"status"`
	TotalAmount   float64 `json:"total_amount"`
	ItemCount     int     `json:"item_count"`
	CreatedAt     string  `json:"created_at"` // ISO timestamp, may be empty
}

// ClassifyOrder returns the status category for a raw status string.
// Matching is case-insensitive; unknown statuses map to OrderOther.
func ClassifyOrder(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if knownOrderStatuses[s] {
		return s
	}
	return OrderOther
}

// StatusCategory returns the order's status category.
func (o Order) StatusCategory() string {
	return ClassifyOrder(o.Status)
}

// ValidateOrderStatus checks that status is one a user may set.
func ValidateOrderStatus(status string) error {
	if !knownOrderStatuses[strings.ToLower(status)] {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// Validate checks the fields required to store an order.
func (o Order) Validate() error {
	if err := ValidateID(o.ID); err != nil {
		return err
	}
	if o.TotalAmount < 0 {
		return fmt.Errorf("%w: total_amount", ErrNegativeValue)
	}
	if o.ItemCount < 0 {
		return fmt.Errorf("%w: item_count", ErrNegativeValue)
	}
	return nil
}

// OrderPatch is a partial update of an order.
type OrderPatch struct {
	Status        *string `json:"status,omitempty"`
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.CustomerName == nil && p.CustomerEmail == nil
}

// Apply returns a copy of order with the patch applied and validated.
func (p OrderPatch) Apply(order Order) (Order, error) {
	if p.IsEmpty() {
		return order, fmt.Errorf("%w: nothing to update", ErrInvalidPatch)
	}
	if p.Status != nil {
		if err := ValidateOrderStatus(*p.Status); err != nil {
			return order, err
		}
		order.Status = strings.ToLower(*p.Status)
	}
	if p.CustomerName != nil {
		order.CustomerName = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		order.CustomerEmail = *p.CustomerEmail
	}
	return order, order.Validate()
}
