package domain

import "time"

// OrderStatus is the backend's order lifecycle state.
type OrderStatus string

// Order status constants.
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ShippingFee is charged on any non-empty order.
const ShippingFee = 500.0

// Order is a placed order.
type Order struct {
	ID              int64       `json:"id"`
	CustomerEmail   string      `json:"customerEmail"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"totalAmount"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       *time.Time  `json:"createdAt,omitempty"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price,omitempty"`
}

// CheckoutItem is the line shape sent to the checkout endpoint.
type CheckoutItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CheckoutRequest is the checkout payload.
type CheckoutRequest struct {
	CustomerEmail   string         `json:"customerEmail"`
	ShippingAddress string         `json:"shippingAddress,omitempty"`
	Items           []CheckoutItem `json:"items"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if string(s) == status {
			return true
		}
	}
	return false
}

// SettableStatuses are the targets offered by the back office status picker.
func SettableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered}
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

// ShippingFor returns the shipping charge for a subtotal.
func ShippingFor(subtotal float64) float64 {
	if subtotal > 0 {
		return ShippingFee
	}
	return 0
}
