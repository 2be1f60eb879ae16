package models

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus accepts only the three known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an administrator may move an order from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderStatusPending && next.IsTerminal()
}

// Address is a postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// OrderItem is an immutable copy of a cart line taken when the order was placed.
type OrderItem struct {
	MedicineID string          `json:"medicine"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string          `json:"orderId" gorm:"uniqueIndex;type:varchar(32);not null"`
	UserID          string          `json:"user" gorm:"index;type:varchar(36);not null"`
	Items           []OrderItem     `json:"items" gorm:"type:text;serializer:json"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	BookingDate     time.Time       `json:"bookingDate"`
	DeliveryAddress Address         `json:"deliveryAddress" gorm:"embedded;embeddedPrefix:delivery_"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// GenerateOrderID builds the human readable order number: "ORD" + unix millis + 0-999.
func GenerateOrderID(now time.Time) string {
	return fmt.Sprintf("ORD%d%d", now.UnixMilli(), rand.Intn(1000))
}

// ContainsMedicine reports whether any line of the order is for medicineID.
func (o *Order) ContainsMedicine(medicineID string) bool {
	for _, it := range o.Items {
		if it.MedicineID == medicineID {
			return true
		}
	}
	return false
}
