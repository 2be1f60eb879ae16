package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. Price is the catalog price captured when the line was added.
type CartItem struct {
	MedicineID string          `json:"medicine"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// Cart holds the pending purchase of a single user.
type Cart struct {
	ID          string          `json:"id,omitempty" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items       []CartItem      `json:"items" gorm:"type:text;serializer:json"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MarshalJSON leaves out the timestamps of a cart that has never been stored.
func (c Cart) MarshalJSON() ([]byte, error) {
	type cartJSON Cart
	out := struct {
		cartJSON
		CreatedAt *time.Time `json:"createdAt,omitempty"`
		UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	}{cartJSON: cartJSON(c)}
	if !c.CreatedAt.IsZero() {
		out.CreatedAt = &c.CreatedAt
	}
	if !c.UpdatedAt.IsZero() {
		out.UpdatedAt = &c.UpdatedAt
	}
	return json.Marshal(out)
}

// NewCart returns the canonical empty cart of userID.
func NewCart(userID string) *Cart {
	return &Cart{
		UserID:      userID,
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
	}
}

// CartTotal sums quantity × snapshot price over items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// BeforeSave keeps TotalAmount in step with the items being persisted.
func (c *Cart) BeforeSave(tx *gorm.DB) error {
	c.recalculate()
	return nil
}

func (c *Cart) recalculate() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	c.TotalAmount = CartTotal(c.Items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// FindItem returns the index of the line for medicineID, or -1.
func (c *Cart) FindItem(medicineID string) int {
	for i := range c.Items {
		if c.Items[i].MedicineID == medicineID {
			return i
		}
	}
	return -1
}

// AddItem sums quantity into an existing line or appends a new line priced at price.
func (c *Cart) AddItem(medicineID string, quantity int, price decimal.Decimal) {
	if i := c.FindItem(medicineID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{MedicineID: medicineID, Quantity: quantity, Price: price})
	}
	c.recalculate()
}

// SetQuantity replaces the quantity of an existing line; quantity <= 0 removes it.
// It returns false when the cart has no line for medicineID.
func (c *Cart) SetQuantity(medicineID string, quantity int) bool {
	i := c.FindItem(medicineID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.recalculate()
	return true
}

// RemoveItem drops the line for medicineID if present.
func (c *Cart) RemoveItem(medicineID string) {
	kept := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.MedicineID != medicineID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.recalculate()
}
