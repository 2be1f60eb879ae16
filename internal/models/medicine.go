package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold is the quantity at or below which a medicine is flagged as low stock.
const LowStockThreshold = 10

// Review is a user's rating of a medicine. Reviews are stored inside their Medicine.
type Review struct {
	UserID    string    `json:"user"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Medicine represents a catalog entry of the store.
type Medicine struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string          `json:"name" gorm:"type:varchar(200);not null;index"`
	Image             string          `json:"image" gorm:"type:varchar(500)"`
	Description       string          `json:"description" gorm:"type:text"`
	Manufacturer      string          `json:"manufacturer" gorm:"type:varchar(200)"`
	ManufacturingDate time.Time       `json:"manufacturingDate"`
	ExpiryDate        time.Time       `json:"expiryDate"`
	Quantity          int             `json:"quantity" gorm:"not null"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Reviews           []Review        `json:"reviews" gorm:"type:text;serializer:json"`
	AverageRating     float64         `json:"averageRating"`
	IsLowStock        bool            `json:"isLowStock" gorm:"index"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// LowStock reports whether quantity is at or below LowStockThreshold.
func LowStock(quantity int) bool {
	return quantity <= LowStockThreshold
}

// MeanRating is the arithmetic mean of all ratings, 0 without reviews.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// BeforeSave keeps the derived fields consistent with quantity and reviews.
func (m *Medicine) BeforeSave(tx *gorm.DB) error {
	m.refreshDerived()
	return nil
}

func (m *Medicine) refreshDerived() {
	m.IsLowStock = LowStock(m.Quantity)
	m.AverageRating = MeanRating(m.Reviews)
	if m.Reviews == nil {
		m.Reviews = []Review{}
	}
}

// HasReviewFrom reports whether userID already reviewed this medicine.
func (m *Medicine) HasReviewFrom(userID string) bool {
	for _, r := range m.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AppendReview adds r and recomputes the average rating.
func (m *Medicine) AppendReview(r Review) {
	m.Reviews = append(m.Reviews, r)
	m.refreshDerived()
}

// SetQuantity replaces the stock level and recomputes the low-stock flag.
func (m *Medicine) SetQuantity(quantity int) {
	m.Quantity = quantity
	m.refreshDerived()
}
