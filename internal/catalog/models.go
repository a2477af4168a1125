package catalog

import (
	"math"
	"time"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusComingSoon Status = "coming_soon"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusComingSoon
}

// Plan is a pricing tier nested under a product. When a product carries
// plans, the top-level price/duration are only the fallback for an empty set.
type Plan struct {
	Duration      string   `json:"duration"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
}

type Product struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Features        []string   `json:"features"`
	Price           float64    `json:"price"`
	OriginalPrice   *float64   `json:"originalPrice,omitempty"`
	Duration        *string    `json:"duration,omitempty"`
	Category        []string   `json:"category"`
	Status          Status     `json:"status"`
	Image           *string    `json:"image,omitempty"`
	IsFeatured      bool       `json:"isFeatured"`
	DiscountEndTime *time.Time `json:"discountEndTime,omitempty"`
	Plans           []Plan     `json:"plans,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// DiscountPercent is what the storefront shows next to a struck-through
// original price: round(100 * (original - price) / original). Zero when no
// original price is set or nothing is actually discounted.
func DiscountPercent(price float64, originalPrice *float64) int {
	if originalPrice == nil || *originalPrice <= 0 {
		return 0
	}
	pct := int(math.Round((*originalPrice - price) / *originalPrice * 100))
	if pct < 0 {
		return 0
	}
	return pct
}

// ValidPurchasePrice reports whether amount matches the product's base price
// or one of its plan prices. Checkout submissions carrying any other amount
// are rejected rather than snapshotted.
func (p *Product) ValidPurchasePrice(amount float64) bool {
	if amount == p.Price {
		return true
	}
	for _, plan := range p.Plans {
		if amount == plan.Price {
			return true
		}
	}
	return false
}

// PlanForPrice returns the duration label of the plan matching amount, or
// nil when the amount corresponds to the base price.
func (p *Product) PlanForPrice(amount float64) *string {
	for i := range p.Plans {
		if p.Plans[i].Price == amount {
			return &p.Plans[i].Duration
		}
	}
	return nil
}
