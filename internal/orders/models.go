package orders

import (
	"time"

	"github.com/subsbazaar/storefront/internal/catalog"
)

type PaymentMethod string

const (
	PaymentBkash PaymentMethod = "bkash"
	PaymentNagad PaymentMethod = "nagad"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentBkash || m == PaymentNagad
}

type Order struct {
	ID        string `json:"id"`
	OrderNo   int64  `json:"orderId"` // human-facing sequential display number
	ProductID string `json:"productId"`

	Product *catalog.Product `json:"product,omitempty"`

	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	// Credential the buyer wants the subscription provisioned under; stored
	// and shown to the admin as received.
	Password *string `json:"password,omitempty"`

	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TransactionID string        `json:"transactionId"`

	// Snapshot of the amount paid, taken at creation so later catalog price
	// edits never rewrite history.
	PurchasePrice float64 `json:"purchasePrice"`
	SelectedPlan  *string `json:"selectedPlan,omitempty"`

	Status     Status  `json:"status"`
	AdminNotes *string `json:"adminNotes,omitempty"`
	UserID     *string `json:"userId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductSummary is the trimmed projection embedded in the buyer-facing
// "my orders" listing.
type ProductSummary struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image *string `json:"image,omitempty"`
}

// UserOrder shadows the admin-facing product embed with the summary.
type UserOrder struct {
	Order
	Product ProductSummary `json:"product"`
}
