package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusUpdated = "OrderStatusUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderCreatedPayload carries enough for back-office consumers (payment
// reconciliation sheet, notification bot) to act without re-querying.
type OrderCreatedPayload struct {
	OrderID       string        `json:"order_id"`
	OrderNo       int64         `json:"order_no"`
	ProductID     string        `json:"product_id"`
	Email         string        `json:"email"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TransactionID string        `json:"transaction_id"`
	PurchasePrice float64       `json:"purchase_price"`
	SelectedPlan  string        `json:"selected_plan,omitempty"`
}

type OrderStatusUpdatedPayload struct {
	OrderID string `json:"order_id"`
	OrderNo int64  `json:"order_no"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
