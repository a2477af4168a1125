package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/subsbazaar/storefront/internal/catalog"
	kafkax "github.com/subsbazaar/storefront/internal/kafka"
	"github.com/subsbazaar/storefront/internal/orders"
)

type OrderStore interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
	Get(ctx context.Context, id string) (orders.Order, error)
	Update(ctx context.Context, id string, status *orders.Status, adminNotes *string) (orders.Order, error)
	ListByEmail(ctx context.Context, email string) ([]orders.UserOrder, error)
	CountOrders(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, s orders.Status) (int, error)
}

// EventPublisher feeds back-office consumers; publishing never blocks the
// request path.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Orders    OrderStore
	Products  ProductStore
	Publisher EventPublisher
	Service   string
}

func (h *OrdersHandler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Post("/api/orders", h.create)
	r.Get("/api/orders/user", h.listByEmail)
	r.Group(func(g chi.Router) {
		g.Use(requireAdmin)
		g.Get("/api/orders", h.list)
		g.Get("/api/orders/{id}", h.get)
		g.Put("/api/orders/{id}", h.update)
	})
}

// createOrderReq deliberately has no status field: checkout submissions
// always start pending no matter what the client sends.
type createOrderReq struct {
	ProductID     string   `json:"productId"`
	FullName      string   `json:"fullName"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Password      *string  `json:"password"`
	PaymentMethod string   `json:"paymentMethod"`
	TransactionID string   `json:"transactionId"`
	PurchasePrice *float64 `json:"purchasePrice"`
	SelectedPlan  *string  `json:"selectedPlan"`
	UserID        *string  `json:"userId"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" || req.FullName == "" || req.Phone == "" || req.Email == "" ||
		req.PaymentMethod == "" || req.TransactionID == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	method := orders.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		writeError(w, http.StatusBadRequest, "Unsupported payment method")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := h.Products.Get(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		slog.Error("lookup product for order", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	// Snapshot the price at creation time. A client-supplied amount is only
	// accepted when it matches the base price or one of the plan prices.
	price := product.Price
	if req.PurchasePrice != nil {
		if !product.ValidPurchasePrice(*req.PurchasePrice) {
			writeError(w, http.StatusBadRequest, "Purchase price does not match any plan")
			return
		}
		price = *req.PurchasePrice
	}
	plan := req.SelectedPlan
	if plan == nil {
		plan = product.Duration
	}

	o := orders.Order{
		ProductID:     product.ID,
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      req.Password,
		PaymentMethod: method,
		TransactionID: req.TransactionID,
		PurchasePrice: price,
		SelectedPlan:  plan,
		Status:        orders.StatusPending,
		UserID:        req.UserID,
	}
	created, err := h.Orders.Create(ctx, o)
	if err != nil {
		slog.Error("create order", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	h.publish(r, orders.EventOrderCreated, created.ID, orders.OrderCreatedPayload{
		OrderID:       created.ID,
		OrderNo:       created.OrderNo,
		ProductID:     created.ProductID,
		Email:         created.Email,
		PaymentMethod: created.PaymentMethod,
		TransactionID: created.TransactionID,
		PurchasePrice: created.PurchasePrice,
		SelectedPlan:  deref(created.SelectedPlan),
	})

	writeJSON(w, http.StatusCreated, created)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Orders.List(ctx)
	if err != nil {
		slog.Error("list orders", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		slog.Error("get order", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateOrderReq struct {
	Status     *string `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	current, err := h.Orders.Get(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		slog.Error("get order for update", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	var newStatus *orders.Status
	if req.Status != nil {
		s := orders.Status(*req.Status)
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown order status")
			return
		}
		if s != current.Status && !orders.CanTransition(current.Status, s) {
			writeError(w, http.StatusConflict, "Order status is final")
			return
		}
		newStatus = &s
	}

	updated, err := h.Orders.Update(ctx, id, newStatus, req.AdminNotes)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		slog.Error("update order", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	if newStatus != nil && *newStatus != current.Status {
		h.publish(r, orders.EventOrderStatusUpdated, updated.ID, orders.OrderStatusUpdatedPayload{
			OrderID: updated.ID,
			OrderNo: updated.OrderNo,
			From:    current.Status,
			To:      updated.Status,
		})
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *OrdersHandler) listByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Orders.ListByEmail(ctx, email)
	if err != nil {
		slog.Error("list orders by email", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if out == nil {
		out = []orders.UserOrder{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) publish(r *http.Request, eventType, orderID string, payload any) {
	if h.Publisher == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Publisher.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
