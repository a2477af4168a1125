package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/subsbazaar/storefront/internal/auth"
	"github.com/subsbazaar/storefront/internal/catalog"
	"github.com/subsbazaar/storefront/internal/orders"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "s3cret"
)

// memStore backs the handler tests with the same contracts the pgx repos
// implement (not-found/referenced sentinels, newest-first, exact email match).
type memStore struct {
	mu       sync.Mutex
	products map[string]catalog.Product
	orders   map[string]orders.Order
	seq      int64
	now      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]catalog.Product{},
		orders:   map[string]orders.Order{},
		now:      time.Unix(1700000000, 0).UTC(),
	}
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

type memProducts struct{ s *memStore }

func (m memProducts) List(ctx context.Context) ([]catalog.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]catalog.Product, 0, len(m.s.products))
	for _, p := range m.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memProducts) Get(ctx context.Context, id string) (catalog.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (m memProducts) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = m.s.tick()
	p.UpdatedAt = p.CreatedAt
	m.s.products[p.ID] = p
	return p, nil
}

func (m memProducts) Update(ctx context.Context, id string, p catalog.Product) (catalog.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	old, ok := m.s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p.ID = id
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = m.s.tick()
	m.s.products[id] = p
	return p, nil
}

func (m memProducts) Delete(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, o := range m.s.orders {
		if o.ProductID == id {
			return catalog.ErrReferenced
		}
	}
	delete(m.s.products, id)
	return nil
}

func (m memProducts) CountProducts(ctx context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.products), nil
}

type memOrders struct{ s *memStore }

func (m memOrders) Create(ctx context.Context, o orders.Order) (orders.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o.ID = uuid.NewString()
	m.s.seq++
	o.OrderNo = 1000 + m.s.seq
	o.CreatedAt = m.s.tick()
	o.UpdatedAt = o.CreatedAt
	o.Product = nil
	m.s.orders[o.ID] = o
	return o, nil
}

func (m memOrders) List(ctx context.Context) ([]orders.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]orders.Order, 0, len(m.s.orders))
	for _, o := range m.s.orders {
		if p, ok := m.s.products[o.ProductID]; ok {
			cp := p
			o.Product = &cp
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memOrders) Get(ctx context.Context, id string) (orders.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if p, ok := m.s.products[o.ProductID]; ok {
		cp := p
		o.Product = &cp
	}
	return o, nil
}

func (m memOrders) Update(ctx context.Context, id string, status *orders.Status, adminNotes *string) (orders.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	if status != nil {
		o.Status = *status
	}
	if adminNotes != nil {
		o.AdminNotes = adminNotes
	}
	o.UpdatedAt = m.s.tick()
	m.s.orders[id] = o
	return o, nil
}

func (m memOrders) ListByEmail(ctx context.Context, email string) ([]orders.UserOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []orders.UserOrder
	for _, o := range m.s.orders {
		if o.Email != email {
			continue
		}
		u := orders.UserOrder{Order: o}
		if p, ok := m.s.products[o.ProductID]; ok {
			u.Product = orders.ProductSummary{Name: p.Name, Price: p.Price, Image: p.Image}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memOrders) CountOrders(ctx context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.orders), nil
}

func (m memOrders) CountByStatus(ctx context.Context, s orders.Status) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, o := range m.s.orders {
		if o.Status == s {
			n++
		}
	}
	return n, nil
}

type memSessions struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemSessions() *memSessions { return &memSessions{m: map[string]string{}} }

func (s *memSessions) Put(ctx context.Context, id, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = email
	return nil
}

func (s *memSessions) Alive(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	return ok, nil
}

func (s *memSessions) Drop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

type capturePublisher struct {
	mu        sync.Mutex
	envelopes []orders.Envelope
}

func (p *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var env orders.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		p.envelopes = append(p.envelopes, env)
	}
}

func (p *capturePublisher) byType(eventType string) []orders.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []orders.Envelope
	for _, e := range p.envelopes {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	router    *chi.Mux
	store     *memStore
	publisher *capturePublisher
	auth      *auth.Auth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	a := &auth.Auth{
		Secret:            []byte("test-secret"),
		AdminEmail:        testAdminEmail,
		AdminPasswordHash: string(hash),
		TTL:               time.Hour,
		Sessions:          newMemSessions(),
	}

	store := newMemStore()
	pub := &capturePublisher{}
	router := NewRouter("")
	requireAdmin := RequireAdmin(a)

	ph := &ProductsHandler{Store: memProducts{s: store}}
	ph.Register(router, requireAdmin)
	oh := &OrdersHandler{
		Orders:    memOrders{s: store},
		Products:  memProducts{s: store},
		Publisher: pub,
		Service:   "storefront-test",
	}
	oh.Register(router, requireAdmin)
	ah := &AdminHandler{
		Auth:     a,
		Orders:   memOrders{s: store},
		Products: memProducts{s: store},
	}
	ah.Register(router, requireAdmin)

	return &testEnv{router: router, store: store, publisher: pub, auth: a}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.Login(context.Background(), testAdminEmail, testAdminPassword)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (e *testEnv) createProduct(t *testing.T, token string, body map[string]any) catalog.Product {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/products", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[catalog.Product](t, rec)
}

func (e *testEnv) createOrder(t *testing.T, body map[string]any) orders.Order {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/orders", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[orders.Order](t, rec)
}

func checkoutBody(productID string, overrides map[string]any) map[string]any {
	body := map[string]any{
		"productId":     productID,
		"fullName":      "Rahim Uddin",
		"phone":         "01711111111",
		"email":         "rahim@example.com",
		"paymentMethod": "bkash",
		"transactionId": "TX123ABC",
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}
