package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subsbazaar/storefront/internal/catalog"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

const orderCols = `o.id, o.order_no, o.product_id, o.full_name, o.phone, o.email, o.password,
	o.payment_method, o.transaction_id, o.purchase_price, o.selected_plan, o.status,
	o.admin_notes, o.user_id, o.created_at, o.updated_at`

const joinedProductCols = `p.id, p.name, p.description, p.features, p.price, p.original_price,
	p.duration, p.category, p.status, p.image, p.is_featured, p.discount_end_time, p.plans,
	p.created_at, p.updated_at`

// Create inserts the order and fills in the generated display number and
// timestamps. Status is whatever the caller set; the checkout handler always
// passes pending.
func (r *Repo) Create(ctx context.Context, o Order) (Order, error) {
	o.ID = uuid.NewString()
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, product_id, full_name, phone, email, password, payment_method,
		                   transaction_id, purchase_price, selected_plan, status, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING order_no, created_at, updated_at`,
		o.ID, o.ProductID, o.FullName, o.Phone, o.Email, o.Password, o.PaymentMethod,
		o.TransactionID, o.PurchasePrice, o.SelectedPlan, o.Status, o.UserID,
	).Scan(&o.OrderNo, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+`, `+joinedProductCols+`
		FROM orders o
		JOIN products p ON p.id = o.product_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrderWithProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+`, `+joinedProductCols+`
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.id=$1`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Order{}, err
		}
		return Order{}, ErrNotFound
	}
	return scanOrderWithProduct(rows)
}

// Update writes status and/or adminNotes; a nil field is left untouched.
// Transition legality is the handler's concern, last write wins here.
func (r *Repo) Update(ctx context.Context, id string, status *Status, adminNotes *string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET status = COALESCE($2::text, status),
		    admin_notes = COALESCE($3::text, admin_notes),
		    updated_at = now()
		WHERE id=$1
		RETURNING `+selfOrderCols(), id, status, adminNotes,
	).Scan(orderFields(&o)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListByEmail matches the stored email exactly (case-sensitive) and embeds
// the trimmed product projection the buyer-facing view needs.
func (r *Repo) ListByEmail(ctx context.Context, email string) ([]UserOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+`, p.name, p.price, p.image
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.email = $1
		ORDER BY o.created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserOrder
	for rows.Next() {
		var u UserOrder
		fields := orderFields(&u.Order)
		fields = append(fields, &u.Product.Name, &u.Product.Price, &u.Product.Image)
		if err := rows.Scan(fields...); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *Repo) CountByStatus(ctx context.Context, s Status) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status=$1`, s).Scan(&n)
	return n, err
}

func selfOrderCols() string {
	return `id, order_no, product_id, full_name, phone, email, password, payment_method,
		transaction_id, purchase_price, selected_plan, status, admin_notes, user_id,
		created_at, updated_at`
}

func orderFields(o *Order) []any {
	return []any{&o.ID, &o.OrderNo, &o.ProductID, &o.FullName, &o.Phone, &o.Email, &o.Password,
		&o.PaymentMethod, &o.TransactionID, &o.PurchasePrice, &o.SelectedPlan, &o.Status,
		&o.AdminNotes, &o.UserID, &o.CreatedAt, &o.UpdatedAt}
}

func scanOrderWithProduct(rows pgx.Rows) (Order, error) {
	var (
		o         Order
		p         catalog.Product
		plansJSON []byte
	)
	fields := orderFields(&o)
	fields = append(fields, &p.ID, &p.Name, &p.Description, &p.Features, &p.Price,
		&p.OriginalPrice, &p.Duration, &p.Category, &p.Status, &p.Image, &p.IsFeatured,
		&p.DiscountEndTime, &plansJSON, &p.CreatedAt, &p.UpdatedAt)
	if err := rows.Scan(fields...); err != nil {
		return Order{}, err
	}
	if len(plansJSON) > 0 {
		if err := json.Unmarshal(plansJSON, &p.Plans); err != nil {
			return Order{}, fmt.Errorf("decode plans for product %s: %w", p.ID, err)
		}
	}
	o.Product = &p
	return o, nil
}
