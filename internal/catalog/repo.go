package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrReferenced means orders still point at the product; deletion is
	// blocked so historical orders keep their product row.
	ErrReferenced = errors.New("product is referenced by existing orders")
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, features, price, original_price, duration,
	category, status, image, is_featured, discount_end_time, plans, created_at, updated_at`

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	if err != nil {
		return Product{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Product{}, err
		}
		return Product{}, ErrNotFound
	}
	return scanProduct(rows)
}

func (r *Repo) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = uuid.NewString()
	plans, err := encodePlans(p.Plans)
	if err != nil {
		return Product{}, err
	}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, description, features, price, original_price, duration,
		                     category, status, image, is_featured, discount_end_time, plans)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Features, p.Price, p.OriginalPrice, p.Duration,
		p.Category, p.Status, p.Image, p.IsFeatured, p.DiscountEndTime, plans,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update replaces every mutable field; the admin edit form always submits
// the full attribute set.
func (r *Repo) Update(ctx context.Context, id string, p Product) (Product, error) {
	plans, err := encodePlans(p.Plans)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	err = r.DB.QueryRow(ctx, `
		UPDATE products
		SET name=$2, description=$3, features=$4, price=$5, original_price=$6, duration=$7,
		    category=$8, status=$9, image=$10, is_featured=$11, discount_end_time=$12,
		    plans=$13, updated_at=now()
		WHERE id=$1
		RETURNING created_at, updated_at`,
		id, p.Name, p.Description, p.Features, p.Price, p.OriginalPrice, p.Duration,
		p.Category, p.Status, p.Image, p.IsFeatured, p.DiscountEndTime, plans,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrReferenced
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func scanProduct(rows pgx.Rows) (Product, error) {
	var (
		p         Product
		plansJSON []byte
	)
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Features, &p.Price, &p.OriginalPrice,
		&p.Duration, &p.Category, &p.Status, &p.Image, &p.IsFeatured, &p.DiscountEndTime,
		&plansJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if len(plansJSON) > 0 {
		if err := json.Unmarshal(plansJSON, &p.Plans); err != nil {
			return Product{}, fmt.Errorf("decode plans for product %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodePlans(plans []Plan) (any, error) {
	if len(plans) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(plans)
	if err != nil {
		return nil, fmt.Errorf("encode plans: %w", err)
	}
	return string(b), nil
}
