package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subsbazaar/storefront/internal/catalog"
)

type ProductStore interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	Create(ctx context.Context, p catalog.Product) (catalog.Product, error)
	Update(ctx context.Context, id string, p catalog.Product) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int, error)
}

type ProductsHandler struct {
	Store ProductStore
}

func (h *ProductsHandler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/api/products", h.list)
	r.Get("/api/products/{id}", h.get)
	r.Group(func(g chi.Router) {
		g.Use(requireAdmin)
		g.Post("/api/products", h.create)
		g.Put("/api/products/{id}", h.update)
		g.Delete("/api/products/{id}", h.delete)
	})
}

// priceValue tolerates the admin form posting prices as numbers or strings.
type priceValue float64

func (p *priceValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", s)
	}
	*p = priceValue(f)
	return nil
}

// categoryList accepts either a bare string or a list of labels; older
// catalog rows were written with a single free-text category.
type categoryList []string

func (c *categoryList) UnmarshalJSON(b []byte) error {
	t := strings.TrimSpace(string(b))
	if t == "null" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(t, "[") {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*c = nil
		return nil
	}
	*c = categoryList{s}
	return nil
}

type productReq struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Features        []string       `json:"features"`
	Price           priceValue     `json:"price"`
	OriginalPrice   *priceValue    `json:"originalPrice"`
	Duration        *string        `json:"duration"`
	Category        categoryList   `json:"category"`
	Status          string         `json:"status"`
	Image           *string        `json:"image"`
	IsFeatured      bool           `json:"isFeatured"`
	DiscountEndTime *time.Time     `json:"discountEndTime"`
	Plans           []catalog.Plan `json:"plans"`
}

func (req *productReq) toProduct() catalog.Product {
	p := catalog.Product{
		Name:            req.Name,
		Description:     req.Description,
		Features:        req.Features,
		Price:           float64(req.Price),
		Duration:        req.Duration,
		Category:        req.Category,
		Status:          catalog.Status(req.Status),
		Image:           req.Image,
		IsFeatured:      req.IsFeatured,
		DiscountEndTime: req.DiscountEndTime,
		Plans:           req.Plans,
	}
	if req.OriginalPrice != nil && *req.OriginalPrice > 0 {
		op := float64(*req.OriginalPrice)
		p.OriginalPrice = &op
	}
	if p.Duration != nil && *p.Duration == "" {
		p.Duration = nil
	}
	if p.Image != nil && *p.Image == "" {
		p.Image = nil
	}
	if p.Status == "" {
		p.Status = catalog.StatusActive
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Category == nil {
		p.Category = []string{}
	}
	return p
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		slog.Error("list products", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		slog.Error("get product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.Create(ctx, req.toProduct())
	if err != nil {
		slog.Error("create product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.Update(ctx, chi.URLParam(r, "id"), req.toProduct())
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		slog.Error("update product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Store.Delete(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrReferenced):
		writeError(w, http.StatusConflict, "Product has existing orders and cannot be deleted")
	case err != nil:
		slog.Error("delete product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
	}
}
