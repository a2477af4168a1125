package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subsbazaar/storefront/internal/auth"
	"github.com/subsbazaar/storefront/internal/orders"
)

type AdminAuthenticator interface {
	Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, err error)
	Logout(ctx context.Context, token string) error
}

type AdminHandler struct {
	Auth     AdminAuthenticator
	Orders   OrderStore
	Products ProductStore
}

func (h *AdminHandler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Post("/api/admin/login", h.login)
	r.Group(func(g chi.Router) {
		g.Use(requireAdmin)
		g.Post("/api/admin/logout", h.logout)
		g.Get("/api/admin/stats", h.stats)
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, expiresAt, err := h.Auth.Login(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("admin login", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, ExpiresAt: expiresAt})
}

func (h *AdminHandler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, token); err != nil {
		slog.Error("admin logout", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

type statsResp struct {
	TotalOrders     int `json:"totalOrders"`
	PendingOrders   int `json:"pendingOrders"`
	CompletedOrders int `json:"completedOrders"`
	TotalProducts   int `json:"totalProducts"`
}

// stats runs four independent counts on every dashboard load; the catalog is
// small enough that nothing is cached or materialized.
func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		resp statsResp
		err  error
	)
	if resp.TotalOrders, err = h.Orders.CountOrders(ctx); err != nil {
		h.statsError(w, err)
		return
	}
	if resp.PendingOrders, err = h.Orders.CountByStatus(ctx, orders.StatusPending); err != nil {
		h.statsError(w, err)
		return
	}
	if resp.CompletedOrders, err = h.Orders.CountByStatus(ctx, orders.StatusCompleted); err != nil {
		h.statsError(w, err)
		return
	}
	if resp.TotalProducts, err = h.Products.CountProducts(ctx); err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) statsError(w http.ResponseWriter, err error) {
	slog.Error("admin stats", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
}
