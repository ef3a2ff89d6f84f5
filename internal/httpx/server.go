package httpx

import (
	"context"
	"net/http"
	"time"

	"procurement-be/internal/cart"
	"procurement-be/internal/category"
	"procurement-be/internal/inventory"
	"procurement-be/internal/logger"
	"procurement-be/internal/metrics"
	"procurement-be/internal/middleware"
	"procurement-be/internal/order"
	"procurement-be/internal/product"
	"procurement-be/internal/profile"
	"procurement-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 15 * time.Second

// Idempotency deduplicates order placement by client-supplied key.
type Idempotency interface {
	Claim(ctx context.Context, purchaserID int64, key string) (orderID int64, claimed bool, err error)
	Complete(ctx context.Context, purchaserID int64, key string, orderID int64)
	Release(ctx context.Context, purchaserID int64, key string)
}

type Handler struct {
	Users      user.Service
	Profiles   profile.Service
	Categories category.Service
	Products   product.Service
	Stocks     inventory.Service
	Carts      cart.Service
	Orders     order.Service

	// Idem is optional; without it Idempotency-Key headers are ignored.
	Idem     Idempotency
	TokenTTL time.Duration
	Metrics  *metrics.Engine
}

type RouterDeps struct {
	Tokens   middleware.TokenParser
	Profiles middleware.ProfileResolver
	Limiter  *middleware.Limiter
}

func NewRouter(h *Handler, deps RouterDeps) *chi.Mux {
	if h.Metrics == nil {
		h.Metrics = &metrics.Engine{}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP, logger.RequestIDMiddleware, logger.LoggingMiddleware, chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.Auth(deps.Tokens, deps.Profiles))
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", h.serveMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Get("/stocks", h.listStocks)
		r.Get("/stocks/{id}", h.getStock)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/purchasers", h.createPurchaser)
			r.Post("/suppliers", h.createSupplier)
			r.Patch("/suppliers/me", h.setOrderStatus)
			r.Get("/chain_stores", h.listChainStores)
			r.Post("/chain_stores", h.createChainStore)

			r.Get("/categories", h.listCategories)
			r.Post("/categories", h.createCategory)
			r.Get("/categories/{id}", h.getCategory)
			r.Patch("/categories/{id}", h.updateCategory)
			r.Delete("/categories/{id}", h.deleteCategory)

			r.Get("/products", h.listProducts)
			r.Post("/products", h.createProduct)
			r.Get("/products/{id}", h.getProduct)
			r.Patch("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)

			r.Post("/stocks/import", h.importStocks)

			r.Get("/cart", h.getCart)
			r.Delete("/cart", h.clearCart)
			r.Get("/cart_positions", h.listCartPositions)
			r.Post("/cart_positions", h.addCartPosition)
			r.Get("/cart_positions/{id}", h.getCartPosition)
			r.Patch("/cart_positions/{id}", h.amendCartPosition)
			r.Delete("/cart_positions/{id}", h.removeCartPosition)

			r.Get("/orders", h.listOrders)
			r.Post("/orders", h.placeOrder)
			r.Get("/orders/{id}", h.getOrder)
			r.Patch("/orders/{id}", h.amendOrder)
			r.Delete("/orders/{id}", h.cancelOrder)

			r.Get("/order_positions", h.listOrderPositions)
			r.Get("/order_positions/{id}", h.getOrderPosition)
			r.Patch("/order_positions/{id}", h.updateOrderPosition)
		})
	})

	return r
}
