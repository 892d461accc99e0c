package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/stockpilot/stockpilot/internal/catalog/products"
	"github.com/stockpilot/stockpilot/internal/catalog/suppliers"
	"github.com/stockpilot/stockpilot/internal/catalog/warehouses"
	"github.com/stockpilot/stockpilot/internal/orders"
	"github.com/stockpilot/stockpilot/internal/platform/httpx"
	"github.com/stockpilot/stockpilot/internal/stock"
	"github.com/stockpilot/stockpilot/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Redis            *redis.Client
	StockHandler     *stock.Handler
	OrderHandler     *orders.Handler
	ProductHandler   *products.Handler
	SupplierHandler  *suppliers.Handler
	WarehouseHandler *warehouses.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			payload := map[string]any{
				"status":    "healthy",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}
			if params.Redis != nil {
				if err := params.Redis.Ping(req.Context()).Err(); err != nil {
					payload["status"] = "degraded"
					payload["redis"] = "unavailable"
				} else {
					payload["redis"] = "ok"
				}
			}
			httpx.JSON(w, http.StatusOK, payload)
		})

		r.Route("/products", func(r chi.Router) {
			params.StockHandler.MountRoutes(r)
			params.ProductHandler.MountRoutes(r)
		})
		r.Route("/purchase-orders", func(r chi.Router) {
			params.OrderHandler.MountRoutes(r)
		})
		r.Route("/suppliers", func(r chi.Router) {
			params.SupplierHandler.MountRoutes(r)
		})
		r.Route("/warehouses", func(r chi.Router) {
			params.WarehouseHandler.MountRoutes(r)
		})
		if params.JobHandler != nil {
			params.JobHandler.MountRoutes(r)
		}
	})

	return r
}
