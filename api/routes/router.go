package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	fulfillmentcontrollers "github.com/mateovidal/dropcart-backend/api/controllers/fulfillment"
	ordercontrollers "github.com/mateovidal/dropcart-backend/api/controllers/orders"
	supplierordercontrollers "github.com/mateovidal/dropcart-backend/api/controllers/supplierorders"
	suppliercontrollers "github.com/mateovidal/dropcart-backend/api/controllers/suppliers"
	walletcontrollers "github.com/mateovidal/dropcart-backend/api/controllers/wallet"
	"github.com/mateovidal/dropcart-backend/api/handlers"
	"github.com/mateovidal/dropcart-backend/api/middleware"
	"github.com/mateovidal/dropcart-backend/internal/catalog"
	"github.com/mateovidal/dropcart-backend/internal/fulfillment"
	"github.com/mateovidal/dropcart-backend/internal/orders"
	"github.com/mateovidal/dropcart-backend/internal/supplierorders"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/internal/wallet"
	"github.com/mateovidal/dropcart-backend/pkg/config"
	"github.com/mateovidal/dropcart-backend/pkg/db"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/redis"
)

// Deps carries everything the router needs wired in by cmd/api.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          redis.Pinger
	Wallet         wallet.Service
	Fulfillment    fulfillment.Service
	Orders         orders.Repository
	Suppliers      suppliers.Service
	SupplierOrders supplierorders.Service
	Catalog        catalog.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", handlers.Healthz(cfg, logg, deps.DB, deps.Redis))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletcontrollers.Balance(deps.Wallet, logg))
			r.Get("/transactions", walletcontrollers.Transactions(deps.Wallet, logg))
			r.Post("/topup", walletcontrollers.TopUp(deps.Wallet, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(deps.Orders, logg))
				r.Get("/can-fulfill", fulfillmentcontrollers.CanFulfill(deps.Fulfillment, logg))
				r.Post("/fulfill", fulfillmentcontrollers.Fulfill(deps.Fulfillment, logg))
			})
		})

		r.Route("/supplier-orders/{supplierOrderID}", func(r chi.Router) {
			r.Get("/", supplierordercontrollers.Detail(deps.SupplierOrders, logg))
			r.Post("/refresh-tracking", supplierordercontrollers.RefreshTracking(deps.SupplierOrders, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", suppliercontrollers.List(deps.Suppliers, logg))
			r.Route("/{supplierID}", func(r chi.Router) {
				r.Post("/test-connection", suppliercontrollers.TestConnection(deps.Suppliers, logg))
				r.Post("/sync", suppliercontrollers.Sync(deps.Catalog, logg))
			})
		})
	})

	return r
}
