package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiPrefix = "/api/v1"

// Services are the collaborators behind the API routes.
type Services struct {
	Catalog   ProductCatalog
	Carts     CartManager
	Mandates  MandateIssuer
	Pricing   PriceQuoter
	Shipping  RateCalculator
	Inventory StockChecker
	Orders    OrderManager
}

type RouterConfig struct {
	BaseURL            string
	CORSOrigins        []string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Logger             *slog.Logger
}

// NewRouter wires every route and wraps the router with otelhttp.
func NewRouter(svc Services, cfg RouterConfig) (http.Handler, error) {
	system, err := NewSystemHandler(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	products := NewProductHandler(svc.Catalog)
	carts := NewCartHandler(svc.Carts, svc.Mandates)
	pricing := NewPricingHandler(svc.Pricing, svc.Shipping)
	inventory := NewInventoryHandler(svc.Inventory)
	orders := NewOrdersHandler(svc.Orders)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	r.NotFound(notFound)

	r.Get("/", system.Root)
	r.Get("/docs/openapi.yaml", system.OpenAPIYAML)
	r.Get("/docs/openapi.json", system.OpenAPIJSON)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/slug/{slug}", products.GetBySlug)
			r.Get("/sku/{sku}", products.GetBySKU)
			r.Get("/{id}", products.GetByID)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", carts.CreateOrUpdate)
			r.Get("/{cartId}", carts.Get)
			r.Delete("/{cartId}", carts.Delete)
			r.Put("/{cartId}/items/{sku}", carts.UpdateItem)
			r.Post("/{cartId}/create-mandate", carts.CreateMandate)
			r.Post("/{cartId}/verify-payment", carts.VerifyPayment)
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/quote", pricing.Quote)
			r.Get("/coupons", pricing.Coupons)
			r.Post("/coupons/validate", pricing.ValidateCoupon)
		})
		r.Post("/shipping/rates", pricing.ShippingRates)

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/check", inventory.Check)
			r.Get("/low-stock", inventory.LowStock)
			r.Get("/{sku}", inventory.Get)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.Create)
			r.Get("/", orders.List)
			r.Get("/{orderId}", orders.Get)
			r.Patch("/{orderId}/status", orders.UpdateStatus)
			r.Post("/{orderId}/returns", orders.CreateReturn)
		})
		r.Get("/returns/{returnId}", orders.GetReturn)

		r.Get("/brands", products.Brands)
		r.Get("/categories", products.Categories)
		r.Get("/collections", products.Collections)
		r.Get("/health", system.Health)
	})

	return otelhttp.NewHandler(r, "merchant-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	), nil
}
