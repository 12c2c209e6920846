package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/ratelimit"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// Options configures authentication, rate limiting and the metrics endpoint.
type Options struct {
	AdminTokens    middleware.TokenValidator
	UserTokens     middleware.TokenValidator
	Limiter        ratelimit.Limiter // nil disables rate limiting
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler // nil disables /metrics
	AllowedOrigin  string
	TrustedProxies middleware.TrustedProxies // peers allowed to set X-Forwarded-For
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, fn http.HandlerFunc, wrap ...func(http.Handler) http.Handler) {
		var next http.Handler = fn
		for i := len(wrap) - 1; i >= 0; i-- {
			next = wrap[i](next)
		}
		mux.Handle(pattern, middleware.Route(pattern, next))
	}

	limited := func(route string) func(http.Handler) http.Handler {
		if opts.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(opts.Limiter, route, opts.TrustedProxies, opts.Metrics, logger)
	}
	admin := middleware.AdminAuth(opts.AdminTokens, logger)

	// Health check endpoint (no authentication required)
	handle("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", middleware.Route("GET /metrics", opts.MetricsHandler))
	}

	// Storefront
	handle("GET /api/products", h.Products.List)
	handle("GET /api/delivery-zones", h.Checkout.ListZones)
	handle("POST /api/delivery/calculate", h.Checkout.CalculateDelivery)
	handle("POST /api/checkout/quote", h.Checkout.Quote, limited("checkout_quote"))
	handle("POST /api/coupons/validate", h.Checkout.ValidateCoupon, limited("coupon_validate"))

	// Checkout and tracking
	handle("POST /api/orders/whatsapp", h.Orders.CreateWhatsApp, limited("checkout"))
	handle("POST /api/checkout/initialize", h.Orders.InitializeCard, limited("checkout"))
	handle("GET /api/paystack/verify/{reference}", h.Orders.VerifyPayment)
	handle("POST /api/paystack/webhook", h.Orders.Webhook)
	handle("GET /api/orders/me", h.Orders.ListMine)
	handle("GET /api/orders/{reference}", h.Orders.GetByReference)

	// Back office
	handle("POST /api/admin/login", h.Admin.Login, limited("admin_login"))
	handle("GET /api/admin/orders", h.Admin.ListOrders, admin)
	handle("GET /api/admin/orders/review", h.Admin.ReviewQueue, admin)
	handle("PATCH /api/admin/orders/{id}/status", h.Admin.UpdateStatus, admin)
	handle("POST /api/admin/orders/{id}/notes", h.Admin.AddNote, admin)
	handle("POST /api/admin/orders/{id}/review", h.Admin.ResolveReview, admin)
	handle("GET /api/admin/orders/{id}/timeline", h.Admin.Timeline, admin)
	handle("GET /api/admin/coupons", h.Admin.ListCoupons, admin)
	handle("POST /api/admin/coupons", h.Admin.CreateCoupon, admin)
	handle("POST /api/admin/coupons/import", h.Admin.ImportCoupons, admin)
	handle("GET /api/admin/promos", h.Admin.ListPromos, admin)
	handle("POST /api/admin/promos", h.Admin.CreatePromo, admin)
	handle("POST /api/admin/delivery-zones", h.Admin.UpsertZone, admin)
	handle("POST /api/admin/products", h.Products.Create, admin)

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> OptionalUser
	var root http.Handler = mux
	root = middleware.OptionalUser(opts.UserTokens, logger)(root)
	root = middleware.CORS(opts.AllowedOrigin)(root)
	root = middleware.Logging(logger, opts.Metrics)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestID(root)

	return root
}
