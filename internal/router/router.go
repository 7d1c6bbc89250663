package router

import (
	"net/http"
	"strings"

	"flora-kart/internal/handler"
	"flora-kart/internal/middleware"
	"flora-kart/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth      *handler.AuthHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Order     *handler.OrderHandler
	Dashboard *handler.DashboardHandler

	// Uploads serves locally stored product images under UploadsPath when set.
	Uploads     http.Handler
	UploadsPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens middleware.TokenVerifier, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> RealIP -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if h.Uploads != nil && h.UploadsPath != "" {
		r.Handle(strings.TrimRight(h.UploadsPath, "/")+"/*", h.Uploads)
	}

	authn := middleware.Authenticate(tokens, logger)
	admin := middleware.RequireRole(model.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/profile", h.Auth.Profile)
				r.Put("/profile", h.Auth.UpdateProfile)
				r.Put("/password", h.Auth.UpdatePassword)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Category.List)
			r.Get("/slug/{slug}", h.Category.GetBySlug)
			r.Get("/{id}", h.Category.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn, admin)
				r.Post("/", h.Category.Create)
				r.Put("/{id}", h.Category.Update)
				r.Delete("/{id}", h.Category.Delete)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/slug/{slug}", h.Product.GetBySlug)
			r.Get("/{id}", h.Product.Get)
			r.Get("/{id}/variants", h.Product.ListVariants)

			r.Group(func(r chi.Router) {
				r.Use(authn, admin)
				r.Post("/", h.Product.Create)
				r.Put("/{id}", h.Product.Update)
				r.Delete("/{id}", h.Product.Delete)
				r.Post("/{id}/variants", h.Product.CreateVariant)
				r.Post("/{id}/image", h.Product.UploadImage)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			// Authenticated by MAC, not by token.
			r.Post("/callback", h.Order.Callback)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/", h.Order.Create)
				r.Get("/my-orders", h.Order.MyOrders)
				r.Get("/{id}", h.Order.Get)
				r.Patch("/{id}/status", h.Order.UpdateStatus)

				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/", h.Order.List)
					r.Delete("/{id}", h.Order.Delete)
				})
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(authn, admin)
			r.Get("/overview", h.Dashboard.Overview)
			r.Get("/recent-orders", h.Dashboard.RecentOrders)
			r.Get("/statistics", h.Dashboard.Statistics)
		})
	})

	return otelhttp.NewHandler(r, "flora-kart")
}
