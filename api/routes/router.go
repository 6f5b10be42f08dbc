package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phantomlabs/phantom-backend/api/controllers"
	"github.com/phantomlabs/phantom-backend/api/middleware"
	"github.com/phantomlabs/phantom-backend/internal/auth"
	"github.com/phantomlabs/phantom-backend/internal/products"
	"github.com/phantomlabs/phantom-backend/internal/proxies"
	"github.com/phantomlabs/phantom-backend/internal/settings"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/phantomlabs/phantom-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis *redis.Client

	Auth     auth.Service
	Engine   controllers.EngineService
	Monitors controllers.MonitorService
	Products products.Service
	Settings settings.Service
	Proxies  proxies.Service

	Hub       controllers.NotificationHub
	Scheduler controllers.NotificationDismisser

	Metrics http.Handler
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger controllers.Pinger
	if d.Redis != nil {
		redisPinger = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, redisPinger))
	})

	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	loginLimiter := func(next http.Handler) http.Handler { return next }
	if d.Redis != nil {
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginUserLimit,
		)
		loginLimiter = middleware.AuthRateLimit(loginPolicy, d.Redis, logg)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(d.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/status", controllers.Status(d.Engine, logg))

		r.Route("/engine", func(r chi.Router) {
			r.Post("/start", controllers.EngineStart(d.Engine, logg))
			r.Post("/stop", controllers.EngineStop(d.Engine, logg))
		})

		r.Route("/monitors", func(r chi.Router) {
			r.Get("/status", controllers.MonitorsStatus(d.Monitors, logg))
			r.Post("/start", controllers.MonitorsStart(d.Monitors, logg))
			r.Post("/stop", controllers.MonitorsStop(d.Monitors, logg))
			r.Post("/shopify/setup", controllers.MonitorsShopifySetup(d.Monitors, logg))
			r.Post("/shopify/stores", controllers.MonitorsShopifyAddStore(d.Monitors, logg))
			r.Post("/footsites/setup", controllers.MonitorsFootsitesSetup(d.Monitors, logg))
			r.Post("/auto-tasks", controllers.MonitorsAutoTasks(d.Monitors, logg))
			r.Get("/events", controllers.MonitorEvents(d.Monitors, logg))
			r.Get("/events/high-priority", controllers.MonitorHighPriorityEvents(d.Monitors, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/curated", controllers.ProductsList(d.Products, logg))
			r.Post("/curated", controllers.ProductsCreate(d.Products, logg))
			r.Delete("/curated/{productId}", controllers.ProductsDelete(d.Products, logg))
			r.Get("/curated/high-priority", controllers.ProductsHighPriority(d.Products, logg))
			r.Get("/curated/profitable", controllers.ProductsProfitable(d.Products, logg))
			r.Post("/import", controllers.ProductsImport(d.Products, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(d.Settings, logg))
			r.Put("/", controllers.SettingsUpdate(d.Settings, logg))
		})

		r.Route("/proxies", func(r chi.Router) {
			r.Get("/", controllers.ProxiesList(d.Proxies, logg))
			r.Post("/", controllers.ProxiesCreate(d.Proxies, logg))
			r.Post("/test", controllers.ProxiesTest(d.Proxies, logg))
			r.Delete("/{groupId}", controllers.ProxiesDelete(d.Proxies, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(d.Hub, logg))
			r.Get("/stream", controllers.NotificationsStream(d.Hub, logg))
			r.Post("/{notificationId}/dismiss", controllers.NotificationDismiss(d.Scheduler, logg))
		})
	})

	return r
}
