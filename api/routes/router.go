package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/packfinderz-carts/api/controllers"
	cartcontrollers "github.com/angelmondragon/packfinderz-carts/api/controllers/cart"
	"github.com/angelmondragon/packfinderz-carts/api/middleware"
	"github.com/angelmondragon/packfinderz-carts/api/responses"
	"github.com/angelmondragon/packfinderz-carts/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
	"github.com/angelmondragon/packfinderz-carts/pkg/metrics"
)

// NewRouter mounts health, metrics and cart routes. cachePinger may be nil
// when the cart cache is disabled; httpMetrics and gatherer may be nil when
// metrics are disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cachePinger controllers.Pinger,
	carts *cartcontrollers.Controller,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	var errObs responses.ErrorObserver
	if httpMetrics != nil {
		errObs = httpMetrics
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg, errObs),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}
	handle := func(fn responses.HandlerFunc) http.HandlerFunc {
		return responses.Handle(logg, errObs, fn)
	}

	r.NotFound(handle(func(w http.ResponseWriter, r *http.Request) error {
		return pkgerrors.New(pkgerrors.CodeRouting, "route "+r.Method+" "+r.URL.Path+" not found")
	}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	if cfg.Metrics.Enabled && gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", handle(carts.CreateCart))
		r.Route("/{cid}", func(r chi.Router) {
			r.Get("/", handle(carts.GetCartByID))
			r.Put("/", handle(carts.UpdateCart))
			r.Delete("/", handle(carts.DeleteAllProductsCart))

			r.Route("/products/{pid}", func(r chi.Router) {
				r.With(middleware.Auth(cfg.JWT, logg, errObs)).Post("/", handle(carts.AddProductToCart))
				r.Put("/", handle(carts.UpdateProductQuantityInCart))
				r.Delete("/", handle(carts.DeleteProductFromCart))
			})
		})
	})

	return r
}
