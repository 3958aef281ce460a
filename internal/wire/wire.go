package wire

import (
	"net/http"

	"seat-reservation/internal/adaptor"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/middleware"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the router and the services behind it
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes. rdb may be nil, which turns
// rate limiting off.
func Wiring(repo *repository.Repository, deps usecase.Dependencies, rdb *redis.Client, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, deps, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, deps, rdb, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	deps usecase.Dependencies,
	rdb *redis.Client,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Identity())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	limit := middleware.RateLimit(config.RateLimit, rdb, logger)

	wireSeat(r, handler.Seat, limit)
	wireBooking(r, handler.Booking, limit)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
