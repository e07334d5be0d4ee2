package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/emergency-console/internal/console/handler"
	"github.com/xela07ax/emergency-console/internal/engine"
	"github.com/xela07ax/emergency-console/internal/infra"
)

// Ручное обновление: раз в секунду, burst 2
const (
	refreshRate  = rate.Limit(1)
	refreshBurst = 2
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// nil — /metrics не публикуется
	gatherer prometheus.Gatherer

	dashHandler   *handler.DashboardHandler // /api/v1/dashboard
	refreshLimits *rate.Limiter
}

// NewConsoleServer инициализирует сервер консоли со всеми зависимостями
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	dashH *handler.DashboardHandler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("console-api"),
		cfg:           cfg,
		gatherer:      gatherer,
		dashHandler:   dashH,
		refreshLimits: rate.NewLimiter(refreshRate, refreshBurst),
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(engine.TracingMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. Служебные роуты ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.gatherer != nil && s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// --- 3. Панель оператора ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", s.dashHandler.GetScreen)
		r.With(engine.RateLimitMiddleware(s.refreshLimits)).
			Post("/dashboard/refresh", s.dashHandler.Refresh)

		r.Get("/history", s.dashHandler.GetHistory)
		r.Post("/classify", s.dashHandler.Classify)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
