package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты опроса для лейбла result
const (
	PollOK        = "ok"
	PollError     = "error"
	PollStale     = "stale"     // Результат отброшен: уже применен более свежий
	PollCancelled = "cancelled" // Результат пришел после Stop()
)

type Metrics struct {
	// Polls: исход каждого опроса /stats
	PollsTotal *prometheus.CounterVec

	// Latency: сколько занял один опрос (включая таймаут)
	PollDuration prometheus.Histogram

	// Traffic: запросы к бэкенду по эндпоинту и статусу
	BackendRequests *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker (0 - closed, 1 - half-open, 2 - open)
	CircuitBreakerState *prometheus.GaugeVec

	// Последний примененный total_calls
	LastTotalCalls prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		PollsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_stats_polls_total",
			Help: "Total number of stats polls by outcome.",
		}, []string{"result"}),

		PollDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "console_stats_poll_duration_seconds",
			Help:    "Histogram of stats poll latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		BackendRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Total number of backend requests by endpoint and status.",
		}, []string{"endpoint", "status"}),

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "console_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"endpoint"}),

		LastTotalCalls: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "console_last_applied_total_calls",
			Help: "total_calls of the snapshot currently displayed.",
		}),
	}
}
