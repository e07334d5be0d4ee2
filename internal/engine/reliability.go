package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/emergency-console/internal/connectors"
	"github.com/xela07ax/emergency-console/internal/domain"
	"github.com/xela07ax/emergency-console/internal/infra"
)

// Backend — контракт сервиса классификации. Реализуют HTTPBackend, MockBackend
// и сам ReliabilityWrapper.
type Backend interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
	GetHistory(ctx context.Context, limit int) ([]domain.ClassifiedCall, error)
	Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error)
}

const (
	endpointStats    = "stats"
	endpointHistory  = "history"
	endpointClassify = "classify"
)

// ReliabilityWrapper добавляет к бэкенду таймауты и Circuit Breaker.
// /stats и /history не ретраятся: повтором служит следующий тик опроса.
// /classify дополнительно проходит через лимитер и retry.
type ReliabilityWrapper struct {
	next     Backend
	timeout  time.Duration
	breakers map[string]*gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	attempts uint
	metrics  *Metrics
	logger   *zap.Logger
}

func NewReliabilityWrapper(next Backend, cfg infra.BackendConfig, metrics *Metrics, logger *zap.Logger) *ReliabilityWrapper {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	w := &ReliabilityWrapper{
		next:     next,
		timeout:  cfg.RequestTimeout,
		breakers: make(map[string]*gobreaker.CircuitBreaker, 3),
		limiter:  rate.NewLimiter(classifyLimit(cfg.ClassifyRPS), max(cfg.ClassifyBurst, 1)),
		attempts: max(cfg.ClassifyAttempts, 1),
		metrics:  metrics,
		logger:   logger.With(zap.String("mod", "reliability")),
	}

	for _, endpoint := range []string{endpointStats, endpointHistory, endpointClassify} {
		w.breakers[endpoint] = w.newBreaker(endpoint, cfg)
		metrics.CircuitBreakerState.WithLabelValues(endpoint).Set(float64(gobreaker.StateClosed))
	}
	return w
}

func (w *ReliabilityWrapper) newBreaker(endpoint string, cfg infra.BackendConfig) *gobreaker.CircuitBreaker {
	failures := max(cfg.CBFailures, 1)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend-" + endpoint,
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 4xx (кроме 429) — бэкенд жив, просто отверг запрос. Отмена вызывающей стороной тоже не сбой
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			code := connectors.StatusCode(err)
			return code >= 400 && code < 500 && code != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			w.metrics.CircuitBreakerState.WithLabelValues(endpoint).Set(float64(to))
			w.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func classifyLimit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

func (w *ReliabilityWrapper) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	return guarded(ctx, w, endpointStats, w.next.GetStats)
}

func (w *ReliabilityWrapper) GetHistory(ctx context.Context, limit int) ([]domain.ClassifiedCall, error) {
	return guarded(ctx, w, endpointHistory, func(ctx context.Context) ([]domain.ClassifiedCall, error) {
		return w.next.GetHistory(ctx, limit)
	})
}

func (w *ReliabilityWrapper) Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error) {
	// 1. Rate Limiter
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	// 2. Retry поверх Circuit Breaker: открытый CB сразу прекращает попытки
	var result *domain.ClassificationResponse
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(w.attempts),
		retry.RetryIf(retryable),
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			// Если бэкенд прислал Retry-After — слушаемся
			var tErr *connectors.ThrottleError
			if errors.As(err, &tErr) && tErr.RetryAfter > 0 {
				return tErr.RetryAfter
			}
			// В остальных случаях (сетевой лаг, 500-ка) — стандартный экспоненциальный бэкофф
			return retry.BackOffDelay(n, err, config)
		}),
	)

	err := r.Do(func() error {
		var callErr error
		result, callErr = guarded(ctx, w, endpointClassify, func(ctx context.Context) (*domain.ClassificationResponse, error) {
			return w.next.Classify(ctx, text)
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// guarded выполняет один вызов через Circuit Breaker с таймаутом на запрос.
func guarded[T any](ctx context.Context, w *ReliabilityWrapper, endpoint string, call func(context.Context) (T, error)) (T, error) {
	var zero T

	res, err := w.breakers[endpoint].Execute(func() (interface{}, error) {
		tCtx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()
		return call(tCtx)
	})
	w.metrics.BackendRequests.WithLabelValues(endpoint, statusLabel(err)).Inc()
	if err != nil {
		return zero, fmt.Errorf("%s: %w", endpoint, err)
	}
	return res.(T), nil
}

// retryable — не ретраим открытый CB, отмену и явные отказы 4xx.
func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	code := connectors.StatusCode(err)
	return code == 0 || code == http.StatusTooManyRequests || code >= 500
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	if code := connectors.StatusCode(err); code != 0 {
		return strconv.Itoa(code)
	}
	return "transport"
}
