package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/xela07ax/emergency-console/internal/domain"
	"github.com/xela07ax/emergency-console/internal/infra"
)

const DefaultHistoryLimit = 10

// StatsClient — граница, за которую ошибки получения статистики не выходят.
type StatsClient struct {
	backend      Backend
	historyLimit int
	logger       *zap.Logger
}

func NewStatsClient(backend Backend, historyLimit int, logger *zap.Logger) *StatsClient {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &StatsClient{
		backend:      backend,
		historyLimit: historyLimit,
		logger:       logger.With(zap.String("mod", "stats-client")),
	}
}

// Fetch всегда возвращает пригодный снимок: при любой ошибке — ZeroStats().
// Ошибка отдается только как сигнал для флага error, сам сбой уже залогирован здесь.
// Ретраев нет, повтор — следующий тик.
func (c *StatsClient) Fetch(ctx context.Context) (domain.DashboardStats, error) {
	stats, err := c.backend.GetStats(ctx)
	if err != nil {
		c.logger.Error("failed to fetch dashboard stats",
			zap.String("trace_id", infra.TraceID(ctx)),
			zap.Error(err))
		return domain.ZeroStats(), err
	}
	return *stats, nil
}

// History — последние звонки. limit <= 0 — лимит по умолчанию. При ошибке пустой срез.
func (c *StatsClient) History(ctx context.Context, limit int) []domain.ClassifiedCall {
	if limit <= 0 {
		limit = c.historyLimit
	}
	calls, err := c.backend.GetHistory(ctx, limit)
	if err != nil {
		c.logger.Error("failed to fetch call history",
			zap.Int("limit", limit),
			zap.String("trace_id", infra.TraceID(ctx)),
			zap.Error(err))
		return []domain.ClassifiedCall{}
	}
	if calls == nil {
		return []domain.ClassifiedCall{}
	}
	return calls
}

// Classify пробрасывает ошибку вызывающему: у потока классификации нет безопасного дефолта.
func (c *StatsClient) Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error) {
	resp, err := c.backend.Classify(ctx, text)
	if err != nil {
		c.logger.Error("failed to classify emergency",
			zap.String("trace_id", infra.TraceID(ctx)),
			zap.Error(err))
		return nil, err
	}
	return resp, nil
}
