package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xela07ax/emergency-console/internal/domain"
	"github.com/xela07ax/emergency-console/internal/engine"
	"github.com/xela07ax/emergency-console/internal/presenter"
)

// Тексты ошибок для оператора, как в исходной панели
const (
	MsgLoadFailed    = "Erro ao carregar dados do painel"
	MsgRefreshFailed = "Erro ao atualizar dados do painel"
)

// LastUpdateLayout — формат времени "Atualizado às 14:05:09".
const LastUpdateLayout = "15:04:05"

// PollController описывает, что нам нужно от контроллера опроса
type PollController interface {
	State() engine.PollState
	Refresh() error
}

// CallsProvider — история и классификация, ошибки истории уже погашены в StatsClient.
type CallsProvider interface {
	History(ctx context.Context, limit int) []domain.ClassifiedCall
	Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error)
}

type DashboardService struct {
	poller PollController
	calls  CallsProvider
	logger *zap.Logger
}

func NewDashboardService(poller PollController, calls CallsProvider, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		poller: poller,
		calls:  calls,
		logger: logger.Named("dashboard-service"),
	}
}

// Screen — текущее состояние экрана оператора.
func (s *DashboardService) Screen() domain.Screen {
	return BuildScreen(s.poller.State())
}

// Refresh — кнопки "Atualizar Dados" и "Tentar Novamente".
func (s *DashboardService) Refresh() error {
	if err := s.poller.Refresh(); err != nil {
		s.logger.Warn("manual refresh rejected", zap.Error(err))
		return err
	}
	return nil
}

func (s *DashboardService) History(ctx context.Context, limit int) []domain.ClassifiedCall {
	return s.calls.History(ctx, limit)
}

// ErrEmptyText — классифицировать нечего.
var ErrEmptyText = errors.New("text is required")

func (s *DashboardService) Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	return s.calls.Classify(ctx, text)
}

// BuildScreen выводит экран из состояния контроллера.
// Первая загрузка и фоновые обновления ведут себя по-разному:
//   - данных нет, идет опрос — спиннер;
//   - данных нет, опрос провалился — экран ошибки с кнопкой повтора, без цифр;
//   - данные есть — панель всегда видна, сбой обновления лишь меняет бейдж.
func BuildScreen(st engine.PollState) domain.Screen {
	if !st.HasData() {
		if st.Err != nil && !st.Loading {
			return domain.Screen{
				Mode:           domain.ScreenError,
				RetryAvailable: true,
				Error:          MsgLoadFailed,
			}
		}
		return domain.Screen{Mode: domain.ScreenLoading}
	}

	view := presenter.Present(*st.Stats)
	screen := domain.Screen{
		Mode:       domain.ScreenReady,
		Badge:      domain.BadgeOnline,
		LastUpdate: st.LastUpdate.Format(LastUpdateLayout),
		View:       &view,
	}
	switch {
	case st.Loading:
		screen.Badge = domain.BadgeUpdating
	case st.Err != nil:
		screen.Badge = domain.BadgeError
		screen.Error = MsgRefreshFailed
	}
	return screen
}
