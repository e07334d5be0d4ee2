package engine

/*
Файл poller.go реализует контроллер периодического обновления панели.

Гарантии:
- Один опрос в полете на экземпляр: все опросы выполняет единственная горутина run(),
  тики и ручные обновления, пришедшие во время опроса, схлопываются в один следующий.
- Stale-response guard: каждый опрос получает возрастающий seq, результат с seq не больше
  последнего примененного отбрасывается.
- Неудачный опрос поднимает флаг ошибки, но не затирает последний удачный снимок.
- После Stop() (или отмены родительского контекста) состояние больше не меняется,
  даже если запрос в полете все-таки вернул данные.
*/

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/emergency-console/internal/domain"
	"github.com/xela07ax/emergency-console/internal/infra"
)

const DefaultPollInterval = 30 * time.Second

var (
	ErrPollerStopped = errors.New("poller is stopped")
	ErrPollerStarted = errors.New("poller is already started")
	ErrPollerIdle    = errors.New("poller is not started")
)

// Fetcher — все, что контроллеру нужно от StatsClient.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.DashboardStats, error)
}

// PollState — копия состояния панели на момент вызова State().
type PollState struct {
	Stats      *domain.DashboardStats // Последний успешно примененный снимок. Не изменять
	Loading    bool                   // Опрос в полете
	Err        error                  // Ошибка последнего примененного опроса
	LastUpdate time.Time              // Время применения Stats
	Seq        uint64                 // Номер последнего примененного опроса
}

// HasData — был ли хоть один удачный опрос.
func (s PollState) HasData() bool { return s.Stats != nil }

type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	state    PollState
	issued   uint64
	inFlight int
	started  bool
	stopped  bool
	cancel   context.CancelFunc

	refresh  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller создает контроллер. requestTimeout ограничивает один опрос и должен быть
// меньше интервала, иначе берется половина интервала.
func NewPoller(fetcher Fetcher, interval, requestTimeout time.Duration, metrics *Metrics, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if requestTimeout <= 0 || requestTimeout >= interval {
		requestTimeout = interval / 2
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		timeout:  requestTimeout,
		metrics:  metrics,
		logger:   logger.Named("poller"),
		now:      time.Now,
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start сразу делает первый опрос и дальше опрашивает раз в интервал.
// Не блокирует. Повторный запуск и запуск после Stop() запрещены.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPollerStopped
	}
	if p.started {
		return ErrPollerStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true

	go p.run(runCtx)
	p.logger.Info("poller started", zap.Duration("interval", p.interval), zap.Duration("timeout", p.timeout))
	return nil
}

// Stop останавливает таймер, отменяет запрос в полете и ждет выхода цикла.
// Идемпотентен, безопасен до Start().
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		// 1. Сначала флаг: с этого момента apply() ничего не меняет
		p.mu.Lock()
		p.stopped = true
		cancel, started := p.cancel, p.started
		p.mu.Unlock()

		// 2. Отменяем контекст цикла и запрос в полете
		if cancel != nil {
			cancel()
		}
		// 3. Ждем, пока горутина выйдет и отпустит тикер
		if started {
			<-p.done
		}
		p.logger.Info("poller stopped")
	})
}

// Refresh просит внеочередной опрос. Если опрос уже идет, новый выполнится сразу после него;
// несколько запросов подряд схлопываются в один.
func (p *Poller) Refresh() error {
	p.mu.Lock()
	stopped, started := p.stopped, p.started
	p.mu.Unlock()

	switch {
	case stopped:
		return ErrPollerStopped
	case !started:
		return ErrPollerIdle
	}

	select {
	case p.refresh <- struct{}{}:
	default:
		// Уже есть отложенный запрос, этого достаточно
	}
	return nil
}

// State возвращает копию текущего состояния.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done закрывается, когда цикл опроса завершился.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	// Отмена родительского контекста — тоже teardown
	defer func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
	}()

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	seq, ok := p.begin()
	if !ok {
		return
	}

	traceID := uuid.New().String()
	fCtx, cancel := context.WithTimeout(infra.WithTraceID(ctx, traceID), p.timeout)
	start := time.Now()
	stats, err := p.fetcher.Fetch(fCtx)
	cancel()
	p.metrics.PollDuration.Observe(time.Since(start).Seconds())

	result := p.apply(seq, stats, err)
	p.metrics.PollsTotal.WithLabelValues(result).Inc()

	fields := []zap.Field{zap.Uint64("seq", seq), zap.String("trace_id", traceID), zap.String("result", result)}
	switch result {
	case PollOK:
		p.logger.Debug("stats applied", append(fields, zap.Int64("total_calls", stats.TotalCalls))...)
	case PollError:
		p.logger.Warn("stats refresh failed, keeping last snapshot", append(fields, zap.Error(err))...)
	default:
		p.logger.Debug("stats result discarded", fields...)
	}
}

// begin выдает номер опроса и включает Loading. false — контроллер уже остановлен.
func (p *Poller) begin() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return 0, false
	}
	p.issued++
	p.inFlight++
	p.state.Loading = true
	return p.issued, true
}

// apply — единственная точка записи снимка. Возвращает исход для метрик.
func (p *Poller) apply(seq uint64, stats domain.DashboardStats, err error) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	// После остановки состояние заморожено целиком
	if p.stopped {
		return PollCancelled
	}

	p.inFlight--
	p.state.Loading = p.inFlight > 0

	if seq <= p.state.Seq {
		return PollStale
	}
	p.state.Seq = seq

	if err != nil {
		// Снимок-заглушку не применяем: последний удачный остается на экране
		p.state.Err = err
		return PollError
	}

	snapshot := stats
	p.state.Stats = &snapshot
	p.state.Err = nil
	p.state.LastUpdate = p.now()
	p.metrics.LastTotalCalls.Set(float64(stats.TotalCalls))
	return PollOK
}
