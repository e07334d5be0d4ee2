package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/emergency-console/internal/domain"
	"github.com/xela07ax/emergency-console/internal/engine"
)

var errBackend = errors.New("backend unavailable")

func statsWith(total, prank int64) *domain.DashboardStats {
	s := domain.ZeroStats()
	s.TotalCalls = total
	s.CallsByCategory[domain.CategoryPrank] = prank
	return &s
}

func TestBuildScreen(t *testing.T) {
	updated := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)

	cases := []struct {
		name      string
		state     engine.PollState
		mode      domain.ScreenMode
		badge     domain.Badge
		errText   string
		retry     bool
		hasView   bool
		updatedAt string
	}{
		{
			name:  "initial load in flight",
			state: engine.PollState{Loading: true},
			mode:  domain.ScreenLoading,
		},
		{
			name:  "nothing polled yet",
			state: engine.PollState{},
			mode:  domain.ScreenLoading,
		},
		{
			name:    "initial load failed",
			state:   engine.PollState{Err: errBackend, Seq: 1},
			mode:    domain.ScreenError,
			errText: MsgLoadFailed,
			retry:   true,
		},
		{
			name:  "retry of failed initial load in flight",
			state: engine.PollState{Err: errBackend, Loading: true, Seq: 1},
			mode:  domain.ScreenLoading,
		},
		{
			name:      "ready",
			state:     engine.PollState{Stats: statsWith(5, 1), LastUpdate: updated, Seq: 1},
			mode:      domain.ScreenReady,
			badge:     domain.BadgeOnline,
			hasView:   true,
			updatedAt: "14:05:09",
		},
		{
			name:      "background refresh in flight",
			state:     engine.PollState{Stats: statsWith(5, 1), Loading: true, LastUpdate: updated, Seq: 1},
			mode:      domain.ScreenReady,
			badge:     domain.BadgeUpdating,
			hasView:   true,
			updatedAt: "14:05:09",
		},
		{
			name:      "background refresh failed",
			state:     engine.PollState{Stats: statsWith(5, 1), Err: errBackend, LastUpdate: updated, Seq: 2},
			mode:      domain.ScreenReady,
			badge:     domain.BadgeError,
			errText:   MsgRefreshFailed,
			hasView:   true,
			updatedAt: "14:05:09",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := BuildScreen(tc.state)
			assert.Equal(t, tc.mode, s.Mode)
			assert.Equal(t, tc.badge, s.Badge)
			assert.Equal(t, tc.errText, s.Error)
			assert.Equal(t, tc.retry, s.RetryAvailable)
			assert.Equal(t, tc.updatedAt, s.LastUpdate)
			assert.Equal(t, tc.hasView, s.View != nil)
		})
	}
}

func TestBuildScreenErrorShowsNoNumbers(t *testing.T) {
	s := BuildScreen(engine.PollState{Err: errBackend, Seq: 1})
	assert.Nil(t, s.View)
}

// sequenceFetcher отдает ответы по очереди, последний повторяется.
type sequenceFetcher struct {
	mu        sync.Mutex
	responses []func() (domain.DashboardStats, error)
	n         int
}

func (f *sequenceFetcher) Fetch(ctx context.Context) (domain.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.n, len(f.responses)-1)
	f.n++
	return f.responses[i]()
}

func ok(s *domain.DashboardStats) func() (domain.DashboardStats, error) {
	return func() (domain.DashboardStats, error) { return *s, nil }
}

func fail() (domain.DashboardStats, error) { return domain.ZeroStats(), errBackend }

type noCalls struct{}

func (noCalls) History(context.Context, int) []domain.ClassifiedCall { return []domain.ClassifiedCall{} }
func (noCalls) Classify(context.Context, string) (*domain.ClassificationResponse, error) {
	return nil, errBackend
}

func startService(t *testing.T, f engine.Fetcher) (*DashboardService, *engine.Poller) {
	t.Helper()
	p := engine.NewPoller(f, time.Hour, time.Second, nil, zap.NewNop())
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(p.Stop)
	return NewDashboardService(p, noCalls{}, zap.NewNop()), p
}

func waitScreen(t *testing.T, svc *DashboardService, cond func(domain.Screen) bool) domain.Screen {
	t.Helper()
	require.Eventually(t, func() bool { return cond(svc.Screen()) }, time.Second, 5*time.Millisecond)
	return svc.Screen()
}

func TestScenarioFirstLoadFailsThenRetrySucceeds(t *testing.T) {
	f := &sequenceFetcher{responses: []func() (domain.DashboardStats, error){fail, ok(statsWith(42, 10))}}
	svc, _ := startService(t, f)

	s := waitScreen(t, svc, func(s domain.Screen) bool { return s.Mode == domain.ScreenError })
	assert.True(t, s.RetryAvailable)
	assert.Equal(t, MsgLoadFailed, s.Error)
	assert.Nil(t, s.View)

	require.NoError(t, svc.Refresh())

	s = waitScreen(t, svc, func(s domain.Screen) bool { return s.Mode == domain.ScreenReady && s.Badge == domain.BadgeOnline })
	require.NotNil(t, s.View)
	assert.Empty(t, s.Error)
	assert.Equal(t, int64(42), s.View.Headline.TotalCalls)
	assert.Equal(t, int64(10), s.View.Headline.PrankCalls)
}

func TestScenarioRefreshFailureKeepsLastGoodData(t *testing.T) {
	f := &sequenceFetcher{responses: []func() (domain.DashboardStats, error){ok(statsWith(5, 0)), fail}}
	svc, p := startService(t, f)

	waitScreen(t, svc, func(s domain.Screen) bool { return s.Badge == domain.BadgeOnline })
	require.NoError(t, svc.Refresh())

	s := waitScreen(t, svc, func(s domain.Screen) bool { return s.Badge == domain.BadgeError })
	assert.Equal(t, domain.ScreenReady, s.Mode)
	assert.Equal(t, MsgRefreshFailed, s.Error)
	require.NotNil(t, s.View)
	assert.Equal(t, int64(5), s.View.Headline.TotalCalls)
	assert.Equal(t, uint64(2), p.State().Seq)
}

func TestRefreshAfterStopIsRejected(t *testing.T) {
	f := &sequenceFetcher{responses: []func() (domain.DashboardStats, error){ok(statsWith(1, 0))}}
	svc, p := startService(t, f)

	p.Stop()
	assert.ErrorIs(t, svc.Refresh(), engine.ErrPollerStopped)
}

func TestClassifyRejectsBlankText(t *testing.T) {
	svc := NewDashboardService(nil, noCalls{}, zap.NewNop())

	_, err := svc.Classify(context.Background(), "  \n\t ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = svc.Classify(context.Background(), "socorro")
	assert.ErrorIs(t, err, errBackend)
}
