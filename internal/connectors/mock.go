package connectors

import (
	"context"
	"fmt"
	"math/rand/v2" // Используем v2 для Go 1.25
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/emergency-console/internal/domain"
)

// MockBackend имитирует сервис классификации для локального запуска без бэкенда.
// Каждый вызов GetStats "принимает" несколько новых звонков.
type MockBackend struct {
	mu    sync.Mutex
	stats domain.DashboardStats
	calls []domain.ClassifiedCall

	// MinLatency/MaxLatency задают диапазон имитируемой задержки
	MinLatency time.Duration
	MaxLatency time.Duration
}

var mockRegions = []string{"Zona Norte", "Zona Sul", "Zona Leste", "Zona Oeste", "Centro"}

func NewMockBackend() *MockBackend {
	s := domain.ZeroStats()
	s.CallsByRegion = map[string]int64{}
	s.CallsByUrgency = map[domain.UrgencyLevel]int64{}
	return &MockBackend{
		stats:      s,
		MinLatency: 50 * time.Millisecond,
		MaxLatency: 300 * time.Millisecond,
	}
}

func (m *MockBackend) wait(ctx context.Context) error {
	latency := m.MinLatency
	if spread := m.MaxLatency - m.MinLatency; spread > 0 {
		latency += time.Duration(rand.Int64N(int64(spread)))
	}
	select {
	case <-time.After(latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockBackend) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < 1+rand.IntN(3); i++ {
		m.record(m.randomCall(""))
	}
	return m.snapshot(), nil
}

func (m *MockBackend) GetHistory(ctx context.Context, limit int) ([]domain.ClassifiedCall, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.calls) {
		limit = len(m.calls)
	}
	out := make([]domain.ClassifiedCall, limit)
	copy(out, m.calls[:limit])
	return out, nil
}

func (m *MockBackend) Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.randomCall(text)
	m.record(call)
	return &domain.ClassificationResponse{
		Category:   call.Category,
		Confidence: call.Confidence,
		Reasoning:  call.Reasoning,
	}, nil
}

func (m *MockBackend) randomCall(transcript string) domain.ClassifiedCall {
	category := domain.Categories[rand.IntN(len(domain.Categories))]
	urgency := domain.UrgencyOrder[rand.IntN(len(domain.UrgencyOrder))]
	if transcript == "" {
		transcript = "chamada simulada"
	}
	return domain.ClassifiedCall{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Transcript:   transcript,
		Category:     category,
		Confidence:   0.5 + rand.Float64()/2,
		UrgencyLevel: urgency,
		Reasoning:    "simulated classification",
	}
}

// record требует удержания m.mu.
func (m *MockBackend) record(call domain.ClassifiedCall) {
	n := float64(m.stats.TotalCalls)
	m.stats.AverageConfidence = (m.stats.AverageConfidence*n + call.Confidence) / (n + 1)
	m.stats.TotalCalls++
	m.stats.CallsByCategory[call.Category]++
	m.stats.CallsByUrgency[call.UrgencyLevel]++
	m.stats.CallsByRegion[mockRegions[rand.IntN(len(mockRegions))]]++

	m.calls = append([]domain.ClassifiedCall{call}, m.calls...)
	if len(m.calls) > 50 {
		m.calls = m.calls[:50]
	}
}

// snapshot отдает глубокую копию, чтобы снимок оставался неизменным.
func (m *MockBackend) snapshot() *domain.DashboardStats {
	s := m.stats
	s.CallsByCategory = make(map[domain.Category]int64, len(m.stats.CallsByCategory))
	for k, v := range m.stats.CallsByCategory {
		s.CallsByCategory[k] = v
	}
	s.CallsByRegion = make(map[string]int64, len(m.stats.CallsByRegion))
	for k, v := range m.stats.CallsByRegion {
		s.CallsByRegion[k] = v
	}
	s.CallsByUrgency = make(map[domain.UrgencyLevel]int64, len(m.stats.CallsByUrgency))
	for k, v := range m.stats.CallsByUrgency {
		s.CallsByUrgency[k] = v
	}
	n := min(len(m.calls), 10)
	s.LastCalls = make([]domain.ClassifiedCall, n)
	copy(s.LastCalls, m.calls[:n])
	return &s
}
