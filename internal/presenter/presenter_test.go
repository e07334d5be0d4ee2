package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/emergency-console/internal/domain"
)

func sampleStats() domain.DashboardStats {
	s := domain.ZeroStats()
	s.TotalCalls = 40
	s.CallsByCategory[domain.CategoryPolice] = 12
	s.CallsByCategory[domain.CategoryMedical] = 10
	s.CallsByCategory[domain.CategoryPrank] = 5
	s.CallsByCategory[domain.CategoryDisguised] = 3
	s.CallsByRegion = map[string]int64{"Zona Sul": 8, "Centro": 8, "Zona Norte": 20, "Guarulhos": 1}
	s.CallsByUrgency = map[domain.UrgencyLevel]int64{
		domain.UrgencyCritical: 4,
		domain.UrgencyHigh:     9,
		domain.UrgencyLow:      2,
	}
	s.AverageConfidence = 0.875
	s.LastCalls = []domain.ClassifiedCall{
		{ID: "c2", Category: domain.CategoryFire, Confidence: 0.914, UrgencyLevel: domain.UrgencyHigh},
		{ID: "c1", Category: domain.CategoryPrank, Confidence: 0.5},
	}
	return s
}

func TestPresentIsDeterministic(t *testing.T) {
	s := sampleStats()
	first := Present(s)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Present(s))
	}
}

func TestPresentHeadline(t *testing.T) {
	v := Present(sampleStats())
	assert.Equal(t, domain.Headline{TotalCalls: 40, PrankCalls: 5, DisguisedCalls: 3, CriticalCalls: 4}, v.Headline)
	assert.Equal(t, 88, v.Confidence)
}

func TestPresentHeadlineDefaultsToZero(t *testing.T) {
	v := Present(domain.DashboardStats{TotalCalls: 7})
	assert.Equal(t, domain.Headline{TotalCalls: 7}, v.Headline)
	assert.Nil(t, v.Regions)
	assert.Nil(t, v.Urgency)
	assert.Len(t, v.Categories, len(domain.Categories))
	assert.NotNil(t, v.LastCalls)
}

func TestCategoriesFixedOrderAndPercent(t *testing.T) {
	got := Categories(sampleStats())
	require.Len(t, got, 6)

	order := make([]domain.Category, 0, len(got))
	for _, c := range got {
		order = append(order, c.Category)
	}
	assert.Equal(t, domain.Categories[:], order)

	assert.Equal(t, int64(12), got[0].Count)
	assert.InDelta(t, 30.0, got[0].Percent, 1e-9)
	assert.Equal(t, 30, got[0].Rounded)
	assert.Equal(t, "Polícia", got[0].Label)

	// 5/40 = 12.5% -> 13
	assert.Equal(t, domain.CategoryPrank, got[3].Category)
	assert.Equal(t, 13, got[3].Rounded)

	assert.Equal(t, "Chamada Disfarçada", got[5].Label)
	assert.Equal(t, "#FF8C42", got[5].Color)
}

func TestPercentBounds(t *testing.T) {
	cases := []struct {
		name         string
		count, total int64
		want         float64
	}{
		{"zero total", 10, 0, 0},
		{"negative total", 10, -5, 0},
		{"zero count", 0, 10, 0},
		{"negative count", -3, 10, 0},
		{"half", 5, 10, 50},
		{"count above total is clamped", 15, 10, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Percent(tc.count, tc.total)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestAllPercentagesZeroWhenTotalIsZero(t *testing.T) {
	s := sampleStats()
	s.TotalCalls = 0

	v := Present(s)
	for _, c := range v.Categories {
		assert.Zero(t, c.Percent, c.Category)
		assert.Zero(t, c.Rounded, c.Category)
	}
	for _, r := range v.Regions {
		assert.Zero(t, r.Percent, r.Region)
	}
	for _, u := range v.Urgency {
		assert.Zero(t, u.Percent, u.Level)
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 13, RoundHalfUp(12.5))
	assert.Equal(t, 12, RoundHalfUp(12.49))
	assert.Equal(t, 0, RoundHalfUp(0.4))
	assert.Equal(t, 100, RoundHalfUp(99.5))
}

func TestRegionsRankingTieBreak(t *testing.T) {
	s := domain.ZeroStats()
	s.TotalCalls = 20
	s.CallsByRegion = map[string]int64{"A": 5, "B": 5, "C": 10}

	got := Regions(s)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{got[0].Region, got[1].Region, got[2].Region})
	assert.Equal(t, 50, got[0].Rounded)
	assert.Equal(t, 25, got[1].Rounded)
}

func TestRegionsColorsAndFallback(t *testing.T) {
	got := Regions(sampleStats())
	require.Len(t, got, 4)

	assert.Equal(t, "Zona Norte", got[0].Region)
	assert.Equal(t, "#3498DB", got[0].Color)
	// 8 и 8: по алфавиту Centro раньше Zona Sul
	assert.Equal(t, "Centro", got[1].Region)
	assert.Equal(t, "Zona Sul", got[2].Region)
	assert.Equal(t, "Guarulhos", got[3].Region)
	assert.Equal(t, domain.RegionFallbackColor, got[3].Color)
}

func TestRegionsAbsentOrEmpty(t *testing.T) {
	s := domain.ZeroStats()
	assert.Nil(t, Regions(s))
	s.CallsByRegion = map[string]int64{}
	assert.Nil(t, Regions(s))
}

func TestUrgencyOmitsZeroTiers(t *testing.T) {
	s := domain.ZeroStats()
	s.TotalCalls = 4
	s.CallsByUrgency = map[domain.UrgencyLevel]int64{
		domain.UrgencyCritical: 0,
		domain.UrgencyHigh:     3,
		domain.UrgencyMedium:   0,
		domain.UrgencyLow:      1,
	}

	got := Urgency(s)
	require.Len(t, got, 2)
	assert.Equal(t, domain.UrgencyHigh, got[0].Level)
	assert.Equal(t, domain.UrgencyLow, got[1].Level)
	assert.Equal(t, 75, got[0].Rounded)
	assert.Equal(t, "Alta", got[0].Label)
	assert.Equal(t, "#28A745", got[1].Color)
}

func TestUrgencyFixedOrder(t *testing.T) {
	got := Urgency(sampleStats())
	require.Len(t, got, 3)
	assert.Equal(t, []domain.UrgencyLevel{domain.UrgencyCritical, domain.UrgencyHigh, domain.UrgencyLow},
		[]domain.UrgencyLevel{got[0].Level, got[1].Level, got[2].Level})
}

func TestLastCallsRows(t *testing.T) {
	v := Present(sampleStats())
	require.Len(t, v.LastCalls, 2)

	assert.Equal(t, "c2", v.LastCalls[0].ID)
	assert.Equal(t, "Bombeiros", v.LastCalls[0].CategoryLabel)
	assert.Equal(t, "Alta", v.LastCalls[0].UrgencyLabel)
	assert.Equal(t, 91, v.LastCalls[0].ConfidencePct)

	assert.Empty(t, v.LastCalls[1].UrgencyLabel)
	assert.Equal(t, 50, v.LastCalls[1].ConfidencePct)
}
