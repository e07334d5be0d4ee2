// Package presenter превращает снимок статистики в модель для отрисовки.
// Чистые функции: без I/O, без состояния, одинаковый вход — одинаковый выход.
package presenter

import (
	"math"
	"sort"

	"github.com/xela07ax/emergency-console/internal/domain"
)

// Present строит модель панели из одного снимка. Знаменатель всех процентов —
// total_calls этого же снимка.
func Present(s domain.DashboardStats) domain.DashboardView {
	return domain.DashboardView{
		Headline:   headline(s),
		Categories: Categories(s),
		Regions:    Regions(s),
		Urgency:    Urgency(s),
		Confidence: RoundHalfUp(clamp(s.AverageConfidence, 0, 1) * 100),
		LastCalls:  callRows(s.LastCalls),
	}
}

func headline(s domain.DashboardStats) domain.Headline {
	return domain.Headline{
		TotalCalls:     nonNegative(s.TotalCalls),
		PrankCalls:     nonNegative(s.CategoryCount(domain.CategoryPrank)),
		DisguisedCalls: nonNegative(s.CategoryCount(domain.CategoryDisguised)),
		CriticalCalls:  nonNegative(s.UrgencyCount(domain.UrgencyCritical)),
	}
}

// Categories — все шесть категорий в фиксированном порядке, включая нулевые.
func Categories(s domain.DashboardStats) []domain.CategoryShare {
	out := make([]domain.CategoryShare, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, domain.CategoryShare{
			Category: c,
			Meta:     c.Meta(),
			Share:    share(s.CategoryCount(c), s.TotalCalls),
		})
	}
	return out
}

// Regions — регионы по убыванию числа звонков, при равенстве по имени.
// nil, если карты регионов нет или она пуста.
func Regions(s domain.DashboardStats) []domain.RegionShare {
	if len(s.CallsByRegion) == 0 {
		return nil
	}
	out := make([]domain.RegionShare, 0, len(s.CallsByRegion))
	for region, count := range s.CallsByRegion {
		out = append(out, domain.RegionShare{
			Region: region,
			Color:  domain.RegionColor(region),
			Share:  share(count, s.TotalCalls),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// Urgency — уровни от критического к низкому, нулевые уровни не выводятся совсем.
// nil, если в снимке нет карты срочности или все уровни нулевые.
func Urgency(s domain.DashboardStats) []domain.UrgencyShare {
	var out []domain.UrgencyShare
	for _, level := range domain.UrgencyOrder {
		count := nonNegative(s.UrgencyCount(level))
		if count == 0 {
			continue
		}
		out = append(out, domain.UrgencyShare{
			Level: level,
			Meta:  level.Meta(),
			Share: share(count, s.TotalCalls),
		})
	}
	return out
}

func callRows(calls []domain.ClassifiedCall) []domain.CallRow {
	rows := make([]domain.CallRow, 0, len(calls))
	for _, c := range calls {
		row := domain.CallRow{
			ClassifiedCall: c,
			CategoryLabel:  c.Category.Meta().Label,
			ConfidencePct:  RoundHalfUp(clamp(c.Confidence, 0, 1) * 100),
		}
		if c.UrgencyLevel != "" {
			row.UrgencyLabel = c.UrgencyLevel.Meta().Label
		}
		rows = append(rows, row)
	}
	return rows
}

func share(count, total int64) domain.Share {
	count = nonNegative(count)
	p := Percent(count, total)
	return domain.Share{Count: count, Percent: p, Rounded: RoundHalfUp(p)}
}

// Percent — count/total*100 в пределах [0, 100]. Деление на ноль дает 0.
func Percent(count, total int64) float64 {
	if total <= 0 || count <= 0 {
		return 0
	}
	return clamp(float64(count)/float64(total)*100, 0, 100)
}

// RoundHalfUp — округление до целого, половина вверх (12.5 -> 13).
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
