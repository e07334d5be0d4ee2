package domain

// DashboardStats — снимок агрегированной статистики, полученный за один опрос.
// После получения снимок не изменяется: контроллер подменяет его целиком.
type DashboardStats struct {
	TotalCalls        int64                  `json:"total_calls"`
	CallsByCategory   map[Category]int64     `json:"calls_by_category"`
	CallsByRegion     map[string]int64       `json:"calls_by_region,omitempty"`
	CallsByUrgency    map[UrgencyLevel]int64 `json:"calls_by_urgency,omitempty"`
	AverageConfidence float64                `json:"average_confidence"`
	LastCalls         []ClassifiedCall       `json:"last_calls"` // Свежие первыми
}

// ClassifiedCall — один классифицированный звонок.
type ClassifiedCall struct {
	ID           string       `json:"id"`
	Timestamp    string       `json:"timestamp"` // ISO-8601, как прислал бэкенд
	Transcript   string       `json:"transcript"`
	Category     Category     `json:"category"`
	Confidence   float64      `json:"confidence"`
	UrgencyLevel UrgencyLevel `json:"urgency_level,omitempty"`
	Reasoning    string       `json:"reasoning"`
}

// ClassifyRequest — тело POST /classify.
type ClassifyRequest struct {
	Text string `json:"text" validate:"transcript,max=4000"`
}

// ClassificationResponse — ответ сервиса классификации.
type ClassificationResponse struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ZeroStats — снимок по умолчанию, который подставляется при любой ошибке получения.
func ZeroStats() DashboardStats {
	byCategory := make(map[Category]int64, len(Categories))
	for _, c := range Categories {
		byCategory[c] = 0
	}
	return DashboardStats{
		CallsByCategory: byCategory,
		LastCalls:       []ClassifiedCall{},
	}
}

// Normalize дополняет снимок после декодирования: все шесть категорий присутствуют,
// last_calls никогда не nil.
func (s *DashboardStats) Normalize() {
	if s.CallsByCategory == nil {
		s.CallsByCategory = make(map[Category]int64, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := s.CallsByCategory[c]; !ok {
			s.CallsByCategory[c] = 0
		}
	}
	if s.LastCalls == nil {
		s.LastCalls = []ClassifiedCall{}
	}
}

// CategoryCount — поиск с нулем по умолчанию.
func (s *DashboardStats) CategoryCount(c Category) int64 {
	if s == nil {
		return 0
	}
	return s.CallsByCategory[c]
}

func (s *DashboardStats) UrgencyCount(u UrgencyLevel) int64 {
	if s == nil {
		return 0
	}
	return s.CallsByUrgency[u]
}
