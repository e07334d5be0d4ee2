package domain

// DashboardView — готовая к отрисовке модель панели, производная от одного снимка.
type DashboardView struct {
	Headline   Headline        `json:"headline"`
	Categories []CategoryShare `json:"categories"`
	Regions    []RegionShare   `json:"regions,omitempty"`  // nil — секция не показывается
	Urgency    []UrgencyShare  `json:"urgency,omitempty"`  // nil — секция не показывается
	Confidence int             `json:"average_confidence"` // Проценты, округлено
	LastCalls  []CallRow       `json:"last_calls"`
}

// Headline — карточки верхнего ряда.
type Headline struct {
	TotalCalls     int64 `json:"total_calls"`
	PrankCalls     int64 `json:"prank_calls"`
	DisguisedCalls int64 `json:"disguised_calls"`
	CriticalCalls  int64 `json:"critical_calls"`
}

// Share — общая часть строк разбивки.
type Share struct {
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"` // Точное значение в [0, 100]
	Rounded int     `json:"rounded"` // Для подписи, округление half-up
}

type CategoryShare struct {
	Category Category `json:"category"`
	Meta
	Share
}

type RegionShare struct {
	Region string `json:"region"`
	Color  string `json:"color"`
	Share
}

type UrgencyShare struct {
	Level UrgencyLevel `json:"level"`
	Meta
	Share
}

// CallRow — строка ленты последних звонков.
type CallRow struct {
	ClassifiedCall
	CategoryLabel string `json:"category_label"`
	UrgencyLabel  string `json:"urgency_label,omitempty"`
	ConfidencePct int    `json:"confidence_percent"`
}

// ScreenMode — какой экран видит оператор.
type ScreenMode string

const (
	ScreenLoading ScreenMode = "loading" // Первая загрузка, данных еще нет
	ScreenError   ScreenMode = "error"   // Первая загрузка провалилась, доступен повтор
	ScreenReady   ScreenMode = "ready"   // Есть данные
)

// Badge — индикатор состояния в шапке панели.
type Badge string

const (
	BadgeOnline   Badge = "online"
	BadgeUpdating Badge = "updating"
	BadgeError    Badge = "error"
)

// Screen — то, что отдается фронтенду целиком.
type Screen struct {
	Mode           ScreenMode     `json:"mode"`
	Badge          Badge          `json:"badge,omitempty"`
	LastUpdate     string         `json:"last_update,omitempty"`
	RetryAvailable bool           `json:"retry_available"`
	Error          string         `json:"error,omitempty"`
	View           *DashboardView `json:"view,omitempty"`
}
