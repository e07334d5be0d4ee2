package domain

// Category — итог классификации звонка внешним сервисом.
// Значения совпадают с ключами JSON бэкенда.
type Category string

const (
	CategoryPolice    Category = "policia"          // Полиция (190)
	CategoryMedical   Category = "samu"             // Скорая SAMU (192)
	CategoryFire      Category = "bombeiros"        // Пожарные (193)
	CategoryPrank     Category = "trote"            // Ложный вызов
	CategoryUnknown   Category = "indefinido"       // Не удалось определить
	CategoryDisguised Category = "policia-analogia" // Замаскированный вызов полиции
)

// Categories — фиксированный порядок отображения. Набор закрыт.
var Categories = [...]Category{
	CategoryPolice,
	CategoryMedical,
	CategoryFire,
	CategoryPrank,
	CategoryUnknown,
	CategoryDisguised,
}

// UrgencyLevel — уровень срочности вызова.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "baixa"
	UrgencyMedium   UrgencyLevel = "média"
	UrgencyHigh     UrgencyLevel = "alta"
	UrgencyCritical UrgencyLevel = "crítica"
)

// UrgencyOrder — порядок вывода уровней: от самого опасного к самому легкому.
var UrgencyOrder = [...]UrgencyLevel{
	UrgencyCritical,
	UrgencyHigh,
	UrgencyMedium,
	UrgencyLow,
}

// Meta — метаданные представления для элемента перечисления.
type Meta struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

var categoryMeta = map[Category]Meta{
	CategoryPolice:    {Label: "Polícia", Color: "#FF6B6B", Icon: "👮"},
	CategoryMedical:   {Label: "SAMU", Color: "#4ECDC4", Icon: "🏥"},
	CategoryFire:      {Label: "Bombeiros", Color: "#FFE66D", Icon: "🔥"},
	CategoryPrank:     {Label: "Trote", Color: "#95E1D3", Icon: "📞"},
	CategoryUnknown:   {Label: "Indefinido", Color: "#B19CD9", Icon: "❔"},
	CategoryDisguised: {Label: "Chamada Disfarçada", Color: "#FF8C42", Icon: "🔒"},
}

var urgencyMeta = map[UrgencyLevel]Meta{
	UrgencyCritical: {Label: "Crítica", Color: "#DC3545", Icon: "🔴"},
	UrgencyHigh:     {Label: "Alta", Color: "#FD7E14", Icon: "🟠"},
	UrgencyMedium:   {Label: "Média", Color: "#FFC107", Icon: "🟡"},
	UrgencyLow:      {Label: "Baixa", Color: "#28A745", Icon: "🟢"},
}

// Цвета известных зон Сан-Паулу. Регион — свободная строка, поэтому есть fallback.
var regionColors = map[string]string{
	"Zona Norte": "#3498DB",
	"Zona Sul":   "#2ECC71",
	"Zona Leste": "#E74C3C",
	"Zona Oeste": "#F39C12",
	"Centro":     "#9B59B6",
}

const (
	RegionFallbackColor  = "#95A5A6"
	UrgencyFallbackColor = "#6C757D"
	UrgencyFallbackIcon  = "⚪"
)

// Valid сообщает, входит ли категория в закрытый набор.
func (c Category) Valid() bool {
	_, ok := categoryMeta[c]
	return ok
}

// Meta возвращает метаданные категории. Для неизвестного значения подпись — сам ключ.
func (c Category) Meta() Meta {
	if m, ok := categoryMeta[c]; ok {
		return m
	}
	return Meta{Label: string(c), Color: RegionFallbackColor}
}

func (u UrgencyLevel) Valid() bool {
	_, ok := urgencyMeta[u]
	return ok
}

// Meta возвращает метаданные уровня, для неизвестного уровня — серую запись-заглушку.
func (u UrgencyLevel) Meta() Meta {
	if m, ok := urgencyMeta[u]; ok {
		return m
	}
	return Meta{Label: string(u), Color: UrgencyFallbackColor, Icon: UrgencyFallbackIcon}
}

// RegionColor возвращает цвет региона или нейтральный серый.
func RegionColor(region string) string {
	if c, ok := regionColors[region]; ok {
		return c
	}
	return RegionFallbackColor
}
