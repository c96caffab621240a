// Package models содержит структуры данных, описывающие основные сущности предметной области.
// Пакет не содержит бизнес-логику и используется для передачи данных между слоями приложения.
package models

// Kind определяет тип серии метрик.
type Kind string

// Константы типов метрик
const (
	// Counter представляет серию-счётчик. Допускает только неотрицательные
	// приращения и сброс в ноль.
	Counter Kind = "counter"

	// Gauge представляет метрику-измеритель, значение которой может изменяться произвольно.
	Gauge Kind = "gauge"
)

// LabelNames задаёт имена меток всех серий счётчиков в порядке экспорта.
var LabelNames = []string{"name", "id"}

// Labels идентифицирует физический счётчик, которому принадлежит серия.
type Labels struct {
	// Name содержит отображаемое имя устройства.
	Name string

	// ID содержит идентификатор устройства.
	ID string
}

// Values возвращает значения меток в порядке LabelNames.
func (l Labels) Values() []string {
	return []string{l.Name, l.ID}
}

// Less задаёт порядок меток для детерминированного экспорта.
func (l Labels) Less(other Labels) bool {
	if l.Name != other.Name {
		return l.Name < other.Name
	}
	return l.ID < other.ID
}

// Series представляет текущее значение одной серии с набором меток.
type Series struct {
	Name   string
	Help   string
	Kind   Kind
	Labels Labels
	Value  float64
}

// RefreshEvent описывает один цикл обновления метрик для аудита.
type RefreshEvent struct {
	// TS содержит время начала цикла в формате Unix timestamp.
	TS int64 `json:"ts"`

	// DurationSeconds содержит длительность цикла.
	DurationSeconds float64 `json:"duration_seconds"`

	// Appliances содержит число устройств, полученных от API.
	Appliances int `json:"appliances"`

	// Writes содержит число применённых к хранилищу изменений.
	Writes int `json:"writes"`

	// Error содержит текст ошибки; пусто при успешном цикле.
	Error string `json:"error,omitempty"`
}

// Succeeded сообщает, завершился ли цикл без ошибки.
func (e RefreshEvent) Succeeded() bool {
	return e.Error == ""
}
