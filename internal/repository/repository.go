// Package repository хранит текущие значения серий метрик в памяти
// и отдаёт их реестру Prometheus.
package repository

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/levinOo/remo-exporter/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrUnknownSeries   = errors.New("metric is not defined")
	ErrKindMismatch    = errors.New("metric kind mismatch")
	ErrNegativeCounter = errors.New("counter cannot be incremented by a negative value")
	ErrAlreadyDefined  = errors.New("metric is already defined")
	ErrEmptyName       = errors.New("metric name is empty")
)

// Storage описывает операции хранилища, которые использует движок обновления.
type Storage interface {
	SetGauge(name string, labels models.Labels, value float64) error
	ResetAndAdd(name string, labels models.Labels, value float64) error
	Snapshot() []models.Series
}

type definition struct {
	help string
	kind models.Kind
	desc *prometheus.Desc
}

type seriesKey struct {
	name   string
	labels models.Labels
}

// MemStorage хранит серии в памяти. Серия создаётся при первой записи
// пары (имя, метки) и далее изменяется на месте; устаревшие серии не удаляются.
//
// MemStorage реализует prometheus.Collector, поэтому может быть
// зарегистрирован в реестре напрямую.
type MemStorage struct {
	mu      *sync.RWMutex
	defs    map[string]definition
	values  map[seriesKey]float64
	ordered []seriesKey
}

// NewMemStorage создаёт пустое хранилище.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		mu:     &sync.RWMutex{},
		defs:   make(map[string]definition),
		values: make(map[seriesKey]float64),
	}
}

// Define объявляет серию с именем name. Запись в необъявленную серию
// завершается ошибкой ErrUnknownSeries.
func (m *MemStorage) Define(name, help string, kind models.Kind) error {
	if name == "" {
		return ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.defs[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, name)
	}
	m.defs[name] = definition{
		help: help,
		kind: kind,
		desc: prometheus.NewDesc(name, help, models.LabelNames, nil),
	}
	return nil
}

// SetGauge устанавливает значение gauge-серии.
func (m *MemStorage) SetGauge(name string, labels models.Labels, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, err := m.keyLocked(name, labels, models.Gauge)
	if err != nil {
		return err
	}
	m.values[key] = value
	return nil
}

// ResetAndAdd сбрасывает counter-серию в ноль и увеличивает её на value.
// Оба шага выполняются под одной блокировкой, поэтому читатели не видят
// промежуточного нуля.
func (m *MemStorage) ResetAndAdd(name string, labels models.Labels, value float64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s=%g", ErrNegativeCounter, name, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key, err := m.keyLocked(name, labels, models.Counter)
	if err != nil {
		return err
	}
	m.values[key] = 0
	m.values[key] += value
	return nil
}

// Get возвращает значение серии и признак её существования.
func (m *MemStorage) Get(name string, labels models.Labels) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.values[seriesKey{name: name, labels: labels}]
	return val, ok
}

// Snapshot возвращает все серии, упорядоченные по имени и меткам.
func (m *MemStorage) Snapshot() []models.Series {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.Series, 0, len(m.ordered))
	for _, key := range m.ordered {
		def := m.defs[key.name]
		list = append(list, models.Series{
			Name:   key.name,
			Help:   def.help,
			Kind:   def.kind,
			Labels: key.labels,
			Value:  m.values[key],
		})
	}
	return list
}

// Describe реализует prometheus.Collector.
func (m *MemStorage) Describe(ch chan<- *prometheus.Desc) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, def := range m.defs {
		ch <- def.desc
	}
}

// Collect реализует prometheus.Collector.
func (m *MemStorage) Collect(ch chan<- prometheus.Metric) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, key := range m.ordered {
		def := m.defs[key.name]
		valueType := prometheus.GaugeValue
		if def.kind == models.Counter {
			valueType = prometheus.CounterValue
		}
		ch <- prometheus.MustNewConstMetric(def.desc, valueType, m.values[key], key.labels.Values()...)
	}
}

func (m *MemStorage) keyLocked(name string, labels models.Labels, kind models.Kind) (seriesKey, error) {
	def, ok := m.defs[name]
	if !ok {
		return seriesKey{}, fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}
	if def.kind != kind {
		return seriesKey{}, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, name, def.kind, kind)
	}

	key := seriesKey{name: name, labels: labels}
	if _, ok := m.values[key]; !ok {
		m.insertLocked(key)
	}
	return key, nil
}

// insertLocked сохраняет упорядоченность m.ordered.
func (m *MemStorage) insertLocked(key seriesKey) {
	i := sort.Search(len(m.ordered), func(i int) bool {
		other := m.ordered[i]
		if other.name != key.name {
			return other.name > key.name
		}
		return !other.labels.Less(key.labels)
	})
	m.ordered = append(m.ordered, seriesKey{})
	copy(m.ordered[i+1:], m.ordered[i:])
	m.ordered[i] = key
	m.values[key] = 0
}
