// Package engine координирует обновление метрик: по истечении окна кэша
// запрашивает у API список устройств и раскладывает показания счётчиков
// по сериям хранилища.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/levinOo/remo-exporter/internal/echonet"
	"github.com/levinOo/remo-exporter/internal/models"
	"go.uber.org/zap"
)

// ApplianceSource возвращает текущий список устройств.
type ApplianceSource interface {
	Appliances(ctx context.Context) ([]models.Appliance, error)
}

// Observer получает событие по завершении каждого цикла обновления.
type Observer interface {
	NotifyClient(event models.RefreshEvent)
}

// Engine выполняет циклы обновления. Одновременно выполняется не более
// одного цикла; мьютекс удерживается на всё время цикла, включая сетевой вызов.
type Engine struct {
	mu       sync.Mutex
	source   ApplianceSource
	store    echonet.Writer
	gate     *Gate
	metrics  *Metrics
	observer Observer
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// Option настраивает Engine.
type Option func(*Engine)

// WithGate задаёт шлюз кэша. По умолчанию используется окно DefaultWindow.
func WithGate(g *Gate) Option {
	return func(e *Engine) {
		e.gate = g
	}
}

// WithMetrics включает собственные метрики экспортера.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithObserver подключает аудит циклов обновления.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger задаёт логгер движка. По умолчанию логирование отключено.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New создаёт движок обновления.
func New(source ApplianceSource, store echonet.Writer, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		store:  store,
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gate == nil {
		e.gate = NewGate(DefaultWindow, e.now)
	}
	return e
}

// Update запускает цикл обновления, если окно кэша истекло.
// Возвращает true, если цикл выполнялся.
func (e *Engine) Update(ctx context.Context) (bool, error) {
	if !e.gate.TryAcquire() {
		return false, nil
	}
	return true, e.Refresh(ctx)
}

// Refresh безусловно выполняет один цикл обновления. Первая ошибка
// прерывает цикл; уже применённые записи не откатываются.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.now()
	event, err := e.refreshLocked(ctx)
	elapsed := e.now().Sub(start)

	event.TS = start.Unix()
	event.DurationSeconds = elapsed.Seconds()
	if err != nil {
		event.Error = err.Error()
	}

	if e.metrics != nil {
		e.metrics.observe(start, elapsed, err)
	}
	if e.observer != nil {
		e.observer.NotifyClient(event)
	}

	return err
}

func (e *Engine) refreshLocked(ctx context.Context) (models.RefreshEvent, error) {
	var event models.RefreshEvent

	e.logger.Infow("Updating metrics")

	appliances, err := e.source.Appliances(ctx)
	if err != nil {
		return event, fmt.Errorf("failed to list appliances: %w", err)
	}
	event.Appliances = len(appliances)

	for _, appliance := range appliances {
		properties, ok := appliance.Properties()
		if !ok {
			continue
		}

		labels := appliance.Labels()
		for _, prop := range properties {
			write, err := echonet.Decode(prop.EPC, prop.Val, labels)
			if err != nil {
				return event, fmt.Errorf("appliance %s: %w", appliance.ID, err)
			}
			if write == nil {
				continue
			}
			if err := write.Apply(e.store); err != nil {
				return event, fmt.Errorf("appliance %s: failed to store %s: %w", appliance.ID, write.Name, err)
			}
			event.Writes++
		}
	}

	e.logger.Debugw("Metrics updated", "appliances", event.Appliances, "writes", event.Writes)
	return event, nil
}
