// Package audit реализует аудит циклов обновления метрик.
// Использует паттерн Observer для уведомления различных подписчиков
// о завершении каждого цикла.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/levinOo/remo-exporter/internal/models"
	"go.uber.org/zap"
)

// Observer определяет интерфейс наблюдателя для системы аудита.
type Observer interface {
	// RegisterClient добавляет нового подписчика для получения уведомлений.
	RegisterClient(Consumer)

	// NotifyClient отправляет событие всем зарегистрированным подписчикам.
	NotifyClient(event models.RefreshEvent)
}

// Consumer определяет интерфейс потребителя событий аудита.
// Реализации обрабатывают события различными способами (файл, лог и т.д.).
type Consumer interface {
	// Update обрабатывает событие аудита. Ошибки подписчика не должны
	// влиять на цикл обновления.
	Update(event models.RefreshEvent)
}

// Auditer координирует отправку событий зарегистрированным подписчикам.
type Auditer struct {
	mu      sync.RWMutex
	clients []Consumer
}

// NewAuditer создаёт Auditer с набором подписчиков.
func NewAuditer(clients ...Consumer) *Auditer {
	return &Auditer{clients: clients}
}

// RegisterClient добавляет нового подписчика в список получателей уведомлений.
func (a *Auditer) RegisterClient(c Consumer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clients = append(a.clients, c)
}

// NotifyClient отправляет событие всем зарегистрированным подписчикам.
func (a *Auditer) NotifyClient(event models.RefreshEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, client := range a.clients {
		client.Update(event)
	}
}

// FileAuditer дописывает события аудита в файл, по одной JSON-строке на событие.
type FileAuditer struct {
	mu     sync.Mutex
	path   string
	logger *zap.SugaredLogger
}

// NewFileAuditer создаёт FileAuditer для записи в указанный файл.
// Если путь пустой, события игнорируются.
func NewFileAuditer(path string, logger *zap.SugaredLogger) *FileAuditer {
	return &FileAuditer{
		path:   path,
		logger: logger,
	}
}

// Update добавляет событие в конец файла.
func (a *FileAuditer) Update(event models.RefreshEvent) {
	if a.path == "" {
		return
	}

	if err := a.append(event); err != nil {
		a.logger.Warnw("Failed to write audit event", "file", a.path, "error", err)
	}
}

func (a *FileAuditer) append(event models.RefreshEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	return nil
}

// DefaultURLTimeout ограничивает время отправки одного события на URL.
const DefaultURLTimeout = 5 * time.Second

// URLAuditer отправляет события аудита на внешний HTTP endpoint методом POST.
type URLAuditer struct {
	url    string
	client *resty.Client
	logger *zap.SugaredLogger
}

// NewURLAuditer создаёт URLAuditer для отправки на указанный URL.
// Если URL пустой, события игнорируются.
func NewURLAuditer(url string, timeout time.Duration, logger *zap.SugaredLogger) *URLAuditer {
	return &URLAuditer{
		url:    url,
		client: resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// Update отправляет событие в формате JSON. Ошибки только пишутся в лог.
func (a *URLAuditer) Update(event models.RefreshEvent) {
	if a.url == "" {
		return
	}

	if err := a.post(event); err != nil {
		a.logger.Warnw("Failed to send audit event", "url", a.url, "error", err)
	}
}

func (a *URLAuditer) post(event models.RefreshEvent) error {
	resp, err := a.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(a.url)
	if err != nil {
		return fmt.Errorf("HTTP POST request error: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("audit endpoint returned status %d", resp.StatusCode())
	}
	return nil
}

// LogAuditer пишет события аудита в лог.
type LogAuditer struct {
	logger *zap.SugaredLogger
}

// NewLogAuditer создаёт LogAuditer, пишущий в указанный логгер.
func NewLogAuditer(logger *zap.SugaredLogger) *LogAuditer {
	return &LogAuditer{logger: logger}
}

// Update пишет событие: успешные циклы на уровне debug, неудачные на warn.
func (a *LogAuditer) Update(event models.RefreshEvent) {
	fields := []interface{}{
		"ts", event.TS,
		"duration", event.DurationSeconds,
		"appliances", event.Appliances,
		"writes", event.Writes,
	}
	if event.Succeeded() {
		a.logger.Debugw("Refresh completed", fields...)
		return
	}
	a.logger.Warnw("Refresh failed", append(fields, "error", event.Error)...)
}
