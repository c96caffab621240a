// Package logger предоставляет утилиты для логирования HTTP-запросов и ответов.
// Включает обертку ResponseWriter для захвата метаданных ответа и создание zap логгеров.
package logger

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLevel задаёт уровень логирования по умолчанию.
const DefaultLevel = "info"

// ResponseData содержит метаданные HTTP-ответа для логирования.
type ResponseData struct {
	// Status содержит HTTP-код ответа (например, 200, 500).
	Status int

	// Size содержит общий размер тела ответа в байтах.
	// Накапливается при множественных вызовах Write.
	Size int
}

// LoggingRW оборачивает стандартный http.ResponseWriter для захвата метрик ответа.
// Используется в middleware для логирования размера ответа и статус-кода.
type LoggingRW struct {
	http.ResponseWriter
	// ResponseData указывает на структуру для накопления метаданных ответа.
	ResponseData *ResponseData
}

// Write записывает данные в ответ и обновляет накопленный размер в ResponseData.
// Если WriteHeader не вызывался, фиксирует код 200, как это делает net/http.
func (r *LoggingRW) Write(b []byte) (int, error) {
	if r.ResponseData.Status == 0 {
		r.ResponseData.Status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.ResponseData.Size += size
	return size, err
}

// WriteHeader устанавливает HTTP-код ответа и сохраняет его в ResponseData.
func (r *LoggingRW) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.ResponseData.Status = statusCode
}

// NewLogger создает zap.SugaredLogger с JSON-выводом и заданным уровнем
// (debug, info, warn, error).
func NewLogger(level string) (*zap.SugaredLogger, error) {
	if level == "" {
		level = DefaultLevel
	}

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Sugar(), nil
}
