// Package handler содержит HTTP-обработчики экспортера и маршрутизатор.
package handler

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/levinOo/remo-exporter/internal/logger"
	"github.com/levinOo/remo-exporter/internal/pool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

// Updater обновляет метрики перед выдачей, если истекло окно кэша.
type Updater interface {
	Update(ctx context.Context) (bool, error)
}

var bufPool = pool.New[*bytes.Buffer](func() *bytes.Buffer {
	return new(bytes.Buffer)
})

// NewRouter создаёт маршрутизатор экспортера.
func NewRouter(updater Updater, gatherer prometheus.Gatherer, sugar *zap.SugaredLogger) *chi.Mux {
	r := chi.NewRouter()

	metrics := LoggerFuncServer(MetricsHandler(updater, gatherer, sugar), sugar)
	r.Get("/", metrics)
	r.Get("/metrics", metrics)
	r.Get("/ping", LoggerFuncServer(PingHandler(), sugar))

	return r
}

// LoggerFuncServer пишет в лог строку о каждом обработанном запросе.
func LoggerFuncServer(h http.Handler, sugar *zap.SugaredLogger) http.HandlerFunc {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()

		responseData := &logger.ResponseData{
			Size:   0,
			Status: 0,
		}
		lw := logger.LoggingRW{
			ResponseWriter: rw,
			ResponseData:   responseData,
		}

		h.ServeHTTP(&lw, r)

		dur := time.Since(start)

		sugar.Infow("Request served",
			"uri", r.RequestURI,
			"method", r.Method,
			"duration", dur,
			"status", responseData.Status,
			"size", responseData.Size,
		)
	}
	return http.HandlerFunc(logFn)
}

// PingHandler отвечает на проверку живости и не запускает обновление.
func PingHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain")
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("OK"))
	}
}

// MetricsHandler обновляет метрики при необходимости и отдаёт их
// в формате, согласованном по заголовку Accept. При ошибке обновления
// отвечает 500 с пустым телом; подробности пишутся только в лог.
func MetricsHandler(updater Updater, gatherer prometheus.Gatherer, sugar *zap.SugaredLogger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		// обновление не прерывается, если клиент отключился
		ctx := context.WithoutCancel(r.Context())

		if _, err := updater.Update(ctx); err != nil {
			sugar.Errorw("Error while serving request", "error", err)
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}

		buf := bufPool.Get()
		defer bufPool.Put(buf)

		format := expfmt.Negotiate(r.Header)
		if err := WriteMetrics(buf, gatherer, format); err != nil {
			sugar.Errorw("Failed to encode metrics", "error", err)
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}

		rw.Header().Set("Content-Type", string(format))

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			rw.Header().Set("Content-Encoding", "gzip")
			rw.WriteHeader(http.StatusOK)

			gz := gzip.NewWriter(rw)
			defer gz.Close()

			if _, err := gz.Write(buf.Bytes()); err != nil {
				sugar.Warnw("gzip write error", "error", err)
			}
			return
		}

		rw.WriteHeader(http.StatusOK)
		if _, err := rw.Write(buf.Bytes()); err != nil {
			sugar.Warnw("write error", "error", err)
		}
	}
}

// WriteMetrics собирает метрики из gatherer и кодирует их в w.
func WriteMetrics(w io.Writer, gatherer prometheus.Gatherer, format expfmt.Format) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}

	if closer, ok := enc.(expfmt.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close encoder: %w", err)
		}
	}
	return nil
}
