package engine

import (
	"sync"
	"time"
)

// DefaultWindow задаёт окно кэша по умолчанию.
const DefaultWindow = 30 * time.Second

// Gate решает, нужно ли обновлять метрики при очередном запросе.
// Защищает только отметку времени и никогда не удерживается на время
// сетевого вызова.
type Gate struct {
	mu     sync.RWMutex
	last   time.Time
	window time.Duration
	now    func() time.Time
}

// NewGate создаёт шлюз с окном window. Если now равен nil, используется time.Now.
// Отметка инициализируется так, чтобы первый же запрос запустил обновление.
func NewGate(window time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{
		last:   now().Add(-window - time.Second),
		window: window,
		now:    now,
	}
}

// Window возвращает окно кэша.
func (g *Gate) Window() time.Duration {
	return g.window
}

// ShouldRefresh сообщает, истекло ли окно к моменту now.
func (g *Gate) ShouldRefresh(now time.Time) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.dueLocked(now)
}

// MarkRefreshed запоминает момент начала обновления.
func (g *Gate) MarkRefreshed(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = now
}

// TryAcquire возвращает true ровно одному вызывающему за окно.
// Быстрая проверка выполняется под разделяемой блокировкой; затем под
// эксклюзивной условие проверяется повторно и отметка обновляется
// до начала самого обновления.
func (g *Gate) TryAcquire() bool {
	if !g.ShouldRefresh(g.now()) {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.dueLocked(now) {
		return false
	}
	g.last = now
	return true
}

func (g *Gate) dueLocked(now time.Time) bool {
	return now.Sub(g.last) >= g.window
}
