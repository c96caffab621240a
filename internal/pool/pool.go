// Package pool предоставляет обобщённый пул объектов T, ограниченных Reset().
// Пример использования:
//
//	bufPool := pool.New[*bytes.Buffer](func() *bytes.Buffer { return new(bytes.Buffer) })
//	buf := bufPool.Get()
//	// использовать buf
//	bufPool.Put(buf)
package pool

import (
	"sync"
)

// DefaultMaxIdle ограничивает число простаивающих объектов в пуле.
const DefaultMaxIdle = 16

// Resettable ограничивает тип тем, у кого есть метод Reset()
type Resettable interface {
	Reset()
}

// Pool хранит объекты типа T, ограниченных Resettable.
// T обычно является указателем, например *bytes.Buffer.
type Pool[T Resettable] struct {
	mu      sync.Mutex
	items   []T
	Factory func() T

	// MaxIdle задаёт предел простаивающих объектов; лишние отбрасываются в Put.
	MaxIdle int
}

// New создаёт новый Pool[T]. Фабрика должна возвращать новый экземпляр T.
func New[T Resettable](factory func() T) *Pool[T] {
	return &Pool[T]{Factory: factory, MaxIdle: DefaultMaxIdle}
}

// Get возвращает объект из пула. Если пул пуст, создаёт новый через фабрику.
func (p *Pool[T]) Get() T {
	p.mu.Lock()
	if n := len(p.items); n > 0 {
		v := p.items[n-1]
		p.items = p.items[:n-1]
		p.mu.Unlock()
		return v
	}
	p.mu.Unlock()

	if p.Factory != nil {
		return p.Factory()
	}
	var zero T
	return zero
}

// Put сбрасывает объект и возвращает его в пул, если в пуле есть место.
func (p *Pool[T]) Put(v T) {
	v.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.MaxIdle > 0 && len(p.items) >= p.MaxIdle {
		return
	}
	p.items = append(p.items, v)
}

// Len возвращает число простаивающих объектов.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
