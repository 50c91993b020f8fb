// Package clock abstrae la hora actual para que el orden de los movimientos
// y los tests sean deterministas.
package clock

import (
	"sync"
	"time"
)

// Clock devuelve la hora actual.
type Clock interface {
	Now() time.Time
}

// System usa el reloj del sistema en UTC.
type System struct{}

// Now devuelve time.Now() en UTC.
func (System) Now() time.Time { return time.Now().UTC() }

// Manual es un reloj controlado por el test. Cada llamada a Now avanza Step.
type Manual struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

// NewManual construye un reloj manual que inicia en start.
func NewManual(start time.Time, step time.Duration) *Manual {
	return &Manual{t: start, step: step}
}

// Now devuelve la hora actual del reloj y avanza el paso configurado.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.t
	m.t = m.t.Add(m.step)
	return now
}

// Set fija la hora del reloj.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
}
