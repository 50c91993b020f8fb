package inventory

import "sync"

// SignalTracker recuerda por producto el último estado calculado y el último entregado al emisor,
// para notificar solo en los cambios. Un cambio cuya emisión falla no se da por entregado: el
// siguiente movimiento lo vuelve a detectar.
// Es local al proceso; tras un reinicio el estado entregado se siembra con el stock previo del movimiento.
type SignalTracker struct {
	mu   sync.Mutex
	last map[string]trackedSignal
}

type trackedSignal struct {
	status   string
	sequence int64
	notified string
	acked    int64
}

// NewSignalTracker construye un tracker vacío.
func NewSignalTracker() *SignalTracker {
	return &SignalTracker{last: make(map[string]trackedSignal)}
}

// Observe registra status para el movimiento sequence del producto y devuelve el último estado
// entregado y si difiere de status. seed es el estado entregado a asumir si el producto no se
// había observado. Observaciones de secuencias ya vistas (o anteriores) se ignoran.
func (t *SignalTracker) Observe(productID string, sequence int64, seed, status string) (previous string, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.last[productID]
	if ok && sequence <= cur.sequence {
		return cur.notified, false
	}
	if !ok {
		cur.notified = seed
	}
	cur.status, cur.sequence = status, sequence
	t.last[productID] = cur
	return cur.notified, cur.notified != status
}

// Ack marca como entregado el estado status observado en sequence.
// Un Ack de una secuencia anterior a la última confirmada se ignora.
func (t *SignalTracker) Ack(productID string, sequence int64, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.last[productID]
	if !ok || sequence <= cur.acked {
		return
	}
	cur.notified, cur.acked = status, sequence
	t.last[productID] = cur
}

// Last último estado observado de un producto.
func (t *SignalTracker) Last(productID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.last[productID]
	return cur.status, ok
}
