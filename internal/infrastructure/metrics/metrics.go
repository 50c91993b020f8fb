// Package metrics expone en Prometheus la actividad del ledger, la auditoría y el HTTP.
//
// Las etiquetas usan valores acotados (tipo de movimiento, motivo de rechazo, estado de la
// señal, plantilla de ruta) para no crecer con los IDs de producto.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

var (
	_ inventory.Metrics = (*Metrics)(nil)
	_ audit.Metrics     = (*Metrics)(nil)
)

// Metrics agrupa los colectores registrados en un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	MovementsApplied   *prometheus.CounterVec
	MovementDuration   *prometheus.HistogramVec
	MovementsRejected  *prometheus.CounterVec
	ConcurrencyRetries prometheus.Counter
	SignalsEmitted     *prometheus.CounterVec
	AuditWrites        *prometheus.CounterVec
	AuditPendingGauge  prometheus.Gauge
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New registra los colectores (más los de proceso y Go runtime) en un registry nuevo.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MovementsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_applied_total",
			Help:      "Movimientos de stock confirmados, por tipo.",
		}, []string{"type"}),
		MovementDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_movement_duration_seconds",
			Help:      "Latencia de ApplyMovement (incluye reintentos), por tipo.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"type"}),
		MovementsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_rejected_total",
			Help:      "Movimientos rechazados, por motivo.",
		}, []string{"reason"}),
		ConcurrencyRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_concurrency_retries_total",
			Help:      "Reintentos por modificación concurrente del stock.",
		}),
		SignalsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_signals_emitted_total",
			Help:      "Cambios de señal notificados, por nuevo estado.",
		}, []string{"status"}),
		AuditWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Escrituras de auditoría, por resultado (written, queued, flushed).",
		}, []string{"outcome"}),
		AuditPendingGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_pending_entries",
			Help:      "Entradas de auditoría en cola esperando al almacén.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, plantilla de ruta y código.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia HTTP por método y plantilla de ruta.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Registry devuelve el registry para tests o gatherers externos.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) MovementApplied(movementType string, d time.Duration) {
	m.MovementsApplied.WithLabelValues(movementType).Inc()
	m.MovementDuration.WithLabelValues(movementType).Observe(d.Seconds())
}

func (m *Metrics) MovementRejected(reason string) {
	m.MovementsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ConcurrencyRetry() { m.ConcurrencyRetries.Inc() }

func (m *Metrics) SignalEmitted(status string) {
	m.SignalsEmitted.WithLabelValues(status).Inc()
}

func (m *Metrics) AuditRecorded(outcome string) {
	m.AuditWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AuditPending(n int) {
	m.AuditPendingGauge.Set(float64(n))
}

// Handler sirve /metrics en fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware mide cada petición usando la plantilla de ruta (c.Route().Path), no la URL cruda.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < 400 {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		m.HTTPRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
