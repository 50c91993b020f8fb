// Package audit registra el trail de auditoría sin bloquear ni hacer fallar
// las operaciones de negocio cuando el almacén de auditoría no está disponible.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

// State estado del recorder.
type State string

const (
	StateAvailable State = "available"
	StateDegraded  State = "degraded"
)

// Entry acción a auditar. OldValues/NewValues se serializan a JSON.
// UserID, IPAddress y UserAgent vacíos se completan desde RequestMeta del contexto.
type Entry struct {
	TableName string
	RecordID  string
	Action    string
	Severity  string
	Details   string
	OldValues any
	NewValues any
	UserID    string
	IPAddress string
	UserAgent string
}

// Metrics observador opcional del recorder.
type Metrics interface {
	AuditRecorded(outcome string)
	AuditPending(n int)
}

type nopMetrics struct{}

func (nopMetrics) AuditRecorded(string) {}
func (nopMetrics) AuditPending(int)     {}

// Config opciones del recorder.
type Config struct {
	WriteTimeout  time.Duration // por escritura; 0 = 2s
	RetryInterval time.Duration // cadencia del reintento en segundo plano; 0 = 30s
	Metrics       Metrics
}

// Recorder escribe entradas de auditoría. Si el almacén falla pasa a degraded,
// encola las entradas y las reintenta con Flush (manual o por cron).
// La entrega es at-least-once: un reintento puede duplicar una entrada ya escrita,
// y un ErrDuplicate del almacén se considera éxito.
type Recorder struct {
	repo    repository.AuditLogRepository
	clock   clock.Clock
	log     zerolog.Logger
	cfg     Config
	metrics Metrics

	mu      sync.Mutex
	state   State
	pending []*entity.AuditLogEntry

	flushMu sync.Mutex
	cron    *cron.Cron
}

// NewRecorder construye el recorder en estado available.
func NewRecorder(repo repository.AuditLogRepository, clk clock.Clock, log zerolog.Logger, cfg Config) *Recorder {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	m := cfg.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	return &Recorder{
		repo:    repo,
		clock:   clk,
		log:     log.With().Str("component", "audit").Logger(),
		cfg:     cfg,
		metrics: m,
		state:   StateAvailable,
	}
}

// Record audita e. Nunca devuelve error: los fallos del almacén degradan el recorder.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	entry := r.build(ctx, e)

	r.mu.Lock()
	if r.state == StateDegraded {
		r.enqueueLocked(entry)
		r.mu.Unlock()
		r.metrics.AuditRecorded("queued")
		return
	}
	r.mu.Unlock()

	if err := r.write(ctx, entry); err != nil {
		r.mu.Lock()
		if r.state == StateAvailable {
			r.log.Warn().Err(err).Msg("almacén de auditoría no disponible; modo degradado")
		}
		r.state = StateDegraded
		r.enqueueLocked(entry)
		r.mu.Unlock()
		r.metrics.AuditRecorded("queued")
		return
	}
	r.metrics.AuditRecorded("written")
}

// Flush reintenta las entradas encoladas en orden. Se detiene en el primer fallo.
// La primera escritura encolada exitosa devuelve el recorder a available; el resto
// de la cola se sigue vaciando y las entradas nuevas vuelven a escribirse directo.
// Un fallo durante el vaciado lo devuelve a degraded.
func (r *Recorder) Flush(ctx context.Context) error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.markAvailableLocked()
			r.mu.Unlock()
			return nil
		}
		next := r.pending[0]
		r.mu.Unlock()

		if err := r.write(ctx, next); err != nil {
			r.mu.Lock()
			if r.state == StateAvailable {
				r.log.Warn().Err(err).Msg("almacén de auditoría no disponible; modo degradado")
			}
			r.state = StateDegraded
			r.mu.Unlock()
			return err
		}

		r.mu.Lock()
		r.pending = r.pending[1:]
		r.markAvailableLocked()
		r.metrics.AuditPending(len(r.pending))
		r.mu.Unlock()
		r.metrics.AuditRecorded("flushed")
	}
}

func (r *Recorder) markAvailableLocked() {
	if r.state == StateDegraded {
		r.log.Info().Int("pending", len(r.pending)).Msg("almacén de auditoría recuperado")
	}
	r.state = StateAvailable
}

// Start programa Flush cada RetryInterval.
func (r *Recorder) Start() error {
	c := cron.New()
	_, err := c.AddFunc("@every "+r.cfg.RetryInterval.String(), func() {
		if r.Pending() == 0 {
			return
		}
		if err := r.Flush(context.Background()); err != nil {
			r.log.Debug().Err(err).Int("pending", r.Pending()).Msg("reintento de auditoría fallido")
		}
	})
	if err != nil {
		return err
	}
	r.cron = c
	c.Start()
	return nil
}

// Stop detiene el cron, espera la ejecución en curso e intenta un último Flush.
func (r *Recorder) Stop(ctx context.Context) error {
	if r.cron != nil {
		done := r.cron.Stop()
		select {
		case <-done.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.Pending() == 0 {
		return nil
	}
	return r.Flush(ctx)
}

// State estado actual.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending cantidad de entradas encoladas.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Recorder) enqueueLocked(entry *entity.AuditLogEntry) {
	r.pending = append(r.pending, entry)
	r.metrics.AuditPending(len(r.pending))
}

// write persiste una entrada. La cancelación del contexto de la petición no debe
// impedir auditar una operación ya confirmada, por eso se desacopla y se acota con WriteTimeout.
func (r *Recorder) write(ctx context.Context, entry *entity.AuditLogEntry) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.WriteTimeout)
	defer cancel()
	err := r.repo.Create(wctx, entry)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil
	}
	return err
}

func (r *Recorder) build(ctx context.Context, e Entry) *entity.AuditLogEntry {
	if meta, ok := RequestMetaFrom(ctx); ok {
		if e.UserID == "" {
			e.UserID = meta.UserID
		}
		if e.IPAddress == "" {
			e.IPAddress = meta.IPAddress
		}
		if e.UserAgent == "" {
			e.UserAgent = meta.UserAgent
		}
	}
	if e.Severity == "" {
		e.Severity = entity.SeverityInfo
	}
	entry := &entity.AuditLogEntry{
		ID:        uuid.New().String(),
		TableName: e.TableName,
		RecordID:  e.RecordID,
		Details:   e.Details,
		Severity:  e.Severity,
		Action:    e.Action,
		OldValues: r.snapshot(e.OldValues),
		NewValues: r.snapshot(e.NewValues),
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: r.clock.Now(),
	}
	if e.UserID != "" {
		uid := e.UserID
		entry.UserID = &uid
	}
	return entry
}

func (r *Recorder) snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		r.log.Error().Err(err).Msg("snapshot de auditoría no serializable")
		return nil
	}
	return b
}
